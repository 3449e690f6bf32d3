package schedule

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func newRequest(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandlerListLocationsPaginates(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc, nil)

	for i := 0; i < 3; i++ {
		f.location(t)
	}

	c, rec := newRequest(t, http.MethodGet, "/api/v1/locations?limit=2", "")
	if err := h.ListLocations(c); err != nil {
		t.Fatalf("ListLocations handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Total   int  `json:"total"`
		Limit   int  `json:"limit"`
		Offset  int  `json:"offset"`
		HasMore bool `json:"has_more"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 3 || resp.Limit != 2 || resp.Offset != 0 || !resp.HasMore {
		t.Errorf("envelope = %+v", resp)
	}
}

func TestHandlerListShiftsPaginates(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc, nil)
	loc := f.location(t)
	f.shift(t, "Morning", "08:00", "12:00", loc.ID)

	c, rec := newRequest(t, http.MethodGet, "/api/v1/shifts", "")
	if err := h.ListShifts(c); err != nil {
		t.Fatalf("ListShifts handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data  []*Shift `json:"data"`
		Total int      `json:"total"`
		Limit int      `json:"limit"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 1 || len(resp.Data) != 1 || resp.Limit != 20 {
		t.Errorf("envelope = %+v", resp)
	}
}
