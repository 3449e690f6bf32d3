package appointment

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/opencare/clinic/internal/platform/auth"
	"github.com/opencare/clinic/pkg/clinicerr"
	"github.com/opencare/clinic/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/appointments", h.Create)
	api.GET("/appointments", h.List)
	api.GET("/appointments/:id", h.Get)
	api.PUT("/appointments/:id/cancel", h.Cancel)
	api.DELETE("/appointments/:id", h.Purge)

	doctorGroup := api.Group("", auth.RequireRole(auth.RoleDoctor))
	doctorGroup.PATCH("/appointments/:id/confirm", h.Confirm)
	doctorGroup.PATCH("/appointments/:id/reject", h.Reject)
	doctorGroup.POST("/appointments/bulk", h.Bulk)
	doctorGroup.PATCH("/appointments/:id/status", h.UpdateStatus)
	doctorGroup.PUT("/appointments/:id/examination-record", h.LinkExaminationRecord)
	doctorGroup.POST("/doctors/:id/stop-appointments", h.StopAll)
}

// respond writes the appointment, or the error with the current snapshot
// attached when the service returned one, so clients resynchronize without a
// follow-up read.
func respond(c echo.Context, status int, a *Appointment, err error) error {
	if err == nil {
		return c.JSON(status, a)
	}
	derr := clinicerr.AsError(err)
	if derr == nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	body := map[string]interface{}{"error": derr}
	if a != nil {
		body["appointment"] = a
	}
	return c.JSON(clinicerr.HTTPStatus(err), body)
}

func parseID(c echo.Context, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+param)
	}
	return id, nil
}

type createRequest struct {
	PatientID    uuid.UUID `json:"patient_id"`
	DoctorID     uuid.UUID `json:"doctor_id"`
	DepartmentID uuid.UUID `json:"department_id"`
	LocationID   uuid.UUID `json:"location_id"`
	Date         string    `json:"date"`
	Session      string    `json:"session"`
	Reason       string    `json:"reason"`
}

func (h *Handler) Create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}

	// Patients always book for themselves.
	if actor := auth.FromContext(c.Request().Context()); actor != nil && actor.Role == auth.RolePatient {
		pid, err := uuid.Parse(actor.ID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid actor id")
		}
		req.PatientID = pid
	}

	a, err := h.svc.Create(c.Request().Context(), CreateInput{
		PatientID:    req.PatientID,
		DoctorID:     req.DoctorID,
		DepartmentID: req.DepartmentID,
		LocationID:   req.LocationID,
		Date:         date,
		Session:      req.Session,
		Reason:       req.Reason,
	})
	return respond(c, http.StatusCreated, a, err)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	return respond(c, http.StatusOK, a, err)
}

func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	pg := pagination.FromContext(c)

	if doctorID := c.QueryParam("doctor_id"); doctorID != "" {
		did, err := uuid.Parse(doctorID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor_id")
		}
		if dateStr := c.QueryParam("date"); dateStr != "" {
			date, err := time.Parse("2006-01-02", dateStr)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
			}
			items, err := h.svc.ListByDoctorDate(ctx, did, date)
			if err != nil {
				return respond(c, 0, nil, err)
			}
			return c.JSON(http.StatusOK, items)
		}
		items, total, err := h.svc.ListByDoctor(ctx, did, pg.Limit, pg.Offset)
		if err != nil {
			return respond(c, 0, nil, err)
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	}
	if patientID := c.QueryParam("patient_id"); patientID != "" {
		pid, err := uuid.Parse(patientID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		items, total, err := h.svc.ListByPatient(ctx, pid, pg.Limit, pg.Offset)
		if err != nil {
			return respond(c, 0, nil, err)
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	}
	return echo.NewHTTPError(http.StatusBadRequest, "doctor_id or patient_id is required")
}

func (h *Handler) Confirm(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	a, err := h.svc.Confirm(c.Request().Context(), id)
	return respond(c, http.StatusOK, a, err)
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) Reject(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req reasonRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.Reject(c.Request().Context(), id, req.Reason)
	return respond(c, http.StatusOK, a, err)
}

type bulkRequest struct {
	IDs    []uuid.UUID `json:"ids"`
	Action string      `json:"action"`
	Reason string      `json:"reason"`
}

func (h *Handler) Bulk(c echo.Context) error {
	var req bulkRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if len(req.IDs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "ids is required")
	}
	var results []BulkResult
	switch req.Action {
	case "confirm":
		results = h.svc.BulkConfirm(c.Request().Context(), req.IDs)
	case "reject":
		results = h.svc.BulkReject(c.Request().Context(), req.IDs, req.Reason)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "action must be confirm or reject")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"results": results})
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	var a *Appointment
	switch req.Status {
	case StatusExamining:
		a, err = h.svc.StartExamination(ctx, id)
	case StatusWaitingResult:
		a, err = h.svc.MoveToAwaitingResults(ctx, id)
	case StatusCompleted:
		a, err = h.svc.Complete(ctx, id)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "status must be examining, waiting_result or completed")
	}
	return respond(c, http.StatusOK, a, err)
}

type recordRequest struct {
	RecordID uuid.UUID `json:"record_id"`
}

func (h *Handler) LinkExaminationRecord(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req recordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.RecordID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "record_id is required")
	}
	a, err := h.svc.LinkExaminationRecord(c.Request().Context(), id, req.RecordID)
	return respond(c, http.StatusOK, a, err)
}

func (h *Handler) Cancel(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req reasonRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.Cancel(c.Request().Context(), id, req.Reason)
	return respond(c, http.StatusOK, a, err)
}

func (h *Handler) Purge(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	actor := auth.FromContext(c.Request().Context())
	if actor == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	actorID, err := uuid.Parse(actor.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid actor id")
	}
	if err := h.svc.Purge(c.Request().Context(), id, actorID); err != nil {
		return respond(c, 0, nil, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type stopAllRequest struct {
	Date   string `json:"date"`
	Scope  string `json:"scope"`
	Reason string `json:"reason"`
}

func (h *Handler) StopAll(c echo.Context) error {
	doctorID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req stopAllRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	count, err := h.svc.StopAll(c.Request().Context(), doctorID, date, req.Scope, req.Reason)
	if err != nil {
		return respond(c, 0, nil, err)
	}
	return c.JSON(http.StatusOK, map[string]int{"cancelled_count": count})
}
