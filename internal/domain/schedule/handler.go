package schedule

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
	svc      *Service
	resolver *Resolver
}

func NewHandler(svc *Service, resolver *Resolver) *Handler {
	return &Handler{svc: svc, resolver: resolver}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/doctors/:id/availability", h.GetAvailability)

	// Catalog writes are restricted to doctors and admins.
	writeGroup := api.Group("", auth.RequireRole(auth.RoleDoctor))
	writeGroup.POST("/locations", h.CreateLocation)
	writeGroup.PUT("/locations/:id", h.UpdateLocation)
	writeGroup.DELETE("/locations/:id", h.DeleteLocation)
	writeGroup.POST("/shifts", h.CreateShift)
	writeGroup.PUT("/shifts/:id", h.UpdateShift)
	writeGroup.DELETE("/shifts/:id", h.DeleteShift)
	writeGroup.POST("/doctors/:id/weekly-shifts", h.UpsertWeeklyShift)
	writeGroup.DELETE("/weekly-shifts/:id", h.RemoveWeeklyShift)
	writeGroup.PUT("/doctors/:id/overtime/:dow", h.SetOvertimeDay)
	writeGroup.POST("/doctors/:id/overtime/:dow/toggle", h.ToggleOvertimeDay)
	writeGroup.POST("/doctors/:id/overtime/:dow/pauses", h.AddPausePeriod)
	writeGroup.DELETE("/doctors/:id/overtime/:dow/pauses", h.RemovePausePeriod)
	writeGroup.POST("/doctors/:id/exceptions", h.AddSpecialException)
	writeGroup.DELETE("/exceptions/:id", h.RemoveSpecialException)

	api.GET("/locations", h.ListLocations)
	api.GET("/locations/:id", h.GetLocation)
	api.GET("/shifts", h.ListShifts)
	api.GET("/shifts/:id", h.GetShift)
	api.GET("/doctors/:id/weekly-shifts", h.WeeklyPattern)
	api.GET("/doctors/:id/overtime", h.ListOvertimeDays)
	api.GET("/doctors/:id/exceptions", h.ListExceptions)
}

// respondError maps a domain error to its HTTP status with a structured body.
func respondError(c echo.Context, err error) error {
	if derr := clinicerr.AsError(err); derr != nil {
		return c.JSON(clinicerr.HTTPStatus(err), map[string]interface{}{"error": derr})
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func parseID(c echo.Context, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+param)
	}
	return id, nil
}

func parseDay(c echo.Context) (int, error) {
	var dow int
	if err := echo.PathParamsBinder(c).Int("dow", &dow).BindError(); err != nil || dow < 0 || dow > 6 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid day of week")
	}
	return dow, nil
}

// -- Availability --

func (h *Handler) GetAvailability(c echo.Context) error {
	doctorID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	date, err := time.Parse("2006-01-02", c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	avail, err := h.resolver.Availability(c.Request().Context(), doctorID, date)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, avail)
}

// -- Locations --

type locationRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

func (h *Handler) CreateLocation(c echo.Context) error {
	var req locationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	l, err := h.svc.CreateLocation(c.Request().Context(), req.Name, req.Address)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, l)
}

func (h *Handler) GetLocation(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	l, err := h.svc.GetLocation(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, l)
}

func (h *Handler) UpdateLocation(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req locationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	l, err := h.svc.UpdateLocation(c.Request().Context(), id, req.Name, req.Address)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, l)
}

func (h *Handler) DeleteLocation(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteLocation(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListLocations(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListLocations(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// -- Shifts --

type shiftRequest struct {
	Name       string    `json:"name"`
	Start      string    `json:"start"`
	End        string    `json:"end"`
	LocationID uuid.UUID `json:"location_id"`
}

func (h *Handler) CreateShift(c echo.Context) error {
	var req shiftRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sh, err := h.svc.CreateShift(c.Request().Context(), req.Name, req.Start, req.End, req.LocationID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, sh)
}

func (h *Handler) GetShift(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	sh, err := h.svc.GetShift(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, sh)
}

func (h *Handler) UpdateShift(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req shiftRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sh, err := h.svc.UpdateShift(c.Request().Context(), id, req.Name, req.Start, req.End, req.LocationID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, sh)
}

func (h *Handler) DeleteShift(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteShift(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListShifts(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListShifts(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// -- Weekly pattern --

type weeklyShiftRequest struct {
	DayOfWeek int       `json:"day_of_week"`
	ShiftID   uuid.UUID `json:"shift_id"`
}

func (h *Handler) UpsertWeeklyShift(c echo.Context) error {
	doctorID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req weeklyShiftRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ws, err := h.svc.UpsertWeeklyShift(c.Request().Context(), doctorID, req.DayOfWeek, req.ShiftID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, ws)
}

func (h *Handler) RemoveWeeklyShift(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.RemoveWeeklyShift(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) WeeklyPattern(c echo.Context) error {
	doctorID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	items, err := h.svc.WeeklyPattern(c.Request().Context(), doctorID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

// -- Overtime --

func (h *Handler) SetOvertimeDay(c echo.Context) error {
	doctorID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	dow, err := parseDay(c)
	if err != nil {
		return err
	}
	var req OvertimeDayInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	day, err := h.svc.SetOvertimeDay(c.Request().Context(), doctorID, dow, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, day)
}

func (h *Handler) ToggleOvertimeDay(c echo.Context) error {
	doctorID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	dow, err := parseDay(c)
	if err != nil {
		return err
	}
	active, err := h.svc.ToggleOvertimeDay(c.Request().Context(), doctorID, dow)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"active": active})
}

type pauseRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (r pauseRequest) dates() (time.Time, time.Time, error) {
	from, err := time.Parse("2006-01-02", r.From)
	if err != nil {
		return time.Time{}, time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "from must be YYYY-MM-DD")
	}
	to, err := time.Parse("2006-01-02", r.To)
	if err != nil {
		return time.Time{}, time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "to must be YYYY-MM-DD")
	}
	return from, to, nil
}

func (h *Handler) AddPausePeriod(c echo.Context) error {
	doctorID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	dow, err := parseDay(c)
	if err != nil {
		return err
	}
	var req pauseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	from, to, err := req.dates()
	if err != nil {
		return err
	}
	day, err := h.svc.AddPausePeriod(c.Request().Context(), doctorID, dow, from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, day)
}

func (h *Handler) RemovePausePeriod(c echo.Context) error {
	doctorID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	dow, err := parseDay(c)
	if err != nil {
		return err
	}
	var req pauseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	from, to, err := req.dates()
	if err != nil {
		return err
	}
	day, err := h.svc.RemovePausePeriod(c.Request().Context(), doctorID, dow, from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, day)
}

func (h *Handler) ListOvertimeDays(c echo.Context) error {
	doctorID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	items, err := h.svc.ListOvertimeDays(c.Request().Context(), doctorID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

// -- Special exceptions --

type exceptionRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Type      string `json:"type"`
	Note      string `json:"note"`
}

func (h *Handler) AddSpecialException(c echo.Context) error {
	doctorID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req exceptionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "start_date must be YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "end_date must be YYYY-MM-DD")
	}
	e, err := h.svc.AddSpecialException(c.Request().Context(), doctorID, start, end, req.Type, req.Note)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, e)
}

func (h *Handler) RemoveSpecialException(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.RemoveSpecialException(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListExceptions(c echo.Context) error {
	doctorID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	items, err := h.svc.ListExceptions(c.Request().Context(), doctorID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}
