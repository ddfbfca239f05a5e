package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/okapitech/ratiba/core"
	"github.com/okapitech/ratiba/core/attendance"
	"github.com/okapitech/ratiba/core/provider"
	"github.com/okapitech/ratiba/core/schedule"
)

type scheduleApi struct {
	svc     *schedule.Service
	provSvc provider.ServiceInterface
	attSvc  *attendance.Service
}

func registerScheduleAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *schedule.Service,
	provSvc provider.ServiceInterface,
	attSvc *attendance.Service,
) {
	api := scheduleApi{svc: svc, provSvc: provSvc, attSvc: attSvc}

	sg := g.Group("/sessions", jwt)
	sg.GET("", api.query)
	sg.POST("/persist", api.persist)
	sg.PUT("/:id/assign", api.assign)
	sg.PUT("/:id/notes", api.saveNotes)
	sg.GET("/:id/attendance", api.getAttendance)
	sg.POST("/:id/attendance", api.setAttendance)

	g.GET("/week", api.week, jwt)
}

// query returns the visibility-filtered sessions of an explicit [start, end]
// window, plus any students the response references that the client did not
// already hold.
func (api *scheduleApi) query(ctx echo.Context) error {
	start, err := bindDate(ctx, "start")
	if err != nil {
		return err
	}
	end, err := bindDate(ctx, "end")
	if err != nil {
		return err
	}

	prov, err := getContextProvider(ctx, api.provSvc)
	if err != nil {
		return errors.Wrap(err, "getting context provider")
	}

	view, err := api.svc.QueryWeek(ctx.Request().Context(), prov, start, end, schedule.ViewMode(ctx.QueryParam("view")), nil)
	if err != nil {
		return errors.Wrap(err, "querying sessions")
	}
	return ctx.JSON(http.StatusOK, view)
}

type weekResponse struct {
	Dates  []time.Time        `json:"dates"`
	View   schedule.WeekView  `json:"view"`
	Blocks [][]schedule.Block `json:"blocks"` // one slice per weekday
}

// week resolves the Monday-to-Friday window at the given offset from the
// current week, then serves it like query does, plus per-day display blocks.
func (api *scheduleApi) week(ctx echo.Context) error {
	offset := 0
	if raw := ctx.QueryParam("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "offset", Error: "must be an integer"})
		}
		offset = n
	}

	prov, err := getContextProvider(ctx, api.provSvc)
	if err != nil {
		return errors.Wrap(err, "getting context provider")
	}

	dates := schedule.WeekDates(time.Now(), offset)
	view, err := api.svc.QueryWeek(
		ctx.Request().Context(), prov,
		dates[0], dates[schedule.WeekDays-1],
		schedule.ViewMode(ctx.QueryParam("view")), nil,
	)
	if err != nil {
		return errors.Wrap(err, "querying week")
	}

	resp := weekResponse{Dates: dates[:], View: view, Blocks: make([][]schedule.Block, schedule.WeekDays)}
	for day := 0; day < schedule.WeekDays; day++ {
		daySessions := make([]schedule.Session, 0)
		for _, s := range view.Sessions {
			if s.DayOfWeek.Valid && s.DayOfWeek.Int == day+1 {
				daySessions = append(daySessions, s)
			}
		}
		resp.Blocks[day] = schedule.DayBlocks(daySessions, prov.ID)
	}
	return ctx.JSON(http.StatusOK, resp)
}

type persistRequest struct {
	Sessions []schedule.Session `json:"sessions" validate:"required,min=1"`
}

func (api *scheduleApi) persist(ctx echo.Context) error {
	var data persistRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to persistRequest")
	}
	if err := validateStruct(data); err != nil {
		return err
	}

	sessions, err := api.svc.EnsureAllPersisted(ctx.Request().Context(), data.Sessions)
	if err != nil {
		return errors.Wrap(err, "persisting sessions")
	}
	return ctx.JSON(http.StatusOK, persistRequest{Sessions: sessions})
}

// assignRequest carries the whole session so an un-persisted temp session can
// be promoted as part of the assignment.
type assignRequest struct {
	Session      schedule.Session `json:"session"`
	SpecialistID string           `json:"assigned_to_specialist_id"`
	SEAID        string           `json:"assigned_to_sea_id"`
}

func (api *scheduleApi) assign(ctx echo.Context) error {
	var data assignRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to assignRequest")
	}
	if data.Session.ID != ctx.Param("id") {
		return core.NewValidationError(nil, core.FieldError{Field: "session", Error: "session id mismatch"})
	}

	reqCtx := ctx.Request().Context()
	var (
		updated schedule.Session
		err     error
	)
	switch {
	case data.SpecialistID != "":
		updated, err = api.svc.AssignSpecialist(reqCtx, data.Session, data.SpecialistID)
	case data.SEAID != "":
		updated, err = api.svc.AssignSEA(reqCtx, data.Session, data.SEAID)
	default:
		updated, err = api.svc.ClearAssignment(reqCtx, data.Session)
	}
	if err != nil {
		return errors.Wrap(err, "updating assignment")
	}
	return ctx.JSON(http.StatusOK, updated)
}

type notesRequest struct {
	Session schedule.Session `json:"session"`
	Notes   string           `json:"session_notes"`
}

func (api *scheduleApi) saveNotes(ctx echo.Context) error {
	var data notesRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to notesRequest")
	}
	if data.Session.ID != ctx.Param("id") {
		return core.NewValidationError(nil, core.FieldError{Field: "session", Error: "session id mismatch"})
	}

	updated, err := api.svc.SaveNotes(ctx.Request().Context(), data.Session, data.Notes)
	if err != nil {
		return errors.Wrap(err, "saving notes")
	}
	return ctx.JSON(http.StatusOK, updated)
}

func (api *scheduleApi) getAttendance(ctx echo.Context) error {
	date, err := bindDate(ctx, "session_date")
	if err != nil {
		return err
	}
	records, err := api.attSvc.Get(ctx.Request().Context(), ctx.Param("id"), date)
	if err != nil {
		return errors.Wrap(err, "querying attendance")
	}
	return ctx.JSON(http.StatusOK, records)
}

type attendanceRequest struct {
	SessionDate time.Time          `json:"session_date" validate:"required"`
	Entries     []attendance.Entry `json:"entries" validate:"required,min=1,dive"`
}

func (api *scheduleApi) setAttendance(ctx echo.Context) error {
	var data attendanceRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to attendanceRequest")
	}
	if err := validateStruct(data); err != nil {
		return err
	}

	records, err := api.attSvc.Set(ctx.Request().Context(), ctx.Param("id"), data.SessionDate, data.Entries)
	if err != nil {
		return errors.Wrap(err, "setting attendance")
	}
	return ctx.JSON(http.StatusOK, records)
}
