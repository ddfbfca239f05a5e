package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/okapitech/ratiba/core"
	"github.com/okapitech/ratiba/core/curriculum"
)

type curriculumApi struct {
	svc *curriculum.Service
}

func registerCurriculumAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *curriculum.Service) {
	api := curriculumApi{svc: svc}

	cg := g.Group("/curriculum", jwt)
	cg.GET("", api.status)
	cg.POST("", api.save)
	cg.PUT("", api.advance)
	cg.GET("/previous", api.previous)
	cg.POST("/answer-prompt", api.answerPrompt)
	cg.GET("/levels", api.levels)
}

// status runs the full detail-view state resolution: tracked, pending-prompt
// or uninitialized.
func (api *curriculumApi) status(ctx echo.Context) error {
	sessionID, groupID := bindTarget(ctx)
	date, err := bindDate(ctx, "sessionDate")
	if err != nil {
		return err
	}
	seeded := ctx.QueryParam("seeded") == "true"

	status, err := api.svc.GetStatus(ctx.Request().Context(), sessionID, groupID, date, seeded)
	if err != nil {
		if errors.Cause(err) == curriculum.ErrNoTarget {
			return core.NewValidationError(curriculum.ErrNoTarget)
		}
		return errors.Wrap(err, "resolving curriculum status")
	}
	return ctx.JSON(http.StatusOK, status)
}

func (api *curriculumApi) save(ctx echo.Context) error {
	var data curriculum.NewTracking
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTracking")
	}

	tr, err := api.svc.Save(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == curriculum.ErrNoTarget {
			return core.NewValidationError(curriculum.ErrNoTarget)
		}
		return errors.Wrap(err, "saving curriculum placement")
	}
	return ctx.JSON(http.StatusOK, tr)
}

type advanceRequest struct {
	SessionID   null.String `json:"session_id"`
	GroupID     null.String `json:"group_id"`
	SessionDate time.Time   `json:"session_date" validate:"required"`
	Action      string      `json:"action" validate:"required,oneof=next prev"`
}

func (api *curriculumApi) advance(ctx echo.Context) error {
	var data advanceRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to advanceRequest")
	}
	if err := validateStruct(data); err != nil {
		return err
	}

	tr, err := api.svc.Advance(ctx.Request().Context(), data.SessionID, data.GroupID, data.SessionDate, data.Action)
	if err != nil {
		if errors.Cause(err) == curriculum.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "advancing lesson counter")
	}
	return ctx.JSON(http.StatusOK, tr)
}

func (api *curriculumApi) previous(ctx echo.Context) error {
	sessionID, groupID := bindTarget(ctx)
	date, err := bindDate(ctx, "sessionDate")
	if err != nil {
		return err
	}

	prior, err := api.svc.Previous(ctx.Request().Context(), sessionID, groupID, date)
	if err != nil {
		if errors.Cause(err) == curriculum.ErrNoTarget {
			return core.NewValidationError(curriculum.ErrNoTarget)
		}
		return errors.Wrap(err, "resolving prior instance")
	}
	return ctx.JSON(http.StatusOK, prior)
}

type answerPromptRequest struct {
	SessionID   null.String `json:"session_id"`
	GroupID     null.String `json:"group_id"`
	SessionDate time.Time   `json:"session_date" validate:"required"`
	Completed   bool        `json:"completed"`
}

func (api *curriculumApi) answerPrompt(ctx echo.Context) error {
	var data answerPromptRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to answerPromptRequest")
	}
	if err := validateStruct(data); err != nil {
		return err
	}

	tr, err := api.svc.AnswerPrompt(ctx.Request().Context(), data.SessionID, data.GroupID, data.SessionDate, data.Completed)
	if err != nil {
		if errors.Cause(err) == curriculum.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "answering curriculum prompt")
	}
	return ctx.JSON(http.StatusOK, tr)
}

// levels serves the static curriculum catalog: types and their levels, in
// pedagogical order.
func (api *curriculumApi) levels(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{
		string(curriculum.TypeSPIRE):      curriculum.TypeSPIRE.Levels(),
		string(curriculum.TypeRevealMath): curriculum.TypeRevealMath.Levels(),
	})
}
