package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/okapitech/ratiba/core/lesson"
	"github.com/okapitech/ratiba/core/schedule"
)

type lessonApi struct {
	svc  *lesson.Service
	orch *lesson.Orchestrator
}

func registerLessonAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *lesson.Service, orch *lesson.Orchestrator) {
	api := lessonApi{svc: svc, orch: orch}

	lg := g.Group("/lessons", jwt)
	lg.GET("", api.query)
	lg.POST("", api.save)
	lg.DELETE("/:id", api.destroy)
	lg.POST("/generate", api.generate)
}

// query serves either one lesson (slot or groupId given) or the full
// saved-lessons map for a date.
func (api *lessonApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	date, err := bindDate(ctx, "date")
	if err != nil {
		return err
	}
	scope := claims.Scope()
	reqCtx := ctx.Request().Context()

	slot := ctx.QueryParam("slot")
	_, groupID := bindTarget(ctx)
	if slot != "" || groupID.Valid {
		l, err := api.svc.Get(reqCtx, claims.Subject, groupID, date, slot, scope)
		if err != nil {
			if errors.Cause(err) == lesson.ErrNotFound {
				return errHttpNotFound
			}
			return errors.Wrap(err, "getting lesson")
		}
		return ctx.JSON(http.StatusOK, l)
	}

	saved, err := api.svc.SavedForDate(reqCtx, claims.Subject, date, scope)
	if err != nil {
		return errors.Wrap(err, "querying saved lessons")
	}
	return ctx.JSON(http.StatusOK, saved)
}

func (api *lessonApi) save(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data lesson.Lesson
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Lesson")
	}
	// the token, not the payload, decides ownership and tenant scope
	data.ProviderID = claims.Subject
	data.Scope = claims.Scope()

	saved, err := api.svc.Save(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "saving lesson")
	}
	return ctx.JSON(http.StatusOK, saved)
}

func (api *lessonApi) destroy(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id"), claims.Scope()); err != nil {
		return errors.Wrap(err, "deleting lesson")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// generateRequest drives a whole-day generation run. The client supplies the
// day's sessions and the students it already holds; slots are derived
// server-side so their ordering matches the calendar's.
type generateRequest struct {
	Date        time.Time           `json:"date" validate:"required"`
	Sessions    []schedule.Session  `json:"sessions" validate:"required,min=1"`
	Students    schedule.StudentMap `json:"students"`
	Subject     string              `json:"subject"`
	SubjectType string              `json:"subjectType"`
	Topic       string              `json:"topic"`
	TeacherRole string              `json:"teacherRole"`
	Duration    int                 `json:"duration"`
}

func (api *lessonApi) generate(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data generateRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to generateRequest")
	}
	if err := validateStruct(data); err != nil {
		return err
	}

	scope := claims.Scope()
	reqCtx := ctx.Request().Context()

	prev, err := api.svc.SavedForDate(reqCtx, claims.Subject, data.Date, scope)
	if err != nil {
		return errors.Wrap(err, "loading saved lessons")
	}

	slots := schedule.GroupBySlot(data.Sessions)
	buildReq := func(slot schedule.TimeSlot) lesson.GenerationRequest {
		students := make([]schedule.Student, 0, len(slot.Sessions))
		seen := make(map[string]struct{}, len(slot.Sessions))
		for _, s := range slot.Sessions {
			if _, dup := seen[s.StudentID]; dup {
				continue
			}
			seen[s.StudentID] = struct{}{}
			if st, ok := data.Students[s.StudentID]; ok {
				students = append(students, st)
			} else {
				students = append(students, schedule.Student{ID: s.StudentID})
			}
		}
		return lesson.GenerationRequest{
			Students:    students,
			Subject:     data.Subject,
			SubjectType: data.SubjectType,
			Duration:    data.Duration,
			Topic:       data.Topic,
			TeacherRole: data.TeacherRole,
			SchoolID:    null.NewString(claims.SchoolID, claims.SchoolID != ""),
			LessonDate:  data.Date,
			TimeSlot:    slot.Key,
		}
	}

	summary, err := api.orch.GenerateForDay(reqCtx, claims.Subject, data.Date, slots, buildReq, scope, prev, nil)
	if err != nil {
		return errors.Wrap(err, "generating lessons")
	}
	return ctx.JSON(http.StatusOK, summary)
}
