package echoapi

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/volatiletech/null/v8"

	"github.com/okapitech/ratiba/core"
)

const dateLayout = "2006-01-02"

// bindDate parses a required date query param.
func bindDate(ctx echo.Context, param string) (time.Time, error) {
	raw := ctx.QueryParam(param)
	if raw == "" {
		return time.Time{}, core.NewValidationError(nil, core.FieldError{Field: param, Error: "this field is required"})
	}
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, core.NewValidationError(nil, core.FieldError{Field: param, Error: "must be a YYYY-MM-DD date"})
	}
	return date, nil
}

// bindTarget reads the sessionId/groupId query pair as nullable strings.
func bindTarget(ctx echo.Context) (sessionID, groupID null.String) {
	if v := ctx.QueryParam("sessionId"); v != "" {
		sessionID = null.StringFrom(v)
	}
	if v := ctx.QueryParam("groupId"); v != "" {
		groupID = null.StringFrom(v)
	}
	return sessionID, groupID
}

// validateStruct runs the shared validator and returns a translated
// ValidationError on failure.
func validateStruct(data interface{}) error {
	return core.Validate.Struct(data)
}
