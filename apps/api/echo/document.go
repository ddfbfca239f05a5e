package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/okapitech/ratiba/core"
	"github.com/okapitech/ratiba/core/document"
)

type documentApi struct {
	svc *document.Service
}

func registerDocumentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *document.Service) {
	api := documentApi{svc: svc}

	dg := g.Group("/documents", jwt)
	dg.GET("", api.query)
	dg.POST("", api.attach)
	dg.DELETE("/:id", api.destroy)
	dg.GET("/:id/url", api.downloadURL)
}

func (api *documentApi) query(ctx echo.Context) error {
	sessionID, groupID := bindTarget(ctx)
	if !sessionID.Valid && !groupID.Valid {
		return core.NewValidationError(errors.New("a sessionId or groupId is required"))
	}

	docs, err := api.svc.Query(ctx.Request().Context(), sessionID, groupID)
	if err != nil {
		return errors.Wrap(err, "querying documents")
	}
	if docs == nil {
		docs = []document.Document{}
	}
	return ctx.JSON(http.StatusOK, docs)
}

func (api *documentApi) attach(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data document.NewDocument
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDocument")
	}
	if err := validateStruct(data); err != nil {
		return err
	}

	doc, err := api.svc.Attach(ctx.Request().Context(), data, claims.Subject)
	if err != nil {
		return errors.Wrap(err, "attaching document")
	}
	return ctx.JSON(http.StatusCreated, doc)
}

func (api *documentApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting document")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *documentApi) downloadURL(ctx echo.Context) error {
	u, err := api.svc.DownloadURL(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == document.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "resolving download URL")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"url": u})
}
