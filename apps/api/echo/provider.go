package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/okapitech/ratiba/core/provider"
)

type providerApi struct {
	svc provider.ServiceInterface
}

func registerProviderAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc provider.ServiceInterface) {
	api := providerApi{svc: svc}

	pg := g.Group("/providers", jwt)
	pg.GET("/me", api.me)
	pg.GET("", api.query, adminMiddleware())
	pg.POST("", api.create, adminMiddleware())
	pg.GET("/:id", api.retrieve, adminMiddleware())
}

func (api *providerApi) me(ctx echo.Context) error {
	prov, err := getContextProvider(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context provider")
	}
	if prov.ID == "" {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, prov)
}

func (api *providerApi) query(ctx echo.Context) error {
	provs, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying providers")
	}
	if provs == nil {
		provs = []provider.Provider{}
	}
	return ctx.JSON(http.StatusOK, provs)
}

func (api *providerApi) create(ctx echo.Context) error {
	var data provider.NewProvider
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewProvider")
	}
	if err := validateStruct(data); err != nil {
		return err
	}

	prov, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating provider")
	}
	return ctx.JSON(http.StatusCreated, prov)
}

func (api *providerApi) retrieve(ctx echo.Context) error {
	prov, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == provider.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding provider by ID")
	}
	return ctx.JSON(http.StatusOK, prov)
}
