package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/checkcheck/backend/core/attendance"
	"github.com/checkcheck/backend/core/ledger"
)

type correctionResponse struct {
	Entry  ledger.Entry      `json:"entry"`
	Status attendance.Status `json:"status"`
}

type correctionApi struct {
	svc *ledger.Service
}

func registerCorrectionAPI(g *echo.Group, auth echo.MiddlewareFunc, svc *ledger.Service) {
	api := correctionApi{svc: svc}

	cg := g.Group("/corrections", auth)
	cg.GET("", api.query)
	cg.GET("/months", api.months)
	cg.POST("/additions", api.add)
	cg.POST("/modifications", api.modify)
}

// Handlers

func (api *correctionApi) query(ctx echo.Context) error {
	month, err := queryMonth(ctx, "month")
	if err != nil {
		return err
	}
	entries, err := api.svc.QueryByMonth(ctx.Request().Context(), month)
	if err != nil {
		return errors.Wrap(err, "querying corrections")
	}
	return ctx.JSON(http.StatusOK, entries)
}

func (api *correctionApi) months(ctx echo.Context) error {
	months, err := api.svc.AvailableMonths(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing correction months")
	}
	return ctx.JSON(http.StatusOK, months)
}

func (api *correctionApi) add(ctx echo.Context) error {
	var data ledger.NewAddition
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAddition")
	}
	data.Actor = string(contextActor(ctx, data.Actor))

	entry, err := api.svc.ApplyAddition(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "applying addition")
	}
	return ctx.JSON(http.StatusCreated, correctionResponse{Entry: entry, Status: data.Status()})
}

func (api *correctionApi) modify(ctx echo.Context) error {
	var data ledger.NewModification
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewModification")
	}
	data.Actor = string(contextActor(ctx, data.Actor))

	entry, err := api.svc.ApplyModification(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "applying modification")
	}
	return ctx.JSON(http.StatusCreated, correctionResponse{Entry: entry, Status: data.Status()})
}
