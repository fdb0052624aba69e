package echoapi

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/checkcheck/backend/core"
	"github.com/checkcheck/backend/core/stats"
)

const mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type statsApi struct {
	svc *stats.Service
}

func registerStatsAPI(g *echo.Group, auth echo.MiddlewareFunc, svc *stats.Service) {
	api := statsApi{svc: svc}

	sg := g.Group("/stats", auth)
	sg.GET("/daily", api.daily)
	sg.GET("/monthly", api.monthly)
	sg.GET("/monthly/export", api.export)
	sg.GET("/classes", api.classes)
	sg.GET("/grades", api.grades)
}

// Handlers

func (api *statsApi) daily(ctx echo.Context) error {
	date, err := queryDate(ctx, "date")
	if err != nil {
		return err
	}
	counts, err := api.svc.DailyCounts(ctx.Request().Context(), date)
	if err != nil {
		return errors.Wrap(err, "computing daily counts")
	}
	return ctx.JSON(http.StatusOK, counts)
}

func (api *statsApi) grid(ctx echo.Context) (stats.MonthlyGrid, error) {
	month, err := queryMonth(ctx, "month")
	if err != nil {
		return stats.MonthlyGrid{}, err
	}
	grid, err := api.svc.MonthlyGrid(ctx.Request().Context(), month, core.CleanString(ctx.QueryParam("class")))
	if err != nil {
		return stats.MonthlyGrid{}, errors.Wrap(err, "building monthly grid")
	}
	return grid, nil
}

func (api *statsApi) monthly(ctx echo.Context) error {
	grid, err := api.grid(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grid)
}

func (api *statsApi) export(ctx echo.Context) error {
	grid, err := api.grid(ctx)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err = api.svc.ExportMonthlyGrid(ctx.Request().Context(), grid, &buf); err != nil {
		return errors.Wrap(err, "exporting monthly grid")
	}

	name := "attendance-" + grid.Month.String()
	if grid.Class != "" {
		name += "-class" + grid.Class
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name+".xlsx"))
	return ctx.Blob(http.StatusOK, mimeXLSX, buf.Bytes())
}

func (api *statsApi) classes(ctx echo.Context) error {
	counts, err := api.svc.ClassCounts(ctx.Request().Context(), core.CleanString(ctx.QueryParam("grade")))
	if err != nil {
		return errors.Wrap(err, "counting classes")
	}
	return ctx.JSON(http.StatusOK, counts)
}

func (api *statsApi) grades(ctx echo.Context) error {
	counts, err := api.svc.GradeCounts(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "counting grades")
	}
	return ctx.JSON(http.StatusOK, counts)
}
