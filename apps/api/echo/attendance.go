package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/checkcheck/backend/core"
	"github.com/checkcheck/backend/core/attendance"
	"github.com/checkcheck/backend/core/datetime"
	"github.com/checkcheck/backend/core/stats"
)

type checkResponse struct {
	AlreadyAttended bool `json:"already_attended"`
}

type classifyResponse struct {
	Time   string            `json:"time"`
	Status attendance.Status `json:"status"`
	Label  string            `json:"label"`
}

type attendanceApi struct {
	svc   *attendance.Service
	stats *stats.Service
}

func registerAttendanceAPI(
	g *echo.Group,
	auth echo.MiddlewareFunc,
	checkInLimit echo.MiddlewareFunc,
	svc *attendance.Service,
	statsSvc *stats.Service,
) {
	api := attendanceApi{svc: svc, stats: statsSvc}

	ag := g.Group("/attendance")

	// device endpoints
	ag.GET("/check", api.check)
	ag.POST("/checkin", api.checkIn, checkInLimit)

	// staff endpoints
	ag.GET("", api.onDate, auth)
	ag.GET("/recent", api.recent, auth)
	ag.GET("/classify", api.classify, auth)
}

// Handlers

func (api *attendanceApi) check(ctx echo.Context) error {
	fid := core.CleanString(ctx.QueryParam("fid"))
	if fid == "" || !core.IsDigits(fid) {
		return fieldErr("fid", "fingerprint id must be numeric")
	}
	date, err := queryDate(ctx, "date")
	if err != nil {
		return err
	}
	exists, err := api.svc.HasEventOnDate(ctx.Request().Context(), fid, date)
	if err != nil {
		return errors.Wrap(err, "checking attendance")
	}
	return ctx.JSON(http.StatusOK, checkResponse{AlreadyAttended: exists})
}

func (api *attendanceApi) checkIn(ctx echo.Context) error {
	var data attendance.NewCheckIn
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCheckIn")
	}
	ev, err := api.svc.CheckIn(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "checking in")
	}
	return ctx.JSON(http.StatusCreated, eventResponse{Event: ev, Status: ev.Status()})
}

func (api *attendanceApi) onDate(ctx echo.Context) error {
	date, err := queryDate(ctx, "date")
	if err != nil {
		return err
	}
	events, err := api.svc.EventsOnDate(ctx.Request().Context(), date)
	if err != nil {
		return errors.Wrap(err, "listing events")
	}
	return ctx.JSON(http.StatusOK, newEventResponses(events))
}

func (api *attendanceApi) recent(ctx echo.Context) error {
	date, err := queryDate(ctx, "date")
	if err != nil {
		return err
	}
	limit, err := queryInt(ctx, "limit")
	if err != nil {
		return err
	}
	activities, err := api.stats.RecentActivities(ctx.Request().Context(), date, limit)
	if err != nil {
		return errors.Wrap(err, "listing recent activities")
	}
	return ctx.JSON(http.StatusOK, activities)
}

func (api *attendanceApi) classify(ctx echo.Context) error {
	c, err := datetime.ParseClock(ctx.QueryParam("time"))
	if err != nil {
		return fieldErr("time", err.Error())
	}
	status := attendance.Classify(c)
	return ctx.JSON(http.StatusOK, classifyResponse{Time: c.String(), Status: status, Label: status.Label()})
}
