package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/checkcheck/backend/core"
	"github.com/checkcheck/backend/core/attendance"
	"github.com/checkcheck/backend/core/student"
)

type studentResponse struct {
	student.Student
	student.Identifier
}

func newStudentResponse(st student.Student) studentResponse {
	return studentResponse{Student: st, Identifier: st.Identifier()}
}

type verifyResponse struct {
	Registered bool             `json:"registered"`
	Student    *studentResponse `json:"student,omitempty"`
}

type eventResponse struct {
	attendance.Event
	Status attendance.Status `json:"status"`
}

func newEventResponses(events []attendance.Event) []eventResponse {
	resp := make([]eventResponse, 0, len(events))
	for _, ev := range events {
		resp = append(resp, eventResponse{Event: ev, Status: ev.Status()})
	}
	return resp
}

type studentApi struct {
	svc    *student.Service
	events *attendance.Service
}

func registerStudentAPI(g *echo.Group, auth echo.MiddlewareFunc, svc *student.Service, events *attendance.Service) {
	api := studentApi{svc: svc, events: events}

	sg := g.Group("/students")

	// device endpoints
	sg.GET("/verify", api.verify)

	// staff endpoints
	sg.GET("", api.list, auth)
	sg.POST("", api.create, auth)
	sg.GET("/:number", api.retrieve, auth)
	sg.GET("/:number/events", api.listEvents, auth)
}

// Handlers

func (api *studentApi) list(ctx echo.Context) error {
	students, err := api.svc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing students")
	}
	resp := make([]studentResponse, 0, len(students))
	for _, st := range students {
		resp = append(resp, newStudentResponse(st))
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	st, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, newStudentResponse(st))
}

func (api *studentApi) verify(ctx echo.Context) error {
	fid := core.CleanString(ctx.QueryParam("fid"))
	if fid == "" || !core.IsDigits(fid) {
		return fieldErr("fid", "fingerprint id must be numeric")
	}
	st, err := api.svc.GetByFingerprint(ctx.Request().Context(), fid)
	if err != nil {
		if err == student.ErrNotFound {
			return ctx.JSON(http.StatusOK, verifyResponse{})
		}
		return errors.Wrap(err, "verifying fingerprint id")
	}
	resp := newStudentResponse(st)
	return ctx.JSON(http.StatusOK, verifyResponse{Registered: true, Student: &resp})
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	st, err := api.svc.GetByNumber(ctx.Request().Context(), ctx.Param("number"))
	if err != nil {
		return errors.Wrap(err, "retrieving student")
	}
	return ctx.JSON(http.StatusOK, newStudentResponse(st))
}

func (api *studentApi) listEvents(ctx echo.Context) error {
	st, err := api.svc.GetByNumber(ctx.Request().Context(), ctx.Param("number"))
	if err != nil {
		return errors.Wrap(err, "retrieving student")
	}
	events, err := api.events.EventsForStudent(ctx.Request().Context(), st.Number)
	if err != nil {
		return errors.Wrap(err, "listing student events")
	}
	return ctx.JSON(http.StatusOK, newEventResponses(events))
}
