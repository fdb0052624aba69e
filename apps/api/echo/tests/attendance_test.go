package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/checkcheck/backend/core"
	"github.com/checkcheck/backend/tests"
)

func Test_attendanceApi(t *testing.T) {
	app := setup(t)
	testutil.CreateStudent(t, app.students, "11", "3102", "Kim")
	lee := testutil.CreateStudent(t, app.students, "12", "1215", "Lee")
	testutil.CreateEvent(t, app.events, lee, "2024-03-15 08:45:10")

	tests := []httpTest{
		{
			name: "checkin: invalid", method: http.MethodPost, path: "/v1/attendance/checkin",
			body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: []byte(`{"fid":"this field is required","timestamp":"this field is required"}`),
		},
		{
			name: "checkin: bad timestamp", method: http.MethodPost, path: "/v1/attendance/checkin",
			body: []byte(`{"fid":"11","timestamp":"15/03/2024 7:20"}`), wantCode: http.StatusBadRequest,
			wantData: []byte(`{"timestamp":"must be a timestamp formatted as YYYY-MM-DD HH:MM:SS"}`),
		},
		{
			name: "checkin: unknown device", method: http.MethodPost, path: "/v1/attendance/checkin",
			body: []byte(`{"fid":"99","timestamp":"2024-03-15 07:20:00"}`), wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "fingerprint id is not registered to any student"}),
		},
		{
			name: "checkin", method: http.MethodPost, path: "/v1/attendance/checkin",
			body: []byte(`{"fid":"11","timestamp":"2024-03-15 07:20:00"}`), wantCode: http.StatusCreated,
			wantData: []byte(`{"id":2,"fid":"11","name":"Kim","student_number":"3102","timestamp":"2024-03-15 07:20:00","status":"on_time"}`),
		},
		{
			name: "checkin: twice the same day", method: http.MethodPost, path: "/v1/attendance/checkin",
			body: []byte(`{"fid":"11","timestamp":"2024-03-15 07:50:00"}`), wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: "student has already checked in on this date"}),
		},
		{name: "check", path: "/v1/attendance/check?fid=11&date=2024-03-15", wantCode: http.StatusOK, wantData: []byte(`{"already_attended":true}`)},
		{name: "check other day", path: "/v1/attendance/check?fid=11&date=2024-03-16", wantCode: http.StatusOK, wantData: []byte(`{"already_attended":false}`)},
		{
			name: "check: bad date", path: "/v1/attendance/check?fid=11&date=2024-13-01", wantCode: http.StatusBadRequest,
			wantData: []byte(`{"date":"invalid date, expected YYYY-MM-DD"}`),
		},
		{
			name: "on date", path: "/v1/attendance?date=2024-03-15", wantCode: http.StatusOK,
			wantData: []byte(`[
				{"id":2,"fid":"11","name":"Kim","student_number":"3102","timestamp":"2024-03-15 07:20:00","status":"on_time"},
				{"id":1,"fid":"12","name":"Lee","student_number":"1215","timestamp":"2024-03-15 08:45:10","status":"absent"}
			]`),
		},
		{name: "on empty date", path: "/v1/attendance?date=2024-03-16", wantCode: http.StatusOK, wantData: []byte(`[]`)},
		{
			name: "recent", path: "/v1/attendance/recent?date=2024-03-15&limit=1", wantCode: http.StatusOK,
			wantData: []byte(`[{"id":1,"fid":"12","name":"Lee","student_number":"1215","timestamp":"2024-03-15 08:45:10","status":"absent"}]`),
		},
		{
			name: "recent: bad limit", path: "/v1/attendance/recent?limit=-3", wantCode: http.StatusBadRequest,
			wantData: []byte(`{"limit":"must be a positive integer"}`),
		},
		{name: "classify on time", path: "/v1/attendance/classify?time=07:29:59", wantCode: http.StatusOK, wantData: []byte(`{"time":"07:29:59","status":"on_time","label":"출석"}`)},
		{name: "classify late", path: "/v1/attendance/classify?time=07:30", wantCode: http.StatusOK, wantData: []byte(`{"time":"07:30:00","status":"late","label":"지각"}`)},
		{name: "classify absent", path: "/v1/attendance/classify?time=08:30:00", wantCode: http.StatusOK, wantData: []byte(`{"time":"08:30:00","status":"absent","label":"결석"}`)},
		{
			name: "classify: bad time", path: "/v1/attendance/classify?time=25:00", wantCode: http.StatusBadRequest,
			wantData: []byte(`{"time":"invalid time, expected HH:MM or HH:MM:SS"}`),
		},
	}
	runHTTPTests(t, app, tests)
}

func Test_checkInRateLimit(t *testing.T) {
	app := setup(t, func(conf *core.Config) { conf.Server.CheckInRate = 1 })
	testutil.CreateStudent(t, app.students, "11", "3102", "Kim")
	testutil.CreateStudent(t, app.students, "12", "1215", "Lee")

	req, rec := newRequest(http.MethodPost, "/v1/attendance/checkin", []byte(`{"fid":"11","timestamp":"2024-03-15 07:20:00"}`))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	req, rec = newRequest(http.MethodPost, "/v1/attendance/checkin", []byte(`{"fid":"12","timestamp":"2024-03-15 07:21:00"}`))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// only the check-in route is limited
	req, rec = newRequest(http.MethodGet, "/v1/attendance/check?fid=12&date=2024-03-15")
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"already_attended":false}`, rec.Body.String())
}
