package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	. "github.com/checkcheck/backend/apps/api/echo"
	"github.com/checkcheck/backend/core"
	"github.com/checkcheck/backend/core/attendance"
	"github.com/checkcheck/backend/core/ledger"
	"github.com/checkcheck/backend/core/stats"
	"github.com/checkcheck/backend/core/student"
	"github.com/checkcheck/backend/storage/database/sqlx"
	"github.com/checkcheck/backend/tests"
)

const secretKey = "test-secret"

type testApp struct {
	Server
	conf     *core.Config
	students student.Repository
	events   attendance.Repository
	logger   *testutil.Logger
}

func setup(t *testing.T, configure ...func(*core.Config)) testApp {
	conf := &core.Config{
		Env:       "TEST",
		TestMode:  true,
		AppName:   "CheckCheck",
		SecretKey: secretKey,
		Server: core.ServerConfig{
			CheckInRate:    1000,
			DisableReqLogs: true,
		},
		Database: core.DatabaseConfig{Engine: core.EngineSQLite, QueryTimeout: time.Second},
	}
	for _, fn := range configure {
		fn(conf)
	}

	// set up DB & repos
	db := testutil.OpenDB(t)
	students := sqlxrepos.NewStudentRepository(db, conf.Database.QueryTimeout)
	events := sqlxrepos.NewAttendanceRepository(db, conf.Database.QueryTimeout)
	entries := sqlxrepos.NewLedgerRepository(db, conf.Database.QueryTimeout)
	logger := testutil.NewLogger()

	// set up server
	server := NewServer(ServerDeps{
		Conf:          conf,
		Logger:        logger,
		StudentSvc:    student.NewService(students, logger),
		AttendanceSvc: attendance.NewService(events, students, logger),
		LedgerSvc:     ledger.NewService(db, entries, events, students, logger),
		StatsSvc:      stats.NewService(students, events, logger),
	})
	return testApp{Server: server, conf: conf, students: students, events: events, logger: logger}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	if method == "" {
		method = http.MethodGet
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, name string) string {
	token, err := GenerateToken(&Claims{Name: name}, secretKey)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app testApp, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	if !assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest)) {
		t.FailNow()
	}
}
