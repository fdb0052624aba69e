package tests

import (
	"net/http"
	"testing"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"

	. "github.com/checkcheck/backend/apps/api/echo"
	"github.com/checkcheck/backend/core"
)

func Test_home(t *testing.T) {
	app := setup(t)
	req, rec := newRequest(http.MethodGet, "/")
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to CheckCheck API!", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func Test_auth(t *testing.T) {
	app := setup(t, func(conf *core.Config) { conf.Server.RequireAuth = true })

	forged, err := GenerateToken(&Claims{Name: "Mallory"}, "not-the-secret")
	if err != nil {
		t.Fatal(err)
	}
	expired, err := GenerateToken(&Claims{
		StandardClaims: jwt.StandardClaims{ExpiresAt: 1},
		Name:           "Park",
	}, secretKey)
	if err != nil {
		t.Fatal(err)
	}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, &Claims{Name: "Mallory"}).SignedString([]byte(secretKey))
	if err != nil {
		t.Fatal(err)
	}

	tests := []httpTest{
		{name: "missing token", path: "/v1/students", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "missing or malformed jwt"})},
		{name: "forged token", path: "/v1/students", token: forged, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "invalid or expired jwt"})},
		{name: "expired token", path: "/v1/students", token: expired, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "invalid or expired jwt"})},
		{name: "other algorithm", path: "/v1/students", token: hs512, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "invalid or expired jwt"})},
		{name: "valid token", path: "/v1/students", token: getToken(t, "Park"), wantCode: http.StatusOK, wantData: []byte("[]")},
		// devices never carry tokens
		{name: "device route", path: "/v1/students/verify?fid=1", wantCode: http.StatusOK, wantData: []byte(`{"registered":false}`)},
	}
	runHTTPTests(t, app, tests)

	req, rec := newRequest(http.MethodGet, "/v1/stats/grades")
	req.Header.Set("Authorization", "Token abc")
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func Test_optionalAuth(t *testing.T) {
	app := setup(t)

	forged, err := GenerateToken(&Claims{Name: "Mallory"}, "not-the-secret")
	if err != nil {
		t.Fatal(err)
	}

	tests := []httpTest{
		{name: "no token", path: "/v1/stats/grades", wantCode: http.StatusOK, wantData: []byte(`{}`)},
		{name: "valid token", path: "/v1/stats/grades", token: getToken(t, "Park"), wantCode: http.StatusOK, wantData: []byte(`{}`)},
		// a token that is sent must still be valid
		{name: "forged token", path: "/v1/stats/grades", token: forged, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "invalid or expired jwt"})},
	}
	runHTTPTests(t, app, tests)

	req, rec := newRequest(http.MethodGet, "/v1/stats/grades")
	req.Header.Set("Authorization", "Bearer")
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"missing or malformed jwt"}`, rec.Body.String())
}
