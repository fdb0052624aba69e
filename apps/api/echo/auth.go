package echoapi

import (
	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/checkcheck/backend/core"
	"github.com/checkcheck/backend/core/ledger"
)

// contextTokenKey holds the verified *jwt.Token of the request.
const contextTokenKey = "userToken"

// Claims are issued by the login bridge; only the staff member's name is used here.
type Claims struct {
	jwt.StandardClaims
	Name string `json:"name,omitempty"`
}

// GenerateToken signs claims with HS256.
func GenerateToken(claims *Claims, secret string) (string, error) {
	method := jwt.GetSigningMethod(middleware.AlgorithmHS256)
	token := jwt.NewWithClaims(method, claims)
	ss, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (*Claims, bool) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		claims, ok := token.Claims.(*Claims)
		return claims, ok
	}
	return nil, false
}

// contextActor resolves who is acting: token name or subject, then the given fallback, then ledger.DefaultActor.
func contextActor(ctx echo.Context, fallback string) core.Actor {
	var name, subject string
	if claims, ok := getContextClaims(ctx); ok {
		name, subject = claims.Name, claims.Subject
	}
	if actor := core.FirstNonBlank(name, subject, fallback); actor != "" {
		return core.Actor(actor)
	}
	return core.Actor(ledger.DefaultActor)
}
