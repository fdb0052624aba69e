package echoapi

import (
	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
)

var errInvalidToken = errors.New("token is not valid")

// newJWTConfig configures echo's JWT middleware for HS256 tokens signed with secret.
// Tokens are parsed with jwt-go into *Claims, so the stored *jwt.Token is the one GenerateToken signs.
// Requests without an Authorization header are let through unless required is set.
func newJWTConfig(secret string, required bool) middleware.JWTConfig {
	key := []byte(secret)
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != middleware.AlgorithmHS256 {
			return nil, errors.Errorf("unexpected jwt signing method=%v", token.Header["alg"])
		}
		return key, nil
	}

	return middleware.JWTConfig{
		Skipper: func(ctx echo.Context) bool {
			return !required && ctx.Request().Header.Get(echo.HeaderAuthorization) == ""
		},
		ContextKey: contextTokenKey,
		ParseTokenFunc: func(auth string, _ echo.Context) (interface{}, error) {
			token, err := jwt.ParseWithClaims(auth, new(Claims), keyFunc)
			if err != nil {
				return nil, err
			}
			if !token.Valid {
				return nil, errInvalidToken
			}
			return token, nil
		},
	}
}

func authMiddleware(secret string, required bool) echo.MiddlewareFunc {
	return middleware.JWTWithConfig(newJWTConfig(secret, required))
}
