package jwtmiddleware

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/marketplace/internal/tokens"
)

const (
	ContextKey = "token"

	HeaderLookup = "header:Authorization:Bearer "
	// Browsers cannot set headers on a websocket handshake.
	HeaderOrQueryLookup = "header:Authorization:Bearer ,query:token"
)

// JWTMiddleware validates an HS256 access token found via lookup and stores
// the parsed *jwt.Token under ContextKey.
func JWTMiddleware(secret []byte, lookup string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:    secret,
		SigningMethod: "HS256",
		ContextKey:    ContextKey,
		TokenLookup:   lookup,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(tokens.AccessClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token").SetInternal(err)
		},
	})
}

func Claims(c echo.Context) (*tokens.AccessClaims, bool) {
	tkn, ok := c.Get(ContextKey).(*jwt.Token)
	if !ok || tkn == nil {
		return nil, false
	}
	claims, ok := tkn.Claims.(*tokens.AccessClaims)
	return claims, ok
}
