package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/obralink/marketplace/internal/api/middleware"
	"github.com/obralink/marketplace/internal/core/ports"
)

// ctxActor extracts the caller injected by the Auth middleware. An empty
// subject or role means the middleware did not run.
func ctxActor(c echo.Context) (ports.Actor, error) {
	id, _ := c.Get(middleware.CtxUserID).(string)
	role, _ := c.Get(middleware.CtxRole).(string)
	if id == "" || role == "" {
		return ports.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return ports.Actor{ID: id, Role: role}, nil
}

// ctxTokenClaims returns the full token identity, used by sign-out.
func ctxTokenClaims(c echo.Context) (ports.TokenClaims, error) {
	actor, err := ctxActor(c)
	if err != nil {
		return ports.TokenClaims{}, err
	}
	email, _ := c.Get(middleware.CtxEmail).(string)
	jti, _ := c.Get(middleware.CtxTokenID).(string)
	exp, _ := c.Get(middleware.CtxExpiresAt).(time.Time)
	return ports.TokenClaims{
		UserID:    actor.ID,
		Email:     email,
		Role:      actor.Role,
		TokenID:   jti,
		ExpiresAt: exp,
	}, nil
}
