package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/movstream/streaming-service/pkg/utils"
)

// RequireAuth validates the bearer token and stores the caller identity in
// the request context. Requests without a valid token are rejected.
func (mw *MiddlewareManager) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		email, err := mw.identityFromRequest(c)
		if err != nil {
			mw.logger.Errorf("auth middleware RequestID: %s, ERROR: %s", utils.GetRequestID(c), err.Error())
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		}

		ctx := utils.WithUser(c.Request().Context(), email)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// OptionalAuth resolves the identity when a token is present but lets
// anonymous requests through. Playback endpoints use it so session tracking
// works for logged-in viewers without blocking everyone else.
func (mw *MiddlewareManager) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		email, err := mw.identityFromRequest(c)
		if err == nil && email != "" {
			ctx := utils.WithUser(c.Request().Context(), email)
			c.SetRequest(c.Request().WithContext(ctx))
		}
		return next(c)
	}
}

func (mw *MiddlewareManager) identityFromRequest(c echo.Context) (string, error) {
	bearerHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if bearerHeader == "" {
		return "", utils.ErrNoUserCtx
	}

	headerParts := strings.Split(bearerHeader, " ")
	if len(headerParts) != 2 || !strings.EqualFold(headerParts[0], "bearer") {
		return "", utils.ErrNoUserCtx
	}

	claims, err := utils.ValidateToken(headerParts[1], mw.cfg.Server.JwtSecretKey)
	if err != nil {
		return "", err
	}
	return claims.Email, nil
}
