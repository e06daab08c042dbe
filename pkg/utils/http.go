package utils

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

var ErrNoUserCtx = errors.New("user not found in context")

type UserCtxKey struct{}

// WithUser stores the resolved identity (user email) in the request context.
func WithUser(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, UserCtxKey{}, email)
}

func GetUserFromCtx(ctx context.Context) (string, error) {
	email, ok := ctx.Value(UserCtxKey{}).(string)
	if !ok || email == "" {
		return "", ErrNoUserCtx
	}
	return email, nil
}

// GetUserOptional returns the identity if present, empty string otherwise.
func GetUserOptional(ctx context.Context) string {
	email, _ := ctx.Value(UserCtxKey{}).(string)
	return email
}

func GetRequestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}

type ClientInfo struct {
	UserAgent  string
	IPAddress  string
	DeviceType string
}

// GetClientInfo extracts user agent, real client IP and a coarse device
// class from the request for session bookkeeping.
func GetClientInfo(c echo.Context) *ClientInfo {
	req := c.Request()
	userAgent := req.Header.Get("User-Agent")
	if userAgent == "" {
		userAgent = "Unknown"
	}

	ipAddress := c.RealIP()
	if forwarded := req.Header.Get("X-Forwarded-For"); forwarded != "" {
		ipAddress = strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	if realIP := req.Header.Get("X-Real-Ip"); realIP != "" {
		ipAddress = realIP
	}

	return &ClientInfo{
		UserAgent:  userAgent,
		IPAddress:  ipAddress,
		DeviceType: detectDeviceType(userAgent),
	}
}

func detectDeviceType(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case containsAny(ua, "tablet", "ipad"):
		return "tablet"
	case containsAny(ua, "mobile", "android", "iphone", "ipod"):
		return "mobile"
	case containsAny(ua, "smart-tv", "roku", "chromecast", "appletv"):
		return "tv"
	default:
		return "desktop"
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
