package http

import (
	"github.com/labstack/echo/v4"

	"github.com/movstream/streaming-service/internal/middleware"
	"github.com/movstream/streaming-service/internal/streaming"
)

func MapStreamingRoutes(streamGroup *echo.Group, h streaming.Handlers, mw *middleware.MiddlewareManager) {
	streamGroup.GET("/info/:movie_id", h.StreamInfo(), mw.OptionalAuth)
	streamGroup.GET("/video/:video_id", h.StreamVideo(), mw.OptionalAuth)
	streamGroup.GET("/stats/movie/:movie_id", h.MovieStats())

	streamGroup.POST("/session", h.StartSession(), mw.RequireAuth)
	streamGroup.PUT("/session/:session_id", h.UpdateSession(), mw.RequireAuth)
	streamGroup.POST("/session/:session_id/end", h.EndSession(), mw.RequireAuth)
	streamGroup.GET("/sessions/active", h.ActiveSessions(), mw.RequireAuth)
	streamGroup.GET("/stats/user", h.UserStats(), mw.RequireAuth)
}
