package http

import (
	"github.com/labstack/echo/v4"

	"github.com/movstream/streaming-service/internal/middleware"
	"github.com/movstream/streaming-service/internal/videos"
)

func MapVideoRoutes(uploadGroup *echo.Group, h videos.Handlers, mw *middleware.MiddlewareManager) {
	uploadGroup.Use(mw.RequireAuth)
	uploadGroup.POST("/video", h.Upload())
	uploadGroup.GET("/status/:video_id", h.Status())
	uploadGroup.GET("/videos", h.ListVideos())
	uploadGroup.DELETE("/video/:video_id", h.Delete())
	uploadGroup.POST("/retry-processing/:video_id", h.RetryProcessing())
}
