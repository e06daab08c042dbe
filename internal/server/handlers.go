package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/movstream/streaming-service/internal/catalog"
	"github.com/movstream/streaming-service/internal/middleware"
	streamingHttp "github.com/movstream/streaming-service/internal/streaming/delivery/http"
	streamingRepository "github.com/movstream/streaming-service/internal/streaming/repository"
	streamingUsecase "github.com/movstream/streaming-service/internal/streaming/usecase"
	videoHttp "github.com/movstream/streaming-service/internal/videos/delivery/http"
	videoRepository "github.com/movstream/streaming-service/internal/videos/repository"
	videoUsecase "github.com/movstream/streaming-service/internal/videos/usecase"
	"github.com/movstream/streaming-service/pkg/utils"
)

func (s *Server) MapHandlers(e *echo.Echo) error {
	vRepo := videoRepository.NewVideosRepository(s.db)
	vRedisRepo := videoRepository.NewVideosRedisRepo(s.redisClient, s.cfg.Redis.JobQueueKey, s.cfg.Redis.ProgressKey)
	stRepo := streamingRepository.NewStreamingRepository(s.db)
	catalogClient := catalog.NewClient(s.cfg)

	videoUC := videoUsecase.NewVideosUseCase(s.cfg, vRepo, vRedisRepo, s.store, catalogClient, s.logger)
	streamUC := streamingUsecase.NewStreamingUseCase(s.cfg, stRepo, vRepo, s.store, s.logger)

	videoHandlers := videoHttp.NewVideoHandlers(s.cfg, videoUC, s.logger)
	streamHandlers := streamingHttp.NewStreamingHandlers(s.cfg, streamUC, s.logger)

	mw := middleware.NewMiddlewareManager(s.cfg, s.logger)

	v1 := e.Group("/api/v1")
	health := v1.Group("/health")
	uploadGroup := v1.Group("/upload")
	streamGroup := v1.Group("/stream")

	videoHttp.MapVideoRoutes(uploadGroup, videoHandlers, mw)
	streamingHttp.MapStreamingRoutes(streamGroup, streamHandlers, mw)

	// artifacts (thumbnails, previews) are served straight from disk when
	// the local backend is active; object storage serves its own URLs
	if strings.EqualFold(s.cfg.Storage.Backend, "local") {
		e.Static("/files", s.cfg.Storage.Path)
	}

	health.GET("", func(c echo.Context) error {
		s.logger.Infof("health check RequestID: %s", utils.GetRequestID(c))
		return c.JSON(http.StatusOK, map[string]string{"status": "OK"})
	})
	return nil
}
