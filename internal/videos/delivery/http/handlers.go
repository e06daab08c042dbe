package http

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/movstream/streaming-service/internal/catalog"
	"github.com/movstream/streaming-service/internal/config"
	"github.com/movstream/streaming-service/internal/models"
	"github.com/movstream/streaming-service/internal/videos"
	"github.com/movstream/streaming-service/pkg/logger"
	"github.com/movstream/streaming-service/pkg/utils"
)

type videoHandlers struct {
	cfg     *config.Config
	videoUC videos.UseCase
	logger  logger.Logger
}

func NewVideoHandlers(cfg *config.Config, videoUC videos.UseCase, log logger.Logger) videos.Handlers {
	return &videoHandlers{cfg: cfg, videoUC: videoUC, logger: log}
}

// Upload accepts a multipart form with the raw file under "file" and the
// movie binding fields alongside it.
func (h *videoHandlers) Upload() echo.HandlerFunc {
	return func(c echo.Context) error {
		movieID, err := strconv.ParseInt(c.FormValue("movie_id"), 10, 64)
		if err != nil || movieID <= 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid movie id"})
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "A video file is required"})
		}
		if fileHeader.Size > h.cfg.Storage.MaxUploadSizeBytes() {
			return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{"error": "File exceeds the upload size limit"})
		}

		src, err := fileHeader.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Could not read uploaded file"})
		}
		defer src.Close()

		isPrimary, _ := strconv.ParseBool(c.FormValue("is_primary"))
		input := &models.VideoUploadInput{
			MovieID:   movieID,
			FileName:  fileHeader.Filename,
			FileSize:  fileHeader.Size,
			MimeType:  fileHeader.Header.Get("Content-Type"),
			Quality:   c.FormValue("quality"),
			IsPrimary: isPrimary,
		}

		video, err := h.videoUC.Upload(c.Request().Context(), input, src)
		if err != nil {
			h.logger.Errorf("videoHandlers.Upload: %v", err)
			return c.JSON(statusFromErr(err), map[string]string{"error": err.Error()})
		}

		return c.JSON(http.StatusCreated, &models.VideoUploadResponse{
			VideoID:          video.VideoID,
			Message:          "Upload accepted, processing has been queued",
			ProcessingStatus: video.ProcessingStatus,
		})
	}
}

func (h *videoHandlers) Status() echo.HandlerFunc {
	return func(c echo.Context) error {
		videoID, err := uuid.Parse(c.Param("video_id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid video id"})
		}
		info, err := h.videoUC.Status(c.Request().Context(), videoID)
		if err != nil {
			return c.JSON(statusFromErr(err), map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, info)
	}
}

func (h *videoHandlers) ListVideos() echo.HandlerFunc {
	return func(c echo.Context) error {
		pagination, err := utils.GetPaginationFromCtx(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}

		var movieID int64
		if raw := c.QueryParam("movie_id"); raw != "" {
			movieID, err = strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid movie id"})
			}
		}

		videoList, err := h.videoUC.ListVideos(c.Request().Context(), movieID, pagination)
		if err != nil {
			return c.JSON(statusFromErr(err), map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, videoList)
	}
}

func (h *videoHandlers) Delete() echo.HandlerFunc {
	return func(c echo.Context) error {
		videoID, err := uuid.Parse(c.Param("video_id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid video id"})
		}
		if err := h.videoUC.DeleteVideo(c.Request().Context(), videoID); err != nil {
			return c.JSON(statusFromErr(err), map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "Video deleted successfully"})
	}
}

func (h *videoHandlers) RetryProcessing() echo.HandlerFunc {
	return func(c echo.Context) error {
		videoID, err := uuid.Parse(c.Param("video_id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid video id"})
		}
		if err := h.videoUC.RetryProcessing(c.Request().Context(), videoID); err != nil {
			return c.JSON(statusFromErr(err), map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusAccepted, map[string]string{"message": "Processing has been queued again"})
	}
}

func statusFromErr(err error) int {
	switch {
	case errors.Is(err, videos.ErrVideoNotFound), errors.Is(err, catalog.ErrMovieNotFound):
		return http.StatusNotFound
	case errors.Is(err, videos.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, videos.ErrInvalidFile):
		return http.StatusBadRequest
	case errors.Is(err, videos.ErrRetryNotAllowed):
		return http.StatusConflict
	case errors.Is(err, catalog.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, utils.ErrNoUserCtx):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
