package http

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/movstream/streaming-service/internal/config"
	"github.com/movstream/streaming-service/internal/models"
	"github.com/movstream/streaming-service/internal/streaming"
	"github.com/movstream/streaming-service/pkg/logger"
	"github.com/movstream/streaming-service/pkg/utils"
)

// copy buffer for range responses, keeps memory flat per request
const streamChunkSize = 1024 * 1024

type streamingHandlers struct {
	cfg      *config.Config
	streamUC streaming.UseCase
	logger   logger.Logger
}

func NewStreamingHandlers(cfg *config.Config, streamUC streaming.UseCase, log logger.Logger) streaming.Handlers {
	return &streamingHandlers{cfg: cfg, streamUC: streamUC, logger: log}
}

func (h *streamingHandlers) StreamInfo() echo.HandlerFunc {
	return func(c echo.Context) error {
		movieID, err := strconv.ParseInt(c.Param("movie_id"), 10, 64)
		if err != nil || movieID <= 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid movie id"})
		}
		info, err := h.streamUC.StreamInfo(c.Request().Context(), movieID)
		if err != nil {
			return c.JSON(statusFromErr(err), map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, info)
	}
}

// StreamVideo serves the stored rendition honoring a single byte range.
// A malformed Range header degrades to a whole-file 200 response.
func (h *streamingHandlers) StreamVideo() echo.HandlerFunc {
	return func(c echo.Context) error {
		videoID, err := uuid.Parse(c.Param("video_id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid video id"})
		}

		stream, err := h.streamUC.OpenStream(c.Request().Context(), videoID, c.QueryParam("quality"))
		if err != nil {
			return c.JSON(statusFromErr(err), map[string]string{"error": err.Error()})
		}
		defer stream.Content.Close()

		resp := c.Response()
		resp.Header().Set("Accept-Ranges", "bytes")
		resp.Header().Set(echo.HeaderContentType, stream.MimeType)

		byteRange, ok := streaming.ParseRange(c.Request().Header.Get("Range"), stream.Size)
		if !ok {
			resp.Header().Set(echo.HeaderContentLength, strconv.FormatInt(stream.Size, 10))
			resp.WriteHeader(http.StatusOK)
			return copyChunked(resp, stream.Content, stream.Size)
		}

		if _, err := stream.Content.Seek(byteRange.Start, io.SeekStart); err != nil {
			h.logger.Errorf("streamingHandlers.StreamVideo seek: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Could not read video"})
		}

		resp.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", byteRange.Start, byteRange.End, stream.Size))
		resp.Header().Set(echo.HeaderContentLength, strconv.FormatInt(byteRange.Length(), 10))
		resp.WriteHeader(http.StatusPartialContent)
		return copyChunked(resp, stream.Content, byteRange.Length())
	}
}

func (h *streamingHandlers) StartSession() echo.HandlerFunc {
	return func(c echo.Context) error {
		input := &models.WatchSessionCreate{}
		if err := c.Bind(input); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		}

		session, err := h.streamUC.StartSession(c.Request().Context(), input, utils.GetClientInfo(c))
		if err != nil {
			h.logger.Errorf("streamingHandlers.StartSession: %v", err)
			return c.JSON(statusFromErr(err), map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusCreated, session)
	}
}

func (h *streamingHandlers) UpdateSession() echo.HandlerFunc {
	return func(c echo.Context) error {
		sessionID, err := uuid.Parse(c.Param("session_id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid session id"})
		}
		update := &models.WatchSessionUpdate{}
		if err := c.Bind(update); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		}

		session, err := h.streamUC.UpdateSession(c.Request().Context(), sessionID, update)
		if err != nil {
			return c.JSON(statusFromErr(err), map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, session)
	}
}

func (h *streamingHandlers) EndSession() echo.HandlerFunc {
	return func(c echo.Context) error {
		sessionID, err := uuid.Parse(c.Param("session_id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid session id"})
		}
		session, err := h.streamUC.EndSession(c.Request().Context(), sessionID)
		if err != nil {
			return c.JSON(statusFromErr(err), map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, session)
	}
}

func (h *streamingHandlers) ActiveSessions() echo.HandlerFunc {
	return func(c echo.Context) error {
		sessions, err := h.streamUC.ActiveSessions(c.Request().Context())
		if err != nil {
			return c.JSON(statusFromErr(err), map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, sessions)
	}
}

func (h *streamingHandlers) UserStats() echo.HandlerFunc {
	return func(c echo.Context) error {
		stats, err := h.streamUC.UserStats(c.Request().Context())
		if err != nil {
			return c.JSON(statusFromErr(err), map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, stats)
	}
}

func (h *streamingHandlers) MovieStats() echo.HandlerFunc {
	return func(c echo.Context) error {
		movieID, err := strconv.ParseInt(c.Param("movie_id"), 10, 64)
		if err != nil || movieID <= 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid movie id"})
		}
		stats, err := h.streamUC.MovieStats(c.Request().Context(), movieID)
		if err != nil {
			return c.JSON(statusFromErr(err), map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, stats)
	}
}

func copyChunked(dst io.Writer, src io.Reader, n int64) error {
	buf := make([]byte, streamChunkSize)
	_, err := io.CopyBuffer(dst, io.LimitReader(src, n), buf)
	return err
}

func statusFromErr(err error) int {
	switch {
	case errors.Is(err, streaming.ErrStreamNotFound),
		errors.Is(err, streaming.ErrQualityNotReady),
		errors.Is(err, streaming.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, streaming.ErrSessionEnded):
		return http.StatusConflict
	case errors.Is(err, utils.ErrNoUserCtx):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
