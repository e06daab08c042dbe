package streaming

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/movstream/streaming-service/internal/models"
	"github.com/movstream/streaming-service/pkg/utils"
	"github.com/pkg/errors"
)

var (
	ErrSessionNotFound = errors.New("watch session not found")
	ErrSessionEnded    = errors.New("watch session has already ended")
	ErrStreamNotFound  = errors.New("no playable video for this request")
	ErrQualityNotReady = errors.New("requested quality is not available")
)

// Stream bundles the opened rendition with the metadata the delivery layer
// needs to answer a range request.
type Stream struct {
	Content  io.ReadSeekCloser
	Size     int64
	MimeType string
	FileName string
}

type UseCase interface {
	StreamInfo(ctx context.Context, movieID int64) (*models.StreamingInfo, error)
	OpenStream(ctx context.Context, videoID uuid.UUID, quality string) (*Stream, error)

	StartSession(ctx context.Context, input *models.WatchSessionCreate, client *utils.ClientInfo) (*models.WatchSession, error)
	UpdateSession(ctx context.Context, sessionID uuid.UUID, update *models.WatchSessionUpdate) (*models.WatchSession, error)
	EndSession(ctx context.Context, sessionID uuid.UUID) (*models.WatchSession, error)
	ActiveSessions(ctx context.Context) ([]*models.WatchSession, error)

	UserStats(ctx context.Context) (*models.UserWatchStats, error)
	MovieStats(ctx context.Context, movieID int64) (*models.MovieStreamingStats, error)
}
