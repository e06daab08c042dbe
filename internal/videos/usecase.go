package videos

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/movstream/streaming-service/internal/models"
	"github.com/movstream/streaming-service/pkg/utils"
	"github.com/pkg/errors"
)

var (
	ErrVideoNotFound   = errors.New("video not found")
	ErrForbidden       = errors.New("not allowed for this video")
	ErrRetryNotAllowed = errors.New("processing can only be retried for failed or pending videos")
	ErrInvalidFile     = errors.New("invalid video file")
)

type UseCase interface {
	Upload(ctx context.Context, input *models.VideoUploadInput, src io.Reader) (*models.VideoFile, error)
	Status(ctx context.Context, videoID uuid.UUID) (*models.ProcessingStatusInfo, error)
	ListVideos(ctx context.Context, movieID int64, pq *utils.Pagination) (*models.VideoList, error)
	DeleteVideo(ctx context.Context, videoID uuid.UUID) error
	RetryProcessing(ctx context.Context, videoID uuid.UUID) error
}
