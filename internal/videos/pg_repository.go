package videos

import (
	"context"

	"github.com/google/uuid"
	"github.com/movstream/streaming-service/internal/models"
	"github.com/movstream/streaming-service/pkg/utils"
)

type Repository interface {
	CreateVideo(ctx context.Context, video *models.VideoFile) (*models.VideoFile, error)
	GetVideoByID(ctx context.Context, videoID uuid.UUID) (*models.VideoFile, error)
	GetPrimaryForMovie(ctx context.Context, movieID int64) (*models.VideoFile, error)
	GetVideosByUploader(ctx context.Context, email string, movieID int64, pq *utils.Pagination) (*models.VideoList, error)
	DeleteVideo(ctx context.Context, videoID uuid.UUID) error

	UpdateMetadata(ctx context.Context, videoID uuid.UUID, meta *models.VideoMetadata) error
	SetProcessing(ctx context.Context, videoID uuid.UUID) error
	UpdateProgress(ctx context.Context, videoID uuid.UUID, progress float64) error
	SetArtifacts(ctx context.Context, videoID uuid.UUID, thumbnailPath, previewPath string) error
	Finish(ctx context.Context, videoID uuid.UUID, status models.ProcessingStatus, errText string) error
	ResetForRetry(ctx context.Context, videoID uuid.UUID) error

	CreateQuality(ctx context.Context, quality *models.VideoQuality) error
	GetQualities(ctx context.Context, videoID uuid.UUID) ([]*models.VideoQuality, error)
	DeleteQualities(ctx context.Context, videoID uuid.UUID) error
}
