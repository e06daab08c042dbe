package videos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/movstream/streaming-service/internal/models"
)

type RedisRepository interface {
	EnqueueJob(ctx context.Context, job *models.TranscodeJob) error
	DequeueJob(ctx context.Context, timeout time.Duration) (*models.TranscodeJob, error)
	SetProgress(ctx context.Context, videoID uuid.UUID, snap *models.ProgressSnapshot) error
	GetProgress(ctx context.Context, videoID uuid.UUID) (*models.ProgressSnapshot, error)
	DeleteProgress(ctx context.Context, videoID uuid.UUID) error
}
