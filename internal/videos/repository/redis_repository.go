package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/movstream/streaming-service/internal/models"
	"github.com/movstream/streaming-service/internal/videos"
)

const progressKeyTTL = 24 * time.Hour

// Videos redis repository
type videosRedisRepo struct {
	redisClient *redis.Client
	queueKey    string
	progressKey string
}

// Videos redis repository constructor
func NewVideosRedisRepo(redisClient *redis.Client, queueKey, progressKey string) videos.RedisRepository {
	return &videosRedisRepo{redisClient: redisClient, queueKey: queueKey, progressKey: progressKey}
}

func (r *videosRedisRepo) EnqueueJob(ctx context.Context, job *models.TranscodeJob) error {
	jobBytes, err := json.Marshal(job)
	if err != nil {
		return errors.Wrap(err, "videosRedisRepo.EnqueueJob.json.Marshal")
	}
	if err := r.redisClient.LPush(ctx, r.queueKey, jobBytes).Err(); err != nil {
		return errors.Wrap(err, "videosRedisRepo.EnqueueJob.LPush")
	}
	return nil
}

// DequeueJob blocks up to timeout waiting for a job. A nil job with a nil
// error means the wait timed out and the caller should poll again.
func (r *videosRedisRepo) DequeueJob(ctx context.Context, timeout time.Duration) (*models.TranscodeJob, error) {
	result, err := r.redisClient.BRPop(ctx, timeout, r.queueKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "videosRedisRepo.DequeueJob.BRPop")
	}
	if len(result) < 2 {
		return nil, nil
	}

	job := &models.TranscodeJob{}
	if err := json.Unmarshal([]byte(result[1]), job); err != nil {
		return nil, errors.Wrap(err, "videosRedisRepo.DequeueJob.json.Unmarshal")
	}
	return job, nil
}

func (r *videosRedisRepo) SetProgress(ctx context.Context, videoID uuid.UUID, snap *models.ProgressSnapshot) error {
	snapBytes, err := json.Marshal(snap)
	if err != nil {
		return errors.Wrap(err, "videosRedisRepo.SetProgress.json.Marshal")
	}
	if err := r.redisClient.Set(ctx, r.progressKey+videoID.String(), snapBytes, progressKeyTTL).Err(); err != nil {
		return errors.Wrap(err, "videosRedisRepo.SetProgress.Set")
	}
	return nil
}

func (r *videosRedisRepo) GetProgress(ctx context.Context, videoID uuid.UUID) (*models.ProgressSnapshot, error) {
	snapBytes, err := r.redisClient.Get(ctx, r.progressKey+videoID.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "videosRedisRepo.GetProgress.Get")
	}

	snap := &models.ProgressSnapshot{}
	if err := json.Unmarshal(snapBytes, snap); err != nil {
		return nil, errors.Wrap(err, "videosRedisRepo.GetProgress.json.Unmarshal")
	}
	return snap, nil
}

func (r *videosRedisRepo) DeleteProgress(ctx context.Context, videoID uuid.UUID) error {
	if err := r.redisClient.Del(ctx, r.progressKey+videoID.String()).Err(); err != nil {
		return errors.Wrap(err, "videosRedisRepo.DeleteProgress.Del")
	}
	return nil
}
