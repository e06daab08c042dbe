package streaming

import (
	"context"

	"github.com/google/uuid"
	"github.com/movstream/streaming-service/internal/models"
)

type Repository interface {
	CreateSession(ctx context.Context, session *models.WatchSession) (*models.WatchSession, error)
	GetSessionByID(ctx context.Context, sessionID uuid.UUID) (*models.WatchSession, error)
	GetActiveSession(ctx context.Context, userEmail string, movieID int64) (*models.WatchSession, error)
	GetLastSession(ctx context.Context, userEmail string, movieID int64) (*models.WatchSession, error)
	UpdateSession(ctx context.Context, session *models.WatchSession) error
	ListActiveSessions(ctx context.Context, userEmail string) ([]*models.WatchSession, error)

	GetHistory(ctx context.Context, userEmail string, movieID int64) (*models.WatchHistory, error)
	UpsertHistory(ctx context.Context, history *models.WatchHistory) error
	GetUserHistory(ctx context.Context, userEmail string, limit int) ([]*models.WatchHistory, error)
	GetUserTotals(ctx context.Context, userEmail string) (*models.UserWatchStats, error)

	GetStats(ctx context.Context, movieID int64) (*models.StreamingStats, error)
	UpsertStats(ctx context.Context, stats *models.StreamingStats) error
	CountDistinctViewers(ctx context.Context, movieID int64) (int64, error)
	MostUsedQuality(ctx context.Context, movieID int64) (string, error)
}
