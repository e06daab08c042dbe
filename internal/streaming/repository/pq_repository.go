package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/movstream/streaming-service/internal/models"
	"github.com/movstream/streaming-service/internal/streaming"
)

// Streaming Repository
type streamingRepo struct {
	db *sqlx.DB
}

// Streaming repository constructor
func NewStreamingRepository(db *sqlx.DB) streaming.Repository {
	return &streamingRepo{db: db}
}

func (r *streamingRepo) CreateSession(ctx context.Context, session *models.WatchSession) (*models.WatchSession, error) {
	s := &models.WatchSession{}
	if err := r.db.QueryRowxContext(
		ctx,
		createSessionQuery,
		session.SessionID,
		session.UserEmail,
		session.MovieID,
		session.VideoID,
		session.CurrentTime,
		session.Duration,
		session.ProgressPct,
		session.Quality,
		session.Volume,
		session.PlaybackSpeed,
		session.UserAgent,
		session.IPAddress,
		session.DeviceType,
	).StructScan(s); err != nil {
		return nil, errors.Wrap(err, "streamingRepo.CreateSession.StructScan")
	}
	return s, nil
}

func (r *streamingRepo) GetSessionByID(ctx context.Context, sessionID uuid.UUID) (*models.WatchSession, error) {
	s := &models.WatchSession{}
	if err := r.db.GetContext(ctx, s, getSessionByIDQuery, sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, streaming.ErrSessionNotFound
		}
		return nil, errors.Wrap(err, "streamingRepo.GetSessionByID.GetContext")
	}
	return s, nil
}

func (r *streamingRepo) GetActiveSession(ctx context.Context, userEmail string, movieID int64) (*models.WatchSession, error) {
	s := &models.WatchSession{}
	if err := r.db.GetContext(ctx, s, getActiveSessionQuery, userEmail, movieID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, streaming.ErrSessionNotFound
		}
		return nil, errors.Wrap(err, "streamingRepo.GetActiveSession.GetContext")
	}
	return s, nil
}

func (r *streamingRepo) GetLastSession(ctx context.Context, userEmail string, movieID int64) (*models.WatchSession, error) {
	s := &models.WatchSession{}
	if err := r.db.GetContext(ctx, s, getLastSessionQuery, userEmail, movieID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, streaming.ErrSessionNotFound
		}
		return nil, errors.Wrap(err, "streamingRepo.GetLastSession.GetContext")
	}
	return s, nil
}

func (r *streamingRepo) UpdateSession(ctx context.Context, session *models.WatchSession) error {
	result, err := r.db.ExecContext(
		ctx,
		updateSessionQuery,
		session.SessionID,
		session.CurrentTime,
		session.Duration,
		session.ProgressPct,
		session.Quality,
		session.Volume,
		session.PlaybackSpeed,
		session.IsActive,
		session.IsCompleted,
		session.IsPaused,
		session.CompletedAt,
	)
	if err != nil {
		return errors.Wrap(err, "streamingRepo.UpdateSession.ExecContext")
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "streamingRepo.UpdateSession.RowsAffected")
	}
	if rowsAffected == 0 {
		return streaming.ErrSessionNotFound
	}
	return nil
}

func (r *streamingRepo) ListActiveSessions(ctx context.Context, userEmail string) ([]*models.WatchSession, error) {
	sessions := make([]*models.WatchSession, 0)
	if err := r.db.SelectContext(ctx, &sessions, listActiveSessionsQuery, userEmail); err != nil {
		return nil, errors.Wrap(err, "streamingRepo.ListActiveSessions.SelectContext")
	}
	return sessions, nil
}

func (r *streamingRepo) GetHistory(ctx context.Context, userEmail string, movieID int64) (*models.WatchHistory, error) {
	h := &models.WatchHistory{}
	if err := r.db.GetContext(ctx, h, getHistoryQuery, userEmail, movieID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "streamingRepo.GetHistory.GetContext")
	}
	return h, nil
}

func (r *streamingRepo) UpsertHistory(ctx context.Context, history *models.WatchHistory) error {
	if history.HistoryID == uuid.Nil {
		history.HistoryID = uuid.New()
	}
	if _, err := r.db.ExecContext(
		ctx,
		upsertHistoryQuery,
		history.HistoryID,
		history.UserEmail,
		history.MovieID,
		history.TotalTime,
		history.CompletionPct,
		history.WatchCount,
		history.LastPosition,
		history.LastQuality,
		history.UserRating,
	); err != nil {
		return errors.Wrap(err, "streamingRepo.UpsertHistory.ExecContext")
	}
	return nil
}

func (r *streamingRepo) GetUserHistory(ctx context.Context, userEmail string, limit int) ([]*models.WatchHistory, error) {
	history := make([]*models.WatchHistory, 0)
	if err := r.db.SelectContext(ctx, &history, getUserHistoryQuery, userEmail, limit); err != nil {
		return nil, errors.Wrap(err, "streamingRepo.GetUserHistory.SelectContext")
	}
	return history, nil
}

func (r *streamingRepo) GetUserTotals(ctx context.Context, userEmail string) (*models.UserWatchStats, error) {
	totals := &struct {
		TotalMoviesWatched int     `db:"total_movies_watched"`
		TotalWatchTime     float64 `db:"total_watch_time"`
		AvgCompletionRate  float64 `db:"average_completion_rate"`
	}{}
	if err := r.db.GetContext(ctx, totals, getUserTotalsQuery, userEmail); err != nil {
		return nil, errors.Wrap(err, "streamingRepo.GetUserTotals.GetContext")
	}
	return &models.UserWatchStats{
		TotalMoviesWatched: totals.TotalMoviesWatched,
		TotalWatchTime:     totals.TotalWatchTime,
		AvgCompletionRate:  totals.AvgCompletionRate,
	}, nil
}

func (r *streamingRepo) GetStats(ctx context.Context, movieID int64) (*models.StreamingStats, error) {
	stats := &models.StreamingStats{}
	if err := r.db.GetContext(ctx, stats, getStatsQuery, movieID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "streamingRepo.GetStats.GetContext")
	}
	return stats, nil
}

func (r *streamingRepo) UpsertStats(ctx context.Context, stats *models.StreamingStats) error {
	if stats.StatsID == uuid.Nil {
		stats.StatsID = uuid.New()
	}
	if stats.CreatedAt.IsZero() {
		stats.CreatedAt = time.Now()
	}
	if _, err := r.db.ExecContext(
		ctx,
		upsertStatsQuery,
		stats.StatsID,
		stats.MovieID,
		stats.TotalViews,
		stats.UniqueViewers,
		stats.CompletedViews,
		stats.TotalWatchTime,
		stats.AvgCompletion,
		stats.AvgSessionTime,
		stats.PopularQuality,
		stats.AverageRating,
		stats.TotalRatings,
	); err != nil {
		return errors.Wrap(err, "streamingRepo.UpsertStats.ExecContext")
	}
	return nil
}

func (r *streamingRepo) CountDistinctViewers(ctx context.Context, movieID int64) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, countDistinctViewersQuery, movieID); err != nil {
		return 0, errors.Wrap(err, "streamingRepo.CountDistinctViewers.GetContext")
	}
	return count, nil
}

func (r *streamingRepo) MostUsedQuality(ctx context.Context, movieID int64) (string, error) {
	var quality string
	if err := r.db.GetContext(ctx, &quality, mostUsedQualityQuery, movieID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", errors.Wrap(err, "streamingRepo.MostUsedQuality.GetContext")
	}
	return quality, nil
}
