package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/movstream/streaming-service/internal/config"
	"github.com/movstream/streaming-service/internal/models"
	"github.com/movstream/streaming-service/internal/storage"
	"github.com/movstream/streaming-service/internal/streaming"
	"github.com/movstream/streaming-service/internal/videos"
	"github.com/movstream/streaming-service/pkg/logger"
	"github.com/movstream/streaming-service/pkg/utils"
)

const userHistoryLimit = 10

// Streaming UseCase
type streamingUC struct {
	cfg        *config.Config
	streamRepo streaming.Repository
	videoRepo  videos.Repository
	store      storage.MediaStore
	logger     logger.Logger
}

// Streaming UseCase constructor
func NewStreamingUseCase(
	cfg *config.Config,
	streamRepo streaming.Repository,
	videoRepo videos.Repository,
	store storage.MediaStore,
	log logger.Logger,
) streaming.UseCase {
	return &streamingUC{
		cfg:        cfg,
		streamRepo: streamRepo,
		videoRepo:  videoRepo,
		store:      store,
		logger:     log,
	}
}

// StreamInfo describes the primary playable file of a movie together with
// the caller's resume position when an identity is present.
func (u *streamingUC) StreamInfo(ctx context.Context, movieID int64) (*models.StreamingInfo, error) {
	video, err := u.videoRepo.GetPrimaryForMovie(ctx, movieID)
	if err != nil {
		if errors.Is(err, videos.ErrVideoNotFound) {
			return nil, streaming.ErrStreamNotFound
		}
		return nil, err
	}
	if !video.IsAvailable {
		return nil, streaming.ErrStreamNotFound
	}

	qualities, err := u.videoRepo.GetQualities(ctx, video.VideoID)
	if err != nil {
		return nil, err
	}

	info := &models.StreamingInfo{
		VideoID:            video.VideoID,
		MovieID:            movieID,
		Duration:           video.Duration,
		StreamURLs:         make(map[string]string, len(qualities)),
		AvailableQualities: make([]string, 0, len(qualities)),
		RecommendedQuality: u.cfg.Transcode.DefaultQuality,
	}
	for _, q := range qualities {
		info.AvailableQualities = append(info.AvailableQualities, q.Quality)
		info.StreamURLs[q.Quality] = "/api/v1/stream/video/" + video.VideoID.String() + "?quality=" + q.Quality
	}
	if len(qualities) == 0 {
		info.StreamURLs["original"] = "/api/v1/stream/video/" + video.VideoID.String()
	}
	if video.ThumbnailPath != "" {
		info.ThumbnailURL = u.publicURL(video.ThumbnailPath)
	}

	if email := utils.GetUserOptional(ctx); email != "" {
		if last, err := u.streamRepo.GetLastSession(ctx, email, movieID); err == nil {
			info.CurrentPosition = last.CurrentTime
			if last.Quality != "" {
				info.RecommendedQuality = last.Quality
			}
		} else if !errors.Is(err, streaming.ErrSessionNotFound) {
			u.logger.Warnf("streamingUC.StreamInfo last session: %v", err)
		}
	}
	return info, nil
}

// OpenStream resolves the stored object for a video, preferring the
// requested rendition and falling back to the original upload.
func (u *streamingUC) OpenStream(ctx context.Context, videoID uuid.UUID, quality string) (*streaming.Stream, error) {
	video, err := u.videoRepo.GetVideoByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, videos.ErrVideoNotFound) {
			return nil, streaming.ErrStreamNotFound
		}
		return nil, err
	}
	if !video.IsAvailable {
		return nil, streaming.ErrStreamNotFound
	}

	path := video.FilePath
	if quality != "" {
		ready, err := u.qualityReady(ctx, videoID, quality)
		if err != nil {
			return nil, err
		}
		if !ready {
			return nil, streaming.ErrQualityNotReady
		}
		path = storage.RenditionPath(videoID, quality)
	}

	size, err := u.store.Size(ctx, path)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, streaming.ErrStreamNotFound
		}
		return nil, err
	}
	content, err := u.store.Open(ctx, path)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, streaming.ErrStreamNotFound
		}
		return nil, err
	}

	mimeType := video.MimeType
	if quality != "" || mimeType == "" {
		mimeType = "video/mp4"
	}
	return &streaming.Stream{
		Content:  content,
		Size:     size,
		MimeType: mimeType,
		FileName: video.OriginalFileName,
	}, nil
}

// StartSession reuses the caller's active session for the movie when one
// exists, otherwise it opens a new one with the captured client metadata.
func (u *streamingUC) StartSession(ctx context.Context, input *models.WatchSessionCreate, client *utils.ClientInfo) (*models.WatchSession, error) {
	email, err := utils.GetUserFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(ctx, input); err != nil {
		return nil, err
	}

	video, err := u.videoRepo.GetVideoByID(ctx, input.VideoID)
	if err != nil {
		if errors.Is(err, videos.ErrVideoNotFound) {
			return nil, streaming.ErrStreamNotFound
		}
		return nil, err
	}

	if existing, err := u.streamRepo.GetActiveSession(ctx, email, input.MovieID); err == nil {
		existing.CurrentTime = input.CurrentTime
		existing.Duration = video.Duration
		if input.Quality != "" {
			existing.Quality = input.Quality
		}
		existing.RecalcProgress()
		if err := u.streamRepo.UpdateSession(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	} else if !errors.Is(err, streaming.ErrSessionNotFound) {
		return nil, err
	}

	quality := input.Quality
	if quality == "" {
		quality = u.cfg.Transcode.DefaultQuality
	}
	volume := input.Volume
	if volume <= 0 {
		volume = 1.0
	}
	speed := input.PlaybackSpeed
	if speed <= 0 {
		speed = 1.0
	}

	session := &models.WatchSession{
		SessionID:     uuid.New(),
		UserEmail:     email,
		MovieID:       input.MovieID,
		VideoID:       input.VideoID,
		CurrentTime:   input.CurrentTime,
		Duration:      video.Duration,
		Quality:       quality,
		Volume:        volume,
		PlaybackSpeed: speed,
		IsActive:      true,
	}
	if client != nil {
		session.UserAgent = client.UserAgent
		session.IPAddress = client.IPAddress
		session.DeviceType = client.DeviceType
	}
	session.RecalcProgress()

	created, err := u.streamRepo.CreateSession(ctx, session)
	if err != nil {
		return nil, err
	}
	u.logger.Infof("watch session started: id=%s user=%s movie=%d", created.SessionID, email, input.MovieID)
	return created, nil
}

// UpdateSession applies a heartbeat to an active session. Progress is
// recomputed after every update and the watch history is reconciled so a
// crashed client loses at most one heartbeat of watch time.
func (u *streamingUC) UpdateSession(ctx context.Context, sessionID uuid.UUID, update *models.WatchSessionUpdate) (*models.WatchSession, error) {
	session, err := u.ownedSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsActive {
		return nil, streaming.ErrSessionEnded
	}

	if update.CurrentTime != nil {
		session.CurrentTime = *update.CurrentTime
	}
	if update.Quality != nil && *update.Quality != "" {
		session.Quality = *update.Quality
	}
	if update.Volume != nil {
		session.Volume = *update.Volume
	}
	if update.PlaybackSpeed != nil {
		session.PlaybackSpeed = *update.PlaybackSpeed
	}
	if update.IsPaused != nil {
		session.IsPaused = *update.IsPaused
	}

	wasCompleted := session.IsCompleted
	session.RecalcProgress()

	if err := u.streamRepo.UpdateSession(ctx, session); err != nil {
		return nil, err
	}
	if err := u.reconcileHistory(ctx, session, wasCompleted); err != nil {
		u.logger.Errorf("streamingUC.UpdateSession history: %v", err)
	}
	return session, nil
}

// EndSession closes an active session exactly once, reconciles the history
// a final time and folds the session into the movie's streaming stats.
func (u *streamingUC) EndSession(ctx context.Context, sessionID uuid.UUID) (*models.WatchSession, error) {
	session, err := u.ownedSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsActive {
		return nil, streaming.ErrSessionEnded
	}

	wasCompleted := session.IsCompleted
	session.RecalcProgress()
	session.IsActive = false

	if err := u.streamRepo.UpdateSession(ctx, session); err != nil {
		return nil, err
	}
	if err := u.reconcileHistory(ctx, session, wasCompleted); err != nil {
		u.logger.Errorf("streamingUC.EndSession history: %v", err)
	}
	if err := u.applySessionToStats(ctx, session); err != nil {
		u.logger.Errorf("streamingUC.EndSession stats: %v", err)
	}

	u.logger.Infof("watch session ended: id=%s user=%s movie=%d progress=%.1f",
		session.SessionID, session.UserEmail, session.MovieID, session.ProgressPct)
	return session, nil
}

func (u *streamingUC) ActiveSessions(ctx context.Context) ([]*models.WatchSession, error) {
	email, err := utils.GetUserFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	return u.streamRepo.ListActiveSessions(ctx, email)
}

func (u *streamingUC) UserStats(ctx context.Context) (*models.UserWatchStats, error) {
	email, err := utils.GetUserFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	stats, err := u.streamRepo.GetUserTotals(ctx, email)
	if err != nil {
		return nil, err
	}
	history, err := u.streamRepo.GetUserHistory(ctx, email, userHistoryLimit)
	if err != nil {
		return nil, err
	}
	stats.WatchHistory = history
	return stats, nil
}

// MovieStats returns the rolled-up stats for a movie, or a zero-value
// response when nothing has been recorded yet.
func (u *streamingUC) MovieStats(ctx context.Context, movieID int64) (*models.MovieStreamingStats, error) {
	stats, err := u.streamRepo.GetStats(ctx, movieID)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		return &models.MovieStreamingStats{MovieID: movieID}, nil
	}
	return &models.MovieStreamingStats{
		MovieID:           movieID,
		TotalViews:        stats.TotalViews,
		UniqueViewers:     stats.UniqueViewers,
		CompletionRate:    stats.AvgCompletion,
		AverageRating:     stats.AverageRating,
		TotalHoursWatched: stats.TotalWatchTime / 3600,
	}, nil
}

func (u *streamingUC) qualityReady(ctx context.Context, videoID uuid.UUID, quality string) (bool, error) {
	qualities, err := u.videoRepo.GetQualities(ctx, videoID)
	if err != nil {
		return false, err
	}
	for _, q := range qualities {
		if q.Quality == quality && q.IsReady {
			return true, nil
		}
	}
	return false, nil
}

// ownedSession loads a session and hides its existence from other users.
func (u *streamingUC) ownedSession(ctx context.Context, sessionID uuid.UUID) (*models.WatchSession, error) {
	email, err := utils.GetUserFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	session, err := u.streamRepo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserEmail != email {
		return nil, streaming.ErrSessionNotFound
	}
	return session, nil
}

// reconcileHistory folds a session observation into the per-(user, movie)
// rollup. Watch time accumulates the forward distance from the last
// recorded position, completion keeps its maximum, and the watch count
// moves only on the first completed transition of a session.
func (u *streamingUC) reconcileHistory(ctx context.Context, session *models.WatchSession, wasCompleted bool) error {
	history, err := u.streamRepo.GetHistory(ctx, session.UserEmail, session.MovieID)
	if err != nil {
		return err
	}
	if history == nil {
		history = &models.WatchHistory{
			HistoryID: uuid.New(),
			UserEmail: session.UserEmail,
			MovieID:   session.MovieID,
		}
	}

	delta := session.CurrentTime - history.LastPosition
	if delta > 0 {
		history.TotalTime += delta
	}
	if session.ProgressPct > history.CompletionPct {
		history.CompletionPct = session.ProgressPct
	}
	if session.IsCompleted && !wasCompleted {
		history.WatchCount++
	}
	history.LastPosition = session.CurrentTime
	history.LastQuality = session.Quality
	history.LastWatched = time.Now()

	return u.streamRepo.UpsertHistory(ctx, history)
}

// applySessionToStats recomputes the movie rollup after a session end.
// Each ended session contributes exactly one view.
func (u *streamingUC) applySessionToStats(ctx context.Context, session *models.WatchSession) error {
	stats, err := u.streamRepo.GetStats(ctx, session.MovieID)
	if err != nil {
		return err
	}
	if stats == nil {
		stats = &models.StreamingStats{
			StatsID: uuid.New(),
			MovieID: session.MovieID,
		}
	}

	stats.TotalViews++
	if session.IsCompleted {
		stats.CompletedViews++
	}
	watched := session.CurrentTime
	if watched < 0 {
		watched = 0
	}
	stats.TotalWatchTime += watched

	totalViews := float64(stats.TotalViews)
	stats.AvgCompletion = float64(stats.CompletedViews) / totalViews * 100
	stats.AvgSessionTime = stats.TotalWatchTime / totalViews

	if viewers, err := u.streamRepo.CountDistinctViewers(ctx, session.MovieID); err == nil {
		stats.UniqueViewers = viewers
	} else {
		u.logger.Warnf("streamingUC.applySessionToStats viewers: %v", err)
	}
	if quality, err := u.streamRepo.MostUsedQuality(ctx, session.MovieID); err == nil && quality != "" {
		stats.PopularQuality = quality
	}

	return u.streamRepo.UpsertStats(ctx, stats)
}

func (u *streamingUC) publicURL(path string) string {
	base := u.cfg.Storage.PublicBaseURL
	if base == "" {
		return "/files/" + path
	}
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	return base + "/" + path
}
