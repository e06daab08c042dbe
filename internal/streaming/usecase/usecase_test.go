package usecase

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/movstream/streaming-service/internal/config"
	"github.com/movstream/streaming-service/internal/models"
	"github.com/movstream/streaming-service/internal/storage"
	"github.com/movstream/streaming-service/internal/streaming"
	"github.com/movstream/streaming-service/internal/videos"
	"github.com/movstream/streaming-service/pkg/logger"
	"github.com/movstream/streaming-service/pkg/utils"
)

type historyKey struct {
	email   string
	movieID int64
}

type fakeStreamRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]models.WatchSession
	history  map[historyKey]models.WatchHistory
	stats    map[int64]models.StreamingStats
}

func newFakeStreamRepo() *fakeStreamRepo {
	return &fakeStreamRepo{
		sessions: map[uuid.UUID]models.WatchSession{},
		history:  map[historyKey]models.WatchHistory{},
		stats:    map[int64]models.StreamingStats{},
	}
}

func (r *fakeStreamRepo) CreateSession(_ context.Context, s *models.WatchSession) (*models.WatchSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.StartedAt = time.Now()
	s.LastUpdated = s.StartedAt
	r.sessions[s.SessionID] = *s
	out := *s
	return &out, nil
}

func (r *fakeStreamRepo) GetSessionByID(_ context.Context, id uuid.UUID) (*models.WatchSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, streaming.ErrSessionNotFound
	}
	out := s
	return &out, nil
}

func (r *fakeStreamRepo) GetActiveSession(_ context.Context, email string, movieID int64) (*models.WatchSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.UserEmail == email && s.MovieID == movieID && s.IsActive {
			out := s
			return &out, nil
		}
	}
	return nil, streaming.ErrSessionNotFound
}

func (r *fakeStreamRepo) GetLastSession(_ context.Context, email string, movieID int64) (*models.WatchSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *models.WatchSession
	for _, s := range r.sessions {
		if s.UserEmail == email && s.MovieID == movieID {
			out := s
			if latest == nil || out.LastUpdated.After(latest.LastUpdated) {
				latest = &out
			}
		}
	}
	if latest == nil {
		return nil, streaming.ErrSessionNotFound
	}
	return latest, nil
}

func (r *fakeStreamRepo) UpdateSession(_ context.Context, s *models.WatchSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[s.SessionID]; !ok {
		return streaming.ErrSessionNotFound
	}
	s.LastUpdated = time.Now()
	r.sessions[s.SessionID] = *s
	return nil
}

func (r *fakeStreamRepo) ListActiveSessions(_ context.Context, email string) ([]*models.WatchSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.WatchSession, 0)
	for _, s := range r.sessions {
		if s.UserEmail == email && s.IsActive {
			c := s
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *fakeStreamRepo) GetHistory(_ context.Context, email string, movieID int64) (*models.WatchHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.history[historyKey{email, movieID}]
	if !ok {
		return nil, nil
	}
	out := h
	return &out, nil
}

func (r *fakeStreamRepo) UpsertHistory(_ context.Context, h *models.WatchHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history[historyKey{h.UserEmail, h.MovieID}] = *h
	return nil
}

func (r *fakeStreamRepo) GetUserHistory(_ context.Context, email string, limit int) ([]*models.WatchHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.WatchHistory, 0)
	for _, h := range r.history {
		if h.UserEmail == email && len(out) < limit {
			c := h
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *fakeStreamRepo) GetUserTotals(_ context.Context, email string) (*models.UserWatchStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &models.UserWatchStats{}
	var completionSum float64
	for _, h := range r.history {
		if h.UserEmail != email {
			continue
		}
		stats.TotalMoviesWatched++
		stats.TotalWatchTime += h.TotalTime
		completionSum += h.CompletionPct
	}
	if stats.TotalMoviesWatched > 0 {
		stats.AvgCompletionRate = completionSum / float64(stats.TotalMoviesWatched)
	}
	return stats, nil
}

func (r *fakeStreamRepo) GetStats(_ context.Context, movieID int64) (*models.StreamingStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stats[movieID]
	if !ok {
		return nil, nil
	}
	out := s
	return &out, nil
}

func (r *fakeStreamRepo) UpsertStats(_ context.Context, s *models.StreamingStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats[s.MovieID] = *s
	return nil
}

func (r *fakeStreamRepo) CountDistinctViewers(_ context.Context, movieID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[string]struct{}{}
	for _, s := range r.sessions {
		if s.MovieID == movieID {
			seen[s.UserEmail] = struct{}{}
		}
	}
	return int64(len(seen)), nil
}

func (r *fakeStreamRepo) MostUsedQuality(_ context.Context, movieID int64) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[string]int{}
	for _, s := range r.sessions {
		if s.MovieID == movieID && s.Quality != "" {
			counts[s.Quality]++
		}
	}
	best, bestCount := "", 0
	for q, n := range counts {
		if n > bestCount {
			best, bestCount = q, n
		}
	}
	return best, nil
}

type fakeVideoRepo struct {
	mu        sync.Mutex
	byID      map[uuid.UUID]models.VideoFile
	qualities map[uuid.UUID][]*models.VideoQuality
}

func newFakeVideoRepo() *fakeVideoRepo {
	return &fakeVideoRepo{
		byID:      map[uuid.UUID]models.VideoFile{},
		qualities: map[uuid.UUID][]*models.VideoQuality{},
	}
}

func (r *fakeVideoRepo) CreateVideo(_ context.Context, v *models.VideoFile) (*models.VideoFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[v.VideoID] = *v
	out := *v
	return &out, nil
}

func (r *fakeVideoRepo) GetVideoByID(_ context.Context, id uuid.UUID) (*models.VideoFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.byID[id]
	if !ok {
		return nil, videos.ErrVideoNotFound
	}
	out := v
	return &out, nil
}

func (r *fakeVideoRepo) GetPrimaryForMovie(_ context.Context, movieID int64) (*models.VideoFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *models.VideoFile
	for _, v := range r.byID {
		if v.MovieID != movieID || v.ProcessingStatus != models.StatusCompleted {
			continue
		}
		out := v
		switch {
		case best == nil:
			best = &out
		case out.IsPrimary != best.IsPrimary:
			if out.IsPrimary {
				best = &out
			}
		case out.CreatedAt.After(best.CreatedAt):
			best = &out
		}
	}
	if best == nil {
		return nil, videos.ErrVideoNotFound
	}
	return best, nil
}

func (r *fakeVideoRepo) GetVideosByUploader(context.Context, string, int64, *utils.Pagination) (*models.VideoList, error) {
	return &models.VideoList{Videos: []*models.VideoFile{}}, nil
}

func (r *fakeVideoRepo) DeleteVideo(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

func (r *fakeVideoRepo) UpdateMetadata(context.Context, uuid.UUID, *models.VideoMetadata) error {
	return nil
}
func (r *fakeVideoRepo) SetProcessing(context.Context, uuid.UUID) error          { return nil }
func (r *fakeVideoRepo) UpdateProgress(context.Context, uuid.UUID, float64) error { return nil }
func (r *fakeVideoRepo) SetArtifacts(context.Context, uuid.UUID, string, string) error {
	return nil
}
func (r *fakeVideoRepo) Finish(context.Context, uuid.UUID, models.ProcessingStatus, string) error {
	return nil
}
func (r *fakeVideoRepo) ResetForRetry(context.Context, uuid.UUID) error { return nil }

func (r *fakeVideoRepo) CreateQuality(_ context.Context, q *models.VideoQuality) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.qualities[q.VideoID] = append(r.qualities[q.VideoID], q)
	return nil
}

func (r *fakeVideoRepo) GetQualities(_ context.Context, id uuid.UUID) ([]*models.VideoQuality, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.qualities[id], nil
}

func (r *fakeVideoRepo) DeleteQualities(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.qualities, id)
	return nil
}

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (m *memStore) Put(_ context.Context, path string, r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[path] = data
	return int64(len(data)), nil
}

func (m *memStore) Open(_ context.Context, path string) (io.ReadSeekCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[path]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return nopSeekCloser{bytes.NewReader(data)}, nil
}

func (m *memStore) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, path)
	return nil
}

func (m *memStore) Exists(_ context.Context, path string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[path]
	return ok, nil
}

func (m *memStore) Size(_ context.Context, path string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[path]
	if !ok {
		return 0, storage.ErrNotFound
	}
	return int64(len(data)), nil
}

type nopSeekCloser struct {
	*bytes.Reader
}

func (nopSeekCloser) Close() error { return nil }

type fixture struct {
	uc         streaming.UseCase
	streamRepo *fakeStreamRepo
	videoRepo  *fakeVideoRepo
	store      *memStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := &config.Config{
		Transcode: config.TranscodeConfig{
			Qualities:      []string{"480p", "720p", "1080p"},
			DefaultQuality: "720p",
		},
		Logger: config.Logger{Development: true, Level: "error", Encoding: "console"},
	}
	log := logger.NewApiLogger(cfg)
	log.InitLogger()

	streamRepo := newFakeStreamRepo()
	videoRepo := newFakeVideoRepo()
	store := newMemStore()
	return &fixture{
		uc:         NewStreamingUseCase(cfg, streamRepo, videoRepo, store, log),
		streamRepo: streamRepo,
		videoRepo:  videoRepo,
		store:      store,
	}
}

func (f *fixture) seedVideo(t *testing.T, movieID int64) *models.VideoFile {
	t.Helper()
	video := &models.VideoFile{
		VideoID:          uuid.New(),
		MovieID:          movieID,
		OriginalFileName: "movie.mp4",
		FilePath:         "uploads/source.mp4",
		MimeType:         "video/mp4",
		Duration:         1000,
		ProcessingStatus: models.StatusCompleted,
		IsPrimary:        true,
		IsProcessed:      true,
		IsAvailable:      true,
		UploadedBy:       "uploader@example.com",
	}
	_, err := f.videoRepo.CreateVideo(context.Background(), video)
	require.NoError(t, err)
	return video
}

func userCtx(email string) context.Context {
	return utils.WithUser(context.Background(), email)
}

func startSession(t *testing.T, f *fixture, email string, video *models.VideoFile) *models.WatchSession {
	t.Helper()
	session, err := f.uc.StartSession(userCtx(email), &models.WatchSessionCreate{
		MovieID: video.MovieID,
		VideoID: video.VideoID,
	}, &utils.ClientInfo{UserAgent: "test", IPAddress: "127.0.0.1", DeviceType: "desktop"})
	require.NoError(t, err)
	return session
}

func floatPtr(v float64) *float64 { return &v }

func TestStartSession_ReusesActiveSession(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	video := f.seedVideo(t, 7)

	first := startSession(t, f, "viewer@example.com", video)
	second, err := f.uc.StartSession(userCtx("viewer@example.com"), &models.WatchSessionCreate{
		MovieID:     video.MovieID,
		VideoID:     video.VideoID,
		CurrentTime: 50,
	}, nil)
	require.NoError(t, err)
	require.Equal(t, first.SessionID, second.SessionID)
	require.Equal(t, 50.0, second.CurrentTime)
}

func TestStartSession_RequiresIdentity(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	video := f.seedVideo(t, 7)

	_, err := f.uc.StartSession(context.Background(), &models.WatchSessionCreate{
		MovieID: video.MovieID,
		VideoID: video.VideoID,
	}, nil)
	require.ErrorIs(t, err, utils.ErrNoUserCtx)
}

func TestUpdateSession_ProgressClampAndLatch(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	video := f.seedVideo(t, 7) // duration 1000
	session := startSession(t, f, "viewer@example.com", video)
	ctx := userCtx("viewer@example.com")

	// position past the end clamps to 100 and latches completion
	updated, err := f.uc.UpdateSession(ctx, session.SessionID, &models.WatchSessionUpdate{
		CurrentTime: floatPtr(1500),
	})
	require.NoError(t, err)
	require.Equal(t, 100.0, updated.ProgressPct)
	require.True(t, updated.IsCompleted)
	require.NotNil(t, updated.CompletedAt)

	// rewinding reduces progress but the latch survives
	updated, err = f.uc.UpdateSession(ctx, session.SessionID, &models.WatchSessionUpdate{
		CurrentTime: floatPtr(100),
	})
	require.NoError(t, err)
	require.Equal(t, 10.0, updated.ProgressPct)
	require.True(t, updated.IsCompleted)
}

func TestUpdateSession_HistoryAccumulatesForwardOnly(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	video := f.seedVideo(t, 7)
	session := startSession(t, f, "viewer@example.com", video)
	ctx := userCtx("viewer@example.com")

	_, err := f.uc.UpdateSession(ctx, session.SessionID, &models.WatchSessionUpdate{CurrentTime: floatPtr(300)})
	require.NoError(t, err)

	history, err := f.streamRepo.GetHistory(ctx, "viewer@example.com", 7)
	require.NoError(t, err)
	require.Equal(t, 300.0, history.TotalTime)
	require.Equal(t, 30.0, history.CompletionPct)

	// a rewind adds no watch time and completion keeps its maximum
	_, err = f.uc.UpdateSession(ctx, session.SessionID, &models.WatchSessionUpdate{CurrentTime: floatPtr(100)})
	require.NoError(t, err)

	history, err = f.streamRepo.GetHistory(ctx, "viewer@example.com", 7)
	require.NoError(t, err)
	require.Equal(t, 300.0, history.TotalTime)
	require.Equal(t, 30.0, history.CompletionPct)
	require.Equal(t, 100.0, history.LastPosition)
}

func TestUpdateSession_WatchCountIncrementsOnce(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	video := f.seedVideo(t, 7)
	session := startSession(t, f, "viewer@example.com", video)
	ctx := userCtx("viewer@example.com")

	_, err := f.uc.UpdateSession(ctx, session.SessionID, &models.WatchSessionUpdate{CurrentTime: floatPtr(950)})
	require.NoError(t, err)
	_, err = f.uc.UpdateSession(ctx, session.SessionID, &models.WatchSessionUpdate{CurrentTime: floatPtr(990)})
	require.NoError(t, err)

	history, err := f.streamRepo.GetHistory(ctx, "viewer@example.com", 7)
	require.NoError(t, err)
	require.Equal(t, 1, history.WatchCount)
}

func TestUpdateSession_ForeignSessionLooksMissing(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	video := f.seedVideo(t, 7)
	session := startSession(t, f, "viewer@example.com", video)

	_, err := f.uc.UpdateSession(userCtx("other@example.com"), session.SessionID, &models.WatchSessionUpdate{
		CurrentTime: floatPtr(10),
	})
	require.ErrorIs(t, err, streaming.ErrSessionNotFound)
}

func TestEndSession_IsExactlyOnce(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	video := f.seedVideo(t, 7)
	session := startSession(t, f, "viewer@example.com", video)
	ctx := userCtx("viewer@example.com")

	ended, err := f.uc.EndSession(ctx, session.SessionID)
	require.NoError(t, err)
	require.False(t, ended.IsActive)

	_, err = f.uc.EndSession(ctx, session.SessionID)
	require.ErrorIs(t, err, streaming.ErrSessionEnded)

	_, err = f.uc.UpdateSession(ctx, session.SessionID, &models.WatchSessionUpdate{CurrentTime: floatPtr(10)})
	require.ErrorIs(t, err, streaming.ErrSessionEnded)
}

func TestEndSession_UpdatesStats(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	video := f.seedVideo(t, 7)
	ctx := userCtx("viewer@example.com")

	session := startSession(t, f, "viewer@example.com", video)
	_, err := f.uc.UpdateSession(ctx, session.SessionID, &models.WatchSessionUpdate{CurrentTime: floatPtr(950)})
	require.NoError(t, err)
	_, err = f.uc.EndSession(ctx, session.SessionID)
	require.NoError(t, err)

	stats, err := f.uc.MovieStats(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, int64(1), stats.TotalViews)
	require.Equal(t, int64(1), stats.UniqueViewers)
	require.InDelta(t, 100.0, stats.CompletionRate, 0.01)

	raw, err := f.streamRepo.GetStats(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, int64(1), raw.CompletedViews)
	require.Equal(t, 950.0, raw.TotalWatchTime)
	require.InDelta(t, 950.0, raw.AvgSessionTime, 0.01)
}

func TestEndSession_AveragesFollowCounters(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	video := f.seedVideo(t, 7)

	// first viewer finishes the movie
	ctxA := userCtx("a@example.com")
	sessionA := startSession(t, f, "a@example.com", video)
	_, err := f.uc.UpdateSession(ctxA, sessionA.SessionID, &models.WatchSessionUpdate{CurrentTime: floatPtr(950)})
	require.NoError(t, err)
	_, err = f.uc.EndSession(ctxA, sessionA.SessionID)
	require.NoError(t, err)

	// second viewer bails out halfway
	ctxB := userCtx("b@example.com")
	sessionB := startSession(t, f, "b@example.com", video)
	_, err = f.uc.UpdateSession(ctxB, sessionB.SessionID, &models.WatchSessionUpdate{CurrentTime: floatPtr(500)})
	require.NoError(t, err)
	_, err = f.uc.EndSession(ctxB, sessionB.SessionID)
	require.NoError(t, err)

	raw, err := f.streamRepo.GetStats(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, int64(2), raw.TotalViews)
	require.Equal(t, int64(1), raw.CompletedViews)
	require.InDelta(t, 50.0, raw.AvgCompletion, 0.01)
	require.InDelta(t, 725.0, raw.AvgSessionTime, 0.01)
}

func TestEndSession_WithoutUpdatesRecordsWatchTime(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	video := f.seedVideo(t, 7)
	ctx := userCtx("viewer@example.com")

	session, err := f.uc.StartSession(ctx, &models.WatchSessionCreate{
		MovieID:     video.MovieID,
		VideoID:     video.VideoID,
		CurrentTime: 500,
	}, &utils.ClientInfo{UserAgent: "test", IPAddress: "127.0.0.1", DeviceType: "desktop"})
	require.NoError(t, err)

	_, err = f.uc.EndSession(ctx, session.SessionID)
	require.NoError(t, err)

	history, err := f.streamRepo.GetHistory(ctx, "viewer@example.com", 7)
	require.NoError(t, err)
	require.Equal(t, 500.0, history.TotalTime)
	require.Equal(t, 500.0, history.LastPosition)
}

func TestMovieStats_ZeroValueWhenAbsent(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	stats, err := f.uc.MovieStats(context.Background(), 99)
	require.NoError(t, err)
	require.Equal(t, int64(99), stats.MovieID)
	require.Zero(t, stats.TotalViews)
	require.Zero(t, stats.UniqueViewers)
}

func TestOpenStream_FallsBackToOriginal(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	video := f.seedVideo(t, 7)
	_, err := f.store.Put(context.Background(), video.FilePath, bytes.NewReader([]byte("original bytes")))
	require.NoError(t, err)

	stream, err := f.uc.OpenStream(context.Background(), video.VideoID, "")
	require.NoError(t, err)
	defer stream.Content.Close()
	require.Equal(t, int64(len("original bytes")), stream.Size)
	require.Equal(t, "video/mp4", stream.MimeType)
}

func TestOpenStream_UnreadyQualityIs404(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	video := f.seedVideo(t, 7)

	_, err := f.uc.OpenStream(context.Background(), video.VideoID, "720p")
	require.ErrorIs(t, err, streaming.ErrQualityNotReady)
}

func TestOpenStream_ReadyQuality(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	video := f.seedVideo(t, 7)
	ctx := context.Background()

	renditionPath := storage.RenditionPath(video.VideoID, "720p")
	_, err := f.store.Put(ctx, renditionPath, bytes.NewReader([]byte("720p bytes")))
	require.NoError(t, err)
	require.NoError(t, f.videoRepo.CreateQuality(ctx, &models.VideoQuality{
		QualityID: uuid.New(),
		VideoID:   video.VideoID,
		Quality:   "720p",
		FilePath:  renditionPath,
		IsReady:   true,
	}))

	stream, err := f.uc.OpenStream(ctx, video.VideoID, "720p")
	require.NoError(t, err)
	defer stream.Content.Close()
	require.Equal(t, int64(len("720p bytes")), stream.Size)
}

func TestOpenStream_UnavailableVideoIs404(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	video := &models.VideoFile{
		VideoID:          uuid.New(),
		MovieID:          7,
		FilePath:         "uploads/pending.mp4",
		ProcessingStatus: models.StatusPending,
	}
	_, err := f.videoRepo.CreateVideo(context.Background(), video)
	require.NoError(t, err)

	_, err = f.uc.OpenStream(context.Background(), video.VideoID, "")
	require.ErrorIs(t, err, streaming.ErrStreamNotFound)
}

func TestStreamInfo_ResumePositionAndRecommendation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	video := f.seedVideo(t, 7)
	ctx := userCtx("viewer@example.com")

	require.NoError(t, f.videoRepo.CreateQuality(context.Background(), &models.VideoQuality{
		QualityID: uuid.New(),
		VideoID:   video.VideoID,
		Quality:   "480p",
		FilePath:  storage.RenditionPath(video.VideoID, "480p"),
		IsReady:   true,
	}))

	session := startSession(t, f, "viewer@example.com", video)
	_, err := f.uc.UpdateSession(ctx, session.SessionID, &models.WatchSessionUpdate{
		CurrentTime: floatPtr(420),
		Quality:     func() *string { q := "480p"; return &q }(),
	})
	require.NoError(t, err)

	info, err := f.uc.StreamInfo(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, video.VideoID, info.VideoID)
	require.Equal(t, 420.0, info.CurrentPosition)
	require.Equal(t, "480p", info.RecommendedQuality)
	require.Contains(t, info.StreamURLs, "480p")
}

func TestStreamInfo_AnonymousGetsDefaults(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seedVideo(t, 7)

	info, err := f.uc.StreamInfo(context.Background(), 7)
	require.NoError(t, err)
	require.Zero(t, info.CurrentPosition)
	require.Equal(t, "720p", info.RecommendedQuality)
}

func TestStreamInfo_FallsBackToNonPrimaryFile(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	video := &models.VideoFile{
		VideoID:          uuid.New(),
		MovieID:          7,
		OriginalFileName: "movie.mp4",
		FilePath:         "uploads/source.mp4",
		MimeType:         "video/mp4",
		Duration:         1000,
		ProcessingStatus: models.StatusCompleted,
		IsPrimary:        false,
		IsProcessed:      true,
		IsAvailable:      true,
		UploadedBy:       "uploader@example.com",
	}
	_, err := f.videoRepo.CreateVideo(context.Background(), video)
	require.NoError(t, err)

	info, err := f.uc.StreamInfo(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, video.VideoID, info.VideoID)
}

func TestStreamInfo_NoReadyVideoIs404(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.uc.StreamInfo(context.Background(), 123)
	require.ErrorIs(t, err, streaming.ErrStreamNotFound)
}

func TestUserStats_Totals(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	video := f.seedVideo(t, 7)
	ctx := userCtx("viewer@example.com")

	session := startSession(t, f, "viewer@example.com", video)
	_, err := f.uc.UpdateSession(ctx, session.SessionID, &models.WatchSessionUpdate{CurrentTime: floatPtr(500)})
	require.NoError(t, err)

	stats, err := f.uc.UserStats(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, stats.TotalMoviesWatched)
	require.Equal(t, 500.0, stats.TotalWatchTime)
	require.Len(t, stats.WatchHistory, 1)
}
