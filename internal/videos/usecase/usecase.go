package usecase

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/movstream/streaming-service/internal/catalog"
	"github.com/movstream/streaming-service/internal/config"
	"github.com/movstream/streaming-service/internal/models"
	"github.com/movstream/streaming-service/internal/storage"
	"github.com/movstream/streaming-service/internal/videos"
	"github.com/movstream/streaming-service/pkg/logger"
	"github.com/movstream/streaming-service/pkg/utils"
)

// Videos UseCase
type videosUC struct {
	cfg       *config.Config
	videoRepo videos.Repository
	redisRepo videos.RedisRepository
	store     storage.MediaStore
	catalog   catalog.Client
	logger    logger.Logger
}

// Videos UseCase constructor
func NewVideosUseCase(
	cfg *config.Config,
	videoRepo videos.Repository,
	redisRepo videos.RedisRepository,
	store storage.MediaStore,
	catalogClient catalog.Client,
	log logger.Logger,
) videos.UseCase {
	return &videosUC{
		cfg:       cfg,
		videoRepo: videoRepo,
		redisRepo: redisRepo,
		store:     store,
		catalog:   catalogClient,
		logger:    log,
	}
}

// Upload stores the raw file, registers a pending row and enqueues a
// transcode job. The file is never served until the pipeline marks it
// available.
func (u *videosUC) Upload(ctx context.Context, input *models.VideoUploadInput, src io.Reader) (*models.VideoFile, error) {
	email, err := utils.GetUserFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	if err := utils.ValidateStruct(ctx, input); err != nil {
		return nil, errors.Wrap(videos.ErrInvalidFile, err.Error())
	}

	ext, err := u.allowedExtension(input.FileName)
	if err != nil {
		return nil, err
	}
	if input.FileSize > u.cfg.Storage.MaxUploadSizeBytes() {
		return nil, errors.Wrapf(videos.ErrInvalidFile, "file exceeds the %dMB upload limit", u.cfg.Storage.MaxUploadSizeMB)
	}

	if err := u.catalog.VerifyMovieExists(ctx, input.MovieID); err != nil {
		return nil, err
	}

	videoID := uuid.New()
	uploadPath := storage.UploadPath(videoID, ext)

	written, err := u.store.Put(ctx, uploadPath, src)
	if err != nil {
		return nil, errors.Wrap(err, "videosUC.Upload.store.Put")
	}

	quality := input.Quality
	if quality == "" {
		quality = u.cfg.Transcode.DefaultQuality
	}

	video := &models.VideoFile{
		VideoID:          videoID,
		MovieID:          input.MovieID,
		FileName:         filepath.Base(uploadPath),
		OriginalFileName: input.FileName,
		FilePath:         uploadPath,
		FileSize:         written,
		MimeType:         input.MimeType,
		Quality:          quality,
		ProcessingStatus: models.StatusPending,
		IsPrimary:        input.IsPrimary,
		UploadedBy:       email,
	}

	created, err := u.videoRepo.CreateVideo(ctx, video)
	if err != nil {
		if delErr := u.store.Delete(ctx, uploadPath); delErr != nil {
			u.logger.Errorf("videosUC.Upload cleanup after failed insert: %v", delErr)
		}
		return nil, err
	}

	if err := u.enqueue(ctx, created); err != nil {
		return nil, err
	}

	u.logger.Infof("video uploaded: id=%s movie=%d size=%d uploader=%s", created.VideoID, created.MovieID, written, email)
	return created, nil
}

// Status answers from the Redis mirror while a run is live so polling does
// not hammer Postgres, falling back to the persisted row otherwise.
func (u *videosUC) Status(ctx context.Context, videoID uuid.UUID) (*models.ProcessingStatusInfo, error) {
	video, err := u.videoRepo.GetVideoByID(ctx, videoID)
	if err != nil {
		return nil, err
	}

	info := &models.ProcessingStatusInfo{
		VideoID:  video.VideoID,
		Status:   video.ProcessingStatus,
		Progress: video.ProcessingProg,
	}

	snap, err := u.redisRepo.GetProgress(ctx, videoID)
	if err != nil {
		u.logger.Warnf("videosUC.Status redis progress lookup: %v", err)
	} else if snap != nil && video.ProcessingStatus == models.StatusProcessing {
		info.Status = snap.Status
		if snap.Progress > info.Progress {
			info.Progress = snap.Progress
		}
	}

	if video.ProcessingStatus == models.StatusFailed {
		info.ErrorMessage = video.ProcessingError
	}

	qualities, err := u.videoRepo.GetQualities(ctx, videoID)
	if err != nil {
		return nil, err
	}
	info.AvailableQualities = make([]string, 0, len(qualities))
	for _, q := range qualities {
		info.AvailableQualities = append(info.AvailableQualities, q.Quality)
	}

	if video.ThumbnailPath != "" {
		info.ThumbnailURL = u.publicURL(video.ThumbnailPath)
	}
	return info, nil
}

func (u *videosUC) ListVideos(ctx context.Context, movieID int64, pq *utils.Pagination) (*models.VideoList, error) {
	email, err := utils.GetUserFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	return u.videoRepo.GetVideosByUploader(ctx, email, movieID, pq)
}

// DeleteVideo removes the row, its renditions and every stored artifact.
// Missing objects are tolerated so a partially processed video can still be
// deleted.
func (u *videosUC) DeleteVideo(ctx context.Context, videoID uuid.UUID) error {
	email, err := utils.GetUserFromCtx(ctx)
	if err != nil {
		return err
	}

	video, err := u.videoRepo.GetVideoByID(ctx, videoID)
	if err != nil {
		return err
	}
	if video.UploadedBy != email {
		return videos.ErrForbidden
	}

	qualities, err := u.videoRepo.GetQualities(ctx, videoID)
	if err != nil {
		return err
	}

	if err := u.videoRepo.DeleteQualities(ctx, videoID); err != nil {
		return err
	}
	if err := u.videoRepo.DeleteVideo(ctx, videoID); err != nil {
		return err
	}
	if err := u.redisRepo.DeleteProgress(ctx, videoID); err != nil {
		u.logger.Warnf("videosUC.DeleteVideo progress key: %v", err)
	}

	paths := []string{video.FilePath, video.ThumbnailPath, video.PreviewPath}
	for _, q := range qualities {
		paths = append(paths, q.FilePath)
	}
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := u.store.Delete(ctx, p); err != nil && !errors.Is(err, storage.ErrNotFound) {
			u.logger.Warnf("videosUC.DeleteVideo object %s: %v", p, err)
		}
	}

	u.logger.Infof("video deleted: id=%s uploader=%s", videoID, email)
	return nil
}

// RetryProcessing resets a failed upload and puts it back on the queue.
// Renditions from the failed run are discarded so the new run starts clean.
func (u *videosUC) RetryProcessing(ctx context.Context, videoID uuid.UUID) error {
	email, err := utils.GetUserFromCtx(ctx)
	if err != nil {
		return err
	}

	video, err := u.videoRepo.GetVideoByID(ctx, videoID)
	if err != nil {
		return err
	}
	if video.UploadedBy != email {
		return videos.ErrForbidden
	}
	if video.ProcessingStatus == models.StatusCompleted || video.ProcessingStatus == models.StatusProcessing {
		return videos.ErrRetryNotAllowed
	}

	qualities, err := u.videoRepo.GetQualities(ctx, videoID)
	if err != nil {
		return err
	}
	if err := u.videoRepo.DeleteQualities(ctx, videoID); err != nil {
		return err
	}
	for _, q := range qualities {
		if err := u.store.Delete(ctx, q.FilePath); err != nil && !errors.Is(err, storage.ErrNotFound) {
			u.logger.Warnf("videosUC.RetryProcessing rendition %s: %v", q.FilePath, err)
		}
	}

	if err := u.videoRepo.ResetForRetry(ctx, videoID); err != nil {
		return err
	}
	if err := u.redisRepo.DeleteProgress(ctx, videoID); err != nil {
		u.logger.Warnf("videosUC.RetryProcessing progress key: %v", err)
	}

	video.ProcessingStatus = models.StatusPending
	if err := u.enqueue(ctx, video); err != nil {
		return err
	}

	u.logger.Infof("video requeued: id=%s uploader=%s", videoID, email)
	return nil
}

func (u *videosUC) enqueue(ctx context.Context, video *models.VideoFile) error {
	job := &models.TranscodeJob{
		JobID:      uuid.New().String(),
		VideoID:    video.VideoID,
		MovieID:    video.MovieID,
		InputPath:  video.FilePath,
		EnqueuedAt: time.Now().UTC(),
	}
	if err := u.redisRepo.EnqueueJob(ctx, job); err != nil {
		return errors.Wrap(err, "videosUC.enqueue")
	}
	return nil
}

func (u *videosUC) allowedExtension(fileName string) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")
	if ext == "" {
		return "", errors.Wrap(videos.ErrInvalidFile, "file has no extension")
	}
	for _, allowed := range u.cfg.Storage.AllowedExtensions {
		if ext == strings.ToLower(allowed) {
			return ext, nil
		}
	}
	return "", errors.Wrapf(videos.ErrInvalidFile, "extension .%s is not supported", ext)
}

func (u *videosUC) publicURL(path string) string {
	base := strings.TrimSuffix(u.cfg.Storage.PublicBaseURL, "/")
	if base == "" {
		return "/files/" + path
	}
	return base + "/" + path
}
