package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/movstream/streaming-service/internal/models"
	"github.com/movstream/streaming-service/internal/videos"
	"github.com/movstream/streaming-service/pkg/utils"
)

// Videos Repository
type videosRepo struct {
	db *sqlx.DB
}

// Videos repository constructor
func NewVideosRepository(db *sqlx.DB) videos.Repository {
	return &videosRepo{db: db}
}

func (r *videosRepo) CreateVideo(ctx context.Context, video *models.VideoFile) (*models.VideoFile, error) {
	v := &models.VideoFile{}
	if err := r.db.QueryRowxContext(
		ctx,
		createVideoQuery,
		video.VideoID,
		video.MovieID,
		video.FileName,
		video.OriginalFileName,
		video.FilePath,
		video.FileSize,
		video.MimeType,
		video.Quality,
		video.ProcessingStatus,
		video.IsPrimary,
		video.UploadedBy,
	).StructScan(v); err != nil {
		return nil, errors.Wrap(err, "videosRepo.CreateVideo.StructScan")
	}
	return v, nil
}

func (r *videosRepo) GetVideoByID(ctx context.Context, videoID uuid.UUID) (*models.VideoFile, error) {
	v := &models.VideoFile{}
	if err := r.db.GetContext(ctx, v, getVideoByIDQuery, videoID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, videos.ErrVideoNotFound
		}
		return nil, errors.Wrap(err, "videosRepo.GetVideoByID.GetContext")
	}
	return v, nil
}

func (r *videosRepo) GetPrimaryForMovie(ctx context.Context, movieID int64) (*models.VideoFile, error) {
	v := &models.VideoFile{}
	if err := r.db.GetContext(ctx, v, getPrimaryForMovieQuery, movieID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, videos.ErrVideoNotFound
		}
		return nil, errors.Wrap(err, "videosRepo.GetPrimaryForMovie.GetContext")
	}
	return v, nil
}

func (r *videosRepo) GetVideosByUploader(ctx context.Context, email string, movieID int64, pq *utils.Pagination) (*models.VideoList, error) {
	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, getTotalByUploaderQuery, email, movieID); err != nil {
		return nil, errors.Wrap(err, "videosRepo.GetVideosByUploader.GetContext.totalCount")
	}

	if totalCount == 0 {
		return &models.VideoList{
			TotalCount: totalCount,
			Page:       pq.GetPage(),
			PageSize:   pq.GetSize(),
			HasMore:    utils.GetHasMore(pq.GetPage(), totalCount, pq.GetSize()),
			Videos:     make([]*models.VideoFile, 0),
		}, nil
	}

	rows, err := r.db.QueryxContext(ctx, getVideosByUploaderQuery, email, movieID, pq.GetOffset(), pq.GetLimit())
	if err != nil {
		return nil, errors.Wrap(err, "videosRepo.GetVideosByUploader.QueryxContext")
	}
	defer rows.Close()

	videoList := make([]*models.VideoFile, 0, pq.GetSize())
	for rows.Next() {
		v := &models.VideoFile{}
		if err := rows.StructScan(v); err != nil {
			return nil, errors.Wrap(err, "videosRepo.GetVideosByUploader.StructScan")
		}
		videoList = append(videoList, v)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "videosRepo.GetVideosByUploader.rows.Err")
	}

	return &models.VideoList{
		TotalCount: totalCount,
		Page:       pq.GetPage(),
		PageSize:   pq.GetSize(),
		HasMore:    utils.GetHasMore(pq.GetPage(), totalCount, pq.GetSize()),
		Videos:     videoList,
	}, nil
}

func (r *videosRepo) DeleteVideo(ctx context.Context, videoID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, deleteVideoQuery, videoID)
	if err != nil {
		return errors.Wrap(err, "videosRepo.DeleteVideo.ExecContext")
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "videosRepo.DeleteVideo.RowsAffected")
	}
	if rowsAffected == 0 {
		return videos.ErrVideoNotFound
	}
	return nil
}

func (r *videosRepo) UpdateMetadata(ctx context.Context, videoID uuid.UUID, meta *models.VideoMetadata) error {
	if _, err := r.db.ExecContext(ctx, updateMetadataQuery, videoID,
		meta.Duration, meta.Width, meta.Height, meta.Bitrate, meta.FPS, meta.Codec,
	); err != nil {
		return errors.Wrap(err, "videosRepo.UpdateMetadata.ExecContext")
	}
	return nil
}

func (r *videosRepo) SetProcessing(ctx context.Context, videoID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, setProcessingQuery, videoID); err != nil {
		return errors.Wrap(err, "videosRepo.SetProcessing.ExecContext")
	}
	return nil
}

func (r *videosRepo) UpdateProgress(ctx context.Context, videoID uuid.UUID, progress float64) error {
	if _, err := r.db.ExecContext(ctx, updateProgressQuery, videoID, progress); err != nil {
		return errors.Wrap(err, "videosRepo.UpdateProgress.ExecContext")
	}
	return nil
}

func (r *videosRepo) SetArtifacts(ctx context.Context, videoID uuid.UUID, thumbnailPath, previewPath string) error {
	if _, err := r.db.ExecContext(ctx, setArtifactsQuery, videoID, thumbnailPath, previewPath); err != nil {
		return errors.Wrap(err, "videosRepo.SetArtifacts.ExecContext")
	}
	return nil
}

func (r *videosRepo) Finish(ctx context.Context, videoID uuid.UUID, status models.ProcessingStatus, errText string) error {
	if _, err := r.db.ExecContext(ctx, finishProcessingQuery, videoID, status, errText); err != nil {
		return errors.Wrap(err, "videosRepo.Finish.ExecContext")
	}
	return nil
}

func (r *videosRepo) ResetForRetry(ctx context.Context, videoID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, resetForRetryQuery, videoID); err != nil {
		return errors.Wrap(err, "videosRepo.ResetForRetry.ExecContext")
	}
	return nil
}

func (r *videosRepo) CreateQuality(ctx context.Context, quality *models.VideoQuality) error {
	if _, err := r.db.ExecContext(ctx, createQualityQuery,
		quality.QualityID,
		quality.VideoID,
		quality.Quality,
		quality.Width,
		quality.Height,
		quality.Bitrate,
		quality.FilePath,
		quality.FileSize,
		quality.IsReady,
	); err != nil {
		return errors.Wrap(err, "videosRepo.CreateQuality.ExecContext")
	}
	return nil
}

func (r *videosRepo) GetQualities(ctx context.Context, videoID uuid.UUID) ([]*models.VideoQuality, error) {
	qualities := make([]*models.VideoQuality, 0)
	if err := r.db.SelectContext(ctx, &qualities, getQualitiesQuery, videoID); err != nil {
		return nil, errors.Wrap(err, "videosRepo.GetQualities.SelectContext")
	}
	return qualities, nil
}

func (r *videosRepo) DeleteQualities(ctx context.Context, videoID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, deleteQualitiesQuery, videoID); err != nil {
		return errors.Wrap(err, "videosRepo.DeleteQualities.ExecContext")
	}
	return nil
}
