package worker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/movstream/streaming-service/internal/config"
	"github.com/movstream/streaming-service/internal/models"
	"github.com/movstream/streaming-service/internal/transcoder"
	"github.com/movstream/streaming-service/internal/videos"
	"github.com/movstream/streaming-service/pkg/logger"
	"github.com/movstream/streaming-service/pkg/utils"
)

const (
	dequeueBlock   = 5 * time.Second
	cpuGateBackoff = 10 * time.Second
)

// Worker drains the transcode queue with a bounded pool of goroutines.
// Each job runs the pipeline to a terminal status; pipeline events are
// mirrored into Postgres and the Redis progress hash through the sink.
type Worker struct {
	cfg       *config.Config
	logger    logger.Logger
	videoRepo videos.Repository
	redisRepo videos.RedisRepository
	pipeline  *transcoder.Pipeline
	wg        sync.WaitGroup
}

func NewWorker(
	cfg *config.Config,
	log logger.Logger,
	videoRepo videos.Repository,
	redisRepo videos.RedisRepository,
	pipeline *transcoder.Pipeline,
) *Worker {
	return &Worker{
		cfg:       cfg,
		logger:    log,
		videoRepo: videoRepo,
		redisRepo: redisRepo,
		pipeline:  pipeline,
	}
}

// Start launches the pool. Workers stop when ctx is cancelled; Wait blocks
// until the in-flight jobs have reached a terminal status.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Infof("starting %d transcode workers", w.cfg.Worker.WorkerCount)
	for i := 0; i < w.cfg.Worker.WorkerCount; i++ {
		w.wg.Add(1)
		go w.run(ctx, i)
	}
}

func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) run(ctx context.Context, id int) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			w.logger.Infof("worker %d stopping", id)
			return
		default:
		}

		ok, usage, err := utils.CPUBelow(w.cfg.Worker.MaxCPUUsage)
		if err != nil {
			w.logger.Warnf("worker %d cpu sample: %v", id, err)
		} else if !ok {
			w.logger.Warnf("worker %d deferring, cpu usage %.1f%%", id, usage)
			select {
			case <-ctx.Done():
				return
			case <-time.After(cpuGateBackoff):
			}
			continue
		}

		job, err := w.redisRepo.DequeueJob(ctx, dequeueBlock)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Errorf("worker %d dequeue: %v", id, err)
			time.Sleep(time.Second)
			continue
		}
		if job == nil {
			continue
		}

		w.logger.Infof("worker %d picked job %s video %s", id, job.JobID, job.VideoID)
		w.process(ctx, job)
	}
}

func (w *Worker) process(ctx context.Context, job *models.TranscodeJob) {
	sink := &repoSink{videoRepo: w.videoRepo, redisRepo: w.redisRepo, logger: w.logger}
	if err := w.pipeline.Run(ctx, job, sink); err != nil {
		if errors.Is(err, transcoder.ErrAlreadyRunning) {
			w.logger.Warnf("job %s skipped, video %s already in progress", job.JobID, job.VideoID)
			return
		}
		w.logger.Errorf("job %s failed before reaching a terminal status: %v", job.JobID, err)
		if ferr := w.videoRepo.Finish(ctx, job.VideoID, models.StatusFailed, err.Error()); ferr != nil {
			w.logger.Errorf("job %s could not record failure: %v", job.JobID, ferr)
		}
	}
}

// repoSink applies pipeline events to the video registry and keeps the
// Redis progress mirror in sync for cheap status polling.
type repoSink struct {
	videoRepo videos.Repository
	redisRepo videos.RedisRepository
	logger    logger.Logger
}

func (s *repoSink) Started(ctx context.Context, videoID uuid.UUID) error {
	if err := s.videoRepo.SetProcessing(ctx, videoID); err != nil {
		return err
	}
	s.mirror(ctx, videoID, models.StatusProcessing, 0)
	return nil
}

func (s *repoSink) Metadata(ctx context.Context, videoID uuid.UUID, probe *transcoder.ProbeResult) error {
	return s.videoRepo.UpdateMetadata(ctx, videoID, &models.VideoMetadata{
		Duration: probe.Duration,
		Width:    probe.Width,
		Height:   probe.Height,
		Bitrate:  probe.Bitrate,
		FPS:      probe.FPS,
		Codec:    probe.Codec,
	})
}

func (s *repoSink) Progress(ctx context.Context, videoID uuid.UUID, progress float64) error {
	if err := s.videoRepo.UpdateProgress(ctx, videoID, progress); err != nil {
		return err
	}
	s.mirror(ctx, videoID, models.StatusProcessing, progress)
	return nil
}

func (s *repoSink) Artifacts(ctx context.Context, videoID uuid.UUID, thumbnailPath, previewPath string) error {
	return s.videoRepo.SetArtifacts(ctx, videoID, thumbnailPath, previewPath)
}

func (s *repoSink) QualityReady(ctx context.Context, quality *models.VideoQuality) error {
	return s.videoRepo.CreateQuality(ctx, quality)
}

func (s *repoSink) Finished(ctx context.Context, videoID uuid.UUID, status models.ProcessingStatus, errText string) error {
	if err := s.videoRepo.Finish(ctx, videoID, status, errText); err != nil {
		return err
	}
	s.mirror(ctx, videoID, status, 1.0)
	return nil
}

func (s *repoSink) mirror(ctx context.Context, videoID uuid.UUID, status models.ProcessingStatus, progress float64) {
	snap := &models.ProgressSnapshot{Status: status, Progress: progress}
	if err := s.redisRepo.SetProgress(ctx, videoID, snap); err != nil {
		s.logger.Warnf("progress mirror for %s: %v", videoID, err)
	}
}
