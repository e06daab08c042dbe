package transcoder

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/movstream/streaming-service/internal/config"
	"github.com/movstream/streaming-service/internal/models"
	"github.com/movstream/streaming-service/internal/storage"
	"github.com/movstream/streaming-service/pkg/logger"
	"github.com/pkg/errors"
)

var ErrAlreadyRunning = errors.New("transcoder: pipeline already running for this video")

const defaultStepTimeout = 15 * time.Minute

// StatusSink receives the pipeline's progress and outcome events. The
// pipeline has no compile-time dependency on how these are persisted.
type StatusSink interface {
	Started(ctx context.Context, videoID uuid.UUID) error
	Metadata(ctx context.Context, videoID uuid.UUID, probe *ProbeResult) error
	Progress(ctx context.Context, videoID uuid.UUID, progress float64) error
	Artifacts(ctx context.Context, videoID uuid.UUID, thumbnailPath, previewPath string) error
	QualityReady(ctx context.Context, quality *models.VideoQuality) error
	Finished(ctx context.Context, videoID uuid.UUID, status models.ProcessingStatus, errText string) error
}

// Pipeline drives one ingested file through probe, thumbnail, preview and
// per-quality rendition steps. It owns the registry of in-flight runs: a
// single video never has two pipeline runs active at once.
type Pipeline struct {
	cfg      *config.Config
	store    storage.MediaStore
	prober   Prober
	renderer Renderer
	ladder   Ladder
	logger   logger.Logger

	mu     sync.Mutex
	active map[uuid.UUID]struct{}
}

func NewPipeline(
	cfg *config.Config,
	store storage.MediaStore,
	prober Prober,
	renderer Renderer,
	log logger.Logger,
) (*Pipeline, error) {
	ladder, err := NewLadder(cfg.Transcode.Qualities)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		cfg:      cfg,
		store:    store,
		prober:   prober,
		renderer: renderer,
		ladder:   ladder,
		logger:   log,
		active:   make(map[uuid.UUID]struct{}),
	}, nil
}

func (p *Pipeline) Ladder() Ladder {
	return p.ladder
}

// Running reports whether a pipeline run is currently active for the video.
func (p *Pipeline) Running(videoID uuid.UUID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.active[videoID]
	return ok
}

func (p *Pipeline) acquire(videoID uuid.UUID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.active[videoID]; ok {
		return false
	}
	p.active[videoID] = struct{}{}
	return true
}

func (p *Pipeline) release(videoID uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.active, videoID)
}

// Run executes the full pipeline for one job, reporting fractional progress
// after each completed step. A failed thumbnail, preview or single rendition
// is recorded as a warning and the run continues; the terminal status is
// completed as long as at least one rendition succeeded.
func (p *Pipeline) Run(ctx context.Context, job *models.TranscodeJob, sink StatusSink) error {
	if !p.acquire(job.VideoID) {
		return ErrAlreadyRunning
	}
	defer p.release(job.VideoID)

	if err := sink.Started(ctx, job.VideoID); err != nil {
		return errors.Wrap(err, "pipeline.Run Started")
	}

	tempDir, err := os.MkdirTemp("", "transcode_")
	if err != nil {
		return p.fail(ctx, sink, job.VideoID, fmt.Sprintf("failed to create temp dir: %v", err))
	}
	defer os.RemoveAll(tempDir)

	inputPath, err := p.stageInput(ctx, job.InputPath, tempDir)
	if err != nil {
		return p.fail(ctx, sink, job.VideoID, fmt.Sprintf("failed to stage source: %v", err))
	}

	probe, err := p.probeStep(ctx, inputPath)
	if err != nil {
		return p.fail(ctx, sink, job.VideoID, fmt.Sprintf("probe failed: %v", err))
	}
	if err := sink.Metadata(ctx, job.VideoID, probe); err != nil {
		return errors.Wrap(err, "pipeline.Run Metadata")
	}

	applicable := p.ladder.Applicable(probe.Height)
	totalSteps := 2 + len(applicable)
	completedSteps := 0
	var warnings []string

	step := func() error {
		completedSteps++
		return sink.Progress(ctx, job.VideoID, float64(completedSteps)/float64(totalSteps))
	}

	thumbPath := p.thumbnailStep(ctx, job.VideoID, inputPath, tempDir, &warnings)
	if err := step(); err != nil {
		return errors.Wrap(err, "pipeline.Run Progress")
	}

	previewPath := p.previewStep(ctx, job.VideoID, inputPath, tempDir, &warnings)
	if err := step(); err != nil {
		return errors.Wrap(err, "pipeline.Run Progress")
	}

	if err := sink.Artifacts(ctx, job.VideoID, thumbPath, previewPath); err != nil {
		return errors.Wrap(err, "pipeline.Run Artifacts")
	}

	renditionsOK := 0
	for _, profile := range applicable {
		if quality := p.renditionStep(ctx, job.VideoID, inputPath, tempDir, profile, &warnings); quality != nil {
			if err := sink.QualityReady(ctx, quality); err != nil {
				return errors.Wrap(err, "pipeline.Run QualityReady")
			}
			renditionsOK++
		}
		if err := step(); err != nil {
			return errors.Wrap(err, "pipeline.Run Progress")
		}
	}

	if renditionsOK == 0 {
		warnings = append(warnings, "no qualities were successfully created")
		return p.fail(ctx, sink, job.VideoID, strings.Join(warnings, "; "))
	}

	if len(warnings) > 0 {
		p.logger.Warnf("pipeline completed for video %s with warnings: %s", job.VideoID, strings.Join(warnings, "; "))
	}
	return sink.Finished(ctx, job.VideoID, models.StatusCompleted, "")
}

func (p *Pipeline) fail(ctx context.Context, sink StatusSink, videoID uuid.UUID, errText string) error {
	p.logger.Errorf("pipeline failed for video %s: %s", videoID, errText)
	return sink.Finished(ctx, videoID, models.StatusFailed, errText)
}

// stageInput copies the raw source out of the media store into the run's
// temp dir so ffmpeg works against a local file regardless of backend.
func (p *Pipeline) stageInput(ctx context.Context, storePath, tempDir string) (string, error) {
	src, err := p.store.Open(ctx, storePath)
	if err != nil {
		return "", err
	}
	defer src.Close()

	localPath := filepath.Join(tempDir, "source"+filepath.Ext(storePath))
	dst, err := os.Create(localPath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return localPath, nil
}

func (p *Pipeline) stepTimeout() time.Duration {
	if p.cfg.Transcode.StepTimeoutMin > 0 {
		return time.Duration(p.cfg.Transcode.StepTimeoutMin) * time.Minute
	}
	return defaultStepTimeout
}

func (p *Pipeline) probeStep(ctx context.Context, inputPath string) (*ProbeResult, error) {
	stepCtx, cancel := context.WithTimeout(ctx, p.stepTimeout())
	defer cancel()
	return p.prober.Probe(stepCtx, inputPath)
}

func (p *Pipeline) thumbnailStep(ctx context.Context, videoID uuid.UUID, inputPath, tempDir string, warnings *[]string) string {
	stepCtx, cancel := context.WithTimeout(ctx, p.stepTimeout())
	defer cancel()

	local := filepath.Join(tempDir, "thumb.png")
	if err := p.renderer.Thumbnail(stepCtx, inputPath, local); err != nil {
		*warnings = append(*warnings, fmt.Sprintf("failed to create thumbnail: %v", err))
		return ""
	}
	storePath := storage.ThumbnailPath(videoID)
	if err := p.putFile(ctx, local, storePath); err != nil {
		*warnings = append(*warnings, fmt.Sprintf("failed to store thumbnail: %v", err))
		return ""
	}
	return storePath
}

func (p *Pipeline) previewStep(ctx context.Context, videoID uuid.UUID, inputPath, tempDir string, warnings *[]string) string {
	stepCtx, cancel := context.WithTimeout(ctx, p.stepTimeout())
	defer cancel()

	local := filepath.Join(tempDir, "preview.gif")
	if err := p.renderer.Preview(stepCtx, inputPath, local); err != nil {
		*warnings = append(*warnings, fmt.Sprintf("failed to create preview: %v", err))
		return ""
	}
	storePath := storage.PreviewPath(videoID)
	if err := p.putFile(ctx, local, storePath); err != nil {
		*warnings = append(*warnings, fmt.Sprintf("failed to store preview: %v", err))
		return ""
	}
	return storePath
}

func (p *Pipeline) renditionStep(
	ctx context.Context,
	videoID uuid.UUID,
	inputPath, tempDir string,
	profile QualityProfile,
	warnings *[]string,
) *models.VideoQuality {
	stepCtx, cancel := context.WithTimeout(ctx, p.stepTimeout())
	defer cancel()

	local := filepath.Join(tempDir, fmt.Sprintf("rendition_%s.mp4", profile.Label))
	if err := p.renderer.Rendition(stepCtx, inputPath, local, profile); err != nil {
		*warnings = append(*warnings, fmt.Sprintf("failed to create %s quality: %v", profile.Label, err))
		return nil
	}

	storePath := storage.RenditionPath(videoID, profile.Label)
	size, err := p.putFileSize(ctx, local, storePath)
	if err != nil {
		*warnings = append(*warnings, fmt.Sprintf("failed to store %s quality: %v", profile.Label, err))
		return nil
	}

	return &models.VideoQuality{
		QualityID: uuid.New(),
		VideoID:   videoID,
		Quality:   profile.Label,
		Width:     profile.Width,
		Height:    profile.Height,
		Bitrate:   profile.Bitrate,
		FilePath:  storePath,
		FileSize:  size,
		IsReady:   true,
	}
}

func (p *Pipeline) putFile(ctx context.Context, localPath, storePath string) error {
	_, err := p.putFileSize(ctx, localPath, storePath)
	return err
}

func (p *Pipeline) putFileSize(ctx context.Context, localPath, storePath string) (int64, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return p.store.Put(ctx, storePath, f)
}
