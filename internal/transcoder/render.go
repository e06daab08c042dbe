package transcoder

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/movstream/streaming-service/internal/config"
)

// Renderer produces one derived artifact from a source file.
type Renderer interface {
	Thumbnail(ctx context.Context, inputPath, outputPath string) error
	Preview(ctx context.Context, inputPath, outputPath string) error
	Rendition(ctx context.Context, inputPath, outputPath string, profile QualityProfile) error
}

type ffmpegRenderer struct {
	cfg *config.TranscodeConfig
}

func NewFFMpegRenderer(cfg *config.TranscodeConfig) Renderer {
	return &ffmpegRenderer{cfg: cfg}
}

func (f *ffmpegRenderer) Thumbnail(ctx context.Context, inputPath, outputPath string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-ss", fmt.Sprintf("%.2f", f.cfg.ThumbnailOffset),
		"-i", inputPath,
		"-vframes", "1",
		"-vf", "scale=320:180:flags=lanczos",
		"-f", "image2",
		"-y", outputPath,
	)
	return runFFMpeg(cmd, "thumbnail")
}

func (f *ffmpegRenderer) Preview(ctx context.Context, inputPath, outputPath string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-ss", fmt.Sprintf("%.2f", f.cfg.PreviewOffset),
		"-t", fmt.Sprintf("%.2f", f.cfg.PreviewDuration),
		"-i", inputPath,
		"-vf", "scale=320:180:flags=lanczos,fps=10",
		"-f", "gif",
		"-y", outputPath,
	)
	return runFFMpeg(cmd, "preview")
}

func (f *ffmpegRenderer) Rendition(ctx context.Context, inputPath, outputPath string, profile QualityProfile) error {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-i", inputPath,
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", fmt.Sprintf("%d", profile.CRF),
		"-vf", fmt.Sprintf("scale=%d:%d", profile.Width, profile.Height),
		"-maxrate", fmt.Sprintf("%dk", profile.Bitrate),
		"-bufsize", fmt.Sprintf("%dk", profile.Bitrate*2),
		"-c:a", "aac",
		"-b:a", "128k",
		"-movflags", "+faststart",
		"-f", "mp4",
		"-y", outputPath,
	)
	return runFFMpeg(cmd, profile.Label)
}

func runFFMpeg(cmd *exec.Cmd, step string) error {
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg %s failed: %v, stderr: %s", step, err, tail(stderr.String(), 512))
	}
	return nil
}

// tail keeps ffmpeg error text bounded; the interesting part is at the end.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
