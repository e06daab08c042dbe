package transcoder

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ProbeResult is the technical metadata extracted from a raw media file.
type ProbeResult struct {
	Duration float64
	Width    int
	Height   int
	Bitrate  int // kbps
	FPS      float64
	Codec    string
}

type Prober interface {
	Probe(ctx context.Context, inputPath string) (*ProbeResult, error)
}

type ffprobeProber struct{}

func NewFFProbeProber() Prober {
	return &ffprobeProber{}
}

func (f *ffprobeProber) Probe(ctx context.Context, inputPath string) (*ProbeResult, error) {
	cmd := exec.CommandContext(ctx, "ffprobe", "-v", "error", "-select_streams", "v:0",
		"-show_entries", "stream=width,height,codec_name,r_frame_rate", "-of", "csv=p=0", inputPath)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("ffprobe error: %v output: %v", err, string(output))
	}

	trimmedOutput := strings.TrimSpace(string(output))
	trimmedOutput = strings.TrimRight(trimmedOutput, ",")
	parts := strings.Split(trimmedOutput, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("unexpected ffprobe output: %s", trimmedOutput)
	}

	width, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid width: %v", err)
	}
	height, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid height: %v", err)
	}
	codec := parts[2]
	fps := parseFrameRate(parts[3])

	cmd = exec.CommandContext(ctx, "ffprobe", "-v", "error", "-show_entries",
		"format=duration,bit_rate", "-of", "csv=p=0", inputPath)
	formatOutput, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("ffprobe format error: %v", err)
	}

	formatParts := strings.Split(strings.TrimSpace(string(formatOutput)), ",")
	if len(formatParts) < 1 {
		return nil, fmt.Errorf("unexpected ffprobe format output: %s", string(formatOutput))
	}
	duration, err := strconv.ParseFloat(formatParts[0], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid duration: %v", err)
	}
	bitrate := 0
	if len(formatParts) > 1 {
		if b, err := strconv.Atoi(strings.TrimSpace(formatParts[1])); err == nil {
			bitrate = b / 1000
		}
	}

	return &ProbeResult{
		Duration: duration,
		Width:    width,
		Height:   height,
		Bitrate:  bitrate,
		FPS:      fps,
		Codec:    codec,
	}, nil
}

// parseFrameRate converts ffprobe's rational frame rate ("30000/1001") to
// frames per second.
func parseFrameRate(raw string) float64 {
	parts := strings.Split(raw, "/")
	if len(parts) != 2 {
		return 0
	}
	num, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0
	}
	den, err := strconv.ParseFloat(parts[1], 64)
	if err != nil || den == 0 {
		return 0
	}
	return num / den
}
