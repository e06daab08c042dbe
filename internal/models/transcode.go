package models

import (
	"time"

	"github.com/google/uuid"
)

// TranscodeJob is the unit of work handed from the upload surface to the
// worker pool through the Redis queue.
type TranscodeJob struct {
	JobID      string    `json:"job_id"`
	VideoID    uuid.UUID `json:"video_id"`
	MovieID    int64     `json:"movie_id"`
	InputPath  string    `json:"input_path"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// VideoMetadata carries the probed source characteristics recorded once the
// worker has inspected the uploaded file.
type VideoMetadata struct {
	Duration float64 `json:"duration"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Bitrate  int     `json:"bitrate"`
	FPS      float64 `json:"fps"`
	Codec    string  `json:"codec"`
}

// ProgressSnapshot mirrors the live processing state kept in Redis so the
// status endpoint can answer without touching Postgres mid-run.
type ProgressSnapshot struct {
	Status   ProcessingStatus `json:"status"`
	Progress float64          `json:"progress"`
}
