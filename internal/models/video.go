package models

import (
	"time"

	"github.com/google/uuid"
)

type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "pending"
	StatusProcessing ProcessingStatus = "processing"
	StatusCompleted  ProcessingStatus = "completed"
	StatusFailed     ProcessingStatus = "failed"
)

// VideoFile is one ingested source file tied to a catalog movie.
// The row is created on upload with status pending and is mutated only by
// the transcode pipeline and the explicit retry operation.
type VideoFile struct {
	VideoID          uuid.UUID        `json:"video_id" db:"video_id"`
	MovieID          int64            `json:"movie_id" db:"movie_id" validate:"required"`
	FileName         string           `json:"file_name" db:"file_name" validate:"required,lte=255"`
	OriginalFileName string           `json:"original_file_name" db:"original_file_name" validate:"required,lte=255"`
	FilePath         string           `json:"-" db:"file_path"`
	FileSize         int64            `json:"file_size" db:"file_size"`
	MimeType         string           `json:"mime_type" db:"mime_type"`
	Duration         float64          `json:"duration" db:"duration_seconds"`
	Width            int              `json:"width" db:"resolution_width"`
	Height           int              `json:"height" db:"resolution_height"`
	Bitrate          int              `json:"bitrate" db:"bitrate"`
	FPS              float64          `json:"fps" db:"fps"`
	Codec            string           `json:"codec" db:"codec"`
	Quality          string           `json:"quality" db:"quality"`
	ThumbnailPath    string           `json:"-" db:"thumbnail_path"`
	PreviewPath      string           `json:"-" db:"preview_path"`
	ProcessingStatus ProcessingStatus `json:"processing_status" db:"processing_status"`
	ProcessingProg   float64          `json:"processing_progress" db:"processing_progress"`
	ProcessingError  string           `json:"processing_error,omitempty" db:"processing_error"`
	IsPrimary        bool             `json:"is_primary" db:"is_primary"`
	IsProcessed      bool             `json:"is_processed" db:"is_processed"`
	IsAvailable      bool             `json:"is_available" db:"is_available"`
	UploadedBy       string           `json:"uploaded_by" db:"uploaded_by"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at"`
}

// VideoQuality is a single completed rendition of a VideoFile. The quality
// label is unique per source file.
type VideoQuality struct {
	QualityID uuid.UUID `json:"quality_id" db:"quality_id"`
	VideoID   uuid.UUID `json:"video_id" db:"video_id"`
	Quality   string    `json:"quality" db:"quality"`
	Width     int       `json:"width" db:"resolution_width"`
	Height    int       `json:"height" db:"resolution_height"`
	Bitrate   int       `json:"bitrate" db:"bitrate"`
	FilePath  string    `json:"-" db:"file_path"`
	FileSize  int64     `json:"file_size" db:"file_size"`
	IsReady   bool      `json:"is_ready" db:"is_ready"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type VideoList struct {
	Videos     []*VideoFile `json:"videos"`
	TotalCount int          `json:"total_count"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	HasMore    bool         `json:"has_more"`
}

// VideoUploadInput carries the validated multipart form fields of an upload.
type VideoUploadInput struct {
	MovieID   int64  `json:"movie_id" validate:"required"`
	FileName  string `json:"filename" validate:"required,lte=255"`
	FileSize  int64  `json:"file_size" validate:"required"`
	MimeType  string `json:"mime_type"`
	Quality   string `json:"quality"`
	IsPrimary bool   `json:"is_primary"`
}

type VideoUploadResponse struct {
	VideoID          uuid.UUID        `json:"video_id"`
	Message          string           `json:"message"`
	ProcessingStatus ProcessingStatus `json:"processing_status"`
}

type ProcessingStatusInfo struct {
	VideoID            uuid.UUID        `json:"video_id"`
	Status             ProcessingStatus `json:"status"`
	Progress           float64          `json:"progress"`
	ErrorMessage       string           `json:"error_message,omitempty"`
	AvailableQualities []string         `json:"available_qualities"`
	ThumbnailURL       string           `json:"thumbnail_url,omitempty"`
}
