package models

import (
	"time"

	"github.com/google/uuid"
)

const completionThreshold = 90.0

// WatchSession is one active or ended playback instance. At most one active
// session exists per (user, movie) pair.
type WatchSession struct {
	SessionID     uuid.UUID `json:"session_id" db:"session_id"`
	UserEmail     string    `json:"user_email" db:"user_email"`
	MovieID       int64     `json:"movie_id" db:"movie_id"`
	VideoID       uuid.UUID `json:"video_id" db:"video_file_id"`
	CurrentTime   float64   `json:"current_time" db:"current_time"`
	Duration      float64   `json:"duration" db:"duration"`
	ProgressPct   float64   `json:"progress_percentage" db:"progress_percentage"`
	Quality       string    `json:"quality" db:"quality"`
	Volume        float64   `json:"volume" db:"volume"`
	PlaybackSpeed float64   `json:"playback_speed" db:"playback_speed"`
	IsActive      bool      `json:"is_active" db:"is_active"`
	IsCompleted   bool      `json:"is_completed" db:"is_completed"`
	IsPaused      bool      `json:"is_paused" db:"is_paused"`
	UserAgent     string    `json:"-" db:"user_agent"`
	IPAddress     string    `json:"-" db:"ip_address"`
	DeviceType    string    `json:"device_type" db:"device_type"`
	StartedAt     time.Time `json:"started_at" db:"started_at"`
	LastUpdated   time.Time `json:"last_updated" db:"last_updated"`
	CompletedAt   *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// RecalcProgress recomputes the progress percentage from the current
// position, clamped into [0, 100], and evaluates the completion latch.
// Once a session crosses the threshold it stays completed even if the
// position later moves backward.
func (s *WatchSession) RecalcProgress() {
	if s.Duration > 0 {
		pct := s.CurrentTime / s.Duration * 100
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
		s.ProgressPct = pct
	}
	if s.ProgressPct >= completionThreshold && !s.IsCompleted {
		s.IsCompleted = true
		now := time.Now()
		s.CompletedAt = &now
	}
}

// WatchHistory is the durable per-(user, movie) rollup. Completion
// percentage is monotonically non-decreasing; the watch count increments
// only when a session first transitions into completed.
type WatchHistory struct {
	HistoryID     uuid.UUID `json:"history_id" db:"history_id"`
	UserEmail     string    `json:"user_email" db:"user_email"`
	MovieID       int64     `json:"movie_id" db:"movie_id"`
	TotalTime     float64   `json:"total_watch_time" db:"total_watch_time"`
	CompletionPct float64   `json:"completion_percentage" db:"completion_percentage"`
	WatchCount    int       `json:"watch_count" db:"watch_count"`
	LastPosition  float64   `json:"last_position" db:"last_position"`
	LastQuality   string    `json:"last_quality" db:"last_quality"`
	UserRating    float64   `json:"user_rating,omitempty" db:"user_rating"`
	FirstWatched  time.Time `json:"first_watched" db:"first_watched"`
	LastWatched   time.Time `json:"last_watched" db:"last_watched"`
}

// StreamingStats is the durable per-movie rollup, updated once per
// session-end event.
type StreamingStats struct {
	StatsID         uuid.UUID `json:"stats_id" db:"stats_id"`
	MovieID         int64     `json:"movie_id" db:"movie_id"`
	TotalViews      int64     `json:"total_views" db:"total_views"`
	UniqueViewers   int64     `json:"unique_viewers" db:"unique_viewers"`
	CompletedViews  int64     `json:"completed_views" db:"completed_views"`
	TotalWatchTime  float64   `json:"total_watch_time" db:"total_watch_time"`
	AvgCompletion   float64   `json:"average_completion_rate" db:"average_completion_rate"`
	AvgSessionTime  float64   `json:"average_session_duration" db:"average_session_duration"`
	PopularQuality  string    `json:"most_popular_quality" db:"most_popular_quality"`
	AverageRating   float64   `json:"average_rating" db:"average_rating"`
	TotalRatings    int64     `json:"total_ratings" db:"total_ratings"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

type WatchSessionCreate struct {
	MovieID       int64     `json:"movie_id" validate:"required"`
	VideoID       uuid.UUID `json:"video_id" validate:"required"`
	CurrentTime   float64   `json:"current_time"`
	Quality       string    `json:"quality"`
	Volume        float64   `json:"volume"`
	PlaybackSpeed float64   `json:"playback_speed"`
}

// WatchSessionUpdate applies partial field changes; nil means unchanged.
type WatchSessionUpdate struct {
	CurrentTime   *float64 `json:"current_time"`
	Quality       *string  `json:"quality"`
	Volume        *float64 `json:"volume"`
	PlaybackSpeed *float64 `json:"playback_speed"`
	IsPaused      *bool    `json:"is_paused"`
}

type StreamingInfo struct {
	VideoID            uuid.UUID         `json:"video_id"`
	MovieID            int64             `json:"movie_id"`
	StreamURLs         map[string]string `json:"stream_urls"`
	ThumbnailURL       string            `json:"thumbnail_url,omitempty"`
	Duration           float64           `json:"duration"`
	CurrentPosition    float64           `json:"current_position"`
	AvailableQualities []string          `json:"available_qualities"`
	RecommendedQuality string            `json:"recommended_quality"`
}

type UserWatchStats struct {
	TotalMoviesWatched int             `json:"total_movies_watched"`
	TotalWatchTime     float64         `json:"total_watch_time"`
	AvgCompletionRate  float64         `json:"average_completion_rate"`
	WatchHistory       []*WatchHistory `json:"watch_history"`
}

type MovieStreamingStats struct {
	MovieID           int64   `json:"movie_id"`
	TotalViews        int64   `json:"total_views"`
	UniqueViewers     int64   `json:"unique_viewers"`
	CompletionRate    float64 `json:"completion_rate"`
	AverageRating     float64 `json:"average_rating,omitempty"`
	TotalHoursWatched float64 `json:"total_hours_watched"`
}
