package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("storage: object not found")

// MediaStore is path-addressable media file storage. Paths are relative to
// the store root; a path is only ever written by the single pipeline run
// that owns it.
type MediaStore interface {
	Put(ctx context.Context, path string, r io.Reader) (int64, error)
	Open(ctx context.Context, path string) (io.ReadSeekCloser, error)
	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)
	Size(ctx context.Context, path string) (int64, error)
}

const (
	uploadsDir    = "uploads"
	videosDir     = "videos"
	thumbnailsDir = "thumbnails"
)

// UploadPath names a raw uploaded source file.
func UploadPath(videoID uuid.UUID, ext string) string {
	return fmt.Sprintf("%s/%s.%s", uploadsDir, videoID, ext)
}

// RenditionPath names a rendition deterministically from the source video
// identifier and quality label, so delivery can resolve a requested quality
// without a registry lookup.
func RenditionPath(videoID uuid.UUID, quality string) string {
	return fmt.Sprintf("%s/video_%s_%s.mp4", videosDir, videoID, quality)
}

func ThumbnailPath(videoID uuid.UUID) string {
	return fmt.Sprintf("%s/video_%s_thumb.png", thumbnailsDir, videoID)
}

func PreviewPath(videoID uuid.UUID) string {
	return fmt.Sprintf("%s/video_%s_preview.gif", thumbnailsDir, videoID)
}
