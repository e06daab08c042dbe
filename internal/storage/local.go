package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

type localStore struct {
	root string
}

// NewLocalStore creates a filesystem-backed MediaStore rooted at root and
// ensures the standard media subdirectories exist.
func NewLocalStore(root string) (MediaStore, error) {
	for _, dir := range []string{uploadsDir, videosDir, thumbnailsDir} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return nil, errors.Wrap(err, "localStore.NewLocalStore")
		}
	}
	return &localStore{root: root}, nil
}

func (s *localStore) resolve(path string) (string, error) {
	clean := filepath.Clean(strings.TrimPrefix(path, "/"))
	if clean == "." || strings.HasPrefix(clean, "..") {
		return "", errors.Errorf("invalid storage path %q", path)
	}
	return filepath.Join(s.root, clean), nil
}

func (s *localStore) Put(ctx context.Context, path string, r io.Reader) (int64, error) {
	full, err := s.resolve(path)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return 0, errors.Wrap(err, "localStore.Put")
	}
	f, err := os.Create(full)
	if err != nil {
		return 0, errors.Wrap(err, "localStore.Put")
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(full)
		return 0, errors.Wrap(err, "localStore.Put")
	}
	return n, nil
}

func (s *localStore) Open(ctx context.Context, path string) (io.ReadSeekCloser, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "localStore.Open")
	}
	return f, nil
}

func (s *localStore) Delete(ctx context.Context, path string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return errors.Wrap(err, "localStore.Delete")
	}
	return nil
}

func (s *localStore) Exists(ctx context.Context, path string) (bool, error) {
	full, err := s.resolve(path)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(full); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrap(err, "localStore.Exists")
	}
	return true, nil
}

func (s *localStore) Size(ctx context.Context, path string) (int64, error) {
	full, err := s.resolve(path)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrNotFound
		}
		return 0, errors.Wrap(err, "localStore.Size")
	}
	return info.Size(), nil
}
