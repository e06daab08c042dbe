package storage

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
)

type s3Store struct {
	client *s3.Client
	bucket string
}

// NewS3Store creates an object-store-backed MediaStore. Open stages the
// object into a temporary file so callers get the same seekable handle the
// local backend provides.
func NewS3Store(client *s3.Client, bucket string) MediaStore {
	return &s3Store{client: client, bucket: bucket}
}

func (s *s3Store) Put(ctx context.Context, path string, r io.Reader) (int64, error) {
	tmp, err := os.CreateTemp("", "s3put_*")
	if err != nil {
		return 0, errors.Wrap(err, "s3Store.Put")
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	n, err := io.Copy(tmp, r)
	if err != nil {
		return 0, errors.Wrap(err, "s3Store.Put")
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return 0, errors.Wrap(err, "s3Store.Put")
	}

	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        &s.bucket,
		Key:           &path,
		Body:          tmp,
		ContentLength: &n,
	}); err != nil {
		return 0, errors.Wrap(err, "s3Store.Put")
	}
	return n, nil
}

func (s *s3Store) Open(ctx context.Context, path string) (io.ReadSeekCloser, error) {
	res, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &path,
	})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "s3Store.Open")
	}
	defer res.Body.Close()

	tmp, err := os.CreateTemp("", "s3get_*")
	if err != nil {
		return nil, errors.Wrap(err, "s3Store.Open")
	}
	if _, err := io.Copy(tmp, res.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, errors.Wrap(err, "s3Store.Open")
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, errors.Wrap(err, "s3Store.Open")
	}
	return &tempFile{File: tmp}, nil
}

func (s *s3Store) Delete(ctx context.Context, path string) error {
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    &path,
	}); err != nil {
		return errors.Wrap(err, "s3Store.Delete")
	}
	return nil
}

func (s *s3Store) Exists(ctx context.Context, path string) (bool, error) {
	if _, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: &s.bucket,
		Key:    &path,
	}); err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, errors.Wrap(err, "s3Store.Exists")
	}
	return true, nil
}

func (s *s3Store) Size(ctx context.Context, path string) (int64, error) {
	res, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: &s.bucket,
		Key:    &path,
	})
	if err != nil {
		if isNoSuchKey(err) {
			return 0, ErrNotFound
		}
		return 0, errors.Wrap(err, "s3Store.Size")
	}
	if res.ContentLength == nil {
		return 0, nil
	}
	return *res.ContentLength, nil
}

func isNoSuchKey(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "NoSuchKey") || strings.Contains(msg, "NotFound") || strings.Contains(msg, "404")
}

// tempFile removes its backing file once closed.
type tempFile struct {
	*os.File
}

func (t *tempFile) Close() error {
	err := t.File.Close()
	os.Remove(t.File.Name())
	return err
}
