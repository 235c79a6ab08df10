package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/andresuchdata/retailpulse/internal/ingest"
)

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified string
}

// ObjectStorage captures the S3-compatible operations used for sales exports.
type ObjectStorage interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	DownloadObject(ctx context.Context, key string, w io.Writer) (ObjectInfo, error)
	UploadObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
}

// Source exposes a bucket as an ingest source; locations are key prefixes.
type Source struct {
	store ObjectStorage
}

func NewSource(store ObjectStorage) *Source {
	return &Source{store: store}
}

func (s *Source) Name() string { return "s3" }

func (s *Source) List(ctx context.Context, prefix string) ([]ingest.File, error) {
	objects, err := s.store.ListObjects(ctx, strings.TrimPrefix(prefix, "/"))
	if err != nil {
		return nil, err
	}
	files := make([]ingest.File, 0, len(objects))
	for _, o := range objects {
		if strings.HasSuffix(o.Key, "/") {
			continue
		}
		files = append(files, toFile(o))
	}
	return files, nil
}

func (s *Source) Fetch(ctx context.Context, key string, w io.Writer) (ingest.File, error) {
	info, err := s.store.DownloadObject(ctx, key, w)
	if err != nil {
		return ingest.File{}, fmt.Errorf("download %s: %w", key, err)
	}
	if info.Key == "" {
		info.Key = key
	}
	return toFile(info), nil
}

func toFile(o ObjectInfo) ingest.File {
	return ingest.File{
		Key:          o.Key,
		Name:         path.Base(o.Key),
		MimeType:     o.ContentType,
		Size:         o.Size,
		ModifiedTime: o.LastModified,
	}
}
