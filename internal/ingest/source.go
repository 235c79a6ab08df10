package ingest

import (
	"context"
	"io"
)

// File describes one remote sales export.
type File struct {
	Key          string `json:"key"`
	Name         string `json:"name"`
	MimeType     string `json:"mime_type,omitempty"`
	Size         int64  `json:"size,omitempty"`
	ModifiedTime string `json:"modified_time,omitempty"`
}

// Source is a remote location holding sales exports. Location is a folder for
// Drive and a key prefix for object storage.
type Source interface {
	Name() string
	List(ctx context.Context, location string) ([]File, error)
	Fetch(ctx context.Context, key string, w io.Writer) (File, error)
}
