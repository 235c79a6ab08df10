package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config encapsulates the connection info for S3-compatible storage.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// S3Client implements ObjectStorage on top of minio-go.
type S3Client struct {
	client *minio.Client
	bucket string
}

func NewS3Client(cfg S3Config) (*S3Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint must be provided")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("s3 credentials must be provided")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket must be provided")
	}

	endpoint, secure := normalizeEndpoint(cfg.Endpoint, cfg.UseSSL)
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client: %w", err)
	}

	return &S3Client{client: client, bucket: cfg.Bucket}, nil
}

// normalizeEndpoint strips an explicit scheme, which then decides TLS.
func normalizeEndpoint(endpoint string, useSSL bool) (string, bool) {
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		return strings.TrimSuffix(strings.TrimPrefix(endpoint, "https://"), "/"), true
	case strings.HasPrefix(endpoint, "http://"):
		return strings.TrimSuffix(strings.TrimPrefix(endpoint, "http://"), "/"), false
	default:
		return strings.TrimSuffix(endpoint, "/"), useSSL
	}
}

// ListObjects lists all objects for a given prefix.
func (c *S3Client) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	results := make([]ObjectInfo, 0)
	for object := range c.client.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if object.Err != nil {
			return nil, fmt.Errorf("s3 list failed: %w", object.Err)
		}
		results = append(results, fromMinio(object))
	}
	return results, nil
}

// DownloadObject streams an object into w.
func (c *S3Client) DownloadObject(ctx context.Context, key string, w io.Writer) (ObjectInfo, error) {
	object, err := c.client.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return ObjectInfo{}, err
	}
	defer object.Close()

	stat, err := object.Stat()
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("s3 stat %s failed: %w", key, err)
	}
	if _, err := io.Copy(w, object); err != nil {
		return ObjectInfo{}, fmt.Errorf("s3 read %s failed: %w", key, err)
	}
	return fromMinio(stat), nil
}

func (c *S3Client) UploadObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := c.client.PutObject(ctx, c.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("s3 upload %s failed: %w", key, err)
	}
	return nil
}

func fromMinio(o minio.ObjectInfo) ObjectInfo {
	info := ObjectInfo{Key: o.Key, Size: o.Size, ContentType: o.ContentType}
	if !o.LastModified.IsZero() {
		info.LastModified = o.LastModified.UTC().Format(time.RFC3339)
	}
	return info
}

var _ ObjectStorage = (*S3Client)(nil)
