package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryObjects map[string]string

func (m memoryObjects) ListObjects(_ context.Context, prefix string) ([]ObjectInfo, error) {
	var out []ObjectInfo
	for key, body := range m {
		if strings.HasPrefix(key, prefix) {
			out = append(out, ObjectInfo{Key: key, Size: int64(len(body))})
		}
	}
	return out, nil
}

func (m memoryObjects) DownloadObject(_ context.Context, key string, w io.Writer) (ObjectInfo, error) {
	body, ok := m[key]
	if !ok {
		return ObjectInfo{}, errors.New("NoSuchKey")
	}
	_, err := io.WriteString(w, body)
	return ObjectInfo{Key: key, Size: int64(len(body)), ContentType: "text/csv"}, err
}

func (m memoryObjects) UploadObject(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	b, err := io.ReadAll(r)
	m[key] = string(b)
	return err
}

func TestSourceListAndFetch(t *testing.T) {
	store := memoryObjects{
		"exports/2024/jan.csv": "product_id,quantity,revenue\n",
		"exports/2024/":        "",
		"other/feb.csv":        "x",
	}
	src := NewSource(store)
	assert.Equal(t, "s3", src.Name())

	files, err := src.List(context.Background(), "/exports/")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "exports/2024/jan.csv", files[0].Key)
	assert.Equal(t, "jan.csv", files[0].Name)

	var buf bytes.Buffer
	file, err := src.Fetch(context.Background(), "exports/2024/jan.csv", &buf)
	require.NoError(t, err)
	assert.Equal(t, "jan.csv", file.Name)
	assert.Equal(t, "text/csv", file.MimeType)
	assert.Equal(t, "product_id,quantity,revenue\n", buf.String())

	_, err = src.Fetch(context.Background(), "missing.csv", &buf)
	assert.ErrorContains(t, err, "missing.csv")
}

func TestNormalizeEndpoint(t *testing.T) {
	host, secure := normalizeEndpoint("https://s3.example.com/", false)
	assert.Equal(t, "s3.example.com", host)
	assert.True(t, secure)

	host, secure = normalizeEndpoint("http://localhost:9000", true)
	assert.Equal(t, "localhost:9000", host)
	assert.False(t, secure)

	host, secure = normalizeEndpoint("minio:9000", true)
	assert.Equal(t, "minio:9000", host)
	assert.True(t, secure)
}

func TestNewS3ClientValidation(t *testing.T) {
	_, err := NewS3Client(S3Config{AccessKey: "a", SecretKey: "b", Bucket: "c"})
	assert.ErrorContains(t, err, "endpoint")

	_, err = NewS3Client(S3Config{Endpoint: "localhost:9000", Bucket: "c"})
	assert.ErrorContains(t, err, "credentials")

	_, err = NewS3Client(S3Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"})
	assert.ErrorContains(t, err, "bucket")

	client, err := NewS3Client(S3Config{Endpoint: "http://localhost:9000", AccessKey: "a", SecretKey: "b", Bucket: "sales"})
	require.NoError(t, err)
	assert.Equal(t, "sales", client.bucket)
}
