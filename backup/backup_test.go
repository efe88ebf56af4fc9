package backup

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert"
	"github.com/minio/minio-go/v7"

	"github.com/kjk/records/u"
)

func TestConfigValidate(t *testing.T) {
	var nilConfig *Config
	assert.Error(t, nilConfig.Validate())

	c := &Config{}
	err := c.Validate()
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "access key, secret key, bucket, endpoint"), "err: %s", err)

	c = &Config{
		Access:   "access",
		Secret:   "secret",
		Bucket:   "records",
		Endpoint: "s3.example.com",
	}
	assert.NoError(t, c.Validate())

	c.Endpoint = "https://s3.example.com"
	assert.Error(t, c.Validate())
}

func TestNewInvalidConfig(t *testing.T) {
	_, err := New(context.Background(), &Config{Bucket: "records"})
	assert.Error(t, err)
}

func TestRemotePath(t *testing.T) {
	tests := []struct {
		prefix string
		name   string
		exp    string
	}{
		{"", "car.json.br", "car.json.br"},
		{"", "/car.json.br", "car.json.br"},
		{"records", "car.json.br", "records/car.json.br"},
		{"/records/", "car.json.br", "records/car.json.br"},
		{"records", "records/car.json.br", "records/car.json.br"},
		{"records", "", "records"},
	}
	for _, test := range tests {
		assert.Equal(t, test.exp, remotePath(test.prefix, test.name), "prefix: %s, name: %s", test.prefix, test.name)
	}
}

func TestName(t *testing.T) {
	tm := time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "car-20240102-150405.json.br", Name("car", tm))
}

func TestBrotliCompressFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cars.json")
	d := bytes.Repeat([]byte(`{"make": "Toyota", "model": "Corolla", "year": 2020}`), 100)
	assert.NoError(t, os.WriteFile(path, d, 0644))

	compressed, err := brotliCompressFile(path)
	assert.NoError(t, err)
	assert.True(t, len(compressed) < len(d))
	r, err := u.NewDecompressReader(bytes.NewReader(compressed), "cars.json.br")
	assert.NoError(t, err)
	got, err := io.ReadAll(r)
	assert.NoError(t, err)
	assert.Equal(t, d, got)

	_, err = brotliCompressFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestWriteFileAtomically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cars.json")
	err := writeFileAtomically(path, strings.NewReader("[]\n"))
	assert.NoError(t, err)
	d, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, "[]\n", string(d))
}

func TestContentType(t *testing.T) {
	assert.True(t, strings.HasPrefix(contentType("car.json.br"), "application/json"))
	assert.True(t, isBrotli("a/car.json.br"))
	assert.False(t, isBrotli("car.json"))
}

func TestSortNewestFirst(t *testing.T) {
	now := time.Now()
	objects := []minio.ObjectInfo{
		{Key: "old", LastModified: now.Add(-time.Hour)},
		{Key: "new", LastModified: now},
		{Key: "mid", LastModified: now.Add(-time.Minute)},
	}
	sortNewestFirst(objects)
	var keys []string
	for _, o := range objects {
		keys = append(keys, o.Key)
	}
	assert.Equal(t, []string{"new", "mid", "old"}, keys)
}
