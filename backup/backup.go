// Package backup copies exported record files to and from an
// s3-compatible bucket.
package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/kjk/records/atomicfile"
	"github.com/kjk/records/u"
)

type Config struct {
	Access   string
	Secret   string
	Bucket   string
	Endpoint string
	Region   string
	Secure   bool
	// remote paths are relative to Prefix, e.g. "records/"
	Prefix       string
	RequestTrace io.Writer
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("must provide config")
	}
	var missing []string
	if c.Access == "" {
		missing = append(missing, "access key")
	}
	if c.Secret == "" {
		missing = append(missing, "secret key")
	}
	if c.Bucket == "" {
		missing = append(missing, "bucket")
	}
	if c.Endpoint == "" {
		missing = append(missing, "endpoint")
	}
	if len(missing) > 0 {
		return fmt.Errorf("backup config is missing: %s", strings.Join(missing, ", "))
	}
	if strings.Contains(c.Endpoint, "://") {
		return fmt.Errorf("endpoint '%s' should be a host name without scheme", c.Endpoint)
	}
	return nil
}

type Client struct {
	Client *minio.Client
	Bucket string
	config *Config
}

// New creates a client and checks that the bucket exists
func New(ctx context.Context, config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	c := config
	mc, err := minio.New(c.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(c.Access, c.Secret, ""),
		Region: c.Region,
		Secure: c.Secure,
	})
	if err != nil {
		return nil, err
	}
	if c.RequestTrace != nil {
		mc.TraceOn(c.RequestTrace)
	}
	found, err := mc.BucketExists(ctx, c.Bucket)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("bucket '%s' doesn't exist", c.Bucket)
	}
	return &Client{
		Client: mc,
		Bucket: c.Bucket,
		config: c,
	}, nil
}

// RemotePath returns the object name for name, under the configured prefix
func (c *Client) RemotePath(name string) string {
	return remotePath(c.config.Prefix, name)
}

func remotePath(prefix string, name string) string {
	name = strings.TrimPrefix(name, "/")
	prefix = strings.Trim(prefix, "/")
	if prefix == "" || strings.HasPrefix(name, prefix+"/") {
		return name
	}
	return path.Join(prefix, name)
}

// Name returns a backup file name for a kind of records, e.g.
// "car-20240101-150405.json.br"
func Name(kind string, t time.Time) string {
	return fmt.Sprintf("%s-%s.json.br", kind, t.UTC().Format("20060102-150405"))
}

// Exists returns true if remote object exists
func (c *Client) Exists(ctx context.Context, remote string) bool {
	_, err := c.Client.StatObject(ctx, c.Bucket, c.RemotePath(remote), minio.StatObjectOptions{})
	return err == nil
}

func isBrotli(path string) bool {
	return u.CompressionExt(path) == u.ExtBrotli
}

func contentType(remote string) string {
	ext := filepath.Ext(u.TrimCompressionExt(remote))
	return mime.TypeByExtension(ext)
}

// Upload uploads local file as remote. If remote ends with .br and
// local is not already brotli-compressed, it's compressed before upload.
func (c *Client) Upload(ctx context.Context, remote string, local string) (minio.UploadInfo, error) {
	remote = c.RemotePath(remote)
	opts := minio.PutObjectOptions{
		ContentType: contentType(remote),
	}
	if !isBrotli(remote) || isBrotli(local) {
		return c.Client.FPutObject(ctx, c.Bucket, remote, local, opts)
	}
	// TODO: use io.Pipe() to do compression more efficiently
	d, err := brotliCompressFile(local)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	opts.ContentEncoding = "br"
	r := bytes.NewReader(d)
	return c.Client.PutObject(ctx, c.Bucket, remote, r, int64(len(d)), opts)
}

// Download writes remote object to local, atomically. If remote ends
// with .br and local doesn't, the content is decompressed.
func (c *Client) Download(ctx context.Context, local string, remote string) error {
	remote = c.RemotePath(remote)
	obj, err := c.Client.GetObject(ctx, c.Bucket, remote, minio.GetObjectOptions{})
	if err != nil {
		return err
	}
	defer obj.Close()

	// ensure there's a dir for destination file
	if err = os.MkdirAll(filepath.Dir(local), 0755); err != nil {
		return err
	}
	var r io.Reader = obj
	if isBrotli(remote) && !isBrotli(local) {
		r = brotli.NewReader(obj)
	}
	return writeFileAtomically(local, r)
}

func writeFileAtomically(path string, r io.Reader) error {
	f, err := atomicfile.New(path)
	if err != nil {
		return err
	}
	defer f.RemoveIfNotClosed()
	if _, err = io.Copy(f, r); err != nil {
		return err
	}
	return f.Close()
}

// List returns objects under prefix, newest first
func (c *Client) List(ctx context.Context, prefix string) ([]minio.ObjectInfo, error) {
	opts := minio.ListObjectsOptions{
		Prefix:    c.RemotePath(prefix),
		Recursive: true,
	}
	var res []minio.ObjectInfo
	for oi := range c.Client.ListObjects(ctx, c.Bucket, opts) {
		if oi.Err != nil {
			return nil, oi.Err
		}
		res = append(res, oi)
	}
	sortNewestFirst(res)
	return res, nil
}

func sortNewestFirst(objects []minio.ObjectInfo) {
	sort.SliceStable(objects, func(i, j int) bool {
		return objects[i].LastModified.After(objects[j].LastModified)
	})
}

// Remove deletes remote object
func (c *Client) Remove(ctx context.Context, remote string) error {
	return c.Client.RemoveObject(ctx, c.Bucket, c.RemotePath(remote), minio.RemoveObjectOptions{})
}

func brotliCompressFile(path string) ([]byte, error) {
	d, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return u.BrCompressDataBest(d)
}
