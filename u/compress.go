package u

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

// compression extensions we recognize, lower case
const (
	ExtGzip   = ".gz"
	ExtBrotli = ".br"
	ExtZstd   = ".zst"
)

// CompressionExt returns compression extension of path or "" if
// the file is not compressed. ".zstd" is accepted as ".zst"
func CompressionExt(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ExtGzip, ExtBrotli, ExtZstd:
		return ext
	case ".zstd":
		return ExtZstd
	}
	return ""
}

// TrimCompressionExt returns path without compression extension
// i.e. "cars.json.br" => "cars.json"
func TrimCompressionExt(path string) string {
	if CompressionExt(path) == "" {
		return path
	}
	return strings.TrimSuffix(path, filepath.Ext(path))
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error {
	return nil
}

// NewCompressWriter wraps w in a compressor picked by extension of path.
// Close() flushes the compressor but doesn't close w.
func NewCompressWriter(w io.Writer, path string) (io.WriteCloser, error) {
	switch CompressionExt(path) {
	case ExtGzip:
		return gzip.NewWriterLevel(w, gzip.BestCompression)
	case ExtBrotli:
		return brotli.NewWriterLevel(w, brotli.DefaultCompression), nil
	case ExtZstd:
		return zstdNewWriter(w)
	}
	return nopWriteCloser{w}, nil
}

// readerWithClose pairs a decompressing reader with its cleanup
type readerWithClose struct {
	io.Reader
	close func() error
}

func (r *readerWithClose) Close() error {
	if r.close == nil {
		return nil
	}
	return r.close()
}

// NewDecompressReader wraps r in a decompressor picked by extension of path.
// Close() releases the decompressor but doesn't close r.
func NewDecompressReader(r io.Reader, path string) (io.ReadCloser, error) {
	switch CompressionExt(path) {
	case ExtGzip:
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		return &readerWithClose{Reader: gr, close: gr.Close}, nil
	case ExtBrotli:
		return &readerWithClose{Reader: brotli.NewReader(r)}, nil
	case ExtZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return &readerWithClose{Reader: zr, close: func() error {
			zr.Close()
			return nil
		}}, nil
	}
	return io.NopCloser(r), nil
}

// implement io.ReadCloser over os.File wrapped with decompressor.
type readerWrappedFile struct {
	f *os.File
	r io.ReadCloser
}

func (rc *readerWrappedFile) Close() error {
	err := rc.r.Close()
	return getErr(err, rc.f.Close())
}

func (rc *readerWrappedFile) Read(p []byte) (int, error) {
	return rc.r.Read(p)
}

// OpenFileMaybeCompressed opens a file that might be compressed with gzip,
// brotli or zstd, based on file extension
func OpenFileMaybeCompressed(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := NewDecompressReader(f, path)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &readerWrappedFile{f: f, r: r}, nil
}

func getErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func BrCompressData(d []byte, level int) ([]byte, error) {
	var dst bytes.Buffer
	w := brotli.NewWriterLevel(&dst, level)
	_, err := w.Write(d)
	err2 := w.Close()
	if err = getErr(err, err2); err != nil {
		return nil, err
	}
	return dst.Bytes(), nil
}

func BrCompressDataBest(d []byte) ([]byte, error) {
	return BrCompressData(d, brotli.BestCompression)
}

func zstdNewWriter(dst io.Writer) (*zstd.Encoder, error) {
	// zstd.SpeedBestCompression is much slower and not much better
	return zstd.NewWriter(dst, zstd.WithEncoderLevel(zstd.SpeedDefault))
}
