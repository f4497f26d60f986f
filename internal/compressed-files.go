package internal

import (
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// GzExt is the filename extension for gzip-compressed files.
const GzExt = ".gz"

// ZstExt is the filename extension for zstandard-compressed files.
const ZstExt = ".zst"

type wrappedReader struct {
	io.Reader
	closers []func() error
}

func (r *wrappedReader) Close() (err error) {
	for _, closer := range r.closers {
		if nerr := closer(); err == nil {
			err = nerr
		}
	}
	return err
}

type wrappedWriter struct {
	io.Writer
	closers []func() error
}

func (w *wrappedWriter) Close() (err error) {
	for _, closer := range w.closers {
		if nerr := closer(); err == nil {
			err = nerr
		}
	}
	return err
}

// OpenCompressed opens a file for reading, transparently decompressing
// its contents when the filename ends in .gz or .zst.
func OpenCompressed(filename string) (io.ReadCloser, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	switch {
	case strings.HasSuffix(filename, GzExt):
		gz, err := gzip.NewReader(file)
		if err != nil {
			_ = file.Close()
			return nil, err
		}
		return &wrappedReader{Reader: gz, closers: []func() error{gz.Close, file.Close}}, nil
	case strings.HasSuffix(filename, ZstExt):
		zst, err := zstd.NewReader(file)
		if err != nil {
			_ = file.Close()
			return nil, err
		}
		return &wrappedReader{Reader: zst, closers: []func() error{
			func() error { zst.Close(); return nil },
			file.Close,
		}}, nil
	}
	return file, nil
}

// CreateCompressed creates a file for writing, compressing its contents
// when the filename ends in .gz or .zst.
func CreateCompressed(filename string) (io.WriteCloser, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, err
	}
	switch {
	case strings.HasSuffix(filename, GzExt):
		gz := gzip.NewWriter(file)
		return &wrappedWriter{Writer: gz, closers: []func() error{gz.Close, file.Close}}, nil
	case strings.HasSuffix(filename, ZstExt):
		zst, err := zstd.NewWriter(file)
		if err != nil {
			_ = file.Close()
			return nil, err
		}
		return &wrappedWriter{Writer: zst, closers: []func() error{zst.Close, file.Close}}, nil
	}
	return file, nil
}
