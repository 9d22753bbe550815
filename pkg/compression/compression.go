// Package compression wraps file streams with transparent compression so
// pipelines can read and write compressed inputs and outputs.
//
// # Algorithm Selection
//
// The algorithm is normally inferred from the file extension:
//   - .gz  gzip
//   - .zst zstd
//   - .lz4 lz4 (frame format)
//   - .sz  s2, which reads snappy-framed data too
//
// Anything else is read and written as is.
//
// # Basic Usage
//
//	w, err := compression.NewWriter(file, compression.FromPath("data.csv.gz"))
//	if err != nil {
//	    return err
//	}
//	defer w.Close() // flushes the compressed trailer; does not close file
package compression

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Algorithm represents a compression algorithm
type Algorithm string

const (
	// None represents no compression
	None Algorithm = "none"
	// Gzip represents gzip compression
	Gzip Algorithm = "gzip"
	// Zstd represents zstandard compression
	Zstd Algorithm = "zstd"
	// LZ4 represents lz4 compression
	LZ4 Algorithm = "lz4"
	// S2 represents s2 compression (Snappy compatible)
	S2 Algorithm = "s2"
)

var extensions = map[string]Algorithm{
	".gz":  Gzip,
	".zst": Zstd,
	".lz4": LZ4,
	".sz":  S2,
}

// FromPath infers the algorithm from a file name
func FromPath(path string) Algorithm {
	if alg, ok := extensions[strings.ToLower(filepath.Ext(path))]; ok {
		return alg
	}
	return None
}

// Resolve returns the configured algorithm, falling back to the one implied
// by path when configured is empty or "auto".
func Resolve(configured, path string) (Algorithm, error) {
	switch strings.ToLower(configured) {
	case "", "auto":
		return FromPath(path), nil
	}
	alg := Algorithm(strings.ToLower(configured))
	switch alg {
	case None, Gzip, Zstd, LZ4, S2:
		return alg, nil
	default:
		return None, fmt.Errorf("unsupported compression algorithm: %s", configured)
	}
}

// NewReader wraps r with a decompressor. Closing the returned reader
// releases decoder resources but never closes r.
func NewReader(r io.Reader, alg Algorithm) (io.ReadCloser, error) {
	switch alg {
	case None, "":
		return io.NopCloser(r), nil
	case Gzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return zr, nil
	case Zstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		return zr.IOReadCloser(), nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case S2:
		return io.NopCloser(s2.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %s", alg)
	}
}

// NewWriter wraps w with a compressor. Close must be called to flush the
// stream; it does not close w.
func NewWriter(w io.Writer, alg Algorithm) (io.WriteCloser, error) {
	switch alg {
	case None, "":
		return nopWriteCloser{w}, nil
	case Gzip:
		// header ModTime stays zero so identical input gives identical bytes
		zw, err := gzip.NewWriterLevel(w, gzip.DefaultCompression)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip writer: %w", err)
		}
		return zw, nil
	case Zstd:
		zw, err := zstd.NewWriter(w, zstd.WithEncoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd writer: %w", err)
		}
		return zw, nil
	case LZ4:
		return lz4.NewWriter(w), nil
	case S2:
		return s2.NewWriter(w, s2.WriterConcurrency(1)), nil
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %s", alg)
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
