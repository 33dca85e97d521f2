// Package compression provides unified compression/decompression utilities
// for archived codec artifacts.
package compression

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// Codec names accepted by New.
const (
	NameNone = "none"
	NameGzip = "gzip"
	NameZstd = "zstd"
)

// Compressor provides a unified interface for compression operations.
type Compressor interface {
	// Compress compresses the input data.
	Compress(data []byte) ([]byte, error)
	// Decompress decompresses the input data.
	Decompress(data []byte) ([]byte, error)
	// Name returns the compressor name.
	Name() string
	// Ext returns the file extension appended to archived artifacts.
	Ext() string
}

// New returns the compressor for the given name. An empty name means none.
func New(name string) (Compressor, error) {
	switch name {
	case "", NameNone:
		return noneCompressor{}, nil
	case NameGzip:
		return &GzipCompressor{level: gzip.DefaultCompression}, nil
	case NameZstd:
		return &ZstdCompressor{level: zstd.SpeedDefault}, nil
	default:
		return nil, fmt.Errorf("unknown compressor: %s", name)
	}
}

// noneCompressor passes data through untouched.
type noneCompressor struct{}

func (noneCompressor) Compress(data []byte) ([]byte, error)   { return data, nil }
func (noneCompressor) Decompress(data []byte) ([]byte, error) { return data, nil }
func (noneCompressor) Name() string                           { return NameNone }
func (noneCompressor) Ext() string                            { return "" }

// GzipCompressor implements Compressor using gzip.
type GzipCompressor struct {
	level int
}

// NewGzipCompressor creates a gzip compressor with the given level.
func NewGzipCompressor(level int) *GzipCompressor {
	if level < gzip.HuffmanOnly || level > gzip.BestCompression {
		level = gzip.DefaultCompression
	}
	return &GzipCompressor{level: level}
}

// Compress compresses the input data.
func (c *GzipCompressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, c.level)
	if err != nil {
		return nil, fmt.Errorf("gzip writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("gzip write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("gzip close: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress decompresses the input data.
func (c *GzipCompressor) Decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gzip reader: %w", err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("gzip read: %w", err)
	}
	return out, nil
}

// Name returns the compressor name.
func (c *GzipCompressor) Name() string { return NameGzip }

// Ext returns the archived file extension.
func (c *GzipCompressor) Ext() string { return ".gz" }

// ZstdCompressor implements Compressor using zstd.
type ZstdCompressor struct {
	level zstd.EncoderLevel
}

// NewZstdCompressor creates a zstd compressor with the given level.
func NewZstdCompressor(level zstd.EncoderLevel) *ZstdCompressor {
	return &ZstdCompressor{level: level}
}

// Compress compresses the input data.
func (c *ZstdCompressor) Compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(c.level))
	if err != nil {
		return nil, fmt.Errorf("zstd writer: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

// Decompress decompresses the input data.
func (c *ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()
	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decode: %w", err)
	}
	return out, nil
}

// Name returns the compressor name.
func (c *ZstdCompressor) Name() string { return NameZstd }

// Ext returns the archived file extension.
func (c *ZstdCompressor) Ext() string { return ".zst" }
