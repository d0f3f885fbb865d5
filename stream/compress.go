package stream

import (
	"bytes"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies the algorithm applied to an encoded document.
// The values are stored in envelope headers and must not change.
type Compression uint8

const (
	CompressionNone   Compression = 0
	CompressionZstd   Compression = 1
	CompressionLZ4    Compression = 2
	CompressionBrotli Compression = 3
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	case CompressionBrotli:
		return "brotli"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCompression parses a compression name.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "none", "":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "lz4":
		return CompressionLZ4, nil
	case "brotli":
		return CompressionBrotli, nil
	default:
		return 0, fmt.Errorf("%w: compression %q", ErrUnknownFormat, name)
	}
}

// zstd encoders and decoders are safe for concurrent use and expensive to build.
var (
	zstdEncoder *zstd.Encoder //nolint:gochecknoglobals
	zstdDecoder *zstd.Decoder //nolint:gochecknoglobals
)

func init() { //nolint:gochecknoinits
	var err error

	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("stream: zstd encoder initialization failed: " + err.Error())
	}

	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("stream: zstd decoder initialization failed: " + err.Error())
	}
}

// Compress compresses data with the given algorithm. CompressionNone returns
// data unchanged.
func Compress(c Compression, data []byte) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionZstd:
		return zstdEncoder.EncodeAll(data, nil), nil
	case CompressionLZ4:
		var buf bytes.Buffer

		zw := lz4.NewWriter(&buf)

		return finish(&buf, zw, data, "lz4")
	case CompressionBrotli:
		var buf bytes.Buffer

		bw := brotli.NewWriterLevel(&buf, brotli.DefaultCompression)

		return finish(&buf, bw, data, "brotli")
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, c)
	}
}

func finish(buf *bytes.Buffer, w io.WriteCloser, data []byte, name string) ([]byte, error) {
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("%s compress: %w", name, err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%s compress: %w", name, err)
	}

	return buf.Bytes(), nil
}

// Decompress reverses Compress.
func Decompress(c Compression, data []byte) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionZstd:
		out, err := zstdDecoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}

		return out, nil
	case CompressionLZ4:
		out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}

		return out, nil
	case CompressionBrotli:
		out, err := io.ReadAll(brotli.NewReader(bytes.NewReader(data)))
		if err != nil {
			return nil, fmt.Errorf("brotli decompress: %w", err)
		}

		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, c)
	}
}
