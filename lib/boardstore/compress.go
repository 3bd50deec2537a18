// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

package boardstore

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// zstdEncoder and zstdDecoder are reused across calls to avoid
// repeated initialization overhead. Both are safe for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
	)
	if err != nil {
		panic("board store: zstd encoder initialization failed: " + err.Error())
	}

	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("board store: zstd decoder initialization failed: " + err.Error())
	}
}

// compressSnapshot compresses snapshot bytes with the given
// algorithm. LZ4 may return output no smaller than the input for
// incompressible data; Backup falls back to CompressionNone in that
// case.
func compressSnapshot(data []byte, tag CompressionTag) ([]byte, error) {
	switch tag {
	case CompressionNone:
		return data, nil

	case CompressionLZ4:
		bound := lz4.CompressBlockBound(len(data))
		destination := make([]byte, bound)
		written, err := lz4.CompressBlock(data, destination, nil)
		if err != nil {
			return nil, fmt.Errorf("board store: lz4 compress: %w", err)
		}
		if written == 0 {
			// Incompressible; the caller stores raw.
			return data, nil
		}
		return destination[:written], nil

	case CompressionZstd:
		return zstdEncoder.EncodeAll(data, nil), nil

	default:
		return nil, fmt.Errorf("board store: unsupported compression tag: %d", tag)
	}
}

// decompressSnapshot reverses compressSnapshot. The uncompressed
// size comes from the container header and must match exactly.
func decompressSnapshot(compressed []byte, tag CompressionTag, uncompressedSize int) ([]byte, error) {
	switch tag {
	case CompressionNone:
		if len(compressed) != uncompressedSize {
			return nil, fmt.Errorf("board store: raw payload is %d bytes, header says %d: %w",
				len(compressed), uncompressedSize, ErrBadContainer)
		}
		return compressed, nil

	case CompressionLZ4:
		destination := make([]byte, uncompressedSize)
		read, err := lz4.UncompressBlock(compressed, destination)
		if err != nil {
			return nil, fmt.Errorf("board store: lz4 decompress: %w", err)
		}
		if read != uncompressedSize {
			return nil, fmt.Errorf("board store: lz4 produced %d bytes, header says %d: %w",
				read, uncompressedSize, ErrBadContainer)
		}
		return destination, nil

	case CompressionZstd:
		result, err := zstdDecoder.DecodeAll(compressed, make([]byte, 0, uncompressedSize))
		if err != nil {
			return nil, fmt.Errorf("board store: zstd decompress: %w", err)
		}
		if len(result) != uncompressedSize {
			return nil, fmt.Errorf("board store: zstd produced %d bytes, header says %d: %w",
				len(result), uncompressedSize, ErrBadContainer)
		}
		return result, nil

	default:
		return nil, fmt.Errorf("board store: unsupported compression tag %d: %w", tag, ErrBadContainer)
	}
}
