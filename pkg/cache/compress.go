package cache

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/pierrec/lz4/v4"
)

// Payload framing: one tag byte, then either the raw bytes or a
// little-endian uint32 original length followed by an LZ4 block.
const (
	tagRaw        byte   = 0
	tagLZ4        byte   = 1
	lengthBytes          = 4
	maxPayloadLen uint64 = math.MaxUint32
)

// ErrCorruptPayload is returned for payloads that cannot be decoded.
var ErrCorruptPayload = errors.New("corrupt cache payload")

// Compress frames data, LZ4-compressing it when that saves space.
func Compress(data []byte) []byte {
	if len(data) > 0 && uint64(len(data)) <= maxPayloadLen {
		block := make([]byte, 1+lengthBytes+lz4.CompressBlockBound(len(data)))

		written, err := lz4.CompressBlock(data, block[1+lengthBytes:], nil)
		if err == nil && written > 0 && written+lengthBytes < len(data) {
			block[0] = tagLZ4
			binary.LittleEndian.PutUint32(block[1:], uint32(len(data))) //nolint:gosec // checked against maxPayloadLen.

			return block[:1+lengthBytes+written]
		}
	}

	out := make([]byte, 1+len(data))
	out[0] = tagRaw
	copy(out[1:], data)

	return out
}

// Decompress reverses Compress.
func Decompress(payload []byte) ([]byte, error) {
	if len(payload) == 0 {
		return nil, ErrCorruptPayload
	}

	switch payload[0] {
	case tagRaw:
		return payload[1:], nil
	case tagLZ4:
		if len(payload) < 1+lengthBytes {
			return nil, ErrCorruptPayload
		}

		size := binary.LittleEndian.Uint32(payload[1:])
		out := make([]byte, size)

		n, err := lz4.UncompressBlock(payload[1+lengthBytes:], out)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptPayload, err)
		}

		if n != int(size) {
			return nil, fmt.Errorf("%w: got %d of %d bytes", ErrCorruptPayload, n, size)
		}

		return out, nil
	default:
		return nil, fmt.Errorf("%w: tag %d", ErrCorruptPayload, payload[0])
	}
}
