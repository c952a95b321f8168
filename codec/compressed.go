package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression defines the compression algorithm of a Compressed codec.
type Compression uint8

const (
	// CompressionNone stores the inner encoding as is.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast).
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses ZSTD (better ratio).
	CompressionZSTD Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(c))
	}
}

// ErrCorruptFrame is returned when a compressed frame cannot be decoded.
var ErrCorruptFrame = errors.New("codec: corrupt compressed frame")

// DefaultMaxDecodedSize bounds the uncompressed size of a frame accepted by
// Unmarshal unless WithMaxDecodedSize sets another limit.
const DefaultMaxDecodedSize = 64 << 20

var zstdEncoderPool sync.Pool

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

// frame layout: [algorithm uint8][uncompressed size uint32][payload...]
const frameHeaderSize = 5

// Compressed wraps a codec and compresses its output.
type Compressed struct {
	inner       Codec
	compression Compression
	maxDecoded  uint32
	decoders    *sync.Pool
}

// NewCompressed returns a codec compressing inner's output with c.
// A nil inner selects Default.
func NewCompressed(inner Codec, c Compression) *Compressed {
	if inner == nil {
		inner = Default
	}
	return newCompressed(inner, c, DefaultMaxDecodedSize)
}

func newCompressed(inner Codec, c Compression, maxDecoded uint32) *Compressed {
	return &Compressed{
		inner:       inner,
		compression: c,
		maxDecoded:  maxDecoded,
		decoders: &sync.Pool{New: func() any {
			dec, _ := zstd.NewReader(nil,
				zstd.WithDecoderConcurrency(1),
				zstd.WithDecoderMaxMemory(uint64(maxDecoded)),
			)
			return dec
		}},
	}
}

// WithMaxDecodedSize returns a copy of c that rejects frames decoding to
// more than n bytes. A non-positive n selects DefaultMaxDecodedSize.
func (c *Compressed) WithMaxDecodedSize(n int) *Compressed {
	limit := uint32(DefaultMaxDecodedSize)
	if n > 0 && uint64(n) <= math.MaxUint32 {
		limit = uint32(n)
	}
	return newCompressed(c.inner, c.compression, limit)
}

// MaxDecodedSize returns the largest uncompressed frame Unmarshal accepts.
func (c *Compressed) MaxDecodedSize() int {
	return int(c.maxDecoded)
}

// Name returns "<inner>+<algorithm>".
func (c *Compressed) Name() string {
	return c.inner.Name() + "+" + c.compression.String()
}

// Marshal encodes v with the inner codec and compresses the result. Payloads
// that do not shrink are stored uncompressed.
func (c *Compressed) Marshal(v any) ([]byte, error) {
	raw, err := c.inner.Marshal(v)
	if err != nil {
		return nil, err
	}

	algo := c.compression
	var payload []byte
	switch algo {
	case CompressionLZ4:
		payload, err = compressLZ4(raw)
	case CompressionZSTD:
		enc := getZstdEncoder()
		payload = enc.EncodeAll(raw, nil)
		zstdEncoderPool.Put(enc)
	}
	if err != nil {
		return nil, err
	}
	if len(payload) == 0 || len(payload) >= len(raw) {
		algo, payload = CompressionNone, raw
	}

	out := make([]byte, frameHeaderSize+len(payload))
	out[0] = byte(algo)
	binary.LittleEndian.PutUint32(out[1:], uint32(len(raw)))
	copy(out[frameHeaderSize:], payload)
	return out, nil
}

// Unmarshal decompresses data and decodes it with the inner codec. The
// algorithm is read from the frame, so any Compressed codec decodes frames
// written by another with the same inner codec.
func (c *Compressed) Unmarshal(data []byte, v any) error {
	if len(data) < frameHeaderSize {
		return fmt.Errorf("%w: frame too small", ErrCorruptFrame)
	}
	size := binary.LittleEndian.Uint32(data[1:])
	if size > c.maxDecoded {
		return fmt.Errorf("%w: declared size %d exceeds limit %d", ErrCorruptFrame, size, c.maxDecoded)
	}
	payload := data[frameHeaderSize:]

	var raw []byte
	switch Compression(data[0]) {
	case CompressionNone:
		if uint32(len(payload)) != size {
			return fmt.Errorf("%w: size mismatch", ErrCorruptFrame)
		}
		raw = payload
	case CompressionLZ4:
		raw = make([]byte, size)
		n, err := lz4.UncompressBlock(payload, raw)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrCorruptFrame, err)
		}
		if uint32(n) != size {
			return fmt.Errorf("%w: size mismatch", ErrCorruptFrame)
		}
	case CompressionZSTD:
		dec := c.decoders.Get().(*zstd.Decoder)
		decoded, err := dec.DecodeAll(payload, make([]byte, 0, size))
		c.decoders.Put(dec)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrCorruptFrame, err)
		}
		if uint32(len(decoded)) != size {
			return fmt.Errorf("%w: size mismatch", ErrCorruptFrame)
		}
		raw = decoded
	default:
		return fmt.Errorf("%w: unknown algorithm %d", ErrCorruptFrame, data[0])
	}
	return c.inner.Unmarshal(raw, v)
}

func compressLZ4(data []byte) ([]byte, error) {
	buf := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, buf, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil // Incompressible
	}
	return buf[:n], nil
}
