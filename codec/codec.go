// Package codec centralizes the wire encoding of requests and runs.
//
// Codecs are selected by stable name so that transports can negotiate them
// (for example from a Content-Type or a query parameter).
package codec

import "fmt"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
//
// Compressed variants are named "<codec>+<algorithm>", e.g. "json+zstd".
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	case "json+zstd":
		return NewCompressed(JSON{}, CompressionZSTD), true
	case "json+lz4":
		return NewCompressed(JSON{}, CompressionLZ4), true
	case "go-json+zstd":
		return NewCompressed(GoJSON{}, CompressionZSTD), true
	case "go-json+lz4":
		return NewCompressed(GoJSON{}, CompressionLZ4), true
	default:
		return nil, false
	}
}

// MustMarshal is a helper for tests and examples.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
