package hash

import (
	"encoding/binary"
	"hash/crc32"
	"math"
)

var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// CRC32C computes the CRC32-Castagnoli checksum of data.
func CRC32C(data []byte) uint32 {
	return crc32.Checksum(data, crc32cTable)
}

// AppendFloat64 appends the little-endian IEEE-754 bits of v to dst.
func AppendFloat64(dst []byte, v float64) []byte {
	return binary.LittleEndian.AppendUint64(dst, math.Float64bits(v))
}

// AppendInt64 appends the little-endian bits of v to dst.
func AppendInt64(dst []byte, v int64) []byte {
	return binary.LittleEndian.AppendUint64(dst, uint64(v))
}
