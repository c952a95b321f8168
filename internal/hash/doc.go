// Package hash provides the checksums used to key memoized runs.
//
// Keys are CRC32-Castagnoli (CRC32C) checksums of the canonical encoding of a
// run's inputs. A checksum only selects a candidate entry; callers compare
// the full encoding before trusting a hit.
//
//	sum := hash.CRC32C(data)
package hash
