// Package cache memoizes deterministic runs in memory.
//
// Entries are keyed by the CRC32C checksum and length of the canonical
// encoding of a run's inputs. The encoding itself is kept with the entry and
// compared on lookup, so checksum collisions degrade to misses. Eviction is
// least-recently-used against a byte capacity; an optional resource
// controller enforces a global memory limit on top.
package cache
