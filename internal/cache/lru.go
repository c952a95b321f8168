package cache

import (
	"bytes"
	"container/list"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/kmviz/internal/hash"
	"github.com/hupe1980/kmviz/internal/resource"
	"github.com/hupe1980/kmviz/model"
)

// Key identifies a cached run.
type Key struct {
	Checksum uint32
	Length   int
}

// KeyOf returns the key of a canonical input encoding.
func KeyOf(canonical []byte) Key {
	return Key{Checksum: hash.CRC32C(canonical), Length: len(canonical)}
}

// RunCache is an LRU cache of runs.
type RunCache struct {
	mu        sync.Mutex
	capacity  int64
	size      int64
	items     map[Key]*list.Element
	evictList *list.List
	rc        *resource.Controller

	hits   atomic.Int64
	misses atomic.Int64
}

type entry struct {
	key       Key
	canonical []byte
	run       *model.Run
	size      int64
}

// NewRunCache creates a new LRU cache with the given capacity in bytes.
// If rc is provided, it will be used to track memory usage.
func NewRunCache(capacity int64, rc *resource.Controller) *RunCache {
	return &RunCache{
		capacity:  capacity,
		items:     make(map[Key]*list.Element),
		evictList: list.New(),
		rc:        rc,
	}
}

// Get returns a deep copy of the run cached for canonical.
func (c *RunCache) Get(canonical []byte) (*model.Run, bool) {
	key := KeyOf(canonical)

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		ent := el.Value.(*entry)
		if bytes.Equal(ent.canonical, canonical) {
			c.hits.Add(1)
			c.evictList.MoveToFront(el)
			return ent.run.Clone(), true
		}
	}
	c.misses.Add(1)
	return nil, false
}

// Set caches a deep copy of run under canonical.
func (c *RunCache) Set(canonical []byte, run *model.Run) {
	if run == nil {
		return
	}
	key := KeyOf(canonical)
	itemSize := EstimateSize(run) + int64(len(canonical))

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		// Same key: either a refresh or a checksum collision. The newer
		// entry wins in both cases.
		c.removeElement(el)
	}

	if itemSize > c.capacity {
		return
	}

	for c.size+itemSize > c.capacity {
		el := c.evictList.Back()
		if el == nil {
			break
		}
		c.removeElement(el)
	}

	// If the global controller says no, don't cache.
	if c.rc != nil && !c.rc.TryAcquireMemory(itemSize) {
		return
	}

	ent := &entry{
		key:       key,
		canonical: append([]byte(nil), canonical...),
		run:       run.Clone(),
		size:      itemSize,
	}
	c.items[key] = c.evictList.PushFront(ent)
	c.size += itemSize
}

// Purge removes all entries.
func (c *RunCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for el := c.evictList.Back(); el != nil; el = c.evictList.Back() {
		c.removeElement(el)
	}
}

func (c *RunCache) removeElement(el *list.Element) {
	c.evictList.Remove(el)
	ent := el.Value.(*entry)
	delete(c.items, ent.key)
	c.size -= ent.size
	if c.rc != nil {
		c.rc.ReleaseMemory(ent.size)
	}
}

// Len returns the number of cached runs.
func (c *RunCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictList.Len()
}

// Size returns the accounted size of the cache in bytes.
func (c *RunCache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Stats returns hit and miss counts.
func (c *RunCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

const (
	pointBytes   = 16
	clusterBytes = 64
	stepBytes    = 96
	runBytes     = 128
)

// EstimateSize approximates the memory retained by run.
func EstimateSize(run *model.Run) int64 {
	if run == nil {
		return 0
	}
	size := int64(runBytes)
	for _, s := range run.Steps {
		size += stepBytes + int64(len(s.Centroids))*pointBytes
		for _, cl := range s.Clusters {
			size += clusterBytes + int64(len(cl.Color))
			size += int64(len(cl.Points)) * pointBytes
			size += int64(len(cl.Indices)) * 8
		}
	}
	return size
}
