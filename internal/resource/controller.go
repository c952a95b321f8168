package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Config holds resource limits.
type Config struct {
	// MaxConcurrentRuns is the number of runs allowed to execute at once.
	// If 0, runs are not limited.
	MaxConcurrentRuns int64

	// MemoryLimitBytes is the hard limit for retained run memory.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64
}

// Controller manages run concurrency and retained memory.
type Controller struct {
	cfg Config

	runSem *semaphore.Weighted // nil if unlimited
	active atomic.Int64

	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}
	if cfg.MaxConcurrentRuns > 0 {
		c.runSem = semaphore.NewWeighted(cfg.MaxConcurrentRuns)
	}
	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}
	return c
}

// AcquireRun blocks until a run slot is free or ctx is done.
func (c *Controller) AcquireRun(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if c.runSem != nil {
		if err := c.runSem.Acquire(ctx, 1); err != nil {
			return err
		}
	}
	c.active.Add(1)
	return nil
}

// ReleaseRun returns a slot taken by AcquireRun.
func (c *Controller) ReleaseRun() {
	if c == nil {
		return
	}
	c.active.Add(-1)
	if c.runSem != nil {
		c.runSem.Release(1)
	}
}

// ActiveRuns returns the number of runs currently holding a slot.
func (c *Controller) ActiveRuns() int64 {
	if c == nil {
		return 0
	}
	return c.active.Load()
}

// TryAcquireMemory attempts to reserve memory without blocking.
// Returns true if acquired, false if the limit would be exceeded.
func (c *Controller) TryAcquireMemory(bytes int64) bool {
	if c == nil || bytes <= 0 {
		return true
	}
	if c.memSem != nil && !c.memSem.TryAcquire(bytes) {
		return false
	}
	c.memUsed.Add(bytes)
	return true
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}
	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current reserved memory in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// Config returns the limits the controller was created with.
func (c *Controller) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.cfg
}
