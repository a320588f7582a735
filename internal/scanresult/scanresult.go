// Package scanresult keeps the most recent dry-run and real-run
// ScanResult in memory so a status endpoint or CLI subcommand can re-serve
// the last scan's actions without recomputing them.
package scanresult

import (
	"sync"

	"github.com/galleryloom/gallerysync/internal/entity"
)

// Cache holds the last dry-run and last real-run result, keyed separately
// so a preview scan never clobbers the last applied scan's record.
type Cache struct {
	mu      sync.RWMutex
	dryRun  *entity.ScanResult
	applied *entity.ScanResult
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{}
}

// Store records result under the dry-run or applied slot according to
// dryRun.
func (c *Cache) Store(result *entity.ScanResult, dryRun bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if dryRun {
		c.dryRun = result
	} else {
		c.applied = result
	}
}

// Last returns the most recently stored result for the given mode, or nil
// if none has run yet.
func (c *Cache) Last(dryRun bool) *entity.ScanResult {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if dryRun {
		return c.dryRun
	}
	return c.applied
}
