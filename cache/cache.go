// Package cache memoizes whole strategy results keyed by the deck hash, so
// a caller re-rendering with unchanged inputs never pays for the pipeline
// twice. The bound is a simple capacity: when full, the table is dropped
// wholesale. The engine itself stays pure; this layer owns all the shared
// state.
package cache

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/pmarche/keeper/mulligan"
)

const DefaultCapacity = 128

type ResultCache struct {
	sync.Mutex
	capacity int
	results  map[uint64]*mulligan.Result
}

func New(capacity int) *ResultCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &ResultCache{
		capacity: capacity,
		results:  make(map[uint64]*mulligan.Result),
	}
}

// Analyze returns the cached result for this deck, computing and storing it
// on a miss. Callers must treat the returned result as read-only; it is
// shared between every caller that presents the same deck.
func (c *ResultCache) Analyze(deck mulligan.Deck) *mulligan.Result {
	key := deck.Hash()

	c.Lock()
	if res, ok := c.results[key]; ok {
		c.Unlock()
		log.Debug().Uint64("key", key).Msg("strategy cache hit")
		return res
	}
	c.Unlock()

	// Compute outside the lock; concurrent misses on the same key just
	// race to store identical results.
	res := mulligan.Analyze(deck)

	c.Lock()
	if len(c.results) >= c.capacity {
		log.Debug().Int("capacity", c.capacity).Msg("strategy cache full, dropping")
		c.results = make(map[uint64]*mulligan.Result)
	}
	c.results[key] = res
	c.Unlock()
	return res
}

// Len reports the number of cached results.
func (c *ResultCache) Len() int {
	c.Lock()
	defer c.Unlock()
	return len(c.results)
}
