package cache

import (
	"testing"

	"github.com/matryer/is"

	"github.com/pmarche/keeper/deadline"
	"github.com/pmarche/keeper/mulligan"
)

func smallDeck(confidence float64) mulligan.Deck {
	return mulligan.Deck{
		Size: 40,
		Types: []deadline.Requirement{
			{Count: 3, Required: 1, ByTurn: 2},
		},
		Penalty:    0.2,
		Confidence: confidence,
	}
}

func TestCacheHit(t *testing.T) {
	is := is.New(t)
	c := New(8)
	a := c.Analyze(smallDeck(0.3))
	b := c.Analyze(smallDeck(0.3))
	is.Equal(c.Len(), 1)
	is.True(a == b) // same pointer on a hit
}

func TestCacheDistinctDecks(t *testing.T) {
	is := is.New(t)
	c := New(8)
	c.Analyze(smallDeck(0.3))
	c.Analyze(smallDeck(0.4))
	is.Equal(c.Len(), 2)
}

func TestCacheBound(t *testing.T) {
	is := is.New(t)
	c := New(2)
	c.Analyze(smallDeck(0.1))
	c.Analyze(smallDeck(0.2))
	c.Analyze(smallDeck(0.3))
	// Third insert found the table full and started over.
	is.Equal(c.Len(), 1)
}

func TestCacheDefaultCapacity(t *testing.T) {
	is := is.New(t)
	c := New(0)
	is.Equal(c.capacity, DefaultCapacity)
}
