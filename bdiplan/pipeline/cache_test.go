package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RockYYY888/bdi-planlib/bdiplan"
	"github.com/RockYYY888/bdi-planlib/bdiplan/goals"
	"github.com/RockYYY888/bdi-planlib/bdiplan/regress"
)

func TestGoalCacheTiers(t *testing.T) {
	cache := NewGoalCache()
	single := goals.Normalize([]bdiplan.Atom{bdiplan.NewAtom("on", "a", "b")})
	multi := goals.Normalize([]bdiplan.Atom{
		bdiplan.NewAtom("on", "a", "b"),
		bdiplan.NewAtom("clear", "c"),
	})
	graph := &regress.Graph{}

	// Single-atom goals consult only the single tier.
	_, ok := cache.Lookup(single, 3)
	assert.False(t, ok)
	cache.StoreSingle(single, 3, graph)
	got, ok := cache.Lookup(single, 3)
	require.True(t, ok)
	assert.Same(t, graph, got)

	// A different object count is a different key.
	_, ok = cache.Lookup(single, 4)
	assert.False(t, ok)

	// Multi-atom goals consult only the full tier.
	_, ok = cache.Lookup(multi, 3)
	assert.False(t, ok)
	cache.StoreFull(multi, graph)
	_, ok = cache.Lookup(multi, 3)
	assert.True(t, ok)

	singleStats, fullStats := cache.Stats()
	assert.Equal(t, TierStats{Hits: 1, Misses: 2}, singleStats)
	assert.Equal(t, TierStats{Hits: 1, Misses: 1}, fullStats)
	assert.InDelta(t, 1.0/3.0, singleStats.HitRate(), 1e-9)
}

func TestGoalCacheSharedSchemaAcrossObjects(t *testing.T) {
	// on(a,b) and on(c,d) normalize to the same schema and hit the same
	// entry.
	cache := NewGoalCache()
	first := goals.Normalize([]bdiplan.Atom{bdiplan.NewAtom("on", "a", "b")})
	second := goals.Normalize([]bdiplan.Atom{bdiplan.NewAtom("on", "c", "d")})
	require.Equal(t, first.Key(), second.Key())

	cache.StoreSingle(first, 2, &regress.Graph{})
	_, ok := cache.Lookup(second, 2)
	assert.True(t, ok)
}
