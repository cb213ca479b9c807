package pipeline

import (
	"fmt"

	"github.com/RockYYY888/bdi-planlib/bdiplan/goals"
	"github.com/RockYYY888/bdi-planlib/bdiplan/regress"
)

// TierStats counts hits and misses for one cache tier.
type TierStats struct {
	Hits   int
	Misses int
}

// HitRate returns the fraction of lookups that hit, or 0 with no lookups.
func (t TierStats) HitRate() float64 {
	total := t.Hits + t.Misses
	if total == 0 {
		return 0
	}
	return float64(t.Hits) / float64(total)
}

// GoalCache is the per-invocation two-tier memoization of regression
// searches. The single-atom tier is keyed by (schema, object count) and is
// the most reusable; the full-goal tier is keyed by the canonical
// serialization of the multi-atom schema. Entries are inserted only after
// a search completes.
type GoalCache struct {
	single map[string]*regress.Graph
	full   map[string]*regress.Graph

	singleStats TierStats
	fullStats   TierStats
}

// NewGoalCache creates an empty cache. One cache serves one DFA; sharing a
// cache across grounding maps is not supported.
func NewGoalCache() *GoalCache {
	return &GoalCache{
		single: make(map[string]*regress.Graph),
		full:   make(map[string]*regress.Graph),
	}
}

func singleKey(schema goals.Schema, numObjects int) string {
	return fmt.Sprintf("%s#%d", schema.Key(), numObjects)
}

// Lookup consults the single-atom tier for one-atom schemas and the
// full-goal tier otherwise, recording the hit or miss on the tier that
// answered.
func (c *GoalCache) Lookup(schema goals.Schema, numObjects int) (*regress.Graph, bool) {
	if len(schema.Atoms) == 1 {
		if g, ok := c.single[singleKey(schema, numObjects)]; ok {
			c.singleStats.Hits++
			return g, true
		}
		c.singleStats.Misses++
		return nil, false
	}
	if g, ok := c.full[schema.Key()]; ok {
		c.fullStats.Hits++
		return g, true
	}
	c.fullStats.Misses++
	return nil, false
}

// StoreSingle records a completed single-atom exploration.
func (c *GoalCache) StoreSingle(schema goals.Schema, numObjects int, g *regress.Graph) {
	c.single[singleKey(schema, numObjects)] = g
}

// HasSingle reports whether the single-atom tier already covers a schema,
// without touching the statistics.
func (c *GoalCache) HasSingle(schema goals.Schema, numObjects int) bool {
	_, ok := c.single[singleKey(schema, numObjects)]
	return ok
}

// StoreFull records a completed multi-atom exploration.
func (c *GoalCache) StoreFull(schema goals.Schema, g *regress.Graph) {
	c.full[schema.Key()] = g
}

// Stats returns the per-tier statistics.
func (c *GoalCache) Stats() (single, full TierStats) {
	return c.singleStats, c.fullStats
}

// Sizes returns the entry counts of the two tiers.
func (c *GoalCache) Sizes() (single, full int) {
	return len(c.single), len(c.full)
}
