// Package pipeline drives the end-to-end compilation: refine the DFA's
// labels, extract and normalize goals per transition, run or reuse
// regression searches through the two-tier cache, and assemble the
// AgentSpeak plan library.
package pipeline

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/RockYYY888/bdi-planlib/bdiplan"
	"github.com/RockYYY888/bdi-planlib/bdiplan/dfa"
	"github.com/RockYYY888/bdi-planlib/bdiplan/emit"
	"github.com/RockYYY888/bdi-planlib/bdiplan/goals"
	"github.com/RockYYY888/bdi-planlib/bdiplan/grounding"
	"github.com/RockYYY888/bdi-planlib/bdiplan/pddl"
	"github.com/RockYYY888/bdi-planlib/bdiplan/regress"
	"github.com/RockYYY888/bdi-planlib/bdiplan/trace"
)

// Refiner selection.
const (
	RefinerBDD         = "bdd"
	RefinerEnumerative = "enum"
)

// Options configure one compilation.
type Options struct {
	// MaxStates caps each regression search's visited set.
	MaxStates int

	// MaxObjects bounds the feasibility prune; zero disables it.
	MaxObjects int

	// MintermBudget is the per-label partition cap for the refiner.
	MintermBudget int

	// Refiner picks the label-refinement engine: RefinerBDD (default) or
	// RefinerEnumerative.
	Refiner string

	// Handler receives instrumentation events; nil is silent.
	Handler trace.Handler
}

// Statistics summarize one compilation.
type Statistics struct {
	DFAStates      int
	DFATransitions int
	Partitions     int
	KeptLabels     int

	Goals    int
	Searches int

	SingleTier TierStats
	FullTier   TierStats

	TotalStates      int
	TotalTransitions int
	Discards         map[string]int

	Truncated bool
}

// Result is a compiled plan library.
type Result struct {
	Library string
	Stats   Statistics
}

// Generator compiles DFAs against one domain and grounding map.
type Generator struct {
	domain  *pddl.Domain
	gmap    *grounding.Map
	planner *regress.Planner
	opts    Options
}

// NewGenerator builds a generator; the domain invariants are synthesized
// once here and shared by every search.
func NewGenerator(domain *pddl.Domain, gmap *grounding.Map, opts Options) *Generator {
	return &Generator{
		domain:  domain,
		gmap:    gmap,
		planner: regress.New(domain),
		opts:    opts,
	}
}

// Generate compiles one automaton into a plan library. The goal cache is
// constructed fresh per call: its entries are only valid against this
// generator's grounding map.
func (g *Generator) Generate(automaton *dfa.DFA) (*Result, error) {
	handler := g.opts.Handler
	stats := Statistics{Discards: make(map[string]int)}

	// Fail fast when the DFA speaks symbols the grounding map does not.
	alphabet, err := automaton.Alphabet()
	if err != nil {
		return nil, err
	}
	for _, symbol := range alphabet {
		if _, err := g.gmap.Atom(symbol); err != nil {
			return nil, err
		}
	}

	stats.DFAStates = len(automaton.States)
	stats.DFATransitions = len(automaton.Transitions)
	handler.Emit(trace.DFAParsed, map[string]interface{}{
		"states": stats.DFAStates, "transitions": stats.DFATransitions,
	})

	refined, err := g.refine(automaton)
	if err != nil {
		return nil, err
	}
	stats.Partitions = refined.Partitions
	stats.KeptLabels = len(refined.KeptVerbatim)
	for _, w := range refined.Warnings {
		handler.Emit(trace.RefineWarning, map[string]interface{}{"warning": w})
	}
	handler.Emit(trace.RefineCompleted, map[string]interface{}{
		"partitions": refined.Partitions, "kept": stats.KeptLabels,
	})

	objects := emit.SortedObjects(g.gmap.Objects)
	emitter := emit.New(g.domain, objects)
	cache := NewGoalCache()
	searchOpts := regress.Options{MaxStates: g.opts.MaxStates, MaxObjects: g.opts.MaxObjects}

	var graphs []*regress.Graph
	var sections []string
	emitted := make(map[string]bool)

	for i, transition := range refined.DFA.Transitions {
		handler.Emit(trace.TransitionBegin, map[string]interface{}{
			"index": i, "from": transition.From, "to": transition.To, "label": transition.Label,
		})

		disjuncts, err := goals.Extract(transition.Label, g.gmap)
		if err != nil {
			return nil, err
		}

		for _, disjunct := range disjuncts {
			if len(disjunct) == 0 {
				// A tautological disjunct asks for nothing.
				handler.Emit(trace.LabelSkipped, map[string]interface{}{"label": transition.Label})
				continue
			}

			schema := goals.Normalize(disjunct)
			stats.Goals++

			graph := g.lookupOrSearch(cache, schema, searchOpts, handler, &stats)
			graphs = append(graphs, graph)

			if emitted[schema.Key()] {
				continue
			}
			emitted[schema.Key()] = true
			section := emitter.GoalSection(schema, graph)
			sections = append(sections, section)
			handler.Emit(trace.SectionEmitted, map[string]interface{}{
				"goal": schema.String(), "states": len(graph.States),
			})
		}
	}

	stats.SingleTier, stats.FullTier = cache.Stats()

	var library strings.Builder
	library.WriteString(g.header(&stats, len(sections)))
	library.WriteString("\n\n")
	if len(graphs) > 0 {
		library.WriteString(emitter.SharedSection(graphs))
		library.WriteString("\n\n")
	}
	library.WriteString(strings.Join(sections, "\n\n"))
	library.WriteString("\n")

	handler.Emit(trace.LibraryAssembled, map[string]interface{}{
		"bytes": library.Len(), "sections": len(sections),
	})

	return &Result{Library: library.String(), Stats: stats}, nil
}

// lookupOrSearch consults the cache and falls back to a fresh regression
// search, inserting the result only after the search completes. Exploring
// a multi-atom goal opportunistically explores and caches each constituent
// atom as a single-atom goal.
func (g *Generator) lookupOrSearch(cache *GoalCache, schema goals.Schema,
	searchOpts regress.Options, handler trace.Handler, stats *Statistics) *regress.Graph {

	numObjects := len(g.gmap.Objects)
	if graph, ok := cache.Lookup(schema, numObjects); ok {
		handler.Emit(trace.CacheHit, map[string]interface{}{"goal": schema.String()})
		return graph
	}
	handler.Emit(trace.CacheMiss, map[string]interface{}{"goal": schema.String()})

	graph := g.search(schema.Atoms, searchOpts, handler, stats)
	if len(schema.Atoms) == 1 {
		cache.StoreSingle(schema, numObjects, graph)
		return graph
	}
	cache.StoreFull(schema, graph)

	// Constituents restated standalone so they key like directly-extracted
	// single-atom goals.
	for _, atom := range schema.Atoms {
		constituent := goals.Reparameterize([]bdiplan.Atom{atom})
		if cache.HasSingle(constituent, numObjects) {
			continue
		}
		cache.StoreSingle(constituent, numObjects,
			g.search(constituent.Atoms, searchOpts, handler, stats))
	}
	return graph
}

func (g *Generator) search(goal []bdiplan.Atom, searchOpts regress.Options,
	handler trace.Handler, stats *Statistics) *regress.Graph {

	start := time.Now()
	graph := g.planner.Search(goal, searchOpts)
	stats.Searches++
	g.fold(stats, graph)
	handler.EmitTimed(trace.SearchCompleted, start, map[string]interface{}{
		"states": len(graph.States), "edges": len(graph.Edges),
		"truncated": graph.Truncated, "rejected": graph.GoalRejected,
	})
	return graph
}

// fold accumulates a graph's outcome into the run statistics.
func (g *Generator) fold(stats *Statistics, graph *regress.Graph) {
	stats.TotalStates += len(graph.States)
	stats.TotalTransitions += len(graph.Edges)
	if graph.Truncated {
		stats.Truncated = true
	}
	for reason, n := range graph.Stats.Discards {
		stats.Discards[reason] += n
	}
}

func (g *Generator) refine(automaton *dfa.DFA) (*dfa.RefineResult, error) {
	opts := dfa.RefineOptions{MintermBudget: g.opts.MintermBudget}
	if g.opts.Refiner == RefinerEnumerative {
		return dfa.RefineEnumerative(automaton, opts)
	}
	return dfa.Refine(automaton, opts)
}

func (g *Generator) header(stats *Statistics, sections int) string {
	discards := make([]string, 0, len(stats.Discards))
	for reason, n := range stats.Discards {
		discards = append(discards, fmt.Sprintf("%s=%d", reason, n))
	}
	sort.Strings(discards)
	discardLine := "none"
	if len(discards) > 0 {
		discardLine = strings.Join(discards, " ")
	}

	return fmt.Sprintf(`/* AgentSpeak Plan Library
 * Generated by backward regression planning
 *
 * Objects: %s
 * DFA: %d states, %d transitions, %d partitions (%d labels kept verbatim)
 * Goals: %d (%d searches, %d goal sections)
 * Search: %d states, %d transitions, truncated=%v
 * Cache: single-atom %d/%d hits/misses, full-goal %d/%d hits/misses
 * Discards: %s
 */`,
		strings.Join(emit.SortedObjects(g.gmap.Objects), ", "),
		stats.DFAStates, stats.DFATransitions, stats.Partitions, stats.KeptLabels,
		stats.Goals, stats.Searches, sections,
		stats.TotalStates, stats.TotalTransitions, stats.Truncated,
		stats.SingleTier.Hits, stats.SingleTier.Misses,
		stats.FullTier.Hits, stats.FullTier.Misses,
		discardLine)
}
