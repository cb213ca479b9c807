package regress

import (
	"sort"

	"github.com/RockYYY888/bdi-planlib/bdiplan"
)

// constraintGraph is the transient graph used by the feasibility prune:
// nodes are the terms of a state, edges are inequalities — the explicit
// ones from the constraint set plus an implicit edge between every pair of
// distinct constants.
type constraintGraph struct {
	nodes     []string
	adjacency map[string]map[string]bool
}

func newConstraintGraph() *constraintGraph {
	return &constraintGraph{adjacency: make(map[string]map[string]bool)}
}

func (g *constraintGraph) addNode(term string) {
	if _, ok := g.adjacency[term]; !ok {
		g.adjacency[term] = make(map[string]bool)
		g.nodes = append(g.nodes, term)
	}
}

func (g *constraintGraph) addEdge(a, b string) {
	if a == b {
		return
	}
	g.addNode(a)
	g.addNode(b)
	g.adjacency[a][b] = true
	g.adjacency[b][a] = true
}

// buildConstraintGraph assembles the graph for a state's terms and
// constraints.
func buildConstraintGraph(terms []string, constraints []Constraint) *constraintGraph {
	g := newConstraintGraph()
	for _, t := range terms {
		g.addNode(t)
	}
	for _, c := range constraints {
		g.addEdge(c[0], c[1])
	}
	// Distinct constants are definitionally unequal.
	var constants []string
	for _, t := range terms {
		if !bdiplan.IsVariable(t) {
			constants = append(constants, t)
		}
	}
	for i := 0; i < len(constants); i++ {
		for j := i + 1; j < len(constants); j++ {
			g.addEdge(constants[i], constants[j])
		}
	}
	return g
}

// maxCliqueLowerBound finds a maximal clique greedily and returns its size.
// A clique of k mutually-unequal terms needs k distinct objects, so the
// size is a sound lower bound on how many objects the state requires.
// Seeds are limited to the ten highest-degree nodes.
func (g *constraintGraph) maxCliqueLowerBound() int {
	if len(g.nodes) == 0 {
		return 0
	}

	byDegree := append([]string(nil), g.nodes...)
	sort.Slice(byDegree, func(i, j int) bool {
		di, dj := len(g.adjacency[byDegree[i]]), len(g.adjacency[byDegree[j]])
		if di != dj {
			return di > dj
		}
		return byDegree[i] < byDegree[j]
	})
	seeds := byDegree
	if len(seeds) > 10 {
		seeds = seeds[:10]
	}

	best := 1
	for _, start := range seeds {
		clique := map[string]bool{start: true}
		candidates := make(map[string]bool, len(g.adjacency[start]))
		for n := range g.adjacency[start] {
			candidates[n] = true
		}
		for len(candidates) > 0 {
			// Pick the candidate keeping the most future candidates;
			// ties break lexically for determinism.
			bestCand := ""
			bestFuture := -1
			for _, cand := range sortedKeys(candidates) {
				future := 0
				for n := range candidates {
					if g.adjacency[cand][n] {
						future++
					}
				}
				if future > bestFuture {
					bestFuture = future
					bestCand = cand
				}
			}
			clique[bestCand] = true
			next := make(map[string]bool)
			for n := range candidates {
				if g.adjacency[bestCand][n] {
					next[n] = true
				}
			}
			candidates = next
		}
		if len(clique) > best {
			best = len(clique)
		}
	}
	return best
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// minObjectsNeeded lower-bounds the number of distinct objects a state
// needs to be groundable.
func minObjectsNeeded(s *State) int {
	g := buildConstraintGraph(s.Terms(), s.Constraints)
	return g.maxCliqueLowerBound()
}
