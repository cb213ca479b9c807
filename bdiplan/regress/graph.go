package regress

import (
	"github.com/RockYYY888/bdi-planlib/bdiplan"
	"github.com/RockYYY888/bdi-planlib/bdiplan/pddl"
)

// Edge is one transition of the state graph: applying the action with the
// given argument tuple in the From state's situation leads toward the To
// state (To is one step closer to the goal).
type Edge struct {
	From string
	To   string

	Action *pddl.Action

	// Args is the action's argument tuple under the completed binding.
	Args []string

	// Preconds are the positive precondition atoms under the binding.
	Preconds []bdiplan.Atom

	// Adds and Dels are the belief-update delta under the binding,
	// in the action's forward semantics.
	Adds []bdiplan.Atom
	Dels []bdiplan.Atom
}

// SearchStats reports what the search did, including why candidate
// predecessors were discarded.
type SearchStats struct {
	Explored    int
	Unique      int
	Transitions int

	// Discards counts pruned predecessor candidates by reason.
	Discards map[string]int
}

// Discard reasons.
const (
	DiscardConflict      = "conflict"
	DiscardContradiction = "contradiction"
	DiscardMutex         = "mutex"
	DiscardSingleton     = "singleton"
	DiscardConstraint    = "constraint"
	DiscardClique        = "clique"
)

// Graph is the output of a regression search: a DAG of states keyed by
// canonical form, rooted at the goal state, with edges pointing from each
// predecessor toward the goal.
type Graph struct {
	Goal   string
	States map[string]*State

	// Order records canonical keys in discovery order, the goal first.
	Order []string

	Edges []Edge

	// Truncated is set when the visited budget stopped the exploration.
	Truncated bool

	// GoalRejected is set when the goal state itself violates a
	// synthesized invariant; the graph then holds only the goal node.
	GoalRejected bool

	Stats SearchStats
}

// State returns the state stored under a canonical key.
func (g *Graph) State(key string) *State {
	return g.States[key]
}

// GoalState returns the root state.
func (g *Graph) GoalState() *State {
	return g.States[g.Goal]
}

// Outgoing returns the edges leaving a state, in insertion order.
func (g *Graph) Outgoing(key string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.From == key {
			out = append(out, e)
		}
	}
	return out
}

// ShortestPaths returns, for every state with a path to the goal, the edge
// sequence of one shortest path. Among equally short paths the first edge
// found wins: frontier states are visited in the order they were reached,
// and each one's incoming edges in insertion order. The choice is
// deterministic.
func (g *Graph) ShortestPaths() map[string][]Edge {
	// BFS outward from the goal over reversed edges.
	dist := map[string]int{g.Goal: 0}
	next := make(map[string]*Edge)

	frontier := []string{g.Goal}
	for len(frontier) > 0 {
		var upcoming []string
		for _, key := range frontier {
			for i := range g.Edges {
				e := &g.Edges[i]
				if e.To != key {
					continue
				}
				if _, seen := dist[e.From]; seen {
					continue
				}
				dist[e.From] = dist[key] + 1
				next[e.From] = e
				upcoming = append(upcoming, e.From)
			}
		}
		frontier = upcoming
	}

	paths := make(map[string][]Edge, len(dist))
	for key := range dist {
		if key == g.Goal {
			paths[key] = nil
			continue
		}
		var path []Edge
		for cur := key; cur != g.Goal; {
			e := next[cur]
			path = append(path, *e)
			cur = e.To
		}
		paths[key] = path
	}
	return paths
}
