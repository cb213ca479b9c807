package regress

import (
	"fmt"

	"github.com/RockYYY888/bdi-planlib/bdiplan"
	"github.com/RockYYY888/bdi-planlib/bdiplan/pddl"
)

// DefaultMaxStates bounds the visited set when the caller does not.
const DefaultMaxStates = 200000

// Options bound a regression search.
type Options struct {
	// MaxStates caps the visited-state count; zero means DefaultMaxStates.
	MaxStates int

	// MaxObjects bounds the feasibility prune: a state whose constraint
	// graph contains a clique larger than this is provably ungroundable
	// under the configured problem size. Zero disables the prune.
	MaxObjects int
}

// Planner is a lifted backward-regression planner for one domain. The
// synthesized invariants are computed once and shared across searches.
type Planner struct {
	domain *pddl.Domain
	inv    *Invariants
}

// New builds a planner, synthesizing the domain invariants.
func New(domain *pddl.Domain) *Planner {
	return &Planner{domain: domain, inv: SynthesizeInvariants(domain)}
}

// Invariants exposes the synthesized invariants.
func (p *Planner) Invariants() *Invariants {
	return p.inv
}

// Search explores the goal-regression state space breadth-first from the
// conjunctive goal and returns the discovered state graph. The goal may mix
// constants and variables.
func (p *Planner) Search(goal []bdiplan.Atom, opts Options) *Graph {
	maxStates := opts.MaxStates
	if maxStates <= 0 {
		maxStates = DefaultMaxStates
	}

	goalState := NewState(goal, nil, 0, maxVarIndex(goal))
	goalKey := goalState.CanonicalKey()

	graph := &Graph{
		Goal:   goalKey,
		States: map[string]*State{goalKey: goalState},
		Order:  []string{goalKey},
		Stats:  SearchStats{Unique: 1, Discards: make(map[string]int)},
	}

	if reason, ok := p.consistent(goalState, opts); !ok {
		graph.GoalRejected = true
		graph.Stats.Discards[reason]++
		return graph
	}

	type queued struct {
		state *State
		key   string
	}
	frontier := []queued{{goalState, goalKey}}

	for len(frontier) > 0 {
		cur := frontier[0]
		frontier = frontier[1:]
		graph.Stats.Explored++

		for _, target := range cur.state.Atoms {
			for _, action := range p.domain.Actions {
				for _, binding := range achievers(action, target) {
					pred, edge, reason := p.regress(cur.state, target, action, binding, opts)
					if pred == nil {
						graph.Stats.Discards[reason]++
						continue
					}

					key := pred.CanonicalKey()
					if _, seen := graph.States[key]; !seen {
						if len(graph.States) >= maxStates {
							graph.Truncated = true
							continue
						}
						graph.States[key] = pred
						graph.Order = append(graph.Order, key)
						graph.Stats.Unique++
						frontier = append(frontier, queued{pred, key})
					}

					edge.From = key
					edge.To = cur.key
					graph.Edges = append(graph.Edges, *edge)
					graph.Stats.Transitions++
				}
			}
		}
	}
	return graph
}

// achievers returns every binding under which the action achieves the
// target subgoal: add effects unify with a positive subgoal, delete effects
// with a negated one.
func achievers(action *pddl.Action, target bdiplan.Atom) []Binding {
	var effects []bdiplan.Atom
	if target.Negated {
		effects = action.Del
	} else {
		effects = action.Add
	}
	positive := target.Positive()

	var bindings []Binding
	for _, effect := range effects {
		if binding, ok := Match(effect, positive); ok {
			bindings = append(bindings, binding)
		}
	}
	return bindings
}

// regress computes the predecessor of state through (action, binding), or
// returns a discard reason. The returned edge still lacks From/To keys.
func (p *Planner) regress(state *State, target bdiplan.Atom, action *pddl.Action,
	partial Binding, opts Options) (*State, *Edge, string) {

	binding, maxVar := completeBinding(action, partial, state.MaxVar)

	adds := instantiate(action.Add, binding)
	dels := instantiate(action.Del, binding)

	current := make(map[string]bdiplan.Atom, len(state.Atoms))
	for _, a := range state.Atoms {
		current[a.Key()] = a
	}

	// Conflict check against the pre-regressed goal: an action that adds
	// the complement of a wanted atom, or deletes a wanted atom, cannot
	// coherently achieve the subgoal under this binding.
	for _, add := range adds {
		if _, bad := current[add.Negate().Key()]; bad {
			return nil, nil, DiscardConflict
		}
	}
	for _, del := range dels {
		if _, bad := current[del.Key()]; bad {
			return nil, nil, DiscardConflict
		}
	}

	// Remove subgoals the action achieves.
	for _, add := range adds {
		delete(current, add.Key())
	}

	// A deleted atom either satisfies a negative subgoal or must hold
	// beforehand.
	for _, del := range dels {
		neg := del.Negate()
		if _, ok := current[neg.Key()]; ok {
			delete(current, neg.Key())
		} else {
			current[del.Key()] = del
		}
	}

	// Preconditions hold before the action, with their signs.
	for _, pre := range instantiate(action.PosPre, binding) {
		current[pre.Key()] = pre
	}
	for _, pre := range instantiate(action.NegPre, binding) {
		neg := pre.Negate()
		current[neg.Key()] = neg
	}

	// Merge constraint sets, dropping trivially-true pairs and rejecting
	// trivially-false ones.
	constraints := append([]Constraint(nil), state.Constraints...)
	for _, pair := range action.Inequalities {
		t1 := binding.Apply(pair[0])
		t2 := binding.Apply(pair[1])
		if t1 == t2 {
			return nil, nil, DiscardConstraint
		}
		if !bdiplan.IsVariable(t1) && !bdiplan.IsVariable(t2) {
			continue // distinct constants, always satisfied
		}
		constraints = append(constraints, NewConstraint(t1, t2))
	}

	atoms := make([]bdiplan.Atom, 0, len(current))
	for _, a := range current {
		atoms = append(atoms, a)
	}
	pred := NewState(atoms, constraints, state.Depth+1, maxVar)

	if reason, ok := p.consistent(pred, opts); !ok {
		return nil, nil, reason
	}

	edge := &Edge{
		Action:   action,
		Args:     actionArgs(action, binding),
		Preconds: instantiate(action.PosPre, binding),
		Adds:     adds,
		Dels:     dels,
	}
	return pred, edge, ""
}

// completeBinding fills in fresh variables for every action parameter the
// unification left unbound. Fresh names are numbered from the parent
// state's high-water mark plus one, skipping identifiers the binding
// already uses; the new high-water mark travels with the predecessor.
func completeBinding(action *pddl.Action, partial Binding, parentMax int) (Binding, int) {
	binding := partial.Clone()
	used := make(map[string]bool, len(binding))
	for _, v := range binding {
		used[v] = true
	}

	next := parentMax + 1
	for _, param := range action.ParamVars() {
		if _, bound := binding[param]; bound {
			continue
		}
		name := fmt.Sprintf("?v%d", next)
		for used[name] {
			next++
			name = fmt.Sprintf("?v%d", next)
		}
		binding[param] = name
		used[name] = true
		next++
	}
	return binding, next - 1
}

// consistent applies the consistency predicates to a candidate state.
func (p *Planner) consistent(s *State, opts Options) (string, bool) {
	// No explicit contradiction.
	keys := make(map[string]bool, len(s.Atoms))
	for _, a := range s.Atoms {
		keys[a.Key()] = true
	}
	for _, a := range s.Atoms {
		if keys[a.Negate().Key()] {
			return DiscardContradiction, false
		}
	}

	// No mutex co-occurrence among the positive atoms.
	var positives []bdiplan.Atom
	for _, a := range s.Atoms {
		if !a.Negated {
			positives = append(positives, a)
		}
	}
	names := predicateNames(positives)
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			if p.inv.Mutex(names[i], names[j]) {
				return DiscardMutex, false
			}
		}
	}

	// No singleton multiplicity.
	counts := make(map[string]int)
	for _, a := range positives {
		counts[a.Name]++
	}
	for name, n := range counts {
		if n > 1 && p.inv.Singleton(name) {
			return DiscardSingleton, false
		}
	}

	// Inequality constraints must be satisfiable.
	for _, c := range s.Constraints {
		if c[0] == c[1] {
			return DiscardConstraint, false
		}
	}

	// Feasibility under the object cap.
	if opts.MaxObjects > 0 {
		if len(s.Terms()) > opts.MaxObjects && minObjectsNeeded(s) > opts.MaxObjects {
			return DiscardClique, false
		}
	}
	return "", true
}

func instantiate(atoms []bdiplan.Atom, binding Binding) []bdiplan.Atom {
	out := make([]bdiplan.Atom, len(atoms))
	for i, a := range atoms {
		out[i] = a.Substitute(binding)
	}
	return out
}

func actionArgs(action *pddl.Action, binding Binding) []string {
	vars := action.ParamVars()
	args := make([]string, len(vars))
	for i, v := range vars {
		args[i] = binding.Apply(v)
	}
	return args
}

func maxVarIndex(atoms []bdiplan.Atom) int {
	max := 0
	for _, a := range atoms {
		for _, arg := range a.Args {
			var n int
			if _, err := fmt.Sscanf(arg, "?v%d", &n); err == nil && n > max {
				max = n
			}
		}
	}
	return max
}
