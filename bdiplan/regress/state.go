package regress

import (
	"fmt"
	"sort"
	"strings"

	"github.com/RockYYY888/bdi-planlib/bdiplan"
)

// Constraint is an unordered inequality between two terms, stored with the
// lexically smaller term first.
type Constraint [2]string

// NewConstraint normalizes a pair into a Constraint.
func NewConstraint(a, b string) Constraint {
	if a > b {
		a, b = b, a
	}
	return Constraint{a, b}
}

func (c Constraint) String() string {
	return c[0] + " != " + c[1]
}

// State is one node of the regression search: the open subgoals, the
// pairwise inequality constraints, the distance from the goal, and the
// largest fresh-variable index introduced along the path. States are never
// mutated after construction.
type State struct {
	Atoms       []bdiplan.Atom
	Constraints []Constraint
	Depth       int
	MaxVar      int
}

// NewState builds a state with sorted atoms and sorted, deduplicated
// constraints.
func NewState(atoms []bdiplan.Atom, constraints []Constraint, depth, maxVar int) *State {
	s := &State{
		Atoms:  bdiplan.SortedAtoms(atoms),
		Depth:  depth,
		MaxVar: maxVar,
	}
	seen := make(map[Constraint]bool, len(constraints))
	for _, c := range constraints {
		if !seen[c] {
			seen[c] = true
			s.Constraints = append(s.Constraints, c)
		}
	}
	sort.Slice(s.Constraints, func(i, j int) bool {
		if s.Constraints[i][0] != s.Constraints[j][0] {
			return s.Constraints[i][0] < s.Constraints[j][0]
		}
		return s.Constraints[i][1] < s.Constraints[j][1]
	})
	return s
}

// Terms returns every distinct term appearing in atoms or constraints.
func (s *State) Terms() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(t string) {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	for _, a := range s.Atoms {
		for _, arg := range a.Args {
			add(arg)
		}
	}
	for _, c := range s.Constraints {
		add(c[0])
		add(c[1])
	}
	return out
}

func (s *State) String() string {
	atoms := make([]string, len(s.Atoms))
	for i, a := range s.Atoms {
		atoms[i] = a.String()
	}
	cons := make([]string, len(s.Constraints))
	for i, c := range s.Constraints {
		cons[i] = c.String()
	}
	return fmt.Sprintf("State(depth=%d, atoms=[%s], constraints=[%s])",
		s.Depth, strings.Join(atoms, ", "), strings.Join(cons, ", "))
}

// Canonicalize renames the state's variables to ?c1, ?c2, … in order of
// first appearance over the sorted atom list, then over the sorted
// constraint list. States with identical canonicalized forms are isomorphic
// under variable renaming. The converse does not always hold: the atom sort
// runs on the original variable names, so two isomorphic states can sort
// differently and receive different forms.
func (s *State) Canonicalize() *State {
	rename := make(map[string]string)
	next := 1
	assign := func(term string) {
		if bdiplan.IsVariable(term) {
			if _, done := rename[term]; !done {
				rename[term] = fmt.Sprintf("?c%d", next)
				next++
			}
		}
	}

	for _, a := range s.Atoms {
		for _, arg := range a.Args {
			assign(arg)
		}
	}
	for _, c := range s.Constraints {
		assign(c[0])
		assign(c[1])
	}

	atoms := make([]bdiplan.Atom, len(s.Atoms))
	for i, a := range s.Atoms {
		atoms[i] = a.Substitute(rename)
	}
	constraints := make([]Constraint, len(s.Constraints))
	for i, c := range s.Constraints {
		constraints[i] = NewConstraint(applyRename(rename, c[0]), applyRename(rename, c[1]))
	}
	return NewState(atoms, constraints, s.Depth, s.MaxVar)
}

func applyRename(rename map[string]string, term string) string {
	if v, ok := rename[term]; ok {
		return v
	}
	return term
}

// CanonicalKey is the visited-map key: the serialized canonical form.
func (s *State) CanonicalKey() string {
	c := s.Canonicalize()
	atoms := make([]string, len(c.Atoms))
	for i, a := range c.Atoms {
		atoms[i] = a.Key()
	}
	cons := make([]string, len(c.Constraints))
	for i, con := range c.Constraints {
		cons[i] = con[0] + "!=" + con[1]
	}
	return strings.Join(atoms, "|") + "||" + strings.Join(cons, "|")
}
