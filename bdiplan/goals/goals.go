// Package goals turns refined DFA transition labels into conjunctive goals
// over the PDDL vocabulary, and normalizes grounded goals into parameterized
// schemas so that goals differing only in object identity share one
// regression search.
package goals

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/RockYYY888/bdi-planlib/bdiplan"
	"github.com/RockYYY888/bdi-planlib/bdiplan/dfa"
	"github.com/RockYYY888/bdi-planlib/bdiplan/grounding"
)

// Extract parses a transition label into its DNF and expands each literal
// from a propositional symbol into a grounded atom. The result is one
// conjunctive goal per disjunct; a tautological label yields a single empty
// conjunction. Unknown symbols yield *bdiplan.GroundingMapMismatchError.
func Extract(label string, gmap *grounding.Map) ([][]bdiplan.Atom, error) {
	expr, err := dfa.ParseLabel(label)
	if err != nil {
		return nil, err
	}
	var out [][]bdiplan.Atom
	for _, disjunct := range dfa.DNF(expr) {
		goal := make([]bdiplan.Atom, 0, len(disjunct))
		for _, lit := range disjunct {
			atom, err := gmap.Atom(lit.Name)
			if err != nil {
				return nil, err
			}
			if lit.Negated {
				atom = atom.Negate()
			}
			goal = append(goal, atom)
		}
		out = append(out, goal)
	}
	return out, nil
}

// Schema is a parameterized goal: a conjunction whose constants have been
// renamed to fresh variables, plus the renaming that produced it.
type Schema struct {
	Atoms []bdiplan.Atom

	// Binding maps each original constant to the variable that replaced it.
	Binding map[string]string

	// VarCount is the number of fresh variables introduced.
	VarCount int
}

// Key returns the canonical serialization of the schema, the full-goal
// cache key.
func (s Schema) Key() string {
	return bdiplan.AtomSetKey(s.Atoms)
}

// String renders the schema as a conjunction.
func (s Schema) String() string {
	if len(s.Atoms) == 0 {
		return "true"
	}
	out := ""
	for i, a := range s.Atoms {
		if i > 0 {
			out += " & "
		}
		out += a.String()
	}
	return out
}

var varIndexRe = regexp.MustCompile(`^\?v([0-9]+)$`)

// MaxVarIndex returns the largest ?vN index used by the schema, the
// high-water mark regression starts fresh variables from.
func (s Schema) MaxVarIndex() int {
	max := 0
	for _, a := range s.Atoms {
		for _, arg := range a.Args {
			if m := varIndexRe.FindStringSubmatch(arg); m != nil {
				if n, err := strconv.Atoi(m[1]); err == nil && n > max {
					max = n
				}
			}
		}
	}
	return max
}

// Reparameterize renames every distinct term — constant or variable — to
// ?v1, ?v2, … in first-appearance order over the sorted atom list. Used to
// restate one constituent of a larger schema in standalone form, so that it
// keys the same cache entry as the equivalent directly-extracted goal.
func Reparameterize(atoms []bdiplan.Atom) Schema {
	sorted := bdiplan.SortedAtoms(atoms)

	binding := make(map[string]string)
	next := 1
	for _, a := range sorted {
		for _, arg := range a.Args {
			if _, done := binding[arg]; !done {
				binding[arg] = fmt.Sprintf("?v%d", next)
				next++
			}
		}
	}

	out := make([]bdiplan.Atom, len(sorted))
	for i, a := range sorted {
		out[i] = a.Substitute(binding)
	}
	return Schema{Atoms: out, Binding: binding, VarCount: next - 1}
}

// Normalize renames every distinct constant in the conjunction to a fresh
// variable ?v1, ?v2, … in first-appearance order over the sorted atom list.
// Variables already present in the goal are left alone; fresh names skip
// any ?vN the goal already uses.
func Normalize(goal []bdiplan.Atom) Schema {
	sorted := bdiplan.SortedAtoms(goal)

	used := make(map[string]bool)
	for _, a := range sorted {
		for _, arg := range a.Args {
			if bdiplan.IsVariable(arg) {
				used[arg] = true
			}
		}
	}

	next := 1
	fresh := func() string {
		for {
			name := fmt.Sprintf("?v%d", next)
			next++
			if !used[name] {
				used[name] = true
				return name
			}
		}
	}

	binding := make(map[string]string)
	count := 0
	for _, a := range sorted {
		for _, arg := range a.Args {
			if bdiplan.IsVariable(arg) {
				continue
			}
			if _, done := binding[arg]; !done {
				binding[arg] = fresh()
				count++
			}
		}
	}

	atoms := make([]bdiplan.Atom, len(sorted))
	for i, a := range sorted {
		atoms[i] = a.Substitute(binding)
	}
	return Schema{Atoms: atoms, Binding: binding, VarCount: count}
}
