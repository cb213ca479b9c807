// Package bdiplan holds the core vocabulary shared by every stage of the
// plan-library compiler: terms, atoms, the propositional symbol codec and
// the error taxonomy.
//
// A term is a plain string. Variables carry a leading '?' sigil
// (e.g. "?v1"); every other term is a constant. Constants are
// definitionally distinct from one another.
package bdiplan

import (
	"fmt"
	"sort"
	"strings"
)

// IsVariable reports whether a term is a variable.
func IsVariable(term string) bool {
	return len(term) > 0 && term[0] == '?'
}

// Atom is a named predicate applied to a fixed-arity tuple of terms, plus a
// negation flag. Atoms with the same name, argument tuple and flag are equal.
type Atom struct {
	Name    string
	Args    []string
	Negated bool
}

// NewAtom creates a positive atom.
func NewAtom(name string, args ...string) Atom {
	return Atom{Name: name, Args: args}
}

// NewNegAtom creates a negated atom.
func NewNegAtom(name string, args ...string) Atom {
	return Atom{Name: name, Args: args, Negated: true}
}

// Negate returns the atom with the negation flag flipped.
func (a Atom) Negate() Atom {
	return Atom{Name: a.Name, Args: a.Args, Negated: !a.Negated}
}

// Positive returns the positive version of the atom.
func (a Atom) Positive() Atom {
	if !a.Negated {
		return a
	}
	return Atom{Name: a.Name, Args: a.Args}
}

// Key returns the canonical byte form of the atom. Two atoms are equal iff
// their keys are byte-identical, so Key doubles as a map key.
func (a Atom) Key() string {
	var sb strings.Builder
	if a.Negated {
		sb.WriteByte('~')
	}
	sb.WriteString(a.Name)
	if len(a.Args) > 0 {
		sb.WriteByte('(')
		sb.WriteString(strings.Join(a.Args, ","))
		sb.WriteByte(')')
	}
	return sb.String()
}

// String renders the atom in readable form, e.g. "~on(a, b)".
func (a Atom) String() string {
	prefix := ""
	if a.Negated {
		prefix = "~"
	}
	if len(a.Args) == 0 {
		return prefix + a.Name
	}
	return fmt.Sprintf("%s%s(%s)", prefix, a.Name, strings.Join(a.Args, ", "))
}

// Equal reports structural equality.
func (a Atom) Equal(other Atom) bool {
	if a.Name != other.Name || a.Negated != other.Negated || len(a.Args) != len(other.Args) {
		return false
	}
	for i := range a.Args {
		if a.Args[i] != other.Args[i] {
			return false
		}
	}
	return true
}

// Compare orders atoms by (name, args, negated). Negative atoms sort after
// their positive counterparts.
func (a Atom) Compare(other Atom) int {
	if a.Name != other.Name {
		if a.Name < other.Name {
			return -1
		}
		return 1
	}
	n := len(a.Args)
	if len(other.Args) < n {
		n = len(other.Args)
	}
	for i := 0; i < n; i++ {
		if a.Args[i] != other.Args[i] {
			if a.Args[i] < other.Args[i] {
				return -1
			}
			return 1
		}
	}
	if len(a.Args) != len(other.Args) {
		if len(a.Args) < len(other.Args) {
			return -1
		}
		return 1
	}
	if a.Negated != other.Negated {
		if !a.Negated {
			return -1
		}
		return 1
	}
	return 0
}

// Substitute applies a term binding to the atom's arguments. Terms without
// an entry in the binding are left unchanged.
func (a Atom) Substitute(binding map[string]string) Atom {
	if len(binding) == 0 || len(a.Args) == 0 {
		return a
	}
	args := make([]string, len(a.Args))
	for i, arg := range a.Args {
		if repl, ok := binding[arg]; ok {
			args[i] = repl
		} else {
			args[i] = arg
		}
	}
	return Atom{Name: a.Name, Args: args, Negated: a.Negated}
}

// Variables returns the variable terms of the atom in argument order,
// without duplicates.
func (a Atom) Variables() []string {
	var vars []string
	seen := make(map[string]bool)
	for _, arg := range a.Args {
		if IsVariable(arg) && !seen[arg] {
			seen[arg] = true
			vars = append(vars, arg)
		}
	}
	return vars
}

// Grounded reports whether the atom contains no variables.
func (a Atom) Grounded() bool {
	for _, arg := range a.Args {
		if IsVariable(arg) {
			return false
		}
	}
	return true
}

// SortAtoms sorts atoms in place by their canonical ordering.
func SortAtoms(atoms []Atom) {
	sort.Slice(atoms, func(i, j int) bool {
		return atoms[i].Compare(atoms[j]) < 0
	})
}

// SortedAtoms returns a sorted copy without mutating the input.
func SortedAtoms(atoms []Atom) []Atom {
	out := make([]Atom, len(atoms))
	copy(out, atoms)
	SortAtoms(out)
	return out
}

// AtomSetKey serializes a set of atoms to a canonical string. Used for cache
// keys and visited-map keys.
func AtomSetKey(atoms []Atom) string {
	sorted := SortedAtoms(atoms)
	keys := make([]string, len(sorted))
	for i, a := range sorted {
		keys[i] = a.Key()
	}
	return strings.Join(keys, "|")
}
