// Package grounding relates the flat propositional symbols used on DFA
// edges to the predicate-plus-arguments atoms of the PDDL domain.
package grounding

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/RockYYY888/bdi-planlib/bdiplan"
)

// Entry is the grounded reading of one propositional symbol.
type Entry struct {
	Predicate string   `json:"predicate"`
	Args      []string `json:"args"`
}

// Map is the bijection between propositional symbols and grounded atoms.
type Map struct {
	Atoms      map[string]Entry
	Predicates map[string]int
	Objects    []string
}

type mapJSON struct {
	Atoms      map[string]Entry `json:"atoms"`
	Predicates map[string]struct {
		Arity int `json:"arity"`
	} `json:"predicates"`
	Objects []string `json:"objects"`
}

// Load parses a grounding map from its JSON document.
func Load(data []byte) (*Map, error) {
	var raw mapJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("grounding map: %w", err)
	}
	m := &Map{
		Atoms:      raw.Atoms,
		Predicates: make(map[string]int, len(raw.Predicates)),
		Objects:    raw.Objects,
	}
	if m.Atoms == nil {
		m.Atoms = map[string]Entry{}
	}
	for name, p := range raw.Predicates {
		m.Predicates[name] = p.Arity
	}
	// Predicates and objects referenced only through atoms still count.
	for _, e := range m.Atoms {
		if _, ok := m.Predicates[e.Predicate]; !ok {
			m.Predicates[e.Predicate] = len(e.Args)
		}
		for _, arg := range e.Args {
			if !contains(m.Objects, arg) {
				m.Objects = append(m.Objects, arg)
			}
		}
	}
	return m, nil
}

// LoadFile reads and parses a grounding map file.
func LoadFile(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading grounding map: %w", err)
	}
	return Load(data)
}

// Atom resolves a propositional symbol to its grounded atom. Unknown symbols
// yield *bdiplan.GroundingMapMismatchError.
func (m *Map) Atom(symbol string) (bdiplan.Atom, error) {
	e, ok := m.Atoms[symbol]
	if !ok {
		return bdiplan.Atom{}, &bdiplan.GroundingMapMismatchError{Symbol: symbol}
	}
	return bdiplan.NewAtom(e.Predicate, append([]string(nil), e.Args...)...), nil
}

// Symbol returns the propositional symbol for a predicate-and-arguments
// pair, applying the hyphen encoding.
func (m *Map) Symbol(predicate string, args []string) string {
	return bdiplan.PropositionalSymbol(predicate, args)
}

// SortedSymbols returns the symbol set in lexical order.
func (m *Map) SortedSymbols() []string {
	syms := make([]string, 0, len(m.Atoms))
	for s := range m.Atoms {
		syms = append(syms, s)
	}
	sort.Strings(syms)
	return syms
}

// Validate checks every atom against the declared predicate arities and the
// object registry, returning one message per inconsistency.
func (m *Map) Validate() []string {
	var problems []string
	for _, sym := range m.SortedSymbols() {
		e := m.Atoms[sym]
		if arity, ok := m.Predicates[e.Predicate]; ok && arity != len(e.Args) {
			problems = append(problems, fmt.Sprintf("symbol %s: predicate %s has arity %d, entry has %d args",
				sym, e.Predicate, arity, len(e.Args)))
		}
		for _, arg := range e.Args {
			if !contains(m.Objects, arg) {
				problems = append(problems, fmt.Sprintf("symbol %s: object %s is not registered", sym, arg))
			}
		}
	}
	return problems
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
