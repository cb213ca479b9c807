package dfa

import (
	"fmt"
	"strings"

	"github.com/RockYYY888/bdi-planlib/bdiplan"
)

// MaxEnumerativeAtoms bounds the alphabet size the enumerative refiner will
// accept: 2^12 valuations is the largest table worth materializing.
const MaxEnumerativeAtoms = 12

// RefineEnumerative rewrites transition labels by explicit valuation
// enumeration. It is the fallback for when the BDD engine is not wanted;
// alphabets larger than MaxEnumerativeAtoms yield
// *bdiplan.TooManyPredicatesError.
func RefineEnumerative(d *DFA, opts RefineOptions) (*RefineResult, error) {
	budget := opts.MintermBudget
	if budget <= 0 {
		budget = DefaultMintermBudget
	}

	atoms, err := d.Alphabet()
	if err != nil {
		return nil, err
	}
	result := &RefineResult{DFA: d.Clone(), Atoms: atoms}
	if len(atoms) == 0 {
		return result, nil
	}
	if len(atoms) > MaxEnumerativeAtoms {
		return nil, &bdiplan.TooManyPredicatesError{Count: len(atoms), Max: MaxEnumerativeAtoms}
	}

	valuations := allValuations(atoms)

	type expansion struct {
		symbols []string
		kept    bool
	}
	expansions := make(map[string]expansion)
	for _, t := range d.Transitions {
		if _, done := expansions[t.Label]; done {
			continue
		}
		expr, err := ParseLabel(t.Label)
		if err != nil {
			return nil, err
		}
		if _, isTrue := expr.(TrueExpr); isTrue {
			expansions[t.Label] = expansion{kept: true}
			continue
		}
		var symbols []string
		overBudget := false
		tautology := true
		for _, valuation := range valuations {
			if !expr.Eval(valuation.assignment) {
				tautology = false
				continue
			}
			if len(symbols) >= budget {
				overBudget = true
				break
			}
			symbols = append(symbols, mintermSymbol(atoms, valuation.bits))
		}
		switch {
		case overBudget:
			expansions[t.Label] = expansion{kept: true}
			result.KeptVerbatim = append(result.KeptVerbatim, t.Label)
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("label %q exceeds partition budget %d; kept verbatim", t.Label, budget))
		case tautology:
			expansions[t.Label] = expansion{kept: true}
		default:
			expansions[t.Label] = expansion{symbols: symbols}
		}
	}

	partitionSet := make(map[string]bool)
	var rewritten []Transition
	for _, t := range d.Transitions {
		exp := expansions[t.Label]
		if exp.kept {
			rewritten = append(rewritten, t)
			continue
		}
		for _, sym := range exp.symbols {
			partitionSet[sym] = true
			rewritten = append(rewritten, Transition{From: t.From, To: t.To, Label: sym})
		}
	}
	result.DFA.Transitions = rewritten
	result.Partitions = len(partitionSet)
	return result, nil
}

type valuation struct {
	bits       []bool
	assignment map[string]bool
}

// allValuations enumerates every complete assignment over the atoms, false
// rows first.
func allValuations(atoms []string) []valuation {
	n := len(atoms)
	out := make([]valuation, 0, 1<<uint(n))
	for v := 0; v < 1<<uint(n); v++ {
		bits := make([]bool, n)
		assignment := make(map[string]bool, n)
		for i := 0; i < n; i++ {
			bit := v>>(uint(n-1-i))&1 == 1
			bits[i] = bit
			assignment[atoms[i]] = bit
		}
		out = append(out, valuation{bits: bits, assignment: assignment})
	}
	return out
}

// mintermSymbol renders a complete assignment as a label. The full
// conjunction is kept whenever more than one atom exists: collapsing a
// minterm with a single true atom to the bare atom name would widen its
// meaning (the other atoms become free) and break language equivalence.
func mintermSymbol(atoms []string, bits []bool) string {
	if len(atoms) == 1 && bits[0] {
		return atoms[0]
	}
	parts := make([]string, len(atoms))
	for i, a := range atoms {
		if bits[i] {
			parts[i] = a
		} else {
			parts[i] = "~" + a
		}
	}
	return strings.Join(parts, " & ")
}
