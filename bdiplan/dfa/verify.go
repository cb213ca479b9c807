package dfa

import (
	"fmt"

	"github.com/RockYYY888/bdi-planlib/bdiplan"
)

// VerifyEquivalence exhaustively compares the refined automaton against the
// original: for every state and every valuation over the union alphabet,
// the enabled successor sets must agree. Returns one message per
// disagreement. Alphabets above maxAtoms are refused, since the check is
// exponential.
func VerifyEquivalence(orig, refined *DFA, maxAtoms int) ([]string, error) {
	atoms, err := unionAlphabet(orig, refined)
	if err != nil {
		return nil, err
	}
	if len(atoms) > maxAtoms {
		return nil, &bdiplan.TooManyPredicatesError{Count: len(atoms), Max: maxAtoms}
	}

	states := make(map[string]bool)
	for _, s := range orig.States {
		states[s] = true
	}
	for _, s := range refined.States {
		states[s] = true
	}

	var disagreements []string
	for _, valuation := range allValuations(atoms) {
		for _, t := range orig.States {
			if !states[t] {
				continue
			}
			a, err := orig.EnabledSuccessors(t, valuation.assignment)
			if err != nil {
				return nil, err
			}
			b, err := refined.EnabledSuccessors(t, valuation.assignment)
			if err != nil {
				return nil, err
			}
			if !sameSuccessors(a, b) {
				disagreements = append(disagreements,
					fmt.Sprintf("state %s under %v: original -> %v, refined -> %v",
						t, renderValuation(atoms, valuation.bits), a, b))
			}
		}
	}
	return disagreements, nil
}

func unionAlphabet(a, b *DFA) ([]string, error) {
	aa, err := a.Alphabet()
	if err != nil {
		return nil, err
	}
	ba, err := b.Alphabet()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(aa))
	out := append([]string(nil), aa...)
	for _, s := range aa {
		seen[s] = true
	}
	for _, s := range ba {
		if !seen[s] {
			out = append(out, s)
		}
	}
	return out, nil
}

func sameSuccessors(a, b []string) bool {
	// Duplicate successors collapse: the refined automaton may enable the
	// same target through several disjoint partitions of distinct original
	// labels only if the original did too, so set comparison suffices.
	setA := make(map[string]bool, len(a))
	for _, s := range a {
		setA[s] = true
	}
	setB := make(map[string]bool, len(b))
	for _, s := range b {
		setB[s] = true
	}
	if len(setA) != len(setB) {
		return false
	}
	for s := range setA {
		if !setB[s] {
			return false
		}
	}
	return true
}

func renderValuation(atoms []string, bits []bool) []string {
	out := make([]string, len(atoms))
	for i, a := range atoms {
		if bits[i] {
			out[i] = a
		} else {
			out[i] = "~" + a
		}
	}
	return out
}
