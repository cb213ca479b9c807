package dfa

import (
	"fmt"
	"strings"

	"github.com/dalzilio/rudd"
)

// DefaultMintermBudget caps how many partitions a single label may expand
// into before refinement gives up on it and keeps the label verbatim.
const DefaultMintermBudget = 1024

// RefineOptions tunes label refinement.
type RefineOptions struct {
	// MintermBudget is the per-label partition cap; zero means
	// DefaultMintermBudget.
	MintermBudget int
}

// RefineResult is a refined automaton plus bookkeeping about the rewrite.
type RefineResult struct {
	DFA *DFA

	// Atoms is the propositional alphabet, in BDD variable order.
	Atoms []string

	// Partitions counts the distinct partition symbols introduced.
	Partitions int

	// KeptVerbatim lists labels retained unchanged because their expansion
	// exceeded the budget.
	KeptVerbatim []string

	Warnings []string
}

// Refine rewrites every transition label into one or more transitions whose
// labels are disjoint: a single literal, or a conjunction of literals when
// one literal cannot express the partition. The union of the partitions of
// a label is exactly the label, so the rewritten automaton accepts the same
// language over the atom alphabet.
//
// Partitioning works per label: the label's DNF disjuncts are made disjoint
// by subtracting, from each disjunct, everything the disjuncts after it
// cover; the remainders are then read back as the disjoint satisfying cubes
// of their BDDs.
func Refine(d *DFA, opts RefineOptions) (*RefineResult, error) {
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

	b, err := rudd.New(len(atoms))
	if err != nil {
		return nil, fmt.Errorf("initializing BDD engine: %w", err)
	}
	index := make(map[string]int, len(atoms))
	for i, a := range atoms {
		index[a] = i
	}

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
		node := exprToBDD(b, expr, index)
		// A tautological label already enables every valuation; leave it.
		if b.Equal(node, b.True()) {
			expansions[t.Label] = expansion{kept: true}
			continue
		}
		symbols, over := partitionLabel(b, expr, index, atoms, budget)
		if over {
			expansions[t.Label] = expansion{kept: true}
			result.KeptVerbatim = append(result.KeptVerbatim, t.Label)
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("label %q exceeds partition budget %d; kept verbatim", t.Label, budget))
			continue
		}
		expansions[t.Label] = expansion{symbols: symbols}
	}

	// Rebuild the transition list, one transition per partition symbol.
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

// partitionLabel computes the disjoint partition symbols of one label.
func partitionLabel(b *rudd.BDD, expr Expr, index map[string]int, atoms []string, budget int) ([]string, bool) {
	disjuncts := DNF(expr)

	var symbols []string
	covered := b.False()
	// Later disjuncts keep their full extent; earlier ones lose whatever
	// the later ones already cover.
	for i := len(disjuncts) - 1; i >= 0; i-- {
		node := conjunctToBDD(b, disjuncts[i], index)
		remainder := b.And(node, b.Not(covered))
		covered = b.Or(covered, node)
		if b.Equal(remainder, b.False()) {
			continue
		}
		cubes := satisfyingCubes(b, remainder, len(atoms))
		if len(symbols)+len(cubes) > budget {
			return nil, true
		}
		for _, cube := range cubes {
			symbols = append(symbols, cubeSymbol(atoms, cube))
		}
	}
	return symbols, false
}

func exprToBDD(b *rudd.BDD, e Expr, index map[string]int) rudd.Node {
	switch e := e.(type) {
	case TrueExpr:
		return b.True()
	case FalseExpr:
		return b.False()
	case VarExpr:
		return b.Ithvar(index[e.Name])
	case NotExpr:
		return b.Not(exprToBDD(b, e.X, index))
	case AndExpr:
		return b.And(exprToBDD(b, e.X, index), exprToBDD(b, e.Y, index))
	case OrExpr:
		return b.Or(exprToBDD(b, e.X, index), exprToBDD(b, e.Y, index))
	}
	return b.False()
}

func conjunctToBDD(b *rudd.BDD, conjunct []Literal, index map[string]int) rudd.Node {
	node := b.True()
	for _, lit := range conjunct {
		if lit.Negated {
			node = b.And(node, b.NIthvar(index[lit.Name]))
		} else {
			node = b.And(node, b.Ithvar(index[lit.Name]))
		}
	}
	return node
}

// satisfyingCubes collects the satisfying cubes of a BDD. Each cube is a
// vector over the variables with values 1 (true), 0 (false) and -1 (free);
// distinct cubes are distinct paths to the true terminal, hence disjoint.
func satisfyingCubes(b *rudd.BDD, node rudd.Node, nvars int) [][]int {
	var cubes [][]int
	b.Allsat(func(varset []int) error {
		cube := make([]int, nvars)
		for i := range cube {
			if i < len(varset) {
				cube[i] = varset[i]
			} else {
				cube[i] = -1
			}
		}
		cubes = append(cubes, cube)
		return nil
	}, node)
	return cubes
}

// cubeSymbol renders a cube as a partition symbol. A cube that fixes
// exactly one atom, positively, is that atom's name; any other cube is the
// conjunction of its fixed literals.
func cubeSymbol(atoms []string, cube []int) string {
	var parts []string
	positives := 0
	for i, v := range cube {
		switch v {
		case 1:
			positives++
			parts = append(parts, atoms[i])
		case 0:
			parts = append(parts, "~"+atoms[i])
		}
	}
	if len(parts) == 1 && positives == 1 {
		return parts[0]
	}
	if len(parts) == 0 {
		return "true"
	}
	return strings.Join(parts, " & ")
}
