// Package regress implements the lifted backward-regression planner: it
// explores goal-regressed state schemas with unbound variables under
// inequality constraints and synthesized domain invariants, and records the
// result as a state graph for the plan emitter.
package regress

import "github.com/RockYYY888/bdi-planlib/bdiplan"

// Binding maps action parameter variables to the terms they take.
type Binding map[string]string

// Clone copies a binding.
func (b Binding) Clone() Binding {
	out := make(Binding, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Apply resolves a term through the binding, returning it unchanged when
// unbound.
func (b Binding) Apply(term string) string {
	if v, ok := b[term]; ok {
		return v
	}
	return term
}

// Match unifies an action-schema atom (the pattern) against a goal atom
// (the target). Pattern variables bind to the target's terms; constants
// unify only with equal constants; a variable bound twice must bind to the
// same term. Predicate name and arity must agree. Negation flags are not
// compared: callers match positive forms.
//
// Terms are flat, so the occurs check degenerates to the repeat-binding
// consistency test.
func Match(pattern, target bdiplan.Atom) (Binding, bool) {
	if pattern.Name != target.Name || len(pattern.Args) != len(target.Args) {
		return nil, false
	}
	binding := make(Binding)
	for i, parg := range pattern.Args {
		targ := target.Args[i]
		if bdiplan.IsVariable(parg) {
			if bound, ok := binding[parg]; ok {
				if bound != targ {
					return nil, false
				}
				continue
			}
			binding[parg] = targ
			continue
		}
		// Pattern constant: must match the target term exactly.
		if parg != targ {
			return nil, false
		}
	}
	return binding, true
}
