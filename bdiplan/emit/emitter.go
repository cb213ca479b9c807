// Package emit renders regression state graphs as an AgentSpeak plan
// library: one reactive rule per (state, action choice), a parameterized
// action rule per domain action, and success/failure handlers per goal.
package emit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/RockYYY888/bdi-planlib/bdiplan"
	"github.com/RockYYY888/bdi-planlib/bdiplan/goals"
	"github.com/RockYYY888/bdi-planlib/bdiplan/pddl"
	"github.com/RockYYY888/bdi-planlib/bdiplan/regress"
)

// Emitter renders plan-library sections for one domain and object set.
type Emitter struct {
	domain  *pddl.Domain
	objects []string
}

// New creates an emitter.
func New(domain *pddl.Domain, objects []string) *Emitter {
	return &Emitter{domain: domain, objects: objects}
}

// SharedSection renders the components every goal shares: the initial
// beliefs and one parameterized action rule per action schema used by any
// of the graphs.
func (e *Emitter) SharedSection(graphs []*regress.Graph) string {
	var sections []string
	sections = append(sections, "/* ========== Shared Components ========== */")
	sections = append(sections, e.initialBeliefs())

	used := make(map[string]bool)
	for _, g := range graphs {
		for _, edge := range g.Edges {
			used[edge.Action.Name] = true
		}
	}

	var rules []string
	rules = append(rules, "/* Domain Action Rules */")
	for _, action := range e.domain.Actions {
		if !used[action.Name] {
			continue
		}
		rules = append(rules, e.ActionRule(action))
	}
	sections = append(sections, strings.Join(rules, "\n\n"))

	return strings.Join(sections, "\n\n")
}

// initialBeliefs renders the bench start state. Domains declaring the
// table vocabulary get every object on the table, clear, with an empty
// hand; anything else leaves the beliefs to the environment.
func (e *Emitter) initialBeliefs() string {
	lines := []string{"/* Initial Beliefs */"}
	if e.hasTableVocabulary() {
		for _, obj := range e.objects {
			lines = append(lines, fmt.Sprintf("ontable(%s).", obj))
			lines = append(lines, fmt.Sprintf("clear(%s).", obj))
		}
		lines = append(lines, "handempty.")
	} else {
		lines = append(lines, "/* initial beliefs are supplied by the environment */")
	}
	return strings.Join(lines, "\n")
}

func (e *Emitter) hasTableVocabulary() bool {
	if e.domain.Predicates == nil {
		return false
	}
	for _, name := range []string{"ontable", "clear", "handempty"} {
		if _, ok := e.domain.Predicates[name]; !ok {
			return false
		}
	}
	return true
}

// ActionRule renders one parameterized rule for a domain action: the body
// calls the environment's primitive, then applies the belief delta —
// add-effects first, then delete-effects.
func (e *Emitter) ActionRule(action *pddl.Action) string {
	name := identifier(action.Name)
	params := make([]string, len(action.Params))
	binding := make(map[string]string, len(action.Params))
	for i, p := range action.Params {
		v := agentVar(p.Var)
		params[i] = v
		binding[p.Var] = v
	}

	context := e.contextOf(
		substituteAll(action.PosPre, binding),
		substituteAll(action.NegPre, binding))

	var body []string
	if len(params) > 0 {
		body = append(body, fmt.Sprintf("%s_physical(%s)", name, strings.Join(params, ", ")))
	} else {
		body = append(body, name+"_physical")
	}
	for _, add := range substituteAll(action.Add, binding) {
		body = append(body, "+"+belief(add))
	}
	for _, del := range substituteAll(action.Del, binding) {
		body = append(body, "-"+belief(del))
	}

	head := name
	if len(params) > 0 {
		head = fmt.Sprintf("%s(%s)", name, strings.Join(params, ", "))
	}
	return fmt.Sprintf("+!%s : %s <-\n    %s.", head, context, strings.Join(body, ";\n    "))
}

// GoalSection renders the goal-achievement rules of one goal schema,
// followed by its success and failure rules. A rejected goal yields only
// the failure rule.
func (e *Emitter) GoalSection(schema goals.Schema, g *regress.Graph) string {
	pattern := GoalPattern(schema)

	var sections []string
	sections = append(sections, fmt.Sprintf("/* ========== Goal: %s ========== */", schema.String()))

	if !g.GoalRejected {
		// One rule per (source state, action choice). Distinct bindings of
		// one action can regress to the same predecessor, so identical
		// rules are emitted once.
		var rules []string
		seen := make(map[string]bool)
		for _, key := range g.Order {
			if key == g.Goal {
				continue
			}
			for _, edge := range g.Outgoing(key) {
				rule := e.goalRule(pattern, g.State(key), edge)
				if !seen[rule] {
					seen[rule] = true
					rules = append(rules, rule)
				}
			}
		}
		if len(rules) > 0 {
			sections = append(sections, strings.Join(rules, "\n\n"))
		}
		sections = append(sections, e.successRule(pattern, g.GoalState()))
	}
	sections = append(sections, e.failureRule(pattern))

	return strings.Join(sections, "\n\n")
}

// goalRule renders the reactive rule for one state: achieve the missing
// preconditions, take the action, then re-assert the goal so the library
// is retried under the updated beliefs.
func (e *Emitter) goalRule(pattern string, state *regress.State, next regress.Edge) string {
	context := stateContext(state)

	have := make(map[string]bool, len(state.Atoms))
	for _, a := range state.Atoms {
		have[a.Key()] = true
	}

	var body []string
	for _, pre := range next.Preconds {
		if !have[pre.Key()] {
			body = append(body, "!"+belief(pre))
		}
	}
	body = append(body, "!"+actionCall(next))
	body = append(body, "!"+pattern)

	return fmt.Sprintf("+!%s : %s <-\n    %s.", pattern, context, strings.Join(body, ";\n    "))
}

func (e *Emitter) successRule(pattern string, goal *regress.State) string {
	return fmt.Sprintf("+!%s : %s <-\n    .print(\"Goal %s achieved.\").",
		pattern, stateContext(goal), pattern)
}

func (e *Emitter) failureRule(pattern string) string {
	return fmt.Sprintf("-!%s : true <-\n    .print(\"Failed to achieve goal %s\");\n    .fail.",
		pattern, pattern)
}

func (e *Emitter) contextOf(pos, neg []bdiplan.Atom) string {
	var parts []string
	for _, a := range pos {
		parts = append(parts, belief(a))
	}
	for _, a := range neg {
		parts = append(parts, "~"+belief(a))
	}
	if len(parts) == 0 {
		return "true"
	}
	return strings.Join(parts, " & ")
}

// GoalPattern renders a goal schema as its trigger. A single atom keeps
// its shape; conjunctions collapse into one flat goal name.
func GoalPattern(schema goals.Schema) string {
	if len(schema.Atoms) == 1 {
		return belief(schema.Atoms[0])
	}
	parts := make([]string, len(schema.Atoms))
	for i, a := range schema.Atoms {
		parts[i] = belief(a)
	}
	flat := strings.Join(parts, "_and_")
	flat = strings.NewReplacer("(", "_", ")", "", ", ", "_").Replace(flat)
	return flat
}

// stateContext renders a state's atoms as the rule context.
func stateContext(s *regress.State) string {
	if len(s.Atoms) == 0 {
		return "true"
	}
	parts := make([]string, len(s.Atoms))
	for i, a := range s.Atoms {
		parts[i] = belief(a)
	}
	return strings.Join(parts, " & ")
}

func actionCall(edge regress.Edge) string {
	name := identifier(edge.Action.Name)
	if len(edge.Args) == 0 {
		return name
	}
	args := make([]string, len(edge.Args))
	for i, arg := range edge.Args {
		args[i] = agentVar(arg)
	}
	return fmt.Sprintf("%s(%s)", name, strings.Join(args, ", "))
}

// belief renders an atom as an AgentSpeak literal: variables become
// capitalized identifiers, strong negation keeps its tilde.
func belief(a bdiplan.Atom) string {
	prefix := ""
	if a.Negated {
		prefix = "~"
	}
	name := identifier(a.Name)
	if len(a.Args) == 0 {
		return prefix + name
	}
	args := make([]string, len(a.Args))
	for i, arg := range a.Args {
		args[i] = agentVar(arg)
	}
	return fmt.Sprintf("%s%s(%s)", prefix, name, strings.Join(args, ", "))
}

// agentVar maps a planner term to AgentSpeak syntax: ?v1 becomes V1,
// constants pass through.
func agentVar(term string) string {
	if !bdiplan.IsVariable(term) {
		return term
	}
	name := term[1:]
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func identifier(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

func substituteAll(atoms []bdiplan.Atom, binding map[string]string) []bdiplan.Atom {
	out := make([]bdiplan.Atom, len(atoms))
	for i, a := range atoms {
		out[i] = a.Substitute(binding)
	}
	return out
}

// SortedObjects returns the object list sorted, for deterministic belief
// emission.
func SortedObjects(objects []string) []string {
	out := append([]string(nil), objects...)
	sort.Strings(out)
	return out
}
