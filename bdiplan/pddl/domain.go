// Package pddl loads PDDL domain files into typed action schemas.
//
// The loader keeps negative preconditions and delete effects as positive
// atoms together with their role, so regression can reason about both signs
// uniformly. Parameter inequality clauses (not (= ?x ?y)) are extracted by a
// targeted pass and kept separate from ordinary preconditions.
package pddl

import (
	"fmt"
	"os"
	"strings"

	"github.com/RockYYY888/bdi-planlib/bdiplan"
)

// Param is one typed action parameter.
type Param struct {
	Var  string
	Type string
}

// Action is a parsed PDDL action schema.
type Action struct {
	Name   string
	Params []Param

	// Preconditions, separated by sign. NegPre atoms are stored positive;
	// their presence in a state is what is forbidden.
	PosPre []bdiplan.Atom
	NegPre []bdiplan.Atom

	// Effects. Del atoms are stored positive: they are the atoms removed.
	Add []bdiplan.Atom
	Del []bdiplan.Atom

	// Explicit (not (= ?x ?y)) clauses, each pair ordered low/high.
	Inequalities [][2]string
}

// ParamVars returns the parameter variable names in declaration order.
func (a *Action) ParamVars() []string {
	vars := make([]string, len(a.Params))
	for i, p := range a.Params {
		vars[i] = p.Var
	}
	return vars
}

// Domain is a parsed PDDL domain.
type Domain struct {
	Name         string
	Requirements []string
	Types        []string
	Constants    []string

	// Predicates maps declared predicate names to their arity. Nil when the
	// domain has no :predicates block.
	Predicates map[string]int

	Actions []*Action

	// Warnings collects unsupported constructs that were skipped.
	Warnings []string
}

// Action returns the schema with the given name, or nil.
func (d *Domain) Action(name string) *Action {
	for _, a := range d.Actions {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// ParseDomainFile reads and parses a PDDL domain file.
func ParseDomainFile(path string) (*Domain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading domain: %w", err)
	}
	return ParseDomain(string(data))
}

// ParseDomain parses PDDL domain text into a Domain. Syntax problems and
// schema-level inconsistencies surface as *bdiplan.DomainSyntaxError.
func ParseDomain(input string) (*Domain, error) {
	top, err := ParseSExpressions(input)
	if err != nil {
		return nil, &bdiplan.DomainSyntaxError{Msg: err.Error()}
	}
	if len(top) == 0 {
		return nil, &bdiplan.DomainSyntaxError{Msg: "empty document"}
	}
	root := top[0]
	if root.Head() != "define" {
		return nil, bdiplan.DomainSyntaxErrorf("expected (define ...), got %q", root.Head())
	}

	d := &Domain{}
	for _, node := range root.Nodes[1:] {
		if !node.List || len(node.Nodes) == 0 {
			continue
		}
		switch node.Head() {
		case "domain":
			if len(node.Nodes) >= 2 && node.Nodes[1].IsAtom() {
				d.Name = node.Nodes[1].Value
			}
		case ":requirements":
			for _, n := range node.Nodes[1:] {
				if n.IsAtom() {
					d.Requirements = append(d.Requirements, n.Value)
				}
			}
		case ":types":
			for _, n := range node.Nodes[1:] {
				if n.IsAtom() && n.Value != "-" {
					d.Types = append(d.Types, n.Value)
				}
			}
		case ":constants":
			for _, n := range node.Nodes[1:] {
				if n.IsAtom() && n.Value != "-" {
					d.Constants = append(d.Constants, n.Value)
				}
			}
		case ":predicates":
			d.Predicates = make(map[string]int)
			for _, n := range node.Nodes[1:] {
				if !n.List || len(n.Nodes) == 0 || !n.Nodes[0].IsAtom() {
					return nil, bdiplan.DomainSyntaxErrorf("malformed predicate declaration at %d:%d", n.Line, n.Col)
				}
				name := strings.ToLower(n.Nodes[0].Value)
				arity := 0
				for _, arg := range n.Nodes[1:] {
					if arg.IsAtom() && strings.HasPrefix(arg.Value, "?") {
						arity++
					}
				}
				d.Predicates[name] = arity
			}
		case ":action":
			action, warnings, err := parseAction(node)
			if err != nil {
				return nil, err
			}
			d.Warnings = append(d.Warnings, warnings...)
			d.Actions = append(d.Actions, action)
		case ":functions":
			d.Warnings = append(d.Warnings, "numeric fluents (:functions) are not supported; ignored")
		default:
			d.Warnings = append(d.Warnings, fmt.Sprintf("unrecognized section %s ignored", node.Head()))
		}
	}

	for _, a := range d.Actions {
		if err := validateAction(d, a); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func parseAction(node *SExp) (*Action, []string, error) {
	if len(node.Nodes) < 2 || !node.Nodes[1].IsAtom() {
		return nil, nil, bdiplan.DomainSyntaxErrorf("action without a name at %d:%d", node.Line, node.Col)
	}
	a := &Action{Name: strings.ToLower(node.Nodes[1].Value)}
	var warnings []string

	i := 2
	for i < len(node.Nodes) {
		key := node.Nodes[i]
		if !key.IsAtom() || !strings.HasPrefix(key.Value, ":") {
			return nil, nil, bdiplan.DomainSyntaxErrorf("action %s: expected keyword at %d:%d", a.Name, key.Line, key.Col)
		}
		if i+1 >= len(node.Nodes) {
			return nil, nil, bdiplan.DomainSyntaxErrorf("action %s: %s has no value", a.Name, key.Value)
		}
		value := node.Nodes[i+1]
		switch strings.ToLower(key.Value) {
		case ":parameters":
			params, err := parseTypedVariables(value)
			if err != nil {
				return nil, nil, bdiplan.DomainSyntaxErrorf("action %s: %v", a.Name, err)
			}
			a.Params = params
		case ":precondition":
			w, err := parseCondition(a, value)
			if err != nil {
				return nil, nil, err
			}
			warnings = append(warnings, w...)
		case ":effect":
			w, err := parseEffect(a, value)
			if err != nil {
				return nil, nil, err
			}
			warnings = append(warnings, w...)
		default:
			warnings = append(warnings, fmt.Sprintf("action %s: unsupported clause %s ignored", a.Name, key.Value))
		}
		i += 2
	}
	return a, warnings, nil
}

// parseTypedVariables reads a PDDL typed variable list such as
// (?b1 ?b2 - block ?l - location).
func parseTypedVariables(node *SExp) ([]Param, error) {
	if !node.List {
		return nil, fmt.Errorf("parameter list must be a list")
	}
	var params []Param
	var pending []string
	i := 0
	for i < len(node.Nodes) {
		n := node.Nodes[i]
		if !n.IsAtom() {
			return nil, fmt.Errorf("unexpected list inside parameters at %d:%d", n.Line, n.Col)
		}
		if n.Value == "-" {
			if i+1 >= len(node.Nodes) || !node.Nodes[i+1].IsAtom() {
				return nil, fmt.Errorf("dangling '-' in parameter list")
			}
			typ := strings.ToLower(node.Nodes[i+1].Value)
			for _, v := range pending {
				params = append(params, Param{Var: v, Type: typ})
			}
			pending = pending[:0]
			i += 2
			continue
		}
		if !strings.HasPrefix(n.Value, "?") {
			return nil, fmt.Errorf("parameter %q is not a variable", n.Value)
		}
		pending = append(pending, strings.ToLower(n.Value))
		i++
	}
	for _, v := range pending {
		params = append(params, Param{Var: v})
	}
	return params, nil
}

var unsupportedHeads = map[string]bool{
	"when": true, "forall": true, "exists": true, "oneof": true,
	"increase": true, "decrease": true, "assign": true,
	"probabilistic": true, "scale-up": true, "scale-down": true,
}

func parseCondition(a *Action, node *SExp) ([]string, error) {
	var warnings []string
	var walk func(n *SExp, negated bool) error
	walk = func(n *SExp, negated bool) error {
		if !n.List || len(n.Nodes) == 0 {
			return bdiplan.DomainSyntaxErrorf("action %s: malformed precondition at %d:%d", a.Name, n.Line, n.Col)
		}
		switch head := n.Head(); {
		case head == "and":
			for _, child := range n.Nodes[1:] {
				if err := walk(child, negated); err != nil {
					return err
				}
			}
			return nil
		case head == "not":
			if len(n.Nodes) != 2 {
				return bdiplan.DomainSyntaxErrorf("action %s: (not ...) takes one argument", a.Name)
			}
			inner := n.Nodes[1]
			// (not (= ?x ?y)) is an inequality constraint, not an atom.
			if inner.Head() == "=" {
				if len(inner.Nodes) != 3 || !inner.Nodes[1].IsAtom() || !inner.Nodes[2].IsAtom() {
					return bdiplan.DomainSyntaxErrorf("action %s: malformed inequality", a.Name)
				}
				v1 := strings.ToLower(inner.Nodes[1].Value)
				v2 := strings.ToLower(inner.Nodes[2].Value)
				if v1 > v2 {
					v1, v2 = v2, v1
				}
				a.Inequalities = append(a.Inequalities, [2]string{v1, v2})
				return nil
			}
			return walk(inner, !negated)
		case head == "=":
			warnings = append(warnings, fmt.Sprintf("action %s: positive equality precondition ignored", a.Name))
			return nil
		case unsupportedHeads[head]:
			warnings = append(warnings, fmt.Sprintf("action %s: unsupported construct (%s ...) ignored", a.Name, head))
			return nil
		default:
			atom, err := sexpAtom(n)
			if err != nil {
				return bdiplan.DomainSyntaxErrorf("action %s: %v", a.Name, err)
			}
			if negated {
				a.NegPre = append(a.NegPre, atom)
			} else {
				a.PosPre = append(a.PosPre, atom)
			}
			return nil
		}
	}
	if err := walk(node, false); err != nil {
		return warnings, err
	}
	return warnings, nil
}

func parseEffect(a *Action, node *SExp) ([]string, error) {
	var warnings []string
	var walk func(n *SExp, negated bool) error
	walk = func(n *SExp, negated bool) error {
		if !n.List || len(n.Nodes) == 0 {
			return bdiplan.DomainSyntaxErrorf("action %s: malformed effect at %d:%d", a.Name, n.Line, n.Col)
		}
		switch head := n.Head(); {
		case head == "and":
			for _, child := range n.Nodes[1:] {
				if err := walk(child, negated); err != nil {
					return err
				}
			}
			return nil
		case head == "not":
			if len(n.Nodes) != 2 {
				return bdiplan.DomainSyntaxErrorf("action %s: (not ...) takes one argument", a.Name)
			}
			return walk(n.Nodes[1], !negated)
		case unsupportedHeads[head]:
			warnings = append(warnings, fmt.Sprintf("action %s: unsupported construct (%s ...) ignored", a.Name, head))
			return nil
		default:
			atom, err := sexpAtom(n)
			if err != nil {
				return bdiplan.DomainSyntaxErrorf("action %s: %v", a.Name, err)
			}
			if negated {
				a.Del = append(a.Del, atom)
			} else {
				a.Add = append(a.Add, atom)
			}
			return nil
		}
	}
	if err := walk(node, false); err != nil {
		return warnings, err
	}
	return warnings, nil
}

// sexpAtom converts (pred a ?b ...) into an Atom.
func sexpAtom(n *SExp) (bdiplan.Atom, error) {
	if !n.Nodes[0].IsAtom() {
		return bdiplan.Atom{}, fmt.Errorf("predicate name expected at %d:%d", n.Line, n.Col)
	}
	atom := bdiplan.Atom{Name: strings.ToLower(n.Nodes[0].Value)}
	for _, arg := range n.Nodes[1:] {
		if !arg.IsAtom() {
			return bdiplan.Atom{}, fmt.Errorf("nested list inside predicate %s", atom.Name)
		}
		atom.Args = append(atom.Args, strings.ToLower(arg.Value))
	}
	return atom, nil
}

func validateAction(d *Domain, a *Action) error {
	declared := make(map[string]bool, len(a.Params))
	for _, p := range a.Params {
		declared[p.Var] = true
	}
	checkVars := func(atoms []bdiplan.Atom, role string) error {
		for _, atom := range atoms {
			for _, v := range atom.Variables() {
				if !declared[v] {
					return bdiplan.DomainSyntaxErrorf("action %s: variable %s in %s is not a parameter", a.Name, v, role)
				}
			}
		}
		return nil
	}
	if err := checkVars(a.PosPre, "precondition"); err != nil {
		return err
	}
	if err := checkVars(a.NegPre, "precondition"); err != nil {
		return err
	}
	if err := checkVars(a.Add, "effect"); err != nil {
		return err
	}
	if err := checkVars(a.Del, "effect"); err != nil {
		return err
	}
	for _, pair := range a.Inequalities {
		for _, v := range pair {
			if bdiplan.IsVariable(v) && !declared[v] {
				return bdiplan.DomainSyntaxErrorf("action %s: variable %s in inequality is not a parameter", a.Name, v)
			}
		}
	}

	// An action adding and deleting the same literal is contradictory.
	for _, add := range a.Add {
		for _, del := range a.Del {
			if add.Equal(del) {
				return bdiplan.DomainSyntaxErrorf("action %s: literal %s both added and deleted", a.Name, add)
			}
		}
	}

	if d.Predicates != nil {
		checkDeclared := func(atoms []bdiplan.Atom) error {
			for _, atom := range atoms {
				arity, ok := d.Predicates[atom.Name]
				if !ok {
					return bdiplan.DomainSyntaxErrorf("action %s: predicate %s is not declared", a.Name, atom.Name)
				}
				if arity != len(atom.Args) {
					return bdiplan.DomainSyntaxErrorf("action %s: predicate %s used with arity %d, declared %d",
						a.Name, atom.Name, len(atom.Args), arity)
				}
			}
			return nil
		}
		for _, atoms := range [][]bdiplan.Atom{a.PosPre, a.NegPre, a.Add, a.Del} {
			if err := checkDeclared(atoms); err != nil {
				return err
			}
		}
	}
	return nil
}
