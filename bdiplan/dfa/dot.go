package dfa

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/graph/formats/dot"
	"gonum.org/v1/gonum/graph/formats/dot/ast"
)

// ParseDOT parses an automaton from DOT text. Two dialects are recognized:
//
//   - MONA-style, as emitted by the LTLf toolchain: default node-shape
//     statements enumerate the accepting and non-accepting state IDs
//     ("node [shape = doublecircle]; 4;"), and "init -> N;" marks the
//     initial state.
//   - Per-node attributes: each state carries its own shape
//     ("s1 [shape=doublecircle]"), with "__start -> s0;" for the initial
//     state.
//
// The pseudo-nodes "init" and "__start" never become states.
func ParseDOT(input string) (*DFA, error) {
	file, err := dot.ParseString(input)
	if err != nil {
		return nil, fmt.Errorf("parsing DOT: %w", err)
	}
	if len(file.Graphs) == 0 {
		return nil, fmt.Errorf("DOT document contains no graph")
	}
	graph := file.Graphs[0]

	d := &DFA{
		Name:      unquote(graph.ID),
		Accepting: make(map[string]bool),
	}

	// The prevailing default node shape; MONA flips it between the
	// accepting and non-accepting enumeration blocks.
	defaultShape := ""

	for _, stmt := range graph.Stmts {
		switch s := stmt.(type) {
		case *ast.AttrStmt:
			if s.Kind != ast.NodeKind {
				continue
			}
			for _, attr := range s.Attrs {
				if strings.ToLower(attr.Key) == "shape" {
					defaultShape = unquote(attr.Val)
				}
			}

		case *ast.NodeStmt:
			id := unquote(s.Node.ID)
			if isPseudoNode(id) {
				continue
			}
			shape := defaultShape
			for _, attr := range s.Attrs {
				if strings.ToLower(attr.Key) == "shape" {
					shape = unquote(attr.Val)
				}
			}
			d.AddState(id)
			if strings.Contains(shape, "doublecircle") {
				d.Accepting[id] = true
			}

		case *ast.EdgeStmt:
			if err := addEdges(d, s); err != nil {
				return nil, err
			}
		}
	}

	return d, nil
}

// addEdges walks an edge statement, following DOT's a -> b -> c chains.
func addEdges(d *DFA, stmt *ast.EdgeStmt) error {
	label := ""
	for _, attr := range stmt.Attrs {
		if strings.ToLower(attr.Key) == "label" {
			label = unquote(attr.Val)
		}
	}

	from, err := vertexID(stmt.From)
	if err != nil {
		return err
	}
	for edge := stmt.To; edge != nil; edge = edge.To {
		to, err := vertexID(edge.Vertex)
		if err != nil {
			return err
		}
		switch {
		case isPseudoNode(from):
			d.AddState(to)
			d.Initial = to
		case isPseudoNode(to):
			// An edge into a pseudo-node carries no automaton semantics.
		default:
			d.AddState(from)
			d.AddState(to)
			d.Transitions = append(d.Transitions, Transition{From: from, To: to, Label: label})
		}
		from = to
	}
	return nil
}

func vertexID(v ast.Vertex) (string, error) {
	node, ok := v.(*ast.Node)
	if !ok {
		return "", fmt.Errorf("subgraph endpoints are not supported")
	}
	return unquote(node.ID), nil
}

func isPseudoNode(id string) bool {
	return id == "init" || id == "__start"
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
