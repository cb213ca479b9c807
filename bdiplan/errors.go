package bdiplan

import "fmt"

// DomainSyntaxError reports an unreadable PDDL domain: unbalanced
// parentheses, unrecognized keyword structure, an action that adds and
// deletes the same literal, or an undeclared predicate in a schema.
type DomainSyntaxError struct {
	Msg string
}

func (e *DomainSyntaxError) Error() string {
	return "domain syntax error: " + e.Msg
}

// DomainSyntaxErrorf builds a DomainSyntaxError with a formatted message.
func DomainSyntaxErrorf(format string, args ...interface{}) error {
	return &DomainSyntaxError{Msg: fmt.Sprintf(format, args...)}
}

// LabelParseError reports a malformed boolean expression on a DFA edge.
type LabelParseError struct {
	Label string
	Msg   string
}

func (e *LabelParseError) Error() string {
	return fmt.Sprintf("label parse error in %q: %s", e.Label, e.Msg)
}

// TooManyPredicatesError reports that the enumerative refiner was asked to
// enumerate more atoms than its cap allows.
type TooManyPredicatesError struct {
	Count int
	Max   int
}

func (e *TooManyPredicatesError) Error() string {
	return fmt.Sprintf("too many predicates for enumerative refinement: %d (max %d)", e.Count, e.Max)
}

// GroundingMapMismatchError reports a DFA atom with no grounding-map entry.
type GroundingMapMismatchError struct {
	Symbol string
}

func (e *GroundingMapMismatchError) Error() string {
	return fmt.Sprintf("grounding map has no entry for symbol %q", e.Symbol)
}
