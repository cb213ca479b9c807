package bdiplan

import "strings"

// Propositional symbols flatten a predicate-plus-arguments pair into a
// single identifier the LTLf toolchain can carry on DFA edges:
//
//	on(a, b)            -> on_a_b
//	handempty           -> handempty
//	on(block-1, table)  -> on_blockhh1_table
//
// Hyphens are not legal inside those identifiers, so every '-' in a
// constant is replaced by the two-letter marker "hh" before flattening.
// DecodeHyphens reverses the replacement only for constant names that never
// contain the literal marker themselves; nothing here or in the grounding
// map checks for that.
const hyphenMarker = "hh"

// EncodeHyphens replaces every ASCII hyphen with the marker.
func EncodeHyphens(s string) string {
	return strings.ReplaceAll(s, "-", hyphenMarker)
}

// DecodeHyphens restores hyphens from the marker.
func DecodeHyphens(s string) string {
	return strings.ReplaceAll(s, hyphenMarker, "-")
}

// PropositionalSymbol builds the flat symbol for a predicate applied to
// constant arguments. Names and arguments are lowercased so the symbol is a
// valid LTLf atomic proposition ([a-z][a-z0-9_]*).
func PropositionalSymbol(predicate string, args []string) string {
	name := strings.ToLower(EncodeHyphens(predicate))
	if len(args) == 0 {
		return name
	}
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, name)
	for _, arg := range args {
		parts = append(parts, strings.ToLower(EncodeHyphens(arg)))
	}
	return strings.Join(parts, "_")
}
