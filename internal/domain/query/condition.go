package query

import (
	"sort"
	"strconv"
	"strings"
)

// Condition is a node of a centre match condition tree.
//
// The set of variants is closed: And, Or, TextMatch and OfferingMatch. Level and
// subject constraints only exist inside OfferingMatch, so a combined level and
// subject filter is always evaluated against a single offering row.
type Condition interface {
	condition()
}

// TextField names a centre column that supports substring matching
type TextField string

const (
	FieldName     TextField = "name"
	FieldLocation TextField = "location"
)

// And matches when every clause matches. An empty And matches every centre.
type And struct {
	Clauses []Condition
}

// Or matches when at least one clause matches. An empty Or matches nothing.
type Or struct {
	Clauses []Condition
}

// TextMatch is a case-insensitive, unanchored substring test on one field
type TextMatch struct {
	Field TextField
	Term  string
}

// OfferingMatch matches centres with at least one offering whose level is in
// Levels and whose subject is in Subjects. An empty set leaves that axis
// unconstrained; both empty means "has any offering".
type OfferingMatch struct {
	Levels   []string
	Subjects []string
}

func (And) condition()           {}
func (Or) condition()            {}
func (TextMatch) condition()     {}
func (OfferingMatch) condition() {}

// MatchAll returns the condition that every centre satisfies
func MatchAll() Condition {
	return And{}
}

// Describe renders c in a stable textual form. Set members are sorted, so two
// conditions that match the same rows by construction render identically.
// It is used for cache keys and log fields.
func Describe(c Condition) string {
	var b strings.Builder
	describe(&b, c)
	return b.String()
}

func describe(b *strings.Builder, c Condition) {
	switch n := c.(type) {
	case nil:
		b.WriteString("all")
	case And:
		if len(n.Clauses) == 0 {
			b.WriteString("all")
			return
		}
		writeGroup(b, "and", n.Clauses)
	case Or:
		writeGroup(b, "or", n.Clauses)
	case TextMatch:
		b.WriteString("text(")
		b.WriteString(string(n.Field))
		b.WriteByte(',')
		b.WriteString(strconv.Quote(n.Term))
		b.WriteByte(')')
	case OfferingMatch:
		b.WriteString("offering(levels=")
		writeSet(b, n.Levels)
		b.WriteString(";subjects=")
		writeSet(b, n.Subjects)
		b.WriteByte(')')
	}
}

func writeGroup(b *strings.Builder, op string, clauses []Condition) {
	b.WriteString(op)
	b.WriteByte('(')
	for i, clause := range clauses {
		if i > 0 {
			b.WriteByte(',')
		}
		describe(b, clause)
	}
	b.WriteByte(')')
}

func writeSet(b *strings.Builder, values []string) {
	sorted := append([]string(nil), values...)
	sort.Strings(sorted)
	b.WriteByte('[')
	for i, v := range sorted {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(v))
	}
	b.WriteByte(']')
}
