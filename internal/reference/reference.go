// Package reference recognizes variable references embedded in dashboard query
// strings.
//
// Three syntaxes are supported, tried in this order at every position:
//
//	$name                    shorthand
//	[[name:format]]          double bracket, format optional
//	${name.field:format}     curly brace, field and format optional
//
// The compiled pattern is shared read-only. Every scan runs with its own
// matching state, so scans never observe each other and need no reset.
package reference

import (
	"iter"
	"regexp"
)

// Pattern is the combined reference grammar. Alternation is leftmost-first,
// so the shorthand form wins over the curly form when both could start at
// the same '$'.
const Pattern = `\$(\w+)|\[\[([\s\S]+?)(?::(\w+))?\]\]|\$\{(\w+)(?:\.([^:^}]+))?(?::(\w+))?\}`

var variableRegexp = regexp.MustCompile(Pattern)

// Capture group indexes in variableRegexp.
const (
	groupShorthandName = iota + 1
	groupBracketName
	groupBracketFormat
	groupCurlyName
	groupCurlyField
	groupCurlyFormat
	groupCount
)

// Syntax identifies which of the three reference forms produced a match.
type Syntax int

const (
	SyntaxShorthandDollar Syntax = iota
	SyntaxDoubleBracket
	SyntaxCurlyBrace
)

// String returns the string representation of the syntax
func (s Syntax) String() string {
	switch s {
	case SyntaxShorthandDollar:
		return "shorthand"
	case SyntaxDoubleBracket:
		return "bracket"
	case SyntaxCurlyBrace:
		return "curly"
	default:
		return "unknown"
	}
}

// Optional is a capture that may be absent. An absent capture is different
// from a present empty one, although the grammar never produces the latter.
type Optional struct {
	Value   string
	Present bool
}

// Get returns the value and whether it was captured.
func (o Optional) Get() (string, bool) {
	return o.Value, o.Present
}

// Reference is a single parsed variable reference.
type Reference struct {
	Syntax Syntax
	// Raw is the exact matched text, e.g. "${host:raw}".
	Raw  string
	Name string
	// Format is set for [[name:fmt]] and ${name:fmt}.
	Format Optional
	// Field is set only for ${name.field}.
	Field Optional
	// Start and End are byte offsets of Raw in the scanned text.
	Start int
	End   int
}

// Groups holds every capture slot of the grammar for one match. Only the
// slots belonging to the matching syntax are present.
type Groups [groupCount - 1]Optional

// Values returns the present capture values in group order.
func (g Groups) Values() []string {
	values := make([]string, 0, 2)
	for _, slot := range g {
		if slot.Present {
			values = append(values, slot.Value)
		}
	}
	return values
}

// Contains reports whether name is exactly equal to any present slot.
func (g Groups) Contains(name string) bool {
	for _, slot := range g {
		if slot.Present && slot.Value == name {
			return true
		}
	}
	return false
}

// Scan returns the references in text, left to right and non-overlapping.
// The sequence is lazy and can be ranged over any number of times; every
// pass rescans text from the start.
func Scan(text string) iter.Seq[Reference] {
	return func(yield func(Reference) bool) {
		offset := 0
		for offset <= len(text) {
			loc := variableRegexp.FindStringSubmatchIndex(text[offset:])
			if loc == nil {
				return
			}
			for i := range loc {
				if loc[i] >= 0 {
					loc[i] += offset
				}
			}
			if !yield(fromSubmatchIndex(text, loc)) {
				return
			}
			// Every alternative consumes at least two bytes, so this always advances.
			offset = loc[1]
		}
	}
}

// ScanAll collects Scan(text) into a slice.
func ScanAll(text string) []Reference {
	var refs []Reference
	for ref := range Scan(text) {
		refs = append(refs, ref)
	}
	return refs
}

// FirstMatch returns the first reference in text.
func FirstMatch(text string) (Reference, bool) {
	loc := variableRegexp.FindStringSubmatchIndex(text)
	if loc == nil {
		return Reference{}, false
	}
	return fromSubmatchIndex(text, loc), true
}

// FindAll returns the raw text of every reference in text.
func FindAll(text string) []string {
	return variableRegexp.FindAllString(text, -1)
}

// ParseGroups runs a single match against text and returns all capture
// slots of that match.
func ParseGroups(text string) (Groups, bool) {
	loc := variableRegexp.FindStringSubmatchIndex(text)
	if loc == nil {
		return Groups{}, false
	}
	return groupsFromIndex(text, loc), true
}

func groupsFromIndex(text string, loc []int) Groups {
	var g Groups
	for group := 1; group < groupCount; group++ {
		start, end := loc[2*group], loc[2*group+1]
		if start < 0 {
			continue
		}
		g[group-1] = Optional{Value: text[start:end], Present: true}
	}
	return g
}

func fromSubmatchIndex(text string, loc []int) Reference {
	g := groupsFromIndex(text, loc)
	ref := Reference{
		Raw:   text[loc[0]:loc[1]],
		Start: loc[0],
		End:   loc[1],
	}

	switch {
	case g[groupShorthandName-1].Present:
		ref.Syntax = SyntaxShorthandDollar
		ref.Name = g[groupShorthandName-1].Value
	case g[groupBracketName-1].Present:
		ref.Syntax = SyntaxDoubleBracket
		ref.Name = g[groupBracketName-1].Value
		ref.Format = g[groupBracketFormat-1]
	default:
		ref.Syntax = SyntaxCurlyBrace
		ref.Name = g[groupCurlyName-1].Value
		ref.Field = g[groupCurlyField-1]
		ref.Format = g[groupCurlyFormat-1]
	}

	return ref
}
