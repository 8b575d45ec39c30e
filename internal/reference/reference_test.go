package reference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyntaxString(t *testing.T) {
	testCases := []struct {
		syntax   Syntax
		expected string
	}{
		{SyntaxShorthandDollar, "shorthand"},
		{SyntaxDoubleBracket, "bracket"},
		{SyntaxCurlyBrace, "curly"},
		{Syntax(42), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.syntax.String())
		})
	}
}

func TestScan(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Reference
	}{
		{
			name:  "shorthand",
			input: "$foo",
			expected: []Reference{
				{Syntax: SyntaxShorthandDollar, Raw: "$foo", Name: "foo", Start: 0, End: 4},
			},
		},
		{
			name:  "bracket with format",
			input: "[[bar:fmt]]",
			expected: []Reference{
				{
					Syntax: SyntaxDoubleBracket, Raw: "[[bar:fmt]]", Name: "bar",
					Format: Optional{Value: "fmt", Present: true}, Start: 0, End: 11,
				},
			},
		},
		{
			name:  "bracket name keeps non-word characters",
			input: "[[my var-1]]",
			expected: []Reference{
				{Syntax: SyntaxDoubleBracket, Raw: "[[my var-1]]", Name: "my var-1", Start: 0, End: 12},
			},
		},
		{
			name:  "bracket format must be word characters",
			input: "[[a:b c]]",
			expected: []Reference{
				{Syntax: SyntaxDoubleBracket, Raw: "[[a:b c]]", Name: "a:b c", Start: 0, End: 9},
			},
		},
		{
			name:  "curly with field and format",
			input: "${baz.field:fmt2}",
			expected: []Reference{
				{
					Syntax: SyntaxCurlyBrace, Raw: "${baz.field:fmt2}", Name: "baz",
					Field:  Optional{Value: "field", Present: true},
					Format: Optional{Value: "fmt2", Present: true},
					Start:  0, End: 17,
				},
			},
		},
		{
			name:  "curly name only",
			input: "${host}",
			expected: []Reference{
				{Syntax: SyntaxCurlyBrace, Raw: "${host}", Name: "host", Start: 0, End: 7},
			},
		},
		{
			name:  "multiple references in order",
			input: "select $col from [[table]] where x = ${val:csv}",
			expected: []Reference{
				{Syntax: SyntaxShorthandDollar, Raw: "$col", Name: "col", Start: 7, End: 11},
				{Syntax: SyntaxDoubleBracket, Raw: "[[table]]", Name: "table", Start: 17, End: 26},
				{
					Syntax: SyntaxCurlyBrace, Raw: "${val:csv}", Name: "val",
					Format: Optional{Value: "csv", Present: true}, Start: 37, End: 47,
				},
			},
		},
		{
			name:  "bracket stops at first closing pair",
			input: "[[a]] and [[b]]",
			expected: []Reference{
				{Syntax: SyntaxDoubleBracket, Raw: "[[a]]", Name: "a", Start: 0, End: 5},
				{Syntax: SyntaxDoubleBracket, Raw: "[[b]]", Name: "b", Start: 10, End: 15},
			},
		},
		{
			name:  "case sensitive and ascii word characters",
			input: "$Foo_1é",
			expected: []Reference{
				{Syntax: SyntaxShorthandDollar, Raw: "$Foo_1", Name: "Foo_1", Start: 0, End: 6},
			},
		},
		{
			name:     "unterminated curly falls through",
			input:    "${foo",
			expected: nil,
		},
		{
			name:     "plain text",
			input:    "select * from table",
			expected: nil,
		},
		{
			name:     "empty",
			input:    "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ScanAll(tt.input))
		})
	}
}

func TestScanIsRestartable(t *testing.T) {
	seq := Scan("$a [[b]] ${c}")

	var first, second []string
	for ref := range seq {
		first = append(first, ref.Name)
	}
	for ref := range seq {
		second = append(second, ref.Name)
	}

	assert.Equal(t, []string{"a", "b", "c"}, first)
	assert.Equal(t, first, second)
}

func TestScanStopsEarly(t *testing.T) {
	count := 0
	for range Scan("$a $b $c $d") {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}

func TestFirstMatch(t *testing.T) {
	ref, ok := FirstMatch("query ${first} then $second")
	require.True(t, ok)
	assert.Equal(t, "first", ref.Name)
	assert.Equal(t, SyntaxCurlyBrace, ref.Syntax)

	// A second call on different input never resumes from the previous position.
	ref, ok = FirstMatch("$x")
	require.True(t, ok)
	assert.Equal(t, "x", ref.Name)
	assert.Equal(t, 0, ref.Start)

	_, ok = FirstMatch("nothing here")
	assert.False(t, ok)
}

func TestFindAll(t *testing.T) {
	assert.Equal(t, []string{"$a", "[[b:c]]", "${d.e}"}, FindAll("$a, [[b:c]], ${d.e}"))
	assert.Empty(t, FindAll("no refs"))
}

func TestParseGroups(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		values []string
	}{
		{"shorthand", "$foo", []string{"foo"}},
		{"bracket", "[[x:y]]", []string{"x", "y"}},
		{"curly", "${a.b:c}", []string{"a", "b", "c"}},
		{"curly field only", "${a.b}", []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			groups, ok := ParseGroups(tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.values, groups.Values())
			for _, v := range tt.values {
				assert.True(t, groups.Contains(v))
			}
			assert.False(t, groups.Contains(""))
			assert.False(t, groups.Contains(tt.input))
		})
	}

	_, ok := ParseGroups("plain")
	assert.False(t, ok)
}

func TestOptionalGet(t *testing.T) {
	v, ok := Optional{}.Get()
	assert.Equal(t, "", v)
	assert.False(t, ok)

	v, ok = Optional{Value: "raw", Present: true}.Get()
	assert.Equal(t, "raw", v)
	assert.True(t, ok)
}
