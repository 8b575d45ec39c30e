package searchfilter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsSearchFilter(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected bool
	}{
		{"empty", "", false},
		{"present", "has $__searchFilter", true},
		{"absent", "select * from hosts", false},
		{"prefix only", "$__search", false},
		{"embedded", "name=~/^$__searchFilter.*/", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ContainsSearchFilter(tt.query))
		})
	}
}

func TestInterpolate(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		opts     Options
		wildcard string
		quote    bool
		expected string
	}{
		{
			name:     "search term with wildcard",
			query:    "show me $__searchFilter",
			opts:     Options{SearchFilter: "abc"},
			wildcard: "*",
			expected: "show me abc*",
		},
		{
			name:     "only first occurrence replaced",
			query:    "x $__searchFilter y $__searchFilter",
			wildcard: "*",
			quote:    true,
			expected: "x '*' y $__searchFilter",
		},
		{
			name:     "quoted search term",
			query:    "WHERE host LIKE $__searchFilter",
			opts:     Options{SearchFilter: "web"},
			wildcard: "%",
			quote:    true,
			expected: "WHERE host LIKE 'web%'",
		},
		{
			name:     "no sentinel is a no-op",
			query:    "select 1",
			opts:     Options{SearchFilter: "abc"},
			wildcard: "*",
			expected: "select 1",
		},
		{
			name:     "empty query",
			query:    "",
			wildcard: "*",
			quote:    true,
			expected: "",
		},
		{
			name:     "empty wildcard",
			query:    "$__searchFilter",
			opts:     Options{SearchFilter: "abc"},
			expected: "abc",
		},
		{
			name:     "replacement is literal",
			query:    "q=$__searchFilter",
			opts:     Options{SearchFilter: "$&$1"},
			wildcard: ".*",
			expected: "q=$&$1.*",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Interpolate(tt.query, tt.opts, tt.wildcard, tt.quote))
		})
	}
}

func TestInterpolateLeavesExactlyOneSentinelFewer(t *testing.T) {
	query := strings.Repeat("$__searchFilter ", 4)
	out := Interpolate(query, Options{SearchFilter: "a"}, "*", false)
	assert.Equal(t, 3, strings.Count(out, Sentinel))
	assert.True(t, strings.HasPrefix(out, "a* "))
}

func TestInterpolatorApply(t *testing.T) {
	interpolator := NewInterpolator("%", true)
	assert.Equal(t, "name LIKE 'db%'", interpolator.Apply("name LIKE $__searchFilter", Options{SearchFilter: "db"}))
	assert.Equal(t, "plain", interpolator.Apply("plain", Options{}))
}
