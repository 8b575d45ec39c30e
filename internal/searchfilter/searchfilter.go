// Package searchfilter substitutes the reserved $__searchFilter sentinel in a
// query string with the text a user typed into a variable picker.
//
// The sentinel is matched verbatim and is independent of the general
// reference grammar.
package searchfilter

import "strings"

// Sentinel is the placeholder replaced by Interpolate.
const Sentinel = "$__searchFilter"

// Options carries the per-request search term. An empty SearchFilter means
// the user has not typed anything.
type Options struct {
	SearchFilter string `json:"searchFilter,omitempty" yaml:"searchFilter,omitempty"`
}

// ContainsSearchFilter reports whether query contains the sentinel. The empty
// query never does.
func ContainsSearchFilter(query string) bool {
	if query == "" {
		return false
	}
	return strings.Contains(query, Sentinel)
}

// Interpolate replaces the first occurrence of the sentinel in query with the
// search term followed by wildcard, wrapped in single quotes when quote is
// set. Later occurrences are left as they are. A query without the sentinel
// is returned unchanged.
func Interpolate(query string, opts Options, wildcard string, quote bool) string {
	if !ContainsSearchFilter(query) {
		return query
	}

	filter := opts.SearchFilter + wildcard
	if quote {
		filter = "'" + filter + "'"
	}

	return strings.Replace(query, Sentinel, filter, 1)
}

// Interpolator applies Interpolate with a fixed wildcard and quoting choice,
// typically taken from configuration for one datasource.
type Interpolator struct {
	Wildcard     string
	QuoteLiteral bool
}

// NewInterpolator creates an interpolator.
func NewInterpolator(wildcard string, quoteLiteral bool) *Interpolator {
	return &Interpolator{Wildcard: wildcard, QuoteLiteral: quoteLiteral}
}

// Apply interpolates query with the interpolator's wildcard and quoting.
func (i *Interpolator) Apply(query string, opts Options) string {
	return Interpolate(query, opts, i.Wildcard, i.QuoteLiteral)
}
