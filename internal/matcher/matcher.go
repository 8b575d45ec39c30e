// Package matcher answers whether a variable is referenced by a set of query
// strings or query records.
//
// Inputs are flattened, joined with single spaces and scanned as one string.
// A reference can straddle two inputs: "[[foo" followed by "bar]]" is read
// as a reference to "foo bar". Existing dashboards depend on this.
package matcher

import (
	"context"
	"strings"

	"github.com/conneroisu/dashvars/internal/errors"
	"github.com/conneroisu/dashvars/internal/logging"
	"github.com/conneroisu/dashvars/internal/reference"
)

// Join flattens every input and joins the results with single spaces,
// preserving order.
func Join(inputs []Input) string {
	parts := make([]string, len(inputs))
	for i, input := range inputs {
		if input == nil {
			continue
		}
		parts[i] = input.Flatten()
	}
	return strings.Join(parts, " ")
}

// ContainsVariable reports whether name is referenced among inputs.
//
// Every reference in the joined inputs is re-parsed on its own, and name
// must equal one of its capture slots exactly. Format and field slots count
// too, so "[[x:y]]" references "y" as well as "x".
//
// An empty name is never referenced, since every capture slot is non-empty.
// Calling it without inputs is a programming error and panics with an
// invalid_argument *errors.DashvarsError.
func ContainsVariable(inputs []Input, name string) bool {
	checkInputs(inputs)
	if name == "" {
		return false
	}

	for _, raw := range reference.FindAll(Join(inputs)) {
		groups, ok := reference.ParseGroups(raw)
		if ok && groups.Contains(name) {
			return true
		}
	}
	return false
}

func checkInputs(inputs []Input) {
	if len(inputs) == 0 {
		panic(errors.NewInvalidArgumentError(
			errors.ErrCodeMissingInput,
			"ContainsVariable needs at least one input",
		))
	}
}

// Matcher wraps the package functions with logging for long-running callers
// such as the usage report and the file watcher.
type Matcher struct {
	logger logging.Logger
}

// New creates a matcher. A nil logger discards output.
func New(logger logging.Logger) *Matcher {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Matcher{logger: logger.WithComponent("matcher")}
}

// ContainsVariable is the logging form of the package-level ContainsVariable.
func (m *Matcher) ContainsVariable(ctx context.Context, inputs []Input, name string) bool {
	found := ContainsVariable(inputs, name)
	m.logger.Debug(ctx, "checked variable reference",
		"variable", name,
		"inputs", len(inputs),
		"found", found)
	return found
}

// References returns every reference found in the joined inputs.
func (m *Matcher) References(ctx context.Context, inputs []Input) []reference.Reference {
	joined := Join(inputs)
	refs := reference.ScanAll(joined)
	m.logger.Debug(ctx, "scanned inputs",
		"text", logging.Truncate(joined, 200),
		"references", len(refs))
	return refs
}

// UsedVariables returns the subset of names referenced among inputs, in the
// order of names. Empty names are skipped.
func (m *Matcher) UsedVariables(ctx context.Context, inputs []Input, names []string) []string {
	if len(inputs) == 0 {
		return nil
	}

	used := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		if m.ContainsVariable(ctx, inputs, name) {
			used = append(used, name)
		}
	}
	return used
}
