package matcher

import (
	"strings"
	"testing"

	"github.com/conneroisu/dashvars/internal/reference"
)

// FuzzContainsVariable checks that the matcher never panics on valid
// arguments and agrees with a direct scan for shorthand names.
func FuzzContainsVariable(f *testing.F) {
	f.Add("$foo is set", "foo")
	f.Add("[[x:y]]", "y")
	f.Add("${a.b:c} and [[d]]", "b")
	f.Add("${unterminated", "unterminated")
	f.Add("no refs at all", "x")

	f.Fuzz(func(t *testing.T, text, name string) {
		if name == "" || len(text) > 50000 {
			t.Skip("invalid arguments")
		}

		got := ContainsVariable(Texts(text), name)

		want := false
		for ref := range reference.Scan(text) {
			groups, ok := reference.ParseGroups(ref.Raw)
			if ok && groups.Contains(name) {
				want = true
				break
			}
		}
		if got != want {
			t.Fatalf("ContainsVariable(%q, %q) = %v, scan says %v", text, name, got, want)
		}

		if !strings.ContainsAny(text, "$[") && got {
			t.Fatalf("found %q in text without reference syntax: %q", name, text)
		}
	})
}
