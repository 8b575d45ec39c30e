//go:build property

package matcher

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestContainsVariableProperties checks matcher invariants over generated inputs.
func TestContainsVariableProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(8642)
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("inputs without reference syntax never match", prop.ForAll(
		func(texts []string, name string) bool {
			if len(texts) == 0 {
				return true
			}
			return !ContainsVariable(Texts(texts...), name)
		},
		gen.SliceOfN(3, gen.RegexMatch(`^[a-zA-Z0-9 _.,:{}()-]{0,30}$`)),
		gen.RegexMatch(`^[a-zA-Z_][a-zA-Z0-9_]{0,10}$`),
	))

	properties.Property("every syntax references its name", prop.ForAll(
		func(name, filler string) bool {
			forms := []string{"$" + name, "[[" + name + "]]", "${" + name + "}", "[[" + name + ":raw]]", "${" + name + ".f:csv}"}
			for _, form := range forms {
				if !ContainsVariable(Texts(filler, form, filler), name) {
					return false
				}
			}
			return true
		},
		gen.RegexMatch(`^[a-zA-Z_][a-zA-Z0-9_]{0,10}$`),
		gen.RegexMatch(`^[a-z ]{0,20}$`),
	))

	properties.Property("record order does not change the outcome for single references", prop.ForAll(
		func(name string) bool {
			forward := Record{{Key: "a", Value: "$" + name}, {Key: "b", Value: "x"}}
			backward := Record{{Key: "b", Value: "x"}, {Key: "a", Value: "$" + name}}
			return ContainsVariable([]Input{forward}, name) && ContainsVariable([]Input{backward}, name)
		},
		gen.RegexMatch(`^[a-zA-Z_][a-zA-Z0-9_]{0,10}$`),
	))

	properties.TestingRun(t)
}
