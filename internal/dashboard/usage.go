package dashboard

import (
	"context"
	"sort"
	"strings"

	"github.com/spf13/cast"

	"github.com/conneroisu/dashvars/internal/matcher"
	"github.com/conneroisu/dashvars/internal/variables"
)

// Usage lists the direct references to one declared variable.
type Usage struct {
	Variable string   `json:"variable" yaml:"variable"`
	Type     string   `json:"type" yaml:"type"`
	Panels   []string `json:"panels" yaml:"panels"`
	// Variables holds other variables whose definitions reference this one.
	Variables []string `json:"variables" yaml:"variables"`
	Unused    bool     `json:"unused" yaml:"unused"`
}

// Report is the usage analysis of one dashboard.
type Report struct {
	Path   string  `json:"path" yaml:"path"`
	Title  string  `json:"title" yaml:"title"`
	Usages []Usage `json:"usages" yaml:"usages"`
	// Undeclared holds names referenced by panels but not declared in
	// templating.list. Built-in names starting with "__" are left out.
	Undeclared []string `json:"undeclared,omitempty" yaml:"undeclared,omitempty"`
}

// Unused returns the names of variables that nothing references.
func (r *Report) Unused() []string {
	var names []string
	for _, u := range r.Usages {
		if u.Unused {
			names = append(names, u.Variable)
		}
	}
	return names
}

// Analyzer builds usage reports.
type Analyzer struct {
	matcher *matcher.Matcher
}

// NewAnalyzer creates an analyzer using m for matching.
func NewAnalyzer(m *matcher.Matcher) *Analyzer {
	if m == nil {
		m = matcher.New(nil)
	}
	return &Analyzer{matcher: m}
}

// Analyze reports, for every declared variable, the panels and variable
// definitions that reference it directly. References are not followed
// transitively.
func (a *Analyzer) Analyze(ctx context.Context, d *Dashboard) *Report {
	report := &Report{
		Path:   d.Path,
		Title:  d.Title,
		Usages: make([]Usage, 0, len(d.Variables)),
	}

	for _, v := range d.Variables {
		if v.Name == "" {
			continue
		}
		usage := Usage{
			Variable:  v.Name,
			Type:      v.Type,
			Panels:    []string{},
			Variables: []string{},
		}

		for _, panel := range d.Panels {
			if a.matcher.ContainsVariable(ctx, panel.Inputs(), v.Name) {
				usage.Panels = append(usage.Panels, panel.DisplayName())
			}
		}

		for _, other := range d.Variables {
			if other.Name == v.Name {
				continue
			}
			inputs := other.DefinitionInputs()
			if len(inputs) == 0 {
				continue
			}
			if a.matcher.ContainsVariable(ctx, inputs, v.Name) {
				usage.Variables = append(usage.Variables, other.Name)
			}
		}

		usage.Unused = len(usage.Panels) == 0 && len(usage.Variables) == 0
		report.Usages = append(report.Usages, usage)
	}

	report.Undeclared = a.undeclared(ctx, d)
	return report
}

func (a *Analyzer) undeclared(ctx context.Context, d *Dashboard) []string {
	declared := make(map[string]bool, len(d.Variables))
	for _, v := range d.Variables {
		declared[v.Name] = true
	}

	seen := make(map[string]bool)
	for _, panel := range d.Panels {
		for _, ref := range a.matcher.References(ctx, panel.Inputs()) {
			if declared[ref.Name] || strings.HasPrefix(ref.Name, "__") {
				continue
			}
			seen[ref.Name] = true
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register adds every declared variable of d to store and returns the new
// ids in declaration order. Type defaults fill the properties a variable
// does not declare.
func Register(store *variables.Store, d *Dashboard) ([]int, error) {
	ids := make([]int, 0, len(d.Variables))
	for i, v := range d.Variables {
		values := make(map[string]interface{}, len(v.Values))
		for key, value := range v.Values {
			values[key] = value
		}
		if ds, ok := values["datasource"]; ok {
			values["datasource"] = datasourceValue(ds)
		}
		if query, ok := values["query"].(map[string]interface{}); ok {
			values["query"] = query["query"]
		}
		if current, ok := values["current"].(map[string]interface{}); ok {
			values["current"] = flattenOption(current)
		}
		if options, ok := values["options"].([]interface{}); ok {
			flattened := make([]interface{}, len(options))
			for j, option := range options {
				if m, ok := option.(map[string]interface{}); ok {
					flattened[j] = flattenOption(m)
				} else {
					flattened[j] = option
				}
			}
			values["options"] = flattened
		}
		if _, ok := values["index"]; !ok {
			values["index"] = i
		}

		typ := variables.Type(cast.ToString(values["type"]))
		id, err := store.CreateVariable(variables.FilterProperties(values), variables.Defaults(typ))
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// flattenOption joins multi-value selections, stored as lists, with "+"
// the way the variable picker displays them.
func flattenOption(option map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(option))
	for key, value := range option {
		if list, ok := value.([]interface{}); ok {
			parts := make([]string, len(list))
			for i, item := range list {
				parts[i] = cast.ToString(item)
			}
			value = strings.Join(parts, " + ")
		}
		out[key] = value
	}
	return out
}

func datasourceValue(v interface{}) interface{} {
	if ds, ok := v.(map[string]interface{}); ok {
		return ds["uid"]
	}
	return v
}
