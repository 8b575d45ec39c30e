// Package dashboard loads dashboard definitions from JSON, JSONC or YAML files
// and extracts what the variable tooling needs: the declared template
// variables and the panels with their query targets.
//
// Documents are decoded into yaml.Node trees so that mapping keys keep their
// document order when targets are flattened for matching.
package dashboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/dashvars/internal/errors"
	"github.com/conneroisu/dashvars/internal/matcher"
)

// Dashboard is the subset of a dashboard definition used for variable analysis.
type Dashboard struct {
	Path      string
	Title     string
	UID       string
	Variables []Variable
	Panels    []Panel
}

// Variable is one entry of templating.list.
type Variable struct {
	Name  string
	Type  string
	Label string
	// Fields is the full variable definition in document order.
	Fields matcher.Record
	// Values is the definition decoded to plain Go values.
	Values map[string]interface{}
}

// Panel is a dashboard panel. Panels nested in rows are flattened, with
// Row holding the enclosing row title.
type Panel struct {
	ID          int
	Title       string
	Description string
	Type        string
	Row         string
	Datasource  string
	Targets     []matcher.Record
}

// Inputs returns the panel values scanned for variable references: title,
// description, datasource and every target.
func (p Panel) Inputs() []matcher.Input {
	inputs := []matcher.Input{
		matcher.Text(p.Title),
		matcher.Text(p.Description),
		matcher.Text(p.Datasource),
	}
	for _, target := range p.Targets {
		inputs = append(inputs, target)
	}
	return inputs
}

// DisplayName returns "Row / Title", or the title alone outside a row.
func (p Panel) DisplayName() string {
	title := p.Title
	if title == "" {
		title = fmt.Sprintf("panel #%d", p.ID)
	}
	if p.Row == "" {
		return title
	}
	return p.Row + " / " + title
}

// DefinitionInputs returns the parts of a variable definition that can
// reference other variables.
func (v Variable) DefinitionInputs() []matcher.Input {
	inputs := make([]matcher.Input, 0, 4)
	for _, key := range []string{"query", "definition", "regex", "datasource"} {
		if value, ok := v.Fields.Get(key); ok {
			inputs = append(inputs, matcher.Record{{Key: key, Value: value}})
		}
	}
	return inputs
}

// Load reads and parses the dashboard at path.
func Load(path string) (*Dashboard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotFound, "cannot read dashboard", err).
			WithLocation(path, 0)
	}

	d, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, errors.WrapValidation(err, errors.ErrCodeParseFailed, "cannot parse dashboard").
			WithLocation(path, 0)
	}
	d.Path = path
	return d, nil
}

// Parse decodes dashboard data. ext selects the syntax: ".yaml" and ".yml"
// are YAML, anything else is JSON with optional comments and trailing commas.
func Parse(data []byte, ext string) (*Dashboard, error) {
	var root yaml.Node

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &root); err != nil {
			return nil, err
		}
	default:
		// YAML rejects some JSON whitespace (tabs), so compact first.
		var compacted bytes.Buffer
		if err := json.Compact(&compacted, jsonc.ToJSON(data)); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		if err := yaml.Unmarshal(compacted.Bytes(), &root); err != nil {
			return nil, err
		}
	}

	doc := &root
	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) == 0 {
			return nil, fmt.Errorf("empty document")
		}
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: dashboard must be an object", doc.Line)
	}

	// Dashboards exported through the HTTP API wrap the model in "dashboard".
	if inner := lookup(doc, "dashboard"); inner != nil && inner.Kind == yaml.MappingNode {
		doc = inner
	}

	d := &Dashboard{
		Title: scalar(lookup(doc, "title")),
		UID:   scalar(lookup(doc, "uid")),
	}

	variables, err := parseVariables(doc)
	if err != nil {
		return nil, err
	}
	d.Variables = variables

	panels, err := parsePanels(lookup(doc, "panels"), "")
	if err != nil {
		return nil, err
	}
	d.Panels = panels

	// Schema versions before 16 keep panels inside "rows".
	if rows := lookup(doc, "rows"); rows != nil && rows.Kind == yaml.SequenceNode {
		for _, row := range rows.Content {
			rowPanels, err := parsePanels(lookup(row, "panels"), scalar(lookup(row, "title")))
			if err != nil {
				return nil, err
			}
			d.Panels = append(d.Panels, rowPanels...)
		}
	}

	return d, nil
}

// VariableNames returns the declared variable names in order.
func (d *Dashboard) VariableNames() []string {
	names := make([]string, 0, len(d.Variables))
	for _, v := range d.Variables {
		names = append(names, v.Name)
	}
	return names
}

func parseVariables(doc *yaml.Node) ([]Variable, error) {
	list := lookup(lookup(doc, "templating"), "list")
	if list == nil {
		return nil, nil
	}
	if list.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: templating.list must be a list", list.Line)
	}

	variables := make([]Variable, 0, len(list.Content))
	for _, node := range list.Content {
		fields, err := matcher.RecordFromNode(node)
		if err != nil {
			return nil, fmt.Errorf("templating.list: %w", err)
		}

		var values map[string]interface{}
		if err := node.Decode(&values); err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Line, err)
		}

		variables = append(variables, Variable{
			Name:   scalar(lookup(node, "name")),
			Type:   scalar(lookup(node, "type")),
			Label:  scalar(lookup(node, "label")),
			Fields: fields,
			Values: values,
		})
	}
	return variables, nil
}

func parsePanels(list *yaml.Node, row string) ([]Panel, error) {
	if list == nil {
		return nil, nil
	}
	if list.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: panels must be a list", list.Line)
	}

	var panels []Panel
	for _, node := range list.Content {
		if node.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("line %d: panel must be an object", node.Line)
		}

		panelType := scalar(lookup(node, "type"))
		title := scalar(lookup(node, "title"))

		if panelType == "row" {
			// Collapsed rows carry their panels inline.
			nested, err := parsePanels(lookup(node, "panels"), title)
			if err != nil {
				return nil, err
			}
			panels = append(panels, nested...)
			continue
		}

		panel := Panel{
			Title:       title,
			Description: scalar(lookup(node, "description")),
			Type:        panelType,
			Row:         row,
			Datasource:  datasourceName(lookup(node, "datasource")),
		}
		if id := lookup(node, "id"); id != nil {
			if err := id.Decode(&panel.ID); err != nil {
				return nil, fmt.Errorf("line %d: panel id: %w", id.Line, err)
			}
		}

		if targets := lookup(node, "targets"); targets != nil && targets.Kind == yaml.SequenceNode {
			for _, target := range targets.Content {
				record, err := matcher.RecordFromNode(target)
				if err != nil {
					return nil, fmt.Errorf("panel %q: %w", title, err)
				}
				panel.Targets = append(panel.Targets, record)
			}
		}

		panels = append(panels, panel)
	}
	return panels, nil
}

// datasourceName accepts both the legacy string form and the
// {"type": ..., "uid": ...} object form.
func datasourceName(node *yaml.Node) string {
	if node == nil {
		return ""
	}
	if node.Kind == yaml.MappingNode {
		return scalar(lookup(node, "uid"))
	}
	return scalar(node)
}

// lookup returns the value node for key in a mapping node, or nil.
func lookup(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

func scalar(node *yaml.Node) string {
	if node == nil || node.Kind != yaml.ScalarNode || node.Tag == "!!null" {
		return ""
	}
	return node.Value
}
