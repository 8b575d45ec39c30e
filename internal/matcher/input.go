package matcher

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// Input is one value handed to the matcher. Text passes through as is and
// Record flattens to its values.
type Input interface {
	Flatten() string
}

// Text is a plain string input.
type Text string

// Flatten returns the text unchanged.
func (t Text) Flatten() string {
	return string(t)
}

// Texts converts plain strings to inputs.
func Texts(values ...string) []Input {
	inputs := make([]Input, len(values))
	for i, v := range values {
		inputs[i] = Text(v)
	}
	return inputs
}

// Field is one key/value pair of a Record.
type Field struct {
	Key   string
	Value interface{}
}

// Record is a keyed mapping with a fixed enumeration order, such as a panel
// target.
type Record []Field

// Flatten joins the record's values with single spaces in enumeration order.
// Keys are ignored.
func (r Record) Flatten() string {
	values := make([]string, len(r))
	for i, field := range r {
		values[i] = valueString(field.Value)
	}
	return strings.Join(values, " ")
}

// Get returns the value stored under key.
func (r Record) Get(key string) (interface{}, bool) {
	for _, field := range r {
		if field.Key == key {
			return field.Value, true
		}
	}
	return nil, false
}

// RecordFromMap builds a record from a Go map. Go maps have no order, so
// keys are enumerated in sorted order.
func RecordFromMap(m map[string]interface{}) Record {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	record := make(Record, 0, len(keys))
	for _, k := range keys {
		record = append(record, Field{Key: k, Value: m[k]})
	}
	return record
}

// RecordFromNode builds a record from a YAML (or JSON) mapping node, keeping
// document order. Scalar values keep their source text; nested sequences and
// mappings are decoded and flattened as compact JSON.
func RecordFromNode(node *yaml.Node) (Record, error) {
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping, got %s", node.Line, kindName(node.Kind))
	}

	record := make(Record, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]

		switch value.Kind {
		case yaml.ScalarNode:
			if value.Tag == "!!null" {
				record = append(record, Field{Key: key.Value, Value: nil})
			} else {
				record = append(record, Field{Key: key.Value, Value: value.Value})
			}
		case yaml.AliasNode:
			nested, err := decodeNode(value.Alias)
			if err != nil {
				return nil, err
			}
			record = append(record, Field{Key: key.Value, Value: nested})
		default:
			nested, err := decodeNode(value)
			if err != nil {
				return nil, err
			}
			record = append(record, Field{Key: key.Value, Value: nested})
		}
	}
	return record, nil
}

func decodeNode(node *yaml.Node) (interface{}, error) {
	var v interface{}
	if err := node.Decode(&v); err != nil {
		return nil, fmt.Errorf("line %d: %w", node.Line, err)
	}
	return v, nil
}

func kindName(kind yaml.Kind) string {
	switch kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown node"
	}
}

// valueString renders one record value. nil renders empty, scalars through
// cast, anything else as compact JSON.
func valueString(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, err := cast.ToStringE(v); err == nil {
		return s
	}

	data, err := json.Marshal(normalize(v))
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

// normalize converts map[interface{}]interface{} values, which encoding/json
// rejects, into string-keyed maps.
func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[cast.ToString(k)] = normalize(val)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	default:
		return v
	}
}
