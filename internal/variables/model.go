// Package variables holds dashboard variable models and the in-memory store
// that creates, reads, updates and removes them.
//
// Properties are addressed by their dashboard JSON names ("query",
// "includeAll", "current", ...). A Ref selects either a stored model by id or
// a transient model that has not been added to the store yet; transient
// models are read and written directly.
package variables

// Type is the kind of a dashboard variable.
type Type string

const (
	TypeQuery      Type = "query"
	TypeCustom     Type = "custom"
	TypeConstant   Type = "constant"
	TypeTextbox    Type = "textbox"
	TypeInterval   Type = "interval"
	TypeDatasource Type = "datasource"
	TypeAdhoc      Type = "adhoc"
)

// Types lists every known variable type.
var Types = []Type{
	TypeQuery, TypeCustom, TypeConstant, TypeTextbox,
	TypeInterval, TypeDatasource, TypeAdhoc,
}

// Valid reports whether t is a known variable type.
func (t Type) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// HideMode controls where a variable is shown on the dashboard.
type HideMode int

const (
	HideNothing HideMode = iota
	HideLabel
	HideVariable
)

// RefreshMode controls when a query variable reloads its options.
type RefreshMode int

const (
	RefreshNever RefreshMode = iota
	RefreshOnDashboardLoad
	RefreshOnTimeRangeChanged
)

// Option is one selectable value of a variable.
type Option struct {
	Text     string `mapstructure:"text" json:"text" yaml:"text"`
	Value    string `mapstructure:"value" json:"value" yaml:"value"`
	Selected bool   `mapstructure:"selected" json:"selected" yaml:"selected"`
}

// Model is a dashboard variable. Fields not used by a type keep their zero
// value.
type Model struct {
	ID          int         `mapstructure:"id" json:"id,omitempty" yaml:"id,omitempty"`
	Type        Type        `mapstructure:"type" json:"type" yaml:"type"`
	Name        string      `mapstructure:"name" json:"name" yaml:"name"`
	Label       string      `mapstructure:"label" json:"label,omitempty" yaml:"label,omitempty"`
	Description string      `mapstructure:"description" json:"description,omitempty" yaml:"description,omitempty"`
	Query       string      `mapstructure:"query" json:"query,omitempty" yaml:"query,omitempty"`
	Datasource  string      `mapstructure:"datasource" json:"datasource,omitempty" yaml:"datasource,omitempty"`
	Regex       string      `mapstructure:"regex" json:"regex,omitempty" yaml:"regex,omitempty"`
	Current     Option      `mapstructure:"current" json:"current" yaml:"current"`
	Options     []Option    `mapstructure:"options" json:"options,omitempty" yaml:"options,omitempty"`
	Multi       bool        `mapstructure:"multi" json:"multi,omitempty" yaml:"multi,omitempty"`
	IncludeAll  bool        `mapstructure:"includeAll" json:"includeAll,omitempty" yaml:"includeAll,omitempty"`
	AllValue    string      `mapstructure:"allValue" json:"allValue,omitempty" yaml:"allValue,omitempty"`
	Hide        HideMode    `mapstructure:"hide" json:"hide" yaml:"hide"`
	SkipURLSync bool        `mapstructure:"skipUrlSync" json:"skipUrlSync,omitempty" yaml:"skipUrlSync,omitempty"`
	Index       int         `mapstructure:"index" json:"index" yaml:"index"`
	Global      bool        `mapstructure:"global" json:"global,omitempty" yaml:"global,omitempty"`
	Refresh     RefreshMode `mapstructure:"refresh" json:"refresh,omitempty" yaml:"refresh,omitempty"`
	Sort        int         `mapstructure:"sort" json:"sort,omitempty" yaml:"sort,omitempty"`
}

// Clone returns a deep copy of the model.
func (m *Model) Clone() *Model {
	clone := *m
	if m.Options != nil {
		clone.Options = make([]Option, len(m.Options))
		copy(clone.Options, m.Options)
	}
	return &clone
}

// Defaults returns the initial property values for a variable type. The
// returned map is fresh and may be modified by the caller.
func Defaults(t Type) map[string]interface{} {
	common := map[string]interface{}{
		"type":        string(t),
		"name":        "",
		"label":       "",
		"description": "",
		"hide":        int(HideNothing),
		"skipUrlSync": false,
		"index":       -1,
		"global":      false,
		"current":     map[string]interface{}{},
		"options":     []interface{}{},
	}

	var specific map[string]interface{}
	switch t {
	case TypeQuery:
		specific = map[string]interface{}{
			"query":      "",
			"datasource": "",
			"regex":      "",
			"refresh":    int(RefreshNever),
			"sort":       0,
			"multi":      false,
			"includeAll": false,
			"allValue":   "",
		}
	case TypeCustom:
		specific = map[string]interface{}{
			"query":      "",
			"multi":      false,
			"includeAll": false,
			"allValue":   "",
		}
	case TypeConstant:
		specific = map[string]interface{}{
			"query": "",
			"hide":  int(HideVariable),
		}
	case TypeTextbox:
		specific = map[string]interface{}{
			"query": "",
		}
	case TypeInterval:
		specific = map[string]interface{}{
			"query":   "1m,10m,30m,1h,6h,12h,1d,7d,14d,30d",
			"refresh": int(RefreshOnTimeRangeChanged),
		}
	case TypeDatasource:
		specific = map[string]interface{}{
			"query":      "",
			"regex":      "",
			"refresh":    int(RefreshOnDashboardLoad),
			"multi":      false,
			"includeAll": false,
		}
	case TypeAdhoc:
		specific = map[string]interface{}{
			"datasource": "",
		}
	}

	for k, v := range specific {
		common[k] = v
	}
	return common
}
