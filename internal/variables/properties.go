package variables

import (
	"reflect"
	"sort"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"

	"github.com/conneroisu/dashvars/internal/errors"
)

// propertyIndex maps a property name to its Model field index.
var propertyIndex = buildPropertyIndex()

func buildPropertyIndex() map[string]int {
	t := reflect.TypeOf(Model{})
	index := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if name := t.Field(i).Tag.Get("mapstructure"); name != "" {
			index[name] = i
		}
	}
	return index
}

// Properties returns every property name in sorted order.
func Properties() []string {
	names := make([]string, 0, len(propertyIndex))
	for name := range propertyIndex {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// getProperty reads a property by name. The value is taken from a copy of
// m so slices in it do not alias the model.
func getProperty(m *Model, property string) (interface{}, error) {
	i, ok := propertyIndex[property]
	if !ok {
		return nil, errors.ErrUnknownProperty(property)
	}
	return reflect.ValueOf(m.Clone()).Elem().Field(i).Interface(), nil
}

// setProperties decodes values into m. Only the named properties change.
func setProperties(m *Model, values map[string]interface{}) error {
	for property := range values {
		if _, ok := propertyIndex[property]; !ok {
			return errors.ErrUnknownProperty(property)
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       castHook,
		WeaklyTypedInput: true,
		Result:           m,
	})
	if err != nil {
		return errors.NewInternalError(errors.ErrCodeInternalError, "cannot build property decoder", err)
	}

	if err := decoder.Decode(values); err != nil {
		return errors.WrapValidation(err, errors.ErrCodeInvalidValue, "invalid variable property value")
	}
	return nil
}

// mergeDefaults lays values over defaults. A key present in values wins even
// when its value is the zero value of the property.
func mergeDefaults(values, defaults map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(defaults)+len(values))
	for property, value := range defaults {
		merged[property] = value
	}
	for property, value := range values {
		merged[property] = value
	}
	return merged
}

// castHook coerces scalar values whose kind differs from the target field,
// e.g. "2" into an int or 1.0 from JSON into a bool.
func castHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if data == nil || from.Kind() == to.Kind() {
		return data, nil
	}

	switch to.Kind() {
	case reflect.String:
		return cast.ToStringE(data)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return cast.ToIntE(data)
	case reflect.Bool:
		return cast.ToBoolE(data)
	default:
		return data, nil
	}
}

// FilterProperties returns the entries of values that name a model
// property. Other keys, and "id", are dropped.
func FilterProperties(values map[string]interface{}) map[string]interface{} {
	known := make(map[string]interface{}, len(values))
	for property, value := range values {
		if _, ok := propertyIndex[property]; ok && property != "id" {
			known[property] = value
		}
	}
	return known
}
