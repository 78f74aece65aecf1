package core

import "fmt"

// PropertyType is the type of a configuration property as shown in forms.
type PropertyType string

const (
	PropertyTypeString  PropertyType = "String"
	PropertyTypeBoolean PropertyType = "boolean"
)

func (t PropertyType) IsValid() bool {
	switch t {
	case PropertyTypeString, PropertyTypeBoolean:
		return true
	default:
		return false
	}
}

// ConfigProperty describes one field of an authenticator's configuration.
// It is metadata only, the host uses it to render and pre-fill configuration forms.
type ConfigProperty struct {
	Name         string       `json:"name" yaml:"name"`
	Label        string       `json:"label" yaml:"label"`
	HelpText     string       `json:"help_text" yaml:"help_text"`
	Type         PropertyType `json:"type" yaml:"type"`
	DefaultValue any          `json:"default_value" yaml:"default_value"`
}

// DefaultString renders the default value the way it is stored in a raw config map.
func (p ConfigProperty) DefaultString() string {
	if p.DefaultValue == nil {
		return ""
	}
	return fmt.Sprint(p.DefaultValue)
}

// DefaultConfig builds a raw config map pre-filled with the defaults of the given properties.
func DefaultConfig(props []ConfigProperty) map[string]string {
	cfg := make(map[string]string, len(props))
	for _, p := range props {
		cfg[p.Name] = p.DefaultString()
	}
	return cfg
}
