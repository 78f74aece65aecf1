package engine

import (
	"github.com/darmiel/attrgate/internal/core"
)

const RequireAttributeID = "require-attribute"

// Configuration keys of the require-attribute authenticator.
const (
	ConfigAttributeName  = RequireAttributeID + "-name"
	ConfigAttributeValue = RequireAttributeID + "-value"
	ConfigSourceUser     = RequireAttributeID + "-source-user"
	ConfigSourceRole     = RequireAttributeID + "-source-role"
	ConfigSourceGroup    = RequireAttributeID + "-source-group"
)

// ClientIDPlaceholder is replaced by the client ID of the current attempt in attribute names.
const ClientIDPlaceholder = "{clientId}"

var requireAttributeChoices = []core.Requirement{
	core.RequirementRequired,
	core.RequirementDisabled,
}

var _ core.AuthenticatorFactory = (*RequireAttributeFactory)(nil)

// RequireAttributeFactory declares the configuration schema of the require-attribute
// authenticator and creates steps bound to a parsed StepConfig.
type RequireAttributeFactory struct{}

func NewRequireAttributeFactory() *RequireAttributeFactory {
	return &RequireAttributeFactory{}
}

func (f *RequireAttributeFactory) ID() string {
	return RequireAttributeID
}

func (f *RequireAttributeFactory) DisplayType() string {
	return "Require Attribute"
}

func (f *RequireAttributeFactory) ReferenceCategory() string {
	return ""
}

func (f *RequireAttributeFactory) HelpText() string {
	return "Requires the user to have an attribute with a specified value."
}

func (f *RequireAttributeFactory) IsConfigurable() bool {
	return true
}

func (f *RequireAttributeFactory) IsUserSetupAllowed() bool {
	return false
}

func (f *RequireAttributeFactory) RequirementChoices() []core.Requirement {
	out := make([]core.Requirement, len(requireAttributeChoices))
	copy(out, requireAttributeChoices)
	return out
}

func (f *RequireAttributeFactory) ConfigProperties() []core.ConfigProperty {
	return []core.ConfigProperty{
		{
			Name:         ConfigAttributeName,
			Label:        "Attribute Name",
			Type:         core.PropertyTypeString,
			DefaultValue: ClientIDPlaceholder + ":login",
			HelpText: "Required attribute name that a user needs to have to proceed with the authentication. " +
				"This can be an attribute defined in the user, group or role context. " +
				"The placeholder '" + ClientIDPlaceholder + "' can be used to incorporate the client name. " +
				"If the user doesn't have the attribute, the authenticator will fail.",
		},
		{
			Name:         ConfigAttributeValue,
			Label:        "Attribute Value",
			Type:         core.PropertyTypeString,
			DefaultValue: "yes",
			HelpText:     "A value that the attribute must have.",
		},
		{
			Name:         ConfigSourceUser,
			Label:        "User Source",
			Type:         core.PropertyTypeBoolean,
			DefaultValue: true,
			HelpText:     "Use the user itself as a source of the attribute.",
		},
		{
			Name:         ConfigSourceRole,
			Label:        "Role Source",
			Type:         core.PropertyTypeBoolean,
			DefaultValue: true,
			HelpText:     "Use the assigned roles as a source of the attribute.",
		},
		{
			Name:         ConfigSourceGroup,
			Label:        "Group Source",
			Type:         core.PropertyTypeBoolean,
			DefaultValue: true,
			HelpText:     "Use the assigned groups as a source of the attribute.",
		},
	}
}

func (f *RequireAttributeFactory) Create(raw map[string]string) core.Authenticator {
	return NewRequireAttributeStep(ParseStepConfig(raw))
}

// StepConfig is the parsed configuration of a require-attribute step.
// It is never modified after parsing.
type StepConfig struct {
	AttributeName  string `json:"attribute_name"`
	AttributeValue string `json:"attribute_value"`
	UseUserSource  bool   `json:"use_user_source"`
	UseRoleSource  bool   `json:"use_role_source"`
	UseGroupSource bool   `json:"use_group_source"`
}

// ParseStepConfig never fails. Missing strings become empty (which denies every attempt)
// and source flags are only enabled by the exact string "true".
func ParseStepConfig(raw map[string]string) StepConfig {
	return StepConfig{
		AttributeName:  raw[ConfigAttributeName],
		AttributeValue: raw[ConfigAttributeValue],
		UseUserSource:  parseFlag(raw[ConfigSourceUser]),
		UseRoleSource:  parseFlag(raw[ConfigSourceRole]),
		UseGroupSource: parseFlag(raw[ConfigSourceGroup]),
	}
}

// parseFlag must stay this lenient: "TRUE", "1" or "yes" disable a source.
func parseFlag(s string) bool {
	return s == "true"
}

// AnySourceEnabled is false for the inert configuration that denies everyone.
func (c StepConfig) AnySourceEnabled() bool {
	return c.UseUserSource || c.UseRoleSource || c.UseGroupSource
}
