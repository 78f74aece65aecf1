package engine

import (
	"strings"

	"github.com/darmiel/attrgate/internal/core"
)

// bearer is an attribute bearer together with a label used in traces.
type bearer struct {
	label string
	core.AttributeBearer
}

// attributeSource is one of user, roles, groups with the bearers it yields, in order.
type attributeSource struct {
	kind    core.Source
	enabled bool
	bearers func() []bearer
}

// Resolution is the outcome of looking up an attribute across the sources.
type Resolution struct {
	Name    string
	Value   string
	Found   bool
	Source  core.Source
	Bearer  string
	Sources []core.SourceResult
}

// ResolveName replaces every client ID placeholder in name.
func ResolveName(name, clientID string) string {
	return strings.ReplaceAll(name, ClientIDPlaceholder, clientID)
}

// Resolve looks up the configured attribute in the sources user, role, group (in that order).
// The first enabled source that yields a value wins; later sources are not consulted.
func Resolve(cfg StepConfig, ec core.EvaluationContext) Resolution {
	res := Resolution{
		Name: ResolveName(cfg.AttributeName, ec.ClientID),
	}

	for _, src := range sourcesOf(cfg, ec) {
		sr := core.SourceResult{Source: src.kind, Enabled: src.enabled}
		if !src.enabled || res.Found || res.Name == "" {
			res.Sources = append(res.Sources, sr)
			continue
		}
		sr.Consulted = true
		for _, b := range src.bearers() {
			if value, ok := b.FirstAttribute(res.Name); ok {
				sr.Found, sr.Value, sr.Bearer = true, value, b.label
				res.Found, res.Value, res.Source, res.Bearer = true, value, src.kind, b.label
				break
			}
		}
		res.Sources = append(res.Sources, sr)
	}

	return res
}

func sourcesOf(cfg StepConfig, ec core.EvaluationContext) []attributeSource {
	return []attributeSource{
		{
			kind:    core.SourceUser,
			enabled: cfg.UseUserSource,
			bearers: func() []bearer {
				if ec.User == nil {
					return nil
				}
				return []bearer{{label: ec.User.Username, AttributeBearer: ec.User}}
			},
		},
		{
			kind:    core.SourceRole,
			enabled: cfg.UseRoleSource,
			bearers: func() []bearer {
				out := make([]bearer, 0, len(ec.Roles))
				for i := range ec.Roles {
					out = append(out, bearer{label: ec.Roles[i].QualifiedName(), AttributeBearer: &ec.Roles[i]})
				}
				return out
			},
		},
		{
			kind:    core.SourceGroup,
			enabled: cfg.UseGroupSource,
			bearers: func() []bearer {
				out := make([]bearer, 0, len(ec.Groups))
				for i := range ec.Groups {
					label := ec.Groups[i].Path
					if label == "" {
						label = ec.Groups[i].Name
					}
					out = append(out, bearer{label: label, AttributeBearer: &ec.Groups[i]})
				}
				return out
			},
		},
	}
}
