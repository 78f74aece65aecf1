package validation

import (
	"fmt"

	"github.com/darmiel/attrgate/internal/core"
	"github.com/darmiel/attrgate/internal/engine"
)

// Execution is the part of an execution config that can be structurally wrong.
// Authenticator configuration values are intentionally not validated.
type Execution struct {
	Alias         string
	Authenticator string
	Requirement   string
}

// ValidateExecutions checks the executions of a flow against the built-in authenticators.
func ValidateExecutions(executions []Execution) error {
	return ValidateExecutionsWith(engine.DefaultRegistry(), executions)
}

func ValidateExecutionsWith(registry *engine.Registry, executions []Execution) error {
	seenAliases := make(map[string]struct{})

	for i, e := range executions {
		if e.Alias == "" {
			return fmt.Errorf("execution #%d missing alias", i)
		}
		if _, exists := seenAliases[e.Alias]; exists {
			return fmt.Errorf("execution alias '%s' is not unique", e.Alias)
		}
		seenAliases[e.Alias] = struct{}{}

		if e.Authenticator == "" {
			return fmt.Errorf("execution '%s' missing authenticator", e.Alias)
		}

		requirement := core.RequirementRequired
		if e.Requirement != "" {
			r, err := core.ParseRequirement(e.Requirement)
			if err != nil {
				return fmt.Errorf("execution '%s': %w", e.Alias, err)
			}
			requirement = r
		}
		if err := registry.CheckRequirement(e.Authenticator, requirement); err != nil {
			return fmt.Errorf("execution '%s': %w", e.Alias, err)
		}
	}

	return nil
}

// ValidateDirectory makes sure every role and group a user references exists
// and that names are unique.
func ValidateDirectory(dir *core.Directory) error {
	clients := make(map[string]struct{})
	for i, c := range dir.Clients {
		if c.ClientID == "" {
			return fmt.Errorf("client #%d missing client_id", i)
		}
		if _, exists := clients[c.ClientID]; exists {
			return fmt.Errorf("client '%s' is not unique", c.ClientID)
		}
		clients[c.ClientID] = struct{}{}
	}

	roles := make(map[string]struct{})
	for i, r := range dir.Roles {
		if r.Name == "" {
			return fmt.Errorf("role #%d missing name", i)
		}
		if r.Client != "" {
			if _, known := clients[r.Client]; !known {
				return fmt.Errorf("role '%s' references unknown client '%s'", r.Name, r.Client)
			}
		}
		if _, exists := roles[r.QualifiedName()]; exists {
			return fmt.Errorf("role '%s' is not unique", r.QualifiedName())
		}
		roles[r.QualifiedName()] = struct{}{}
	}

	groups := make(map[string]struct{})
	for i, g := range dir.Groups {
		if g.Name == "" {
			return fmt.Errorf("group #%d missing name", i)
		}
		if _, exists := groups[g.Name]; exists {
			return fmt.Errorf("group '%s' is not unique", g.Name)
		}
		groups[g.Name] = struct{}{}
	}

	users := make(map[string]struct{})
	for i, u := range dir.Users {
		if u.Username == "" {
			return fmt.Errorf("user #%d missing username", i)
		}
		if _, exists := users[u.Username]; exists {
			return fmt.Errorf("username '%s' is not unique", u.Username)
		}
		users[u.Username] = struct{}{}

		for _, r := range u.Roles {
			if _, known := roles[r]; !known {
				return fmt.Errorf("user '%s' references unknown role '%s'", u.Username, r)
			}
		}
		for _, g := range u.Groups {
			if _, known := groups[g]; !known {
				return fmt.Errorf("user '%s' references unknown group '%s'", u.Username, g)
			}
		}
	}

	return nil
}
