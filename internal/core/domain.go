package core

import "slices"

// AttributeBearer is anything that carries named, multi-valued attributes.
// Users, roles and groups all implement it.
type AttributeBearer interface {
	// FirstAttribute returns the first value of the attribute with the given name.
	// The second return value is false if the attribute is absent or has no values.
	FirstAttribute(name string) (string, bool)
}

// Attributes maps an attribute name to its ordered values.
type Attributes map[string][]string

func (a Attributes) FirstAttribute(name string) (string, bool) {
	values, ok := a[name]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// Clone copies the map and every value slice. A nil map stays nil.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	for name, values := range a {
		out[name] = slices.Clone(values)
	}
	return out
}

// User is an identity that has already been resolved by an earlier step of the flow.
type User struct {
	// ID is the unique identifier of the user.
	ID string `yaml:"id" json:"id"`

	// Username is the login name of the user.
	Username string `yaml:"username" json:"username"`

	// Attributes are the user's own attributes.
	Attributes Attributes `yaml:"attributes" json:"attributes,omitempty"`

	// Roles and Groups reference role / group names in the directory.
	Roles  []string `yaml:"roles" json:"roles,omitempty"`
	Groups []string `yaml:"groups" json:"groups,omitempty"`
}

var _ AttributeBearer = (*User)(nil)

func (u *User) FirstAttribute(name string) (string, bool) {
	return u.Attributes.FirstAttribute(name)
}

// Clone returns a copy that shares no maps or slices with u.
func (u User) Clone() User {
	u.Attributes = u.Attributes.Clone()
	u.Roles = slices.Clone(u.Roles)
	u.Groups = slices.Clone(u.Groups)
	return u
}

// Role is a role that can be mapped onto a user.
type Role struct {
	// Name of the role. Together with Client it identifies the role.
	Name string `yaml:"name" json:"name"`

	// Client is set for client roles and empty for realm roles.
	Client string `yaml:"client" json:"client,omitempty"`

	Description string     `yaml:"description" json:"description,omitempty"`
	Attributes  Attributes `yaml:"attributes" json:"attributes,omitempty"`
}

var _ AttributeBearer = (*Role)(nil)

func (r *Role) FirstAttribute(name string) (string, bool) {
	return r.Attributes.FirstAttribute(name)
}

func (r Role) Clone() Role {
	r.Attributes = r.Attributes.Clone()
	return r
}

// QualifiedName returns "client/name" for client roles and "name" for realm roles.
func (r *Role) QualifiedName() string {
	if r.Client == "" {
		return r.Name
	}
	return r.Client + "/" + r.Name
}

// Group is a group a user can be a member of.
type Group struct {
	Name       string     `yaml:"name" json:"name"`
	Path       string     `yaml:"path" json:"path,omitempty"`
	Attributes Attributes `yaml:"attributes" json:"attributes,omitempty"`
}

var _ AttributeBearer = (*Group)(nil)

func (g *Group) FirstAttribute(name string) (string, bool) {
	return g.Attributes.FirstAttribute(name)
}

func (g Group) Clone() Group {
	g.Attributes = g.Attributes.Clone()
	return g
}

// Client is an application users log in to.
type Client struct {
	ClientID string `yaml:"client_id" json:"client_id"`
	Name     string `yaml:"name" json:"name,omitempty"`
}

// EvaluationContext is the per-attempt snapshot a step decides on.
// It is built by the flow host and discarded after the step returns.
type EvaluationContext struct {
	User     *User
	ClientID string
	Roles    []Role
	Groups   []Group
}
