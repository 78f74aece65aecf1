package core

// Directory is a read-only snapshot of the identity data the flow runs against.
// Ordering of Roles and Groups is the declaration order and is what steps iterate over.
type Directory struct {
	Clients []Client `yaml:"clients" json:"clients"`
	Roles   []Role   `yaml:"roles" json:"roles"`
	Groups  []Group  `yaml:"groups" json:"groups"`
	Users   []User   `yaml:"users" json:"users"`
}

// Merge appends the entries of other to d.
func (d *Directory) Merge(other *Directory) {
	if other == nil {
		return
	}
	d.Clients = append(d.Clients, other.Clients...)
	d.Roles = append(d.Roles, other.Roles...)
	d.Groups = append(d.Groups, other.Groups...)
	d.Users = append(d.Users, other.Users...)
}
