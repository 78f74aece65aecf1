package directory

import (
	"errors"
	"sync"

	"github.com/darmiel/attrgate/internal/core"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrClientNotFound = errors.New("client not found")
)

// snapshot is an indexed, read-only view of a core.Directory.
type snapshot struct {
	dir *core.Directory

	usersByName map[string]int
	usersByID   map[string]int
	clients     map[string]int
	roles       map[string]int
	groups      map[string]int
}

func index(dir *core.Directory) *snapshot {
	s := &snapshot{
		dir:         dir,
		usersByName: make(map[string]int, len(dir.Users)),
		usersByID:   make(map[string]int, len(dir.Users)),
		clients:     make(map[string]int, len(dir.Clients)),
		roles:       make(map[string]int, len(dir.Roles)),
		groups:      make(map[string]int, len(dir.Groups)),
	}
	for i, u := range dir.Users {
		s.usersByName[u.Username] = i
		if u.ID != "" {
			s.usersByID[u.ID] = i
		}
	}
	for i, c := range dir.Clients {
		s.clients[c.ClientID] = i
	}
	for i, r := range dir.Roles {
		s.roles[r.QualifiedName()] = i
	}
	for i, g := range dir.Groups {
		s.groups[g.Name] = i
	}
	return s
}

// InMemoryDirectory serves users, roles and groups from a directory snapshot.
// Lookups return deep copies, callers cannot change the directory through them.
type InMemoryDirectory struct {
	mu   sync.RWMutex
	snap *snapshot
}

func NewInMemoryDirectory(dir *core.Directory) *InMemoryDirectory {
	if dir == nil {
		dir = &core.Directory{}
	}
	return &InMemoryDirectory{snap: index(dir)}
}

// Replace swaps the served snapshot.
func (d *InMemoryDirectory) Replace(dir *core.Directory) {
	if dir == nil {
		dir = &core.Directory{}
	}
	s := index(dir)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.snap = s
}

func (d *InMemoryDirectory) current() *snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snap
}

// Stats returns the number of clients, roles, groups and users.
func (d *InMemoryDirectory) Stats() (clients, roles, groups, users int) {
	s := d.current()
	return len(s.dir.Clients), len(s.dir.Roles), len(s.dir.Groups), len(s.dir.Users)
}

// LookupUser finds a user by username, falling back to the user ID.
func (d *InMemoryDirectory) LookupUser(key string) (*core.User, error) {
	s := d.current()
	i, ok := s.usersByName[key]
	if !ok {
		if i, ok = s.usersByID[key]; !ok {
			return nil, ErrUserNotFound
		}
	}
	u := s.dir.Users[i].Clone()
	return &u, nil
}

func (d *InMemoryDirectory) Client(clientID string) (*core.Client, error) {
	s := d.current()
	i, ok := s.clients[clientID]
	if !ok {
		return nil, ErrClientNotFound
	}
	c := s.dir.Clients[i]
	return &c, nil
}

// RoleMappings returns the roles mapped to the user in the order they are listed on the user.
// Unknown role references are skipped.
func (d *InMemoryDirectory) RoleMappings(user *core.User) []core.Role {
	s := d.current()
	out := make([]core.Role, 0, len(user.Roles))
	for _, name := range user.Roles {
		if i, ok := s.roles[name]; ok {
			out = append(out, s.dir.Roles[i].Clone())
		}
	}
	return out
}

// Groups returns the groups of the user in the order they are listed on the user.
func (d *InMemoryDirectory) Groups(user *core.User) []core.Group {
	s := d.current()
	out := make([]core.Group, 0, len(user.Groups))
	for _, name := range user.Groups {
		if i, ok := s.groups[name]; ok {
			out = append(out, s.dir.Groups[i].Clone())
		}
	}
	return out
}

// EvaluationContext resolves user, client, roles and groups from a single snapshot.
func (d *InMemoryDirectory) EvaluationContext(userKey, clientID string) (core.EvaluationContext, error) {
	s := d.current()
	single := &InMemoryDirectory{snap: s}

	user, err := single.LookupUser(userKey)
	if err != nil {
		return core.EvaluationContext{}, err
	}
	if _, err := single.Client(clientID); err != nil {
		return core.EvaluationContext{User: user}, err
	}
	return core.EvaluationContext{
		User:     user,
		ClientID: clientID,
		Roles:    single.RoleMappings(user),
		Groups:   single.Groups(user),
	}, nil
}
