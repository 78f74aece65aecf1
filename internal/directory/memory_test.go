package directory

import (
	"errors"
	"reflect"
	"testing"

	"github.com/darmiel/attrgate/internal/core"
)

func testDirectory() *core.Directory {
	return &core.Directory{
		Clients: []core.Client{{ClientID: "billing"}},
		Roles: []core.Role{
			{Name: "viewer"},
			{Name: "accountant", Client: "billing", Attributes: core.Attributes{"billing:login": {"yes"}}},
		},
		Groups: []core.Group{
			{Name: "finance", Path: "/org/finance"},
			{Name: "ops", Path: "/org/ops"},
		},
		Users: []core.User{
			{
				ID:       "u-1",
				Username: "alice",
				Roles:    []string{"billing/accountant", "missing", "viewer"},
				Groups:   []string{"ops", "finance"},
			},
		},
	}
}

func TestInMemoryDirectory_LookupUser(t *testing.T) {
	d := NewInMemoryDirectory(testDirectory())

	tests := []struct {
		key     string
		wantErr error
	}{
		{"alice", nil},
		{"u-1", nil},
		{"bob", ErrUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			u, err := d.LookupUser(tt.key)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("LookupUser() error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && u.Username != "alice" {
				t.Errorf("LookupUser() = %s, want alice", u.Username)
			}
		})
	}
}

func TestInMemoryDirectory_EvaluationContext(t *testing.T) {
	d := NewInMemoryDirectory(testDirectory())

	ec, err := d.EvaluationContext("alice", "billing")
	if err != nil {
		t.Fatalf("EvaluationContext() error = %v", err)
	}

	var roles []string
	for _, r := range ec.Roles {
		roles = append(roles, r.QualifiedName())
	}
	if want := []string{"billing/accountant", "viewer"}; !reflect.DeepEqual(roles, want) {
		t.Errorf("roles = %v, want %v", roles, want)
	}

	var groups []string
	for _, g := range ec.Groups {
		groups = append(groups, g.Name)
	}
	if want := []string{"ops", "finance"}; !reflect.DeepEqual(groups, want) {
		t.Errorf("groups = %v, want %v", groups, want)
	}
	if ec.ClientID != "billing" {
		t.Errorf("ClientID = %s, want billing", ec.ClientID)
	}
}

func TestInMemoryDirectory_ClientNotFound(t *testing.T) {
	d := NewInMemoryDirectory(testDirectory())

	ec, err := d.EvaluationContext("alice", "crm")
	if !errors.Is(err, ErrClientNotFound) {
		t.Fatalf("EvaluationContext() error = %v, want %v", err, ErrClientNotFound)
	}
	if ec.User == nil || ec.User.Username != "alice" {
		t.Error("expected the resolved user to be returned with the client error")
	}
}

func TestInMemoryDirectory_LookupReturnsCopy(t *testing.T) {
	d := NewInMemoryDirectory(testDirectory())

	u, _ := d.LookupUser("alice")
	u.Username = "mallory"

	again, _ := d.LookupUser("alice")
	if again.Username != "alice" {
		t.Error("directory was modified through a lookup result")
	}
}

func TestInMemoryDirectory_LookupsAreDeepCopies(t *testing.T) {
	dir := testDirectory()
	dir.Users[0].Attributes = core.Attributes{"billing:login": {"no"}}
	dir.Groups[1].Attributes = core.Attributes{"billing:login": {"yes"}}
	d := NewInMemoryDirectory(dir)

	u, _ := d.LookupUser("alice")
	roles := d.RoleMappings(u)
	roles[0].Attributes["billing:login"][0] = "no"
	groups := d.Groups(u)
	groups[0].Attributes["billing:login"] = nil

	u.Attributes["billing:login"][0] = "yes"
	u.Attributes["extra"] = []string{"x"}
	u.Roles[0] = "viewer"

	again, _ := d.LookupUser("alice")
	if v, _ := again.FirstAttribute("billing:login"); v != "no" {
		t.Errorf("user attribute changed through a lookup result: %q", v)
	}
	if _, ok := again.Attributes["extra"]; ok {
		t.Error("user attribute map shared with a lookup result")
	}
	if again.Roles[0] != "billing/accountant" {
		t.Errorf("user roles shared with a lookup result: %v", again.Roles)
	}

	ec, err := d.EvaluationContext("alice", "billing")
	if err != nil {
		t.Fatalf("EvaluationContext() error = %v", err)
	}
	if v, _ := ec.Roles[0].FirstAttribute("billing:login"); v != "yes" {
		t.Errorf("role attribute changed through a lookup result: %q", v)
	}
	if v, _ := ec.Groups[0].FirstAttribute("billing:login"); v != "yes" {
		t.Errorf("group attribute changed through a lookup result: %q", v)
	}
}

func TestInMemoryDirectory_Replace(t *testing.T) {
	d := NewInMemoryDirectory(nil)
	if _, err := d.LookupUser("alice"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected empty directory, got %v", err)
	}

	d.Replace(testDirectory())

	clients, roles, groups, users := d.Stats()
	if clients != 1 || roles != 2 || groups != 2 || users != 1 {
		t.Errorf("Stats() = %d, %d, %d, %d", clients, roles, groups, users)
	}
	if _, err := d.LookupUser("alice"); err != nil {
		t.Errorf("LookupUser() after Replace error = %v", err)
	}
}
