package access

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Reissam/ajuda-tech-hub/internal/models"
)

func user(id string, role models.Role) models.User {
	return models.User{ID: id, Role: role}
}

// a small universe of tickets covering owned/unowned and assigned/unassigned.
func sampleTickets() []models.Ticket {
	var out []models.Ticket
	for i, createdBy := range []string{"c1", "c2", "t1"} {
		for j, assigned := range []string{"", "t1", "t2"} {
			out = append(out, models.Ticket{
				ID:         fmt.Sprintf("k%d%d", i, j),
				CreatedBy:  createdBy,
				AssignedTo: assigned,
			})
		}
	}
	return out
}

func TestClientSeesOnlyOwnTickets(t *testing.T) {
	p := user("c1", models.RoleClient)
	for _, tk := range sampleTickets() {
		assert.Equal(t, tk.CreatedBy == p.ID, Visible(p, tk), tk.ID)
	}
}

func TestTechnicianSeesOnlyAssignedTickets(t *testing.T) {
	p := user("t1", models.RoleTechnician)
	for _, tk := range sampleTickets() {
		assert.Equal(t, tk.AssignedTo == p.ID, Visible(p, tk), tk.ID)
	}
}

func TestUnassignedTicketInvisibleToTechnicianWithEmptyID(t *testing.T) {
	p := user("", models.RoleTechnician)
	assert.False(t, Visible(p, models.Ticket{ID: "k", AssignedTo: ""}))
}

func TestAdminAndManagerSeeEverything(t *testing.T) {
	for _, role := range []models.Role{models.RoleAdmin, models.RoleManager} {
		p := user("x", role)
		for _, tk := range sampleTickets() {
			assert.True(t, Visible(p, tk), "%s %s", role, tk.ID)
		}
	}
}

func TestCanMutateStatus(t *testing.T) {
	tk := models.Ticket{ID: "k1", AssignedTo: "t1", CreatedBy: "c1"}

	cases := []struct {
		name string
		p    models.User
		want bool
	}{
		{"admin", user("a1", models.RoleAdmin), true},
		{"assigned technician", user("t1", models.RoleTechnician), true},
		{"other technician", user("t2", models.RoleTechnician), false},
		{"manager", user("m1", models.RoleManager), false},
		{"creator client", user("c1", models.RoleClient), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanMutateStatus(tc.p, tk))
		})
	}
}

func TestCanAccessClientDirectory(t *testing.T) {
	assert.True(t, CanAccessClientDirectory(user("a", models.RoleAdmin)))
	assert.True(t, CanAccessClientDirectory(user("m", models.RoleManager)))
	assert.False(t, CanAccessClientDirectory(user("t", models.RoleTechnician)))
	assert.False(t, CanAccessClientDirectory(user("c", models.RoleClient)))
}

func TestScopeAgreesWithVisible(t *testing.T) {
	principals := []models.User{
		user("c1", models.RoleClient),
		user("t1", models.RoleTechnician),
		user("t2", models.RoleTechnician),
		user("a1", models.RoleAdmin),
		user("m1", models.RoleManager),
		user("?", models.Role("guest")),
	}
	for _, p := range principals {
		scope := ScopeFor(p)
		for _, tk := range sampleTickets() {
			assert.Equal(t, Visible(p, tk), scope.Matches(tk), "%s/%s", p.Role, tk.ID)
		}
	}
	assert.True(t, ScopeFor(user("?", models.Role("guest"))).Empty())
}

func TestFilterPreservesOrder(t *testing.T) {
	got := Filter(user("c2", models.RoleClient), sampleTickets())
	ids := make([]string, 0, len(got))
	for _, tk := range got {
		ids = append(ids, tk.ID)
	}
	assert.Equal(t, []string{"k10", "k11", "k12"}, ids)
}
