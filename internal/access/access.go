// Package access holds the role-based visibility and mutation predicates.
// They are pure functions; the same rules are pushed down to storage through
// Scope so list queries never return rows a principal cannot see.
package access

import "github.com/Reissam/ajuda-tech-hub/internal/models"

// Visible reports whether principal may see ticket t.
//   - client:     only tickets they opened
//   - technician: only tickets assigned to them
//   - admin, manager: everything
func Visible(p models.User, t models.Ticket) bool {
	switch p.Role {
	case models.RoleClient:
		return t.CreatedBy == p.ID
	case models.RoleTechnician:
		return t.AssignedTo != "" && t.AssignedTo == p.ID
	case models.RoleAdmin, models.RoleManager:
		return true
	}
	return false
}

// CanMutateStatus reports whether principal may change status and service
// fields of t: admins always, technicians only on their own assignments.
func CanMutateStatus(p models.User, t models.Ticket) bool {
	if p.Role == models.RoleAdmin {
		return true
	}
	return p.Role == models.RoleTechnician && t.AssignedTo != "" && t.AssignedTo == p.ID
}

func CanAccessClientDirectory(p models.User) bool {
	return p.Role == models.RoleAdmin || p.Role == models.RoleManager
}

// CanAssign reports whether principal may set or change a ticket's technician.
func CanAssign(p models.User) bool {
	return p.Role == models.RoleAdmin || p.Role == models.RoleManager
}

// CanEditDetails covers the intake fields (title, description, priority...).
func CanEditDetails(p models.User, t models.Ticket) bool {
	switch p.Role {
	case models.RoleAdmin, models.RoleManager:
		return true
	case models.RoleClient:
		return t.CreatedBy == p.ID
	}
	return false
}

func CanComment(p models.User, t models.Ticket) bool { return Visible(p, t) }

func CanOpenTicket(p models.User) bool {
	switch p.Role {
	case models.RoleClient, models.RoleManager, models.RoleAdmin:
		return true
	}
	return false
}

func CanManageUsers(p models.User) bool { return p.Role == models.RoleAdmin }

// Filter returns the subset of tickets visible to p, preserving order.
func Filter(p models.User, tickets []models.Ticket) []models.Ticket {
	out := make([]models.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if Visible(p, t) {
			out = append(out, t)
		}
	}
	return out
}

// Scope is Visible expressed as a storage filter. Exactly one of the fields
// is meaningful: All, or a CreatedBy / AssignedTo match. A zero Scope matches
// nothing.
type Scope struct {
	All        bool
	CreatedBy  string
	AssignedTo string
}

func ScopeFor(p models.User) Scope {
	switch p.Role {
	case models.RoleAdmin, models.RoleManager:
		return Scope{All: true}
	case models.RoleClient:
		return Scope{CreatedBy: p.ID}
	case models.RoleTechnician:
		return Scope{AssignedTo: p.ID}
	}
	return Scope{}
}

// Empty reports whether the scope can match no row at all.
func (s Scope) Empty() bool {
	return !s.All && s.CreatedBy == "" && s.AssignedTo == ""
}

// Matches applies the scope to an in-memory ticket.
func (s Scope) Matches(t models.Ticket) bool {
	switch {
	case s.All:
		return true
	case s.CreatedBy != "":
		return t.CreatedBy == s.CreatedBy
	case s.AssignedTo != "":
		return t.AssignedTo == s.AssignedTo
	}
	return false
}
