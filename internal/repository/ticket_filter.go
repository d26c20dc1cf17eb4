package repository

import (
	"sort"
	"strings"

	"github.com/Reissam/ajuda-tech-hub/internal/models"
)

type TicketFilter struct {
	Q          string
	Status     string
	Priority   string
	Category   string
	AssignedTo string
	ClientID   string
	Sort       string // created_at, updated_at, priority
	Order      string // asc|desc
}

// Match reports whether t satisfies every non-empty criterion. Q is a
// case-insensitive substring match on title, description and reported issue.
func (f TicketFilter) Match(t models.Ticket) bool {
	if s := strings.TrimSpace(f.Status); s != "" && string(t.Status) != s {
		return false
	}
	if p := strings.TrimSpace(f.Priority); p != "" && string(t.Priority) != p {
		return false
	}
	if c := strings.TrimSpace(f.Category); c != "" && string(t.Category) != c {
		return false
	}
	if a := strings.TrimSpace(f.AssignedTo); a != "" && t.AssignedTo != a {
		return false
	}
	if c := strings.TrimSpace(f.ClientID); c != "" && t.ClientID != c {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Q)); q != "" {
		hay := strings.ToLower(t.Title + "\n" + t.Description + "\n" + t.ReportedIssue)
		if !strings.Contains(hay, q) {
			return false
		}
	}
	return true
}

// Apply filters and sorts tickets. The input slice is not modified.
func (f TicketFilter) Apply(tickets []models.Ticket) []models.Ticket {
	out := make([]models.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if f.Match(t) {
			out = append(out, t)
		}
	}

	desc := sanitizeOrder(f.Order, "desc") == "desc"
	var less func(a, b models.Ticket) bool
	switch sanitizeSort(f.Sort, "updated_at") {
	case "created_at":
		less = func(a, b models.Ticket) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case "priority":
		less = func(a, b models.Ticket) bool { return a.Priority.Rank() < b.Priority.Rank() }
	default:
		less = func(a, b models.Ticket) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	}
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

func sanitizeSort(s, def string) string {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "created_at", "updated_at", "priority":
		return v
	default:
		return def
	}
}

func sanitizeOrder(o, def string) string {
	switch v := strings.ToLower(strings.TrimSpace(o)); v {
	case "asc", "desc":
		return v
	default:
		return def
	}
}
