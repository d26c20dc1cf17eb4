package tickets

import (
	"github.com/Reissam/ajuda-tech-hub/internal/access"
	"github.com/Reissam/ajuda-tech-hub/internal/models"
)

// Summary holds the dashboard counters for one principal.
type Summary struct {
	Role       models.Role             `json:"role"`
	Total      int                     `json:"total"`
	ByStatus   map[models.Status]int   `json:"byStatus"`
	ByPriority map[models.Priority]int `json:"byPriority,omitempty"`
	Unassigned int                     `json:"unassigned"`
}

// Summarize counts the tickets p can see. Technicians and staff also get
// per-priority counts; staff see how many tickets wait for a technician.
func Summarize(p models.User, tickets []models.Ticket) Summary {
	sum := Summary{Role: p.Role, ByStatus: map[models.Status]int{}}
	withPriority := p.Role != models.RoleClient
	if withPriority {
		sum.ByPriority = map[models.Priority]int{}
	}
	for _, t := range tickets {
		if !access.Visible(p, t) {
			continue
		}
		sum.Total++
		sum.ByStatus[t.Status]++
		if withPriority {
			sum.ByPriority[t.Priority]++
		}
		if t.AssignedTo == "" && access.CanAssign(p) {
			sum.Unassigned++
		}
	}
	return sum
}
