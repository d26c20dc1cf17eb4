package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Reissam/ajuda-tech-hub/internal/models"
)

func ids(ts []models.Ticket) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.ID)
	}
	return out
}

func TestTicketFilterApply(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tickets := []models.Ticket{
		{ID: "a", Title: "Camera offline", Status: models.StatusOpen, Priority: models.PriorityHigh, UpdatedAt: base.Add(1 * time.Hour), CreatedAt: base},
		{ID: "b", Title: "Door lock", ReportedIssue: "camera cable cut", Status: models.StatusResolved, Priority: models.PriorityLow, UpdatedAt: base.Add(3 * time.Hour), CreatedAt: base.Add(time.Minute)},
		{ID: "c", Title: "Alarm beeping", Status: models.StatusOpen, Priority: models.PriorityMedium, UpdatedAt: base.Add(2 * time.Hour), CreatedAt: base.Add(2 * time.Minute)},
	}

	assert.Equal(t, []string{"b", "c", "a"}, ids(TicketFilter{}.Apply(tickets)))
	assert.Equal(t, []string{"b", "a"}, ids(TicketFilter{Q: "CAMERA"}.Apply(tickets)))
	assert.Equal(t, []string{"a", "c"}, ids(TicketFilter{Status: "open", Sort: "created_at", Order: "asc"}.Apply(tickets)))
	assert.Equal(t, []string{"a", "c", "b"}, ids(TicketFilter{Sort: "priority"}.Apply(tickets)))
	assert.Equal(t, []string{"a", "b", "c"}, ids(tickets), "input must stay untouched")
}

func TestSanitizeSortFallsBack(t *testing.T) {
	assert.Equal(t, "updated_at", sanitizeSort("id; DROP TABLE tickets", "updated_at"))
	assert.Equal(t, "priority", sanitizeSort(" Priority ", "updated_at"))
	assert.Equal(t, "desc", sanitizeOrder("sideways", "desc"))
}
