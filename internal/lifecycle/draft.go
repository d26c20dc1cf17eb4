package lifecycle

import (
	"strings"

	"github.com/Reissam/ajuda-tech-hub/internal/apperr"
	"github.com/Reissam/ajuda-tech-hub/internal/models"
)

// Draft is a ticket as submitted at intake, before server-assigned fields.
type Draft struct {
	Title             string            `json:"title"`
	TicketType        models.TicketType `json:"ticketType"`
	TicketDescription models.Equipment  `json:"ticketDescription"`
	Description       string            `json:"description"`
	ReportedIssue     string            `json:"reportedIssue"`
	ConfirmedIssue    string            `json:"confirmedIssue"`
	ServicePerformed  string            `json:"servicePerformed"`
	Priority          models.Priority   `json:"priority"`
	Category          models.Category   `json:"category"`
	ClientID          string            `json:"clientId"`
	AssignedTo        string            `json:"assignedTo"`
	UnderWarranty     *bool             `json:"underWarranty"`
	IsWorking         *bool             `json:"isWorking"`
	ServiceCompleted  *bool             `json:"serviceCompleted"`
	ClientVerified    *bool             `json:"clientVerified"`
}

// Intake defaults, matching what storage assumes for legacy rows.
const (
	DefaultPriority   = models.PriorityMedium
	DefaultCategory   = models.CategorySoftware
	DefaultTicketType = models.TicketTypePreventive
	DefaultEquipment  = models.EquipmentMechanicalLock
)

// loggedCall reports whether p files tickets on behalf of callers. Those
// principals only need the reported issue and the client site.
func loggedCall(p models.User) bool {
	return p.Role == models.RoleManager || p.Role == models.RoleAdmin
}

// PrepareDraft validates d for principal p and returns the ticket to insert.
// CreatedBy is set to p.ID and status is always open.
func PrepareDraft(p models.User, d Draft) (models.Ticket, error) {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.ReportedIssue = strings.TrimSpace(d.ReportedIssue)
	d.ClientID = strings.TrimSpace(d.ClientID)
	d.AssignedTo = strings.TrimSpace(d.AssignedTo)

	verr := apperr.Validation("please fill in all required fields")
	if d.ClientID == "" {
		verr.WithDetail("clientId", "is required")
	}
	if d.ReportedIssue == "" {
		verr.WithDetail("reportedIssue", "is required")
	}
	if loggedCall(p) {
		if d.Title == "" {
			d.Title = d.ReportedIssue
		}
		if d.Description == "" {
			d.Description = d.ReportedIssue
		}
	} else {
		if d.Title == "" {
			verr.WithDetail("title", "is required")
		}
		if d.Description == "" {
			verr.WithDetail("description", "is required")
		}
	}

	if d.Priority == "" {
		d.Priority = DefaultPriority
	} else if !d.Priority.IsValid() {
		verr.WithDetail("priority", "is invalid")
	}
	if d.Category == "" {
		d.Category = DefaultCategory
	} else if !d.Category.IsValid() {
		verr.WithDetail("category", "is invalid")
	}
	if d.TicketType == "" {
		d.TicketType = DefaultTicketType
	} else if !d.TicketType.IsValid() {
		verr.WithDetail("ticketType", "is invalid")
	}
	if d.TicketDescription == "" {
		d.TicketDescription = DefaultEquipment
	} else if !d.TicketDescription.IsValid() {
		verr.WithDetail("ticketDescription", "is invalid")
	}

	if len(verr.Details) > 0 {
		return models.Ticket{}, verr
	}

	return models.Ticket{
		Title:             d.Title,
		TicketType:        d.TicketType,
		TicketDescription: d.TicketDescription,
		Description:       d.Description,
		ReportedIssue:     d.ReportedIssue,
		ConfirmedIssue:    strings.TrimSpace(d.ConfirmedIssue),
		ServicePerformed:  strings.TrimSpace(d.ServicePerformed),
		Status:            models.StatusOpen,
		Priority:          d.Priority,
		Category:          d.Category,
		CreatedBy:         p.ID,
		AssignedTo:        d.AssignedTo,
		ClientID:          d.ClientID,
		UnderWarranty:     d.UnderWarranty,
		IsWorking:         d.IsWorking,
		ServiceCompleted:  d.ServiceCompleted,
		ClientVerified:    d.ClientVerified,
		Comments:          []models.Comment{},
	}, nil
}
