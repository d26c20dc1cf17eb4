package models

import "time"

type Ticket struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	TicketType        TicketType `json:"ticketType"`
	TicketDescription Equipment  `json:"ticketDescription"`
	Description       string     `json:"description"`
	ReportedIssue     string     `json:"reportedIssue,omitempty"`
	ConfirmedIssue    string     `json:"confirmedIssue,omitempty"`
	ServicePerformed  string     `json:"servicePerformed,omitempty"`
	Status            Status     `json:"status"`
	Priority          Priority   `json:"priority"`
	Category          Category   `json:"category"`
	CreatedBy         string     `json:"createdBy"`
	AssignedTo        string     `json:"assignedTo,omitempty"`
	ClientID          string     `json:"clientId"`
	UnderWarranty     *bool      `json:"underWarranty,omitempty"`
	IsWorking         *bool      `json:"isWorking,omitempty"`
	ServiceCompleted  *bool      `json:"serviceCompleted,omitempty"`
	ClientVerified    *bool      `json:"clientVerified,omitempty"`
	ArrivalTime       string     `json:"arrivalTime,omitempty"`   // HH:MM
	DepartureTime     string     `json:"departureTime,omitempty"` // HH:MM
	ServiceDate       *time.Time `json:"serviceDate,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
	Comments          []Comment  `json:"comments"`
}

// Comment is an append-only note on a ticket.
type Comment struct {
	ID          string    `json:"id"`
	TicketID    string    `json:"ticketId"`
	Content     string    `json:"content"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	Attachments []string  `json:"attachments"`
}

// TicketPatch carries a partial ticket update. Nil fields are left untouched.
type TicketPatch struct {
	Title             *string     `json:"title"`
	TicketType        *TicketType `json:"ticketType"`
	TicketDescription *Equipment  `json:"ticketDescription"`
	Description       *string     `json:"description"`
	ReportedIssue     *string     `json:"reportedIssue"`
	ConfirmedIssue    *string     `json:"confirmedIssue"`
	ServicePerformed  *string     `json:"servicePerformed"`
	Status            *Status     `json:"status"`
	Priority          *Priority   `json:"priority"`
	Category          *Category   `json:"category"`
	AssignedTo        *string     `json:"assignedTo"`
	UnderWarranty     *bool       `json:"underWarranty"`
	IsWorking         *bool       `json:"isWorking"`
	ServiceCompleted  *bool       `json:"serviceCompleted"`
	ClientVerified    *bool       `json:"clientVerified"`
	ArrivalTime       *string     `json:"arrivalTime"`
	DepartureTime     *string     `json:"departureTime"`
	ServiceDate       *time.Time  `json:"serviceDate"`
}

// TouchesDetails reports whether the patch edits descriptive intake fields.
func (p TicketPatch) TouchesDetails() bool {
	return p.Title != nil || p.TicketType != nil || p.TicketDescription != nil ||
		p.Description != nil || p.ReportedIssue != nil || p.Priority != nil || p.Category != nil
}

// TouchesService reports whether the patch edits status or field-service data.
func (p TicketPatch) TouchesService() bool {
	return p.Status != nil || p.ConfirmedIssue != nil || p.ServicePerformed != nil ||
		p.UnderWarranty != nil || p.IsWorking != nil || p.ServiceCompleted != nil ||
		p.ClientVerified != nil || p.ArrivalTime != nil || p.DepartureTime != nil || p.ServiceDate != nil
}

func (p TicketPatch) TouchesAssignment() bool { return p.AssignedTo != nil }

func (p TicketPatch) Empty() bool {
	return !p.TouchesDetails() && !p.TouchesService() && !p.TouchesAssignment()
}

// Apply merges the set fields into t. UpdatedAt is left to the caller.
func (p TicketPatch) Apply(t *Ticket) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.TicketType != nil {
		t.TicketType = *p.TicketType
	}
	if p.TicketDescription != nil {
		t.TicketDescription = *p.TicketDescription
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.ReportedIssue != nil {
		t.ReportedIssue = *p.ReportedIssue
	}
	if p.ConfirmedIssue != nil {
		t.ConfirmedIssue = *p.ConfirmedIssue
	}
	if p.ServicePerformed != nil {
		t.ServicePerformed = *p.ServicePerformed
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.AssignedTo != nil {
		t.AssignedTo = *p.AssignedTo
	}
	if p.UnderWarranty != nil {
		t.UnderWarranty = boolPtr(*p.UnderWarranty)
	}
	if p.IsWorking != nil {
		t.IsWorking = boolPtr(*p.IsWorking)
	}
	if p.ServiceCompleted != nil {
		t.ServiceCompleted = boolPtr(*p.ServiceCompleted)
	}
	if p.ClientVerified != nil {
		t.ClientVerified = boolPtr(*p.ClientVerified)
	}
	if p.ArrivalTime != nil {
		t.ArrivalTime = *p.ArrivalTime
	}
	if p.DepartureTime != nil {
		t.DepartureTime = *p.DepartureTime
	}
	if p.ServiceDate != nil {
		d := *p.ServiceDate
		t.ServiceDate = &d
	}
}

func boolPtr(b bool) *bool { return &b }

// Clone returns a deep copy so callers cannot alias store-owned slices.
func (t Ticket) Clone() Ticket {
	out := t
	if t.Comments != nil {
		out.Comments = make([]Comment, len(t.Comments))
		for i, c := range t.Comments {
			if c.Attachments != nil {
				c.Attachments = append([]string{}, c.Attachments...)
			}
			out.Comments[i] = c
		}
	}
	if t.UnderWarranty != nil {
		out.UnderWarranty = boolPtr(*t.UnderWarranty)
	}
	if t.IsWorking != nil {
		out.IsWorking = boolPtr(*t.IsWorking)
	}
	if t.ServiceCompleted != nil {
		out.ServiceCompleted = boolPtr(*t.ServiceCompleted)
	}
	if t.ClientVerified != nil {
		out.ClientVerified = boolPtr(*t.ClientVerified)
	}
	if t.ServiceDate != nil {
		d := *t.ServiceDate
		out.ServiceDate = &d
	}
	return out
}
