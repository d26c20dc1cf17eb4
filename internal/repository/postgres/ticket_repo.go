package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Reissam/ajuda-tech-hub/internal/access"
	"github.com/Reissam/ajuda-tech-hub/internal/models"
	"github.com/Reissam/ajuda-tech-hub/internal/repository"
)

type TicketRepo struct{ db *pgxpool.Pool }

func NewTicketRepo(db *pgxpool.Pool) repository.TicketRepository { return &TicketRepo{db: db} }

const ticketColumns = `
	t.id::text, t.title, t.ticket_type, t.ticket_description, t.description,
	t.reported_issue, t.confirmed_issue, t.service_performed,
	t.status, t.priority, t.category, t.created_by::text,
	COALESCE(t.assigned_to::text, ''), t.client_id::text,
	t.under_warranty, t.is_working, t.service_completed, t.client_verified,
	COALESCE(t.arrival_time, ''), COALESCE(t.departure_time, ''), t.service_date,
	t.created_at, t.updated_at`

func scanTicket(row pgx.Row, t *models.Ticket) error {
	return row.Scan(
		&t.ID, &t.Title, &t.TicketType, &t.TicketDescription, &t.Description,
		&t.ReportedIssue, &t.ConfirmedIssue, &t.ServicePerformed,
		&t.Status, &t.Priority, &t.Category, &t.CreatedBy,
		&t.AssignedTo, &t.ClientID,
		&t.UnderWarranty, &t.IsWorking, &t.ServiceCompleted, &t.ClientVerified,
		&t.ArrivalTime, &t.DepartureTime, &t.ServiceDate,
		&t.CreatedAt, &t.UpdatedAt,
	)
}

// scopeWhere renders the visibility rules as a WHERE clause on alias t.
func scopeWhere(s access.Scope, args []any) (string, []any) {
	switch {
	case s.All:
		return "WHERE 1=1", args
	case s.CreatedBy != "":
		args = append(args, s.CreatedBy)
		return "WHERE t.created_by = $" + itoa(len(args)) + "::uuid", args
	case s.AssignedTo != "":
		args = append(args, s.AssignedTo)
		return "WHERE t.assigned_to = $" + itoa(len(args)) + "::uuid", args
	}
	return "WHERE false", args
}

// List returns every ticket inside scope with its comments. Both queries
// carry the same scope predicate.
func (r *TicketRepo) List(ctx context.Context, scope access.Scope) ([]models.Ticket, error) {
	if scope.Empty() {
		return []models.Ticket{}, nil
	}
	where, args := scopeWhere(scope, nil)

	rows, err := r.db.Query(ctx, `SELECT `+ticketColumns+` FROM tickets t `+where+` ORDER BY t.created_at ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Ticket{}
	index := map[string]int{}
	for rows.Next() {
		var t models.Ticket
		if err := scanTicket(rows, &t); err != nil {
			return nil, err
		}
		t.Comments = []models.Comment{}
		index[t.ID] = len(out)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	crows, err := r.db.Query(ctx, `
		SELECT c.id::text, c.ticket_id::text, c.content, c.created_by::text, c.created_at, c.attachments
		FROM ticket_comments c
		WHERE c.ticket_id IN (SELECT t.id FROM tickets t `+where+`)
		ORDER BY c.created_at ASC, c.id ASC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer crows.Close()
	for crows.Next() {
		var c models.Comment
		if err := crows.Scan(&c.ID, &c.TicketID, &c.Content, &c.CreatedBy, &c.CreatedAt, &c.Attachments); err != nil {
			return nil, err
		}
		if c.Attachments == nil {
			c.Attachments = []string{}
		}
		if i, ok := index[c.TicketID]; ok {
			out[i].Comments = append(out[i].Comments, c)
		}
	}
	return out, crows.Err()
}

func (r *TicketRepo) Get(ctx context.Context, id string) (*models.Ticket, error) {
	var t models.Ticket
	err := scanTicket(r.db.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets t WHERE t.id = $1::uuid`, id), &t)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT id::text, ticket_id::text, content, created_by::text, created_at, attachments
		FROM ticket_comments
		WHERE ticket_id = $1::uuid
		ORDER BY created_at ASC, id ASC
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	t.Comments = []models.Comment{}
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.TicketID, &c.Content, &c.CreatedBy, &c.CreatedAt, &c.Attachments); err != nil {
			return nil, err
		}
		if c.Attachments == nil {
			c.Attachments = []string{}
		}
		t.Comments = append(t.Comments, c)
	}
	return &t, rows.Err()
}

func (r *TicketRepo) Create(ctx context.Context, t *models.Ticket) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO tickets (
			title, ticket_type, ticket_description, description,
			reported_issue, confirmed_issue, service_performed,
			status, priority, category, created_by, assigned_to, client_id,
			under_warranty, is_working, service_completed, client_verified
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11::uuid,NULLIF($12,'')::uuid,$13::uuid,$14,$15,$16,$17)
		RETURNING id::text, created_at, updated_at
	`,
		t.Title, t.TicketType, t.TicketDescription, t.Description,
		t.ReportedIssue, t.ConfirmedIssue, t.ServicePerformed,
		t.Status, t.Priority, t.Category, t.CreatedBy, t.AssignedTo, t.ClientID,
		t.UnderWarranty, t.IsWorking, t.ServiceCompleted, t.ClientVerified,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// Update writes the set fields of p plus updated_at.
func (r *TicketRepo) Update(ctx context.Context, id string, p models.TicketPatch, updatedAt time.Time) error {
	sets, args := patchSets(p)
	args = append(args, updatedAt)
	sets = append(sets, "updated_at = $"+itoa(len(args)))
	args = append(args, id)

	ct, err := r.db.Exec(ctx,
		`UPDATE tickets SET `+strings.Join(sets, ", ")+` WHERE id = $`+itoa(len(args))+`::uuid`,
		args...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func patchSets(p models.TicketPatch) ([]string, []any) {
	var sets []string
	var args []any
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, col+" = $"+itoa(len(args)))
	}
	if p.Title != nil {
		set("title", *p.Title)
	}
	if p.TicketType != nil {
		set("ticket_type", *p.TicketType)
	}
	if p.TicketDescription != nil {
		set("ticket_description", *p.TicketDescription)
	}
	if p.Description != nil {
		set("description", *p.Description)
	}
	if p.ReportedIssue != nil {
		set("reported_issue", *p.ReportedIssue)
	}
	if p.ConfirmedIssue != nil {
		set("confirmed_issue", *p.ConfirmedIssue)
	}
	if p.ServicePerformed != nil {
		set("service_performed", *p.ServicePerformed)
	}
	if p.Status != nil {
		set("status", *p.Status)
	}
	if p.Priority != nil {
		set("priority", *p.Priority)
	}
	if p.Category != nil {
		set("category", *p.Category)
	}
	if p.AssignedTo != nil {
		args = append(args, *p.AssignedTo)
		sets = append(sets, "assigned_to = NULLIF($"+itoa(len(args))+", '')::uuid")
	}
	if p.UnderWarranty != nil {
		set("under_warranty", *p.UnderWarranty)
	}
	if p.IsWorking != nil {
		set("is_working", *p.IsWorking)
	}
	if p.ServiceCompleted != nil {
		set("service_completed", *p.ServiceCompleted)
	}
	if p.ClientVerified != nil {
		set("client_verified", *p.ClientVerified)
	}
	if p.ArrivalTime != nil {
		set("arrival_time", nullIfEmpty(*p.ArrivalTime))
	}
	if p.DepartureTime != nil {
		set("departure_time", nullIfEmpty(*p.DepartureTime))
	}
	if p.ServiceDate != nil {
		set("service_date", *p.ServiceDate)
	}
	return sets, args
}

// AddComment inserts c and moves the ticket's updated_at forward in the
// same transaction.
func (r *TicketRepo) AddComment(ctx context.Context, c *models.Comment) error {
	attachments := c.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO ticket_comments (ticket_id, content, created_by, attachments)
			VALUES ($1::uuid, $2, $3::uuid, $4)
			RETURNING id::text, created_at
		`, c.TicketID, c.Content, c.CreatedBy, attachments).Scan(&c.ID, &c.CreatedAt)
		if err != nil {
			return err
		}
		ct, err := tx.Exec(ctx, `
			UPDATE tickets
			SET updated_at = GREATEST(updated_at + interval '1 microsecond', $1)
			WHERE id = $2::uuid
		`, c.CreatedAt, c.TicketID)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}

func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func itoa(i int) string { return strconv.Itoa(i) }
