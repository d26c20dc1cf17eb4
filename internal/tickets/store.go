// Package tickets keeps the per-session mirror of the tickets a principal
// may see and runs every ticket mutation through the access rules before
// storage is touched.
package tickets

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Reissam/ajuda-tech-hub/internal/access"
	"github.com/Reissam/ajuda-tech-hub/internal/apperr"
	"github.com/Reissam/ajuda-tech-hub/internal/lifecycle"
	"github.com/Reissam/ajuda-tech-hub/internal/metrics"
	"github.com/Reissam/ajuda-tech-hub/internal/models"
	"github.com/Reissam/ajuda-tech-hub/internal/notify"
	"github.com/Reissam/ajuda-tech-hub/internal/repository"
)

// UserLookup resolves assignees when technician assignment is enforced.
type UserLookup interface {
	Lookup(ctx context.Context, id string) (models.User, error)
}

type Options struct {
	Machine  *lifecycle.Machine
	Notifier notify.Notifier
	Metrics  *metrics.Recorder
	Log      zerolog.Logger
	Users    UserLookup

	// RefetchAfterWrite replaces the local row with the stored one after
	// create and update instead of merging the patch.
	RefetchAfterWrite bool
	// RequireTechnicianAssignee rejects assignees that are not technicians.
	RequireTechnicianAssignee bool

	Now func() time.Time
}

// Store is owned by one session. Its operations are serialized.
type Store struct {
	repo      repository.TicketRepository
	principal models.User
	machine   *lifecycle.Machine
	notifier  notify.Notifier
	metrics   *metrics.Recorder
	log       zerolog.Logger
	users     UserLookup
	refetch   bool
	techOnly  bool
	now       func() time.Time

	mu      sync.Mutex
	loaded  bool
	tickets []models.Ticket
}

func NewStore(repo repository.TicketRepository, principal models.User, opts Options) *Store {
	s := &Store{
		repo:      repo,
		principal: principal,
		machine:   opts.Machine,
		notifier:  opts.Notifier,
		metrics:   opts.Metrics,
		log:       opts.Log.With().Str("component", "tickets").Str("user_id", principal.ID).Logger(),
		users:     opts.Users,
		refetch:   opts.RefetchAfterWrite,
		techOnly:  opts.RequireTechnicianAssignee,
		now:       opts.Now,
	}
	if s.machine == nil {
		s.machine = lifecycle.New()
	}
	if s.notifier == nil {
		s.notifier = notify.Discard
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *Store) Principal() models.User { return s.principal }

func (s *Store) Machine() *lifecycle.Machine { return s.machine }

// Load replaces the local collection with the rows visible to the principal.
func (s *Store) Load(ctx context.Context) ([]models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(ctx); err != nil {
		return nil, err
	}
	return s.snapshotLocked(), nil
}

func (s *Store) loadLocked(ctx context.Context) error {
	scope := access.ScopeFor(s.principal)
	if scope.Empty() {
		s.tickets = []models.Ticket{}
		s.loaded = true
		return nil
	}
	rows, err := s.repo.List(ctx, scope)
	if err != nil {
		s.log.Error().Err(err).Msg("load tickets")
		s.notifier.Error(ctx, "Could not load tickets.")
		return apperr.Wrap(apperr.KindInternal, err, "load tickets")
	}
	// Storage applies the scope too; filtering again keeps a misbehaving
	// backend from leaking rows into the session.
	s.tickets = access.Filter(s.principal, rows)
	for i := range s.tickets {
		if s.tickets[i].Comments == nil {
			s.tickets[i].Comments = []models.Comment{}
		}
	}
	s.loaded = true
	s.log.Debug().Int("count", len(s.tickets)).Msg("tickets loaded")
	return nil
}

func (s *Store) ensureLoadedLocked(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	return s.loadLocked(ctx)
}

func (s *Store) snapshotLocked() []models.Ticket {
	out := make([]models.Ticket, len(s.tickets))
	for i, t := range s.tickets {
		out[i] = t.Clone()
	}
	return out
}

func (s *Store) indexLocked(id string) int {
	for i := range s.tickets {
		if s.tickets[i].ID == id {
			return i
		}
	}
	return -1
}

// List returns the local tickets matching f.
func (s *Store) List(ctx context.Context, f repository.TicketFilter) ([]models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}
	return f.Apply(s.snapshotLocked()), nil
}

func (s *Store) Get(ctx context.Context, id string) (models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return models.Ticket{}, err
	}
	i := s.indexLocked(id)
	if i < 0 {
		return models.Ticket{}, apperr.NotFound("ticket not found")
	}
	return s.tickets[i].Clone(), nil
}

// Create validates d, stores it and appends the stored row locally. On any
// failure the local collection is left as it was.
func (s *Store) Create(ctx context.Context, d lifecycle.Draft) (models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !access.CanOpenTicket(s.principal) {
		return models.Ticket{}, s.reject(ctx, apperr.Forbidden("you cannot open tickets"))
	}
	t, err := lifecycle.PrepareDraft(s.principal, d)
	if err != nil {
		return models.Ticket{}, s.reject(ctx, err)
	}
	if t.AssignedTo != "" {
		if !access.CanAssign(s.principal) {
			return models.Ticket{}, s.reject(ctx, apperr.Forbidden("you cannot assign tickets"))
		}
		if err := s.checkAssignee(ctx, t.AssignedTo); err != nil {
			return models.Ticket{}, s.reject(ctx, err)
		}
	}
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return models.Ticket{}, err
	}

	if err := s.repo.Create(ctx, &t); err != nil {
		return models.Ticket{}, s.mutationFailed(ctx, "create", err, "Could not create ticket.")
	}
	if s.refetch {
		t = s.canonical(ctx, t)
	}
	if t.Comments == nil {
		t.Comments = []models.Comment{}
	}
	s.tickets = append(s.tickets, t)

	s.metrics.TicketCreated()
	s.log.Info().Str("ticket_id", t.ID).Msg("ticket created")
	s.notifier.Success(ctx, "Ticket created.")
	return t.Clone(), nil
}

// Update applies the set fields of p to ticket id. Each field group is
// authorized separately and all checks run before storage is called.
func (s *Store) Update(ctx context.Context, id string, p models.TicketPatch) (models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoadedLocked(ctx); err != nil {
		return models.Ticket{}, err
	}
	i := s.indexLocked(id)
	if i < 0 {
		return models.Ticket{}, s.reject(ctx, apperr.NotFound("ticket not found"))
	}
	current := s.tickets[i]

	if err := s.authorize(current, p); err != nil {
		return models.Ticket{}, s.reject(ctx, err)
	}
	if err := s.validate(current, p); err != nil {
		return models.Ticket{}, s.reject(ctx, err)
	}
	if p.AssignedTo != nil && *p.AssignedTo != "" {
		if err := s.checkAssignee(ctx, *p.AssignedTo); err != nil {
			return models.Ticket{}, s.reject(ctx, err)
		}
	}

	updatedAt := s.nextUpdatedAt(current.UpdatedAt)
	if err := s.repo.Update(ctx, id, p, updatedAt); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Ticket{}, s.reject(ctx, apperr.NotFound("ticket not found"))
		}
		return models.Ticket{}, s.mutationFailed(ctx, "update", err, "Could not update ticket.")
	}

	next := current.Clone()
	p.Apply(&next)
	next.UpdatedAt = updatedAt
	if s.refetch {
		next = s.canonical(ctx, next)
		if !next.UpdatedAt.After(current.UpdatedAt) {
			next.UpdatedAt = updatedAt
		}
	}
	s.tickets[i] = next

	s.recordUpdate(current, p)
	s.log.Info().Str("ticket_id", id).Msg("ticket updated")
	s.notifier.Success(ctx, "Ticket updated.")
	return next.Clone(), nil
}

// Assign sets the ticket's technician. An empty technicianID unassigns.
func (s *Store) Assign(ctx context.Context, ticketID, technicianID string) (models.Ticket, error) {
	tech := strings.TrimSpace(technicianID)
	return s.Update(ctx, ticketID, models.TicketPatch{AssignedTo: &tech})
}

// AddComment appends a comment to a visible ticket.
func (s *Store) AddComment(ctx context.Context, ticketID, content string, attachments []string) (models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoadedLocked(ctx); err != nil {
		return models.Comment{}, err
	}
	i := s.indexLocked(ticketID)
	if i < 0 {
		return models.Comment{}, s.reject(ctx, apperr.NotFound("ticket not found"))
	}
	if !access.CanComment(s.principal, s.tickets[i]) {
		return models.Comment{}, s.reject(ctx, apperr.Forbidden("you cannot comment on this ticket"))
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Comment{}, s.reject(ctx, apperr.Validation("comment cannot be empty").WithDetail("content", "is required"))
	}
	if attachments == nil {
		attachments = []string{}
	}

	c := models.Comment{
		TicketID:    ticketID,
		Content:     content,
		CreatedBy:   s.principal.ID,
		Attachments: attachments,
	}
	if err := s.repo.AddComment(ctx, &c); err != nil {
		return models.Comment{}, s.mutationFailed(ctx, "comment", err, "Could not add comment.")
	}
	if c.Attachments == nil {
		c.Attachments = []string{}
	}

	t := &s.tickets[i]
	t.Comments = append(t.Comments, c)
	t.UpdatedAt = s.nextUpdatedAt(t.UpdatedAt)

	s.metrics.CommentAdded()
	s.notifier.Success(ctx, "Comment added.")
	return c, nil
}

// Targets lists the statuses the principal may move ticket id to.
func (s *Store) Targets(ctx context.Context, id string) ([]models.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}
	i := s.indexLocked(id)
	if i < 0 {
		return nil, apperr.NotFound("ticket not found")
	}
	if !access.CanMutateStatus(s.principal, s.tickets[i]) {
		return []models.Status{}, nil
	}
	return s.machine.Targets(s.tickets[i].Status), nil
}

func (s *Store) authorize(t models.Ticket, p models.TicketPatch) error {
	if p.Empty() {
		return apperr.Validation("nothing to update")
	}
	if p.TouchesService() && !access.CanMutateStatus(s.principal, t) {
		return apperr.Forbidden("you cannot change the status of this ticket")
	}
	if p.TouchesAssignment() && !access.CanAssign(s.principal) {
		return apperr.Forbidden("you cannot assign tickets")
	}
	if p.TouchesDetails() && !access.CanEditDetails(s.principal, t) {
		return apperr.Forbidden("you cannot edit this ticket")
	}
	return nil
}

func (s *Store) validate(t models.Ticket, p models.TicketPatch) error {
	if p.Status != nil {
		if err := s.machine.CanTransition(t.Status, *p.Status); err != nil {
			return err
		}
	}
	verr := apperr.Validation("invalid ticket fields")
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		verr.WithDetail("title", "cannot be empty")
	}
	if p.Priority != nil && !p.Priority.IsValid() {
		verr.WithDetail("priority", "is invalid")
	}
	if p.Category != nil && !p.Category.IsValid() {
		verr.WithDetail("category", "is invalid")
	}
	if p.TicketType != nil && !p.TicketType.IsValid() {
		verr.WithDetail("ticketType", "is invalid")
	}
	if p.TicketDescription != nil && !p.TicketDescription.IsValid() {
		verr.WithDetail("ticketDescription", "is invalid")
	}
	if p.ArrivalTime != nil && !validClock(*p.ArrivalTime) {
		verr.WithDetail("arrivalTime", "must be HH:MM")
	}
	if p.DepartureTime != nil && !validClock(*p.DepartureTime) {
		verr.WithDetail("departureTime", "must be HH:MM")
	}
	if len(verr.Details) > 0 {
		return verr
	}
	return nil
}

// validClock accepts "" (cleared) or a 24h HH:MM time.
func validClock(v string) bool {
	if v == "" {
		return true
	}
	_, err := time.Parse("15:04", v)
	return err == nil && len(v) == 5
}

func (s *Store) checkAssignee(ctx context.Context, id string) error {
	if !s.techOnly || s.users == nil {
		return nil
	}
	u, err := s.users.Lookup(ctx, id)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return apperr.Validation("assignee does not exist").WithDetail("assignedTo", "is unknown")
		}
		return err
	}
	if u.Role != models.RoleTechnician {
		return apperr.Validation("assignee must be a technician").WithDetail("assignedTo", "is not a technician")
	}
	return nil
}

// nextUpdatedAt returns a timestamp strictly after prev, at the microsecond
// precision storage keeps.
func (s *Store) nextUpdatedAt(prev time.Time) time.Time {
	now := s.now().UTC().Truncate(time.Microsecond)
	if !now.After(prev) {
		now = prev.Add(time.Microsecond)
	}
	return now
}

// canonical re-reads t from storage, keeping t when the read fails.
func (s *Store) canonical(ctx context.Context, t models.Ticket) models.Ticket {
	fresh, err := s.repo.Get(ctx, t.ID)
	if err != nil || fresh == nil {
		s.log.Warn().Err(err).Str("ticket_id", t.ID).Msg("canonical re-fetch failed, keeping merged row")
		return t
	}
	if fresh.Comments == nil {
		fresh.Comments = t.Comments
	}
	return *fresh
}

func (s *Store) recordUpdate(before models.Ticket, p models.TicketPatch) {
	if p.TouchesDetails() {
		s.metrics.TicketUpdated("details")
	}
	if p.TouchesService() {
		s.metrics.TicketUpdated("service")
	}
	if p.TouchesAssignment() {
		s.metrics.TicketUpdated("assignment")
	}
	if p.Status != nil && *p.Status != before.Status {
		s.metrics.StatusTransition(before.Status.String(), p.Status.String())
	}
}

func (s *Store) reject(ctx context.Context, err error) error {
	s.notifier.Error(ctx, apperr.PublicMessage(err))
	return err
}

func (s *Store) mutationFailed(ctx context.Context, op string, err error, msg string) error {
	s.log.Error().Err(err).Str("op", op).Msg("ticket mutation failed")
	s.metrics.MutationFailed(op)
	s.notifier.Error(ctx, msg)
	return apperr.Mutation(err, msg)
}
