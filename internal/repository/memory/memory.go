// Package memory holds map-backed repositories with the same contracts as
// the Postgres ones. They back the HTTP tests and local runs without a
// database.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Reissam/ajuda-tech-hub/internal/access"
	"github.com/Reissam/ajuda-tech-hub/internal/models"
	"github.com/Reissam/ajuda-tech-hub/internal/repository"
)

func now() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }

type TicketRepo struct {
	mu    sync.Mutex
	rows  []models.Ticket
	index map[string]int
}

func NewTicketRepo() *TicketRepo { return &TicketRepo{index: map[string]int{}} }

var _ repository.TicketRepository = (*TicketRepo)(nil)

func (r *TicketRepo) List(_ context.Context, scope access.Scope) ([]models.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Ticket, 0, len(r.rows))
	for _, t := range r.rows {
		if scope.Matches(t) {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

func (r *TicketRepo) Get(_ context.Context, id string) (*models.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.index[id]
	if !ok {
		return nil, nil
	}
	t := r.rows[i].Clone()
	return &t, nil
}

func (r *TicketRepo) Create(_ context.Context, t *models.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ts := now()
	t.ID = uuid.NewString()
	t.CreatedAt, t.UpdatedAt = ts, ts
	t.Comments = []models.Comment{}
	r.index[t.ID] = len(r.rows)
	r.rows = append(r.rows, t.Clone())
	return nil
}

func (r *TicketRepo) Update(_ context.Context, id string, p models.TicketPatch, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.index[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Apply(&r.rows[i])
	r.rows[i].UpdatedAt = updatedAt
	return nil
}

func (r *TicketRepo) AddComment(_ context.Context, c *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.index[c.TicketID]
	if !ok {
		return repository.ErrNotFound
	}
	c.ID = uuid.NewString()
	c.CreatedAt = now()
	if c.Attachments == nil {
		c.Attachments = []string{}
	}
	t := &r.rows[i]
	stored := *c
	stored.Attachments = append([]string{}, c.Attachments...)
	t.Comments = append(t.Comments, stored)

	next := t.UpdatedAt.Add(time.Microsecond)
	if c.CreatedAt.After(next) {
		next = c.CreatedAt
	}
	t.UpdatedAt = next
	return nil
}

type ProfileRepo struct {
	mu   sync.Mutex
	rows map[string]models.User
}

func NewProfileRepo() *ProfileRepo { return &ProfileRepo{rows: map[string]models.User{}} }

var _ repository.ProfileRepository = (*ProfileRepo)(nil)

func (r *ProfileRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// Insert keeps an existing row untouched, like ON CONFLICT DO NOTHING.
func (r *ProfileRepo) Insert(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.rows[u.ID]; ok {
		*u = existing
		return nil
	}
	ts := now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = ts
	}
	u.UpdatedAt = ts
	r.rows[u.ID] = *u
	return nil
}

func (r *ProfileRepo) List(_ context.Context, q, role string, active *bool, limit, offset int) ([]models.User, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q = strings.ToLower(strings.TrimSpace(q))
	matched := make([]models.User, 0, len(r.rows))
	for _, u := range r.rows {
		if q != "" && !strings.Contains(strings.ToLower(u.Name), q) && !strings.Contains(strings.ToLower(u.Email), q) {
			continue
		}
		if role != "" && u.Role.String() != role {
			continue
		}
		if active != nil && u.Active != *active {
			continue
		}
		matched = append(matched, u)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})
	total := len(matched)
	if offset >= total {
		return []models.User{}, total, nil
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return matched[offset:end], total, nil
}

func (r *ProfileRepo) update(id string, fn func(*models.User)) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	fn(&u)
	u.UpdatedAt = now()
	r.rows[id] = u
	return &u, nil
}

func (r *ProfileRepo) UpdateRole(_ context.Context, id string, role models.Role) (*models.User, error) {
	return r.update(id, func(u *models.User) { u.Role = role })
}

func (r *ProfileRepo) SetActive(_ context.Context, id string, active bool) (*models.User, error) {
	return r.update(id, func(u *models.User) { u.Active = active })
}

func (r *ProfileRepo) UpdateBasic(_ context.Context, id, name string) (*models.User, error) {
	return r.update(id, func(u *models.User) { u.Name = name })
}

type AccountRepo struct {
	mu      sync.Mutex
	byEmail map[string]models.Account
}

func NewAccountRepo() *AccountRepo { return &AccountRepo{byEmail: map[string]models.Account{}} }

var _ repository.AccountRepository = (*AccountRepo)(nil)

func (r *AccountRepo) CreateAccount(_ context.Context, email, passwordHash string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	email = strings.ToLower(email)
	if _, ok := r.byEmail[email]; ok {
		return nil, repository.ErrDuplicate
	}
	a := models.Account{ID: uuid.NewString(), Email: email, PasswordHash: passwordHash, CreatedAt: now()}
	r.byEmail[email] = a
	return &a, nil
}

func (r *AccountRepo) GetAccountByEmail(_ context.Context, email string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

type ClientRepo struct {
	mu   sync.Mutex
	rows map[string]models.Client
}

func NewClientRepo() *ClientRepo { return &ClientRepo{rows: map[string]models.Client{}} }

var _ repository.ClientRepository = (*ClientRepo)(nil)

func (r *ClientRepo) List(_ context.Context) ([]models.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Client, 0, len(r.rows))
	for _, c := range r.rows {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *ClientRepo) Get(_ context.Context, id string) (*models.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *ClientRepo) Create(_ context.Context, c *models.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ts := now()
	c.ID = uuid.NewString()
	c.CreatedAt, c.UpdatedAt = ts, ts
	r.rows[c.ID] = *c
	return nil
}

func (r *ClientRepo) Update(_ context.Context, id string, p models.ClientPatch, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Apply(&c)
	c.UpdatedAt = updatedAt
	r.rows[id] = c
	return nil
}
