// Package clients is the per-session view of the customer site directory.
// Only admins and managers can use it.
package clients

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Reissam/ajuda-tech-hub/internal/access"
	"github.com/Reissam/ajuda-tech-hub/internal/apperr"
	"github.com/Reissam/ajuda-tech-hub/internal/metrics"
	"github.com/Reissam/ajuda-tech-hub/internal/models"
	"github.com/Reissam/ajuda-tech-hub/internal/notify"
	"github.com/Reissam/ajuda-tech-hub/internal/repository"
)

// Draft is a new client site. Every field is required.
type Draft struct {
	Name    string `json:"name" validate:"required"`
	Unit    string `json:"unit" validate:"required"`
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
}

type Directory struct {
	repo      repository.ClientRepository
	principal models.User
	notifier  notify.Notifier
	metrics   *metrics.Recorder
	log       zerolog.Logger
	now       func() time.Time

	mu      sync.Mutex
	loaded  bool
	clients []models.Client
}

func NewDirectory(repo repository.ClientRepository, principal models.User, n notify.Notifier, m *metrics.Recorder, log zerolog.Logger) *Directory {
	if n == nil {
		n = notify.Discard
	}
	return &Directory{
		repo:      repo,
		principal: principal,
		notifier:  n,
		metrics:   m,
		log:       log.With().Str("component", "clients").Str("user_id", principal.ID).Logger(),
		now:       time.Now,
	}
}

func (d *Directory) guard() error {
	if !access.CanAccessClientDirectory(d.principal) {
		return apperr.Forbidden("client directory is restricted to admins and managers")
	}
	return nil
}

// Load replaces the local directory with the stored clients.
func (d *Directory) Load(ctx context.Context) ([]models.Client, error) {
	if err := d.guard(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.loadLocked(ctx); err != nil {
		return nil, err
	}
	return append([]models.Client{}, d.clients...), nil
}

func (d *Directory) loadLocked(ctx context.Context) error {
	rows, err := d.repo.List(ctx)
	if err != nil {
		d.log.Error().Err(err).Msg("load clients")
		d.notifier.Error(ctx, "Could not load clients.")
		return apperr.Wrap(apperr.KindInternal, err, "load clients")
	}
	if rows == nil {
		rows = []models.Client{}
	}
	d.clients = rows
	d.loaded = true
	return nil
}

func (d *Directory) ensureLoadedLocked(ctx context.Context) error {
	if d.loaded {
		return nil
	}
	return d.loadLocked(ctx)
}

// List returns clients whose name (case-insensitive) or id contains query,
// ordered by name.
func (d *Directory) List(ctx context.Context, query string) ([]models.Client, error) {
	if err := d.guard(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Client, 0, len(d.clients))
	for _, c := range d.clients {
		if q == "" || strings.Contains(strings.ToLower(c.Name), q) || strings.Contains(c.ID, q) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (d *Directory) Get(ctx context.Context, id string) (models.Client, error) {
	if err := d.guard(); err != nil {
		return models.Client{}, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ensureLoadedLocked(ctx); err != nil {
		return models.Client{}, err
	}
	if i := d.indexLocked(id); i >= 0 {
		return d.clients[i], nil
	}
	return models.Client{}, apperr.NotFound("client not found")
}

func (d *Directory) indexLocked(id string) int {
	for i := range d.clients {
		if d.clients[i].ID == id {
			return i
		}
	}
	return -1
}

func (d *Directory) Create(ctx context.Context, in Draft) (models.Client, error) {
	if err := d.guard(); err != nil {
		return models.Client{}, d.reject(ctx, err)
	}
	c := models.Client{
		Name:    strings.TrimSpace(in.Name),
		Unit:    strings.TrimSpace(in.Unit),
		Address: strings.TrimSpace(in.Address),
		City:    strings.TrimSpace(in.City),
		State:   strings.TrimSpace(in.State),
	}
	if err := validateClient(c); err != nil {
		return models.Client{}, d.reject(ctx, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ensureLoadedLocked(ctx); err != nil {
		return models.Client{}, err
	}
	if err := d.repo.Create(ctx, &c); err != nil {
		return models.Client{}, d.mutationFailed(ctx, "client_create", err, "Could not create client.")
	}
	d.clients = append(d.clients, c)
	d.notifier.Success(ctx, "Client created.")
	return c, nil
}

// Update applies the set fields of p. Set fields may not be blank.
func (d *Directory) Update(ctx context.Context, id string, p models.ClientPatch) (models.Client, error) {
	if err := d.guard(); err != nil {
		return models.Client{}, d.reject(ctx, err)
	}
	if p.Empty() {
		return models.Client{}, d.reject(ctx, apperr.Validation("nothing to update"))
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ensureLoadedLocked(ctx); err != nil {
		return models.Client{}, err
	}
	i := d.indexLocked(id)
	if i < 0 {
		return models.Client{}, d.reject(ctx, apperr.NotFound("client not found"))
	}
	p = trimPatch(p)
	next := d.clients[i]
	p.Apply(&next)
	if err := validateClient(next); err != nil {
		return models.Client{}, d.reject(ctx, err)
	}
	next.UpdatedAt = d.now().UTC().Truncate(time.Microsecond)
	if !next.UpdatedAt.After(d.clients[i].UpdatedAt) {
		next.UpdatedAt = d.clients[i].UpdatedAt.Add(time.Microsecond)
	}

	if err := d.repo.Update(ctx, id, p, next.UpdatedAt); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Client{}, d.reject(ctx, apperr.NotFound("client not found"))
		}
		return models.Client{}, d.mutationFailed(ctx, "client_update", err, "Could not update client.")
	}
	d.clients[i] = next
	d.notifier.Success(ctx, "Client updated.")
	return next, nil
}

func trimPatch(p models.ClientPatch) models.ClientPatch {
	trim := func(v *string) *string {
		if v == nil {
			return nil
		}
		t := strings.TrimSpace(*v)
		return &t
	}
	return models.ClientPatch{
		Name:    trim(p.Name),
		Unit:    trim(p.Unit),
		Address: trim(p.Address),
		City:    trim(p.City),
		State:   trim(p.State),
	}
}

func validateClient(c models.Client) error {
	verr := apperr.Validation("please fill in all required fields")
	for field, v := range map[string]string{
		"name": c.Name, "unit": c.Unit, "address": c.Address, "city": c.City, "state": c.State,
	} {
		if strings.TrimSpace(v) == "" {
			verr.WithDetail(field, "is required")
		}
	}
	if len(verr.Details) > 0 {
		return verr
	}
	return nil
}

func (d *Directory) reject(ctx context.Context, err error) error {
	d.notifier.Error(ctx, apperr.PublicMessage(err))
	return err
}

func (d *Directory) mutationFailed(ctx context.Context, op string, err error, msg string) error {
	d.log.Error().Err(err).Str("op", op).Msg("client mutation failed")
	d.metrics.MutationFailed(op)
	d.notifier.Error(ctx, msg)
	return apperr.Mutation(err, msg)
}
