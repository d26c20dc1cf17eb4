// Package identity maps an authenticated principal to its helpdesk profile,
// creating the profile on first sight.
package identity

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Reissam/ajuda-tech-hub/internal/apperr"
	"github.com/Reissam/ajuda-tech-hub/internal/metrics"
	"github.com/Reissam/ajuda-tech-hub/internal/models"
	"github.com/Reissam/ajuda-tech-hub/internal/notify"
)

type ProfileStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	Insert(ctx context.Context, u *models.User) error
}

type Resolver struct {
	profiles ProfileStore
	notifier notify.Notifier
	metrics  *metrics.Recorder
	log      zerolog.Logger
	now      func() time.Time
}

func NewResolver(profiles ProfileStore, n notify.Notifier, m *metrics.Recorder, log zerolog.Logger) *Resolver {
	if n == nil {
		n = notify.Discard
	}
	return &Resolver{profiles: profiles, notifier: n, metrics: m, log: log, now: time.Now}
}

// ResolveOrCreate returns the stored profile for principalID. A missing
// profile is created from the email heuristics. Storage failures never
// surface: the caller gets an unsaved profile carrying the inferred role.
func (r *Resolver) ResolveOrCreate(ctx context.Context, principalID, email string) models.User {
	existing, err := r.profiles.GetByID(ctx, principalID)
	if err != nil {
		r.fail(ctx, principalID, err, "profile lookup failed")
		return r.infer(principalID, email)
	}
	if existing != nil {
		return *existing
	}

	u := r.infer(principalID, email)
	if err := r.profiles.Insert(ctx, &u); err != nil {
		r.fail(ctx, principalID, err, "profile insert failed")
		return r.infer(principalID, email)
	}
	r.log.Info().Str("user_id", u.ID).Str("role", u.Role.String()).Msg("profile created")
	return u
}

// Lookup reads a profile without creating it.
func (r *Resolver) Lookup(ctx context.Context, id string) (models.User, error) {
	u, err := r.profiles.GetByID(ctx, id)
	if err != nil {
		return models.User{}, apperr.Wrap(apperr.KindProfileResolution, err, "profile lookup failed")
	}
	if u == nil {
		return models.User{}, apperr.NotFound("user not found")
	}
	return *u, nil
}

func (r *Resolver) infer(id, email string) models.User {
	role := InferRole(email)
	now := r.now().UTC()
	return models.User{
		ID:        id,
		Email:     email,
		Name:      DefaultName(email, role),
		Role:      role,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (r *Resolver) fail(ctx context.Context, id string, err error, msg string) {
	r.log.Error().Err(err).Str("user_id", id).Msg(msg)
	r.metrics.ProfileFallback()
	r.notifier.Error(ctx, "Could not load your profile; using defaults.")
}

// InferRole derives a role from substrings of the email address. The
// checks run in order, so "admin.tecnico@x" is an admin. Matching ignores
// case on purpose: mailboxes are case-insensitive and accounts are stored
// lowercased, so "Gestor@x" and "gestor@x" must land on the same role.
func InferRole(email string) models.Role {
	e := strings.ToLower(email)
	switch {
	case strings.Contains(e, "admin"):
		return models.RoleAdmin
	case strings.Contains(e, "gestor"):
		return models.RoleManager
	case strings.Contains(e, "tecnico"):
		return models.RoleTechnician
	}
	return models.RoleClient
}

func DefaultName(email string, role models.Role) string {
	switch role {
	case models.RoleAdmin:
		return "Admin Demo"
	case models.RoleManager:
		return "Gestor Demo"
	case models.RoleTechnician:
		return "Técnico Demo"
	}
	local, _, _ := strings.Cut(email, "@")
	return local
}
