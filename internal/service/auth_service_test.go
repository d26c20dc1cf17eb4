package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Reissam/ajuda-tech-hub/internal/apperr"
	"github.com/Reissam/ajuda-tech-hub/internal/identity"
	"github.com/Reissam/ajuda-tech-hub/internal/models"
	"github.com/Reissam/ajuda-tech-hub/internal/repository"
	"github.com/Reissam/ajuda-tech-hub/internal/session"
	"github.com/Reissam/ajuda-tech-hub/internal/utils"
)

type memAccounts struct {
	mu   sync.Mutex
	rows map[string]models.Account
}

func (m *memAccounts) CreateAccount(_ context.Context, email, hash string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[email]; ok {
		return nil, repository.ErrDuplicate
	}
	a := models.Account{ID: "id-" + email, Email: email, PasswordHash: hash, CreatedAt: time.Now()}
	m.rows[email] = a
	return &a, nil
}

func (m *memAccounts) GetAccountByEmail(_ context.Context, email string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[email]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

type memProfiles struct {
	mu   sync.Mutex
	rows map[string]models.User
}

func (m *memProfiles) GetByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *memProfiles) Insert(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[u.ID] = *u
	return nil
}

func (m *memProfiles) UpdateBasic(_ context.Context, id, name string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.Name = name
	m.rows[id] = u
	return &u, nil
}

func newAuth(t *testing.T) (*AuthService, *memProfiles, *session.Manager) {
	t.Helper()
	utils.PasswordCost = bcrypt.MinCost
	profiles := &memProfiles{rows: map[string]models.User{}}
	resolver := identity.NewResolver(profiles, nil, nil, zerolog.Nop())
	sessions := session.NewManager(session.Config{Profiles: resolver, Log: zerolog.Nop(), TTL: time.Hour})
	accounts := &memAccounts{rows: map[string]models.Account{}}
	return NewAuthService(accounts, profiles, resolver, sessions, "test-secret", nil, zerolog.Nop()), profiles, sessions
}

func TestSignUpInfersRoleAndIssuesToken(t *testing.T) {
	auth, profiles, _ := newAuth(t)

	res, err := auth.SignUp(context.Background(), " Gestor.Ana@Corp.com ", "secret1", SignUpAttrs{Name: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, res.User.Role)
	assert.Equal(t, "Ana", res.User.Name)
	assert.Equal(t, "Ana", profiles.rows[res.User.ID].Name)

	claims, err := utils.ParseJWT("test-secret", res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.Equal(t, res.Workspace.Session.ID, claims.SessionID())
}

func TestSignUpValidation(t *testing.T) {
	auth, _, _ := newAuth(t)

	_, err := auth.SignUp(context.Background(), "not-an-email", "123", SignUpAttrs{})
	typed := apperr.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, apperr.KindValidation, typed.Kind)
	assert.Contains(t, typed.Details, "email")
	assert.Contains(t, typed.Details, "password")
}

func TestSignUpDuplicate(t *testing.T) {
	auth, _, _ := newAuth(t)
	_, err := auth.SignUp(context.Background(), "maria@loja.com", "secret1", SignUpAttrs{})
	require.NoError(t, err)

	_, err = auth.SignUp(context.Background(), "maria@loja.com", "secret2", SignUpAttrs{})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestSignInAndOut(t *testing.T) {
	auth, profiles, sessions := newAuth(t)
	_, err := auth.SignUp(context.Background(), "tecnico@corp.com", "secret1", SignUpAttrs{})
	require.NoError(t, err)

	_, err = auth.SignIn(context.Background(), "tecnico@corp.com", "wrong")
	assert.Equal(t, apperr.KindAuthentication, apperr.KindOf(err))
	_, err = auth.SignIn(context.Background(), "nobody@corp.com", "secret1")
	assert.Equal(t, apperr.KindAuthentication, apperr.KindOf(err))

	res, err := auth.SignIn(context.Background(), "TECNICO@corp.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleTechnician, res.User.Role)

	require.NoError(t, auth.SignOut(context.Background(), res.Workspace.Session.ID))
	_, err = sessions.Workspace(context.Background(), res.Workspace.Session.ID, res.User.ID)
	assert.Equal(t, apperr.KindAuthentication, apperr.KindOf(err))

	u := profiles.rows[res.User.ID]
	u.Active = false
	profiles.rows[res.User.ID] = u
	_, err = auth.SignIn(context.Background(), "tecnico@corp.com", "secret1")
	assert.Equal(t, apperr.KindAuthentication, apperr.KindOf(err))
}
