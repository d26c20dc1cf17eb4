package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Reissam/ajuda-tech-hub/internal/apperr"
	"github.com/Reissam/ajuda-tech-hub/internal/models"
	"github.com/Reissam/ajuda-tech-hub/internal/notify"
	"github.com/Reissam/ajuda-tech-hub/internal/repository"
	"github.com/Reissam/ajuda-tech-hub/internal/session"
	"github.com/Reissam/ajuda-tech-hub/internal/utils"
)

var ErrInvalidCredentials = apperr.Unauthenticated("invalid credentials")

type ProfileResolver interface {
	ResolveOrCreate(ctx context.Context, principalID, email string) models.User
}

type ProfileRenamer interface {
	UpdateBasic(ctx context.Context, id, name string) (*models.User, error)
}

type SignUpAttrs struct {
	Name string
}

// AuthResult is a started session and the bearer token that refers to it.
type AuthResult struct {
	Token     string
	User      models.User
	Workspace *session.Workspace
}

type AuthService struct {
	accounts      repository.AccountRepository
	profiles      ProfileRenamer
	resolver      ProfileResolver
	sessions      *session.Manager
	sessionSecret string
	notifier      notify.Notifier
	log           zerolog.Logger
}

func NewAuthService(
	accounts repository.AccountRepository,
	profiles ProfileRenamer,
	resolver ProfileResolver,
	sessions *session.Manager,
	sessionSecret string,
	n notify.Notifier,
	log zerolog.Logger,
) *AuthService {
	if n == nil {
		n = notify.Discard
	}
	return &AuthService{
		accounts:      accounts,
		profiles:      profiles,
		resolver:      resolver,
		sessions:      sessions,
		sessionSecret: sessionSecret,
		notifier:      n,
		log:           log,
	}
}

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// SignUp creates the account, resolves its profile and signs it in.
func (a *AuthService) SignUp(ctx context.Context, email, password string, attrs SignUpAttrs) (*AuthResult, error) {
	email = normalizeEmail(email)
	verr := apperr.Validation("invalid sign-up data")
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		verr.WithDetail("email", "must be a valid email")
	}
	if len(password) < 6 {
		verr.WithDetail("password", "must be at least 6")
	} else if len(password) > utils.MaxPasswordBytes {
		verr.WithDetail("password", "must be at most 72 bytes")
	}
	if len(verr.Details) > 0 {
		a.notifier.Error(ctx, verr.Message)
		return nil, verr
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "hash password")
	}
	acc, err := a.accounts.CreateAccount(ctx, email, hash)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			a.notifier.Error(ctx, "This email is already registered.")
			return nil, apperr.New(apperr.KindConflict, "email already registered").WithDetail("email", "is taken")
		}
		a.log.Error().Err(err).Msg("create account")
		a.notifier.Error(ctx, "Could not create account.")
		return nil, apperr.Mutation(err, "could not create account")
	}

	u := a.resolver.ResolveOrCreate(ctx, acc.ID, acc.Email)
	if name := strings.TrimSpace(attrs.Name); name != "" && name != u.Name {
		if updated, err := a.profiles.UpdateBasic(ctx, u.ID, name); err != nil {
			a.log.Warn().Err(err).Str("user_id", u.ID).Msg("apply sign-up name")
			u.Name = name
		} else {
			u = *updated
		}
	}
	return a.start(ctx, u)
}

// SignIn checks credentials and opens a session. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (a *AuthService) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	acc, err := a.accounts.GetAccountByEmail(ctx, normalizeEmail(email))
	if err != nil {
		a.log.Error().Err(err).Msg("load account")
		return nil, apperr.Wrap(apperr.KindInternal, err, "load account")
	}
	if acc == nil || !utils.CheckPassword(acc.PasswordHash, password) {
		a.notifier.Error(ctx, "Invalid email or password.")
		return nil, ErrInvalidCredentials
	}

	u := a.resolver.ResolveOrCreate(ctx, acc.ID, acc.Email)
	if !u.Active {
		a.notifier.Error(ctx, "This account is disabled.")
		return nil, apperr.Unauthenticated("account is disabled")
	}
	return a.start(ctx, u)
}

func (a *AuthService) SignOut(ctx context.Context, sessionID string) error {
	if err := a.sessions.End(ctx, sessionID); err != nil {
		return err
	}
	a.notifier.Info(ctx, "Signed out.")
	return nil
}

func (a *AuthService) start(ctx context.Context, u models.User) (*AuthResult, error) {
	ws, err := a.sessions.Start(ctx, u)
	if err != nil {
		return nil, err
	}
	tok, err := utils.SignJWT(a.sessionSecret, u.ID, u.Role.String(), ws.Session.ID, a.sessions.TTL())
	if err != nil {
		_ = a.sessions.End(ctx, ws.Session.ID)
		return nil, apperr.Wrap(apperr.KindInternal, err, "sign token")
	}
	a.log.Info().Str("user_id", u.ID).Str("role", u.Role.String()).Msg("signed in")
	a.notifier.Success(ctx, "Signed in.")
	return &AuthResult{Token: tok, User: u, Workspace: ws}, nil
}
