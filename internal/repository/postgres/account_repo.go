package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Reissam/ajuda-tech-hub/internal/models"
	"github.com/Reissam/ajuda-tech-hub/internal/repository"
)

const uniqueViolation = "23505"

// AccountRepo stores credentials. Emails are compared case-insensitively.
type AccountRepo struct{ db *pgxpool.Pool }

func NewAccountRepo(db *pgxpool.Pool) repository.AccountRepository { return &AccountRepo{db: db} }

func (r *AccountRepo) CreateAccount(ctx context.Context, email, passwordHash string) (*models.Account, error) {
	var a models.Account
	err := r.db.QueryRow(ctx, `
		INSERT INTO accounts (email, password_hash)
		VALUES (lower($1), $2)
		RETURNING id::text, email, password_hash, created_at
	`, email, passwordHash).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, repository.ErrDuplicate
		}
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepo) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	var a models.Account
	err := r.db.QueryRow(ctx, `
		SELECT id::text, email, password_hash, created_at
		FROM accounts WHERE email = lower($1)
	`, email).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}
