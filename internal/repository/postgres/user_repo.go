package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Reissam/ajuda-tech-hub/internal/models"
	"github.com/Reissam/ajuda-tech-hub/internal/repository"
)

// ProfileRepo stores helpdesk profiles (role, display name, active flag).
type ProfileRepo struct{ db *pgxpool.Pool }

func NewProfileRepo(db *pgxpool.Pool) repository.ProfileRepository { return &ProfileRepo{db: db} }

const profileColumns = `id::text, email, name, role, active, created_at, updated_at`

func scanProfile(row pgx.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.Active, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// singleProfile maps a missing row on writes to repository.ErrNotFound.
func singleProfile(row pgx.Row) (*models.User, error) {
	u, err := scanProfile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return u, err
}

func (r *ProfileRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, err := scanProfile(r.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1::uuid`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

// Insert creates the profile. When a concurrent request created it first,
// u is overwritten with the stored row.
func (r *ProfileRepo) Insert(ctx context.Context, u *models.User) error {
	stored, err := scanProfile(r.db.QueryRow(ctx, `
		INSERT INTO profiles (id, email, name, role, active)
		VALUES ($1::uuid, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
		RETURNING `+profileColumns,
		u.ID, u.Email, u.Name, u.Role, u.Active))
	if errors.Is(err, pgx.ErrNoRows) {
		stored, err = r.GetByID(ctx, u.ID)
		if err == nil && stored == nil {
			err = repository.ErrNotFound
		}
	}
	if err != nil {
		return err
	}
	*u = *stored
	return nil
}

// List returns a filtered, paginated list of profiles and the total count.
// Filters: q (email or name, ILIKE), role (exact), active.
func (r *ProfileRepo) List(ctx context.Context, q, role string, active *bool, limit, offset int) ([]models.User, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	clauses := []string{"1=1"}
	args := []any{}

	if s := strings.TrimSpace(q); s != "" {
		p := "%" + s + "%"
		args = append(args, p, p)
		clauses = append(clauses, "(email ILIKE $"+itoa(len(args)-1)+" OR name ILIKE $"+itoa(len(args))+")")
	}
	if s := strings.TrimSpace(role); s != "" {
		args = append(args, s)
		clauses = append(clauses, "role = $"+itoa(len(args)))
	}
	if active != nil {
		args = append(args, *active)
		clauses = append(clauses, "active = $"+itoa(len(args)))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM profiles WHERE `+strings.Join(clauses, " AND "), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	listSQL := fmt.Sprintf(`
		SELECT %s
		FROM profiles
		WHERE %s
		ORDER BY updated_at DESC
		LIMIT $%d OFFSET $%d
	`, profileColumns, strings.Join(clauses, " AND "), len(args)-1, len(args))
	rows, err := r.db.Query(ctx, listSQL, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []models.User{}
	for rows.Next() {
		u, err := scanProfile(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *u)
	}
	return out, total, rows.Err()
}

func (r *ProfileRepo) UpdateRole(ctx context.Context, id string, role models.Role) (*models.User, error) {
	return singleProfile(r.db.QueryRow(ctx, `
		UPDATE profiles
		SET role = $1, updated_at = now()
		WHERE id = $2::uuid
		RETURNING `+profileColumns, role, id))
}

func (r *ProfileRepo) SetActive(ctx context.Context, id string, active bool) (*models.User, error) {
	return singleProfile(r.db.QueryRow(ctx, `
		UPDATE profiles
		SET active = $1, updated_at = now()
		WHERE id = $2::uuid
		RETURNING `+profileColumns, active, id))
}

func (r *ProfileRepo) UpdateBasic(ctx context.Context, id, name string) (*models.User, error) {
	return singleProfile(r.db.QueryRow(ctx, `
		UPDATE profiles
		SET name = $1, updated_at = now()
		WHERE id = $2::uuid
		RETURNING `+profileColumns, name, id))
}
