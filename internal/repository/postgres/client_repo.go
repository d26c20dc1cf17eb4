package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Reissam/ajuda-tech-hub/internal/models"
	"github.com/Reissam/ajuda-tech-hub/internal/repository"
)

type ClientRepo struct{ db *pgxpool.Pool }

func NewClientRepo(db *pgxpool.Pool) repository.ClientRepository { return &ClientRepo{db: db} }

const clientColumns = `id::text, name, unit, address, city, state, created_at, updated_at`

func scanClient(row pgx.Row, c *models.Client) error {
	return row.Scan(&c.ID, &c.Name, &c.Unit, &c.Address, &c.City, &c.State, &c.CreatedAt, &c.UpdatedAt)
}

func (r *ClientRepo) List(ctx context.Context) ([]models.Client, error) {
	rows, err := r.db.Query(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Client{}
	for rows.Next() {
		var c models.Client
		if err := scanClient(rows, &c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ClientRepo) Get(ctx context.Context, id string) (*models.Client, error) {
	var c models.Client
	if err := scanClient(r.db.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1::uuid`, id), &c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *ClientRepo) Create(ctx context.Context, c *models.Client) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO clients (name, unit, address, city, state)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id::text, created_at, updated_at
	`, c.Name, c.Unit, c.Address, c.City, c.State).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *ClientRepo) Update(ctx context.Context, id string, p models.ClientPatch, updatedAt time.Time) error {
	var sets []string
	var args []any
	set := func(col string, v *string) {
		if v == nil {
			return
		}
		args = append(args, strings.TrimSpace(*v))
		sets = append(sets, col+" = $"+itoa(len(args)))
	}
	set("name", p.Name)
	set("unit", p.Unit)
	set("address", p.Address)
	set("city", p.City)
	set("state", p.State)
	args = append(args, updatedAt)
	sets = append(sets, "updated_at = $"+itoa(len(args)))
	args = append(args, id)

	ct, err := r.db.Exec(ctx,
		`UPDATE clients SET `+strings.Join(sets, ", ")+` WHERE id = $`+itoa(len(args))+`::uuid`,
		args...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
