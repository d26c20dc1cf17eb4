package clients

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Reissam/ajuda-tech-hub/internal/apperr"
	"github.com/Reissam/ajuda-tech-hub/internal/models"
	"github.com/Reissam/ajuda-tech-hub/internal/repository"
)

type stubRepo struct {
	rows      []models.Client
	calls     int
	createErr error
}

func (s *stubRepo) List(context.Context) ([]models.Client, error) {
	s.calls++
	return append([]models.Client(nil), s.rows...), nil
}

func (s *stubRepo) Get(_ context.Context, id string) (*models.Client, error) {
	s.calls++
	for _, c := range s.rows {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, nil
}

func (s *stubRepo) Create(_ context.Context, c *models.Client) error {
	s.calls++
	if s.createErr != nil {
		return s.createErr
	}
	c.ID = "cl-new"
	c.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.UpdatedAt = c.CreatedAt
	s.rows = append(s.rows, *c)
	return nil
}

func (s *stubRepo) Update(_ context.Context, id string, p models.ClientPatch, updatedAt time.Time) error {
	s.calls++
	for i := range s.rows {
		if s.rows[i].ID == id {
			p.Apply(&s.rows[i])
			s.rows[i].UpdatedAt = updatedAt
			return nil
		}
	}
	return repository.ErrNotFound
}

func seeded() *stubRepo {
	return &stubRepo{rows: []models.Client{
		{ID: "cl-1", Name: "Padaria Central", Unit: "Matriz", Address: "Rua A, 1", City: "Recife", State: "PE"},
		{ID: "cl-2", Name: "Condomínio Sol", Unit: "Bloco B", Address: "Av. B, 200", City: "Olinda", State: "PE"},
	}}
}

func TestDirectoryRequiresStaff(t *testing.T) {
	repo := seeded()
	for _, role := range []models.Role{models.RoleClient, models.RoleTechnician} {
		d := NewDirectory(repo, models.User{ID: "x", Role: role}, nil, nil, zerolog.Nop())
		_, err := d.List(context.Background(), "")
		assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err), role)
		_, err = d.Create(context.Background(), Draft{Name: "n", Unit: "u", Address: "a", City: "c", State: "s"})
		assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err), role)
	}
	assert.Zero(t, repo.calls)
}

func TestDirectoryListSearch(t *testing.T) {
	d := NewDirectory(seeded(), models.User{ID: "m", Role: models.RoleManager}, nil, nil, zerolog.Nop())

	all, err := d.List(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "cl-2", all[0].ID, "sorted by name")

	byName, err := d.List(context.Background(), "PADARIA")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "cl-1", byName[0].ID)

	byID, err := d.List(context.Background(), "cl-2")
	require.NoError(t, err)
	require.Len(t, byID, 1)
}

func TestDirectoryCreate(t *testing.T) {
	repo := seeded()
	d := NewDirectory(repo, models.User{ID: "a", Role: models.RoleAdmin}, nil, nil, zerolog.Nop())

	_, err := d.Create(context.Background(), Draft{Name: "Loja"})
	typed := apperr.As(err)
	require.NotNil(t, typed)
	assert.Contains(t, typed.Details, "city")
	assert.Zero(t, repo.calls)

	c, err := d.Create(context.Background(), Draft{Name: " Loja ", Unit: "1", Address: "Rua C", City: "Recife", State: "PE"})
	require.NoError(t, err)
	assert.Equal(t, "Loja", c.Name)
	got, err := d.Get(context.Background(), "cl-new")
	require.NoError(t, err)
	assert.Equal(t, "Rua C", got.Address)
}

func TestDirectoryCreateFailure(t *testing.T) {
	repo := seeded()
	repo.createErr = errors.New("duplicate")
	d := NewDirectory(repo, models.User{ID: "a", Role: models.RoleAdmin}, nil, nil, zerolog.Nop())

	_, err := d.Create(context.Background(), Draft{Name: "L", Unit: "1", Address: "R", City: "C", State: "S"})
	assert.Equal(t, apperr.KindMutation, apperr.KindOf(err))
	all, err := d.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDirectoryUpdate(t *testing.T) {
	repo := seeded()
	d := NewDirectory(repo, models.User{ID: "m", Role: models.RoleManager}, nil, nil, zerolog.Nop())

	city := "Jaboatão"
	c, err := d.Update(context.Background(), "cl-1", models.ClientPatch{City: &city})
	require.NoError(t, err)
	assert.Equal(t, "Jaboatão", c.City)
	assert.Equal(t, "Padaria Central", c.Name)

	blank := " "
	_, err = d.Update(context.Background(), "cl-1", models.ClientPatch{Name: &blank})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = d.Update(context.Background(), "missing", models.ClientPatch{City: &city})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
