package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Reissam/ajuda-tech-hub/internal/access"
	"github.com/Reissam/ajuda-tech-hub/internal/models"
	"github.com/Reissam/ajuda-tech-hub/internal/repository"
)

func TestTicketRepo(t *testing.T) {
	ctx := context.Background()
	r := NewTicketRepo()
	tk := &models.Ticket{Title: "Alarme", Status: models.StatusOpen, CreatedBy: "c1"}
	require.NoError(t, r.Create(ctx, tk))
	require.NotEmpty(t, tk.ID)

	rows, err := r.List(ctx, access.Scope{AssignedTo: "t1"})
	require.NoError(t, err)
	assert.Empty(t, rows)

	tech := "t1"
	at := tk.UpdatedAt.Add(time.Millisecond)
	require.NoError(t, r.Update(ctx, tk.ID, models.TicketPatch{AssignedTo: &tech}, at))
	rows, err = r.List(ctx, access.Scope{AssignedTo: "t1"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, at, rows[0].UpdatedAt)

	c := &models.Comment{TicketID: tk.ID, Content: "ok", CreatedBy: "t1"}
	require.NoError(t, r.AddComment(ctx, c))
	assert.Equal(t, []string{}, c.Attachments)

	got, err := r.Get(ctx, tk.ID)
	require.NoError(t, err)
	require.Len(t, got.Comments, 1)
	assert.True(t, got.UpdatedAt.After(at))

	got.Comments[0].Content = "mutated"
	again, _ := r.Get(ctx, tk.ID)
	assert.Equal(t, "ok", again.Comments[0].Content)

	assert.ErrorIs(t, r.Update(ctx, "nope", models.TicketPatch{AssignedTo: &tech}, at), repository.ErrNotFound)
	assert.ErrorIs(t, r.AddComment(ctx, &models.Comment{TicketID: "nope"}), repository.ErrNotFound)
	missing, err := r.Get(ctx, "nope")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestProfileRepo(t *testing.T) {
	ctx := context.Background()
	r := NewProfileRepo()
	require.NoError(t, r.Insert(ctx, &models.User{ID: "u1", Email: "ana@corp.com", Name: "Ana", Role: models.RoleManager, Active: true}))

	dup := &models.User{ID: "u1", Name: "Other", Role: models.RoleClient}
	require.NoError(t, r.Insert(ctx, dup))
	assert.Equal(t, "Ana", dup.Name)

	require.NoError(t, r.Insert(ctx, &models.User{ID: "u2", Email: "bia@loja.com", Name: "Bia", Role: models.RoleClient, Active: false}))

	inactive := false
	users, total, err := r.List(ctx, "LOJA", "", &inactive, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "u2", users[0].ID)

	_, err = r.UpdateRole(ctx, "missing", models.RoleAdmin)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAccountRepo(t *testing.T) {
	ctx := context.Background()
	r := NewAccountRepo()
	a, err := r.CreateAccount(ctx, "Ana@Corp.com", "h")
	require.NoError(t, err)
	assert.Equal(t, "ana@corp.com", a.Email)

	_, err = r.CreateAccount(ctx, "ana@corp.com", "h2")
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	found, err := r.GetAccountByEmail(ctx, "ANA@corp.com")
	require.NoError(t, err)
	assert.Equal(t, a.ID, found.ID)
}

func TestClientRepo(t *testing.T) {
	ctx := context.Background()
	r := NewClientRepo()
	require.NoError(t, r.Create(ctx, &models.Client{Name: "Zeta"}))
	alpha := &models.Client{Name: "Alpha"}
	require.NoError(t, r.Create(ctx, alpha))

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Alpha", list[0].Name)

	city := "Natal"
	require.NoError(t, r.Update(ctx, alpha.ID, models.ClientPatch{City: &city}, time.Now()))
	got, _ := r.Get(ctx, alpha.ID)
	assert.Equal(t, "Natal", got.City)
	assert.ErrorIs(t, r.Update(ctx, "nope", models.ClientPatch{City: &city}, time.Now()), repository.ErrNotFound)
}
