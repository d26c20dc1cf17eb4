package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Reissam/ajuda-tech-hub/internal/access"
	"github.com/Reissam/ajuda-tech-hub/internal/models"
)

// ErrNotFound is returned by writes that matched no row. Reads return
// (nil, nil) for a missing row instead.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a unique key is already taken.
var ErrDuplicate = errors.New("duplicate record")

type TicketRepository interface {
	// List returns the tickets inside scope with their comments, oldest first.
	List(ctx context.Context, scope access.Scope) ([]models.Ticket, error)
	Get(ctx context.Context, id string) (*models.Ticket, error)
	// Create inserts t and fills its server-assigned id and timestamps.
	Create(ctx context.Context, t *models.Ticket) error
	// Update writes only the fields set in p.
	Update(ctx context.Context, id string, p models.TicketPatch, updatedAt time.Time) error
	// AddComment inserts c and fills its id and creation time.
	AddComment(ctx context.Context, c *models.Comment) error
}

type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	Insert(ctx context.Context, u *models.User) error
	List(ctx context.Context, q, role string, active *bool, limit, offset int) ([]models.User, int, error)
	UpdateRole(ctx context.Context, id string, role models.Role) (*models.User, error)
	SetActive(ctx context.Context, id string, active bool) (*models.User, error)
	UpdateBasic(ctx context.Context, id, name string) (*models.User, error)
}

type AccountRepository interface {
	CreateAccount(ctx context.Context, email, passwordHash string) (*models.Account, error)
	// GetAccountByEmail returns (nil, nil) when no account uses email.
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
}

type ClientRepository interface {
	List(ctx context.Context) ([]models.Client, error)
	Get(ctx context.Context, id string) (*models.Client, error)
	Create(ctx context.Context, c *models.Client) error
	Update(ctx context.Context, id string, p models.ClientPatch, updatedAt time.Time) error
}
