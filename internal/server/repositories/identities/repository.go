// Package identities stores identity records. It never touches the stored
// refresh token; that column belongs to the sessions repository.
package identities

import (
	"context"

	"github.com/dmitrijs2005/rms/internal/server/models"
)

// ListFilter narrows List to active identities matching Search (name or
// email, case-insensitive) and Role. Limit <= 0 means no limit.
type ListFilter struct {
	Search string
	Role   models.Role
	Limit  int
	Offset int
}

type Repository interface {
	Create(ctx context.Context, identity *models.Identity) (*models.Identity, error)
	FindByEmail(ctx context.Context, email string) (*models.Identity, error)
	FindByID(ctx context.Context, id string) (*models.Identity, error)
	List(ctx context.Context, filter ListFilter) ([]*models.Identity, error)
	Update(ctx context.Context, identity *models.Identity) error
	UpdatePassword(ctx context.Context, id, passwordHash string, profileComplete bool) error
	Disable(ctx context.Context, id, disabledEmail string) error
}
