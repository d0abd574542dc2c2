// Package vendors stores tenant records.
package vendors

import (
	"context"

	"github.com/dmitrijs2005/rms/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, vendor *models.Vendor) (*models.Vendor, error)
	GetByID(ctx context.Context, id string) (*models.Vendor, error)
	GetByName(ctx context.Context, name string) (*models.Vendor, error)
}
