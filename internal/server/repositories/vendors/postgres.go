package vendors

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/rms/internal/common"
	"github.com/dmitrijs2005/rms/internal/dbx"
	"github.com/dmitrijs2005/rms/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, vendor *models.Vendor) (*models.Vendor, error) {
	query :=
		`INSERT INTO vendors (name)
		 VALUES ($1)
		 RETURNING id, created_at
		 `

	vendor.Name = strings.TrimSpace(vendor.Name)
	if !models.ValidVendorName(vendor.Name) {
		return nil, fmt.Errorf("%w: invalid vendor name %q", common.ErrValidation, vendor.Name)
	}

	err := r.db.QueryRowContext(ctx, query, vendor.Name).Scan(&vendor.ID, &vendor.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return vendor, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Vendor, error) {
	return r.getOne(ctx, `SELECT id, name, created_at FROM vendors WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*models.Vendor, error) {
	return r.getOne(ctx, `SELECT id, name, created_at FROM vendors WHERE name = $1`, strings.TrimSpace(name))
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg string) (*models.Vendor, error) {
	v := &models.Vendor{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&v.ID, &v.Name, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return v, nil
}
