package identities

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

// Columns is the identity projection shared with the sessions repository.
const Columns = `id, full_name, email, password, role, vendor_id, is_active, profile_complete, created_at, updated_at`

// RowScanner is implemented by *sql.Row and *sql.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}

// Scan reads one identity in Columns order.
func Scan(row RowScanner) (*models.Identity, error) {
	var (
		i        models.Identity
		role     string
		vendorID sql.NullString
	)
	err := row.Scan(&i.ID, &i.FullName, &i.Email, &i.PasswordHash, &role, &vendorID,
		&i.IsActive, &i.ProfileComplete, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	i.Role = models.Role(role)
	if vendorID.Valid {
		i.VendorID = &vendorID.String
	}
	return &i, nil
}

// scopeMessage describes the users table checks: a known role, and a vendor
// for every VENDOR identity.
const scopeMessage = "role and vendor do not match"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, identity *models.Identity) (*models.Identity, error) {
	query :=
		`INSERT INTO users (full_name, email, password, role, vendor_id, profile_complete)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, is_active, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		identity.FullName, normalizeEmail(identity.Email), identity.PasswordHash,
		string(identity.Role), identity.VendorID, identity.ProfileComplete,
	).Scan(&identity.ID, &identity.IsActive, &identity.CreatedAt, &identity.UpdatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		if dbx.IsCheckViolation(err) {
			return nil, fmt.Errorf("%w: %s", common.ErrValidation, scopeMessage)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	identity.Email = normalizeEmail(identity.Email)
	return identity, nil
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.Identity, error) {
	query := `SELECT ` + Columns + ` FROM users WHERE lower(email) = $1`

	return r.findOne(ctx, query, normalizeEmail(email))
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Identity, error) {
	query := `SELECT ` + Columns + ` FROM users WHERE id = $1`

	return r.findOne(ctx, query, id)
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, arg any) (*models.Identity, error) {
	identity, err := Scan(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return identity, nil
}

func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]*models.Identity, error) {
	query :=
		`SELECT ` + Columns + ` FROM users
		 WHERE is_active
		   AND ($1 = '' OR full_name ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%')
		   AND ($2 = '' OR role = $2)
		 ORDER BY created_at DESC
		 LIMIT NULLIF($3, 0) OFFSET $4
		 `

	limit := max(filter.Limit, 0)
	offset := max(filter.Offset, 0)

	rows, err := r.db.QueryContext(ctx, query, strings.TrimSpace(filter.Search), string(filter.Role), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Identity
	for rows.Next() {
		identity, err := Scan(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, identity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, identity *models.Identity) error {
	query :=
		`UPDATE users SET full_name = $2, email = $3, role = $4, updated_at = now()
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query,
		identity.ID, identity.FullName, normalizeEmail(identity.Email), string(identity.Role))
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		if dbx.IsCheckViolation(err) {
			return fmt.Errorf("%w: %s", common.ErrValidation, scopeMessage)
		}
		return fmt.Errorf("db error: %w", err)
	}

	return expectOneRow(res)
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id, passwordHash string, profileComplete bool) error {
	query :=
		`UPDATE users SET password = $2, profile_complete = $3, updated_at = now()
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, passwordHash, profileComplete)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return expectOneRow(res)
}

// Disable soft-deletes an active identity, moving it to disabledEmail so the
// original address can be registered again.
func (r *PostgresRepository) Disable(ctx context.Context, id, disabledEmail string) error {
	query :=
		`UPDATE users SET email = $2, is_active = FALSE, updated_at = now()
		 WHERE id = $1 AND is_active
		 `

	res, err := r.db.ExecContext(ctx, query, id, disabledEmail)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n != 1 {
		return common.ErrorNotFound
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
