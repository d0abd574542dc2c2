package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/rms/internal/common"
	"github.com/dmitrijs2005/rms/internal/dbx"
	"github.com/dmitrijs2005/rms/internal/server/models"
	"github.com/dmitrijs2005/rms/internal/server/repositories/identities"
)

type PostgresStore struct {
	db dbx.DBTX
}

func NewPostgresStore(db dbx.DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

// SetSession stores refreshToken as the only valid one for identityID.
// It is a single UPDATE, so the previous value is either fully replaced or kept.
func (s *PostgresStore) SetSession(ctx context.Context, identityID, refreshToken string) error {
	if refreshToken == "" {
		return fmt.Errorf("%w: empty refresh token", common.ErrValidation)
	}

	query :=
		`UPDATE users SET refresh_token = $2
		 WHERE id = $1
		 `

	res, err := s.db.ExecContext(ctx, query, identityID, refreshToken)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n != 1 {
		return common.ErrorNotFound
	}

	return nil
}

// GetIdentityByRefreshToken is a plain equality lookup. Callers must still
// verify the token signature and subject against the returned identity.
func (s *PostgresStore) GetIdentityByRefreshToken(ctx context.Context, refreshToken string) (*models.Identity, error) {
	if refreshToken == "" {
		return nil, common.ErrorNotFound
	}

	query := `SELECT ` + identities.Columns + ` FROM users WHERE refresh_token = $1`

	identity, err := identities.Scan(s.db.QueryRowContext(ctx, query, refreshToken))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return identity, nil
}

// ClearSession revokes the stored token. Clearing an identity without a
// session, or an unknown identity, is not an error.
func (s *PostgresStore) ClearSession(ctx context.Context, identityID string) error {
	query :=
		`UPDATE users SET refresh_token = ''
		 WHERE id = $1
		 `

	if _, err := s.db.ExecContext(ctx, query, identityID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
