// Package sessions owns the single stored refresh token of each identity.
// Nothing else in the server reads or writes users.refresh_token.
//
// An identity has at most one live session. SetSession overwrites the
// previous token unconditionally, so logging in again (or from a second
// client) makes every earlier refresh token unusable. Concurrent logins
// race at the database and the last write wins.
package sessions

import (
	"context"

	"github.com/dmitrijs2005/rms/internal/server/models"
)

type Store interface {
	SetSession(ctx context.Context, identityID, refreshToken string) error
	GetIdentityByRefreshToken(ctx context.Context, refreshToken string) (*models.Identity, error)
	ClearSession(ctx context.Context, identityID string) error
}
