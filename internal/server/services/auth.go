// Package services contains server-side business logic. AuthService owns the
// session lifecycle: registration, login, refresh, persistent login, logout,
// password resets and access-token verification for the guards.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/rms/internal/common"
	"github.com/dmitrijs2005/rms/internal/dbx"
	"github.com/dmitrijs2005/rms/internal/logging"
	"github.com/dmitrijs2005/rms/internal/server/auth"
	"github.com/dmitrijs2005/rms/internal/server/models"
	"github.com/dmitrijs2005/rms/internal/server/repositories/repomanager"
)

// RegisterInput is a validated registration request. An empty Role means VENDOR.
type RegisterInput struct {
	FullName string
	Email    string
	Password string
	Role     models.Role
	VendorID string
}

// SessionResult is returned by flows that establish or resume a session.
// RefreshToken is empty when the flow does not set the cookie.
type SessionResult struct {
	Identity     *models.Identity
	VendorName   string
	AccessToken  string
	RefreshToken string
}

type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      *auth.TokenIssuer
	hasher      *auth.PasswordHasher
	logger      logging.Logger
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, tokens *auth.TokenIssuer, hasher *auth.PasswordHasher, l logging.Logger) *AuthService {
	return &AuthService{
		db:          db,
		repomanager: m,
		tokens:      tokens,
		hasher:      hasher,
		logger:      l.With("module", "auth_service"),
	}
}

// Authenticate checks email and password. Unknown emails yield
// common.ErrorNotFound and wrong passwords common.ErrInvalidCredentials;
// the two are deliberately kept distinct for API compatibility.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.Identity, error) {
	identity, err := s.repomanager.Identities(s.db).FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := s.hasher.Compare(identity.PasswordHash, password); err != nil {
		return nil, err
	}

	return identity, nil
}

// Register creates an identity and opens its first session. The identity and
// its stored refresh token are written in one transaction. Self-registration
// is limited to VENDOR identities; platform roles are provisioned with the
// admin CLI.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*SessionResult, error) {
	if in.Role == "" {
		in.Role = models.RoleVendor
	}
	if !in.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", common.ErrValidation, in.Role)
	}
	if in.Role.Platform() {
		return nil, common.ErrForbidden
	}
	if in.VendorID == "" {
		return nil, fmt.Errorf("%w: vendor is required", common.ErrValidation)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	var result *SessionResult
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		identity := &models.Identity{
			FullName:     strings.TrimSpace(in.FullName),
			Email:        in.Email,
			PasswordHash: hash,
			Role:         in.Role,
		}

		var vendorName string
		if in.VendorID != "" {
			v, err := s.repomanager.Vendors(tx).GetByID(ctx, in.VendorID)
			if err != nil {
				if errors.Is(err, common.ErrorNotFound) {
					return fmt.Errorf("%w: unknown vendor", common.ErrValidation)
				}
				return err
			}
			identity.VendorID = &v.ID
			vendorName = v.Name
		}

		created, err := s.repomanager.Identities(tx).Create(ctx, identity)
		if err != nil {
			return err
		}

		pair, err := s.tokens.IssuePair(created.ID)
		if err != nil {
			return fmt.Errorf("issue tokens: %w", err)
		}

		if err := s.repomanager.Sessions(tx).SetSession(ctx, created.ID, pair.RefreshToken); err != nil {
			return err
		}

		result = &SessionResult{
			Identity:     created,
			VendorName:   vendorName,
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "identity registered", "user_id", result.Identity.ID, "role", string(result.Identity.Role))
	return result, nil
}

// Login authenticates and replaces any existing session of the identity.
func (s *AuthService) Login(ctx context.Context, email, password string) (*SessionResult, error) {
	identity, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	vendorName, err := s.vendorName(ctx, identity)
	if err != nil {
		return nil, err
	}

	pair, err := s.tokens.IssuePair(identity.ID)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	if err := s.repomanager.Sessions(s.db).SetSession(ctx, identity.ID, pair.RefreshToken); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "login succeeded", "user_id", identity.ID)
	return &SessionResult{
		Identity:     identity,
		VendorName:   vendorName,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// Refresh exchanges the refresh cookie for a new access token. The refresh
// token itself is not rotated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	identity, err := s.resolveSession(ctx, refreshToken)
	if err != nil {
		return "", err
	}

	access, err := s.tokens.IssueAccessToken(identity.ID)
	if err != nil {
		return "", fmt.Errorf("issue access token: %w", err)
	}
	return access, nil
}

// ResumeSession validates the refresh cookie like Refresh and additionally
// returns the identity profile so a client can restore its state on start-up.
func (s *AuthService) ResumeSession(ctx context.Context, refreshToken string) (*SessionResult, error) {
	identity, err := s.resolveSession(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	access, err := s.tokens.IssueAccessToken(identity.ID)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	return &SessionResult{Identity: identity, AccessToken: access}, nil
}

// Logout revokes the session the cookie belongs to. Missing, stale and
// unknown cookies are not errors.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	sessions := s.repomanager.Sessions(s.db)
	identity, err := sessions.GetIdentityByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return err
	}

	if err := sessions.ClearSession(ctx, identity.ID); err != nil {
		return err
	}

	s.logger.Info(ctx, "logout", "user_id", identity.ID)
	return nil
}

// ResetPassword sets a new password for the calling identity and marks its
// profile complete. The current session stays valid.
func (s *AuthService) ResetPassword(ctx context.Context, p auth.Principal, newPassword string) error {
	if !p.Authenticated() {
		return common.ErrorUnauthorized
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	if err := s.repomanager.Identities(s.db).UpdatePassword(ctx, p.UserID, hash, true); err != nil {
		return err
	}

	s.logger.Info(ctx, "password reset", "user_id", p.UserID)
	return nil
}

// AdminResetPassword lets a platform user set another identity's password.
// The target must choose a new one on next login and its session is revoked.
func (s *AuthService) AdminResetPassword(ctx context.Context, p auth.Principal, targetID, newPassword string) error {
	if !p.HasRole(models.RoleAdmin, models.RoleSuperUser) {
		return common.ErrForbidden
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Identities(tx).UpdatePassword(ctx, targetID, hash, false); err != nil {
			return err
		}
		return s.repomanager.Sessions(tx).ClearSession(ctx, targetID)
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "password reset by admin", "user_id", targetID, "admin_id", p.UserID)
	return nil
}

// VerifyAccess validates a bearer access token and resolves the caller's
// role and vendor scope. The session store is not consulted: an access token
// stays usable until it expires, even after logout.
func (s *AuthService) VerifyAccess(ctx context.Context, accessToken string) (auth.Principal, error) {
	claims, err := s.tokens.VerifyAccess(accessToken)
	if err != nil {
		return auth.Principal{}, err
	}

	identity, err := s.repomanager.Identities(s.db).FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return auth.Principal{}, common.ErrorUnauthorized
		}
		return auth.Principal{}, err
	}

	return auth.Principal{
		UserID:   identity.ID,
		Role:     identity.Role,
		VendorID: identity.VendorRef(),
	}, nil
}

// resolveSession checks that refreshToken is the identity's current session
// and that it is a valid refresh token issued to that identity. Both checks
// are needed: a superseded token still has a valid signature.
func (s *AuthService) resolveSession(ctx context.Context, refreshToken string) (*models.Identity, error) {
	if refreshToken == "" {
		return nil, common.ErrorUnauthorized
	}

	identity, err := s.repomanager.Sessions(s.db).GetIdentityByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrSessionInvalid
		}
		return nil, err
	}

	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		s.logger.Warn(ctx, "stored refresh token failed verification", "user_id", identity.ID, "error", err)
		return nil, common.ErrSessionInvalid
	}
	if claims.UserID != identity.ID {
		s.logger.Warn(ctx, "refresh token subject mismatch", "user_id", identity.ID)
		return nil, common.ErrSessionInvalid
	}

	return identity, nil
}

func (s *AuthService) vendorName(ctx context.Context, identity *models.Identity) (string, error) {
	if identity.VendorID == nil {
		return "", nil
	}
	v, err := s.repomanager.Vendors(s.db).GetByID(ctx, *identity.VendorID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", nil
		}
		return "", err
	}
	return v.Name, nil
}
