package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/rms/internal/common"
	"github.com/dmitrijs2005/rms/internal/dbx"
	"github.com/dmitrijs2005/rms/internal/logging"
	"github.com/dmitrijs2005/rms/internal/server/auth"
	"github.com/dmitrijs2005/rms/internal/server/models"
	"github.com/dmitrijs2005/rms/internal/server/repositories/identities"
	"github.com/dmitrijs2005/rms/internal/server/repositories/repomanager"
)

// CreateUserInput creates an identity without opening a session.
// VendorName, when set, attaches the identity to that vendor, creating it
// if needed.
type CreateUserInput struct {
	FullName   string
	Email      string
	Password   string
	Role       models.Role
	VendorID   string
	VendorName string
}

type UpdateUserInput struct {
	FullName string
	Email    string
	Role     models.Role
}

// UserService administers identities on behalf of platform users and the
// bootstrap CLI.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      *auth.PasswordHasher
	logger      logging.Logger
	now         func() time.Time
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher *auth.PasswordHasher, l logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		logger:      l.With("module", "user_service"),
		now:         time.Now,
	}
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*models.Identity, error) {
	if !in.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", common.ErrValidation, in.Role)
	}
	if in.Role == models.RoleVendor && in.VendorID == "" && in.VendorName == "" {
		return nil, fmt.Errorf("%w: vendor is required", common.ErrValidation)
	}
	if in.VendorName != "" && !models.ValidVendorName(in.VendorName) {
		return nil, fmt.Errorf("%w: invalid vendor name %q", common.ErrValidation, in.VendorName)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	var created *models.Identity
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		identity := &models.Identity{
			FullName:        strings.TrimSpace(in.FullName),
			Email:           in.Email,
			PasswordHash:    hash,
			Role:            in.Role,
			ProfileComplete: true,
		}

		switch {
		case in.VendorName != "":
			v, err := s.vendorByName(ctx, tx, in.VendorName)
			if err != nil {
				return err
			}
			identity.VendorID = &v.ID
		case in.VendorID != "":
			v, err := s.repomanager.Vendors(tx).GetByID(ctx, in.VendorID)
			if err != nil {
				return err
			}
			identity.VendorID = &v.ID
		}

		var err error
		created, err = s.repomanager.Identities(tx).Create(ctx, identity)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "identity created", "user_id", created.ID, "role", string(created.Role))
	return created, nil
}

// vendorByName returns the named vendor, creating it when missing.
func (s *UserService) vendorByName(ctx context.Context, tx dbx.DBTX, name string) (*models.Vendor, error) {
	repo := s.repomanager.Vendors(tx)

	v, err := repo.GetByName(ctx, name)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}
	return repo.Create(ctx, &models.Vendor{Name: name})
}

// List returns active identities. Only platform roles may list.
func (s *UserService) List(ctx context.Context, p auth.Principal, filter identities.ListFilter) ([]*models.Identity, error) {
	if !p.HasRole(models.RoleAdmin, models.RoleSuperUser) {
		return nil, common.ErrForbidden
	}
	filter.Role = models.Role(strings.ToUpper(string(filter.Role)))
	return s.repomanager.Identities(s.db).List(ctx, filter)
}

// Update edits profile fields. Empty input fields keep their current value.
func (s *UserService) Update(ctx context.Context, p auth.Principal, id string, in UpdateUserInput) (*models.Identity, error) {
	if !p.HasRole(models.RoleAdmin, models.RoleSuperUser) {
		return nil, common.ErrForbidden
	}
	if in.Role != "" && !in.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", common.ErrValidation, in.Role)
	}

	repo := s.repomanager.Identities(s.db)
	identity, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if v := strings.TrimSpace(in.FullName); v != "" {
		identity.FullName = v
	}
	if v := strings.TrimSpace(in.Email); v != "" {
		identity.Email = v
	}
	if in.Role != "" {
		identity.Role = in.Role
	}
	if identity.Role == models.RoleVendor && identity.VendorID == nil {
		return nil, fmt.Errorf("%w: a VENDOR identity needs a vendor", common.ErrValidation)
	}

	if err := repo.Update(ctx, identity); err != nil {
		return nil, err
	}

	return identity, nil
}

// Disable soft-deletes an identity: the email moves aside so it can be
// reused, the active flag is cleared and any session is revoked.
func (s *UserService) Disable(ctx context.Context, p auth.Principal, id string) error {
	if !p.HasRole(models.RoleAdmin, models.RoleSuperUser) {
		return common.ErrForbidden
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Identities(tx)

		identity, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}

		if err := repo.Disable(ctx, id, DisabledEmail(identity.Email, s.now())); err != nil {
			return err
		}

		return s.repomanager.Sessions(tx).ClearSession(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "identity disabled", "user_id", id, "admin_id", p.UserID)
	return nil
}

// DisabledEmail builds the address a disabled identity is moved to:
// "disabled-<UTC RFC3339 with millis, ':' and '.' replaced by '-'>-<email>".
func DisabledEmail(email string, at time.Time) string {
	ts := at.UTC().Format("2006-01-02T15:04:05.000Z")
	ts = strings.NewReplacer(":", "-", ".", "-").Replace(ts)
	return "disabled-" + ts + "-" + email
}
