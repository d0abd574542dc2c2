// Package memory is an in-memory implementation of the repositories, used
// by service and HTTP tests. It keeps the same uniqueness, vendor scope and
// single-session rules as the Postgres schema. Transactions are not modelled: writes made
// inside a rolled-back dbx.WithTx stay applied.
package memory

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/rms/internal/common"
	"github.com/dmitrijs2005/rms/internal/dbx"
	"github.com/dmitrijs2005/rms/internal/server/models"
	"github.com/dmitrijs2005/rms/internal/server/repositories/identities"
	"github.com/dmitrijs2005/rms/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/rms/internal/server/repositories/vendors"
	"github.com/google/uuid"
)

type Store struct {
	mu         sync.Mutex
	identities map[string]models.Identity
	sessions   map[string]string
	vendors    map[string]models.Vendor

	// SetSessionErr, when set, is returned by every SetSession call.
	SetSessionErr error
	// VendorErr, when set, is returned by every vendor lookup.
	VendorErr error
}

func NewStore() *Store {
	return &Store{
		identities: map[string]models.Identity{},
		sessions:   map[string]string{},
		vendors:    map[string]models.Vendor{},
	}
}

// Session returns the stored refresh token of id ("" when none).
func (s *Store) Session(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[id]
}

// inScope mirrors the vendor_role_scope check of the users table.
func inScope(role models.Role, vendorID *string) bool {
	return role != models.RoleVendor || (vendorID != nil && *vendorID != "")
}

// Manager implements repomanager.RepositoryManager over the store,
// ignoring the DBTX it is given.
type Manager struct {
	Store *Store
}

func (s *Store) Manager() *Manager { return &Manager{Store: s} }

func (m *Manager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *Manager) Identities(dbx.DBTX) identities.Repository { return IdentityRepository{m.Store} }
func (m *Manager) Sessions(dbx.DBTX) sessions.Store { return SessionStore{m.Store} }
func (m *Manager) Vendors(dbx.DBTX) vendors.Repository { return VendorRepository{m.Store} }

type IdentityRepository struct{ st *Store }

func normalize(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

func (r IdentityRepository) Create(ctx context.Context, i *models.Identity) (*models.Identity, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if !inScope(i.Role, i.VendorID) {
		return nil, common.ErrValidation
	}
	email := normalize(i.Email)
	for _, other := range r.st.identities {
		if other.Email == email {
			return nil, common.ErrorAlreadyExists
		}
	}
	now := time.Now()
	i.ID = uuid.NewString()
	i.Email = email
	i.IsActive = true
	i.CreatedAt, i.UpdatedAt = now, now
	r.st.identities[i.ID] = *i

	out := *i
	return &out, nil
}

func (r IdentityRepository) FindByEmail(ctx context.Context, email string) (*models.Identity, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	email = normalize(email)
	for _, i := range r.st.identities {
		if i.Email == email {
			out := i
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r IdentityRepository) FindByID(ctx context.Context, id string) (*models.Identity, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	i, ok := r.st.identities[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &i, nil
}

func (r IdentityRepository) List(ctx context.Context, f identities.ListFilter) ([]*models.Identity, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	search := strings.ToLower(strings.TrimSpace(f.Search))
	var out []*models.Identity
	for _, i := range r.st.identities {
		if !i.IsActive || (f.Role != "" && i.Role != f.Role) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(i.FullName+" "+i.Email), search) {
			continue
		}
		c := i
		out = append(out, &c)
	}
	return out, nil
}

func (r IdentityRepository) Update(ctx context.Context, i *models.Identity) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	cur, ok := r.st.identities[i.ID]
	if !ok {
		return common.ErrorNotFound
	}
	if !inScope(i.Role, cur.VendorID) {
		return common.ErrValidation
	}
	email := normalize(i.Email)
	for id, other := range r.st.identities {
		if id != i.ID && other.Email == email {
			return common.ErrorAlreadyExists
		}
	}
	cur.FullName, cur.Email, cur.Role, cur.UpdatedAt = i.FullName, email, i.Role, time.Now()
	r.st.identities[i.ID] = cur
	return nil
}

func (r IdentityRepository) UpdatePassword(ctx context.Context, id, hash string, profileComplete bool) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	cur, ok := r.st.identities[id]
	if !ok {
		return common.ErrorNotFound
	}
	cur.PasswordHash, cur.ProfileComplete = hash, profileComplete
	r.st.identities[id] = cur
	return nil
}

func (r IdentityRepository) Disable(ctx context.Context, id, disabledEmail string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	cur, ok := r.st.identities[id]
	if !ok || !cur.IsActive {
		return common.ErrorNotFound
	}
	cur.Email, cur.IsActive = disabledEmail, false
	r.st.identities[id] = cur
	return nil
}

type SessionStore struct{ st *Store }

func (r SessionStore) SetSession(ctx context.Context, id, token string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if r.st.SetSessionErr != nil {
		return r.st.SetSessionErr
	}
	if token == "" {
		return common.ErrValidation
	}
	if _, ok := r.st.identities[id]; !ok {
		return common.ErrorNotFound
	}
	r.st.sessions[id] = token
	return nil
}

func (r SessionStore) GetIdentityByRefreshToken(ctx context.Context, token string) (*models.Identity, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if token == "" {
		return nil, common.ErrorNotFound
	}
	for id, t := range r.st.sessions {
		if t == token {
			i := r.st.identities[id]
			return &i, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r SessionStore) ClearSession(ctx context.Context, id string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	delete(r.st.sessions, id)
	return nil
}

type VendorRepository struct{ st *Store }

func (r VendorRepository) Create(ctx context.Context, v *models.Vendor) (*models.Vendor, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	v.Name = strings.TrimSpace(v.Name)
	if !models.ValidVendorName(v.Name) {
		return nil, common.ErrValidation
	}
	for _, other := range r.st.vendors {
		if other.Name == v.Name {
			return nil, common.ErrorAlreadyExists
		}
	}
	v.ID = uuid.NewString()
	v.CreatedAt = time.Now()
	r.st.vendors[v.ID] = *v

	out := *v
	return &out, nil
}

func (r VendorRepository) GetByID(ctx context.Context, id string) (*models.Vendor, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if r.st.VendorErr != nil {
		return nil, r.st.VendorErr
	}
	v, ok := r.st.vendors[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &v, nil
}

func (r VendorRepository) GetByName(ctx context.Context, name string) (*models.Vendor, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if r.st.VendorErr != nil {
		return nil, r.st.VendorErr
	}
	name = strings.TrimSpace(name)
	for _, v := range r.st.vendors {
		if v.Name == name {
			out := v
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}
