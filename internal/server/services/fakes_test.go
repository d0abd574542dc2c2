package services

import (
	"context"
	"database/sql"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/rms/internal/logging"
	"github.com/dmitrijs2005/rms/internal/server/auth"
	"github.com/dmitrijs2005/rms/internal/server/models"
	"github.com/dmitrijs2005/rms/internal/server/repositories/memory"
	"golang.org/x/crypto/bcrypt"
)

type testStore struct {
	*memory.Store
}

func newMemStore() *testStore { return &testStore{Store: memory.NewStore()} }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func nopLogger() logging.Logger { return logging.New(logging.BackendSlog, io.Discard) }

func testHasher() *auth.PasswordHasher { return auth.NewPasswordHasher(bcrypt.MinCost) }

func testIssuer() *auth.TokenIssuer {
	return auth.NewTokenIssuer(auth.IssuerConfig{
		AccessSecret:       "access-secret",
		RefreshSecret:      "refresh-secret",
		AccessTTL:          24 * time.Hour,
		RefreshedAccessTTL: 15 * time.Minute,
		RefreshTTL:         7 * 24 * time.Hour,
	})
}

func (m *testStore) addVendor(t *testing.T, name string) *models.Vendor {
	t.Helper()
	v, err := m.Manager().Vendors(nil).Create(context.Background(), &models.Vendor{Name: name})
	if err != nil {
		t.Fatalf("add vendor: %v", err)
	}
	return v
}

func (m *testStore) addIdentity(t *testing.T, email, password string, role models.Role, vendorID string) *models.Identity {
	t.Helper()
	hash, err := testHasher().Hash(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	i := &models.Identity{FullName: "Test " + email, Email: email, PasswordHash: hash, Role: role}
	if vendorID != "" {
		i.VendorID = &vendorID
	}
	out, err := m.Manager().Identities(nil).Create(context.Background(), i)
	if err != nil {
		t.Fatalf("add identity: %v", err)
	}
	return out
}
