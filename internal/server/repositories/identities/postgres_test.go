package identities

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/rms/internal/common"
	"github.com/dmitrijs2005/rms/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{"id", "full_name", "email", "password", "role", "vendor_id", "is_active", "profile_complete", "created_at", "updated_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	vendor := "v-1"
	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+users\s*\(full_name,\s*email,\s*password,\s*role,\s*vendor_id,\s*profile_complete\).*RETURNING\s+id`).
		WithArgs("Alice", "alice@example.com", "hash", "VENDOR", "v-1", false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "is_active", "created_at", "updated_at"}).AddRow("u-1", true, now, now))

	got, err := repo.Create(context.Background(), &models.Identity{
		FullName: "Alice", Email: "  Alice@Example.com ", PasswordHash: "hash",
		Role: models.RoleVendor, VendorID: &vendor,
	})
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.ID)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.True(t, got.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_PlatformRoleHasNullVendor(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+users`).
		WithArgs("Root", "root@example.com", "hash", "SUPER_USER", nil, true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "is_active", "created_at", "updated_at"}).AddRow("u-2", true, now, now))

	_, err := repo.Create(context.Background(), &models.Identity{
		FullName: "Root", Email: "root@example.com", PasswordHash: "hash",
		Role: models.RoleSuperUser, ProfileComplete: true,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+users`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Create(context.Background(), &models.Identity{Email: "a@b.c", Role: models.RoleAdmin})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+users`).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.Identity{Email: "a@b.c", Role: models.RoleAdmin})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestFindByEmail_NormalizesAndFinds(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`(?s)^SELECT\s+id,.*FROM\s+users\s+WHERE\s+lower\(email\)\s*=\s*\$1$`).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("u-1", "Alice", "alice@example.com", "hash", "VENDOR", "v-1", true, true, now, now))

	got, err := repo.FindByEmail(context.Background(), " ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.ID)
	assert.Equal(t, models.RoleVendor, got.Role)
	require.NotNil(t, got.VendorID)
	assert.Equal(t, "v-1", *got.VendorID)
	assert.True(t, got.ProfileComplete)
}

func TestFindByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT.*FROM\s+users\s+WHERE\s+lower\(email\)`).
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestFindByID_NullVendor(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`(?s)^SELECT.*FROM\s+users\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs("u-9").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("u-9", "Admin", "admin@example.com", "hash", "ADMIN", nil, true, false, now, now))

	got, err := repo.FindByID(context.Background(), "u-9")
	require.NoError(t, err)
	assert.Nil(t, got.VendorID)
	assert.Equal(t, "", got.VendorRef())
}

func TestFindByID_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT.*WHERE\s+id`).WillReturnError(errors.New("db err"))

	_, err := repo.FindByID(context.Background(), "u-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorNotFound)
}

func TestList(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`(?s)^SELECT.*FROM\s+users\s+WHERE\s+is_active.*ORDER\s+BY\s+created_at\s+DESC`).
		WithArgs("ali", "VENDOR", 10, 0).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("u-1", "Alice", "alice@example.com", "h", "VENDOR", "v-1", true, true, now, now).
			AddRow("u-2", "Alina", "alina@example.com", "h", "VENDOR", "v-1", true, false, now, now))

	got, err := repo.List(context.Background(), ListFilter{Search: " ali ", Role: models.RoleVendor, Limit: 10, Offset: -5})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "u-2", got[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectExec(`(?s)^UPDATE\s+users\s+SET\s+full_name\s*=\s*\$2,\s*email\s*=\s*\$3,\s*role\s*=\s*\$4`).
			WithArgs("u-1", "Alice B", "alice@example.com", "ADMIN").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Update(context.Background(), &models.Identity{ID: "u-1", FullName: "Alice B", Email: "Alice@example.com", Role: models.RoleAdmin})
		assert.NoError(t, err)
	})

	t.Run("missing row", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectExec(`(?s)^UPDATE\s+users\s+SET\s+full_name`).WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(context.Background(), &models.Identity{ID: "nope"})
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("email taken", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectExec(`(?s)^UPDATE\s+users\s+SET\s+full_name`).WillReturnError(&pgconn.PgError{Code: "23505"})

		err := repo.Update(context.Background(), &models.Identity{ID: "u-1", Email: "taken@example.com"})
		assert.ErrorIs(t, err, common.ErrorAlreadyExists)
	})

	t.Run("vendor role without vendor", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectExec(`(?s)^UPDATE\s+users\s+SET\s+full_name`).WillReturnError(&pgconn.PgError{Code: "23514"})

		err := repo.Update(context.Background(), &models.Identity{ID: "u-1", Email: "a@example.com", Role: models.RoleVendor})
		assert.ErrorIs(t, err, common.ErrValidation)
	})
}

func TestUpdatePassword(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^UPDATE\s+users\s+SET\s+password\s*=\s*\$2,\s*profile_complete\s*=\s*\$3`).
		WithArgs("u-1", "newhash", true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdatePassword(context.Background(), "u-1", "newhash", true))

	mock.ExpectExec(`(?s)^UPDATE\s+users\s+SET\s+password`).
		WithArgs("ghost", "h", false).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.UpdatePassword(context.Background(), "ghost", "h", false), common.ErrorNotFound)
}

func TestDisable(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^UPDATE\s+users\s+SET\s+email\s*=\s*\$2,\s*is_active\s*=\s*FALSE.*WHERE\s+id\s*=\s*\$1\s+AND\s+is_active`).
		WithArgs("u-1", "disabled-x-alice@example.com").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Disable(context.Background(), "u-1", "disabled-x-alice@example.com"))

	mock.ExpectExec(`(?s)^UPDATE\s+users\s+SET\s+email`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Disable(context.Background(), "u-1", "again"), common.ErrorNotFound)
}

func TestColumns_ExcludeRefreshToken(t *testing.T) {
	assert.NotContains(t, Columns, "refresh_token")
}
