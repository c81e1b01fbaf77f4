package profiles

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rxsupplyhq/rxsupply-backend/pkg/config"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/db/models"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/enums"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/errors"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/gateway"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/security"
)

func setupProfilesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS profiles (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  phone TEXT,
  role TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  tax_percent NUMERIC NOT NULL DEFAULT 0,
  free_shipping INTEGER NOT NULL DEFAULT 0,
  group_id TEXT,
  active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec("DROP TABLE IF EXISTS profiles").Error)
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

type stubNotifier struct {
	updates []gateway.ProfileUpdate
	err     error
}

func (s *stubNotifier) NotifyProfileUpdated(_ context.Context, update gateway.ProfileUpdate) error {
	s.updates = append(s.updates, update)
	return s.err
}

func passwordCfg() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func seedProfile(t *testing.T, db *gorm.DB, password string) *models.Profile {
	t.Helper()

	hash, err := security.HashPassword(password, passwordCfg())
	require.NoError(t, err)

	profile := &models.Profile{
		ID:           uuid.New(),
		Email:        "rx@example.com",
		Name:         "Main Street Pharmacy",
		Role:         enums.RolePharmacy,
		PasswordHash: hash,
		TaxPercent:   decimal.RequireFromString("7.5"),
	}
	require.NoError(t, db.Create(profile).Error)
	return profile
}

func TestResetPasswordReplacesHashAndNotifies(t *testing.T) {
	db := setupProfilesTestDB(t)
	notifier := &stubNotifier{}
	svc := NewService(NewRepo(db), notifier, passwordCfg(), nil)
	profile := seedProfile(t, db, "old-password")

	temp, err := svc.ResetPassword(context.Background(), profile.ID)
	require.NoError(t, err)
	require.NotEmpty(t, temp)

	reloaded, err := svc.Get(context.Background(), profile.ID)
	require.NoError(t, err)

	ok, err := security.VerifyPassword(temp, reloaded.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok, "temp password must verify against new hash")

	ok, err = security.VerifyPassword("old-password", reloaded.PasswordHash)
	require.NoError(t, err)
	assert.False(t, ok, "old password must no longer verify")

	require.Len(t, notifier.updates, 1)
	assert.Equal(t, profile.Email, notifier.updates[0].Email)
}

func TestResetPasswordNotifyFailureDoesNotFail(t *testing.T) {
	db := setupProfilesTestDB(t)
	notifier := &stubNotifier{err: errors.New(errors.CodeDependency, "backend down")}
	svc := NewService(NewRepo(db), notifier, passwordCfg(), nil)
	profile := seedProfile(t, db, "old-password")

	_, err := svc.ResetPassword(context.Background(), profile.ID)
	require.NoError(t, err)
}

func TestResetPasswordUnknownProfile(t *testing.T) {
	db := setupProfilesTestDB(t)
	svc := NewService(NewRepo(db), &stubNotifier{}, passwordCfg(), nil)

	_, err := svc.ResetPassword(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.As(err).Code())
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	db := setupProfilesTestDB(t)
	svc := NewService(NewRepo(db), &stubNotifier{}, passwordCfg(), nil)
	profile := seedProfile(t, db, "correct-horse")

	err := svc.ChangePassword(context.Background(), profile.ID, "wrong-horse", "next-password")
	require.Error(t, err)
	assert.Equal(t, errors.CodeUnauthorized, errors.As(err).Code())
}

func TestUpdateContactNotifies(t *testing.T) {
	db := setupProfilesTestDB(t)
	notifier := &stubNotifier{}
	svc := NewService(NewRepo(db), notifier, passwordCfg(), nil)
	profile := seedProfile(t, db, "pw")

	updated, err := svc.UpdateContact(context.Background(), profile.ID, "New Name", "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)

	require.Len(t, notifier.updates, 1)
	assert.Equal(t, "new@example.com", notifier.updates[0].Email)
}
