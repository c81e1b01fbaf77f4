package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rxsupplyhq/rxsupply-backend/internal/profiles"
	pkgauth "github.com/rxsupplyhq/rxsupply-backend/pkg/auth"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/config"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/db/models"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/enums"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/errors"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/security"
)

func setupAuthTestDB(t *testing.T) *gorm.DB {
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

type fakeSessions struct {
	created []string
	revoked []string
	err     error
}

func (f *fakeSessions) Create(_ context.Context, accessID string) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, accessID)
	return nil
}

func (f *fakeSessions) Revoke(_ context.Context, accessID string) error {
	if f.err != nil {
		return f.err
	}
	f.revoked = append(f.revoked, accessID)
	return nil
}

func jwtCfg() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "rxsupply-test",
		ExpirationMinutes: 15,
		SessionTTLMinutes: 60,
	}
}

func seedLoginProfile(t *testing.T, db *gorm.DB, email, password string, active bool) *models.Profile {
	t.Helper()

	hash, err := security.HashPassword(password, config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	})
	require.NoError(t, err)

	profile := &models.Profile{
		ID:           uuid.New(),
		Email:        email,
		Name:         "Main St Pharmacy",
		Role:         enums.RolePharmacy,
		PasswordHash: hash,
		Active:       active,
	}
	require.NoError(t, db.Create(profile).Error)
	return profile
}

func TestLoginIssuesSessionBoundToken(t *testing.T) {
	db := setupAuthTestDB(t)
	sessions := &fakeSessions{}
	svc := NewService(profiles.NewRepo(db), sessions, jwtCfg())

	profile := seedLoginProfile(t, db, "rx@example.com", "correct horse", true)

	result, err := svc.Login(context.Background(), "rx@example.com", "correct horse")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	assert.Equal(t, profile.ID, result.Profile.ID)

	claims, err := pkgauth.ParseAccessToken(jwtCfg(), result.Token)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, claims.ProfileID)
	assert.Equal(t, enums.RolePharmacy, claims.Role)

	require.Len(t, sessions.created, 1)
	assert.Equal(t, claims.ID, sessions.created[0])
}

func TestLoginRejectsBadCredentialsUniformly(t *testing.T) {
	db := setupAuthTestDB(t)
	svc := NewService(profiles.NewRepo(db), &fakeSessions{}, jwtCfg())

	seedLoginProfile(t, db, "rx@example.com", "correct horse", true)
	seedLoginProfile(t, db, "closed@example.com", "correct horse", false)

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown email", "nobody@example.com", "correct horse"},
		{"wrong password", "rx@example.com", "battery staple"},
		{"inactive profile", "closed@example.com", "correct horse"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tc.email, tc.password)
			require.Error(t, err)
			appErr := errors.As(err)
			require.NotNil(t, appErr)
			assert.Equal(t, errors.CodeUnauthorized, appErr.Code())
			assert.Equal(t, "invalid email or password", appErr.Message())
		})
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	db := setupAuthTestDB(t)
	sessions := &fakeSessions{}
	svc := NewService(profiles.NewRepo(db), sessions, jwtCfg())

	require.NoError(t, svc.Logout(context.Background(), "jti-123"))
	assert.Equal(t, []string{"jti-123"}, sessions.revoked)
}
