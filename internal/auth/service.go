package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rxsupplyhq/rxsupply-backend/internal/profiles"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/auth"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/auth/session"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/config"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/db/models"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/errors"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/security"
)

// SessionManager is the write surface of the server-side session store.
type SessionManager interface {
	Create(ctx context.Context, accessID string) error
	Revoke(ctx context.Context, accessID string) error
}

// Service owns login and logout.
type Service struct {
	profiles *profiles.Repo
	sessions SessionManager
	jwt      config.JWTConfig
	now      func() time.Time
}

func NewService(profilesRepo *profiles.Repo, sessions SessionManager, jwtCfg config.JWTConfig) *Service {
	return &Service{profiles: profilesRepo, sessions: sessions, jwt: jwtCfg, now: time.Now}
}

// LoginResult carries the issued token and the authenticated profile.
type LoginResult struct {
	Token   string
	Profile *models.Profile
}

// Login verifies credentials, opens a server-side session, and mints a JWT
// bound to it. Unknown emails and bad passwords return the same error.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	invalid := errors.New(errors.CodeUnauthorized, "invalid email or password")

	profile, err := s.profiles.FindByEmail(ctx, email)
	if err != nil {
		appErr := errors.As(err)
		if appErr != nil && appErr.Code() == errors.CodeNotFound {
			return nil, invalid
		}
		return nil, err
	}
	if !profile.Active {
		return nil, invalid
	}

	ok, err := security.VerifyPassword(password, profile.PasswordHash)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "verifying password")
	}
	if !ok {
		return nil, invalid
	}

	accessID := session.NewAccessID()
	if err := s.sessions.Create(ctx, accessID); err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "opening session")
	}

	token, err := auth.MintAccessToken(s.jwt, s.now(), auth.AccessTokenPayload{
		ProfileID: profile.ID,
		Role:      profile.Role,
		JTI:       accessID,
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "minting token")
	}

	return &LoginResult{Token: token, Profile: profile}, nil
}

// Logout revokes the server-side session for the token's jti.
func (s *Service) Logout(ctx context.Context, accessID string) error {
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return errors.Wrap(errors.CodeDependency, err, "revoking session")
	}
	return nil
}

// Whoami loads the profile for an authenticated id.
func (s *Service) Whoami(ctx context.Context, profileID uuid.UUID) (*models.Profile, error) {
	return s.profiles.FindByID(ctx, profileID)
}
