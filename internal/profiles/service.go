package profiles

import (
	"context"

	"github.com/google/uuid"

	"github.com/rxsupplyhq/rxsupply-backend/pkg/config"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/db/models"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/errors"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/gateway"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/logger"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/security"
)

const tempPasswordLength = 12

// Notifier is the slice of the gateway client the profile service needs.
type Notifier interface {
	NotifyProfileUpdated(ctx context.Context, update gateway.ProfileUpdate) error
}

// Service owns profile reads and the password reset flow.
type Service struct {
	repo     *Repo
	notifier Notifier
	password config.PasswordConfig
	logger   *logger.Logger
}

func NewService(repo *Repo, notifier Notifier, password config.PasswordConfig, logg *logger.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, password: password, logger: logg}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateContact changes name and email, then notifies the upstream backend.
// The notification is best effort and never fails the update.
func (s *Service) UpdateContact(ctx context.Context, id uuid.UUID, name, email string) (*models.Profile, error) {
	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	profile.Name = name
	profile.Email = email
	if err := s.repo.Update(ctx, profile); err != nil {
		return nil, err
	}

	s.notifyUpdated(ctx, profile)
	return profile, nil
}

// ResetPassword replaces the profile's password with a generated temporary
// one and returns it so it can be delivered out of band.
func (s *Service) ResetPassword(ctx context.Context, id uuid.UUID) (string, error) {
	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", err
	}

	temp, err := security.GenerateTempPassword(tempPasswordLength)
	if err != nil {
		return "", errors.Wrap(errors.CodeInternal, err, "generating temporary password")
	}

	hash, err := security.HashPassword(temp, s.password)
	if err != nil {
		return "", errors.Wrap(errors.CodeInternal, err, "hashing password")
	}

	if err := s.repo.UpdatePasswordHash(ctx, id, hash); err != nil {
		return "", err
	}

	s.notifyUpdated(ctx, profile)
	return temp, nil
}

// ChangePassword verifies the current password before setting a new one.
func (s *Service) ChangePassword(ctx context.Context, id uuid.UUID, current, next string) error {
	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	ok, err := security.VerifyPassword(current, profile.PasswordHash)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "verifying password")
	}
	if !ok {
		return errors.New(errors.CodeUnauthorized, "current password is incorrect")
	}

	hash, err := security.HashPassword(next, s.password)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "hashing password")
	}
	return s.repo.UpdatePasswordHash(ctx, id, hash)
}

func (s *Service) notifyUpdated(ctx context.Context, profile *models.Profile) {
	if s.notifier == nil {
		return
	}
	update := gateway.ProfileUpdate{Name: profile.Name, Email: profile.Email}
	if err := s.notifier.NotifyProfileUpdated(ctx, update); err != nil && s.logger != nil {
		ctx = s.logger.WithProfileID(ctx, profile.ID.String())
		s.logger.Error(ctx, "profile update notification failed", err)
	}
}
