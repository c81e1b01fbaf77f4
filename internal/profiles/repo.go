package profiles

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rxsupplyhq/rxsupply-backend/pkg/db/models"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/errors"
)

// Repo provides profile persistence.
type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, errors.New(errors.CodeNotFound, "profile not found")
	}
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "loading profile")
	}
	return &profile, nil
}

func (r *Repo) FindByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).First(&profile, "email = ?", email).Error
	if err == gorm.ErrRecordNotFound {
		return nil, errors.New(errors.CodeNotFound, "profile not found")
	}
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "loading profile")
	}
	return &profile, nil
}

func (r *Repo) Update(ctx context.Context, profile *models.Profile) error {
	if err := r.db.WithContext(ctx).Save(profile).Error; err != nil {
		return errors.Wrap(errors.CodeDependency, err, "updating profile")
	}
	return nil
}

func (r *Repo) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id = ?", id).
		UpdateColumn("password_hash", hash)
	if result.Error != nil {
		return errors.Wrap(errors.CodeDependency, result.Error, "updating password")
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.CodeNotFound, "profile not found")
	}
	return nil
}
