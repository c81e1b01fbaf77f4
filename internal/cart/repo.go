package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rxsupplyhq/rxsupply-backend/pkg/db/models"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/enums"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/errors"
)

// Repo provides cart persistence.
type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// FindActive returns the profile's active cart with items, or nil when the
// profile has none.
func (r *Repo) FindActive(ctx context.Context, profileID uuid.UUID) (*models.CartRecord, error) {
	var record models.CartRecord
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("profile_id = ? AND status = ?", profileID, enums.CartStatusActive).
		Order("created_at DESC").
		First(&record).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "loading cart")
	}
	return &record, nil
}

func (r *Repo) Create(ctx context.Context, record *models.CartRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return errors.Wrap(errors.CodeDependency, err, "creating cart")
	}
	return nil
}

func (r *Repo) AddItem(ctx context.Context, item *models.CartItem) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return errors.Wrap(errors.CodeDependency, err, "adding cart item")
	}
	return nil
}

func (r *Repo) UpdateItem(ctx context.Context, item *models.CartItem) error {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		return errors.Wrap(errors.CodeDependency, err, "updating cart item")
	}
	return nil
}

func (r *Repo) RemoveItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		Delete(&models.CartItem{})
	if result.Error != nil {
		return errors.Wrap(errors.CodeDependency, result.Error, "removing cart item")
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.CodeNotFound, "cart item not found")
	}
	return nil
}

// ClearItems removes every item from the cart. Clearing an already empty
// cart is a no-op.
func (r *Repo) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&models.CartItem{}).Error
	if err != nil {
		return errors.Wrap(errors.CodeDependency, err, "clearing cart")
	}
	return nil
}

func (r *Repo) SetStatus(ctx context.Context, cartID uuid.UUID, status enums.CartStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.CartRecord{}).
		Where("id = ?", cartID).
		UpdateColumn("status", status)
	if result.Error != nil {
		return errors.Wrap(errors.CodeDependency, result.Error, "updating cart status")
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.CodeNotFound, "cart not found")
	}
	return nil
}
