package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rxsupplyhq/rxsupply-backend/pkg/db/models"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/enums"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/errors"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/pagination"
)

// Repo provides order persistence.
type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// WithTx returns a repo bound to the given transaction.
func (r *Repo) WithTx(tx *gorm.DB) *Repo {
	if tx == nil {
		return r
	}
	return &Repo{db: tx}
}

func (r *Repo) Create(ctx context.Context, order *models.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return errors.Wrap(errors.CodeDependency, err, "creating order")
	}
	return nil
}

func (r *Repo) CreateItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&items).Error; err != nil {
		return errors.Wrap(errors.CodeDependency, err, "creating order items")
	}
	return nil
}

func (r *Repo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Invoice").
		Preload("OrderItems").
		First(&order, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, errors.New(errors.CodeNotFound, "order not found")
	}
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "loading order")
	}
	return &order, nil
}

func (r *Repo) FindByNumber(ctx context.Context, number string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Invoice").
		Preload("OrderItems").
		First(&order, "order_number = ?", number).Error
	if err == gorm.ErrRecordNotFound {
		return nil, errors.New(errors.CodeNotFound, "order not found")
	}
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "loading order")
	}
	return &order, nil
}

type listParams struct {
	ProfileID *uuid.UUID
	Status    *enums.OrderStatus
	Limit     int
	Cursor    *pagination.Cursor
}

// List pages through orders newest first. A nil ProfileID lists across all
// profiles (admin view).
func (r *Repo) List(ctx context.Context, params listParams) ([]models.Order, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Order{}).Preload("Invoice")
	if params.ProfileID != nil {
		query = query.Where("profile_id = ?", *params.ProfileID)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var out []models.Order
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, nil, errors.Wrap(errors.CodeDependency, err, "listing orders")
	}

	if len(out) > normalized {
		next := out[normalized]
		out = out[:normalized]
		return out, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return out, nil, nil
}

type statusUpdate struct {
	Status            enums.OrderStatus
	TrackingNumber    *string
	EstimatedDelivery *time.Time
}

func (r *Repo) UpdateStatus(ctx context.Context, id uuid.UUID, update statusUpdate) error {
	updates := map[string]any{
		"status":     update.Status,
		"updated_at": time.Now(),
	}
	if update.TrackingNumber != nil {
		updates["tracking_number"] = *update.TrackingNumber
	}
	if update.EstimatedDelivery != nil {
		updates["estimated_delivery"] = *update.EstimatedDelivery
	}

	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return errors.Wrap(errors.CodeDependency, result.Error, "updating order status")
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.CodeNotFound, "order not found")
	}
	return nil
}

func (r *Repo) SetPaymentStatus(ctx context.Context, id uuid.UUID, status enums.PaymentStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		UpdateColumn("payment_status", status)
	if result.Error != nil {
		return errors.Wrap(errors.CodeDependency, result.Error, "updating payment status")
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.CodeNotFound, "order not found")
	}
	return nil
}

func (r *Repo) SetNotifiedAt(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		UpdateColumn("notified_at", at)
	if result.Error != nil {
		return errors.Wrap(errors.CodeDependency, result.Error, "marking order notified")
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.CodeNotFound, "order not found")
	}
	return nil
}

func (r *Repo) SetPOAccept(ctx context.Context, id uuid.UUID, accepted bool) error {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		UpdateColumn("po_accept", accepted)
	if result.Error != nil {
		return errors.Wrap(errors.CodeDependency, result.Error, "updating purchase order state")
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.CodeNotFound, "order not found")
	}
	return nil
}

// ListUnnotified returns retail orders whose placement notification has not
// gone out yet. Pending purchase orders are excluded; their notification
// fires on acceptance.
func (r *Repo) ListUnnotified(ctx context.Context, limit int) ([]models.Order, error) {
	var out []models.Order
	err := r.db.WithContext(ctx).
		Where("notified_at IS NULL AND (po_accept IS NULL OR po_accept = ?)", true).
		Order("created_at ASC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "listing unnotified orders")
	}
	return out, nil
}

// Delete removes the order and its children. Child rows are deleted
// explicitly so the behavior does not depend on database cascade support.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
		return errors.Wrap(errors.CodeDependency, err, "deleting order items")
	}
	if err := r.db.WithContext(ctx).Where("order_id = ?", id).Delete(&models.Invoice{}).Error; err != nil {
		return errors.Wrap(errors.CodeDependency, err, "deleting invoice")
	}

	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Order{})
	if result.Error != nil {
		return errors.Wrap(errors.CodeDependency, result.Error, "deleting order")
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.CodeNotFound, "order not found")
	}
	return nil
}
