package invoices

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rxsupplyhq/rxsupply-backend/pkg/db/models"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/enums"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/errors"
)

// Repo provides invoice persistence.
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

func (r *Repo) Create(ctx context.Context, invoice *models.Invoice) error {
	if err := r.db.WithContext(ctx).Create(invoice).Error; err != nil {
		return errors.Wrap(errors.CodeDependency, err, "creating invoice")
	}
	return nil
}

func (r *Repo) FindByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).First(&invoice, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, errors.New(errors.CodeNotFound, "invoice not found")
	}
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "loading invoice")
	}
	return &invoice, nil
}

func (r *Repo) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).First(&invoice, "order_id = ?", orderID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, errors.New(errors.CodeNotFound, "invoice not found")
	}
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "loading invoice")
	}
	return &invoice, nil
}

// MarkPaid records the settlement details on the invoice.
func (r *Repo) MarkPaid(ctx context.Context, id uuid.UUID, method enums.PaymentMethod, transactionID, notes *string) error {
	updates := map[string]any{
		"status":         enums.InvoiceStatusPaid,
		"payment_method": method,
		"updated_at":     time.Now(),
	}
	if transactionID != nil {
		updates["payment_transaction"] = *transactionID
	}
	if notes != nil {
		updates["notes"] = *notes
	}

	result := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return errors.Wrap(errors.CodeDependency, result.Error, "marking invoice paid")
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.CodeNotFound, "invoice not found")
	}
	return nil
}

func (r *Repo) SetStatus(ctx context.Context, id uuid.UUID, status enums.InvoiceStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("id = ?", id).
		UpdateColumn("status", status)
	if result.Error != nil {
		return errors.Wrap(errors.CodeDependency, result.Error, "updating invoice status")
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.CodeNotFound, "invoice not found")
	}
	return nil
}

func (r *Repo) SetAccountingRef(ctx context.Context, id uuid.UUID, ref string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("id = ?", id).
		UpdateColumn("accounting_ref", ref)
	if result.Error != nil {
		return errors.Wrap(errors.CodeDependency, result.Error, "saving accounting reference")
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.CodeNotFound, "invoice not found")
	}
	return nil
}
