package sequence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/rxsupplyhq/rxsupply-backend/pkg/db/models"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/enums"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/errors"
)

// Service hands out order and invoice numbers from the shared counter row.
// Increments are a single conditional UPDATE so concurrent callers can never
// observe the same value.
type Service struct {
	now func() time.Time
}

// NewService builds a Service using wall-clock time for invoice years.
func NewService() *Service {
	return &Service{now: time.Now}
}

// NewServiceAt builds a Service with an injected clock.
func NewServiceAt(now func() time.Time) *Service {
	return &Service{now: now}
}

// Next reserves the next number of the given kind and returns it formatted.
// Pass the enclosing transaction so the reservation commits or rolls back
// with the rest of the work.
func (s *Service) Next(ctx context.Context, tx *gorm.DB, kind enums.SequenceKind) (string, error) {
	counter, err := latestCounter(ctx, tx)
	if err != nil {
		return "", err
	}

	var query string
	switch kind {
	case enums.SequenceKindOrder:
		query = "UPDATE centerize_data SET order_no = COALESCE(order_no, 0) + 1, updated_at = CURRENT_TIMESTAMP WHERE id = ? RETURNING order_no"
	case enums.SequenceKindInvoice:
		query = "UPDATE centerize_data SET invoice_no = COALESCE(invoice_no, 0) + 1, updated_at = CURRENT_TIMESTAMP WHERE id = ? RETURNING invoice_no"
	default:
		return "", errors.New(errors.CodeInternal, fmt.Sprintf("unknown sequence kind %q", kind))
	}

	var next int64
	result := tx.WithContext(ctx).Raw(query, counter.ID).Scan(&next)
	if result.Error != nil {
		return "", errors.Wrap(errors.CodeDependency, result.Error, "incrementing sequence counter")
	}
	if result.RowsAffected == 0 {
		return "", errors.New(errors.CodeDependency, "sequence counter row disappeared")
	}

	switch kind {
	case enums.SequenceKindOrder:
		return fmt.Sprintf("%s%06d", counter.OrderStart, next), nil
	default:
		return fmt.Sprintf("%s%d%06d", counter.InvoiceStart, s.now().Year(), next), nil
	}
}

func latestCounter(ctx context.Context, tx *gorm.DB) (*models.Counter, error) {
	var counter models.Counter
	err := tx.WithContext(ctx).Order("id DESC").First(&counter).Error
	if err == gorm.ErrRecordNotFound {
		return nil, errors.New(errors.CodeDependency, "sequence counter row is missing")
	}
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "loading sequence counter")
	}
	return &counter, nil
}
