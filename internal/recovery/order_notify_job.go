package recovery

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/rxsupplyhq/rxsupply-backend/pkg/db/models"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/logger"
)

const orderNotifyJobName = "order_notify_redelivery"

type unnotifiedOrderReader interface {
	ListUnnotified(ctx context.Context, limit int) ([]models.Order, error)
	SetNotifiedAt(ctx context.Context, id uuid.UUID, at time.Time) error
}

type orderNotifier interface {
	NotifyOrderPlaced(ctx context.Context, order any) error
}

// OrderNotifyJobParams configure the notification redelivery job.
type OrderNotifyJobParams struct {
	Logger    *logger.Logger
	Orders    unnotifiedOrderReader
	Notifier  orderNotifier
	BatchSize int
	Now       func() time.Time
}

// orderNotifyJob re-sends order placement notifications that failed after
// commit. Each cycle drains at most one batch; stragglers wait for the next.
type orderNotifyJob struct {
	logg      *logger.Logger
	orders    unnotifiedOrderReader
	notifier  orderNotifier
	batchSize int
	now       func() time.Time
}

// NewOrderNotifyJob builds the notification redelivery job.
func NewOrderNotifyJob(params OrderNotifyJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders reader required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = 50
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &orderNotifyJob{
		logg:      params.Logger,
		orders:    params.Orders,
		notifier:  params.Notifier,
		batchSize: batchSize,
		now:       now,
	}, nil
}

func (j *orderNotifyJob) Name() string {
	return orderNotifyJobName
}

func (j *orderNotifyJob) Run(ctx context.Context) error {
	pending, err := j.orders.ListUnnotified(ctx, j.batchSize)
	if err != nil {
		return fmt.Errorf("listing unnotified orders: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	var errs error
	delivered := 0
	for _, order := range pending {
		orderCtx := j.logg.WithOrderNumber(ctx, order.OrderNumber)
		if err := j.notifier.NotifyOrderPlaced(orderCtx, notificationPayload(&order)); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("order %s: %w", order.OrderNumber, err))
			continue
		}
		if err := j.orders.SetNotifiedAt(orderCtx, order.ID, j.now()); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("order %s: marking notified: %w", order.OrderNumber, err))
			continue
		}
		delivered++
	}

	ctx = j.logg.WithField(ctx, "delivered", delivered)
	ctx = j.logg.WithField(ctx, "pending", len(pending))
	j.logg.Info(ctx, "notification redelivery cycle done")
	return errs
}

func notificationPayload(order *models.Order) map[string]any {
	payload := map[string]any{
		"orderNumber":   order.OrderNumber,
		"status":        order.Status,
		"paymentStatus": order.PaymentStatus,
		"totalAmount":   order.TotalAmount.StringFixed(2),
		"items":         order.Items,
	}
	if order.CustomerInfo != nil {
		payload["customer"] = order.CustomerInfo
	}
	if order.EstimatedDelivery != nil {
		payload["estimatedDelivery"] = order.EstimatedDelivery.Format("2006-01-02")
	}
	return payload
}
