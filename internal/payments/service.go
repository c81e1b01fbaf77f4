package payments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rxsupplyhq/rxsupply-backend/internal/invoices"
	"github.com/rxsupplyhq/rxsupply-backend/internal/orders"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/auth"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/db/models"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/enums"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/errors"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/gateway"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/logger"
)

// Charger is the slice of the gateway client the payment service needs.
type Charger interface {
	Pay(ctx context.Context, params gateway.PayParams) (*gateway.PayResult, error)
	NotifyPaymentSucceeded(ctx context.Context, note gateway.PaySucceededNote) error
}

// Service settles invoices either manually or through the card gateway.
type Service struct {
	tx       orders.TxRunner
	orders   *orders.Repo
	invoices *invoices.Repo
	charger  Charger
	logger   *logger.Logger
}

func NewService(tx orders.TxRunner, ordersRepo *orders.Repo, invoicesRepo *invoices.Repo, charger Charger, logg *logger.Logger) *Service {
	return &Service{tx: tx, orders: ordersRepo, invoices: invoicesRepo, charger: charger, logger: logg}
}

// CardInput carries the card details for a gateway charge.
type CardInput struct {
	CardNumber string
	CardExpiry string
	CardCVC    string
	NameOnCard string
}

// RecordManual marks an order settled outside the system: check, wire, or an
// externally processed card. No gateway call is made.
func (s *Service) RecordManual(ctx context.Context, actor orders.Actor, orderID uuid.UUID, notes *string) (*models.Order, error) {
	if !auth.Can(actor.Role, auth.CapRecordManualPayment) {
		return nil, errors.New(errors.CodeForbidden, "not allowed to record manual payments")
	}

	order, invoice, err := s.loadUnpaid(ctx, orderID)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.orders.WithTx(tx).SetPaymentStatus(ctx, order.ID, enums.PaymentStatusPaid); err != nil {
			return err
		}
		return s.invoices.WithTx(tx).MarkPaid(ctx, invoice.ID, enums.PaymentMethodManual, nil, notes)
	})
	if err != nil {
		return nil, err
	}

	return s.orders.FindByID(ctx, orderID)
}

// ChargeCard runs the card through the payment gateway. A declined charge
// surfaces the gateway's message verbatim and leaves the order unpaid.
func (s *Service) ChargeCard(ctx context.Context, actor orders.Actor, orderID uuid.UUID, input CardInput) (*models.Order, error) {
	order, invoice, err := s.loadUnpaid(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.ProfileID != actor.ProfileID && !auth.Can(actor.Role, auth.CapManageOrders) {
		return nil, errors.New(errors.CodeForbidden, "not allowed to pay for this order")
	}

	result, err := s.charger.Pay(ctx, gateway.PayParams{
		PaymentType:   "card",
		Amount:        invoice.TotalAmount,
		CardNumber:    input.CardNumber,
		CardExpiry:    input.CardExpiry,
		CardCVC:       input.CardCVC,
		NameOnCard:    input.NameOnCard,
		InvoiceNumber: invoice.InvoiceNumber,
	})
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.orders.WithTx(tx).SetPaymentStatus(ctx, order.ID, enums.PaymentStatusPaid); err != nil {
			return err
		}
		return s.invoices.WithTx(tx).MarkPaid(ctx, invoice.ID, enums.PaymentMethodCreditCard, &result.TransactionID, nil)
	})
	if err != nil {
		return nil, err
	}

	s.notifySucceeded(ctx, order, result.TransactionID)
	return s.orders.FindByID(ctx, orderID)
}

func (s *Service) loadUnpaid(ctx context.Context, orderID uuid.UUID) (*models.Order, *models.Invoice, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if order.PaymentStatus == enums.PaymentStatusPaid {
		return nil, nil, errors.New(errors.CodeConflict, "order is already paid")
	}
	if order.Invoice == nil {
		return nil, nil, errors.New(errors.CodeConflict, "order has no invoice yet")
	}
	return order, order.Invoice, nil
}

func (s *Service) notifySucceeded(ctx context.Context, order *models.Order, transactionID string) {
	note := gateway.PaySucceededNote{
		OrderNumber:   order.OrderNumber,
		TransactionID: transactionID,
	}
	if order.CustomerInfo != nil {
		note.Name = order.CustomerInfo.Name
		note.Email = order.CustomerInfo.Email
	}
	if err := s.charger.NotifyPaymentSucceeded(ctx, note); err != nil && s.logger != nil {
		ctx = s.logger.WithOrderNumber(ctx, order.OrderNumber)
		s.logger.Error(ctx, "payment success notification failed", err)
	}
}
