package invoices

import (
	"context"

	"github.com/google/uuid"

	"github.com/rxsupplyhq/rxsupply-backend/pkg/db/models"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/enums"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/errors"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/gateway"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/logger"
)

// Gateway is the slice of the upstream client the invoice service needs.
type Gateway interface {
	SendPaymentLink(ctx context.Context, req gateway.PaymentLinkRequest) error
	SubmitAccountingInvoice(ctx context.Context, order any) (string, error)
}

// OrderLookup resolves the order an invoice belongs to.
type OrderLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

// Service owns invoice reads and the payment-link / accounting flows.
type Service struct {
	repo    *Repo
	orders  OrderLookup
	gateway Gateway
	logger  *logger.Logger
}

func NewService(repo *Repo, orders OrderLookup, gw Gateway, logg *logger.Logger) *Service {
	return &Service{repo: repo, orders: orders, gateway: gw, logger: logg}
}

func (s *Service) GetByOrder(ctx context.Context, orderID uuid.UUID) (*models.Invoice, error) {
	return s.repo.FindByOrderID(ctx, orderID)
}

// SendPaymentLink asks the upstream backend to email a pay-now link for the
// invoice, then flags the invoice as waiting on that link.
func (s *Service) SendPaymentLink(ctx context.Context, invoiceID uuid.UUID) error {
	invoice, err := s.repo.FindByID(ctx, invoiceID)
	if err != nil {
		return err
	}
	if invoice.Status == enums.InvoiceStatusPaid {
		return errors.New(errors.CodeConflict, "invoice is already paid")
	}

	order, err := s.orders.FindByID(ctx, invoice.OrderID)
	if err != nil {
		return err
	}

	req := gateway.PaymentLinkRequest{
		OrderNumber:   order.OrderNumber,
		InvoiceNumber: invoice.InvoiceNumber,
		Amount:        invoice.TotalAmount.StringFixed(2),
	}
	if invoice.CustomerInfo != nil {
		req.Name = invoice.CustomerInfo.Name
		req.Email = invoice.CustomerInfo.Email
	}
	if err := s.gateway.SendPaymentLink(ctx, req); err != nil {
		return err
	}

	return s.repo.SetStatus(ctx, invoiceID, enums.InvoiceStatusNeedsPaymentLink)
}

// SubmitToAccounting pushes the invoice into the accounting system and
// stores the returned reference. Resubmitting is refused once a reference
// exists.
func (s *Service) SubmitToAccounting(ctx context.Context, invoiceID uuid.UUID) (string, error) {
	invoice, err := s.repo.FindByID(ctx, invoiceID)
	if err != nil {
		return "", err
	}
	if invoice.AccountingRef != nil && *invoice.AccountingRef != "" {
		return *invoice.AccountingRef, nil
	}

	order, err := s.orders.FindByID(ctx, invoice.OrderID)
	if err != nil {
		return "", err
	}

	ref, err := s.gateway.SubmitAccountingInvoice(ctx, accountingPayload(order, invoice))
	if err != nil {
		return "", err
	}

	if err := s.repo.SetAccountingRef(ctx, invoiceID, ref); err != nil {
		return "", err
	}
	return ref, nil
}

func accountingPayload(order *models.Order, invoice *models.Invoice) map[string]any {
	payload := map[string]any{
		"orderNumber":   order.OrderNumber,
		"invoiceNumber": invoice.InvoiceNumber,
		"amount":        invoice.Amount.StringFixed(2),
		"taxAmount":     invoice.TaxAmount.StringFixed(2),
		"totalAmount":   invoice.TotalAmount.StringFixed(2),
		"items":         invoice.Items,
	}
	if invoice.CustomerInfo != nil {
		payload["customer"] = invoice.CustomerInfo
	}
	if invoice.DueDate != nil {
		payload["dueDate"] = invoice.DueDate.Format("2006-01-02")
	}
	return payload
}
