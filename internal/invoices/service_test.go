package invoices

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rxsupplyhq/rxsupply-backend/pkg/db/models"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/enums"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/errors"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/gateway"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/types"
)

func setupInvoicesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS invoices (
  id TEXT PRIMARY KEY,
  invoice_number TEXT NOT NULL UNIQUE,
  order_id TEXT NOT NULL UNIQUE,
  profile_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  amount NUMERIC NOT NULL,
  tax_amount NUMERIC NOT NULL DEFAULT 0,
  total_amount NUMERIC NOT NULL,
  payment_method TEXT,
  payment_transaction TEXT,
  notes TEXT,
  due_date DATETIME,
  items TEXT,
  customer_info TEXT,
  shipping_info TEXT,
  accounting_ref TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec("DROP TABLE IF EXISTS invoices").Error)
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

type stubGateway struct {
	links     []gateway.PaymentLinkRequest
	linkErr   error
	submitted int
	ref       string
	submitErr error
}

func (s *stubGateway) SendPaymentLink(_ context.Context, req gateway.PaymentLinkRequest) error {
	if s.linkErr != nil {
		return s.linkErr
	}
	s.links = append(s.links, req)
	return nil
}

func (s *stubGateway) SubmitAccountingInvoice(_ context.Context, _ any) (string, error) {
	if s.submitErr != nil {
		return "", s.submitErr
	}
	s.submitted++
	return s.ref, nil
}

type stubOrders struct {
	order *models.Order
}

func (s *stubOrders) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	if s.order != nil && s.order.ID == id {
		return s.order, nil
	}
	return nil, errors.New(errors.CodeNotFound, "order not found")
}

func seedInvoice(t *testing.T, db *gorm.DB, orderID uuid.UUID, status enums.InvoiceStatus) *models.Invoice {
	t.Helper()

	due := time.Now().Add(30 * 24 * time.Hour)
	invoice := &models.Invoice{
		ID:            uuid.New(),
		InvoiceNumber: "INV-2025000042",
		OrderID:       orderID,
		ProfileID:     uuid.New(),
		Status:        status,
		Amount:        decimal.RequireFromString("100.00"),
		TaxAmount:     decimal.RequireFromString("8.00"),
		TotalAmount:   decimal.RequireFromString("118.00"),
		DueDate:       &due,
		CustomerInfo:  &types.CustomerInfo{Name: "City Pharmacy", Email: "billing@example.com"},
	}
	require.NoError(t, db.Create(invoice).Error)
	return invoice
}

func TestSendPaymentLink(t *testing.T) {
	db := setupInvoicesTestDB(t)
	order := &models.Order{ID: uuid.New(), OrderNumber: "9RX000042"}
	gw := &stubGateway{}
	svc := NewService(NewRepo(db), &stubOrders{order: order}, gw, nil)
	invoice := seedInvoice(t, db, order.ID, enums.InvoiceStatusPending)

	require.NoError(t, svc.SendPaymentLink(context.Background(), invoice.ID))

	require.Len(t, gw.links, 1)
	assert.Equal(t, "9RX000042", gw.links[0].OrderNumber)
	assert.Equal(t, "INV-2025000042", gw.links[0].InvoiceNumber)
	assert.Equal(t, "118.00", gw.links[0].Amount)
	assert.Equal(t, "billing@example.com", gw.links[0].Email)

	reloaded, err := NewRepo(db).FindByID(context.Background(), invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.InvoiceStatusNeedsPaymentLink, reloaded.Status)
}

func TestSendPaymentLinkAlreadyPaid(t *testing.T) {
	db := setupInvoicesTestDB(t)
	order := &models.Order{ID: uuid.New(), OrderNumber: "9RX000042"}
	svc := NewService(NewRepo(db), &stubOrders{order: order}, &stubGateway{}, nil)
	invoice := seedInvoice(t, db, order.ID, enums.InvoiceStatusPaid)

	err := svc.SendPaymentLink(context.Background(), invoice.ID)
	require.Error(t, err)
	assert.Equal(t, errors.CodeConflict, errors.As(err).Code())
}

func TestSendPaymentLinkGatewayFailureKeepsStatus(t *testing.T) {
	db := setupInvoicesTestDB(t)
	order := &models.Order{ID: uuid.New(), OrderNumber: "9RX000042"}
	gw := &stubGateway{linkErr: errors.New(errors.CodeDependency, "backend down")}
	svc := NewService(NewRepo(db), &stubOrders{order: order}, gw, nil)
	invoice := seedInvoice(t, db, order.ID, enums.InvoiceStatusPending)

	err := svc.SendPaymentLink(context.Background(), invoice.ID)
	require.Error(t, err)

	reloaded, err := NewRepo(db).FindByID(context.Background(), invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.InvoiceStatusPending, reloaded.Status)
}

func TestSubmitToAccountingStoresRef(t *testing.T) {
	db := setupInvoicesTestDB(t)
	order := &models.Order{ID: uuid.New(), OrderNumber: "9RX000042"}
	gw := &stubGateway{ref: "QB-1234"}
	svc := NewService(NewRepo(db), &stubOrders{order: order}, gw, nil)
	invoice := seedInvoice(t, db, order.ID, enums.InvoiceStatusPending)

	ref, err := svc.SubmitToAccounting(context.Background(), invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, "QB-1234", ref)

	// Resubmitting short-circuits on the stored reference.
	ref, err = svc.SubmitToAccounting(context.Background(), invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, "QB-1234", ref)
	assert.Equal(t, 1, gw.submitted)
}

func TestMarkPaidRecordsMethodAndTransaction(t *testing.T) {
	db := setupInvoicesTestDB(t)
	repo := NewRepo(db)
	invoice := seedInvoice(t, db, uuid.New(), enums.InvoiceStatusPending)

	txn := "TXN-789"
	require.NoError(t, repo.MarkPaid(context.Background(), invoice.ID, enums.PaymentMethodCreditCard, &txn, nil))

	reloaded, err := repo.FindByID(context.Background(), invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.InvoiceStatusPaid, reloaded.Status)
	require.NotNil(t, reloaded.PaymentMethod)
	assert.Equal(t, enums.PaymentMethodCreditCard, *reloaded.PaymentMethod)
	require.NotNil(t, reloaded.PaymentTransaction)
	assert.Equal(t, "TXN-789", *reloaded.PaymentTransaction)
}
