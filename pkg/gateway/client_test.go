package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/rxsupplyhq/rxsupply-backend/pkg/config"
	pkgerrors "github.com/rxsupplyhq/rxsupply-backend/pkg/errors"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/logger"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logg := logger.New(logger.Options{ServiceName: "gateway-test", Output: io.Discard})
	client, err := NewClient(context.Background(), config.GatewayConfig{BaseURL: server.URL}, logg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestPaySuccess(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pay" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var params PayParams
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if params.InvoiceNumber != "INV-2025000123" {
			t.Errorf("unexpected invoice number %q", params.InvoiceNumber)
		}
		_ = json.NewEncoder(w).Encode(PayResult{TransactionID: "txn_1", Message: "approved"})
	}))

	result, err := client.Pay(context.Background(), PayParams{
		PaymentType:   "credit_card",
		Amount:        decimal.RequireFromString("37.00"),
		InvoiceNumber: "INV-2025000123",
	})
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	if result.TransactionID != "txn_1" {
		t.Fatalf("unexpected transaction id %q", result.TransactionID)
	}
}

func TestPayGatewayRejectionSurfacesMessage(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"card declined"}`))
	}))

	_, err := client.Pay(context.Background(), PayParams{InvoiceNumber: "INV-1"})
	if err == nil {
		t.Fatal("expected payment error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodePayment {
		t.Fatalf("unexpected error: %v", err)
	}
	if typed.Message() != "card declined" {
		t.Fatalf("expected verbatim gateway message, got %q", typed.Message())
	}
}

func TestNotifyNonSuccessIsDependencyError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	err := client.NotifyOrderPlaced(context.Background(), map[string]any{"order_number": "9RX000001"})
	if err == nil {
		t.Fatal("expected error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSubmitAccountingInvoice(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/invoice-quickbook" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"data":{"Invoice":{"Id":"qb-77"}}}`))
	}))

	ref, err := client.SubmitAccountingInvoice(context.Background(), map[string]any{})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if ref != "qb-77" {
		t.Fatalf("unexpected accounting ref %q", ref)
	}
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	t.Parallel()

	logg := logger.New(logger.Options{ServiceName: "gateway-test", Output: io.Discard})
	if _, err := NewClient(context.Background(), config.GatewayConfig{}, logg); err == nil {
		t.Fatal("expected error for missing base url")
	}
}
