package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rxsupplyhq/rxsupply-backend/pkg/config"
	pkgerrors "github.com/rxsupplyhq/rxsupply-backend/pkg/errors"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/logger"
)

const (
	pathPay              = "/pay"
	pathPaySucceeded     = "/pay-successfull"
	pathOrderPlaced      = "/order-place"
	pathOrderStatus      = "/order-status"
	pathPaymentLink      = "/paynow-user"
	pathProfileUpdated   = "/update-profile"
	pathAccountingCreate = "/invoice-quickbook"
)

var (
	errBaseURLRequired = errors.New("gateway base url is required")
	errLoggerRequired  = errors.New("gateway logger is required")
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the external payment/notification API with centralized
// logging and error mapping.
type Client struct {
	baseURL string
	http    httpDoer
	logger  *logger.Logger
}

// NewClient initializes the gateway wrapper and validates the configuration.
func NewClient(ctx context.Context, cfg config.GatewayConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logg,
	}
	logg.Info(ctx, "gateway client initialized")
	return c, nil
}

// PayParams carries the card or account fields forwarded to the gateway.
type PayParams struct {
	PaymentType   string          `json:"paymentType"`
	Amount        decimal.Decimal `json:"amount"`
	CardNumber    string          `json:"cardNumber,omitempty"`
	CardExpiry    string          `json:"cardExpiry,omitempty"`
	CardCVC       string          `json:"cardCvc,omitempty"`
	AccountNumber string          `json:"accountNumber,omitempty"`
	RoutingNumber string          `json:"routingNumber,omitempty"`
	NameOnCard    string          `json:"nameOnCard,omitempty"`
	InvoiceNumber string          `json:"invoiceNumber"`
}

// PayResult is the gateway's success payload.
type PayResult struct {
	TransactionID string `json:"transactionId"`
	Message       string `json:"message"`
}

// Pay charges the provided payment details against an invoice. A non-2xx
// response is surfaced as a payment error carrying the gateway's message
// verbatim.
func (c *Client) Pay(ctx context.Context, params PayParams) (*PayResult, error) {
	c.log(ctx, "request", "pay", map[string]any{
		"invoice_number": params.InvoiceNumber,
		"payment_type":   params.PaymentType,
		"amount":         params.Amount.String(),
	})

	var result PayResult
	status, body, err := c.post(ctx, pathPay, params)
	if err != nil {
		c.log(ctx, "error", "pay", map[string]any{"error": err.Error()})
		return nil, pkgerrors.Wrap(pkgerrors.CodePayment, err, "payment request failed")
	}
	if status != http.StatusOK {
		msg := gatewayMessage(body)
		c.log(ctx, "error", "pay", map[string]any{"status": status, "message": msg})
		return nil, pkgerrors.New(pkgerrors.CodePayment, msg).
			WithDetails(map[string]any{"status": status})
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePayment, err, "decoding payment response")
	}

	c.log(ctx, "response", "pay", map[string]any{
		"invoice_number": params.InvoiceNumber,
		"transaction_id": result.TransactionID,
	})
	return &result, nil
}

// PaySucceededNote is the fire-and-forget payload sent after a settled payment.
type PaySucceededNote struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	OrderNumber   string `json:"orderNumber"`
	TransactionID string `json:"transactionId"`
}

// NotifyPaymentSucceeded fires the payment-succeeded email trigger.
func (c *Client) NotifyPaymentSucceeded(ctx context.Context, note PaySucceededNote) error {
	return c.notify(ctx, "pay_succeeded", pathPaySucceeded, note)
}

// NotifyOrderPlaced fires the order-confirmation email trigger with the full
// order payload.
func (c *Client) NotifyOrderPlaced(ctx context.Context, order any) error {
	return c.notify(ctx, "order_placed", pathOrderPlaced, order)
}

// NotifyOrderStatus fires the status-change email trigger with the updated
// order payload.
func (c *Client) NotifyOrderStatus(ctx context.Context, order any) error {
	return c.notify(ctx, "order_status", pathOrderStatus, order)
}

// PaymentLinkRequest asks the backend to email a payment link for an order.
type PaymentLinkRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	OrderNumber   string `json:"orderNumber"`
	InvoiceNumber string `json:"invoiceNumber"`
	Amount        string `json:"amount"`
}

// SendPaymentLink fires the payment-link email trigger.
func (c *Client) SendPaymentLink(ctx context.Context, req PaymentLinkRequest) error {
	return c.notify(ctx, "payment_link", pathPaymentLink, req)
}

// ProfileUpdate notifies the backend of a profile name/email change.
type ProfileUpdate struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NotifyProfileUpdated fires the profile-change notification.
func (c *Client) NotifyProfileUpdated(ctx context.Context, update ProfileUpdate) error {
	return c.notify(ctx, "profile_updated", pathProfileUpdated, update)
}

type accountingResponse struct {
	Data struct {
		Invoice struct {
			ID string `json:"Id"`
		} `json:"Invoice"`
	} `json:"data"`
}

// SubmitAccountingInvoice forwards an order to the external accounting system
// and returns the created invoice id.
func (c *Client) SubmitAccountingInvoice(ctx context.Context, order any) (string, error) {
	c.log(ctx, "request", "accounting_invoice", nil)

	status, body, err := c.post(ctx, pathAccountingCreate, order)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "accounting request failed")
	}
	if status != http.StatusOK {
		return "", pkgerrors.New(pkgerrors.CodeDependency, gatewayMessage(body)).
			WithDetails(map[string]any{"status": status})
	}

	var resp accountingResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding accounting response")
	}
	if resp.Data.Invoice.ID == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "accounting response missing invoice id")
	}

	c.log(ctx, "response", "accounting_invoice", map[string]any{"accounting_ref": resp.Data.Invoice.ID})
	return resp.Data.Invoice.ID, nil
}

func (c *Client) notify(ctx context.Context, op, path string, payload any) error {
	c.log(ctx, "request", op, nil)

	status, body, err := c.post(ctx, path, payload)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op+" notification failed")
	}
	if status < 200 || status > 299 {
		return pkgerrors.New(pkgerrors.CodeDependency, gatewayMessage(body)).
			WithDetails(map[string]any{"status": status, "op": op})
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload any) (int, []byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return 0, nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("reading response: %w", err)
	}
	return resp.StatusCode, body, nil
}

// gatewayMessage pulls the human-readable message out of an error body,
// falling back to the raw body.
func gatewayMessage(body []byte) string {
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Message != "" {
			return envelope.Message
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return "gateway request rejected"
	}
	return trimmed
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c.logger == nil {
		return
	}
	all := map[string]any{"gateway_op": op, "phase": phase}
	for k, v := range fields {
		all[k] = v
	}
	c.logger.Info(c.logger.WithFields(ctx, all), "gateway."+op)
}
