package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rxsupplyhq/rxsupply-backend/internal/invoices"
	"github.com/rxsupplyhq/rxsupply-backend/internal/pricing"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/auth"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/config"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/db/models"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/enums"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/errors"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/logger"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/pagination"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/types"
)

// Actor identifies the authenticated caller.
type Actor struct {
	ProfileID uuid.UUID
	Role      enums.Role
}

// TxRunner executes a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Sequencer reserves formatted order and invoice numbers.
type Sequencer interface {
	Next(ctx context.Context, tx *gorm.DB, kind enums.SequenceKind) (string, error)
}

// ProfileLookup resolves the profile an order is placed for.
type ProfileLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

// StockKeeper adjusts product stock inside the order transaction.
type StockKeeper interface {
	DecrementStock(ctx context.Context, tx *gorm.DB, productID uuid.UUID, quantity int) error
	RestockBy(ctx context.Context, tx *gorm.DB, productID uuid.UUID, quantity int) error
}

// Notifier delivers post-commit order notifications upstream.
type Notifier interface {
	NotifyOrderPlaced(ctx context.Context, order any) error
	NotifyOrderStatus(ctx context.Context, order any) error
}

// CartCloser retires the buyer's cart after a successful order.
type CartCloser interface {
	MarkConverted(ctx context.Context, profileID uuid.UUID) error
}

// Service runs the order placement flow and later lifecycle operations.
type Service struct {
	tx       TxRunner
	repo     *Repo
	invoices *invoices.Repo
	stock    StockKeeper
	profiles ProfileLookup
	sequence Sequencer
	notifier Notifier
	carts    CartCloser
	cfg      config.OrdersConfig
	logger   *logger.Logger
	now      func() time.Time
}

type ServiceParams struct {
	Tx       TxRunner
	Repo     *Repo
	Invoices *invoices.Repo
	Stock    StockKeeper
	Profiles ProfileLookup
	Sequence Sequencer
	Notifier Notifier
	Carts    CartCloser
	Config   config.OrdersConfig
	Logger   *logger.Logger
	Now      func() time.Time
}

func NewService(params ServiceParams) *Service {
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		tx:       params.Tx,
		repo:     params.Repo,
		invoices: params.Invoices,
		stock:    params.Stock,
		profiles: params.Profiles,
		sequence: params.Sequence,
		notifier: params.Notifier,
		carts:    params.Carts,
		cfg:      params.Config,
		logger:   params.Logger,
		now:      now,
	}
}

// ItemInput is one requested line. Price is the extended line total.
type ItemInput struct {
	ProductID    uuid.UUID
	Name         string
	Price        decimal.Decimal
	Quantity     int
	SizeValue    string
	SizeUnit     string
	ShippingCost decimal.Decimal
	Notes        string
}

// CreateInput is the full order placement request.
type CreateInput struct {
	// ForProfileID places the order on behalf of another profile; requires
	// the on-behalf capability. Zero value means the actor orders for
	// themselves.
	ForProfileID    uuid.UUID
	Items           []ItemInput
	CustomerInfo    *types.CustomerInfo
	ShippingAddress *types.Address
	PurchaseOrder   bool
	DirectPay       bool
	Notes           string
}

// Create places an order. The order row, invoice, relational items, and
// stock decrements commit or roll back as one unit; a failed stock check
// leaves no trace of the attempt. Upstream notification and cart clearing
// happen after commit and never fail the order.
func (s *Service) Create(ctx context.Context, actor Actor, input CreateInput) (*models.Order, error) {
	if err := validateItems(input.Items); err != nil {
		return nil, err
	}

	profile, err := s.resolveProfile(ctx, actor, input.ForProfileID)
	if err != nil {
		return nil, err
	}

	lines := make([]pricing.Line, 0, len(input.Items))
	for _, item := range input.Items {
		lines = append(lines, pricing.Line{
			Price:        item.Price,
			Quantity:     item.Quantity,
			ShippingCost: item.ShippingCost,
		})
	}
	flatRate, err := decimal.NewFromString(s.cfg.FlatShippingRate)
	if err != nil {
		flatRate = decimal.Zero
	}
	shipping := pricing.ShippingFor(profile.FreeShipping, flatRate, lines)
	breakdown := pricing.Totals(lines, shipping, profile.TaxPercent)

	now := s.now()
	estimated := now.AddDate(0, 0, s.cfg.EstimatedDeliveryDays)

	order := &models.Order{
		ID:                uuid.New(),
		ProfileID:         profile.ID,
		Status:            enums.OrderStatusNew,
		PaymentStatus:     enums.PaymentStatusUnpaid,
		Items:             snapshotItems(input.Items),
		TotalAmount:       breakdown.GrandTotal,
		TaxAmount:         breakdown.Tax,
		ShippingCost:      breakdown.Shipping,
		CustomerInfo:      input.CustomerInfo,
		ShippingAddress:   input.ShippingAddress,
		EstimatedDelivery: &estimated,
	}
	if input.DirectPay {
		order.Status = enums.OrderStatusPending
	}
	if input.PurchaseOrder {
		pending := false
		order.POAccept = &pending
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		orderNumber, err := s.sequence.Next(ctx, tx, enums.SequenceKindOrder)
		if err != nil {
			return err
		}
		order.OrderNumber = orderNumber

		if err := txRepo.Create(ctx, order); err != nil {
			return err
		}

		if err := txRepo.CreateItems(ctx, flattenItems(order.ID, input.Items)); err != nil {
			return err
		}

		// Purchase orders defer invoicing and stock movement until the
		// receiving party accepts.
		if input.PurchaseOrder {
			return nil
		}

		invoice, err := s.buildInvoice(ctx, tx, order, breakdown, now)
		if err != nil {
			return err
		}
		if err := s.invoices.WithTx(tx).Create(ctx, invoice); err != nil {
			return err
		}

		for _, item := range input.Items {
			if err := s.stock.DecrementStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !input.PurchaseOrder {
		s.notifyPlaced(ctx, order)
	}
	s.closeCart(ctx, actor.ProfileID)

	return s.repo.FindByID(ctx, order.ID)
}

// AcceptPurchaseOrder runs the deferred half of a purchase order: invoice
// issuance, stock decrement, and the placement notification.
func (s *Service) AcceptPurchaseOrder(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error) {
	if !auth.Can(actor.Role, auth.CapAcceptPurchaseOrder) {
		return nil, errors.New(errors.CodeForbidden, "not allowed to accept purchase orders")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.IsPurchaseOrder() {
		return nil, errors.New(errors.CodeConflict, "order is not a purchase order")
	}
	if *order.POAccept {
		return nil, errors.New(errors.CodeConflict, "purchase order already accepted")
	}

	now := s.now()
	breakdown := pricing.Breakdown{
		Subtotal:   order.TotalAmount.Sub(order.ShippingCost).Sub(order.TaxAmount),
		Shipping:   order.ShippingCost,
		Tax:        order.TaxAmount,
		GrandTotal: order.TotalAmount,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		invoice, err := s.buildInvoice(ctx, tx, order, breakdown, now)
		if err != nil {
			return err
		}
		if err := s.invoices.WithTx(tx).Create(ctx, invoice); err != nil {
			return err
		}

		for _, item := range order.OrderItems {
			if err := s.stock.DecrementStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		return txRepo.SetPOAccept(ctx, order.ID, true)
	})
	if err != nil {
		return nil, err
	}

	s.notifyPlaced(ctx, order)
	return s.repo.FindByID(ctx, orderID)
}

// RejectPurchaseOrder removes a pending purchase order entirely.
func (s *Service) RejectPurchaseOrder(ctx context.Context, actor Actor, orderID uuid.UUID) error {
	if !auth.Can(actor.Role, auth.CapAcceptPurchaseOrder) {
		return errors.New(errors.CodeForbidden, "not allowed to reject purchase orders")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if !order.IsPurchaseOrder() {
		return errors.New(errors.CodeConflict, "order is not a purchase order")
	}
	if *order.POAccept {
		return errors.New(errors.CodeConflict, "purchase order already accepted")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Delete(ctx, order.ID)
	})
}

// UpdateStatusInput carries a status change request.
type UpdateStatusInput struct {
	Status            enums.OrderStatus
	TrackingNumber    *string
	EstimatedDelivery *time.Time
}

// UpdateStatus moves the order through its lifecycle and notifies upstream.
// Cancelling an order that already took stock returns the units.
func (s *Service) UpdateStatus(ctx context.Context, actor Actor, orderID uuid.UUID, input UpdateStatusInput) (*models.Order, error) {
	if !auth.Can(actor.Role, auth.CapManageOrders) {
		return nil, errors.New(errors.CodeForbidden, "not allowed to manage orders")
	}
	if !input.Status.IsValid() {
		return nil, errors.New(errors.CodeValidation, "invalid order status")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := validateTransition(order.Status, input.Status); err != nil {
		return nil, err
	}

	restock := input.Status == enums.OrderStatusCancelled && stockWasTaken(order)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).UpdateStatus(ctx, orderID, statusUpdate{
			Status:            input.Status,
			TrackingNumber:    input.TrackingNumber,
			EstimatedDelivery: input.EstimatedDelivery,
		}); err != nil {
			return err
		}
		if restock {
			for _, item := range order.OrderItems {
				if err := s.stock.RestockBy(ctx, tx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.notifyStatus(ctx, updated)
	return updated, nil
}

// Delete removes an order and its children. Admin only.
func (s *Service) Delete(ctx context.Context, actor Actor, orderID uuid.UUID) error {
	if !auth.Can(actor.Role, auth.CapDeleteOrder) {
		return errors.New(errors.CodeForbidden, "not allowed to delete orders")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}

	restock := stockWasTaken(order) && order.Status != enums.OrderStatusCancelled

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if restock {
			for _, item := range order.OrderItems {
				if err := s.stock.RestockBy(ctx, tx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}
		return s.repo.WithTx(tx).Delete(ctx, order.ID)
	})
}

// Get loads one order, enforcing that non-admin callers only see their own.
func (s *Service) Get(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.ProfileID != actor.ProfileID && !auth.Can(actor.Role, auth.CapViewAllOrders) {
		return nil, errors.New(errors.CodeForbidden, "not allowed to view this order")
	}
	return order, nil
}

// ListInput filters the order listing.
type ListInput struct {
	Status *enums.OrderStatus
	Limit  int
	Cursor string
}

// List returns the actor's orders, or all orders for roles that may see
// everything.
func (s *Service) List(ctx context.Context, actor Actor, input ListInput) ([]models.Order, *pagination.Cursor, error) {
	cursor, err := pagination.ParseCursor(input.Cursor)
	if err != nil {
		return nil, nil, errors.New(errors.CodeValidation, "invalid cursor")
	}

	params := listParams{Status: input.Status, Limit: input.Limit, Cursor: cursor}
	if !auth.Can(actor.Role, auth.CapViewAllOrders) {
		profileID := actor.ProfileID
		params.ProfileID = &profileID
	}
	return s.repo.List(ctx, params)
}

func (s *Service) resolveProfile(ctx context.Context, actor Actor, forProfileID uuid.UUID) (*models.Profile, error) {
	targetID := actor.ProfileID
	if forProfileID != uuid.Nil && forProfileID != actor.ProfileID {
		if !auth.Can(actor.Role, auth.CapOrderOnBehalf) {
			return nil, errors.New(errors.CodeForbidden, "not allowed to order on behalf of another profile")
		}
		targetID = forProfileID
	}

	profile, err := s.profiles.FindByID(ctx, targetID)
	if err != nil {
		appErr := errors.As(err)
		if appErr != nil && appErr.Code() == errors.CodeNotFound {
			return nil, errors.New(errors.CodeUnauthorized, "ordering profile not found")
		}
		return nil, err
	}
	return profile, nil
}

func (s *Service) buildInvoice(ctx context.Context, tx *gorm.DB, order *models.Order, breakdown pricing.Breakdown, now time.Time) (*models.Invoice, error) {
	invoiceNumber, err := s.sequence.Next(ctx, tx, enums.SequenceKindInvoice)
	if err != nil {
		return nil, err
	}

	// Due date counts from the promised delivery, not from placement.
	dueBase := now
	if order.EstimatedDelivery != nil {
		dueBase = *order.EstimatedDelivery
	}
	due := dueBase.AddDate(0, 0, s.cfg.InvoiceDueDays)
	return &models.Invoice{
		ID:            uuid.New(),
		InvoiceNumber: invoiceNumber,
		OrderID:       order.ID,
		ProfileID:     order.ProfileID,
		Status:        enums.InvoiceStatusPending,
		Amount:        breakdown.Subtotal,
		TaxAmount:     breakdown.Tax,
		TotalAmount:   breakdown.GrandTotal,
		DueDate:       &due,
		Items:         order.Items,
		CustomerInfo:  order.CustomerInfo,
		ShippingInfo:  order.ShippingAddress,
	}, nil
}

func (s *Service) notifyPlaced(ctx context.Context, order *models.Order) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyOrderPlaced(ctx, notificationPayload(order)); err != nil {
		if s.logger != nil {
			ctx = s.logger.WithOrderNumber(ctx, order.OrderNumber)
			s.logger.Error(ctx, "order placement notification failed", err)
		}
		return
	}
	if err := s.repo.SetNotifiedAt(ctx, order.ID, s.now()); err != nil && s.logger != nil {
		s.logger.Error(ctx, "recording notification delivery failed", err)
	}
}

func (s *Service) notifyStatus(ctx context.Context, order *models.Order) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyOrderStatus(ctx, notificationPayload(order)); err != nil && s.logger != nil {
		ctx = s.logger.WithOrderNumber(ctx, order.OrderNumber)
		s.logger.Error(ctx, "order status notification failed", err)
	}
}

func (s *Service) closeCart(ctx context.Context, profileID uuid.UUID) {
	if s.carts == nil {
		return
	}
	if err := s.carts.MarkConverted(ctx, profileID); err != nil && s.logger != nil {
		s.logger.Error(ctx, "clearing cart after order failed", err)
	}
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
	if order.TrackingNumber != nil {
		payload["trackingNumber"] = *order.TrackingNumber
	}
	if order.EstimatedDelivery != nil {
		payload["estimatedDelivery"] = order.EstimatedDelivery.Format("2006-01-02")
	}
	return payload
}

// stockWasTaken reports whether order placement decremented stock: retail
// orders always do, purchase orders only once accepted.
func stockWasTaken(order *models.Order) bool {
	if !order.IsPurchaseOrder() {
		return true
	}
	return *order.POAccept
}

func validateItems(items []ItemInput) error {
	if len(items) == 0 {
		return errors.New(errors.CodeValidation, "order must contain at least one item")
	}
	for _, item := range items {
		if item.ProductID == uuid.Nil {
			return errors.New(errors.CodeValidation, "item product id is required")
		}
		if item.Quantity < 1 {
			return errors.New(errors.CodeValidation, "item quantity must be at least 1")
		}
		if item.Price.IsNegative() {
			return errors.New(errors.CodeValidation, "item price cannot be negative")
		}
	}
	return nil
}

func snapshotItems(items []ItemInput) types.LineItemList {
	out := make(types.LineItemList, 0, len(items))
	for _, item := range items {
		out = append(out, types.LineItem{
			ProductID:    item.ProductID.String(),
			Name:         item.Name,
			Price:        item.Price,
			Quantity:     item.Quantity,
			SizeValue:    item.SizeValue,
			SizeUnit:     item.SizeUnit,
			ShippingCost: item.ShippingCost,
			Notes:        item.Notes,
		})
	}
	return out
}

func flattenItems(orderID uuid.UUID, items []ItemInput) []models.OrderItem {
	out := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		unit := item.Price
		if item.Quantity > 1 {
			unit = item.Price.Div(decimal.NewFromInt(int64(item.Quantity))).Round(4)
		}
		row := models.OrderItem{
			ID:         uuid.New(),
			OrderID:    orderID,
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			UnitPrice:  unit,
			TotalPrice: item.Price,
		}
		if item.Notes != "" {
			notes := item.Notes
			row.Notes = &notes
		}
		out = append(out, row)
	}
	return out
}
