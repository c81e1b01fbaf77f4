package cart

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rxsupplyhq/rxsupply-backend/pkg/db/models"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/enums"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/errors"
)

// ProductFinder is the slice of the product repo the cart needs.
type ProductFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service owns cart reads and mutations.
type Service struct {
	repo     *Repo
	products ProductFinder
}

func NewService(repo *Repo, products ProductFinder) *Service {
	return &Service{repo: repo, products: products}
}

// AddItemInput captures one line to add. Price is the extended line total.
type AddItemInput struct {
	ProductID uuid.UUID
	Quantity  int
	SizeValue string
	SizeUnit  string
}

// GetOrCreate returns the profile's active cart, creating one on first use.
func (s *Service) GetOrCreate(ctx context.Context, profileID uuid.UUID) (*models.CartRecord, error) {
	record, err := s.repo.FindActive(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if record != nil {
		return record, nil
	}

	record = &models.CartRecord{
		ID:        uuid.New(),
		ProfileID: profileID,
		Status:    enums.CartStatusActive,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// AddItem validates the product and appends a line priced at the product's
// current extended total for the requested quantity.
func (s *Service) AddItem(ctx context.Context, profileID uuid.UUID, input AddItemInput) (*models.CartItem, error) {
	if input.Quantity < 1 {
		return nil, errors.New(errors.CodeValidation, "quantity must be at least 1")
	}

	product, err := s.products.FindByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if product.Stock < input.Quantity {
		return nil, errors.New(errors.CodeStock, "insufficient stock").
			WithDetails(map[string]any{"product_id": product.ID.String(), "available": product.Stock})
	}

	record, err := s.GetOrCreate(ctx, profileID)
	if err != nil {
		return nil, err
	}

	item := &models.CartItem{
		ID:           uuid.New(),
		CartID:       record.ID,
		ProductID:    product.ID,
		Name:         product.Name,
		Price:        product.Price.Mul(decimal.NewFromInt(int64(input.Quantity))),
		Quantity:     input.Quantity,
		SizeValue:    input.SizeValue,
		SizeUnit:     input.SizeUnit,
		ShippingCost: product.ShippingCost,
	}
	if err := s.repo.AddItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) RemoveItem(ctx context.Context, profileID, itemID uuid.UUID) error {
	record, err := s.repo.FindActive(ctx, profileID)
	if err != nil {
		return err
	}
	if record == nil {
		return errors.New(errors.CodeNotFound, "cart is empty")
	}
	return s.repo.RemoveItem(ctx, record.ID, itemID)
}

// Clear empties the profile's active cart. Clearing a missing or already
// empty cart succeeds.
func (s *Service) Clear(ctx context.Context, profileID uuid.UUID) error {
	record, err := s.repo.FindActive(ctx, profileID)
	if err != nil {
		return err
	}
	if record == nil {
		return nil
	}
	return s.repo.ClearItems(ctx, record.ID)
}

// MarkConverted flags the cart as turned into an order and empties it.
func (s *Service) MarkConverted(ctx context.Context, profileID uuid.UUID) error {
	record, err := s.repo.FindActive(ctx, profileID)
	if err != nil {
		return err
	}
	if record == nil {
		return nil
	}
	if err := s.repo.ClearItems(ctx, record.ID); err != nil {
		return err
	}
	return s.repo.SetStatus(ctx, record.ID, enums.CartStatusConverted)
}
