package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rxsupplyhq/rxsupply-backend/pkg/db/models"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/errors"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/pagination"
)

// Repo provides product persistence.
type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, errors.New(errors.CodeNotFound, "product not found")
	}
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "loading product")
	}
	return &product, nil
}

// List pages through active products newest first using cursor pagination.
func (r *Repo) List(ctx context.Context, params pagination.Params) ([]models.Product, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Product{}).Where("active = ?", true)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, errors.New(errors.CodeValidation, "invalid cursor")
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var out []models.Product
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, nil, errors.Wrap(errors.CodeDependency, err, "listing products")
	}

	if len(out) > normalized {
		next := out[normalized]
		out = out[:normalized]
		return out, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return out, nil, nil
}

func (r *Repo) Create(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return errors.Wrap(errors.CodeDependency, err, "creating product")
	}
	return nil
}

func (r *Repo) Update(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return errors.Wrap(errors.CodeDependency, err, "updating product")
	}
	return nil
}

// DecrementStock atomically reduces stock for one product, guarding against
// oversell. The WHERE clause carries the availability check so two concurrent
// orders can never both take the last unit.
func (r *Repo) DecrementStock(ctx context.Context, tx *gorm.DB, productID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return errors.New(errors.CodeValidation, "quantity must be at least 1")
	}

	result := tx.WithContext(ctx).Exec(
		"UPDATE products SET stock = stock - ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND stock >= ?",
		quantity, productID, quantity,
	)
	if result.Error != nil {
		return errors.Wrap(errors.CodeDependency, result.Error, "decrementing stock")
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.CodeStock, "insufficient stock").
			WithDetails(map[string]any{"product_id": productID.String(), "requested": quantity})
	}
	return nil
}

// RestockBy returns units to stock, used when an unshipped order is
// cancelled or deleted.
func (r *Repo) RestockBy(ctx context.Context, tx *gorm.DB, productID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return errors.New(errors.CodeValidation, "quantity must be at least 1")
	}

	result := tx.WithContext(ctx).Exec(
		"UPDATE products SET stock = stock + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		quantity, productID,
	)
	if result.Error != nil {
		return errors.Wrap(errors.CodeDependency, result.Error, "restocking")
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.CodeNotFound, "product not found")
	}
	return nil
}
