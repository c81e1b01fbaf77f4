package products

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
	"github.com/rxsupplyhq/rxsupply-backend/pkg/errors"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/pagination"
)

func setupProductsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  price NUMERIC NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0,
  size_value TEXT,
  size_unit TEXT,
  shipping_cost NUMERIC NOT NULL DEFAULT 0,
  active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec("DROP TABLE IF EXISTS products").Error)
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func newProduct(t *testing.T, db *gorm.DB, name string, stock int, created time.Time) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:        uuid.New(),
		Name:      name,
		Price:     decimal.RequireFromString("19.99"),
		Stock:     stock,
		Active:    true,
		CreatedAt: created,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestDecrementStockHappyPath(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepo(db)
	product := newProduct(t, db, "Amoxicillin 500mg", 10, time.Now())

	err := repo.DecrementStock(context.Background(), db, product.ID, 4)
	require.NoError(t, err)

	reloaded, err := repo.FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, reloaded.Stock)
}

func TestDecrementStockInsufficient(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepo(db)
	product := newProduct(t, db, "Ibuprofen 200mg", 3, time.Now())

	err := repo.DecrementStock(context.Background(), db, product.ID, 4)
	require.Error(t, err)

	appErr := errors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.CodeStock, appErr.Code())

	// Stock must be untouched after a refused decrement.
	reloaded, err := repo.FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.Stock)
}

func TestDecrementStockExactlyToZero(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepo(db)
	product := newProduct(t, db, "Saline 1L", 5, time.Now())

	require.NoError(t, repo.DecrementStock(context.Background(), db, product.ID, 5))

	reloaded, err := repo.FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.Stock)
}

func TestDecrementStockUnknownProduct(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepo(db)

	err := repo.DecrementStock(context.Background(), db, uuid.New(), 1)
	require.Error(t, err)

	appErr := errors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.CodeStock, appErr.Code())
}

func TestRestockBy(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepo(db)
	product := newProduct(t, db, "Gauze Pads", 2, time.Now())

	require.NoError(t, repo.RestockBy(context.Background(), db, product.ID, 7))

	reloaded, err := repo.FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, reloaded.Stock)
}

func TestFindByIDNotFound(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepo(db)

	_, err := repo.FindByID(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.As(err).Code())
}

func TestListPagination(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepo(db)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		newProduct(t, db, "Item", 1, base.Add(time.Duration(i)*time.Minute))
	}

	first, next, err := repo.List(context.Background(), pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.NotNil(t, next)

	rest, next2, err := repo.List(context.Background(), pagination.Params{
		Limit:  2,
		Cursor: pagination.EncodeCursor(*next),
	})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Nil(t, next2)
}
