package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rxsupplyhq/rxsupply-backend/api/responses"
	"github.com/rxsupplyhq/rxsupply-backend/api/validators"
	productsvc "github.com/rxsupplyhq/rxsupply-backend/internal/products"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/db/models"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/errors"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/logger"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/pagination"
)

type productRequest struct {
	Name         string `json:"name" validate:"required"`
	Description  string `json:"description"`
	Price        string `json:"price" validate:"required"`
	Stock        int    `json:"stock" validate:"min=0"`
	SizeValue    string `json:"size_value"`
	SizeUnit     string `json:"size_unit"`
	ShippingCost string `json:"shipping_cost"`
}

type productPage struct {
	Products   []models.Product `json:"products"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// ProductsList pages through the active catalog.
func ProductsList(repo *productsvc.Repo, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, next, err := repo.List(r.Context(), pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page := productPage{Products: items}
		if next != nil {
			page.NextCursor = pagination.EncodeCursor(*next)
		}
		responses.WriteSuccess(w, page)
	}
}

// ProductsGet returns one product.
func ProductsGet(repo *productsvc.Repo, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := repo.FindByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// ProductsCreate adds a catalog entry.
func ProductsCreate(repo *productsvc.Repo, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body productRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := productFromRequest(body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := repo.Create(r.Context(), product); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// ProductsUpdate replaces the mutable fields of a product.
func ProductsUpdate(repo *productsvc.Repo, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body productRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		existing, err := repo.FindByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := productFromRequest(body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		updated.ID = existing.ID
		updated.Active = existing.Active
		updated.CreatedAt = existing.CreatedAt

		if err := repo.Update(r.Context(), updated); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func productFromRequest(body productRequest) (*models.Product, error) {
	price, err := decimal.NewFromString(body.Price)
	if err != nil || price.IsNegative() {
		return nil, errors.New(errors.CodeValidation, "price must be a non-negative decimal")
	}
	shipping := decimal.Zero
	if body.ShippingCost != "" {
		shipping, err = decimal.NewFromString(body.ShippingCost)
		if err != nil || shipping.IsNegative() {
			return nil, errors.New(errors.CodeValidation, "shipping cost must be a non-negative decimal")
		}
	}

	product := &models.Product{
		Name:         validators.SanitizeString(body.Name, 200),
		Price:        price,
		Stock:        body.Stock,
		SizeValue:    body.SizeValue,
		SizeUnit:     body.SizeUnit,
		ShippingCost: shipping,
		Active:       true,
	}
	if desc := validators.SanitizeString(body.Description, 2000); desc != "" {
		product.Description = &desc
	}
	return product, nil
}
