package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rxsupplyhq/rxsupply-backend/api/responses"
	"github.com/rxsupplyhq/rxsupply-backend/api/validators"
	ordersvc "github.com/rxsupplyhq/rxsupply-backend/internal/orders"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/db/models"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/enums"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/errors"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/logger"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/pagination"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/types"
)

type orderItemRequest struct {
	ProductID    string `json:"product_id" validate:"required,uuid"`
	Name         string `json:"name"`
	Price        string `json:"price" validate:"required"`
	Quantity     int    `json:"quantity" validate:"required,min=1"`
	SizeValue    string `json:"size_value"`
	SizeUnit     string `json:"size_unit"`
	ShippingCost string `json:"shipping_cost"`
	Notes        string `json:"notes"`
}

type createOrderRequest struct {
	ForProfileID    string              `json:"for_profile_id" validate:"omitempty,uuid"`
	Items           []orderItemRequest  `json:"items" validate:"required,min=1,dive"`
	CustomerInfo    *types.CustomerInfo `json:"customer_info"`
	ShippingAddress *types.Address      `json:"shipping_address"`
	PurchaseOrder   bool                `json:"purchase_order"`
	DirectPay       bool                `json:"direct_pay"`
	Notes           string              `json:"notes"`
}

type updateOrderStatusRequest struct {
	Status            string  `json:"status" validate:"required"`
	TrackingNumber    *string `json:"tracking_number"`
	EstimatedDelivery *string `json:"estimated_delivery"`
}

type orderPage struct {
	Orders     []models.Order `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// OrdersCreate places an order for the caller, or on behalf of another
// profile when the role allows it.
func OrdersCreate(svc *ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := createInputFromRequest(body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Create(r.Context(), actor, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// OrdersList returns the caller's orders, or every order for admin roles.
func OrdersList(svc *ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := ordersvc.ListInput{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseOrderStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeValidation, "invalid status filter"))
				return
			}
			input.Status = &status
		}

		items, next, err := svc.List(r.Context(), actor, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page := orderPage{Orders: items}
		if next != nil {
			page.NextCursor = pagination.EncodeCursor(*next)
		}
		responses.WriteSuccess(w, page)
	}
}

// OrdersGet returns one order, enforcing ownership for non-admin callers.
func OrdersGet(svc *ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathUUID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// OrdersUpdateStatus moves an order through its lifecycle.
func OrdersUpdateStatus(svc *ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathUUID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseOrderStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeValidation, "invalid order status"))
			return
		}

		input := ordersvc.UpdateStatusInput{Status: status, TrackingNumber: body.TrackingNumber}
		if body.EstimatedDelivery != nil {
			parsed, err := time.Parse("2006-01-02", *body.EstimatedDelivery)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeValidation, "estimated_delivery must be YYYY-MM-DD"))
				return
			}
			input.EstimatedDelivery = &parsed
		}

		order, err := svc.UpdateStatus(r.Context(), actor, id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// OrdersAcceptPO runs the deferred invoice and stock steps of a purchase
// order.
func OrdersAcceptPO(svc *ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathUUID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.AcceptPurchaseOrder(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// OrdersRejectPO deletes a pending purchase order.
func OrdersRejectPO(svc *ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathUUID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RejectPurchaseOrder(r.Context(), actor, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "rejected"})
	}
}

// OrdersDelete removes an order entirely. Admin only.
func OrdersDelete(svc *ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathUUID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), actor, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func createInputFromRequest(body createOrderRequest) (ordersvc.CreateInput, error) {
	input := ordersvc.CreateInput{
		CustomerInfo:    body.CustomerInfo,
		ShippingAddress: body.ShippingAddress,
		PurchaseOrder:   body.PurchaseOrder,
		DirectPay:       body.DirectPay,
		Notes:           validators.SanitizeString(body.Notes, 2000),
	}
	if body.ForProfileID != "" {
		id, err := uuid.Parse(body.ForProfileID)
		if err != nil {
			return input, errors.New(errors.CodeValidation, "for_profile_id must be a uuid")
		}
		input.ForProfileID = id
	}

	for _, item := range body.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return input, errors.New(errors.CodeValidation, "item product_id must be a uuid")
		}
		price, err := decimal.NewFromString(item.Price)
		if err != nil || price.IsNegative() {
			return input, errors.New(errors.CodeValidation, "item price must be a non-negative decimal")
		}
		shipping := decimal.Zero
		if item.ShippingCost != "" {
			shipping, err = decimal.NewFromString(item.ShippingCost)
			if err != nil || shipping.IsNegative() {
				return input, errors.New(errors.CodeValidation, "item shipping cost must be a non-negative decimal")
			}
		}
		input.Items = append(input.Items, ordersvc.ItemInput{
			ProductID:    productID,
			Name:         validators.SanitizeString(item.Name, 200),
			Price:        price,
			Quantity:     item.Quantity,
			SizeValue:    item.SizeValue,
			SizeUnit:     item.SizeUnit,
			ShippingCost: shipping,
			Notes:        validators.SanitizeString(item.Notes, 500),
		})
	}
	return input, nil
}
