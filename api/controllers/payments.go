package controllers

import (
	"net/http"

	"github.com/rxsupplyhq/rxsupply-backend/api/responses"
	"github.com/rxsupplyhq/rxsupply-backend/api/validators"
	paymentsvc "github.com/rxsupplyhq/rxsupply-backend/internal/payments"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/logger"
)

type cardPaymentRequest struct {
	CardNumber string `json:"card_number" validate:"required"`
	CardExpiry string `json:"card_expiry" validate:"required"`
	CardCVC    string `json:"card_cvc" validate:"required"`
	NameOnCard string `json:"name_on_card"`
}

type manualPaymentRequest struct {
	Notes *string `json:"notes"`
}

// PaymentsChargeCard charges the order's invoice through the card gateway.
func PaymentsChargeCard(svc *paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := pathUUID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body cardPaymentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.ChargeCard(r.Context(), actor, orderID, paymentsvc.CardInput{
			CardNumber: body.CardNumber,
			CardExpiry: body.CardExpiry,
			CardCVC:    body.CardCVC,
			NameOnCard: body.NameOnCard,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// PaymentsRecordManual settles an order outside the gateway.
func PaymentsRecordManual(svc *paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := pathUUID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body manualPaymentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.RecordManual(r.Context(), actor, orderID, body.Notes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
