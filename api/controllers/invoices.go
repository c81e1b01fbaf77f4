package controllers

import (
	"net/http"

	"github.com/rxsupplyhq/rxsupply-backend/api/responses"
	invoicesvc "github.com/rxsupplyhq/rxsupply-backend/internal/invoices"
	ordersvc "github.com/rxsupplyhq/rxsupply-backend/internal/orders"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/errors"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/logger"
)

// InvoicesGetByOrder returns the invoice snapshot for an order. The read goes
// through the orders service so ownership is enforced the same way as a
// direct order fetch.
func InvoicesGetByOrder(svc *ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		order, err := svc.Get(r.Context(), actor, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if order.Invoice == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeNotFound, "order has no invoice"))
			return
		}
		responses.WriteSuccess(w, order.Invoice)
	}
}

// InvoicesSendPaymentLink asks the upstream backend to email a pay-now link.
func InvoicesSendPaymentLink(svc *invoicesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		invoiceID, err := pathUUID(r, "invoiceID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SendPaymentLink(r.Context(), invoiceID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "link_sent"})
	}
}

// InvoicesSubmitAccounting pushes the invoice to the accounting system.
func InvoicesSubmitAccounting(svc *invoicesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		invoiceID, err := pathUUID(r, "invoiceID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ref, err := svc.SubmitToAccounting(r.Context(), invoiceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"accounting_ref": ref})
	}
}
