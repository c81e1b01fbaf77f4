package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rxsupplyhq/rxsupply-backend/api/controllers"
	"github.com/rxsupplyhq/rxsupply-backend/api/middleware"
	authsvc "github.com/rxsupplyhq/rxsupply-backend/internal/auth"
	cartsvc "github.com/rxsupplyhq/rxsupply-backend/internal/cart"
	invoicesvc "github.com/rxsupplyhq/rxsupply-backend/internal/invoices"
	ordersvc "github.com/rxsupplyhq/rxsupply-backend/internal/orders"
	paymentsvc "github.com/rxsupplyhq/rxsupply-backend/internal/payments"
	productsvc "github.com/rxsupplyhq/rxsupply-backend/internal/products"
	profilesvc "github.com/rxsupplyhq/rxsupply-backend/internal/profiles"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/auth"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/auth/session"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/config"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/db"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/logger"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/redis"
)

// Deps carries everything the HTTP surface needs. Services are constructed in
// cmd/api and handed over fully wired.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    *redis.Client
	Sessions session.AccessSessionChecker

	Auth     *authsvc.Service
	Cart     *cartsvc.Service
	Orders   *ordersvc.Service
	Payments *paymentsvc.Service
	Invoices *invoicesvc.Service
	Profiles *profilesvc.Service
	Products *productsvc.Repo
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.DB, d.Redis))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(d.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(d.Auth, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))

		r.Route("/profiles", func(r chi.Router) {
			r.Get("/me", controllers.ProfilesMe(d.Profiles, logg))
			r.Put("/me", controllers.ProfilesUpdateContact(d.Profiles, logg))
			r.Post("/me/password", controllers.ProfilesChangePassword(d.Profiles, logg))
			r.With(middleware.RequireCapability(auth.CapManageOrders, logg)).
				Post("/{profileID}/reset-password", controllers.ProfilesResetPassword(d.Profiles, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductsList(d.Products, logg))
			r.Get("/{productID}", controllers.ProductsGet(d.Products, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireCapability(auth.CapManageProducts, logg))
				r.Post("/", controllers.ProductsCreate(d.Products, logg))
				r.Put("/{productID}", controllers.ProductsUpdate(d.Products, logg))
			})
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(d.Cart, logg))
			r.Post("/items", controllers.CartAddItem(d.Cart, logg))
			r.Delete("/items/{itemID}", controllers.CartRemoveItem(d.Cart, logg))
			r.Delete("/", controllers.CartClear(d.Cart, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.With(middleware.RequireCapability(auth.CapPlaceOrder, logg)).
				Post("/", controllers.OrdersCreate(d.Orders, logg))
			r.Get("/", controllers.OrdersList(d.Orders, logg))
			r.Get("/{orderID}", controllers.OrdersGet(d.Orders, logg))
			r.With(middleware.RequireCapability(auth.CapManageOrders, logg)).
				Patch("/{orderID}/status", controllers.OrdersUpdateStatus(d.Orders, logg))
			r.With(middleware.RequireCapability(auth.CapDeleteOrder, logg)).
				Delete("/{orderID}", controllers.OrdersDelete(d.Orders, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireCapability(auth.CapAcceptPurchaseOrder, logg))
				r.Post("/{orderID}/purchase-order/accept", controllers.OrdersAcceptPO(d.Orders, logg))
				r.Post("/{orderID}/purchase-order/reject", controllers.OrdersRejectPO(d.Orders, logg))
			})

			r.Post("/{orderID}/payments/card", controllers.PaymentsChargeCard(d.Payments, logg))
			r.With(middleware.RequireCapability(auth.CapRecordManualPayment, logg)).
				Post("/{orderID}/payments/manual", controllers.PaymentsRecordManual(d.Payments, logg))
			r.Get("/{orderID}/invoice", controllers.InvoicesGetByOrder(d.Orders, logg))
		})

		r.Route("/invoices", func(r chi.Router) {
			r.With(middleware.RequireCapability(auth.CapSendPaymentLink, logg)).
				Post("/{invoiceID}/payment-link", controllers.InvoicesSendPaymentLink(d.Invoices, logg))
			r.With(middleware.RequireCapability(auth.CapManageOrders, logg)).
				Post("/{invoiceID}/accounting", controllers.InvoicesSubmitAccounting(d.Invoices, logg))
		})
	})

	return r
}
