package middleware

import (
	"net/http"

	"github.com/rxsupplyhq/rxsupply-backend/api/responses"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/auth"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/enums"
	pkgerrors "github.com/rxsupplyhq/rxsupply-backend/pkg/errors"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/logger"
)

// RequireCapability gates a route group on the capability table. Roles are
// never compared directly; the table is the only dispatch point.
func RequireCapability(cap auth.Capability, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, err := enums.ParseRole(RoleFromContext(r.Context()))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "unknown role"))
				return
			}
			if !auth.Can(role, cap) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "missing capability"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
