package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rxsupplyhq/rxsupply-backend/api/middleware"
	"github.com/rxsupplyhq/rxsupply-backend/internal/orders"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/enums"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/errors"
)

// actorFromRequest rebuilds the authenticated actor from context values the
// auth middleware deposited.
func actorFromRequest(r *http.Request) (orders.Actor, error) {
	profileID, err := uuid.Parse(middleware.ProfileIDFromContext(r.Context()))
	if err != nil {
		return orders.Actor{}, errors.New(errors.CodeUnauthorized, "missing credentials")
	}
	role, err := enums.ParseRole(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return orders.Actor{}, errors.New(errors.CodeUnauthorized, "missing credentials")
	}
	return orders.Actor{ProfileID: profileID, Role: role}, nil
}

func pathUUID(r *http.Request, key string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, key))
	if err != nil {
		return uuid.Nil, errors.New(errors.CodeValidation, "invalid id in path").
			WithDetails(map[string]any{"param": key})
	}
	return id, nil
}
