package controllers

import (
	"net/http"
	"strings"

	authsvc "github.com/rxsupplyhq/rxsupply-backend/internal/auth"
	"github.com/rxsupplyhq/rxsupply-backend/api/responses"
	"github.com/rxsupplyhq/rxsupply-backend/api/validators"
	pkgAuth "github.com/rxsupplyhq/rxsupply-backend/pkg/auth"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/config"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/errors"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/logger"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	ProfileID   string `json:"profile_id"`
	Role        string `json:"role"`
	Name        string `json:"name"`
}

func parseBearerToken(r *http.Request) (string, error) {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return "", errors.New(errors.CodeUnauthorized, "missing credentials")
	}
	token := raw
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	if token == "" {
		return "", errors.New(errors.CodeUnauthorized, "missing credentials")
	}
	return token, nil
}

// AuthLogin verifies credentials and issues a session-bound access token.
func AuthLogin(svc *authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body loginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body.Email, body.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, loginResponse{
			AccessToken: result.Token,
			ProfileID:   result.Profile.ID.String(),
			Role:        string(result.Profile.Role),
			Name:        result.Profile.Name,
		})
	}
}

// AuthLogout revokes the server-side session tied to the presented token.
func AuthLogout(svc *authsvc.Service, cfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := parseBearerToken(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		claims, err := pkgAuth.ParseAccessToken(cfg, token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, errors.Wrap(errors.CodeUnauthorized, err, "invalid token"))
			return
		}
		if claims.ID == "" {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeUnauthorized, "missing session id"))
			return
		}

		if err := svc.Logout(r.Context(), claims.ID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}
