package middleware

import (
	"net/http"
	"strings"

	"github.com/Developer-Square/Park254-Backend/pkg/auth"
	apperrors "github.com/Developer-Square/Park254-Backend/pkg/errors"
	httputil "github.com/Developer-Square/Park254-Backend/pkg/http"
	"github.com/Developer-Square/Park254-Backend/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

// Authentication verifies the bearer token and stores the caller in the
// request context.
func Authentication(cfg auth.TokenConfig, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				_ = httputil.WriteError(w, apperrors.Unauthorized("Please authenticate"))
				return
			}

			principal, err := auth.ParseAccessToken(cfg, token)
			if err != nil {
				log.Warn("Rejected access token",
					"request_id", RequestIDFrom(r.Context()),
					"path", r.URL.Path,
					"error", err,
				)
				_ = httputil.WriteError(w, apperrors.Unauthorized("Please authenticate"))
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireRight guards a single route on the caller's role rights.
func RequireRight(right string, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		principal, ok := auth.FromContext(r.Context())
		if !ok {
			_ = httputil.WriteError(w, apperrors.Unauthorized("Please authenticate"))
			return
		}
		if !principal.Can(right) {
			_ = httputil.WriteError(w, apperrors.Forbidden("Forbidden"))
			return
		}
		next(w, r, ps)
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
