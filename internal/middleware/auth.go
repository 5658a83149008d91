package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"flexidb/internal/domain"
)

// Authenticate returns a middleware that requires a valid bearer token and
// stores the caller as the context principal. With a nil validator every
// request runs as the anonymous principal.
func Authenticate(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if validator == nil {
				ctx := domain.WithPrincipal(r.Context(), domain.ContextPrincipal{
					Name:   domain.AnonymousPrincipal,
					Source: "anonymous",
				})
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			token, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "Unauthorized: provide a valid Bearer token.")
				return
			}
			claims, err := validator.Validate(r.Context(), token)
			if err != nil || claims.PrincipalName() == "" {
				if err != nil {
					logger.Debug("bearer token rejected", "error", err, "request_id", domain.RequestIDFromContext(r.Context()))
				}
				writeError(w, http.StatusUnauthorized, "Unauthorized: provide a valid Bearer token.")
				return
			}

			ctx := domain.WithPrincipal(r.Context(), domain.ContextPrincipal{
				Name:   claims.PrincipalName(),
				Source: validator.Source(),
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(auth, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// writeError writes the standard failure envelope.
func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  false,
		"message": message,
	})
}
