package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"mini-mart/internal/domain"
	"mini-mart/internal/service"

	"go.uber.org/zap"
)

type contextKey string

const (
	AdminKey contextKey = "admin"
)

// AdminAuthenticator resolves a session token to an admin account
type AdminAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Admin, error)
}

// AdminAuthMiddleware accepts a Bearer session token of an active admin, or the
// legacy X-Admin-Key header when legacyKey is configured.
func AdminAuthMiddleware(auth AdminAuthenticator, legacyKey string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")

			if authHeader == "" {
				if key := r.Header.Get("X-Admin-Key"); key != "" && legacyKey != "" &&
					subtle.ConstantTimeCompare([]byte(key), []byte(legacyKey)) == 1 {
					logger.Debug("Admin authenticated with legacy key")
					next.ServeHTTP(w, r)
					return
				}
				logger.Debug("Missing admin credentials")
				RespondWithError(w, http.StatusUnauthorized, CodeNoToken)
				return
			}

			tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || strings.TrimSpace(tokenString) == "" {
				logger.Debug("Invalid authorization header format")
				RespondWithError(w, http.StatusUnauthorized, CodeBadToken)
				return
			}

			admin, err := auth.Authenticate(r.Context(), strings.TrimSpace(tokenString))
			if err != nil {
				switch {
				case errors.Is(err, service.ErrAdminDisabled):
					RespondWithError(w, http.StatusForbidden, CodeAdminDisabled)
				case errors.Is(err, service.ErrInvalidToken):
					logger.Debug("Token validation failed", zap.Error(err))
					RespondWithError(w, http.StatusUnauthorized, CodeBadToken)
				default:
					logger.Error("Failed to authenticate admin", zap.Error(err))
					RespondWithError(w, http.StatusInternalServerError, CodeServerError)
				}
				return
			}

			logger.Debug("Admin authenticated", zap.Int64("admin_id", admin.ID))
			ctx := context.WithValue(r.Context(), AdminKey, admin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAdmin extracts the session admin from request context. Requests
// authenticated with the legacy key carry no admin.
func GetAdmin(ctx context.Context) (*domain.Admin, bool) {
	admin, ok := ctx.Value(AdminKey).(*domain.Admin)
	return admin, ok && admin != nil
}
