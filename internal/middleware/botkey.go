package middleware

import (
	"crypto/subtle"
	"net/http"

	"go.uber.org/zap"
)

// RequireBotKey guards bot-only endpoints with the shared X-Bot-Key secret
func RequireBotKey(key string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				logger.Error("BOT_API_KEY is not configured")
				RespondWithError(w, http.StatusInternalServerError, CodeBotKeyMissing)
				return
			}
			if subtle.ConstantTimeCompare([]byte(r.Header.Get("X-Bot-Key")), []byte(key)) != 1 {
				logger.Warn("Rejected request with bad bot key", zap.String("path", r.URL.Path))
				RespondWithError(w, http.StatusUnauthorized, CodeUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
