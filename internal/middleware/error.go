package middleware

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Error tokens returned in the {ok:false, error} envelope
const (
	CodeInvalidInitData         = "INVALID_INIT_DATA"
	CodeEmptyCart               = "EMPTY_CART"
	CodeRestrictedUPIBlocked    = "RESTRICTED_UPI_BLOCKED"
	CodeRestrictedOnlineBlocked = "RESTRICTED_ONLINE_BLOCKED"
	CodeOnlineDisabled          = "ONLINE_DISABLED"
	CodeUnsupportedMethod       = "UNSUPPORTED_METHOD"
	CodeServerError             = "SERVER_ERROR"
	CodeInvalidRequest          = "INVALID_REQUEST"
	CodeValidationFailed        = "VALIDATION_FAILED"
	CodeNotFound                = "NOT_FOUND"
	CodeInvalidStatus           = "INVALID_STATUS"
	CodeInvalidTransition       = "INVALID_TRANSITION"
	CodeInvalidCredentials      = "INVALID_CREDENTIALS"
	CodeNoToken                 = "NO_TOKEN"
	CodeBadToken                = "BAD_TOKEN"
	CodeAdminDisabled           = "ADMIN_DISABLED"
	CodeEmailExists             = "EMAIL_EXISTS"
	CodeUnauthorized            = "UNAUTHORIZED"
	CodeRateLimited             = "RATE_LIMITED"
	CodeBotKeyMissing           = "BOT_API_KEY_MISSING"
	CodeMissingTgUserID         = "MISSING_TG_USER_ID"
)

// ErrorResponse is the failure envelope
type ErrorResponse struct {
	OK      bool              `json:"ok"`
	Error   string            `json:"error"`
	Details []ValidationError `json:"details,omitempty"`
}

// RespondWithError sends {ok:false, error:code}
func RespondWithError(w http.ResponseWriter, statusCode int, code string) {
	RespondWithJSON(w, statusCode, ErrorResponse{OK: false, Error: code})
}

// RespondWithValidationErrors sends a VALIDATION_FAILED envelope with per-field details
func RespondWithValidationErrors(w http.ResponseWriter, errors []ValidationError) {
	RespondWithJSON(w, http.StatusBadRequest, ErrorResponse{
		OK:      false,
		Error:   CodeValidationFailed,
		Details: errors,
	})
}

// ErrorHandlingMiddleware catches panics and converts them to 500 errors
func ErrorHandlingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					logger.Error("Panic recovered",
						zap.Any("error", err),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)

					RespondWithError(w, http.StatusInternalServerError, CodeServerError)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// RespondWithJSON sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}
