package transport

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"

	"mini-mart/internal/middleware"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const webhookSecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// UpdateHandler processes one Telegram update
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update)
}

// WebhookHandler receives Telegram updates pushed to the API process
type WebhookHandler struct {
	updates UpdateHandler
	secret  string
	logger  *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler. An empty secret disables the header check.
func NewWebhookHandler(updates UpdateHandler, secret string, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{updates: updates, secret: secret, logger: logger}
}

func (h *WebhookHandler) RegisterRoutes(r chi.Router) {
	r.Post("/telegram/webhook", h.Receive)
}

// Receive decodes an update and hands it to the bot. Handler failures are
// logged by the bot; Telegram always gets 200 so it does not redeliver.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	if h.secret != "" {
		got := r.Header.Get(webhookSecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
			h.logger.Warn("Rejected webhook with bad secret token")
			middleware.RespondWithError(w, http.StatusUnauthorized, middleware.CodeUnauthorized)
			return
		}
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&update); err != nil {
		h.logger.Debug("Undecodable webhook update", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeInvalidRequest)
		return
	}

	h.updates.HandleUpdate(r.Context(), update)
	middleware.RespondWithJSON(w, http.StatusOK, okResponse{OK: true})
}
