package transport

import (
	"net/http"

	"mini-mart/internal/domain"
	"mini-mart/internal/initdata"
	"mini-mart/internal/middleware"
	"mini-mart/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// InitDataRequest carries only the signed launch payload
type InitDataRequest struct {
	InitData string `json:"initData"`
}

// ProfileUpdateRequest represents the /me/update payload; empty fields keep the stored value
type ProfileUpdateRequest struct {
	InitData     string      `json:"initData"`
	Phone        string      `json:"phone" validate:"max=32"`
	Address      string      `json:"address" validate:"max=1000"`
	DeliverySlot string      `json:"delivery_slot" validate:"max=100"`
	Geo          *GeoRequest `json:"geo"`
}

// VerifyResponse returns the verified Telegram user
type VerifyResponse struct {
	OK   bool           `json:"ok"`
	User *initdata.User `json:"user"`
}

// ProfileResponse returns a stored profile
type ProfileResponse struct {
	OK      bool            `json:"ok"`
	Profile *domain.Profile `json:"profile"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

// ProfileHandler serves the buyer identity and profile endpoints
type ProfileHandler struct {
	profiles service.ProfileService
	logger   *zap.Logger
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(profiles service.ProfileService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, logger: logger}
}

// RegisterRoutes registers the profile routes
func (h *ProfileHandler) RegisterRoutes(r chi.Router) {
	r.Post("/verify", h.Verify)
	r.Post("/me", h.Me)
	r.Post("/me/update", h.Update)
}

// Verify checks a launch payload and echoes its user claim
func (h *ProfileHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req InitDataRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.WriteDecodeError(w, err)
		return
	}

	auth, err := h.profiles.Verify(req.InitData)
	if err != nil {
		respondWithServiceError(w, h.logger, "Verify init data", err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, VerifyResponse{OK: true, User: auth.User})
}

// Me records the buyer and returns the stored profile
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	var req InitDataRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.WriteDecodeError(w, err)
		return
	}

	profile, err := h.profiles.Me(r.Context(), req.InitData)
	if err != nil {
		respondWithServiceError(w, h.logger, "Load profile", err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, ProfileResponse{OK: true, Profile: profile})
}

// Update merges the submitted fields into the buyer's profile
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req ProfileUpdateRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.WriteDecodeError(w, err)
		return
	}

	patch := domain.ProfilePatch{
		Phone:        req.Phone,
		Address:      req.Address,
		DeliverySlot: req.DeliverySlot,
		Geo:          req.Geo.toDomain(),
	}
	if err := h.profiles.Update(r.Context(), req.InitData, patch); err != nil {
		respondWithServiceError(w, h.logger, "Update profile", err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, okResponse{OK: true})
}
