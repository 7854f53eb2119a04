package transport

import (
	"errors"
	"net/http"
	"strconv"

	"mini-mart/internal/middleware"
	"mini-mart/internal/repository"
	"mini-mart/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type errorMapping struct {
	target error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{service.ErrInvalidInitData, http.StatusUnauthorized, middleware.CodeInvalidInitData},
	{service.ErrMissingUser, http.StatusUnauthorized, middleware.CodeInvalidInitData},
	{service.ErrEmptyCart, http.StatusBadRequest, middleware.CodeEmptyCart},
	{service.ErrRestrictedUPI, http.StatusBadRequest, middleware.CodeRestrictedUPIBlocked},
	{service.ErrRestrictedOnline, http.StatusBadRequest, middleware.CodeRestrictedOnlineBlocked},
	{service.ErrOnlineDisabled, http.StatusBadRequest, middleware.CodeOnlineDisabled},
	{service.ErrUnsupportedMethod, http.StatusBadRequest, middleware.CodeUnsupportedMethod},
	{service.ErrInvalidStatus, http.StatusBadRequest, middleware.CodeInvalidStatus},
	{service.ErrInvalidTransition, http.StatusConflict, middleware.CodeInvalidTransition},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, middleware.CodeInvalidCredentials},
	{service.ErrAdminDisabled, http.StatusForbidden, middleware.CodeAdminDisabled},
	{service.ErrInvalidAdmin, http.StatusBadRequest, middleware.CodeInvalidRequest},
	{service.ErrInvalidProduct, http.StatusBadRequest, middleware.CodeInvalidRequest},
	{repository.ErrAdminAlreadyExists, http.StatusConflict, middleware.CodeEmailExists},
	{repository.ErrProductNotFound, http.StatusNotFound, middleware.CodeNotFound},
	{repository.ErrOrderNotFound, http.StatusNotFound, middleware.CodeNotFound},
	{repository.ErrProfileNotFound, http.StatusNotFound, middleware.CodeNotFound},
	{repository.ErrAdminNotFound, http.StatusNotFound, middleware.CodeNotFound},
}

// respondWithServiceError maps a service or repository error to the JSON envelope.
// Unknown errors are logged and reported as SERVER_ERROR.
func respondWithServiceError(w http.ResponseWriter, logger *zap.Logger, op string, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			logger.Debug(op+" rejected", zap.String("code", m.code), zap.Error(err))
			middleware.RespondWithError(w, m.status, m.code)
			return
		}
	}

	logger.Error(op+" failed", zap.Error(err))
	middleware.RespondWithError(w, http.StatusInternalServerError, middleware.CodeServerError)
}

// pagination reads page and pageSize query parameters, clamping pageSize to max.
func pagination(r *http.Request, defaultSize, max int) (int, int) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if err != nil || size < 1 {
		size = defaultSize
	}
	if size > max {
		size = max
	}
	return page, size
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
