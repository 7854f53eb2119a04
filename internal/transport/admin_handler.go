package transport

import (
	"net/http"

	"mini-mart/internal/domain"
	"mini-mart/internal/middleware"
	"mini-mart/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	defaultOrdersPageSize   = 20
	maxOrdersPageSize       = 100
	defaultProfilesPageSize = 50
	maxProfilesPageSize     = 200
)

// LoginRequest represents the admin login payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the session token
type LoginResponse struct {
	OK    bool          `json:"ok"`
	Token string        `json:"token"`
	Admin *domain.Admin `json:"admin"`
}

// SessionResponse describes the current admin. Admin is nil for legacy key sessions.
type SessionResponse struct {
	OK    bool          `json:"ok"`
	Admin *domain.Admin `json:"admin"`
}

// CreateAdminRequest represents a new admin account
type CreateAdminRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"max=200"`
	Password string `json:"password" validate:"required,min=6"`
}

// UpdateAdminRequest changes an admin; absent fields stay unchanged
type UpdateAdminRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=200"`
	Password *string `json:"password" validate:"omitempty,min=6"`
	Active   *bool   `json:"active"`
}

// AdminsResponse lists admin accounts
type AdminsResponse struct {
	OK    bool            `json:"ok"`
	Items []*domain.Admin `json:"items"`
}

// AdminResponse returns one admin account
type AdminResponse struct {
	OK    bool          `json:"ok"`
	Admin *domain.Admin `json:"admin"`
}

// ProductRequest represents a product create or replace
type ProductRequest struct {
	ID            string `json:"id" validate:"required,max=64"`
	Title         string `json:"title" validate:"required,max=200"`
	Price         int64  `json:"price" validate:"gte=0"`
	Category      string `json:"category" validate:"required,max=100"`
	Image         string `json:"image" validate:"omitempty,max=2048"`
	AgeRestricted bool   `json:"age_restricted"`
	Stock         int    `json:"stock" validate:"gte=0"`
}

func (p ProductRequest) toDomain() *domain.Product {
	return &domain.Product{
		ID:            p.ID,
		Title:         p.Title,
		Price:         p.Price,
		Category:      p.Category,
		Image:         p.Image,
		AgeRestricted: p.AgeRestricted,
		Stock:         p.Stock,
	}
}

// BulkProductsRequest upserts many products in one transaction
type BulkProductsRequest struct {
	Items []ProductRequest `json:"items" validate:"required,min=1,max=1000,dive"`
}

// ProductResponse returns one product
type ProductResponse struct {
	OK      bool            `json:"ok"`
	Product *domain.Product `json:"product"`
}

// CountResponse reports how many rows an operation touched
type CountResponse struct {
	OK    bool `json:"ok"`
	Count int  `json:"count"`
}

// StatsResponse is the admin overview
type StatsResponse struct {
	OK bool `json:"ok"`
	*domain.Stats
}

// StatusUpdateRequest represents an order status change
type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderResponse returns one order
type OrderResponse struct {
	OK    bool          `json:"ok"`
	Order *domain.Order `json:"order"`
}

// PageResponse is a paginated listing
type PageResponse[T any] struct {
	OK       bool `json:"ok"`
	Items    []T  `json:"items"`
	Total    int  `json:"total"`
	Page     int  `json:"page"`
	PageSize int  `json:"pageSize"`
}

// AdminHandler serves the admin API
type AdminHandler struct {
	admins   service.AdminService
	catalog  service.CatalogService
	orders   service.OrderService
	profiles service.ProfileService
	logger   *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(
	admins service.AdminService,
	catalog service.CatalogService,
	orders service.OrderService,
	profiles service.ProfileService,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		admins:   admins,
		catalog:  catalog,
		orders:   orders,
		profiles: profiles,
		logger:   logger,
	}
}

// RegisterRoutes registers the admin routes under /admin. login guards the
// login endpoint (rate limiting); auth guards everything else.
func (h *AdminHandler) RegisterRoutes(r chi.Router, login, auth func(http.Handler) http.Handler) {
	r.Route("/admin", func(r chi.Router) {
		r.With(login).Post("/auth/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Get("/auth/session", h.Session)

			r.Get("/users", h.ListAdmins)
			r.Post("/users", h.CreateAdmin)
			r.Put("/users/{id}", h.UpdateAdmin)
			r.Delete("/users/{id}", h.DisableAdmin)

			r.Get("/products", h.ListProducts)
			r.Post("/products", h.SaveProduct)
			r.Post("/products/bulk", h.ImportProducts)
			r.Put("/products/{id}", h.SaveProduct)
			r.Delete("/products/{id}", h.DeleteProduct)

			r.Get("/stats", h.Stats)
			r.Get("/orders", h.ListOrders)
			r.Get("/orders/{id}", h.GetOrder)
			r.Put("/orders/{id}/status", h.UpdateOrderStatus)
			r.Get("/profiles", h.ListProfiles)
			r.Post("/seed", h.Seed)
		})
	})
}

// Login exchanges credentials for a session token
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.WriteDecodeError(w, err)
		return
	}

	token, admin, err := h.admins.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithServiceError(w, h.logger, "Admin login", err)
		return
	}

	h.logger.Info("Admin logged in", zap.Int64("admin_id", admin.ID))
	middleware.RespondWithJSON(w, http.StatusOK, LoginResponse{OK: true, Token: token, Admin: admin})
}

func (h *AdminHandler) Session(w http.ResponseWriter, r *http.Request) {
	admin, _ := middleware.GetAdmin(r.Context())
	middleware.RespondWithJSON(w, http.StatusOK, SessionResponse{OK: true, Admin: admin})
}

func (h *AdminHandler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.admins.ListAdmins(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, "List admins", err)
		return
	}
	if admins == nil {
		admins = []*domain.Admin{}
	}
	middleware.RespondWithJSON(w, http.StatusOK, AdminsResponse{OK: true, Items: admins})
}

func (h *AdminHandler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req CreateAdminRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.WriteDecodeError(w, err)
		return
	}

	admin, err := h.admins.CreateAdmin(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		respondWithServiceError(w, h.logger, "Create admin", err)
		return
	}

	h.logger.Info("Admin created", zap.Int64("admin_id", admin.ID))
	middleware.RespondWithJSON(w, http.StatusCreated, AdminResponse{OK: true, Admin: admin})
}

func (h *AdminHandler) UpdateAdmin(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeInvalidRequest)
		return
	}

	var req UpdateAdminRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.WriteDecodeError(w, err)
		return
	}

	admin, err := h.admins.UpdateAdmin(r.Context(), id, service.AdminUpdate{
		Name:     req.Name,
		Password: req.Password,
		Active:   req.Active,
	})
	if err != nil {
		respondWithServiceError(w, h.logger, "Update admin", err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, AdminResponse{OK: true, Admin: admin})
}

// DisableAdmin deactivates an account; rows are never deleted
func (h *AdminHandler) DisableAdmin(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeInvalidRequest)
		return
	}

	if err := h.admins.DisableAdmin(r.Context(), id); err != nil {
		respondWithServiceError(w, h.logger, "Disable admin", err)
		return
	}

	h.logger.Info("Admin disabled", zap.Int64("admin_id", id))
	middleware.RespondWithJSON(w, http.StatusOK, okResponse{OK: true})
}

func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.Products(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		respondWithServiceError(w, h.logger, "List products", err)
		return
	}
	if products == nil {
		products = []*domain.Product{}
	}
	middleware.RespondWithJSON(w, http.StatusOK, ProductsResponse{OK: true, Items: products})
}

// SaveProduct creates or replaces a product. On PUT the path id wins over the body.
func (h *AdminHandler) SaveProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := middleware.DecodeJSON(r, &req); err != nil {
		middleware.WriteDecodeError(w, err)
		return
	}
	if id := chi.URLParam(r, "id"); id != "" {
		req.ID = id
	}
	if err := middleware.ValidateRequest(&req); err != nil {
		middleware.WriteDecodeError(w, err)
		return
	}

	product := req.toDomain()
	if err := h.catalog.SaveProduct(r.Context(), product); err != nil {
		respondWithServiceError(w, h.logger, "Save product", err)
		return
	}

	h.logger.Info("Product saved", zap.String("product_id", product.ID))
	middleware.RespondWithJSON(w, http.StatusOK, ProductResponse{OK: true, Product: product})
}

// ImportProducts upserts a JSON batch atomically
func (h *AdminHandler) ImportProducts(w http.ResponseWriter, r *http.Request) {
	var req BulkProductsRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.WriteDecodeError(w, err)
		return
	}

	products := make([]*domain.Product, 0, len(req.Items))
	for _, it := range req.Items {
		products = append(products, it.toDomain())
	}

	n, err := h.catalog.ImportProducts(r.Context(), products)
	if err != nil {
		respondWithServiceError(w, h.logger, "Import products", err)
		return
	}

	h.logger.Info("Products imported", zap.Int("count", n))
	middleware.RespondWithJSON(w, http.StatusOK, CountResponse{OK: true, Count: n})
}

func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.catalog.DeleteProduct(r.Context(), id); err != nil {
		respondWithServiceError(w, h.logger, "Delete product", err)
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", id))
	middleware.RespondWithJSON(w, http.StatusOK, okResponse{OK: true})
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.orders.Stats(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, "Load stats", err)
		return
	}
	if stats.Last7 == nil {
		stats.Last7 = []domain.DailySales{}
	}
	if stats.LowStock == nil {
		stats.LowStock = []domain.Product{}
	}
	middleware.RespondWithJSON(w, http.StatusOK, StatsResponse{OK: true, Stats: stats})
}

// ListOrders lists orders filtered by ?status= and ?q=
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	page, size := pagination(r, defaultOrdersPageSize, maxOrdersPageSize)
	orders, total, err := h.orders.ListOrders(r.Context(), domain.OrderFilter{
		Status:   domain.OrderStatus(r.URL.Query().Get("status")),
		Query:    r.URL.Query().Get("q"),
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		respondWithServiceError(w, h.logger, "List orders", err)
		return
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	middleware.RespondWithJSON(w, http.StatusOK, PageResponse[*domain.Order]{
		OK: true, Items: orders, Total: total, Page: page, PageSize: size,
	})
}

func (h *AdminHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeInvalidRequest)
		return
	}

	order, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, h.logger, "Load order", err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, OrderResponse{OK: true, Order: order})
}

func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeInvalidRequest)
		return
	}

	var req StatusUpdateRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.WriteDecodeError(w, err)
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), id, domain.OrderStatus(req.Status))
	if err != nil {
		respondWithServiceError(w, h.logger, "Update order status", err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, OrderResponse{OK: true, Order: order})
}

func (h *AdminHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	page, size := pagination(r, defaultProfilesPageSize, maxProfilesPageSize)
	profiles, total, err := h.profiles.List(r.Context(), r.URL.Query().Get("q"), page, size)
	if err != nil {
		respondWithServiceError(w, h.logger, "List profiles", err)
		return
	}
	if profiles == nil {
		profiles = []*domain.Profile{}
	}
	middleware.RespondWithJSON(w, http.StatusOK, PageResponse[*domain.Profile]{
		OK: true, Items: profiles, Total: total, Page: page, PageSize: size,
	})
}

// Seed inserts the starter catalog without overwriting existing products
func (h *AdminHandler) Seed(w http.ResponseWriter, r *http.Request) {
	n, err := h.catalog.Seed(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, "Seed catalog", err)
		return
	}

	h.logger.Info("Catalog seeded", zap.Int("inserted", n))
	middleware.RespondWithJSON(w, http.StatusOK, CountResponse{OK: true, Count: n})
}
