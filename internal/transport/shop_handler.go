package transport

import (
	"net/http"

	"mini-mart/internal/domain"
	"mini-mart/internal/middleware"
	"mini-mart/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CartLineRequest is one {id, qty} cart entry. A zero qty counts as one.
type CartLineRequest struct {
	ID  string `json:"id" validate:"max=64"`
	Qty int64  `json:"qty" validate:"gte=0,lte=999"`
}

// PriceCartRequest represents the /cart/price payload
type PriceCartRequest struct {
	Items []CartLineRequest `json:"items" validate:"max=100,dive"`
}

// PriceCartResponse is the authoritative quote for a cart
type PriceCartResponse struct {
	OK       bool                      `json:"ok"`
	Items    []domain.PricedLine       `json:"items"`
	Total    int64                     `json:"total"`
	Payments domain.PaymentEligibility `json:"payments"`
}

// CategoriesResponse lists the catalog categories
type CategoriesResponse struct {
	OK         bool     `json:"ok"`
	Categories []string `json:"categories"`
}

// ProductsResponse lists catalog products
type ProductsResponse struct {
	OK    bool              `json:"ok"`
	Items []*domain.Product `json:"items"`
}

func toCartLines(items []CartLineRequest) []domain.CartLine {
	lines := make([]domain.CartLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, domain.CartLine{ProductID: it.ID, Qty: it.Qty})
	}
	return lines
}

// ShopHandler serves the public catalog and cart pricing
type ShopHandler struct {
	catalog service.CatalogService
	orders  service.OrderService
	logger  *zap.Logger
}

// NewShopHandler creates a new ShopHandler
func NewShopHandler(catalog service.CatalogService, orders service.OrderService, logger *zap.Logger) *ShopHandler {
	return &ShopHandler{catalog: catalog, orders: orders, logger: logger}
}

// RegisterRoutes registers the public shop routes
func (h *ShopHandler) RegisterRoutes(r chi.Router) {
	r.Get("/categories", h.Categories)
	r.Get("/products", h.Products)
	r.Post("/cart/price", h.PriceCart)
}

// Categories returns the distinct product categories
func (h *ShopHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.Categories(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, "List categories", err)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	middleware.RespondWithJSON(w, http.StatusOK, CategoriesResponse{OK: true, Categories: categories})
}

// Products returns the catalog, optionally filtered by ?category=
func (h *ShopHandler) Products(w http.ResponseWriter, r *http.Request) {
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

// PriceCart reprices a cart against the catalog. It has no side effects.
func (h *ShopHandler) PriceCart(w http.ResponseWriter, r *http.Request) {
	var req PriceCartRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Cart price validation failed", zap.Error(err))
		middleware.WriteDecodeError(w, err)
		return
	}

	quote, err := h.orders.PriceCart(r.Context(), toCartLines(req.Items))
	if err != nil {
		respondWithServiceError(w, h.logger, "Price cart", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, PriceCartResponse{
		OK:       true,
		Items:    quote.Lines,
		Total:    quote.Total,
		Payments: quote.Eligibility,
	})
}
