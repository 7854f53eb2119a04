package transport

import (
	"net/http"

	"mini-mart/internal/domain"
	"mini-mart/internal/middleware"
	"mini-mart/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ContactFormRequest carries the delivery details typed into the Mini App
type ContactFormRequest struct {
	Name    string      `json:"name" validate:"max=200"`
	Phone   string      `json:"phone" validate:"max=32"`
	Address string      `json:"address" validate:"max=1000"`
	Slot    string      `json:"slot" validate:"max=100"`
	Note    string      `json:"note" validate:"max=1000"`
	Geo     *GeoRequest `json:"geo"`
}

// GeoRequest is an optional delivery location
type GeoRequest struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
}

func (g *GeoRequest) toDomain() *domain.Geo {
	if g == nil {
		return nil
	}
	return &domain.Geo{Lat: g.Lat, Lon: g.Lon}
}

func (f ContactFormRequest) toDomain() domain.ContactForm {
	return domain.ContactForm{
		Name:    f.Name,
		Phone:   f.Phone,
		Address: f.Address,
		Slot:    f.Slot,
		Note:    f.Note,
		Geo:     f.Geo.toDomain(),
	}
}

// PlaceOrderRequest represents the /order payload. The payment method is checked
// by the service so unsupported values get UNSUPPORTED_METHOD.
type PlaceOrderRequest struct {
	InitData      string             `json:"initData"`
	Items         []CartLineRequest  `json:"items" validate:"max=100,dive"`
	PaymentMethod string             `json:"paymentMethod"`
	Form          ContactFormRequest `json:"form"`
}

// CheckoutRequest represents the /checkout payload
type CheckoutRequest struct {
	InitData string             `json:"initData"`
	Items    []CartLineRequest  `json:"items" validate:"max=100,dive"`
	Form     ContactFormRequest `json:"form"`
}

// UPIInstructions is returned for UPI orders
type UPIInstructions struct {
	Link string `json:"link"`
}

// PlaceOrderResponse confirms a placed order
type PlaceOrderResponse struct {
	OK      bool                 `json:"ok"`
	OrderID int64                `json:"orderId"`
	Total   int64                `json:"total"`
	Method  domain.PaymentMethod `json:"method"`
	UPI     *UPIInstructions     `json:"upi,omitempty"`
}

// CheckoutResponse carries the hosted invoice link of an ONLINE order
type CheckoutResponse struct {
	OK      bool   `json:"ok"`
	OrderID int64  `json:"orderId"`
	Link    string `json:"link"`
	Total   int64  `json:"total"`
}

// MyOrdersRequest is sent by the bot process to read a buyer's history
type MyOrdersRequest struct {
	TgUserID *int64 `json:"tg_user_id"`
}

// OrdersResponse lists orders
type OrdersResponse struct {
	OK     bool            `json:"ok"`
	Orders []*domain.Order `json:"orders"`
}

// OrderHandler serves order placement
type OrderHandler struct {
	orders service.OrderService
	logger *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger}
}

// RegisterRoutes registers the order routes. placement guards /order and
// /checkout (rate limiting); botOnly guards /myorders.
func (h *OrderHandler) RegisterRoutes(r chi.Router, placement, botOnly func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(placement)
		r.Post("/order", h.PlaceOrder)
		r.Post("/checkout", h.Checkout)
	})
	r.With(botOnly).Post("/myorders", h.MyOrders)
}

// PlaceOrder places a COD or UPI order
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Order validation failed", zap.Error(err))
		middleware.WriteDecodeError(w, err)
		return
	}

	placement, err := h.orders.PlaceOrder(r.Context(), service.PlaceOrderInput{
		InitData:      req.InitData,
		Items:         toCartLines(req.Items),
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
		Form:          req.Form.toDomain(),
	})
	if err != nil {
		respondWithServiceError(w, h.logger, "Place order", err)
		return
	}

	resp := PlaceOrderResponse{
		OK:      true,
		OrderID: placement.Order.ID,
		Total:   placement.Order.Total,
		Method:  placement.Order.PaymentMethod,
	}
	if placement.UPILink != "" {
		resp.UPI = &UPIInstructions{Link: placement.UPILink}
	}
	middleware.RespondWithJSON(w, http.StatusOK, resp)
}

// Checkout places an ONLINE order and returns its invoice link
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Checkout validation failed", zap.Error(err))
		middleware.WriteDecodeError(w, err)
		return
	}

	result, err := h.orders.Checkout(r.Context(), service.CheckoutInput{
		InitData: req.InitData,
		Items:    toCartLines(req.Items),
		Form:     req.Form.toDomain(),
	})
	if err != nil {
		respondWithServiceError(w, h.logger, "Checkout", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, CheckoutResponse{
		OK:      true,
		OrderID: result.Order.ID,
		Link:    result.Link,
		Total:   result.Order.Total,
	})
}

// MyOrders returns a buyer's recent orders to the bot process
func (h *OrderHandler) MyOrders(w http.ResponseWriter, r *http.Request) {
	var req MyOrdersRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.WriteDecodeError(w, err)
		return
	}
	if req.TgUserID == nil || *req.TgUserID == 0 {
		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeMissingTgUserID)
		return
	}

	orders, err := h.orders.RecentOrders(r.Context(), *req.TgUserID)
	if err != nil {
		respondWithServiceError(w, h.logger, "List buyer orders", err)
		return
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	middleware.RespondWithJSON(w, http.StatusOK, OrdersResponse{OK: true, Orders: orders})
}
