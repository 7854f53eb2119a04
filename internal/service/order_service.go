package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"mini-mart/internal/domain"
	"mini-mart/internal/initdata"
	"mini-mart/internal/payment"
	"mini-mart/internal/pricing"
	"mini-mart/internal/repository"

	"go.uber.org/zap"
)

const (
	// RecentOrdersLimit caps the buyer order history.
	RecentOrdersLimit = 20

	lowStockThreshold = 20
	lowStockLimit     = 20

	invoicePayloadPrefix = "order-"
)

var (
	ErrInvalidInitData   = errors.New("invalid init data")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrRestrictedUPI     = errors.New("restricted items cannot be paid by UPI")
	ErrRestrictedOnline  = errors.New("restricted items cannot be paid online")
	ErrOnlineDisabled    = errors.New("online payments are not configured")
	ErrUnsupportedMethod = errors.New("unsupported payment method")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrInvalidTransition = errors.New("order status transition not allowed")
	ErrInvoiceFailed     = errors.New("failed to create invoice")
	ErrPaymentMismatch   = errors.New("payment does not match order")
)

// InitDataVerifier validates signed Mini App launch payloads.
type InitDataVerifier interface {
	Verify(payload string) (*initdata.Result, error)
}

// OrderNotifier is told about every placed order. Implementations must not block.
type OrderNotifier interface {
	OrderPlaced(order *domain.Order)
}

// PlaceOrderInput is a COD or UPI order request.
type PlaceOrderInput struct {
	InitData      string
	Items         []domain.CartLine
	PaymentMethod domain.PaymentMethod
	Form          domain.ContactForm
}

// CheckoutInput is an ONLINE order request.
type CheckoutInput struct {
	InitData string
	Items    []domain.CartLine
	Form     domain.ContactForm
}

// Placement is a persisted order plus the payment instructions for its method.
type Placement struct {
	Order   *domain.Order
	UPILink string
}

// CheckoutResult is a persisted ONLINE order and its hosted invoice link.
type CheckoutResult struct {
	Order *domain.Order
	Link  string
}

// OrderService defines the order placement pipeline and order management
type OrderService interface {
	PriceCart(ctx context.Context, lines []domain.CartLine) (*domain.Quote, error)
	PlaceOrder(ctx context.Context, in PlaceOrderInput) (*Placement, error)
	Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error)
	RecentOrders(ctx context.Context, buyerID int64) ([]*domain.Order, error)
	ListOrders(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, int, error)
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error)
	Stats(ctx context.Context) (*domain.Stats, error)
	ValidatePayment(ctx context.Context, payload string, amount int64, currency string) (*domain.Order, error)
	MarkPaid(ctx context.Context, payload string) (*domain.Order, error)
}

// OrderServiceConfig carries the shop settings the pipeline needs.
type OrderServiceConfig struct {
	ShopName      string
	Currency      string
	OnlineEnabled bool
	UPI           payment.UPIConfig
}

type orderService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	profiles repository.ProfileRepository
	engine   *pricing.Engine
	verifier InitDataVerifier
	invoices payment.InvoiceCreator
	notifier OrderNotifier
	cfg      OrderServiceConfig
	logger   *zap.Logger
}

// NewOrderService creates a new instance of OrderService. invoices may be nil
// when online payments are disabled.
func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	profiles repository.ProfileRepository,
	engine *pricing.Engine,
	verifier InitDataVerifier,
	invoices payment.InvoiceCreator,
	notifier OrderNotifier,
	cfg OrderServiceConfig,
	logger *zap.Logger,
) OrderService {
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	return &orderService{
		orders:   orders,
		products: products,
		profiles: profiles,
		engine:   engine,
		verifier: verifier,
		invoices: invoices,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
	}
}

// PriceCart quotes a cart without side effects
func (s *orderService) PriceCart(ctx context.Context, lines []domain.CartLine) (*domain.Quote, error) {
	return s.engine.Price(ctx, lines)
}

// PlaceOrder runs verify, price, gate, persist and notify for a COD or UPI order.
// Nothing is written unless every gate passes.
func (s *orderService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*Placement, error) {
	auth, err := s.verify(in.InitData)
	if err != nil {
		return nil, err
	}

	if in.PaymentMethod != domain.PaymentCOD && in.PaymentMethod != domain.PaymentUPI {
		return nil, ErrUnsupportedMethod
	}

	quote, err := s.engine.Price(ctx, in.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to price cart: %w", err)
	}
	if quote.Total <= 0 {
		return nil, ErrEmptyCart
	}
	if !quote.Eligibility.Allows(in.PaymentMethod) {
		return nil, ErrRestrictedUPI
	}

	order, err := s.persist(ctx, auth, quote, in.PaymentMethod, in.Form)
	if err != nil {
		return nil, err
	}

	placement := &Placement{Order: order}
	if in.PaymentMethod == domain.PaymentUPI {
		placement.UPILink = s.cfg.UPI.UPILink(order.Total, fmt.Sprintf("Order %d", order.ID))
	}
	return placement, nil
}

// Checkout persists an ONLINE order and creates its invoice link. If the
// invoice cannot be created the order is cancelled.
func (s *orderService) Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	auth, err := s.verify(in.InitData)
	if err != nil {
		return nil, err
	}

	if !s.cfg.OnlineEnabled || s.invoices == nil {
		return nil, ErrOnlineDisabled
	}

	quote, err := s.engine.Price(ctx, in.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to price cart: %w", err)
	}
	if quote.Total <= 0 {
		return nil, ErrEmptyCart
	}
	if !quote.Eligibility.Allows(domain.PaymentOnline) {
		return nil, ErrRestrictedOnline
	}

	order, err := s.persist(ctx, auth, quote, domain.PaymentOnline, in.Form)
	if err != nil {
		return nil, err
	}

	link, err := s.invoices.CreateInvoiceLink(ctx, s.invoiceFor(order, quote))
	if err != nil {
		s.logger.Error("Failed to create invoice link",
			zap.Int64("order_id", order.ID),
			zap.Error(err),
		)
		if cErr := s.orders.UpdateStatus(ctx, order.ID, domain.StatusPlaced, domain.StatusCancelled); cErr != nil {
			s.logger.Error("Failed to cancel order after invoice failure",
				zap.Int64("order_id", order.ID),
				zap.Error(cErr),
			)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvoiceFailed, err)
	}

	return &CheckoutResult{Order: order, Link: link}, nil
}

func (s *orderService) verify(payload string) (*initdata.Result, error) {
	auth, err := s.verifier.Verify(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInitData, err)
	}
	return auth, nil
}

// persist fills the contact form from the stored profile, writes the order with
// its items, then updates the profile and notifies. Only the write can fail.
func (s *orderService) persist(
	ctx context.Context,
	auth *initdata.Result,
	quote *domain.Quote,
	method domain.PaymentMethod,
	form domain.ContactForm,
) (*domain.Order, error) {
	buyerID := auth.BuyerID()

	contact := form
	if buyerID != nil {
		profile, err := s.profiles.Get(ctx, *buyerID)
		switch {
		case err == nil:
			contact = form.WithFallback(profile)
		case !errors.Is(err, repository.ErrProfileNotFound):
			s.logger.Warn("Failed to load profile for contact fallback",
				zap.Int64("tg_user_id", *buyerID),
				zap.Error(err),
			)
		}
	}
	if contact.Name == "" && auth.User != nil {
		contact.Name = auth.User.DisplayName()
	}

	items := domain.ItemsFromQuote(quote)
	order := &domain.Order{
		BuyerID:       buyerID,
		Contact:       contact,
		Total:         domain.ItemsTotal(items),
		PaymentMethod: method,
		Status:        domain.StatusPlaced,
		Items:         items,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info("Order placed",
		zap.Int64("order_id", order.ID),
		zap.Int64("total", order.Total),
		zap.String("payment_method", string(method)),
		zap.Int("items", len(items)),
	)

	if buyerID != nil {
		patch := domain.ProfilePatch{Phone: form.Phone, Address: form.Address, DeliverySlot: form.Slot, Geo: form.Geo}
		if !patch.Empty() {
			if err := s.profiles.Merge(ctx, *buyerID, patch); err != nil {
				s.logger.Warn("Failed to update profile from order",
					zap.Int64("tg_user_id", *buyerID),
					zap.Error(err),
				)
			}
		}
	}

	if s.notifier != nil {
		s.notifier.OrderPlaced(order)
	}
	return order, nil
}

func (s *orderService) invoiceFor(order *domain.Order, quote *domain.Quote) payment.InvoiceRequest {
	prices := make([]payment.LabeledAmount, 0, len(quote.Lines))
	for _, l := range quote.Lines {
		if l.Amount() <= 0 {
			continue
		}
		label := l.Title
		if l.Qty > 1 {
			label = fmt.Sprintf("%s × %d", l.Title, l.Qty)
		}
		prices = append(prices, payment.LabeledAmount{Label: label, Amount: l.Amount()})
	}

	return payment.InvoiceRequest{
		Title:       s.cfg.ShopName + " Order",
		Description: order.Contact.Name + " · " + order.Contact.Phone,
		Payload:     InvoicePayload(order.ID),
		Currency:    s.cfg.Currency,
		Prices:      prices,
	}
}

// InvoicePayload is the opaque invoice payload that identifies an order.
func InvoicePayload(orderID int64) string {
	return invoicePayloadPrefix + strconv.FormatInt(orderID, 10)
}

// ParseInvoicePayload extracts the order id from an invoice payload.
func ParseInvoicePayload(payload string) (int64, bool) {
	raw, ok := strings.CutPrefix(payload, invoicePayloadPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// RecentOrders returns the buyer's latest orders with their items
func (s *orderService) RecentOrders(ctx context.Context, buyerID int64) ([]*domain.Order, error) {
	orders, err := s.orders.ListByBuyer(ctx, buyerID, RecentOrdersLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent orders: %w", err)
	}
	return orders, nil
}

func (s *orderService) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, int, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	return s.orders.List(ctx, filter)
}

func (s *orderService) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	return s.orders.FindByID(ctx, id)
}

// UpdateStatus applies an admin status change if the lifecycle allows it
func (s *orderService) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status == status {
		return order, nil
	}
	if !order.Status.CanTransitionTo(status) {
		return nil, ErrInvalidTransition
	}

	if err := s.orders.UpdateStatus(ctx, id, order.Status, status); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}

	s.logger.Info("Order status updated",
		zap.Int64("order_id", id),
		zap.String("from", string(order.Status)),
		zap.String("to", string(status)),
	)
	order.Status = status
	return order, nil
}

// Stats assembles the admin overview
func (s *orderService) Stats(ctx context.Context) (*domain.Stats, error) {
	count, err := s.products.Count(ctx)
	if err != nil {
		return nil, err
	}
	revenue, last7, err := s.orders.Stats(ctx)
	if err != nil {
		return nil, err
	}
	low, err := s.products.LowStock(ctx, lowStockThreshold, lowStockLimit)
	if err != nil {
		return nil, err
	}
	return &domain.Stats{ProductCount: count, Revenue: revenue, Last7: last7, LowStock: low}, nil
}

// ValidatePayment checks that a payment for payload matches a placed ONLINE order
func (s *orderService) ValidatePayment(ctx context.Context, payload string, amount int64, currency string) (*domain.Order, error) {
	id, ok := ParseInvoicePayload(payload)
	if !ok {
		return nil, ErrPaymentMismatch
	}
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrPaymentMismatch
		}
		return nil, err
	}
	if order.PaymentMethod != domain.PaymentOnline ||
		order.Status != domain.StatusPlaced ||
		order.Total != amount ||
		!strings.EqualFold(currency, s.cfg.Currency) {
		return nil, ErrPaymentMismatch
	}
	return order, nil
}

// MarkPaid moves the order behind payload to paid. Repeated calls are no-ops.
func (s *orderService) MarkPaid(ctx context.Context, payload string) (*domain.Order, error) {
	id, ok := ParseInvoicePayload(payload)
	if !ok {
		return nil, ErrPaymentMismatch
	}
	return s.UpdateStatus(ctx, id, domain.StatusPaid)
}
