// Package notify delivers best-effort order notifications off the request path.
package notify

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"mini-mart/internal/domain"
	"mini-mart/internal/money"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrDispatcherClosed = errors.New("notification dispatcher closed")

// Message is one queued notification.
type Message struct {
	ID   string
	Chat string
	Text string
}

// Config controls the dispatcher and the message content.
type Config struct {
	QueueSize   int
	SendTimeout time.Duration
	ChannelID   string
	WebAppURL   string
	Currency    string
}

// Dispatcher queues messages and sends them from a single worker goroutine.
// Enqueueing never blocks: a full queue drops the message. Send failures are
// logged and never retried.
type Dispatcher struct {
	messenger Messenger
	cfg       Config
	logger    *zap.Logger

	queue chan Message
	once  sync.Once
	mu    sync.RWMutex
	done  chan struct{}

	closed bool
}

func NewDispatcher(messenger Messenger, cfg Config, logger *zap.Logger) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}
	return &Dispatcher{
		messenger: messenger,
		cfg:       cfg,
		logger:    logger,
		queue:     make(chan Message, cfg.QueueSize),
		done:      make(chan struct{}),
	}
}

// Start launches the worker. Calling it more than once has no effect.
func (d *Dispatcher) Start() {
	d.once.Do(func() {
		go d.run()
	})
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for msg := range d.queue {
		d.deliver(msg)
	}
}

func (d *Dispatcher) deliver(msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.SendTimeout)
	defer cancel()

	if err := d.messenger.Send(ctx, msg.Chat, msg.Text); err != nil {
		d.logger.Warn("Notification delivery failed",
			zap.String("notification_id", msg.ID),
			zap.String("chat", msg.Chat),
			zap.Error(err),
		)
		return
	}
	d.logger.Debug("Notification delivered", zap.String("notification_id", msg.ID), zap.String("chat", msg.Chat))
}

// Enqueue queues msg without blocking. It reports whether the message was accepted.
func (d *Dispatcher) Enqueue(msg Message) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return false
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	select {
	case d.queue <- msg:
		return true
	default:
		d.logger.Warn("Notification queue full, dropping message",
			zap.String("notification_id", msg.ID),
			zap.String("chat", msg.Chat),
		)
		return false
	}
}

// Close stops accepting messages and waits for queued ones to drain or ctx to expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	d.Start()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// OrderPlaced queues the buyer confirmation and the operator channel summary.
func (d *Dispatcher) OrderPlaced(order *domain.Order) {
	if order.BuyerID != nil {
		d.Enqueue(Message{
			Chat: strconv.FormatInt(*order.BuyerID, 10),
			Text: BuyerConfirmation(order, d.cfg.Currency, d.cfg.WebAppURL),
		})
	}
	if d.cfg.ChannelID != "" {
		d.Enqueue(Message{
			Chat: d.cfg.ChannelID,
			Text: ChannelSummary(order, d.cfg.Currency),
		})
	}
}

// BuyerConfirmation is the direct message sent to the buyer after placement.
func BuyerConfirmation(order *domain.Order, currency, webAppURL string) string {
	method := string(order.PaymentMethod)
	if method == "" {
		method = "—"
	}
	lines := []string{
		"✅ *Order placed!*",
		"*Order:* #" + strconv.FormatInt(order.ID, 10),
		"*Total:* *" + money.Display(order.Total, currency) + "*",
		"*Method:* *" + method + "*",
		"",
	}
	if webAppURL != "" {
		lines = append(lines, "You can open the shop anytime: "+webAppURL)
	}
	lines = append(lines, "Type /myorders to view your recent orders.")
	return strings.Join(lines, "\n")
}

// ChannelSummary is the operator channel message for a new order.
func ChannelSummary(order *domain.Order, currency string) string {
	c := order.Contact
	return strings.Join([]string{
		"🧾 *New Order #" + strconv.FormatInt(order.ID, 10) + "*",
		"👤 " + orDash(c.Name),
		"📞 " + orDash(c.Phone),
		"🏠 " + orDash(c.Address),
		"🗓 " + orDash(c.Slot),
		"💴 " + money.Display(order.Total, currency),
		string(order.PaymentMethod),
	}, "\n")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return s
}
