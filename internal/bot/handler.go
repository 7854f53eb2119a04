// Package bot handles Telegram updates for the shop bot. The same handler
// serves long polling (cmd/bot) and the API webhook route.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mini-mart/internal/domain"
	"mini-mart/internal/money"
	"mini-mart/internal/notify"
	"mini-mart/internal/repository"
	"mini-mart/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Reply keyboard labels
const (
	ButtonMyOrders = "📦 My Orders"
	ButtonSupport  = "🆘 Support"
	ButtonPhone    = "📱 Share phone"
)

const myOrdersShown = 10

// Sender is the subset of *tgbotapi.BotAPI the handler uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error)
}

// Config holds the bot's shop settings
type Config struct {
	ShopName      string
	WebAppURL     string
	OwnerID       int64
	ChannelID     string
	SupportHandle string
	Currency      string
}

// Handler reacts to commands, shared contacts and locations, and payment updates.
type Handler struct {
	sender   Sender
	orders   service.OrderService
	profiles service.ProfileService
	cfg      Config
	logger   *zap.Logger
}

func NewHandler(sender Sender, orders service.OrderService, profiles service.ProfileService, cfg Config, logger *zap.Logger) *Handler {
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	if cfg.ShopName == "" {
		cfg.ShopName = "Mini Mart"
	}
	return &Handler{sender: sender, orders: orders, profiles: profiles, cfg: cfg, logger: logger}
}

// HandleUpdate processes one update. Failures are logged, never returned.
func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.PreCheckoutQuery != nil:
		h.handlePreCheckout(ctx, update.PreCheckoutQuery)
	case update.Message != nil:
		h.handleMessage(ctx, update.Message)
	}
}

func (h *Handler) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	switch {
	case msg.SuccessfulPayment != nil:
		h.handlePayment(ctx, msg)
	case msg.Contact != nil:
		h.handleContact(ctx, msg)
	case msg.Location != nil:
		h.handleLocation(ctx, msg)
	case msg.IsCommand():
		h.handleCommand(ctx, msg)
	case msg.Text == ButtonMyOrders:
		h.sendMyOrders(ctx, msg)
	case msg.Text == ButtonSupport:
		h.sendSupport(msg)
	}
}

func (h *Handler) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		if strings.TrimSpace(msg.CommandArguments()) == "sharephone" {
			h.askForPhone(msg.Chat.ID)
			return
		}
		h.sendWelcome(msg)
	case "ping":
		h.reply(msg.Chat.ID, "pong")
	case "whoami":
		h.reply(msg.Chat.ID, whoami(msg.From))
	case "me":
		h.sendProfile(ctx, msg)
	case "myorders":
		h.sendMyOrders(ctx, msg)
	case "setmenu":
		if h.ownerOnly(msg) {
			h.setMenu(msg.Chat.ID)
		}
	case "postshop":
		if h.ownerOnly(msg) {
			h.postShop(msg.Chat.ID)
		}
	default:
		h.reply(msg.Chat.ID, "Unknown command. Try /start")
	}
}

func (h *Handler) sendWelcome(msg *tgbotapi.Message) {
	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "there"
	}
	text := fmt.Sprintf("Hi %s! Welcome to %s.\nTap the button below to browse the shop and place an order.", name, h.cfg.ShopName)

	welcome := tgbotapi.NewMessage(msg.Chat.ID, text)
	welcome.ReplyMarkup = mainKeyboard()
	h.send(welcome)

	if h.cfg.WebAppURL != "" {
		shop := tgbotapi.NewMessage(msg.Chat.ID, "🛒 Open the shop")
		shop.ReplyMarkup = shopButton(h.cfg.WebAppURL)
		h.send(shop)
	}
}

func (h *Handler) askForPhone(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, "Please share your phone number so we can reach you about deliveries.")
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButtonContact(ButtonPhone)),
	)
	keyboard.OneTimeKeyboard = true
	msg.ReplyMarkup = keyboard
	h.send(msg)
}

func (h *Handler) handleContact(ctx context.Context, msg *tgbotapi.Message) {
	contact := msg.Contact
	if contact.UserID != 0 && contact.UserID != msg.From.ID {
		h.reply(msg.Chat.ID, "Please share your own contact.")
		return
	}

	if err := h.profiles.SavePhone(ctx, msg.From.ID, contact.PhoneNumber); err != nil {
		h.logger.Error("Failed to save phone", zap.Int64("tg_user_id", msg.From.ID), zap.Error(err))
		h.reply(msg.Chat.ID, "Sorry, we could not save your phone. Please try again later.")
		return
	}

	confirm := tgbotapi.NewMessage(msg.Chat.ID, "✅ Phone saved. It will be prefilled at checkout.")
	confirm.ReplyMarkup = mainKeyboard()
	h.send(confirm)
}

func (h *Handler) handleLocation(ctx context.Context, msg *tgbotapi.Message) {
	geo := domain.Geo{Lat: msg.Location.Latitude, Lon: msg.Location.Longitude}
	if err := h.profiles.SaveLocation(ctx, msg.From.ID, geo); err != nil {
		h.logger.Error("Failed to save location", zap.Int64("tg_user_id", msg.From.ID), zap.Error(err))
		h.reply(msg.Chat.ID, "Sorry, we could not save your location. Please try again later.")
		return
	}
	h.reply(msg.Chat.ID, "📍 Location saved for delivery.")
}

func (h *Handler) sendProfile(ctx context.Context, msg *tgbotapi.Message) {
	profile, err := h.profiles.Get(ctx, msg.From.ID)
	if errors.Is(err, repository.ErrProfileNotFound) {
		h.reply(msg.Chat.ID, "No profile yet. Open the shop or share your phone with /start sharephone.")
		return
	}
	if err != nil {
		h.logger.Error("Failed to load profile", zap.Int64("tg_user_id", msg.From.ID), zap.Error(err))
		h.reply(msg.Chat.ID, "Sorry, something went wrong. Please try again later.")
		return
	}
	h.reply(msg.Chat.ID, FormatProfile(profile))
}

func (h *Handler) sendMyOrders(ctx context.Context, msg *tgbotapi.Message) {
	orders, err := h.orders.RecentOrders(ctx, msg.From.ID)
	if err != nil {
		h.logger.Error("Failed to load orders", zap.Int64("tg_user_id", msg.From.ID), zap.Error(err))
		h.reply(msg.Chat.ID, "Sorry, we could not load your orders. Please try again later.")
		return
	}
	h.reply(msg.Chat.ID, FormatOrders(orders, h.cfg.Currency))
}

func (h *Handler) sendSupport(msg *tgbotapi.Message) {
	if h.cfg.SupportHandle == "" {
		h.reply(msg.Chat.ID, "Reply here with your question and our team will get back to you.")
		return
	}
	handle := "@" + strings.TrimPrefix(h.cfg.SupportHandle, "@")
	h.reply(msg.Chat.ID, "Need help? Message "+handle+" and include your order number.")
}

func (h *Handler) ownerOnly(msg *tgbotapi.Message) bool {
	if h.cfg.OwnerID == 0 || msg.From.ID != h.cfg.OwnerID {
		h.reply(msg.Chat.ID, "This command is for the shop owner.")
		return false
	}
	return true
}

// setMenu points the chat menu button at the Mini App
func (h *Handler) setMenu(chatID int64) {
	if h.cfg.WebAppURL == "" {
		h.reply(chatID, "WEBAPP_URL is not configured.")
		return
	}

	params := tgbotapi.Params{}
	err := params.AddInterface("menu_button", map[string]any{
		"type":    "web_app",
		"text":    "Shop",
		"web_app": map[string]string{"url": h.cfg.WebAppURL},
	})
	if err == nil {
		_, err = h.sender.MakeRequest("setChatMenuButton", params)
	}
	if err != nil {
		h.logger.Error("Failed to set menu button", zap.Error(err))
		h.reply(chatID, "Could not set the menu button.")
		return
	}
	h.reply(chatID, "✅ Menu button set.")
}

// postShop publishes a shop entry point to the channel
func (h *Handler) postShop(chatID int64) {
	if h.cfg.ChannelID == "" || h.cfg.WebAppURL == "" {
		h.reply(chatID, "CHANNEL_ID and WEBAPP_URL must be configured.")
		return
	}

	post, err := notify.NewMessage(h.cfg.ChannelID, fmt.Sprintf("🛍 %s is open! Order groceries right here in Telegram.", h.cfg.ShopName))
	if err != nil {
		h.logger.Error("Invalid channel id", zap.String("channel", h.cfg.ChannelID), zap.Error(err))
		h.reply(chatID, "CHANNEL_ID is invalid.")
		return
	}
	post.ReplyMarkup = shopButton(h.cfg.WebAppURL)

	if _, err := h.sender.Send(post); err != nil {
		h.logger.Error("Failed to post shop to channel", zap.Error(err))
		h.reply(chatID, "Could not post to the channel.")
		return
	}
	h.reply(chatID, "✅ Posted to the channel.")
}

// handlePreCheckout approves only payments that match a placed ONLINE order
func (h *Handler) handlePreCheckout(ctx context.Context, q *tgbotapi.PreCheckoutQuery) {
	answer := tgbotapi.PreCheckoutConfig{PreCheckoutQueryID: q.ID, OK: true}

	order, err := h.orders.ValidatePayment(ctx, q.InvoicePayload, int64(q.TotalAmount), q.Currency)
	if err != nil {
		h.logger.Warn("Rejected pre-checkout query",
			zap.String("payload", q.InvoicePayload),
			zap.Int("amount", q.TotalAmount),
			zap.Error(err),
		)
		answer.OK = false
		answer.ErrorMessage = "This order can no longer be paid. Please place it again from the shop."
	} else {
		h.logger.Info("Approved pre-checkout query", zap.Int64("order_id", order.ID))
	}

	if _, err := h.sender.Request(answer); err != nil {
		h.logger.Error("Failed to answer pre-checkout query", zap.Error(err))
	}
}

func (h *Handler) handlePayment(ctx context.Context, msg *tgbotapi.Message) {
	payment := msg.SuccessfulPayment

	order, err := h.orders.MarkPaid(ctx, payment.InvoicePayload)
	if err != nil {
		h.logger.Error("Failed to mark order paid",
			zap.String("payload", payment.InvoicePayload),
			zap.String("charge_id", payment.TelegramPaymentChargeID),
			zap.Error(err),
		)
		h.reply(msg.Chat.ID, "We received your payment. Our team will confirm your order shortly.")
		return
	}

	h.logger.Info("Order paid",
		zap.Int64("order_id", order.ID),
		zap.String("charge_id", payment.TelegramPaymentChargeID),
	)
	h.reply(msg.Chat.ID, fmt.Sprintf("✅ Payment received for order #%d. Thank you!", order.ID))
}

func (h *Handler) reply(chatID int64, text string) {
	h.send(tgbotapi.NewMessage(chatID, text))
}

func (h *Handler) send(c tgbotapi.Chattable) {
	if _, err := h.sender.Send(c); err != nil {
		h.logger.Warn("Failed to send bot message", zap.Error(err))
	}
}

func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonMyOrders),
			tgbotapi.NewKeyboardButton(ButtonSupport),
		),
	)
	keyboard.ResizeKeyboard = true
	return keyboard
}

func shopButton(url string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL("Open shop", url)),
	)
}

func whoami(u *tgbotapi.User) string {
	text := fmt.Sprintf("Your Telegram id: %d", u.ID)
	if u.UserName != "" {
		text += "\nUsername: @" + u.UserName
	}
	return text
}

// FormatProfile renders a stored profile for chat
func FormatProfile(p *domain.Profile) string {
	var b strings.Builder
	b.WriteString("👤 Your profile\n")
	fmt.Fprintf(&b, "Name: %s\n", orDash(p.Name))
	fmt.Fprintf(&b, "Phone: %s\n", orDash(p.Phone))
	fmt.Fprintf(&b, "Address: %s\n", orDash(p.Address))
	fmt.Fprintf(&b, "Delivery slot: %s", orDash(p.DeliverySlot))
	if p.Geo != nil {
		fmt.Fprintf(&b, "\nLocation: %.5f, %.5f", p.Geo.Lat, p.Geo.Lon)
	}
	return b.String()
}

// FormatOrders renders the newest orders for chat
func FormatOrders(orders []*domain.Order, currency string) string {
	if len(orders) == 0 {
		return "You have no orders yet."
	}

	var b strings.Builder
	b.WriteString("📦 Your recent orders")
	for i, o := range orders {
		if i == myOrdersShown {
			break
		}
		fmt.Fprintf(&b, "\n#%d · %s · %s · %s · %s",
			o.ID,
			o.CreatedAt.Format("02 Jan 15:04"),
			money.Display(o.Total, currency),
			o.PaymentMethod,
			o.Status,
		)
	}
	return b.String()
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return s
}
