package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"mini-mart/internal/domain"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingMessenger struct {
	mu    sync.Mutex
	sent  []Message
	err   error
	block chan struct{}
}

func (r *recordingMessenger) Send(ctx context.Context, chat, text string) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, Message{Chat: chat, Text: text})
	return r.err
}

func (r *recordingMessenger) messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.sent...)
}

func testOrder() *domain.Order {
	buyer := int64(777)
	return &domain.Order{
		ID:            42,
		BuyerID:       &buyer,
		Contact:       domain.ContactForm{Name: "Asha", Phone: "+91 98"},
		Total:         179800,
		PaymentMethod: domain.PaymentCOD,
	}
}

func TestOrderPlacedNotifiesBuyerAndChannel(t *testing.T) {
	m := &recordingMessenger{}
	d := NewDispatcher(m, Config{ChannelID: "@MartChannel", Currency: "INR", WebAppURL: "https://shop"}, zap.NewNop())
	d.Start()

	d.OrderPlaced(testOrder())
	require.NoError(t, d.Close(context.Background()))

	sent := m.messages()
	require.Len(t, sent, 2)
	assert.Equal(t, "777", sent[0].Chat)
	assert.Contains(t, sent[0].Text, "₹1798.00")
	assert.Contains(t, sent[0].Text, "https://shop")
	assert.Equal(t, "@MartChannel", sent[1].Chat)
	assert.Contains(t, sent[1].Text, "New Order #42")
	assert.Contains(t, sent[1].Text, "🏠 —")
}

func TestOrderPlacedWithoutBuyerOrChannel(t *testing.T) {
	m := &recordingMessenger{}
	d := NewDispatcher(m, Config{}, zap.NewNop())
	d.Start()

	order := testOrder()
	order.BuyerID = nil
	d.OrderPlaced(order)
	require.NoError(t, d.Close(context.Background()))

	assert.Empty(t, m.messages())
}

func TestSendFailuresAreSwallowed(t *testing.T) {
	m := &recordingMessenger{err: errors.New("telegram down")}
	d := NewDispatcher(m, Config{ChannelID: "-1001"}, zap.NewNop())
	d.Start()

	d.OrderPlaced(testOrder())
	d.OrderPlaced(testOrder())
	require.NoError(t, d.Close(context.Background()))

	assert.Len(t, m.messages(), 4)
}

func TestEnqueueNeverBlocks(t *testing.T) {
	m := &recordingMessenger{block: make(chan struct{})}
	d := NewDispatcher(m, Config{QueueSize: 1}, zap.NewNop())
	d.Start()

	accepted := 0
	start := time.Now()
	for i := 0; i < 10; i++ {
		if d.Enqueue(Message{Chat: "1", Text: "x"}) {
			accepted++
		}
	}
	assert.Less(t, time.Since(start), time.Second)
	assert.LessOrEqual(t, accepted, 2)

	close(m.block)
	require.NoError(t, d.Close(context.Background()))
	assert.False(t, d.Enqueue(Message{Chat: "1", Text: "late"}))
}

func TestCloseHonorsDeadline(t *testing.T) {
	m := &recordingMessenger{block: make(chan struct{})}
	d := NewDispatcher(m, Config{}, zap.NewNop())
	d.Start()
	d.Enqueue(Message{Chat: "1", Text: "stuck"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Close(ctx), context.DeadlineExceeded)
	close(m.block)
}

type fakeBot struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.err
}

func TestTelegramMessengerAddressing(t *testing.T) {
	bot := &fakeBot{}
	m := NewTelegramMessenger(bot)

	require.NoError(t, m.Send(context.Background(), "12345", "hi"))
	require.NoError(t, m.Send(context.Background(), "@MartChannel", "hello"))
	assert.Error(t, m.Send(context.Background(), "not a chat", "x"))

	require.Len(t, bot.sent, 2)
	first := bot.sent[0].(tgbotapi.MessageConfig)
	assert.Equal(t, int64(12345), first.ChatID)
	assert.Equal(t, tgbotapi.ModeMarkdown, first.ParseMode)
	second := bot.sent[1].(tgbotapi.MessageConfig)
	assert.Equal(t, "@MartChannel", second.ChannelUsername)
}

func TestChannelSummaryLayout(t *testing.T) {
	text := ChannelSummary(testOrder(), "INR")
	lines := strings.Split(text, "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "👤 Asha", lines[1])
	assert.Equal(t, "💴 ₹1798.00", lines[5])
	assert.Equal(t, "COD", lines[6])
}
