package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var ErrInvoiceRejected = errors.New("payment provider rejected invoice")

// LabeledAmount is one invoice price component in minor units.
type LabeledAmount struct {
	Label  string
	Amount int64
}

// InvoiceRequest describes an ONLINE checkout invoice.
type InvoiceRequest struct {
	Title       string
	Description string
	Payload     string
	Currency    string
	Prices      []LabeledAmount
}

// InvoiceCreator creates a hosted payment link for an invoice.
type InvoiceCreator interface {
	CreateInvoiceLink(ctx context.Context, req InvoiceRequest) (string, error)
}

// BotRequester is the subset of *tgbotapi.BotAPI used for raw Bot API calls.
type BotRequester interface {
	MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error)
}

// TelegramInvoices creates invoice links through the Bot API with a payment provider token.
type TelegramInvoices struct {
	api           BotRequester
	providerToken string
}

func NewTelegramInvoices(api BotRequester, providerToken string) *TelegramInvoices {
	return &TelegramInvoices{api: api, providerToken: providerToken}
}

// CreateInvoiceLink calls createInvoiceLink and returns the hosted link.
func (t *TelegramInvoices) CreateInvoiceLink(ctx context.Context, req InvoiceRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	prices := make([]tgbotapi.LabeledPrice, 0, len(req.Prices))
	for _, p := range req.Prices {
		prices = append(prices, tgbotapi.LabeledPrice{Label: p.Label, Amount: int(p.Amount)})
	}

	params := tgbotapi.Params{}
	params["title"] = req.Title
	params["description"] = req.Description
	params["payload"] = req.Payload
	params["provider_token"] = t.providerToken
	params["currency"] = req.Currency
	if err := params.AddInterface("prices", prices); err != nil {
		return "", fmt.Errorf("failed to encode invoice prices: %w", err)
	}
	params.AddBool("need_name", true)
	params.AddBool("need_shipping_address", true)

	resp, err := t.api.MakeRequest("createInvoiceLink", params)
	if err != nil {
		return "", fmt.Errorf("failed to create invoice link: %w", err)
	}
	if resp == nil || !resp.Ok {
		return "", ErrInvoiceRejected
	}

	var link string
	if err := json.Unmarshal(resp.Result, &link); err != nil {
		return "", fmt.Errorf("failed to decode invoice link: %w", err)
	}
	if link == "" {
		return "", ErrInvoiceRejected
	}
	return link, nil
}
