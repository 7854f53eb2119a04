// Package pricing derives authoritative cart totals from the catalog.
package pricing

import (
	"context"
	"fmt"

	"mini-mart/internal/domain"
)

// Catalog resolves products by identifier. Missing identifiers are simply absent
// from the result.
type Catalog interface {
	FindByIDs(ctx context.Context, ids []string) (map[string]*domain.Product, error)
}

// Engine prices carts. It never reads client-supplied prices or titles.
type Engine struct {
	catalog       Catalog
	onlineEnabled bool
}

// NewEngine creates an engine. onlineEnabled is true when a payment-provider
// credential is configured.
func NewEngine(catalog Catalog, onlineEnabled bool) *Engine {
	return &Engine{catalog: catalog, onlineEnabled: onlineEnabled}
}

// Price resolves each line against the catalog and computes the total and
// payment eligibility. Unknown products price at zero and keep their raw id as title.
// Quantities below one are treated as one.
func (e *Engine) Price(ctx context.Context, lines []domain.CartLine) (*domain.Quote, error) {
	quote := &domain.Quote{Lines: make([]domain.PricedLine, 0, len(lines))}

	if len(lines) > 0 {
		products, err := e.catalog.FindByIDs(ctx, uniqueIDs(lines))
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}

		for _, line := range lines {
			qty := line.Qty
			if qty < 1 {
				qty = 1
			}

			priced := domain.PricedLine{ProductID: line.ProductID, Title: line.ProductID, Qty: qty}
			if p, ok := products[line.ProductID]; ok && p != nil {
				priced.Title = p.Title
				priced.Price = p.Price
				priced.AgeRestricted = p.AgeRestricted
				priced.Known = true
			}

			quote.Total += priced.Amount()
			if priced.AgeRestricted {
				quote.Eligibility.AnyAgeRestricted = true
			}
			quote.Lines = append(quote.Lines, priced)
		}
	}

	quote.Eligibility = Eligibility(quote.Eligibility.AnyAgeRestricted, e.onlineEnabled)
	return quote, nil
}

// Eligibility applies the payment rules: COD is always allowed, UPI only without
// restricted goods, ONLINE only with a configured provider and no restricted goods.
func Eligibility(anyAgeRestricted, onlineEnabled bool) domain.PaymentEligibility {
	return domain.PaymentEligibility{
		AnyAgeRestricted: anyAgeRestricted,
		CODAllowed:       true,
		UPIAllowed:       !anyAgeRestricted,
		OnlineAllowed:    onlineEnabled && !anyAgeRestricted,
	}
}

func uniqueIDs(lines []domain.CartLine) []string {
	seen := make(map[string]struct{}, len(lines))
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ProductID]; ok {
			continue
		}
		seen[l.ProductID] = struct{}{}
		ids = append(ids, l.ProductID)
	}
	return ids
}
