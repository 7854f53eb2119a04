package repository

import (
	"context"

	"mini-mart/internal/domain"
)

// SeedProducts is the starter catalog inserted by SeedCatalog.
func SeedProducts() []*domain.Product {
	return []*domain.Product{
		{ID: "RICE5", Title: "Basmati Rice 5kg", Price: 89900, Category: "Rice & Grains", Stock: 500},
		{ID: "ATTA5", Title: "Wheat Flour 5kg", Price: 34900, Category: "Flour & Atta", Stock: 500},
		{ID: "DAL1", Title: "Toor Dal 1kg", Price: 19900, Category: "Pulses", Stock: 500},
		{ID: "CHAITEA", Title: "Masala Tea 250g", Price: 24900, Category: "Tea & Beverages", Stock: 500},
		{ID: "NP_MIX", Title: "South Mix 400g", Price: 14900, Category: "Snacks & Namkeen", Stock: 500},
		{ID: "BIS1", Title: "Marie Biscuits 500g", Price: 11900, Category: "Snacks & Namkeen", Stock: 500},
		{ID: "BEER6", Title: "Lager Beer 6-pack", Price: 79900, Category: "Alcohol", AgeRestricted: true, Stock: 200},
		{ID: "SMOKPK", Title: "Cigarette Pack", Price: 34900, Category: "Tobacco", AgeRestricted: true, Stock: 200},
	}
}

// SeedCatalog inserts the starter catalog, leaving existing products untouched.
func SeedCatalog(ctx context.Context, products ProductRepository) (int, error) {
	return products.InsertIfAbsent(ctx, SeedProducts())
}
