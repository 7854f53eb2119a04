package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mini-mart/internal/domain"
	"mini-mart/internal/repository"
)

var ErrInvalidProduct = errors.New("invalid product")

// CatalogService defines the interface for catalog browsing and administration
type CatalogService interface {
	Categories(ctx context.Context) ([]string, error)
	Products(ctx context.Context, category string) ([]*domain.Product, error)
	SaveProduct(ctx context.Context, product *domain.Product) error
	ImportProducts(ctx context.Context, products []*domain.Product) (int, error)
	DeleteProduct(ctx context.Context, id string) error
	Seed(ctx context.Context) (int, error)
}

type catalogService struct {
	products repository.ProductRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(products repository.ProductRepository) CatalogService {
	return &catalogService{products: products}
}

func (s *catalogService) Categories(ctx context.Context) ([]string, error) {
	return s.products.Categories(ctx)
}

func (s *catalogService) Products(ctx context.Context, category string) ([]*domain.Product, error) {
	return s.products.List(ctx, strings.TrimSpace(category))
}

// SaveProduct creates or replaces a product
func (s *catalogService) SaveProduct(ctx context.Context, product *domain.Product) error {
	if err := normalizeProduct(product); err != nil {
		return err
	}
	return s.products.Upsert(ctx, product)
}

// ImportProducts upserts a batch atomically; one invalid product rejects the batch
func (s *catalogService) ImportProducts(ctx context.Context, products []*domain.Product) (int, error) {
	for i, p := range products {
		if err := normalizeProduct(p); err != nil {
			return 0, fmt.Errorf("item %d: %w", i, err)
		}
	}
	return s.products.BulkUpsert(ctx, products)
}

func (s *catalogService) DeleteProduct(ctx context.Context, id string) error {
	return s.products.Delete(ctx, id)
}

// Seed inserts the starter catalog without overwriting existing products
func (s *catalogService) Seed(ctx context.Context) (int, error) {
	return repository.SeedCatalog(ctx, s.products)
}

func normalizeProduct(p *domain.Product) error {
	if p == nil {
		return ErrInvalidProduct
	}
	p.ID = strings.TrimSpace(p.ID)
	p.Title = strings.TrimSpace(p.Title)
	p.Category = strings.TrimSpace(p.Category)
	if p.ID == "" || p.Title == "" || p.Category == "" || p.Price < 0 || p.Stock < 0 {
		return ErrInvalidProduct
	}
	return nil
}
