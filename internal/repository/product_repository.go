package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mini-mart/internal/domain"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

const productColumns = `id, title, price, category, image, age_restricted, stock`

// ProductRepository defines the interface for catalog data access
type ProductRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]*domain.Product, error)
	List(ctx context.Context, category string) ([]*domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Upsert(ctx context.Context, product *domain.Product) error
	BulkUpsert(ctx context.Context, products []*domain.Product) (int, error)
	InsertIfAbsent(ctx context.Context, products []*domain.Product) (int, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	LowStock(ctx context.Context, threshold, limit int) ([]domain.Product, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	p := &domain.Product{}
	err := row.Scan(&p.ID, &p.Title, &p.Price, &p.Category, &p.Image, &p.AgeRestricted, &p.Stock)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// FindByID retrieves a single product
func (r *productRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return p, nil
}

// FindByIDs resolves a set of product ids in one round trip. Missing ids are absent from the map.
func (r *productRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*domain.Product, error) {
	out := make(map[string]*domain.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`

	rows, err := r.db.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		out[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return out, nil
}

// List returns products ordered by title, optionally restricted to one category
func (r *productRepository) List(ctx context.Context, category string) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	var args []any
	if category != "" {
		query += ` WHERE category = $1`
		args = append(args, category)
	}
	query += ` ORDER BY title ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := make([]*domain.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return products, nil
}

// Categories returns the distinct category names, sorted
func (r *productRepository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT category FROM products ORDER BY category ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]string, 0)
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

const upsertProductQuery = `
	INSERT INTO products (id, title, price, category, image, age_restricted, stock)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (id) DO UPDATE SET
		title = EXCLUDED.title,
		price = EXCLUDED.price,
		category = EXCLUDED.category,
		image = EXCLUDED.image,
		age_restricted = EXCLUDED.age_restricted,
		stock = EXCLUDED.stock
`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertProduct(ctx context.Context, db execer, p *domain.Product) error {
	_, err := db.ExecContext(ctx, upsertProductQuery,
		p.ID, p.Title, p.Price, p.Category, p.Image, p.AgeRestricted, p.Stock)
	return err
}

// Upsert creates the product or replaces every attribute of an existing one
func (r *productRepository) Upsert(ctx context.Context, product *domain.Product) error {
	if err := upsertProduct(ctx, r.db, product); err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}
	return nil
}

// BulkUpsert writes all products in a single transaction
func (r *productRepository) BulkUpsert(ctx context.Context, products []*domain.Product) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, p := range products {
		if err := upsertProduct(ctx, tx, p); err != nil {
			return 0, fmt.Errorf("failed to upsert product %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return len(products), nil
}

// InsertIfAbsent adds products whose id is not yet present and reports how many were inserted
func (r *productRepository) InsertIfAbsent(ctx context.Context, products []*domain.Product) (int, error) {
	query := `
		INSERT INTO products (id, title, price, category, image, age_restricted, stock)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	inserted := 0
	for _, p := range products {
		res, err := tx.ExecContext(ctx, query,
			p.ID, p.Title, p.Price, p.Category, p.Image, p.AgeRestricted, p.Stock)
		if err != nil {
			return 0, fmt.Errorf("failed to insert product %s: %w", p.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to get rows affected: %w", err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return inserted, nil
}

// Delete removes a product from the catalog
func (r *productRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *productRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

// LowStock returns products with stock at or below threshold, lowest first
func (r *productRepository) LowStock(ctx context.Context, threshold, limit int) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE stock <= $1 ORDER BY stock ASC, id ASC LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return products, nil
}
