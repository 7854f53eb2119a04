package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mini-mart/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrAdminNotFound      = errors.New("admin not found")
	ErrAdminAlreadyExists = errors.New("admin with this email already exists")
)

// AdminRepository defines the interface for admin account data access
type AdminRepository interface {
	Create(ctx context.Context, admin *domain.Admin) error
	FindByEmail(ctx context.Context, email string) (*domain.Admin, error)
	FindByID(ctx context.Context, id int64) (*domain.Admin, error)
	List(ctx context.Context) ([]*domain.Admin, error)
	Update(ctx context.Context, admin *domain.Admin) error
	Disable(ctx context.Context, id int64) error
}

type adminRepository struct {
	db *sql.DB
}

// NewAdminRepository creates a new instance of AdminRepository
func NewAdminRepository(db *sql.DB) AdminRepository {
	return &adminRepository{db: db}
}

const adminColumns = `id, email, name, password_hash, active, created_at`

func scanAdmin(row rowScanner) (*domain.Admin, error) {
	a := &domain.Admin{}
	if err := row.Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.Active, &a.CreatedAt); err != nil {
		return nil, err
	}
	return a, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Create inserts a new admin and sets its id and creation time
func (r *adminRepository) Create(ctx context.Context, admin *domain.Admin) error {
	query := `
		INSERT INTO admin_users (email, name, password_hash, active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query, admin.Email, admin.Name, admin.PasswordHash, admin.Active).
		Scan(&admin.ID, &admin.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAdminAlreadyExists
		}
		return fmt.Errorf("failed to create admin: %w", err)
	}
	return nil
}

func (r *adminRepository) FindByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admin_users WHERE email = $1`

	a, err := scanAdmin(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("failed to find admin by email: %w", err)
	}
	return a, nil
}

func (r *adminRepository) FindByID(ctx context.Context, id int64) (*domain.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admin_users WHERE id = $1`

	a, err := scanAdmin(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("failed to find admin by ID: %w", err)
	}
	return a, nil
}

func (r *adminRepository) List(ctx context.Context) ([]*domain.Admin, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+adminColumns+` FROM admin_users ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	defer rows.Close()

	admins := make([]*domain.Admin, 0)
	for rows.Next() {
		a, err := scanAdmin(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan admin: %w", err)
		}
		admins = append(admins, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating admins: %w", err)
	}
	return admins, nil
}

// Update writes name, password hash and active flag
func (r *adminRepository) Update(ctx context.Context, admin *domain.Admin) error {
	query := `UPDATE admin_users SET name = $2, password_hash = $3, active = $4 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, admin.ID, admin.Name, admin.PasswordHash, admin.Active)
	if err != nil {
		return fmt.Errorf("failed to update admin: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrAdminNotFound
	}
	return nil
}

// Disable deactivates an admin; accounts are never hard-deleted
func (r *adminRepository) Disable(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `UPDATE admin_users SET active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to disable admin: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrAdminNotFound
	}
	return nil
}
