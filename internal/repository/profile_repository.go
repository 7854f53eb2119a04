package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mini-mart/internal/domain"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
)

// ProfileRepository stores buyer contact details keyed by Telegram user id
type ProfileRepository interface {
	Get(ctx context.Context, buyerID int64) (*domain.Profile, error)
	Touch(ctx context.Context, buyerID int64, name, username string) error
	Merge(ctx context.Context, buyerID int64, patch domain.ProfilePatch) error
	SetPhone(ctx context.Context, buyerID int64, phone string) error
	SetGeo(ctx context.Context, buyerID int64, geo domain.Geo) error
	List(ctx context.Context, query string, page, pageSize int) ([]*domain.Profile, int, error)
}

type profileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new instance of ProfileRepository
func NewProfileRepository(db *sql.DB) ProfileRepository {
	return &profileRepository{db: db}
}

const profileColumns = `tg_user_id, name, username, phone, address, delivery_slot, geo_lat, geo_lon, updated_at`

func scanProfile(row rowScanner) (*domain.Profile, error) {
	p := &domain.Profile{}
	var (
		name, username, phone, address, slot sql.NullString
		lat, lon                             sql.NullFloat64
	)
	if err := row.Scan(&p.BuyerID, &name, &username, &phone, &address, &slot, &lat, &lon, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Name = name.String
	p.Username = username.String
	p.Phone = phone.String
	p.Address = address.String
	p.DeliverySlot = slot.String
	if lat.Valid && lon.Valid {
		p.Geo = &domain.Geo{Lat: lat.Float64, Lon: lon.Float64}
	}
	return p, nil
}

func (r *profileRepository) Get(ctx context.Context, buyerID int64) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE tg_user_id = $1`

	p, err := scanProfile(r.db.QueryRowContext(ctx, query, buyerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	return p, nil
}

// Touch records a buyer's Telegram identity. A stored name is kept; the username is refreshed when present.
func (r *profileRepository) Touch(ctx context.Context, buyerID int64, name, username string) error {
	query := `
		INSERT INTO profiles (tg_user_id, name, username)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''))
		ON CONFLICT (tg_user_id) DO UPDATE SET
			name = COALESCE(profiles.name, EXCLUDED.name),
			username = COALESCE(EXCLUDED.username, profiles.username)
	`

	if _, err := r.db.ExecContext(ctx, query, buyerID, name, username); err != nil {
		return fmt.Errorf("failed to touch profile: %w", err)
	}
	return nil
}

// Merge overwrites only the fields set in patch
func (r *profileRepository) Merge(ctx context.Context, buyerID int64, patch domain.ProfilePatch) error {
	query := `
		INSERT INTO profiles (tg_user_id, phone, address, delivery_slot, geo_lat, geo_lon, updated_at)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), $5, $6, NOW())
		ON CONFLICT (tg_user_id) DO UPDATE SET
			phone = COALESCE(NULLIF($2, ''), profiles.phone),
			address = COALESCE(NULLIF($3, ''), profiles.address),
			delivery_slot = COALESCE(NULLIF($4, ''), profiles.delivery_slot),
			geo_lat = COALESCE($5, profiles.geo_lat),
			geo_lon = COALESCE($6, profiles.geo_lon),
			updated_at = NOW()
	`

	var lat, lon sql.NullFloat64
	if patch.Geo != nil {
		lat = sql.NullFloat64{Float64: patch.Geo.Lat, Valid: true}
		lon = sql.NullFloat64{Float64: patch.Geo.Lon, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query, buyerID, patch.Phone, patch.Address, patch.DeliverySlot, lat, lon)
	if err != nil {
		return fmt.Errorf("failed to merge profile: %w", err)
	}
	return nil
}

func (r *profileRepository) SetPhone(ctx context.Context, buyerID int64, phone string) error {
	query := `
		INSERT INTO profiles (tg_user_id, phone, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (tg_user_id) DO UPDATE SET phone = $2, updated_at = NOW()
	`

	if _, err := r.db.ExecContext(ctx, query, buyerID, phone); err != nil {
		return fmt.Errorf("failed to set profile phone: %w", err)
	}
	return nil
}

func (r *profileRepository) SetGeo(ctx context.Context, buyerID int64, geo domain.Geo) error {
	query := `
		INSERT INTO profiles (tg_user_id, geo_lat, geo_lon, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (tg_user_id) DO UPDATE SET geo_lat = $2, geo_lon = $3, updated_at = NOW()
	`

	if _, err := r.db.ExecContext(ctx, query, buyerID, geo.Lat, geo.Lon); err != nil {
		return fmt.Errorf("failed to set profile location: %w", err)
	}
	return nil
}

// List returns profiles ordered by most recent update, filtered by name, phone or username
func (r *profileRepository) List(ctx context.Context, query string, page, pageSize int) ([]*domain.Profile, int, error) {
	where := ""
	var args []any
	if query != "" {
		args = append(args, "%"+query+"%")
		where = ` WHERE (name ILIKE $1 OR phone ILIKE $1 OR username ILIKE $1)`
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count profiles: %w", err)
	}

	sqlQuery := fmt.Sprintf(`SELECT %s FROM profiles%s ORDER BY updated_at DESC LIMIT $%d OFFSET $%d`,
		profileColumns, where, len(args)+1, len(args)+2)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	profiles := make([]*domain.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating profiles: %w", err)
	}
	return profiles, total, nil
}
