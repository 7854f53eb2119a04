package domain

import "time"

// Profile is the best-known contact data of a buyer, keyed by Telegram user id.
type Profile struct {
	BuyerID      int64     `json:"tg_user_id"`
	Name         string    `json:"name"`
	Username     string    `json:"username,omitempty"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	DeliverySlot string    `json:"delivery_slot"`
	Geo          *Geo      `json:"geo"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProfilePatch carries optional profile fields; nil or empty means keep the stored value.
type ProfilePatch struct {
	Phone        string
	Address      string
	DeliverySlot string
	Geo          *Geo
}

func (p ProfilePatch) Empty() bool {
	return p.Phone == "" && p.Address == "" && p.DeliverySlot == "" && p.Geo == nil
}

// Admin is an operator account for the admin UI.
type Admin struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}
