package domain

// Product represents a catalog entry. Price is in minor currency units.
type Product struct {
	ID            string `json:"id" db:"id"`
	Title         string `json:"title" db:"title"`
	Price         int64  `json:"price" db:"price"`
	Category      string `json:"category" db:"category"`
	Image         string `json:"image" db:"image"`
	AgeRestricted bool   `json:"age_restricted" db:"age_restricted"`
	Stock         int    `json:"stock" db:"stock"`
}
