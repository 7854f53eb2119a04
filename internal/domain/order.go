package domain

import "time"

// PaymentMethod is how the buyer pays for an order.
type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "COD"
	PaymentUPI    PaymentMethod = "UPI"
	PaymentOnline PaymentMethod = "ONLINE"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCOD, PaymentUPI, PaymentOnline:
		return true
	}
	return false
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPlaced    OrderStatus = "placed"
	StatusPaid      OrderStatus = "paid"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

var statusTransitions = map[OrderStatus][]OrderStatus{
	StatusPlaced:    {StatusPaid, StatusShipped, StatusCancelled},
	StatusPaid:      {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusDelivered},
	StatusDelivered: nil,
	StatusCancelled: nil,
}

func (s OrderStatus) Valid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// CanTransitionTo reports whether an order in status s may move to next.
// Re-applying the current status is allowed and treated as a no-op.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return s.Valid()
	}
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Geo is an optional delivery location.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ContactForm holds the buyer-supplied delivery details.
type ContactForm struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Slot    string `json:"slot"`
	Note    string `json:"note"`
	Geo     *Geo   `json:"geo,omitempty"`
}

// WithFallback fills empty contact fields from the stored profile.
// The note is never taken from the profile.
func (f ContactForm) WithFallback(p *Profile) ContactForm {
	if p == nil {
		return f
	}
	if f.Name == "" {
		f.Name = p.Name
	}
	if f.Phone == "" {
		f.Phone = p.Phone
	}
	if f.Address == "" {
		f.Address = p.Address
	}
	if f.Slot == "" {
		f.Slot = p.DeliverySlot
	}
	if f.Geo == nil && p.Geo != nil {
		geo := *p.Geo
		f.Geo = &geo
	}
	return f
}

// Order is a placed order. Total always equals the sum of its items' amounts.
type Order struct {
	ID            int64         `json:"id"`
	BuyerID       *int64        `json:"tg_user_id,omitempty"`
	Contact       ContactForm   `json:"contact"`
	Total         int64         `json:"total"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Status        OrderStatus   `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	Items         []OrderItem   `json:"items,omitempty"`
}

// OrderItem snapshots a product at order time.
type OrderItem struct {
	ID        int64  `json:"id"`
	OrderID   int64  `json:"order_id"`
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	Price     int64  `json:"price"`
	Qty       int64  `json:"qty"`
}

// ItemsFromQuote snapshots the priced lines as order items.
func ItemsFromQuote(q *Quote) []OrderItem {
	items := make([]OrderItem, 0, len(q.Lines))
	for _, l := range q.Lines {
		items = append(items, OrderItem{
			ProductID: l.ProductID,
			Title:     l.Title,
			Price:     l.Price,
			Qty:       l.Qty,
		})
	}
	return items
}

// ItemsTotal sums price × qty over the items.
func ItemsTotal(items []OrderItem) int64 {
	var total int64
	for _, it := range items {
		total += it.Price * it.Qty
	}
	return total
}

// OrderFilter narrows admin order listings.
type OrderFilter struct {
	Status   OrderStatus
	Query    string
	Page     int
	PageSize int
}

// DailySales is one row of the last-seven-days summary.
type DailySales struct {
	Day     string `json:"day"`
	Orders  int    `json:"orders"`
	Revenue int64  `json:"revenue"`
}

// Stats is the admin overview.
type Stats struct {
	ProductCount int          `json:"product_count"`
	Revenue      int64        `json:"revenue"`
	Last7        []DailySales `json:"last7"`
	LowStock     []Product    `json:"low_stock"`
}
