package domain

// CartLine is a request-scoped (productId, quantity) pair.
type CartLine struct {
	ProductID string
	Qty       int64
}

// PricedLine is a cart line resolved against the catalog at pricing time.
type PricedLine struct {
	ProductID     string `json:"id"`
	Title         string `json:"title"`
	Price         int64  `json:"price"`
	Qty           int64  `json:"qty"`
	AgeRestricted bool   `json:"ageRestricted"`
	Known         bool   `json:"-"`
}

// Amount is price × qty in minor units.
func (l PricedLine) Amount() int64 {
	return l.Price * l.Qty
}

// PaymentEligibility lists the payment rails a priced cart may use.
type PaymentEligibility struct {
	AnyAgeRestricted bool `json:"anyAgeRestricted"`
	CODAllowed       bool `json:"codAllowed"`
	UPIAllowed       bool `json:"upiAllowed"`
	OnlineAllowed    bool `json:"onlineAllowed"`
}

// Allows reports whether the given method may be used for the cart.
func (e PaymentEligibility) Allows(method PaymentMethod) bool {
	switch method {
	case PaymentCOD:
		return e.CODAllowed
	case PaymentUPI:
		return e.UPIAllowed
	case PaymentOnline:
		return e.OnlineAllowed
	default:
		return false
	}
}

// Quote is the authoritative server-side pricing of a cart.
type Quote struct {
	Lines       []PricedLine
	Total       int64
	Eligibility PaymentEligibility
}
