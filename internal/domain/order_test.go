package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{StatusPlaced, StatusPaid, true},
		{StatusPlaced, StatusCancelled, true},
		{StatusPlaced, StatusShipped, true},
		{StatusPlaced, StatusDelivered, false},
		{StatusPaid, StatusShipped, true},
		{StatusPaid, StatusPlaced, false},
		{StatusShipped, StatusDelivered, true},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusPaid, false},
		{StatusCancelled, StatusCancelled, true},
		{OrderStatus("refunded"), OrderStatus("refunded"), false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, c.from.CanTransitionTo(c.to), "%s -> %s", c.from, c.to)
	}
}

func TestContactFallbackKeepsSubmittedFields(t *testing.T) {
	profile := &Profile{Name: "Asha", Phone: "+91 1", Address: "Home", DeliverySlot: "Evening", Geo: &Geo{Lat: 1, Lon: 2}}
	form := ContactForm{Phone: "+91 2", Note: "ring bell"}

	got := form.WithFallback(profile)

	assert.Equal(t, "Asha", got.Name)
	assert.Equal(t, "+91 2", got.Phone)
	assert.Equal(t, "Home", got.Address)
	assert.Equal(t, "Evening", got.Slot)
	assert.Equal(t, "ring bell", got.Note)
	assert.Equal(t, &Geo{Lat: 1, Lon: 2}, got.Geo)

	got.Geo.Lat = 9
	assert.Equal(t, 1.0, profile.Geo.Lat, "fallback geo must be a copy")
}

func TestEligibilityAllows(t *testing.T) {
	e := PaymentEligibility{CODAllowed: true}
	assert.True(t, e.Allows(PaymentCOD))
	assert.False(t, e.Allows(PaymentUPI))
	assert.False(t, e.Allows(PaymentOnline))
	assert.False(t, e.Allows(PaymentMethod("CARD")))
}
