package payment

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUPILink(t *testing.T) {
	cfg := UPIConfig{PayeeVPA: "mart@okbank", PayeeName: "South Asia Mart", Currency: "INR"}

	link := cfg.UPILink(179800, "Order 42")

	require.True(t, strings.HasPrefix(link, "upi://pay?"))
	q, err := url.ParseQuery(strings.TrimPrefix(link, "upi://pay?"))
	require.NoError(t, err)
	assert.Equal(t, "mart@okbank", q.Get("pa"))
	assert.Equal(t, "South Asia Mart", q.Get("pn"))
	assert.Equal(t, "1798.00", q.Get("am"))
	assert.Equal(t, "INR", q.Get("cu"))
	assert.Equal(t, "Order 42", q.Get("tn"))
}

func TestUPILinkDefaultsCurrency(t *testing.T) {
	link := UPIConfig{PayeeVPA: "x@y"}.UPILink(100, "n")
	assert.Contains(t, link, "cu=INR")
}
