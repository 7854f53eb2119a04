// Package initdata verifies Telegram Mini App launch parameters (initData).
//
// The scheme: drop the hash field, sort the remaining key=value pairs, join them
// with '\n', and compare HMAC-SHA256(HMAC-SHA256("WebAppData", botToken), checkString)
// against the hex hash in constant time.
package initdata

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

const webAppDataKey = "WebAppData"

var (
	ErrMissingPayload   = errors.New("initdata: missing payload")
	ErrMissingHash      = errors.New("initdata: missing hash")
	ErrMalformedPayload = errors.New("initdata: malformed payload")
	ErrHashMismatch     = errors.New("initdata: hash mismatch")
	ErrNoSecret         = errors.New("initdata: bot token not configured")
	ErrExpired          = errors.New("initdata: auth_date too old")
	ErrMalformedUser    = errors.New("initdata: malformed user claim")
)

// User is the Telegram user claim embedded in initData. It identifies the buyer
// and may prefill contact data; it is never used for prices or amounts.
type User struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name,omitempty"`
	Username     string `json:"username,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	IsPremium    bool   `json:"is_premium,omitempty"`
	PhotoURL     string `json:"photo_url,omitempty"`
}

// DisplayName joins first and last name, falling back to the username and then "Customer".
func (u *User) DisplayName() string {
	if u == nil {
		return "Customer"
	}
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name != "" {
		return name
	}
	if u.Username != "" {
		return u.Username
	}
	return "Customer"
}

// Result is a successfully verified payload.
type Result struct {
	User     *User
	AuthDate time.Time
	QueryID  string
}

// BuyerID returns the user id, or nil when the payload carries no user.
func (r *Result) BuyerID() *int64 {
	if r == nil || r.User == nil || r.User.ID == 0 {
		return nil
	}
	id := r.User.ID
	return &id
}

// Verifier checks payloads against one bot token.
type Verifier struct {
	botToken string
	maxAge   time.Duration
	now      func() time.Time
}

// NewVerifier creates a verifier. A zero maxAge disables the auth_date freshness check.
func NewVerifier(botToken string, maxAge time.Duration) *Verifier {
	return &Verifier{botToken: botToken, maxAge: maxAge, now: time.Now}
}

// Verify validates payload and decodes its user claim.
func (v *Verifier) Verify(payload string) (*Result, error) {
	if v.botToken == "" {
		return nil, ErrNoSecret
	}
	if payload == "" {
		return nil, ErrMissingPayload
	}

	values, err := url.ParseQuery(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	hash := values.Get("hash")
	if hash == "" {
		return nil, ErrMissingHash
	}
	values.Del("hash")

	expected := Hash(values, v.botToken)
	if !hmac.Equal([]byte(expected), []byte(hash)) {
		return nil, ErrHashMismatch
	}

	result := &Result{QueryID: values.Get("query_id")}

	if raw := values.Get("auth_date"); raw != "" {
		secs, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: auth_date", ErrMalformedPayload)
		}
		result.AuthDate = time.Unix(secs, 0)
	}
	if v.maxAge > 0 && (result.AuthDate.IsZero() || v.now().Sub(result.AuthDate) > v.maxAge) {
		return nil, ErrExpired
	}

	if raw := values.Get("user"); raw != "" {
		var user User
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedUser, err)
		}
		result.User = &user
	}

	return result, nil
}

// Verify checks payload against sharedSecret without a freshness limit.
func Verify(payload, sharedSecret string) (*Result, error) {
	return NewVerifier(sharedSecret, 0).Verify(payload)
}

// CheckString builds the canonical data-check string of values (hash excluded).
func CheckString(values url.Values) string {
	pairs := make([]string, 0, len(values))
	for key, vals := range values {
		if key == "hash" {
			continue
		}
		for _, val := range vals {
			pairs = append(pairs, key+"="+val)
		}
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "\n")
}

// Hash computes the hex signature of values for botToken.
func Hash(values url.Values, botToken string) string {
	secret := hmac.New(sha256.New, []byte(webAppDataKey))
	secret.Write([]byte(botToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(CheckString(values)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Sign returns values encoded as an initData string with a valid hash appended.
func Sign(values url.Values, botToken string) string {
	signed := url.Values{}
	for k, v := range values {
		if k != "hash" {
			signed[k] = append([]string(nil), v...)
		}
	}
	hash := Hash(signed, botToken)
	return signed.Encode() + "&hash=" + hash
}

// NewPayload builds the fields Telegram sends for a user launch.
func NewPayload(user User, authDate time.Time) url.Values {
	raw, _ := json.Marshal(user)
	return url.Values{
		"user":      {string(raw)},
		"auth_date": {strconv.FormatInt(authDate.Unix(), 10)},
		"query_id":  {"AAH" + strconv.FormatInt(user.ID, 36)},
	}
}
