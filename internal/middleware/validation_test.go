package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLine struct {
	ID  string `json:"id" validate:"required"`
	Qty int64  `json:"qty" validate:"gte=0,lte=999"`
}

type testRequest struct {
	InitData string     `json:"initData" validate:"required"`
	Method   string     `json:"paymentMethod" validate:"required,oneof=COD UPI"`
	Items    []testLine `json:"items" validate:"dive"`
}

// Feature: mini-mart, Property 10: Required field validation works
func TestProperty_RequiredFieldValidationWorks(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("missing required fields are rejected", prop.ForAll(
		func(includeInitData bool, includeMethod bool) bool {
			reqMap := map[string]interface{}{"items": []map[string]interface{}{{"id": "RICE5", "qty": 1}}}
			if includeInitData {
				reqMap["initData"] = "query_id=1&hash=abc"
			}
			if includeMethod {
				reqMap["paymentMethod"] = "COD"
			}

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/order", bytes.NewReader(reqBody))

			var testReq testRequest
			err := DecodeAndValidate(req, &testReq)

			if includeInitData && includeMethod {
				return err == nil
			}
			return err != nil
		},
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Feature: mini-mart, Property 11: Quantity bounds are enforced
func TestProperty_QuantityRangeValidation(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("quantities outside 0..999 are rejected", prop.ForAll(
		func(qty int64) bool {
			reqBody, _ := json.Marshal(map[string]interface{}{
				"initData":      "x",
				"paymentMethod": "UPI",
				"items":         []map[string]interface{}{{"id": "DAL1", "qty": qty}},
			})
			req := httptest.NewRequest("POST", "/order", bytes.NewReader(reqBody))

			var testReq testRequest
			err := DecodeAndValidate(req, &testReq)

			if qty >= 0 && qty <= 999 {
				return err == nil
			}
			return err != nil
		},
		gen.Int64Range(-100, 2000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestValidationErrorsUseJSONFieldNames(t *testing.T) {
	req := httptest.NewRequest("POST", "/order", strings.NewReader(`{"initData":"x","paymentMethod":"CARD","items":[{"qty":1}]}`))

	var testReq testRequest
	err := DecodeAndValidate(req, &testReq)
	require.Error(t, err)

	fields := map[string]string{}
	for _, e := range FormatValidationErrors(err) {
		fields[e.Field] = e.Message
	}
	assert.Equal(t, "Value must be one of: COD UPI", fields["paymentMethod"])
	assert.Equal(t, "This field is required", fields["items[0].id"])
}

func TestWriteDecodeError(t *testing.T) {
	var testReq testRequest

	malformed := DecodeAndValidate(httptest.NewRequest("POST", "/order", strings.NewReader(`{"items":`)), &testReq)
	assert.True(t, errors.Is(malformed, ErrMalformedBody))
	w := httptest.NewRecorder()
	WriteDecodeError(w, malformed)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), CodeInvalidRequest)

	invalid := DecodeAndValidate(httptest.NewRequest("POST", "/order", strings.NewReader(`{}`)), &testReq)
	w = httptest.NewRecorder()
	WriteDecodeError(w, invalid)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), CodeValidationFailed)
}
