package transport

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mini-mart/internal/initdata"
	"mini-mart/internal/middleware"
	"mini-mart/internal/payment"
	"mini-mart/internal/pricing"
	"mini-mart/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testBotKey    = "bot-key"
	testLegacyKey = "legacy-admin-key"
)

type testApp struct {
	router   chi.Router
	products *mockProductRepository
	orders   *mockOrderRepository
	profiles *mockProfileRepository
	admins   *mockAdminRepository
	invoices *mockInvoices
	notifier *recordingNotifier
	adminSvc service.AdminService
}

func passthrough(next http.Handler) http.Handler { return next }

func newTestApp(onlineEnabled bool) *testApp {
	app := &testApp{
		products: newMockProductRepository(),
		orders:   newMockOrderRepository(),
		profiles: newMockProfileRepository(),
		admins:   newMockAdminRepository(),
		invoices: &mockInvoices{link: "https://t.me/$invoice"},
		notifier: &recordingNotifier{},
	}
	logger := zap.NewNop()
	verifier := initdata.NewVerifier(testBotToken, 0)

	var invoices payment.InvoiceCreator
	if onlineEnabled {
		invoices = app.invoices
	}

	orderSvc := service.NewOrderService(
		app.orders, app.products, app.profiles,
		pricing.NewEngine(app.products, onlineEnabled),
		verifier, invoices, app.notifier,
		service.OrderServiceConfig{
			ShopName:      "Test Mart",
			Currency:      "INR",
			OnlineEnabled: onlineEnabled,
			UPI:           payment.UPIConfig{PayeeVPA: "mart@okbank", PayeeName: "Test Mart", Currency: "INR"},
		},
		logger,
	)
	catalogSvc := service.NewCatalogService(app.products)
	profileSvc := service.NewProfileService(app.profiles, verifier)
	app.adminSvc = service.NewAdminService(app.admins, "test-secret", time.Hour)

	r := chi.NewRouter()
	NewShopHandler(catalogSvc, orderSvc, logger).RegisterRoutes(r)
	NewOrderHandler(orderSvc, logger).RegisterRoutes(r, passthrough, middleware.RequireBotKey(testBotKey, logger))
	NewProfileHandler(profileSvc, logger).RegisterRoutes(r)
	NewAdminHandler(app.adminSvc, catalogSvc, orderSvc, profileSvc, logger).RegisterRoutes(
		r, passthrough, middleware.AdminAuthMiddleware(app.adminSvc, testLegacyKey, logger))
	app.router = r
	return app
}

func (a *testApp) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode[middleware.ErrorResponse](t, w)
	require.False(t, body.OK)
	return body.Error
}

// tamper flips the last hex digit of the hash field.
func tamper(payload string) string {
	last := payload[len(payload)-1]
	replacement := "0"
	if last == '0' {
		replacement = "1"
	}
	return strings.TrimSuffix(payload, string(last)) + replacement
}
