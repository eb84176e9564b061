// Package testutils builds a fully wired API on in-memory infrastructure
// for HTTP level tests.
package testutils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amirasaad/fxpay/infra/cache"
	"github.com/amirasaad/fxpay/infra/eventbus"
	"github.com/amirasaad/fxpay/infra/provider/exchangerateapi"
	"github.com/amirasaad/fxpay/infra/provider/mockpayment"
	"github.com/amirasaad/fxpay/infra/repository/memory"
	"github.com/amirasaad/fxpay/pkg/app"
	"github.com/amirasaad/fxpay/pkg/config"
	"github.com/amirasaad/fxpay/pkg/utils"
	"github.com/amirasaad/fxpay/webapi"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// JwtSecret signs tokens in tests.
const JwtSecret = "test-secret"

// Env is a running API and the fakes behind it.
type Env struct {
	App       *fiber.App
	Core      *app.App
	Processor *mockpayment.MockPaymentProvider
	Rates     *exchangerateapi.FakeExchangeRate
	Store     *memory.Store
}

// Config returns an application config suitable for tests.
func Config() *config.App {
	return &config.App{
		Env: "test",
		Server: &config.Server{
			Scheme:      "http",
			Host:        "localhost",
			Port:        3000,
			ProxyHeader: fiber.HeaderXForwardedFor,
			// app.Test connections come from 0.0.0.0
			TrustedProxies: []string{"0.0.0.0"},
		},
		Log:  &config.Log{Format: "text"},
		DB:   &config.DB{},
		Auth: &config.Auth{Jwt: &config.Jwt{Secret: JwtSecret, Expiry: time.Hour}},
		Exchange: &config.Exchange{
			SupportedCurrencies: []string{"USD", "EUR", "GBP", "JPY", "SGD", "AUD"},
			MinimumAmounts:      map[string]string{"USD": "0.50"},
		},
		ExchangeRateApi:   &config.ExchangeRateApi{},
		ExchangeRateCache: &config.ExchangeRateCache{TTL: time.Minute, Prefix: "exr:rate:"},
		Redis:             &config.Redis{KeyPrefix: "fxpay:"},
		RateLimit:         &config.RateLimit{MaxRequests: 1000, Window: time.Minute},
		PaymentProviders: &config.PaymentProviders{
			Name:   "mock",
			Stripe: &config.Stripe{SigningSecret: mockpayment.DefaultSigningSecret, Timeout: time.Second},
		},
	}
}

// NewEnv wires the API on memory storage, the mock processor and fixed
// rates. Options adjust the config before the app is built.
func NewEnv(t testing.TB, opts ...func(*config.App)) *Env {
	t.Helper()
	utils.PasswordCost = bcrypt.MinCost

	cfg := Config()
	for _, opt := range opts {
		opt(cfg)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()
	processor := mockpayment.NewMockPaymentProvider(cfg.PaymentProviders.Stripe.SigningSecret)
	rates := exchangerateapi.NewFakeExchangeRate(cfg.Exchange.SupportedCurrencies)

	core, err := app.New(&app.Deps{
		Uow:             memory.NewUoW(store),
		PaymentProvider: processor,
		EventBus:        eventbus.NewWithMemory(logger),
		RateSource:      rates,
		RateCache:       cache.NewMemoryCache(),
		Logger:          logger,
	}, cfg)
	require.NoError(t, err)

	return &Env{
		App:       webapi.SetupApp(core),
		Core:      core,
		Processor: processor,
		Rates:     rates,
		Store:     store,
	}
}

// MakeRequest is a helper for making HTTP requests in tests
func (e *Env) MakeRequest(t testing.TB, method, path, body, token string) *http.Response {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.Do(t, req)
}

// Do sends a prepared request.
func (e *Env) Do(t testing.TB, req *http.Request) *http.Response {
	t.Helper()
	resp, err := e.App.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// Decode reads a JSON response body into a map.
func Decode(t testing.TB, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close() //nolint: errcheck
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// Token issues a bearer token for a fresh user id.
func (e *Env) Token(t testing.TB) (string, uuid.UUID) {
	t.Helper()
	id := uuid.New()
	token, err := e.Core.AuthService.IssueToken(id)
	require.NoError(t, err)
	return token, id
}

// Signup registers a user through the API and returns its token and id.
func (e *Env) Signup(t testing.TB) (string, uuid.UUID) {
	t.Helper()
	email := fmt.Sprintf("user_%s@example.com", uuid.NewString()[:8])
	resp := e.MakeRequest(t, http.MethodPost, "/api/auth/signup",
		fmt.Sprintf(`{"email":%q,"password":"password123"}`, email), "")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	body := Decode(t, resp)
	id, err := uuid.Parse(body["userId"].(string))
	require.NoError(t, err)
	return body["token"].(string), id
}
