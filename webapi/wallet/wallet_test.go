package wallet_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/amirasaad/fxpay/pkg/domain"
	"github.com/amirasaad/fxpay/pkg/provider/payment"
	"github.com/amirasaad/fxpay/webapi/testutils"
	"github.com/amirasaad/fxpay/webapi/wallet"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fund(t *testing.T, env *testutils.Env, body, token string) string {
	t.Helper()
	resp := env.MakeRequest(t, http.MethodPost, "/api/wallet/fund", body, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	out := testutils.Decode(t, resp)
	require.NotEmpty(t, out["clientSecret"])
	return out["paymentIntentId"].(string)
}

func deliver(t *testing.T, env *testutils.Env, payload []byte, signature string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/wallet/webhook", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set(wallet.SignatureHeader, signature)
	}
	return env.Do(t, req)
}

func balance(t *testing.T, env *testutils.Env, userID uuid.UUID, currency string) int64 {
	t.Helper()
	repo, err := env.Core.Deps.Uow.WalletRepository()
	require.NoError(t, err)
	w, err := repo.Get(context.Background(), userID, currency)
	if err != nil {
		return 0
	}
	return w.Balance
}

func TestFundWallet_CreditsOnceOnWebhook(t *testing.T) {
	env := testutils.NewEnv(t)
	token, userID := env.Token(t)
	id := fund(t, env, `{"amount":"25.00","currency":"USD"}`, token)

	calls := env.Processor.CreateCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, payment.MethodCard, calls[0].Method)
	assert.Equal(t, "wallet_funding", calls[0].Metadata[payment.MetaType])
	assert.Equal(t, userID.String(), calls[0].Metadata[payment.MetaUserID])

	require.NoError(t, env.Processor.Simulate(id, payment.StatusSucceeded))
	payload, sig, err := env.Processor.SignedEvent("evt_1", payment.EventTypePaymentIntentSucceeded, id)
	require.NoError(t, err)

	for range 3 {
		resp := deliver(t, env, payload, sig)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, true, testutils.Decode(t, resp)["received"])
	}
	assert.Equal(t, int64(2500), balance(t, env, userID, "USD"))

	resp := env.MakeRequest(t, http.MethodGet, "/api/wallet/balances", "", token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := testutils.Decode(t, resp)
	balances := body["balances"].([]any)
	require.Len(t, balances, 1)
	first := balances[0].(map[string]any)
	assert.Equal(t, "USD", first["currency"])
	assert.InDelta(t, 25.0, first["balance"], 0.0001)
}

func TestFundWallet_ConcurrentDeliveriesCreditOnce(t *testing.T) {
	env := testutils.NewEnv(t)
	userID := uuid.New()
	id := fund(t, env, fmt.Sprintf(`{"amount":10,"currency":"EUR","userId":%q}`, userID), "")
	require.NoError(t, env.Processor.Simulate(id, payment.StatusSucceeded))

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// distinct event ids for the same intent, as processor retries may carry
			payload, sig, err := env.Processor.SignedEvent(fmt.Sprintf("evt_%d", i),
				payment.EventTypePaymentIntentSucceeded, id)
			if !assert.NoError(t, err) {
				return
			}
			resp := deliver(t, env, payload, sig)
			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(1000), balance(t, env, userID, "EUR"))
}

func TestWebhook_RejectsBadSignature(t *testing.T) {
	env := testutils.NewEnv(t)
	userID := uuid.New()
	id := fund(t, env, fmt.Sprintf(`{"amount":10,"currency":"USD","userId":%q}`, userID), "")
	require.NoError(t, env.Processor.Simulate(id, payment.StatusSucceeded))
	payload, _, err := env.Processor.SignedEvent("evt_bad", payment.EventTypePaymentIntentSucceeded, id)
	require.NoError(t, err)

	tests := []struct {
		name string
		sig  string
	}{
		{"missing header", ""},
		{"garbage header", "t=1,v1=deadbeef"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := deliver(t, env, payload, tc.sig)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "INVALID_SIGNATURE", testutils.Decode(t, resp)["error"])
		})
	}

	t.Run("tampered body", func(t *testing.T) {
		sig := env.Processor.Sign(payload)
		tampered := bytes.Replace(payload, []byte(`"amount":1000`), []byte(`"amount":9000`), 1)
		resp := deliver(t, env, tampered, sig)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	assert.Zero(t, balance(t, env, userID, "USD"))
	repo, err := env.Core.Deps.Uow.TransactionRepository()
	require.NoError(t, err)
	tx, err := repo.GetByPaymentIntentID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusPending, tx.Status)
}

func TestWebhook_FailedIntentMarksRecord(t *testing.T) {
	env := testutils.NewEnv(t)
	userID := uuid.New()
	id := fund(t, env, fmt.Sprintf(`{"amount":10,"currency":"USD","userId":%q}`, userID), "")
	require.NoError(t, env.Processor.Simulate(id, payment.StatusCanceled))
	payload, sig, err := env.Processor.SignedEvent("evt_c", payment.EventTypePaymentIntentCanceled, id)
	require.NoError(t, err)

	resp := deliver(t, env, payload, sig)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	repo, err := env.Core.Deps.Uow.TransactionRepository()
	require.NoError(t, err)
	tx, err := repo.GetByPaymentIntentID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusFailed, tx.Status)
	assert.Zero(t, balance(t, env, userID, "USD"))
}

func TestFundWallet_Validation(t *testing.T) {
	env := testutils.NewEnv(t)
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"missing currency", `{"amount":10}`, fiber.StatusBadRequest, domain.CodeMissingCurrency},
		{"negative amount", `{"amount":-1,"currency":"USD"}`, fiber.StatusBadRequest, domain.CodeInvalidAmount},
		{"bad user id", `{"amount":10,"currency":"USD","userId":"nope"}`, fiber.StatusBadRequest, domain.CodeMissingFields},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := env.MakeRequest(t, http.MethodPost, "/api/wallet/fund", tc.body, "")
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.code, testutils.Decode(t, resp)["error"])
		})
	}
	assert.Empty(t, env.Processor.CreateCalls())
}

func TestBalances_RequiresAuth(t *testing.T) {
	env := testutils.NewEnv(t)
	resp := env.MakeRequest(t, http.MethodGet, "/api/wallet/balances", "", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = env.MakeRequest(t, http.MethodGet, "/api/wallet/balances", "", "not-a-jwt")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
