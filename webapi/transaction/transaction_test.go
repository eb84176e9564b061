package transaction_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/amirasaad/fxpay/pkg/domain"
	"github.com/amirasaad/fxpay/webapi/testutils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type TransactionTestSuite struct {
	suite.Suite
	env         *testutils.Env
	senderToken string
	sender      uuid.UUID
	recipient   uuid.UUID
}

func TestTransactionTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionTestSuite))
}

func (s *TransactionTestSuite) SetupTest() {
	s.env = testutils.NewEnv(s.T())
	s.senderToken, s.sender = s.signup("sender@example.com")
	_, s.recipient = s.signup("recipient@example.com")

	wallets, err := s.env.Core.Deps.Uow.WalletRepository()
	s.Require().NoError(err)
	s.Require().NoError(wallets.Credit(context.Background(), s.sender, "USD", 5000))
}

func (s *TransactionTestSuite) signup(email string) (string, uuid.UUID) {
	resp := s.env.MakeRequest(s.T(), http.MethodPost, "/api/auth/signup",
		fmt.Sprintf(`{"email":%q,"password":"password123"}`, email), "")
	s.Require().Equal(fiber.StatusCreated, resp.StatusCode)
	body := testutils.Decode(s.T(), resp)
	id, err := uuid.Parse(body["userId"].(string))
	s.Require().NoError(err)
	return body["token"].(string), id
}

func (s *TransactionTestSuite) balance(userID uuid.UUID) int64 {
	wallets, err := s.env.Core.Deps.Uow.WalletRepository()
	s.Require().NoError(err)
	w, err := wallets.Get(context.Background(), userID, "USD")
	if err != nil {
		return 0
	}
	return w.Balance
}

func (s *TransactionTestSuite) transfer(body string) *http.Response {
	return s.env.MakeRequest(s.T(), http.MethodPost, "/api/transactions", body, s.senderToken)
}

func (s *TransactionTestSuite) TestTransfer() {
	resp := s.transfer(`{"toEmail":"recipient@example.com","amount":"12.50","currency":"usd"}`)
	s.Require().Equal(fiber.StatusCreated, resp.StatusCode)
	body := testutils.Decode(s.T(), resp)
	s.Equal("transfer_out", body["type"])
	s.Equal("completed", body["status"])
	s.Equal("USD", body["currency"])
	s.InDelta(12.5, body["amount"], 0.0001)

	s.Equal(int64(3750), s.balance(s.sender))
	s.Equal(int64(1250), s.balance(s.recipient))
}

func (s *TransactionTestSuite) TestTransfer_InsufficientFunds() {
	resp := s.transfer(`{"toEmail":"recipient@example.com","amount":"50.01","currency":"USD"}`)
	s.Equal(fiber.StatusUnprocessableEntity, resp.StatusCode)
	s.Equal("INSUFFICIENT_FUNDS", testutils.Decode(s.T(), resp)["error"])
	s.Equal(int64(5000), s.balance(s.sender))
	s.Equal(int64(0), s.balance(s.recipient))
}

func (s *TransactionTestSuite) TestTransfer_Rejected() {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"missing recipient", `{"amount":"1","currency":"USD"}`, fiber.StatusBadRequest, domain.CodeMissingFields},
		{"bad amount", `{"toEmail":"recipient@example.com","amount":"1e50000000","currency":"USD"}`, fiber.StatusBadRequest, domain.CodeInvalidAmount},
		{"unsupported currency", `{"toEmail":"recipient@example.com","amount":"1","currency":"XYZ"}`, fiber.StatusBadRequest, domain.CodeUnsupportedCurrency},
		{"own wallet", `{"toEmail":"sender@example.com","amount":"1","currency":"USD"}`, fiber.StatusBadRequest, domain.CodeInvalidRecipient},
		{"unknown recipient", `{"toEmail":"nobody@example.com","amount":"1","currency":"USD"}`, fiber.StatusNotFound, "NOT_FOUND"},
	}
	for _, tc := range tests {
		s.Run(tc.name, func() {
			resp := s.transfer(tc.body)
			s.Equal(tc.status, resp.StatusCode)
			s.Equal(tc.code, testutils.Decode(s.T(), resp)["error"])
		})
	}
	s.Equal(int64(5000), s.balance(s.sender))
}

func (s *TransactionTestSuite) TestListAndGet() {
	resp := s.transfer(`{"toEmail":"recipient@example.com","amount":"10","currency":"USD"}`)
	s.Require().Equal(fiber.StatusCreated, resp.StatusCode)
	id := testutils.Decode(s.T(), resp)["id"].(string)

	resp = s.env.MakeRequest(s.T(), http.MethodGet, "/api/transactions", "", s.senderToken)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	list := testutils.Decode(s.T(), resp)["transactions"].([]any)
	s.Require().Len(list, 1)
	s.Equal(id, list[0].(map[string]any)["id"])

	resp = s.env.MakeRequest(s.T(), http.MethodGet, "/api/transactions/"+id, "", s.senderToken)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	s.Equal("transfer_out", testutils.Decode(s.T(), resp)["type"])

	otherToken, _ := s.env.Token(s.T())
	resp = s.env.MakeRequest(s.T(), http.MethodGet, "/api/transactions/"+id, "", otherToken)
	s.Equal(fiber.StatusNotFound, resp.StatusCode)

	resp = s.env.MakeRequest(s.T(), http.MethodGet, "/api/transactions/not-a-uuid", "", s.senderToken)
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)
}

func TestTransactions_RequireToken(t *testing.T) {
	env := testutils.NewEnv(t)
	for _, path := range []string{"/api/transactions", "/api/transactions/" + uuid.NewString()} {
		resp := env.MakeRequest(t, http.MethodGet, path, "", "")
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, path)
		resp = env.MakeRequest(t, http.MethodGet, path, "", "not-a-jwt")
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestTransactions_ListIncludesFundingRecords(t *testing.T) {
	env := testutils.NewEnv(t)
	token, _ := env.Token(t)

	resp := env.MakeRequest(t, http.MethodPost, "/api/wallet/fund", `{"amount":"20","currency":"EUR"}`, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	intentID := testutils.Decode(t, resp)["paymentIntentId"].(string)

	resp = env.MakeRequest(t, http.MethodGet, "/api/transactions", "", token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	list := testutils.Decode(t, resp)["transactions"].([]any)
	require.Len(t, list, 1)
	got := list[0].(map[string]any)
	assert.Equal(t, "wallet_funding", got["type"])
	assert.Equal(t, "pending", got["status"])
	assert.Equal(t, intentID, got["paymentIntentId"])
}
