package transaction

import (
	"encoding/json"
	"time"

	"github.com/amirasaad/fxpay/pkg/config"
	"github.com/amirasaad/fxpay/pkg/domain"
	"github.com/amirasaad/fxpay/pkg/exchange"
	"github.com/amirasaad/fxpay/pkg/middleware"
	"github.com/amirasaad/fxpay/pkg/money"
	transactionsvc "github.com/amirasaad/fxpay/pkg/service/transaction"
	walletsvc "github.com/amirasaad/fxpay/pkg/service/wallet"
	"github.com/amirasaad/fxpay/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// TransferRequest is the body of POST /api/transactions.
type TransferRequest struct {
	ToEmail  string          `json:"toEmail" validate:"required,email,max=255"`
	Amount   exchange.Amount `json:"amount"`
	Currency string          `json:"currency"`
}

// TransactionDTO is one transaction record with a major-unit amount.
type TransactionDTO struct {
	ID              string      `json:"id"`
	Type            string      `json:"type"`
	Status          string      `json:"status"`
	Amount          json.Number `json:"amount"`
	Currency        string      `json:"currency"`
	PaymentIntentID string      `json:"paymentIntentId,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
}

// Handlers groups the transaction endpoints.
type Handlers struct {
	Transactions *transactionsvc.Service
	Wallets      *walletsvc.Service
	Validator    *exchange.Validator
	Currencies   *money.Table
}

// Routes registers the transaction endpoints. All of them require a token.
func Routes(app *fiber.App, h Handlers, cfg *config.App) {
	group := app.Group("/api/transactions", middleware.JwtProtected(cfg.Auth.Jwt))
	group.Post("/", h.Transfer)
	group.Get("/", h.List)
	group.Get("/:id", h.Get)
}

// Transfer moves funds from the caller's wallet to another user's wallet.
// @Summary Transfer between wallets
// @Tags transactions
// @Accept json
// @Produce json
// @Param request body TransferRequest true "Transfer"
// @Success 201 {object} TransactionDTO
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Failure 422 {object} common.ProblemDetails
// @Security BearerAuth
// @Router /api/transactions [post]
func (h Handlers) Transfer(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return common.ProblemDetailsJSON(c, "Unauthorized", domain.ErrUnauthenticated)
	}
	input, err := common.BindAndValidate[TransferRequest](c)
	if input == nil {
		return err
	}
	req, err := h.Validator.Validate(exchange.Request{
		Amount:              input.Amount,
		SourceCurrency:      input.Currency,
		DestinationCurrency: input.Currency,
	})
	if err != nil {
		return common.ProblemDetailsJSON(c, "Invalid transfer", err)
	}
	tx, err := h.Wallets.Transfer(c.UserContext(), walletsvc.TransferInput{
		FromUserID: userID,
		ToEmail:    input.ToEmail,
		Currency:   req.SourceCurrency,
		Amount:     req.Amount,
	})
	if err != nil {
		return common.ProblemDetailsJSON(c, "Transfer failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(h.toDTO(tx))
}

// List returns the caller's transactions, newest first.
// @Summary List transactions
// @Tags transactions
// @Produce json
// @Success 200 {object} map[string][]TransactionDTO
// @Failure 401 {object} common.ProblemDetails
// @Security BearerAuth
// @Router /api/transactions [get]
func (h Handlers) List(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return common.ProblemDetailsJSON(c, "Unauthorized", domain.ErrUnauthenticated)
	}
	txs, err := h.Transactions.List(c.UserContext(), userID)
	if err != nil {
		return common.ProblemDetailsJSON(c, "Failed to load transactions", err)
	}
	out := make([]TransactionDTO, 0, len(txs))
	for _, tx := range txs {
		out = append(out, h.toDTO(tx))
	}
	return c.JSON(fiber.Map{"transactions": out})
}

// Get returns one of the caller's transactions.
// @Summary Get a transaction
// @Tags transactions
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} TransactionDTO
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Security BearerAuth
// @Router /api/transactions/{id} [get]
func (h Handlers) Get(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return common.ProblemDetailsJSON(c, "Unauthorized", domain.ErrUnauthenticated)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return common.ProblemDetailsJSON(c, "Invalid transaction ID",
			domain.NewValidationError(domain.CodeMissingFields, "transaction id must be a UUID"))
	}
	tx, err := h.Transactions.Get(c.UserContext(), userID, id)
	if err != nil {
		return common.ProblemDetailsJSON(c, "Transaction not found", err)
	}
	return c.JSON(h.toDTO(tx))
}

func (h Handlers) toDTO(tx *domain.Transaction) TransactionDTO {
	dto := TransactionDTO{
		ID:        tx.ID.String(),
		Type:      string(tx.Type),
		Status:    string(tx.Status),
		Amount:    json.Number(h.Currencies.ToMajorUnits(tx.Amount, money.Code(tx.Currency)).String()),
		Currency:  tx.Currency,
		CreatedAt: tx.CreatedAt,
	}
	if tx.PaymentIntentID != nil {
		dto.PaymentIntentID = *tx.PaymentIntentID
	}
	return dto
}
