package wallet

import (
	"encoding/json"
	"strings"

	"github.com/amirasaad/fxpay/pkg/config"
	"github.com/amirasaad/fxpay/pkg/domain"
	"github.com/amirasaad/fxpay/pkg/middleware"
	paymentsvc "github.com/amirasaad/fxpay/pkg/service/payment"
	walletsvc "github.com/amirasaad/fxpay/pkg/service/wallet"
	"github.com/amirasaad/fxpay/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// Routes registers wallet funding, balances and the processor webhook.
func Routes(
	app *fiber.App,
	payments *paymentsvc.Service,
	wallets *walletsvc.Service,
	webhook fiber.Handler,
	cfg *config.App,
) {
	group := app.Group("/api/wallet")
	group.Post("/fund", middleware.JwtOptional(cfg.Auth.Jwt), FundWallet(payments))
	group.Get("/balances", middleware.JwtProtected(cfg.Auth.Jwt), Balances(wallets))
	group.Post("/webhook", webhook)
}

// FundWallet creates a card payment intent whose settlement credits the
// caller's wallet.
// @Summary Fund a wallet by card
// @Tags wallet
// @Accept json
// @Produce json
// @Param request body FundWalletRequest true "Funding request"
// @Success 200 {object} FundWalletResponse
// @Failure 400 {object} common.ProblemDetails
// @Security BearerAuth
// @Router /api/wallet/fund [post]
func FundWallet(svc *paymentsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[FundWalletRequest](c)
		if input == nil {
			return err
		}
		userID, err := middleware.ResolveUser(c, input.UserID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid user", err)
		}
		res, err := svc.FundWallet(c.UserContext(), paymentsvc.FundInput{
			Amount:         input.Amount,
			Currency:       input.Currency,
			UserID:         userID,
			IdempotencyKey: strings.TrimSpace(c.Get("Idempotency-Key")),
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to fund wallet", err)
		}
		return c.JSON(FundWalletResponse{
			ClientSecret:    res.ClientSecret,
			PaymentIntentID: res.PaymentIntentID,
			Warning:         res.Warning,
		})
	}
}

// Balances lists the authenticated user's wallets.
// @Summary List wallet balances
// @Tags wallet
// @Produce json
// @Success 200 {object} map[string][]BalanceDTO
// @Failure 401 {object} common.ProblemDetails
// @Security BearerAuth
// @Router /api/wallet/balances [get]
func Balances(svc *walletsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := middleware.UserID(c)
		if !ok {
			return common.ProblemDetailsJSON(c, "Unauthorized", domain.ErrUnauthenticated)
		}
		balances, err := svc.Balances(c.UserContext(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to load balances", err)
		}
		out := make([]BalanceDTO, 0, len(balances))
		for _, b := range balances {
			out = append(out, BalanceDTO{Currency: b.Currency, Balance: json.Number(b.Amount.String())})
		}
		return c.JSON(fiber.Map{"balances": out})
	}
}
