package payment

import (
	"encoding/json"
	"strings"

	"github.com/amirasaad/fxpay/pkg/config"
	"github.com/amirasaad/fxpay/pkg/middleware"
	paymentsvc "github.com/amirasaad/fxpay/pkg/service/payment"
	"github.com/amirasaad/fxpay/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// Routes registers the payment intent endpoints.
func Routes(app *fiber.App, svc *paymentsvc.Service, cfg *config.App) {
	group := app.Group("/api/payment")
	group.Post("/create-payment-intent", middleware.JwtOptional(cfg.Auth.Jwt), CreatePaymentIntent(svc))
	group.Get("/verify-payment/:paymentIntentId", VerifyPayment(svc))
}

// CreatePaymentIntent validates an exchange request and creates a payment
// intent for it. A recording failure after the intent exists is reported as
// a warning on a 200 response.
// @Summary Create a payment intent for an exchange
// @Tags payment
// @Accept json
// @Produce json
// @Param request body CreatePaymentIntentRequest true "Exchange request"
// @Param Idempotency-Key header string false "Reused on retries of the same request"
// @Success 200 {object} IntentResponse
// @Failure 400 {object} common.ProblemDetails
// @Failure 402 {object} common.ProblemDetails
// @Failure 504 {object} common.ProblemDetails
// @Router /api/payment/create-payment-intent [post]
func CreatePaymentIntent(svc *paymentsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[CreatePaymentIntentRequest](c)
		if input == nil {
			return err
		}
		userID, err := middleware.ResolveUser(c, input.UserID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid user", err)
		}

		res, err := svc.CreateExchangePayment(c.UserContext(), paymentsvc.ExchangeInput{
			Amount:         input.Amount,
			Currency:       input.Currency,
			FromCurrency:   input.FromCurrency,
			ToCurrency:     input.ToCurrency,
			PaymentMethod:  input.PaymentMethod,
			UserID:         userID,
			UserReference:  input.UserReference,
			IdempotencyKey: strings.TrimSpace(c.Get("Idempotency-Key")),
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to create payment intent", err)
		}
		return c.JSON(IntentResponse{
			ClientSecret:    res.ClientSecret,
			PaymentIntentID: res.PaymentIntentID,
			Warning:         res.Warning,
		})
	}
}

// VerifyPayment reports an intent's status and finalizes its record once
// the processor reports a terminal state.
// @Summary Verify a payment intent
// @Tags payment
// @Produce json
// @Param paymentIntentId path string true "Payment intent ID"
// @Success 200 {object} VerifyPaymentResponse
// @Failure 404 {object} common.ProblemDetails
// @Router /api/payment/verify-payment/{paymentIntentId} [get]
func VerifyPayment(svc *paymentsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := strings.TrimSpace(c.Params("paymentIntentId"))
		v, err := svc.VerifyPayment(c.UserContext(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to verify payment", err)
		}
		metadata := v.Metadata
		if metadata == nil {
			metadata = map[string]string{}
		}
		return c.JSON(VerifyPaymentResponse{
			Status:   string(v.Status),
			Amount:   json.Number(v.Amount.String()),
			Currency: v.Currency,
			Metadata: metadata,
			Warning:  v.Warning,
		})
	}
}
