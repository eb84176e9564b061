package wallet

import (
	"log/slog"

	"github.com/amirasaad/fxpay/pkg/domain"
	"github.com/amirasaad/fxpay/pkg/eventbus"
	paymenthandler "github.com/amirasaad/fxpay/pkg/handler/payment"
	paymentsvc "github.com/amirasaad/fxpay/pkg/service/payment"
	"github.com/amirasaad/fxpay/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// SignatureHeader carries the processor's webhook signature.
const SignatureHeader = "Stripe-Signature"

// Webhook verifies a processor delivery against the raw body and hands the
// resulting event to the bus. A delivery whose settlement fails gets a 5xx
// so the processor retries it.
// @Summary Receive processor webhooks
// @Tags wallet
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Webhook signature"
// @Success 200 {object} WebhookAck
// @Failure 400 {object} common.ProblemDetails
// @Failure 500 {object} common.ProblemDetails
// @Router /api/wallet/webhook [post]
func Webhook(svc *paymentsvc.Service, bus eventbus.Bus, logger *slog.Logger) fiber.Handler {
	logger = logger.With("handler", "webhook")
	return func(c *fiber.Ctx) error {
		payload := append([]byte(nil), c.Body()...)
		header := c.Get(SignatureHeader)
		if header == "" {
			return common.ProblemDetailsJSON(c, "Invalid webhook signature",
				&domain.SignatureError{}, "missing signature header")
		}

		evt, err := svc.VerifyWebhookSignature(payload, header)
		if err != nil {
			logger.Warn("Rejected webhook delivery", "error", err)
			return common.ProblemDetailsJSON(c, "Invalid webhook signature", err)
		}

		event, ok := paymenthandler.FromWebhook(evt)
		if !ok {
			logger.Debug("Ignoring webhook event", "type", evt.Type, "event_id", evt.ID)
			return c.JSON(WebhookAck{Received: true})
		}
		if err := bus.Emit(c.UserContext(), event); err != nil {
			logger.Error("Webhook settlement failed", "event_id", evt.ID, "error", err)
			return common.ProblemDetailsJSON(c, "Webhook processing failed", err,
				fiber.StatusInternalServerError)
		}
		return c.JSON(WebhookAck{Received: true})
	}
}
