// Package webapi wires the HTTP surface. It is organized into sub-packages:
// - payment: exchange payment intents and verification
// - wallet: wallet funding, balances and the processor webhook
// - beneficiary: payee bank profiles
// - auth: signup and login
// - exchange: indicative quotes
// - transaction: transaction history and wallet transfers
package webapi

import (
	"errors"

	_ "github.com/amirasaad/fxpay/docs"
	"github.com/amirasaad/fxpay/pkg/app"
	authweb "github.com/amirasaad/fxpay/webapi/auth"
	beneficiaryweb "github.com/amirasaad/fxpay/webapi/beneficiary"
	"github.com/amirasaad/fxpay/webapi/common"
	exchangeweb "github.com/amirasaad/fxpay/webapi/exchange"
	paymentweb "github.com/amirasaad/fxpay/webapi/payment"
	transactionweb "github.com/amirasaad/fxpay/webapi/transaction"
	walletweb "github.com/amirasaad/fxpay/webapi/wallet"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
)

// MaxBodySize bounds request bodies, webhook payloads included.
const MaxBodySize = 64 * 1024

// SetupApp Initialize Fiber with custom configuration
func SetupApp(app *app.App) *fiber.App {
	fiberApp := fiber.New(fiber.Config{
		BodyLimit:               MaxBodySize,
		ProxyHeader:             app.Config.Server.ProxyHeader,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          app.Config.Server.TrustedProxies,
		EnableIPValidation:      true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		},
	})

	fiberApp.Get("/swagger/*", swagger.New(swagger.Config{
		TryItOutEnabled:      true,
		PersistAuthorization: true,
	}))

	// c.IP() reads ProxyHeader only when the peer is a trusted proxy.
	fiberApp.Use(limiter.New(limiter.Config{
		Max:        app.Config.RateLimit.MaxRequests,
		Expiration: app.Config.RateLimit.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		Next: func(c *fiber.Ctx) bool {
			// processor retries must never be throttled
			return c.Path() == "/api/wallet/webhook"
		},
		LimitReached: func(c *fiber.Ctx) error {
			return common.ProblemDetailsJSON(
				c,
				"Too Many Requests",
				errors.New("rate limit exceeded"),
				fiber.StatusTooManyRequests,
			)
		},
	}))
	fiberApp.Use(recover.New())
	fiberApp.Use(logger.New())

	fiberApp.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("FX payment API is running")
	})
	fiberApp.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	webhook := walletweb.Webhook(app.PaymentService, app.Deps.EventBus, app.Deps.Logger)

	paymentweb.Routes(fiberApp, app.PaymentService, app.Config)
	walletweb.Routes(fiberApp, app.PaymentService, app.WalletService, webhook, app.Config)
	beneficiaryweb.Routes(fiberApp, app.BeneficiaryService, app.Config)
	authweb.Routes(fiberApp, app.AuthService)
	exchangeweb.Routes(fiberApp, app.Validator, app.RatesService)
	transactionweb.Routes(fiberApp, transactionweb.Handlers{
		Transactions: app.TransactionService,
		Wallets:      app.WalletService,
		Validator:    app.Validator,
		Currencies:   app.Currencies,
	}, app.Config)
	return fiberApp
}
