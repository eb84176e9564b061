package app

import (
	"fmt"
	"log/slog"

	"github.com/amirasaad/fxpay/pkg/cache"
	"github.com/amirasaad/fxpay/pkg/config"
	"github.com/amirasaad/fxpay/pkg/eventbus"
	"github.com/amirasaad/fxpay/pkg/exchange"
	"github.com/amirasaad/fxpay/pkg/handler/common"
	"github.com/amirasaad/fxpay/pkg/money"
	"github.com/amirasaad/fxpay/pkg/provider/payment"
	"github.com/amirasaad/fxpay/pkg/repository"
	"github.com/amirasaad/fxpay/pkg/service/auth"
	"github.com/amirasaad/fxpay/pkg/service/beneficiary"
	paymentsvc "github.com/amirasaad/fxpay/pkg/service/payment"
	"github.com/amirasaad/fxpay/pkg/service/rates"
	"github.com/amirasaad/fxpay/pkg/service/transaction"
	"github.com/amirasaad/fxpay/pkg/service/wallet"
)

// Deps contains the infrastructure the services are built on.
type Deps struct {
	Uow             repository.UnitOfWork
	PaymentProvider payment.Processor
	EventBus        eventbus.Bus
	RateSource      rates.Source
	RateCache       cache.RateCache
	Logger          *slog.Logger
}

// App holds the configured services.
type App struct {
	Deps               *Deps
	Config             *config.App
	Currencies         *money.Table
	Validator          *exchange.Validator
	Webhooks           *common.IdempotencyTracker
	AuthService        *auth.Service
	PaymentService     *paymentsvc.Service
	TransactionService *transaction.Service
	WalletService      *wallet.Service
	BeneficiaryService *beneficiary.Service
	RatesService       *rates.Service
}

// New builds the services from deps and cfg and registers the settlement
// handlers on the event bus.
func New(deps *Deps, cfg *config.App) (*App, error) {
	minimums, err := cfg.Exchange.Minimums()
	if err != nil {
		return nil, fmt.Errorf("exchange minimum amounts: %w", err)
	}
	var zeroDecimal []money.Code
	for _, c := range cfg.Exchange.ZeroDecimalCurrencies {
		zeroDecimal = append(zeroDecimal, money.ParseCode(c))
	}

	app := &App{
		Deps:       deps,
		Config:     cfg,
		Currencies: money.NewTable(zeroDecimal),
		Validator:  exchange.NewValidator(cfg.Exchange.SupportedCurrencies, minimums),
		Webhooks:   common.NewIdempotencyTrackerWithRetention(cfg.PaymentProviders.Stripe.WebhookRetention),
	}

	app.TransactionService = transaction.New(deps.Uow, deps.Logger)
	app.WalletService = wallet.New(deps.Uow, app.Currencies, deps.Logger)
	app.BeneficiaryService = beneficiary.New(deps.Uow, deps.Logger)
	app.AuthService = auth.New(deps.Uow, cfg.Auth.Jwt, deps.Logger)
	app.RatesService = rates.New(
		deps.RateSource,
		deps.RateCache,
		cfg.ExchangeRateCache.TTL,
		app.Currencies,
		deps.Logger,
	)
	app.PaymentService = paymentsvc.New(paymentsvc.Deps{
		Processor:    deps.PaymentProvider,
		Validator:    app.Validator,
		Currencies:   app.Currencies,
		Transactions: app.TransactionService,
		Timeout:      cfg.PaymentProviders.Stripe.Timeout,
		Logger:       deps.Logger,
	})

	app.setupEventBus()
	return app, nil
}
