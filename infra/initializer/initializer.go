package initializer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/fxpay/infra"
	infracache "github.com/amirasaad/fxpay/infra/cache"
	infra_eventbus "github.com/amirasaad/fxpay/infra/eventbus"
	"github.com/amirasaad/fxpay/infra/provider/exchangerateapi"
	"github.com/amirasaad/fxpay/infra/provider/mockpayment"
	"github.com/amirasaad/fxpay/infra/provider/stripepayment"
	infra_repository "github.com/amirasaad/fxpay/infra/repository"
	"github.com/amirasaad/fxpay/infra/repository/memory"
	"github.com/amirasaad/fxpay/pkg/app"
	"github.com/amirasaad/fxpay/pkg/cache"
	"github.com/amirasaad/fxpay/pkg/config"
	"github.com/amirasaad/fxpay/pkg/provider/payment"
	"github.com/amirasaad/fxpay/pkg/repository"
	"github.com/amirasaad/fxpay/pkg/service/rates"
)

// ProviderMock selects the in-process payment processor.
const ProviderMock = "mock"

// InitializeDependencies initializes all the application dependencies
func InitializeDependencies(cfg *config.App) (
	deps *app.Deps,
	err error,
) {
	logger := SetupLogger(cfg.Log)
	deps = &app.Deps{Logger: logger}

	if deps.Uow, err = initStorage(cfg, logger); err != nil {
		return nil, err
	}
	deps.PaymentProvider = initPaymentProvider(cfg.PaymentProviders, logger)
	deps.EventBus = infra_eventbus.NewWithMemory(logger)
	deps.RateSource = initRateSource(cfg, logger)
	if deps.RateCache, err = initRateCache(cfg, logger); err != nil {
		return nil, err
	}
	return deps, nil
}

// initStorage opens postgres when a URL is configured and falls back to
// process memory otherwise.
func initStorage(cfg *config.App, logger *slog.Logger) (repository.UnitOfWork, error) {
	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if errors.Is(err, infra.ErrDatabaseURLNotSet) {
		logger.Warn("DATABASE_URL not set, records are kept in memory")
		return memory.NewUoW(memory.NewStore()), nil
	}
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		return nil, err
	}
	if cfg.DB.Migrate {
		if err := infra.RunMigrations(db, logger); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}
	return infra_repository.NewUoW(db), nil
}

func initPaymentProvider(cfg *config.PaymentProviders, logger *slog.Logger) payment.Processor {
	if cfg.Name == ProviderMock {
		logger.Warn("Using the mock payment processor")
		return mockpayment.NewMockPaymentProvider(cfg.Stripe.SigningSecret)
	}
	return stripepayment.New(cfg.Stripe, logger)
}

func initRateSource(cfg *config.App, logger *slog.Logger) rates.Source {
	if cfg.ExchangeRateApi == nil || cfg.ExchangeRateApi.ApiKey == "" {
		logger.Warn("EXCHANGE_RATE_API_API_KEY not set, quoting parity rates")
		return exchangerateapi.NewFakeExchangeRate(cfg.Exchange.SupportedCurrencies)
	}
	return exchangerateapi.New(cfg.ExchangeRateApi, logger)
}

// initRateCache prefers redis so that replicas share fetched rates.
func initRateCache(cfg *config.App, logger *slog.Logger) (cache.RateCache, error) {
	if cfg.Redis == nil || cfg.Redis.URL == "" {
		return infracache.NewMemoryCache(), nil
	}
	prefix := cfg.Redis.KeyPrefix + cfg.ExchangeRateCache.Prefix
	rc, err := infracache.NewRedisRateCache(cfg.Redis.URL, prefix, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis rate cache: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		// rates still work uncached while redis is down
		logger.Warn("Redis unreachable at startup", "error", err)
	}
	return rc, nil
}
