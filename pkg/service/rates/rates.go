// Package rates quotes conversions using published exchange rates.
// Rates are taken as published and cached per base currency.
package rates

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/amirasaad/fxpay/pkg/cache"
	"github.com/amirasaad/fxpay/pkg/domain"
	"github.com/amirasaad/fxpay/pkg/money"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL applies when no cache TTL is configured.
const DefaultTTL = 15 * time.Minute

// Source fetches the latest rates for a base currency.
type Source interface {
	Latest(ctx context.Context, base string) (*domain.RateSnapshot, error)
}

// Quote is an indicative conversion.
type Quote struct {
	From      string
	To        string
	Amount    decimal.Decimal
	Rate      decimal.Decimal
	Converted decimal.Decimal
	Source    string
	FetchedAt time.Time
}

// Service serves cached rates and quotes.
type Service struct {
	source     Source
	cache      cache.RateCache
	ttl        time.Duration
	currencies *money.Table
	group      singleflight.Group
	logger     *slog.Logger
}

// New creates a rates Service.
func New(
	source Source,
	c cache.RateCache,
	ttl time.Duration,
	currencies *money.Table,
	logger *slog.Logger,
) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if currencies == nil {
		currencies = money.Default
	}
	return &Service{
		source:     source,
		cache:      c,
		ttl:        ttl,
		currencies: currencies,
		logger:     logger.With("service", "rates"),
	}
}

// Rates returns the snapshot for base from cache or, on a miss, from the
// source. Concurrent misses for the same base share one fetch.
func (s *Service) Rates(ctx context.Context, base string) (*domain.RateSnapshot, error) {
	base = strings.ToUpper(strings.TrimSpace(base))
	if snap, err := s.cache.Get(ctx, base); err != nil {
		s.logger.Warn("rate cache read failed", "base", base, "error", err)
	} else if snap != nil {
		return snap, nil
	}

	v, err, shared := s.group.Do(base, func() (any, error) {
		snap, err := s.source.Latest(context.WithoutCancel(ctx), base)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(context.WithoutCancel(ctx), snap, s.ttl); err != nil {
			s.logger.Warn("rate cache write failed", "base", base, "error", err)
		}
		return snap, nil
	})
	if err != nil {
		s.logger.Error("failed to fetch exchange rates", "base", base, "error", err)
		return nil, err
	}
	if shared {
		s.logger.Debug("rate fetch shared", "base", base)
	}
	return v.(*domain.RateSnapshot), nil
}

// Quote converts amount of from into to at the current published rate,
// rounded to the precision of to.
func (s *Service) Quote(ctx context.Context, from, to money.Code, amount decimal.Decimal) (*Quote, error) {
	if !amount.IsPositive() || !money.WithinRange(amount) {
		return nil, domain.NewValidationError(domain.CodeInvalidAmount, "amount is out of range")
	}
	q := &Quote{From: from.String(), To: to.String(), Amount: amount}
	if from == to {
		q.Rate = decimal.NewFromInt(1)
		q.Converted = amount.Round(s.currencies.Decimals(to))
		q.Source = "identity"
		q.FetchedAt = time.Now().UTC()
		return q, nil
	}

	snap, err := s.Rates(ctx, from.String())
	if err != nil {
		return nil, err
	}
	rate, ok := snap.Rates[to.String()]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "exchange rate", ID: fmt.Sprintf("%s/%s", from, to)}
	}
	q.Rate = rate
	q.Converted = amount.Mul(rate).Round(s.currencies.Decimals(to))
	q.Source = snap.Source
	q.FetchedAt = snap.FetchedAt
	return q, nil
}
