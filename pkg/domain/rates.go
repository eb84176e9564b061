package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrRatesUnavailable is returned when no exchange rates can be obtained.
var ErrRatesUnavailable = errors.New("exchange rates unavailable")

// RateSnapshot holds the rates published for one base currency.
// Rates[code] is the amount of code bought by one unit of Base.
type RateSnapshot struct {
	Base      string                     `json:"base"`
	Rates     map[string]decimal.Decimal `json:"rates"`
	Source    string                     `json:"source"`
	FetchedAt time.Time                  `json:"fetched_at"`
}
