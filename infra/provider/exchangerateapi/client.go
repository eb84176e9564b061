// Package exchangerateapi fetches published rates from exchangerate-api.com.
package exchangerateapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/amirasaad/fxpay/pkg/config"
	"github.com/amirasaad/fxpay/pkg/domain"
	"github.com/shopspring/decimal"
)

// SourceName identifies rates fetched by Client.
const SourceName = "exchangerate-api"

// Client calls the v6 "latest" endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// latestResponse is the v6 payload.
// See: https://www.exchangerate-api.com/docs/standard-requests
type latestResponse struct {
	Result             string                 `json:"result"`
	TimeLastUpdateUnix int64                  `json:"time_last_update_unix"`
	BaseCode           string                 `json:"base_code"`
	ConversionRates    map[string]json.Number `json:"conversion_rates"`
	ErrorType          string                 `json:"error-type,omitempty"`
}

// New creates a Client from configuration.
func New(cfg *config.ExchangeRateApi, logger *slog.Logger) *Client {
	return &Client{
		apiKey:     cfg.ApiKey,
		baseURL:    strings.TrimRight(cfg.ApiUrl, "/"),
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		logger:     logger.With("provider", SourceName),
	}
}

// Latest returns all rates published for base.
func (c *Client) Latest(ctx context.Context, base string) (*domain.RateSnapshot, error) {
	url := fmt.Sprintf("%s/%s/latest/%s", c.baseURL, c.apiKey, base)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.logger.Debug("Fetching exchange rates", "base", base)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrRatesUnavailable, domain.RedactSecrets(c.scrub(err.Error())))
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: API returned status %d: %s",
			domain.ErrRatesUnavailable, resp.StatusCode, c.scrub(string(body)))
	}

	var apiResp latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrRatesUnavailable, err)
	}
	if apiResp.Result != "success" {
		return nil, fmt.Errorf("%w: API returned result=%s error-type=%s",
			domain.ErrRatesUnavailable, apiResp.Result, apiResp.ErrorType)
	}

	rates := make(map[string]decimal.Decimal, len(apiResp.ConversionRates))
	for code, raw := range apiResp.ConversionRates {
		d, err := decimal.NewFromString(raw.String())
		if err != nil {
			c.logger.Warn("Skipping unparsable rate", "code", code, "value", raw.String())
			continue
		}
		rates[code] = d
	}

	fetched := time.Now().UTC()
	if apiResp.TimeLastUpdateUnix > 0 {
		fetched = time.Unix(apiResp.TimeLastUpdateUnix, 0).UTC()
	}
	c.logger.Info("Exchange rates fetched", "base", apiResp.BaseCode, "count", len(rates))
	return &domain.RateSnapshot{
		Base:      strings.ToUpper(apiResp.BaseCode),
		Rates:     rates,
		Source:    SourceName,
		FetchedAt: fetched,
	}, nil
}

// scrub removes the API key, which is part of the request path.
func (c *Client) scrub(s string) string {
	if c.apiKey == "" {
		return s
	}
	return strings.ReplaceAll(s, c.apiKey, "[redacted]")
}
