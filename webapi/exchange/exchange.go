package exchange

import (
	"encoding/json"
	"time"

	"github.com/amirasaad/fxpay/pkg/exchange"
	"github.com/amirasaad/fxpay/pkg/service/rates"
	"github.com/amirasaad/fxpay/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// QuoteResponse is an indicative conversion at the latest published rate.
type QuoteResponse struct {
	From      string      `json:"from"`
	To        string      `json:"to"`
	Amount    json.Number `json:"amount"`
	Rate      json.Number `json:"rate"`
	Converted json.Number `json:"converted"`
	Source    string      `json:"source"`
	FetchedAt time.Time   `json:"fetchedAt"`
}

// Routes registers the quote endpoint.
func Routes(app *fiber.App, validator *exchange.Validator, svc *rates.Service) {
	app.Get("/api/exchange/quote", Quote(validator, svc))
}

// Quote validates the pair and amount with the same rules as payment
// creation, then converts at the cached rate.
// @Summary Quote a conversion
// @Tags exchange
// @Produce json
// @Param from query string true "Source currency"
// @Param to query string false "Target currency"
// @Param amount query string true "Amount in major units"
// @Success 200 {object} QuoteResponse
// @Failure 400 {object} common.ProblemDetails
// @Failure 503 {object} common.ProblemDetails
// @Router /api/exchange/quote [get]
func Quote(validator *exchange.Validator, svc *rates.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := validator.Validate(exchange.Request{
			Amount:              exchange.Amount(c.Query("amount")),
			SourceCurrency:      c.Query("from"),
			DestinationCurrency: c.Query("to", c.Query("from")),
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid quote request", err)
		}
		q, err := svc.Quote(c.UserContext(), req.SourceCurrency, req.DestinationCurrency, req.Amount)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Quote unavailable", err)
		}
		return c.JSON(QuoteResponse{
			From:      q.From,
			To:        q.To,
			Amount:    json.Number(q.Amount.String()),
			Rate:      json.Number(q.Rate.String()),
			Converted: json.Number(q.Converted.String()),
			Source:    q.Source,
			FetchedAt: q.FetchedAt,
		})
	}
}
