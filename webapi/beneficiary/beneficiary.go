package beneficiary

import (
	"time"

	"github.com/amirasaad/fxpay/pkg/config"
	"github.com/amirasaad/fxpay/pkg/domain"
	"github.com/amirasaad/fxpay/pkg/middleware"
	beneficiarysvc "github.com/amirasaad/fxpay/pkg/service/beneficiary"
	"github.com/amirasaad/fxpay/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// CreateBeneficiaryRequest is the body of POST /api/beneficiaries.
type CreateBeneficiaryRequest struct {
	UserID       string            `json:"userId" validate:"omitempty,uuid"`
	Name         string            `json:"name" validate:"required,max=255"`
	Currency     string            `json:"currency"`
	BankName     string            `json:"bankName" validate:"max=255"`
	BankDetails  map[string]string `json:"bankDetails"`
	AddressLine1 string            `json:"addressLine1" validate:"max=255"`
	City         string            `json:"city" validate:"max=128"`
	State        string            `json:"state" validate:"max=128"`
	PostalCode   string            `json:"postalCode" validate:"max=32"`
	Country      string            `json:"country" validate:"max=64"`
}

// BeneficiaryDTO is one stored beneficiary.
type BeneficiaryDTO struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Currency     string            `json:"currency"`
	BankName     string            `json:"bankName,omitempty"`
	BankDetails  map[string]string `json:"bankDetails"`
	AddressLine1 string            `json:"addressLine1,omitempty"`
	City         string            `json:"city,omitempty"`
	State        string            `json:"state,omitempty"`
	PostalCode   string            `json:"postalCode,omitempty"`
	Country      string            `json:"country,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
}

// Routes registers the beneficiary endpoints.
func Routes(app *fiber.App, svc *beneficiarysvc.Service, cfg *config.App) {
	group := app.Group("/api/beneficiaries")
	group.Post("/", middleware.JwtOptional(cfg.Auth.Jwt), Create(svc))
	group.Get("/", middleware.JwtProtected(cfg.Auth.Jwt), List(svc))
}

// Create stores a beneficiary after checking its bank details against the
// currency's rules.
// @Summary Create a beneficiary
// @Tags beneficiary
// @Accept json
// @Produce json
// @Param request body CreateBeneficiaryRequest true "Beneficiary"
// @Success 201 {object} map[string]string
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 409 {object} common.ProblemDetails
// @Security BearerAuth
// @Router /api/beneficiaries [post]
func Create(svc *beneficiarysvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[CreateBeneficiaryRequest](c)
		if input == nil {
			return err
		}
		userID, err := middleware.ResolveUser(c, input.UserID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid user", err)
		}
		if userID == nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", domain.ErrUnauthenticated)
		}
		id, err := svc.Create(c.UserContext(), beneficiarysvc.Input{
			UserID:       *userID,
			Name:         input.Name,
			Currency:     input.Currency,
			BankName:     input.BankName,
			BankDetails:  input.BankDetails,
			AddressLine1: input.AddressLine1,
			City:         input.City,
			State:        input.State,
			PostalCode:   input.PostalCode,
			Country:      input.Country,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to create beneficiary", err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id.String()})
	}
}

// List returns the authenticated user's beneficiaries.
// @Summary List beneficiaries
// @Tags beneficiary
// @Produce json
// @Success 200 {object} map[string][]BeneficiaryDTO
// @Failure 401 {object} common.ProblemDetails
// @Security BearerAuth
// @Router /api/beneficiaries [get]
func List(svc *beneficiarysvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := middleware.UserID(c)
		if !ok {
			return common.ProblemDetailsJSON(c, "Unauthorized", domain.ErrUnauthenticated)
		}
		items, err := svc.List(c.UserContext(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list beneficiaries", err)
		}
		out := make([]BeneficiaryDTO, 0, len(items))
		for _, b := range items {
			out = append(out, BeneficiaryDTO{
				ID:           b.ID.String(),
				Name:         b.Name,
				Currency:     b.Currency,
				BankName:     b.BankName,
				BankDetails:  b.BankDetails,
				AddressLine1: b.AddressLine1,
				City:         b.City,
				State:        b.State,
				PostalCode:   b.PostalCode,
				Country:      b.Country,
				CreatedAt:    b.CreatedAt,
			})
		}
		return c.JSON(fiber.Map{"beneficiaries": out})
	}
}
