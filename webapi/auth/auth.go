package auth

import (
	"github.com/amirasaad/fxpay/pkg/service/auth"
	"github.com/amirasaad/fxpay/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// Credentials is the body of the signup and login endpoints.
type Credentials struct {
	Email    string `json:"email" validate:"required,max=255"`
	Password string `json:"password" validate:"required,max=72"`
}

// SessionResponse carries the bearer token for later requests.
type SessionResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

// Routes registers the auth endpoints.
func Routes(app *fiber.App, svc *auth.Service) {
	app.Post("/api/auth/signup", Signup(svc))
	app.Post("/api/auth/login", Login(svc))
}

// Signup creates a user and returns a session token.
// @Summary Sign up
// @Tags auth
// @Accept json
// @Produce json
// @Param request body Credentials true "Credentials"
// @Success 201 {object} SessionResponse
// @Failure 400 {object} common.ProblemDetails
// @Failure 409 {object} common.ProblemDetails
// @Router /api/auth/signup [post]
func Signup(svc *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[Credentials](c)
		if input == nil {
			return err
		}
		session, err := svc.Register(c.UserContext(), input.Email, input.Password)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Signup failed", err)
		}
		return c.Status(fiber.StatusCreated).JSON(SessionResponse{
			Token:  session.Token,
			UserID: session.UserID.String(),
		})
	}
}

// Login exchanges credentials for a session token.
// @Summary User login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body Credentials true "Credentials"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Router /api/auth/login [post]
func Login(svc *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[Credentials](c)
		if input == nil {
			return err
		}
		session, err := svc.Login(c.UserContext(), input.Email, input.Password)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid credentials", err)
		}
		return c.JSON(SessionResponse{
			Token:  session.Token,
			UserID: session.UserID.String(),
		})
	}
}
