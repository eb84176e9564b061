package middleware

import (
	"errors"
	"strings"

	"github.com/amirasaad/fxpay/pkg/config"
	"github.com/amirasaad/fxpay/pkg/domain"
	"github.com/amirasaad/fxpay/pkg/service/auth"
	"github.com/amirasaad/fxpay/webapi/common"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// UserContextKey is where the verified *jwt.Token is stored in fiber locals.
const UserContextKey = "user"

// JwtProtected rejects requests without a valid HS256 bearer token.
func JwtProtected(cfg *config.Jwt) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.Secret)},
		ContextKey:   UserContextKey,
		ErrorHandler: jwtError,
	})
}

// JwtOptional verifies a bearer token when one is sent and lets anonymous
// requests through.
func JwtOptional(cfg *config.Jwt) fiber.Handler {
	protected := JwtProtected(cfg)
	return func(c *fiber.Ctx) error {
		if strings.TrimSpace(c.Get(fiber.HeaderAuthorization)) == "" {
			return c.Next()
		}
		return protected(c)
	}
}

// UserID returns the authenticated user, if any.
func UserID(c *fiber.Ctx) (uuid.UUID, bool) {
	token, ok := c.Locals(UserContextKey).(*jwt.Token)
	if !ok {
		return uuid.Nil, false
	}
	id, err := auth.UserIDFromToken(token)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func jwtError(c *fiber.Ctx, err error) error {
	if errors.Is(err, jwtware.ErrJWTMissingOrMalformed) {
		return common.ProblemDetailsJSON(c, "Missing or malformed JWT",
			domain.NewValidationError("MALFORMED_TOKEN", "Missing or malformed JWT"))
	}
	return common.ProblemDetailsJSON(c, "Invalid or expired JWT",
		domain.ErrUnauthenticated, "Invalid or expired JWT")
}

// ResolveUser prefers the authenticated user and falls back to an id sent
// in the request body. It returns nil when neither is present.
func ResolveUser(c *fiber.Ctx, fallback string) (*uuid.UUID, error) {
	if id, ok := UserID(c); ok {
		return &id, nil
	}
	fallback = strings.TrimSpace(fallback)
	if fallback == "" {
		return nil, nil
	}
	id, err := uuid.Parse(fallback)
	if err != nil {
		return nil, domain.NewValidationError(domain.CodeMissingFields, "userId must be a UUID")
	}
	return &id, nil
}
