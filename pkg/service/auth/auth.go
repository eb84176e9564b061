// Package auth issues and verifies bearer tokens and manages credentials.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/fxpay/pkg/config"
	"github.com/amirasaad/fxpay/pkg/domain"
	"github.com/amirasaad/fxpay/pkg/repository"
	"github.com/amirasaad/fxpay/pkg/utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// MinPasswordLength is the shortest password Register accepts.
const MinPasswordLength = 8

// dummyHash keeps the failed-lookup path as slow as a password mismatch.
const dummyHash = "$2a$10$7zFqzDbD3RrlkMTczbXG9OWZ0FLOXjIxXzSZ.QZxkVXjXcx7QZQiC"

// Session is returned after a successful signup or login.
type Session struct {
	UserID uuid.UUID
	Token  string
}

// Service handles signup, login and bearer tokens.
type Service struct {
	uow    repository.UnitOfWork
	cfg    *config.Jwt
	now    func() time.Time
	logger *slog.Logger
}

// New creates an auth Service signing HS256 tokens with cfg.Secret.
func New(uow repository.UnitOfWork, cfg *config.Jwt, logger *slog.Logger) *Service {
	return &Service{
		uow:    uow,
		cfg:    cfg,
		now:    time.Now,
		logger: logger.With("service", "auth"),
	}
}

// IssueToken signs a token carrying user_id and exp.
func (s *Service) IssueToken(userID uuid.UUID) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims["user_id"] = userID.String()
	claims["exp"] = s.now().Add(s.cfg.Expiry).Unix()
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		s.logger.Error("IssueToken failed", "user_id", userID, "error", err)
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken parses a token and returns its user id. Any failure is
// domain.ErrUnauthenticated.
func (s *Service) VerifyToken(raw string) (uuid.UUID, error) {
	token, err := jwt.Parse(raw,
		func(t *jwt.Token) (any, error) { return []byte(s.cfg.Secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		s.logger.Debug("VerifyToken failed", "error", err)
		return uuid.Nil, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	return UserIDFromToken(token)
}

// UserIDFromToken reads the user_id claim of an already verified token.
func UserIDFromToken(token *jwt.Token) (uuid.UUID, error) {
	if token == nil || !token.Valid {
		return uuid.Nil, domain.ErrUnauthenticated
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, domain.ErrUnauthenticated
	}
	raw, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, domain.ErrUnauthenticated
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.ErrUnauthenticated
	}
	return id, nil
}

// Register creates a user with a bcrypt-hashed password and returns a
// session for it. A taken email is domain.ErrAlreadyExists.
func (s *Service) Register(ctx context.Context, email, password string) (*Session, error) {
	email = utils.NormalizeEmail(email)
	if !utils.IsEmail(email) {
		return nil, domain.NewValidationError(domain.CodeMissingFields, "a valid email is required")
	}
	if len(password) < MinPasswordLength {
		return nil, domain.NewValidationError(domain.CodeMissingFields,
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &domain.User{ID: uuid.New(), Email: email, HashedPassword: hash}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.UserRepository()
		if err != nil {
			return err
		}
		return repo.Create(ctx, u)
	})
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrAlreadyExists):
		return nil, fmt.Errorf("email already registered: %w", domain.ErrAlreadyExists)
	default:
		s.logger.Error("Register failed", "error", err)
		return nil, &domain.PersistenceError{Op: "create user", Err: err}
	}

	s.logger.Info("User registered", "user_id", u.ID)
	return s.session(u.ID)
}

// Login checks the credentials and returns a session. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	repo, err := s.uow.UserRepository()
	if err != nil {
		return nil, &domain.PersistenceError{Op: "load user", Err: err}
	}
	u, err := repo.GetByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, &domain.PersistenceError{Op: "load user", Err: err}
	}
	if u == nil {
		_ = utils.CheckPasswordHash(password, dummyHash)
		s.logger.Warn("Login failed", "reason", "unknown email")
		return nil, domain.ErrUnauthenticated
	}
	if !utils.CheckPasswordHash(password, u.HashedPassword) {
		s.logger.Warn("Login failed", "user_id", u.ID, "reason", "password mismatch")
		return nil, domain.ErrUnauthenticated
	}
	return s.session(u.ID)
}

func (s *Service) session(userID uuid.UUID) (*Session, error) {
	token, err := s.IssueToken(userID)
	if err != nil {
		return nil, err
	}
	return &Session{UserID: userID, Token: token}, nil
}
