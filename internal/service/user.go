package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/efreitasn/orderdesk/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLen = 8
	maxPasswordLen = 72 // bcrypt ignores anything longer
)

// UserStore is the persistence side of users.
type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// TokenStore issues and resolves login tokens.
type TokenStore interface {
	Issue(ctx context.Context, userID string) (string, error)
	Resolve(ctx context.Context, token string) (string, error)
	Revoke(ctx context.Context, token string) error
}

// RegisterRequest represents the input for user registration.
type RegisterRequest struct {
	Name     string
	Email    string
	Password string
}

// UserService handles registration, login and token checks.
type UserService struct {
	users      UserStore
	tokens     TokenStore
	bcryptCost int
	logger     *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(users UserStore, tokens TokenStore, bcryptCost int, logger *slog.Logger) *UserService {
	return &UserService{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Register validates the request, hashes the password and stores the user.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, &domain.ValidationError{Message: "name is required"}
	}
	addr, err := mail.ParseAddress(req.Email)
	if err != nil || addr.Address != req.Email {
		return nil, &domain.ValidationError{Message: "email must be a valid address"}
	}
	if len(req.Password) < minPasswordLen || len(req.Password) > maxPasswordLen {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("password must be between %d and %d characters", minPasswordLen, maxPasswordLen),
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		UserID:       uuid.New().String(),
		Name:         name,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", slog.String("user_id", user.UserID))
	return user, nil
}

// Login checks the credentials and returns a fresh token.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	err = bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return "", domain.ErrIncorrectPassword
	}
	if err != nil {
		return "", fmt.Errorf("compare password: %w", err)
	}

	return s.tokens.Issue(ctx, user.UserID)
}

// Authenticate resolves a token to the user id it was issued for.
func (s *UserService) Authenticate(ctx context.Context, token string) (string, error) {
	return s.tokens.Resolve(ctx, token)
}

// Logout revokes a token.
func (s *UserService) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}
