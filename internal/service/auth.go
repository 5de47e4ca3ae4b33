package service

import (
	"context"
	"errors"
	"fmt"

	"fruitsight/internal/models"
	"fruitsight/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var ( // Define custom errors
	ErrAccountAlreadyExists = errors.New("user already exists")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrAccountNotFound      = errors.New("account not found")
	ErrValidation           = errors.New("validation failed")
)

const minPasswordLength = 6

// SignupResult is returned to the handler so the response can echo the new
// account alongside its token.
type SignupResult struct {
	Token   string
	Account *models.Account
}

type AuthService interface {
	Signup(ctx context.Context, name, email, password string) (*SignupResult, error)
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, email string) error
}

type authService struct {
	repo   repository.AccountRepository
	tokens TokenService
	logger *zap.Logger
}

func NewAuthService(repo repository.AccountRepository, tokens TokenService, logger *zap.Logger) AuthService {
	return &authService{
		repo:   repo,
		tokens: tokens,
		logger: logger,
	}
}

// Signup creates the account and issues a token, but leaves the login-state
// flag false: the client returns to the login form after signup rather than
// entering the dashboard directly.
func (s *authService) Signup(ctx context.Context, name, email, password string) (*SignupResult, error) {
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: Please provide all required fields", ErrValidation)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: Password should be at least %d characters", ErrValidation, minPasswordLength)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &models.Account{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(passwordHash),
	}

	if err := s.repo.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateAccount) {
			return nil, ErrAccountAlreadyExists
		}
		s.logger.Error("Failed to create account", zap.Error(err))
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	token, _, err := s.tokens.Issue(account.ID, account.Email)
	if err != nil {
		s.logger.Error("Failed to generate token", zap.Error(err))
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("Account created", zap.String("email", account.Email))
	return &SignupResult{Token: token, Account: account}, nil
}

// Login verifies the credentials, marks the account logged in, and returns a
// fresh token. Unknown email and wrong password are deliberately
// indistinguishable to the caller.
func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", fmt.Errorf("%w: Please provide both email and password", ErrValidation)
	}

	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return "", ErrInvalidCredentials
		}
		s.logger.Error("Failed to get account by email", zap.Error(err))
		return "", fmt.Errorf("failed to retrieve account: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}

	if err := s.repo.SetLoginState(ctx, email, true); err != nil {
		s.logger.Error("Failed to set login state", zap.Error(err))
		return "", fmt.Errorf("failed to update login state: %w", err)
	}

	token, _, err := s.tokens.Issue(account.ID, account.Email)
	if err != nil {
		s.logger.Error("Failed to generate token", zap.Error(err))
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("Account logged in", zap.String("email", email))
	return token, nil
}

// Logout clears the advisory login-state flag. Already-issued tokens remain
// valid until they expire; there is no revocation list.
func (s *authService) Logout(ctx context.Context, email string) error {
	if email == "" {
		return fmt.Errorf("%w: Email is required to logout", ErrValidation)
	}

	if err := s.repo.SetLoginState(ctx, email, false); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return ErrAccountNotFound
		}
		s.logger.Error("Failed to clear login state", zap.Error(err))
		return fmt.Errorf("failed to update login state: %w", err)
	}

	s.logger.Info("Account logged out", zap.String("email", email))
	return nil
}
