package identity

import (
	"context"
	"errors"

	"github.com/charro/storefront/internal/domain/identity"
	"github.com/charro/storefront/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenIssuer signs and verifies session tokens
type TokenIssuer interface {
	SignToken(id, email string) (string, error)
	IsValidToken(token string) (string, error)
}

// AuthService handles sign-in, sign-up and token renewal
type AuthService struct {
	userRepo identity.UserRepository
	tokens   TokenIssuer
	logger   *zap.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo identity.UserRepository, tokens TokenIssuer, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

// Login authenticates a user by email and password
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	email := identity.NormalizeEmail(req.Email)
	s.logger.Info("Login attempt", zap.String("email", email))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login failed: user not found", zap.String("email", email))
			return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
		}
		return nil, err
	}

	if !user.VerifyPassword(req.Password) {
		s.logger.Warn("Login failed: invalid password", zap.String("user_id", user.ID.String()))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}
	if !user.CanLogin() {
		s.logger.Warn("Login failed: account disabled", zap.String("user_id", user.ID.String()))
		return nil, shared.NewDomainError("ACCOUNT_DISABLED", "Account is disabled")
	}

	resp, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Login successful", zap.String("user_id", user.ID.String()))
	return resp, nil
}

// Register creates a client account and signs it in
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	email := identity.NormalizeEmail(req.Email)
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("EMAIL_TAKEN", "Email is already registered")
	}

	user, err := identity.NewUser(req.Name, email, req.Password)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("User registered", zap.String("user_id", user.ID.String()))

	return s.issue(user)
}

// ValidateToken checks a token and re-issues a fresh one for its user
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*AuthResponse, error) {
	id, err := s.tokens.IsValidToken(token)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_TOKEN", "Token is not valid")
	}
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_TOKEN", "Token is not valid")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_TOKEN", "Token is not valid")
		}
		return nil, err
	}
	if !user.CanLogin() {
		return nil, shared.NewDomainError("ACCOUNT_DISABLED", "Account is disabled")
	}

	return s.issue(user)
}

func (s *AuthService) issue(user *identity.User) (*AuthResponse, error) {
	token, err := s.tokens.SignToken(user.ID.String(), user.Email)
	if err != nil {
		s.logger.Error("Failed to sign token", zap.String("user_id", user.ID.String()), zap.Error(err))
		return nil, shared.NewDomainError("TOKEN_ERROR", "Failed to issue token")
	}
	return &AuthResponse{Token: token, User: ToUserInfo(user)}, nil
}
