package auth

import (
	"errors"
	"time"

	"github.com/charro/storefront/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
)

// minTokenLength is the shortest string worth handing to the parser
const minTokenLength = 10

// Common errors
var (
	ErrMissingSeed   = errors.New("no JWT seed configured")
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token has expired")
	ErrInvalidClaims = errors.New("invalid token claims")
)

// Claims is the token payload: the user id and email plus registered claims
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"_id"`
	Email  string `json:"email"`
}

// TokenService signs and verifies session tokens with a shared seed
type TokenService struct {
	seed       []byte
	expiration time.Duration
	issuer     string
	now        func() time.Time
}

// NewTokenService creates a token service from JWT configuration
func NewTokenService(cfg config.JWTConfig) *TokenService {
	expiration := cfg.Expiration
	if expiration <= 0 {
		expiration = 30 * time.Minute
	}
	return &TokenService{
		seed:       []byte(cfg.Secret),
		expiration: expiration,
		issuer:     cfg.Issuer,
		now:        time.Now,
	}
}

// SignToken issues an HS256 token binding id and email
func (s *TokenService) SignToken(id, email string) (string, error) {
	if len(s.seed) == 0 {
		return "", ErrMissingSeed
	}

	now := s.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   id,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: id,
		Email:  email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.seed)
}

// IsValidToken verifies the token and returns the embedded id
func (s *TokenService) IsValidToken(tokenString string) (string, error) {
	claims, err := s.ParseToken(tokenString)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

// ParseToken verifies the token and returns its claims
func (s *TokenService) ParseToken(tokenString string) (*Claims, error) {
	if len(s.seed) == 0 {
		return nil, ErrMissingSeed
	}
	if len(tokenString) <= minTokenLength {
		return nil, ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.seed, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.UserID == "" {
		return nil, ErrInvalidClaims
	}

	return claims, nil
}

// Expiration returns the configured token lifetime
func (s *TokenService) Expiration() time.Duration {
	return s.expiration
}
