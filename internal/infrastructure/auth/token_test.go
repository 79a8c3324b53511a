package auth

import (
	"testing"
	"time"

	"github.com/charro/storefront/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService() *TokenService {
	return NewTokenService(config.JWTConfig{
		Secret:     "test-secret-key-at-least-32-chars",
		Expiration: 30 * time.Minute,
		Issuer:     "test-issuer",
	})
}

func TestNewTokenService_DefaultsExpiration(t *testing.T) {
	svc := NewTokenService(config.JWTConfig{Secret: "seed"})
	assert.Equal(t, 30*time.Minute, svc.Expiration())
}

func TestSignToken_RoundTrip(t *testing.T) {
	svc := newTestTokenService()

	token, err := svc.SignToken("user-123", "tony@stark.com")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	id, err := svc.IsValidToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", id)

	claims, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "tony@stark.com", claims.Email)
	assert.Equal(t, "test-issuer", claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}

func TestSignToken_MissingSeed(t *testing.T) {
	svc := NewTokenService(config.JWTConfig{})

	_, err := svc.SignToken("user-123", "tony@stark.com")
	assert.ErrorIs(t, err, ErrMissingSeed)

	_, err = svc.IsValidToken("eyJhbGciOiJIUzI1NiJ9.e30.sig")
	assert.ErrorIs(t, err, ErrMissingSeed)
}

func TestIsValidToken_RejectsShortToken(t *testing.T) {
	svc := newTestTokenService()

	_, err := svc.IsValidToken("")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.IsValidToken("0123456789")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIsValidToken_RejectsGarbage(t *testing.T) {
	svc := newTestTokenService()

	_, err := svc.IsValidToken("not.a.valid.jwt.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIsValidToken_ExpiredToken(t *testing.T) {
	svc := newTestTokenService()
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, err := svc.SignToken("user-123", "tony@stark.com")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.IsValidToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestIsValidToken_DifferentSeed(t *testing.T) {
	svc := newTestTokenService()
	token, err := svc.SignToken("user-123", "tony@stark.com")
	require.NoError(t, err)

	other := NewTokenService(config.JWTConfig{Secret: "another-secret-key-of-32-characters"})
	_, err = other.IsValidToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIsValidToken_RejectsNoneAlgorithm(t *testing.T) {
	svc := newTestTokenService()

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           "user-123",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.IsValidToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIsValidToken_MissingID(t *testing.T) {
	svc := newTestTokenService()
	token, err := svc.SignToken("", "tony@stark.com")
	require.NoError(t, err)

	_, err = svc.IsValidToken(token)
	assert.ErrorIs(t, err, ErrInvalidClaims)
}
