package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/charro/storefront/internal/domain/identity"
	"github.com/charro/storefront/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testPassword = "secret123"

func newTestUser(t *testing.T) *identity.User {
	t.Helper()
	user, err := identity.NewUser("Test User", "Test@Example.com", testPassword)
	require.NoError(t, err)
	return user
}

func errorCode(t *testing.T, err error) string {
	t.Helper()
	var de *shared.DomainError
	require.True(t, errors.As(err, &de), "expected DomainError, got %v", err)
	return de.Code
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	user := newTestUser(t)

	t.Run("success", func(t *testing.T) {
		repo, tokens := new(MockUserRepository), new(MockTokenIssuer)
		svc := NewAuthService(repo, tokens, zaptest.NewLogger(t))
		repo.On("FindByEmail", ctx, "test@example.com").Return(user, nil)
		tokens.On("SignToken", user.ID.String(), "test@example.com").Return("signed-token", nil)

		resp, err := svc.Login(ctx, LoginRequest{Email: " TEST@example.com ", Password: testPassword})
		require.NoError(t, err)
		assert.Equal(t, "signed-token", resp.Token)
		assert.Equal(t, "client", resp.User.Role)
		assert.Equal(t, "Test User", resp.User.Name)
	})

	t.Run("unknown email", func(t *testing.T) {
		repo, tokens := new(MockUserRepository), new(MockTokenIssuer)
		svc := NewAuthService(repo, tokens, nil)
		repo.On("FindByEmail", ctx, "nobody@example.com").Return(nil, shared.ErrNotFound)

		_, err := svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: testPassword})
		assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, err))
	})

	t.Run("wrong password", func(t *testing.T) {
		repo, tokens := new(MockUserRepository), new(MockTokenIssuer)
		svc := NewAuthService(repo, tokens, nil)
		repo.On("FindByEmail", ctx, "test@example.com").Return(user, nil)

		_, err := svc.Login(ctx, LoginRequest{Email: "test@example.com", Password: "wrong-pass"})
		assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, err))
		tokens.AssertNotCalled(t, "SignToken", mock.Anything, mock.Anything)
	})

	t.Run("disabled account", func(t *testing.T) {
		disabled := newTestUser(t)
		require.NoError(t, disabled.Deactivate())
		repo, tokens := new(MockUserRepository), new(MockTokenIssuer)
		svc := NewAuthService(repo, tokens, nil)
		repo.On("FindByEmail", ctx, "test@example.com").Return(disabled, nil)

		_, err := svc.Login(ctx, LoginRequest{Email: "test@example.com", Password: testPassword})
		assert.Equal(t, "ACCOUNT_DISABLED", errorCode(t, err))
	})

	t.Run("signing failure", func(t *testing.T) {
		repo, tokens := new(MockUserRepository), new(MockTokenIssuer)
		svc := NewAuthService(repo, tokens, nil)
		repo.On("FindByEmail", ctx, "test@example.com").Return(user, nil)
		tokens.On("SignToken", mock.Anything, mock.Anything).Return("", errors.New("no JWT seed configured"))

		_, err := svc.Login(ctx, LoginRequest{Email: "test@example.com", Password: testPassword})
		assert.Equal(t, "TOKEN_ERROR", errorCode(t, err))
	})
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo, tokens := new(MockUserRepository), new(MockTokenIssuer)
		svc := NewAuthService(repo, tokens, nil)
		repo.On("ExistsByEmail", ctx, "new@example.com").Return(false, nil)
		repo.On("Create", ctx, mock.AnythingOfType("*identity.User")).Return(nil)
		tokens.On("SignToken", mock.Anything, "new@example.com").Return("tok", nil)

		resp, err := svc.Register(ctx, RegisterRequest{Name: "New One", Email: "New@Example.com", Password: testPassword})
		require.NoError(t, err)
		assert.Equal(t, "tok", resp.Token)
		assert.Equal(t, "new@example.com", resp.User.Email)
		repo.AssertExpectations(t)
	})

	t.Run("email taken", func(t *testing.T) {
		repo, tokens := new(MockUserRepository), new(MockTokenIssuer)
		svc := NewAuthService(repo, tokens, nil)
		repo.On("ExistsByEmail", ctx, "taken@example.com").Return(true, nil)

		_, err := svc.Register(ctx, RegisterRequest{Name: "Taken", Email: "taken@example.com", Password: testPassword})
		assert.Equal(t, "EMAIL_TAKEN", errorCode(t, err))
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("password without letters", func(t *testing.T) {
		repo, tokens := new(MockUserRepository), new(MockTokenIssuer)
		svc := NewAuthService(repo, tokens, nil)
		repo.On("ExistsByEmail", ctx, "digits@example.com").Return(false, nil)

		_, err := svc.Register(ctx, RegisterRequest{Name: "Digits", Email: "digits@example.com", Password: "123456"})
		assert.Equal(t, "INVALID_PASSWORD", errorCode(t, err))
	})
}

func TestAuthService_ValidateToken(t *testing.T) {
	ctx := context.Background()
	user := newTestUser(t)

	t.Run("re-issues token", func(t *testing.T) {
		repo, tokens := new(MockUserRepository), new(MockTokenIssuer)
		svc := NewAuthService(repo, tokens, nil)
		tokens.On("IsValidToken", "old-token").Return(user.ID.String(), nil)
		tokens.On("SignToken", user.ID.String(), user.Email).Return("fresh-token", nil)
		repo.On("FindByID", ctx, user.ID).Return(user, nil)

		resp, err := svc.ValidateToken(ctx, "old-token")
		require.NoError(t, err)
		assert.Equal(t, "fresh-token", resp.Token)
		assert.Equal(t, user.ID, resp.User.ID)
	})

	t.Run("invalid token", func(t *testing.T) {
		repo, tokens := new(MockUserRepository), new(MockTokenIssuer)
		svc := NewAuthService(repo, tokens, nil)
		tokens.On("IsValidToken", "bad").Return("", errors.New("invalid token"))

		_, err := svc.ValidateToken(ctx, "bad")
		assert.Equal(t, "INVALID_TOKEN", errorCode(t, err))
	})

	t.Run("user gone", func(t *testing.T) {
		repo, tokens := new(MockUserRepository), new(MockTokenIssuer)
		svc := NewAuthService(repo, tokens, nil)
		tokens.On("IsValidToken", "orphan").Return(user.ID.String(), nil)
		repo.On("FindByID", ctx, user.ID).Return(nil, shared.ErrNotFound)

		_, err := svc.ValidateToken(ctx, "orphan")
		assert.Equal(t, "INVALID_TOKEN", errorCode(t, err))
	})
}
