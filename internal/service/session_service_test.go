package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"storefront-session/internal/credential"
	"storefront-session/internal/model"
	"storefront-session/internal/repository"
	"storefront-session/internal/token"
)

func newTestService(t *testing.T) (*SessionService, *repository.MemoryRepository, *token.Codec) {
	t.Helper()
	repo := repository.NewMemoryRepository()
	codec := token.NewCodec("test-secret")
	svc := NewSessionService(repo, credential.NewStoreWithCost(bcrypt.MinCost), codec, 7*24*time.Hour, time.Hour)
	return svc, repo, codec
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	svc, _, codec := newTestService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "a@b.com", "secret1", "Ada", "")
	require.NoError(t, err)
	assert.Equal(t, model.RoleCustomer, reg.User.Role)
	assert.NotEmpty(t, reg.Token)

	res, err := svc.Login(ctx, "a@b.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, model.RoleCustomer, res.User.Role)
	require.NotNil(t, res.User.LastLoginAt)

	claims, err := codec.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, model.RoleCustomer, claims.Role)

	_, err = svc.Login(ctx, "a@b.com", "wrong")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Login(context.Background(), "nobody@b.com", "secret1")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestLogin_InactiveUser(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "a@b.com", "secret1", "", "")
	require.NoError(t, err)

	inactive := false
	_, err = repo.Update(ctx, reg.User.ID, model.UserPatch{IsActive: &inactive})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "a@b.com", "secret1")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@b.com", "secret1", "", "")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "A@B.com", "other66", "", "")
	assert.ErrorIs(t, err, model.ErrDuplicateEmail)
}

func TestVerify(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "a@b.com", "secret1", "", "")
	require.NoError(t, err)

	t.Run("idempotent for a valid token", func(t *testing.T) {
		before, err := repo.FindByID(ctx, reg.User.ID)
		require.NoError(t, err)

		first, err := svc.Verify(ctx, reg.Token)
		require.NoError(t, err)
		second, err := svc.Verify(ctx, reg.Token)
		require.NoError(t, err)
		assert.Equal(t, first, second)

		after, err := repo.FindByID(ctx, reg.User.ID)
		require.NoError(t, err)
		assert.Equal(t, before, after, "verify must not mutate the user record")
	})

	t.Run("user deleted after issuance", func(t *testing.T) {
		other := repository.NewMemoryRepository()
		orphaned := NewSessionService(other, credential.NewStoreWithCost(bcrypt.MinCost),
			token.NewCodec("test-secret"), time.Hour, time.Hour)

		_, err := orphaned.Verify(ctx, reg.Token)
		assert.ErrorIs(t, err, model.ErrUserNotFound)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.Verify(ctx, "not.a.token")
		assert.ErrorIs(t, err, model.ErrInvalidToken)
	})
}

func TestChangePassword(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "a@b.com", "secret1", "", "")
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, reg.User.ID, "wrong", "next123")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(ctx, reg.User.ID, "secret1", "next123"))

	// Old password is invalid immediately.
	_, err = svc.Login(ctx, "a@b.com", "secret1")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "a@b.com", "next123")
	assert.NoError(t, err)
}

func TestPasswordReset(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "a@b.com", "secret1", "", "")
	require.NoError(t, err)

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.RequestPasswordReset(ctx, "nobody@b.com")
		assert.ErrorIs(t, err, model.ErrUserNotFound)
	})

	var delivered string
	svc.SetResetSender(func(ctx context.Context, email string, resetToken string) {
		delivered = resetToken
	})

	resetToken, err := svc.RequestPasswordReset(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, resetToken, delivered)

	stored, err := repo.FindByID(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, resetToken, stored.ResetToken)
	require.NotNil(t, stored.ResetTokenExpiry)
	assert.WithinDuration(t, time.Now().Add(time.Hour), *stored.ResetTokenExpiry, time.Minute)

	t.Run("single use", func(t *testing.T) {
		require.NoError(t, svc.ConfirmPasswordReset(ctx, resetToken, "fresh99"))

		_, err := svc.Login(ctx, "a@b.com", "fresh99")
		assert.NoError(t, err)

		// The stored token was cleared; replaying the same token fails.
		err = svc.ConfirmPasswordReset(ctx, resetToken, "again99")
		assert.ErrorIs(t, err, model.ErrInvalidToken)
	})

	t.Run("stale token after a newer request", func(t *testing.T) {
		first, err := svc.RequestPasswordReset(ctx, "a@b.com")
		require.NoError(t, err)
		time.Sleep(1100 * time.Millisecond) // different exp second, different token
		second, err := svc.RequestPasswordReset(ctx, "a@b.com")
		require.NoError(t, err)
		require.NotEqual(t, first, second)

		assert.ErrorIs(t, svc.ConfirmPasswordReset(ctx, first, "nope11"), model.ErrInvalidToken)
		assert.NoError(t, svc.ConfirmPasswordReset(ctx, second, "yes222"))
	})
}

func TestConfirmPasswordReset_ExpiredEntry(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "a@b.com", "secret1", "", "")
	require.NoError(t, err)

	resetToken, err := svc.RequestPasswordReset(ctx, "a@b.com")
	require.NoError(t, err)

	// Force the stored expiry into the past while the token itself still
	// verifies; the stored window is authoritative.
	past := time.Now().UTC().Add(-time.Minute)
	_, err = repo.Update(ctx, reg.User.ID, model.UserPatch{ResetTokenExpiry: &past})
	require.NoError(t, err)

	err = svc.ConfirmPasswordReset(ctx, resetToken, "fresh99")
	assert.ErrorIs(t, err, model.ErrTokenExpired)
}

func TestUpdateProfile(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "a@b.com", "secret1", "", "")
	require.NoError(t, err)

	name := "Ada Lovelace"
	phone := "5551234567"
	updated, err := svc.UpdateProfile(ctx, reg.User.ID, &name, &phone)
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, phone, updated.Phone)
	assert.Equal(t, model.RoleCustomer, updated.Role)

	// Password unaffected.
	_, err = svc.Login(ctx, "a@b.com", "secret1")
	assert.NoError(t, err)
}
