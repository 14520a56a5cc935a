package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopserv/shopserv/internal/models"
)

func TestAuthService_Register_SuccessAndConflict(t *testing.T) {
	r := newTestRepo(t)
	svc := &AuthService{Repo: r}
	ctx := context.Background()

	user, err := svc.Register(ctx, "mira@example.com", "Secret123", "Mira K", "", models.RoleCustomer)
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, user.Role)
	assert.True(t, user.IsActive)

	_, err = svc.Register(ctx, "MIRA@example.com", "Other123", "Mira K", "", models.RoleCustomer)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestAuthService_Register_Validation(t *testing.T) {
	r := newTestRepo(t)
	svc := &AuthService{Repo: r}
	ctx := context.Background()

	cases := []struct {
		name     string
		email    string
		password string
		fullName string
		role     models.Role
	}{
		{"missing email", "", "Secret123", "Mira", models.RoleCustomer},
		{"invalid email", "not-an-email", "Secret123", "Mira", models.RoleCustomer},
		{"missing password", "a@b.com", "", "Mira", models.RoleCustomer},
		{"missing name", "a@b.com", "Secret123", "", models.RoleCustomer},
		{"admin role forbidden", "a@b.com", "Secret123", "Mira", models.RoleAdmin},
		{"unknown role", "a@b.com", "Secret123", "Mira", models.Role("vendor")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.email, tc.password, tc.fullName, "", tc.role)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	r := newTestRepo(t)
	svc := &AuthService{Repo: r}
	ctx := context.Background()

	user := seedUser(t, r, models.RoleCustomer)

	got, err := svc.Login(ctx, user.Email, "Secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Login(ctx, user.Email, "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Login(ctx, "ghost@example.com", "Secret123")
	assert.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, r.SetUserActive(ctx, user.ID, false))
	_, err = svc.Login(ctx, user.Email, "Secret123")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthService_PasswordResetFlow(t *testing.T) {
	r := newTestRepo(t)
	svc := &AuthService{Repo: r}
	ctx := context.Background()

	user := seedUser(t, r, models.RoleCustomer)

	code, err := svc.RequestPasswordReset(ctx, user.Email)
	require.NoError(t, err)
	require.Len(t, code, 6)

	// Verify does not consume: it can be checked more than once.
	require.NoError(t, svc.VerifyOTP(ctx, user.Email, code))
	require.NoError(t, svc.VerifyOTP(ctx, user.Email, code))

	assert.ErrorIs(t, svc.VerifyOTP(ctx, user.Email, "000000"), ErrValidation)

	require.NoError(t, svc.ResetPassword(ctx, user.Email, code, "NewSecret456"))

	// The code is spent now.
	err = svc.ResetPassword(ctx, user.Email, code, "Again789")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Login(ctx, user.Email, "NewSecret456")
	require.NoError(t, err)
	_, err = svc.Login(ctx, user.Email, "Secret123")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthService_PasswordReset_ReplacesPriorCode(t *testing.T) {
	r := newTestRepo(t)
	svc := &AuthService{Repo: r}
	ctx := context.Background()

	user := seedUser(t, r, models.RoleCustomer)

	first, err := svc.RequestPasswordReset(ctx, user.Email)
	require.NoError(t, err)
	second, err := svc.RequestPasswordReset(ctx, user.Email)
	require.NoError(t, err)

	if first != second {
		assert.ErrorIs(t, svc.VerifyOTP(ctx, user.Email, first), ErrValidation)
	}
	require.NoError(t, svc.VerifyOTP(ctx, user.Email, second))
}

func TestAuthService_PasswordReset_UnknownEmailDoesNotLeak(t *testing.T) {
	r := newTestRepo(t)
	svc := &AuthService{Repo: r}

	code, err := svc.RequestPasswordReset(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	assert.Empty(t, code)
}

func TestAuthService_GetUser(t *testing.T) {
	r := newTestRepo(t)
	svc := &AuthService{Repo: r}
	ctx := context.Background()

	seeded := seedUser(t, r, models.RoleCustomer)

	user, err := svc.GetUser(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, seeded.Email, user.Email)

	_, err = svc.GetUser(ctx, 99999)
	assert.ErrorIs(t, err, ErrNotFound)
}
