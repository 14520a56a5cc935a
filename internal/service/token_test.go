package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopserv/shopserv/internal/models"
	"github.com/shopserv/shopserv/internal/tokens"
)

func TestTokenService_IssueAndRotate(t *testing.T) {
	r := newTestRepo(t)
	svc := &TokenService{
		Repo: r,
		Issuer: &tokens.Issuer{
			AccessSecret:  []byte("test-jwt-secret"),
			RefreshSecret: []byte("test-refresh-secret"),
		},
	}
	ctx := context.Background()

	user := seedUser(t, r, models.RoleShopOwner)

	pair, err := svc.IssuePair(ctx, user)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := svc.Issuer.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, models.RoleShopOwner, claims.Role)

	next, err := svc.Rotate(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	// A rotated token is single-use.
	_, err = svc.Rotate(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestTokenService_Rotate_RejectsGarbageAndRevoked(t *testing.T) {
	r := newTestRepo(t)
	svc := &TokenService{
		Repo: r,
		Issuer: &tokens.Issuer{
			AccessSecret:  []byte("test-jwt-secret"),
			RefreshSecret: []byte("test-refresh-secret"),
		},
	}
	ctx := context.Background()

	user := seedUser(t, r, models.RoleCustomer)

	_, err := svc.Rotate(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrUnauthorized)

	pair, err := svc.IssuePair(ctx, user)
	require.NoError(t, err)
	require.NoError(t, svc.Revoke(ctx, pair.RefreshToken))

	_, err = svc.Rotate(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestTokenService_Rotate_DisabledAccount(t *testing.T) {
	r := newTestRepo(t)
	svc := &TokenService{
		Repo: r,
		Issuer: &tokens.Issuer{
			AccessSecret:  []byte("test-jwt-secret"),
			RefreshSecret: []byte("test-refresh-secret"),
		},
	}
	ctx := context.Background()

	user := seedUser(t, r, models.RoleCustomer)
	pair, err := svc.IssuePair(ctx, user)
	require.NoError(t, err)

	require.NoError(t, r.SetUserActive(ctx, user.ID, false))

	_, err = svc.Rotate(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
