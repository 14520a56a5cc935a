package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/shopserv/shopserv/internal/models"
	"github.com/shopserv/shopserv/internal/repo"
	"github.com/shopserv/shopserv/internal/tokens"
)

type TokenService struct {
	Repo   *repo.GormRepo
	Issuer *tokens.Issuer
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
}

// IssuePair mints an access/refresh pair and records the refresh token's
// hash so it can be rotated or revoked later.
func (s *TokenService) IssuePair(ctx context.Context, user *models.User) (*TokenPair, error) {
	id := strconv.FormatUint(uint64(user.ID), 10)

	access, accessExp, err := s.Issuer.NewAccessToken(id, user.Role)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := s.Issuer.NewRefreshToken(id)
	if err != nil {
		return nil, err
	}

	row := &models.RefreshToken{
		Token:     tokens.Sha256Hex(refresh),
		UserID:    user.ID,
		Role:      user.Role,
		ExpiresAt: refreshExp.Unix(),
	}
	if err := s.Repo.SaveRefreshToken(ctx, row); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
	}, nil
}

// Rotate trades a valid refresh token for a fresh pair. The old token is
// revoked in the same step, so each refresh token works exactly once.
func (s *TokenService) Rotate(ctx context.Context, rawRefresh string) (*TokenPair, error) {
	if _, err := s.Issuer.ParseRefresh(rawRefresh); err != nil {
		return nil, fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)
	}

	hashed := tokens.Sha256Hex(rawRefresh)
	stored, err := s.Repo.GetRefreshToken(ctx, hashed)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: unknown refresh token", ErrUnauthorized)
		}
		return nil, err
	}
	if stored.Revoked || stored.ExpiresAt < time.Now().Unix() {
		return nil, fmt.Errorf("%w: refresh token expired or revoked", ErrUnauthorized)
	}

	user, err := s.Repo.GetUser(ctx, stored.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account disabled", ErrUnauthorized)
	}

	if err := s.Repo.RevokeRefreshToken(ctx, hashed); err != nil {
		return nil, err
	}
	return s.IssuePair(ctx, user)
}

func (s *TokenService) Revoke(ctx context.Context, rawRefresh string) error {
	return s.Repo.RevokeRefreshToken(ctx, tokens.Sha256Hex(rawRefresh))
}
