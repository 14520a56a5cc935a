package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/shopserv/shopserv/internal/hash"
	"github.com/shopserv/shopserv/internal/models"
	"github.com/shopserv/shopserv/internal/repo"
)

type AuthService struct {
	Repo   *repo.GormRepo
	OTPTTL time.Duration
}

func (s *AuthService) Register(ctx context.Context, email, password, fullName, phone string, role models.Role) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: valid email required", ErrValidation)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password required", ErrValidation)
	}
	if fullName == "" {
		return nil, fmt.Errorf("%w: full name required", ErrValidation)
	}
	if role != models.RoleCustomer && role != models.RoleShopOwner {
		return nil, fmt.Errorf("%w: invalid role", ErrValidation)
	}

	if _, err := s.Repo.GetUserByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: user already exists", ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	passwordHash, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     fullName,
		Phone:        phone,
		Role:         role,
		IsActive:     true,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.Repo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user", ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password required", ErrValidation)
	}

	user, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account disabled", ErrUnauthorized)
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	return user, nil
}

// RequestPasswordReset stores a fresh OTP for the email and returns the
// code for the caller to deliver. An unknown email yields an empty code and
// no error so the response cannot leak account existence.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", fmt.Errorf("%w: email required", ErrValidation)
	}

	if _, err := s.Repo.GetUserByEmail(ctx, email); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}

	code, err := generateOTP()
	if err != nil {
		return "", err
	}

	ttl := s.OTPTTL
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	otp := &models.OTP{
		Email:     email,
		Code:      code,
		ExpiresAt: time.Now().UTC().Add(ttl),
	}
	if err := s.Repo.ReplaceOTP(ctx, otp); err != nil {
		return "", err
	}
	return code, nil
}

// VerifyOTP checks a code without consuming it, so the client can gate its
// reset form. The code is only spent by ResetPassword.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || code == "" {
		return fmt.Errorf("%w: email and code required", ErrValidation)
	}

	ok, err := s.Repo.CheckOTP(ctx, email, code, time.Now().UTC())
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: invalid or expired code", ErrValidation)
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || code == "" || newPassword == "" {
		return fmt.Errorf("%w: email, code and password required", ErrValidation)
	}

	if _, err := s.Repo.GetUserByEmail(ctx, email); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user", ErrNotFound)
		}
		return err
	}

	ok, err := s.Repo.ConsumeOTP(ctx, email, code, time.Now().UTC())
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: invalid or expired code", ErrValidation)
	}

	passwordHash, err := hash.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.Repo.UpdateUserPassword(ctx, email, passwordHash)
}

func generateOTP() (string, error) {
	const digits = "0123456789"
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i := range buf {
		buf[i] = digits[int(buf[i])%len(digits)]
	}
	return string(buf), nil
}
