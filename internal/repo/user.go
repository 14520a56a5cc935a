package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/shopserv/shopserv/internal/models"
)

func (r *GormRepo) CreateUser(ctx context.Context, user *models.User) error {
	return r.DB.WithContext(ctx).Create(user).Error
}

func (r *GormRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) UpdateUserPassword(ctx context.Context, email, passwordHash string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", email).
		Update("password_hash", passwordHash).Error
}

func (r *GormRepo) SetUserActive(ctx context.Context, id uint, active bool) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("is_active", active).Error
}

func (r *GormRepo) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	var users []models.User
	if err := r.DB.WithContext(ctx).
		Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ReplaceOTP enforces the single-active-code invariant: old codes for the
// email are deleted before the new one is inserted, inside one transaction.
func (r *GormRepo) ReplaceOTP(ctx context.Context, otp *models.OTP) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", otp.Email).Delete(&models.OTP{}).Error; err != nil {
			return err
		}
		return tx.Create(otp).Error
	})
}

// ConsumeOTP marks a matching unused, unexpired code as used. A zero-row
// update means the code is wrong, spent, or stale.
func (r *GormRepo) ConsumeOTP(ctx context.Context, email, code string, now time.Time) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.OTP{}).
		Where("email = ? AND code = ? AND used = ? AND expires_at > ?", email, code, false, now).
		Update("used", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CheckOTP reports whether an unexpired, unused code exists without
// consuming it.
func (r *GormRepo) CheckOTP(ctx context.Context, email, code string, now time.Time) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.OTP{}).
		Where("email = ? AND code = ? AND used = ? AND expires_at > ?", email, code, false, now).
		Count(&n).Error
	return n > 0, err
}

func (r *GormRepo) SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	return r.DB.WithContext(ctx).Create(token).Error
}

func (r *GormRepo) GetRefreshToken(ctx context.Context, raw string) (*models.RefreshToken, error) {
	var stored models.RefreshToken
	if err := r.DB.WithContext(ctx).Where("token = ?", raw).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *GormRepo) RevokeRefreshToken(ctx context.Context, raw string) error {
	return r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token = ?", raw).
		Update("revoked", true).Error
}
