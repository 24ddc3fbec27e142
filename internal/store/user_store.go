package store

import (
	"context"
	"errors"
	"time"

	"sheily-auth/internal/domain"

	"gorm.io/gorm"
)

type UserStore struct{ db *gorm.DB }

func (s *Store) Users() *UserStore { return &UserStore{db: s.DB} }

// allowedProfileColumns is the fixed allow-list for profile updates.
// Caller-supplied field names never reach SQL; anything not in this map
// is dropped before the UPDATE is built.
var allowedProfileColumns = map[string]struct{}{
	"full_name": {},
}

func (u *UserStore) Create(ctx context.Context, usr *domain.User) error {
	if err := u.db.WithContext(ctx).Create(usr).Error; err != nil {
		if IsDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (u *UserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return u.getOne(ctx, "id = ?", id)
}

func (u *UserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return u.getOne(ctx, "username = ?", username)
}

func (u *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return u.getOne(ctx, "email = ?", email)
}

// GetByIdentifier looks a user up by username or email, whichever matches.
func (u *UserStore) GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	return u.getOne(ctx, "username = ? OR email = ?", identifier, identifier)
}

func (u *UserStore) getOne(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var user domain.User
	if err := u.db.WithContext(ctx).First(&user, append([]any{query}, args...)...).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (u *UserStore) UpdateLastLogin(ctx context.Context, userID int64) error {
	now := time.Now().UTC()
	return u.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", userID).
		Update("last_login", now).Error
}

func (u *UserStore) SetResetToken(ctx context.Context, userID int64, token string, expires time.Time) error {
	return u.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"reset_password_token":   token,
			"reset_password_expires": expires,
		}).Error
}

func (u *UserStore) ClearResetToken(ctx context.Context, userID int64) error {
	return u.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"reset_password_token":   nil,
			"reset_password_expires": nil,
		}).Error
}

// FindByResetToken only matches tokens that have not expired.
func (u *UserStore) FindByResetToken(ctx context.Context, token string) (*domain.User, error) {
	return u.getOne(ctx, "reset_password_token = ? AND reset_password_expires > ?", token, time.Now().UTC())
}

func (u *UserStore) SetVerificationToken(ctx context.Context, userID int64, token string) error {
	return u.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", userID).
		Update("verification_token", token).Error
}

func (u *UserStore) FindByVerificationToken(ctx context.Context, token string) (*domain.User, error) {
	return u.getOne(ctx, "verification_token = ?", token)
}

// MarkEmailVerified flips the flag and consumes the token in one UPDATE.
func (u *UserStore) MarkEmailVerified(ctx context.Context, userID int64) error {
	return u.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"email_verified":     true,
			"verification_token": nil,
		}).Error
}

func (u *UserStore) UpdatePasswordHash(ctx context.Context, userID int64, hash string) error {
	return u.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", userID).
		Update("password_hash", hash).Error
}

// ResetPassword stores the new hash and clears the reset token in a
// single UPDATE, so there is no window where both the old credential and
// a still-valid token coexist.
func (u *UserStore) ResetPassword(ctx context.Context, userID int64, hash string) error {
	return u.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"password_hash":          hash,
			"reset_password_token":   nil,
			"reset_password_expires": nil,
		}).Error
}

func (u *UserStore) UpdateProfile(ctx context.Context, userID int64, fields map[string]any) error {
	updates := map[string]any{}
	for col, v := range fields {
		if _, ok := allowedProfileColumns[col]; ok {
			updates[col] = v
		}
	}
	if len(updates) == 0 {
		return nil
	}
	return u.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", userID).
		Updates(updates).Error
}

func (u *UserStore) SetActive(ctx context.Context, userID int64, active bool) error {
	res := u.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", userID).
		Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
