package service

import (
	"context"

	"sheily-auth/internal/domain"
	"sheily-auth/internal/dto"
)

type AuthService interface {
	Register(ctx context.Context, r dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(ctx context.Context, r dto.LoginRequest) (*dto.LoginResponse, error)
	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, email string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error
	UpdateProfile(ctx context.Context, userID int64, r dto.UpdateProfileRequest) error
	Profile(ctx context.Context, userID int64) (*domain.UserProfile, error)
	SetUserActive(ctx context.Context, userID int64, active bool) error
}
