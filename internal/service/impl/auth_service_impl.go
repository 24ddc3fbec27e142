package impl

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"
	"time"

	"sheily-auth/internal/domain"
	"sheily-auth/internal/dto"
	"sheily-auth/internal/mailer"
	"sheily-auth/internal/observability/metrics"
	"sheily-auth/internal/service"
	"sheily-auth/internal/store"
)

const resetTokenTTL = time.Hour

type AuthConfig struct {
	// BaseURL is the frontend origin that verification/reset links point to.
	BaseURL string
	// AccessTTL is echoed to clients as expires_in.
	AccessTTL time.Duration
	// MailTimeout bounds a single outbound delivery attempt.
	MailTimeout time.Duration
}

type AuthServiceImpl struct {
	Store           *store.Store
	PasswordService service.PasswordService
	TService        service.TokenService
	Mailer          service.Mailer
	cfg             AuthConfig
}

func NewAuthServiceImpl(st *store.Store, passwordService service.PasswordService, tokenService service.TokenService, m service.Mailer, cfg AuthConfig) *AuthServiceImpl {
	if cfg.MailTimeout <= 0 {
		cfg.MailTimeout = 10 * time.Second
	}
	return &AuthServiceImpl{
		Store:           st,
		PasswordService: passwordService,
		TService:        tokenService,
		Mailer:          m,
		cfg:             cfg,
	}
}

func (a *AuthServiceImpl) Register(ctx context.Context, r dto.RegisterRequest) (*dto.RegisterResponse, error) {
	result := "success"
	defer func() {
		metrics.AuthRegistrationsTotal.WithLabelValues(result).Inc()
	}()

	if len(r.Username) < 3 {
		result = "failure"
		return nil, ErrUsernameTooShort
	}
	if len(r.Password) < 8 {
		result = "failure"
		return nil, ErrPasswordTooShort
	}
	if !strings.Contains(r.Email, "@") || !strings.Contains(r.Email, ".") {
		result = "failure"
		return nil, ErrInvalidEmail
	}

	// Fast-path existence checks; the unique indexes remain the
	// authoritative guard against a concurrent registration.
	if _, err := a.Store.Users().GetByUsername(ctx, r.Username); err == nil {
		result = "failure"
		return nil, domain.ErrUsernameTaken
	} else if !errors.Is(err, store.ErrRecordNotFound) {
		result = "failure"
		return nil, storageFailure("register: lookup username", err)
	}
	if _, err := a.Store.Users().GetByEmail(ctx, r.Email); err == nil {
		result = "failure"
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, store.ErrRecordNotFound) {
		result = "failure"
		return nil, storageFailure("register: lookup email", err)
	}

	hash, err := a.PasswordService.Hash(r.Password)
	if err != nil {
		result = "failure"
		slog.Error("register: hash password", "error", err)
		return nil, domain.ErrStorage
	}

	verificationToken := newURLToken()

	user := &domain.User{
		Username:          r.Username,
		Email:             r.Email,
		PasswordHash:      hash,
		Role:              domain.RoleUser,
		IsActive:          true,
		EmailVerified:     false,
		VerificationToken: &verificationToken,
	}
	if r.FullName != "" {
		fn := r.FullName
		user.FullName = &fn
	}

	if err := a.Store.Users().Create(ctx, user); err != nil {
		result = "failure"
		if errors.Is(err, store.ErrDuplicate) {
			// Lost the race after the fast path; figure out which key.
			if _, e := a.Store.Users().GetByUsername(ctx, r.Username); e == nil {
				return nil, domain.ErrUsernameTaken
			}
			return nil, domain.ErrEmailTaken
		}
		return nil, storageFailure("register: create user", err)
	}

	a.sendAsync(user.Email, mailer.VerificationEmail(user.Username, a.cfg.BaseURL, verificationToken))

	slog.Info("user registered", "user_id", user.ID, "username", user.Username)
	return &dto.RegisterResponse{
		UserID:                    user.ID,
		RequiresEmailVerification: true,
		Message:                   "registration successful, check your email to verify the account",
	}, nil
}

func (a *AuthServiceImpl) Login(ctx context.Context, r dto.LoginRequest) (*dto.LoginResponse, error) {
	result := "success"
	defer func() {
		metrics.AuthLoginsTotal.WithLabelValues(result).Inc()
	}()

	if r.Identifier == "" || r.Password == "" {
		result = "failure"
		return nil, domain.ErrInvalidCredentials
	}

	user, err := a.Store.Users().GetByIdentifier(ctx, r.Identifier)
	if err != nil {
		result = "failure"
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, storageFailure("login: lookup user", err)
	}

	if !user.IsActive {
		result = "failure"
		return nil, domain.ErrUserDisabled
	}
	if !a.PasswordService.Verify(r.Password, user.PasswordHash) {
		result = "failure"
		return nil, domain.ErrInvalidCredentials
	}
	if !user.EmailVerified {
		result = "failure"
		return nil, domain.ErrEmailNotVerified
	}

	access, err := a.TService.IssueAccess(user)
	if err != nil {
		result = "failure"
		slog.Error("login: issue access token", "user_id", user.ID, "error", err)
		return nil, domain.ErrStorage
	}
	refresh, err := a.TService.IssueRefresh(user.ID)
	if err != nil {
		result = "failure"
		slog.Error("login: issue refresh token", "user_id", user.ID, "error", err)
		return nil, domain.ErrStorage
	}

	// Best effort: a failed audit write must not fail the login.
	if err := a.Store.Users().UpdateLastLogin(ctx, user.ID); err != nil {
		slog.Warn("login: update last_login", "user_id", user.ID, "error", err)
	}

	slog.Info("user authenticated", "user_id", user.ID, "username", user.Username)
	return &dto.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(a.cfg.AccessTTL.Seconds()),
		User:         user.Profile(),
	}, nil
}

func (a *AuthServiceImpl) VerifyEmail(ctx context.Context, token string) error {
	result := "success"
	defer func() {
		metrics.EmailVerificationsTotal.WithLabelValues(result).Inc()
	}()

	user, err := a.Store.Users().FindByVerificationToken(ctx, token)
	if err != nil {
		result = "failure"
		if errors.Is(err, store.ErrRecordNotFound) {
			return domain.ErrInvalidToken
		}
		return storageFailure("verify email: lookup token", err)
	}

	if err := a.Store.Users().MarkEmailVerified(ctx, user.ID); err != nil {
		result = "failure"
		return storageFailure("verify email: mark verified", err)
	}

	slog.Info("email verified", "user_id", user.ID, "username", user.Username)
	return nil
}

func (a *AuthServiceImpl) ResendVerification(ctx context.Context, email string) error {
	user, err := a.Store.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return storageFailure("resend verification: lookup user", err)
	}
	if user.EmailVerified {
		return domain.ErrEmailVerified
	}

	token := newURLToken()
	if err := a.Store.Users().SetVerificationToken(ctx, user.ID, token); err != nil {
		return storageFailure("resend verification: store token", err)
	}

	a.sendAsync(user.Email, mailer.VerificationEmail(user.Username, a.cfg.BaseURL, token))
	return nil
}

// RequestPasswordReset always reports success to the caller, whether or
// not the email exists, so account presence cannot be probed. Each call
// overwrites any earlier reset token: last request wins.
func (a *AuthServiceImpl) RequestPasswordReset(ctx context.Context, email string) error {
	result := "success"
	defer func() {
		metrics.PasswordResetsTotal.WithLabelValues("request", result).Inc()
	}()

	user, err := a.Store.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil
		}
		result = "failure"
		return storageFailure("password reset: lookup user", err)
	}

	token := newURLToken()
	expires := time.Now().UTC().Add(resetTokenTTL)
	if err := a.Store.Users().SetResetToken(ctx, user.ID, token, expires); err != nil {
		result = "failure"
		return storageFailure("password reset: store token", err)
	}

	a.sendAsync(user.Email, mailer.PasswordResetEmail(user.Username, a.cfg.BaseURL, token))

	slog.Info("password reset requested", "user_id", user.ID)
	return nil
}

func (a *AuthServiceImpl) ResetPassword(ctx context.Context, token, newPassword string) error {
	result := "success"
	defer func() {
		metrics.PasswordResetsTotal.WithLabelValues("reset", result).Inc()
	}()

	if len(newPassword) < 8 {
		result = "failure"
		return ErrPasswordTooShort
	}

	hash, err := a.PasswordService.Hash(newPassword)
	if err != nil {
		result = "failure"
		slog.Error("reset password: hash", "error", err)
		return domain.ErrStorage
	}

	// Lookup and consumption run in one transaction: a concurrent writer
	// on the same account cannot slip between the token check and the
	// password update.
	err = a.Store.WithTx(ctx, func(tx *store.Store) error {
		user, err := tx.Users().FindByResetToken(ctx, token)
		if err != nil {
			if errors.Is(err, store.ErrRecordNotFound) {
				return domain.ErrInvalidToken
			}
			return err
		}
		return tx.Users().ResetPassword(ctx, user.ID, hash)
	})
	if err != nil {
		result = "failure"
		if errors.Is(err, domain.ErrInvalidToken) {
			return domain.ErrInvalidToken
		}
		return storageFailure("reset password", err)
	}

	slog.Info("password reset completed")
	return nil
}

func (a *AuthServiceImpl) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	user, err := a.Store.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return storageFailure("change password: lookup user", err)
	}

	if !a.PasswordService.Verify(currentPassword, user.PasswordHash) {
		return domain.ErrInvalidCredentials
	}
	if len(newPassword) < 8 {
		return ErrPasswordTooShort
	}

	hash, err := a.PasswordService.Hash(newPassword)
	if err != nil {
		slog.Error("change password: hash", "user_id", userID, "error", err)
		return domain.ErrStorage
	}
	if err := a.Store.Users().UpdatePasswordHash(ctx, userID, hash); err != nil {
		return storageFailure("change password: store hash", err)
	}

	slog.Info("password changed", "user_id", userID)
	return nil
}

func (a *AuthServiceImpl) UpdateProfile(ctx context.Context, userID int64, r dto.UpdateProfileRequest) error {
	fields := map[string]any{}
	if r.FullName != nil {
		fields["full_name"] = *r.FullName
	}
	if len(fields) == 0 {
		return ErrNoProfileFields
	}

	if err := a.Store.Users().UpdateProfile(ctx, userID, fields); err != nil {
		return storageFailure("update profile", err)
	}
	return nil
}

func (a *AuthServiceImpl) Profile(ctx context.Context, userID int64) (*domain.UserProfile, error) {
	user, err := a.Store.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, storageFailure("profile: lookup user", err)
	}
	p := user.Profile()
	return &p, nil
}

func (a *AuthServiceImpl) SetUserActive(ctx context.Context, userID int64, active bool) error {
	if err := a.Store.Users().SetActive(ctx, userID, active); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return storageFailure("set user active", err)
	}
	slog.Info("user active flag updated", "user_id", userID, "active", active)
	return nil
}

// ====== Helpers ======

// sendAsync dispatches mail without blocking the caller's response.
func (a *AuthServiceImpl) sendAsync(to string, msg mailer.Message) {
	if a.Mailer == nil {
		return
	}
	timeout := a.cfg.MailTimeout
	m := a.Mailer
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := m.Send(ctx, to, msg.Subject, msg.HTML); err != nil {
			slog.Error("send mail", "to", to, "subject", msg.Subject, "error", err)
		}
	}()
}

// newURLToken returns 32 random bytes, URL-safe encoded.
func newURLToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process has bigger problems.
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}

func storageFailure(op string, err error) error {
	slog.Error("storage failure", "op", op, "error", err)
	return domain.ErrStorage
}
