package impl

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"sheily-auth/internal/domain"
	"sheily-auth/internal/dto"
	"sheily-auth/internal/observability/metrics"
	"sheily-auth/internal/service"
	"sheily-auth/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ====== Config ======

type TokenConfig struct {
	AccessTTL  time.Duration // e.g. 1h
	RefreshTTL time.Duration // e.g. 24h
	SigningKey []byte        // HS256 secret
}

// ====== Service ======

type TokenServiceImpl struct {
	cfg   TokenConfig
	store *store.Store
	now   func() time.Time
}

func NewTokenServiceHS256(cfg TokenConfig, st *store.Store) *TokenServiceImpl {
	return &TokenServiceImpl{cfg: cfg, store: st, now: func() time.Time { return time.Now().UTC() }}
}

// AccessTTL reports the configured access-token lifetime.
func (t *TokenServiceImpl) AccessTTL() time.Duration { return t.cfg.AccessTTL }

func (t *TokenServiceImpl) IssueAccess(user *domain.User) (string, error) {
	now := t.now()
	claims := service.TokenClaims{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		TokenType: service.TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.cfg.AccessTTL)),
			ID:        uuid.New().String(), // unique per access token
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.cfg.SigningKey)
}

func (t *TokenServiceImpl) IssueRefresh(userID int64) (string, error) {
	now := t.now()
	claims := service.TokenClaims{
		UserID:    userID,
		TokenType: service.TokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.cfg.RefreshTTL)),
			ID:        uuid.New().String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.cfg.SigningKey)
}

// Verify decodes and signature-checks the token. Any failure collapses
// to domain.ErrInvalidToken; callers learn nothing beyond "rejected".
func (t *TokenServiceImpl) Verify(tokenStr, expectedType string) (*service.TokenClaims, error) {
	claims := &service.TokenClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	tok, err := parser.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return t.cfg.SigningKey, nil
	})
	if err != nil || !tok.Valid {
		return nil, domain.ErrInvalidToken
	}
	if claims.TokenType != expectedType {
		return nil, domain.ErrInvalidToken
	}
	// The parser already rejects expired tokens; re-check explicitly so a
	// parser configured differently can never leak an expired claim set.
	if claims.ExpiresAt == nil || !t.now().Before(claims.ExpiresAt.Time) {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}

// Refresh rotates the pair on every use. The old refresh token is not
// denylisted; short TTLs bound its remaining life.
func (t *TokenServiceImpl) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	result := "success"
	defer func() {
		metrics.TokensIssuedTotal.WithLabelValues("refresh", result).Inc()
	}()

	claims, err := t.Verify(refreshToken, service.TokenTypeRefresh)
	if err != nil {
		result = "failure"
		return nil, domain.ErrInvalidToken
	}

	user, err := t.store.Users().GetByID(ctx, claims.UserID)
	if err != nil {
		result = "failure"
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, domain.ErrInvalidToken
		}
		slog.Error("refresh: load user", "user_id", claims.UserID, "error", err)
		return nil, domain.ErrStorage
	}
	if !user.IsActive {
		result = "failure"
		return nil, domain.ErrUserDisabled
	}

	access, err := t.IssueAccess(user)
	if err != nil {
		result = "failure"
		return nil, err
	}
	refresh, err := t.IssueRefresh(user.ID)
	if err != nil {
		result = "failure"
		return nil, err
	}

	slog.Info("refreshed tokens", "user_id", user.ID)

	return &dto.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(t.cfg.AccessTTL.Seconds()),
	}, nil
}
