package service

import (
	"context"

	"sheily-auth/internal/domain"
	"sheily-auth/internal/dto"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// TokenClaims is the signed claim set carried by both token kinds.
// Username and Role are set on access tokens only.
type TokenClaims struct {
	UserID    int64  `json:"user_id"`
	Username  string `json:"username,omitempty"`
	Role      string `json:"role,omitempty"`
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

type TokenService interface {
	IssueAccess(user *domain.User) (string, error)
	IssueRefresh(userID int64) (string, error)
	// Verify returns the claims only when the signature checks out, the
	// token has not expired, and its type claim equals expectedType.
	Verify(token, expectedType string) (*TokenClaims, error)
	// Refresh rotates the pair: the refresh token is verified, the user
	// reloaded, and a fresh access+refresh pair minted.
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
}
