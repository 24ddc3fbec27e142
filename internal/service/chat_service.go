package service

import (
	"context"

	"sheily-auth/internal/domain"
	"sheily-auth/internal/dto"
)

type ChatService interface {
	CreateSession(ctx context.Context, userID int64, branchName string) (*dto.CreateSessionResponse, error)
	Sessions(ctx context.Context, userID int64) ([]domain.ChatSession, error)
	AddMessage(ctx context.Context, sessionID string, userID int64, r dto.AddMessageRequest) error
	History(ctx context.Context, sessionID string, userID int64) (*dto.SessionHistoryResponse, error)
	CloseSession(ctx context.Context, sessionID string, userID int64) error

	ListBranches(ctx context.Context, enabledOnly bool) ([]domain.Branch, error)
	GetBranch(ctx context.Context, name string) (*domain.Branch, error)
	CreateBranch(ctx context.Context, r dto.CreateBranchRequest) error
	SetBranchEnabled(ctx context.Context, name string, enabled bool) error
}
