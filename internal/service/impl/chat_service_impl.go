package impl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"sheily-auth/internal/domain"
	"sheily-auth/internal/dto"
	"sheily-auth/internal/store"

	"github.com/google/uuid"
)

type ChatServiceImpl struct {
	Store *store.Store
}

func NewChatServiceImpl(st *store.Store) *ChatServiceImpl {
	return &ChatServiceImpl{Store: st}
}

func (c *ChatServiceImpl) CreateSession(ctx context.Context, userID int64, branchName string) (*dto.CreateSessionResponse, error) {
	if branchName == "" {
		return nil, ErrEmptyBranchName
	}

	sess := &domain.ChatSession{
		UserID:       userID,
		SessionID:    fmt.Sprintf("chat_%d_%d", userID, time.Now().Unix()),
		BranchName:   branchName,
		Status:       domain.SessionActive,
		LastActivity: time.Now().UTC(),
	}

	err := c.Store.Chats().CreateSession(ctx, sess)
	if errors.Is(err, store.ErrDuplicate) {
		// Two sessions in the same second; disambiguate and retry once.
		sess.ID = 0
		sess.SessionID = fmt.Sprintf("chat_%d_%s", userID, uuid.New().String())
		err = c.Store.Chats().CreateSession(ctx, sess)
	}
	if err != nil {
		return nil, storageFailure("chat: create session", err)
	}

	slog.Info("chat session created", "user_id", userID, "session_id", sess.SessionID, "branch", branchName)
	return &dto.CreateSessionResponse{
		SessionID:  sess.SessionID,
		BranchName: branchName,
	}, nil
}

func (c *ChatServiceImpl) Sessions(ctx context.Context, userID int64) ([]domain.ChatSession, error) {
	sessions, err := c.Store.Chats().SessionsByUser(ctx, userID)
	if err != nil {
		return nil, storageFailure("chat: list sessions", err)
	}
	return sessions, nil
}

func (c *ChatServiceImpl) AddMessage(ctx context.Context, sessionID string, userID int64, r dto.AddMessageRequest) error {
	if r.Message == "" {
		return ErrEmptyMessage
	}

	if _, err := c.ownedSession(ctx, sessionID, userID); err != nil {
		return err
	}

	msg := &domain.ChatMessage{
		SessionID:  sessionID,
		UserID:     userID,
		Message:    r.Message,
		IsUser:     r.IsUser,
		TokensUsed: r.TokensUsed,
	}
	if err := c.Store.Chats().AppendMessage(ctx, msg); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return domain.ErrSessionNotFound
		}
		return storageFailure("chat: append message", err)
	}
	return nil
}

func (c *ChatServiceImpl) History(ctx context.Context, sessionID string, userID int64) (*dto.SessionHistoryResponse, error) {
	sess, err := c.ownedSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	messages, err := c.Store.Chats().MessagesBySession(ctx, sessionID)
	if err != nil {
		return nil, storageFailure("chat: list messages", err)
	}

	return &dto.SessionHistoryResponse{
		Session:  *sess,
		Messages: messages,
	}, nil
}

func (c *ChatServiceImpl) CloseSession(ctx context.Context, sessionID string, userID int64) error {
	if _, err := c.ownedSession(ctx, sessionID, userID); err != nil {
		return err
	}
	if err := c.Store.Chats().SetSessionStatus(ctx, sessionID, domain.SessionClosed); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return domain.ErrSessionNotFound
		}
		return storageFailure("chat: close session", err)
	}
	return nil
}

func (c *ChatServiceImpl) ListBranches(ctx context.Context, enabledOnly bool) ([]domain.Branch, error) {
	branches, err := c.Store.Branches().List(ctx, enabledOnly)
	if err != nil {
		return nil, storageFailure("branches: list", err)
	}
	return branches, nil
}

func (c *ChatServiceImpl) GetBranch(ctx context.Context, name string) (*domain.Branch, error) {
	if name == "" {
		return nil, ErrEmptyBranchName
	}
	br, err := c.Store.Branches().GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, domain.ErrBranchNotFound
		}
		return nil, storageFailure("branches: get", err)
	}
	return br, nil
}

// CreateBranch is idempotent: re-creating an existing name keeps the
// stored row.
func (c *ChatServiceImpl) CreateBranch(ctx context.Context, r dto.CreateBranchRequest) error {
	if r.Name == "" {
		return ErrEmptyBranchName
	}

	keywords := "[]"
	if len(r.Keywords) > 0 {
		buf, err := json.Marshal(r.Keywords)
		if err != nil {
			return fmt.Errorf("%w: keywords not encodable", domain.ErrValidation)
		}
		keywords = string(buf)
	}

	br := &domain.Branch{
		Name:        r.Name,
		Description: r.Description,
		Keywords:    keywords,
		Enabled:     true,
	}
	if err := c.Store.Branches().Upsert(ctx, br); err != nil {
		return storageFailure("branches: create", err)
	}
	return nil
}

func (c *ChatServiceImpl) SetBranchEnabled(ctx context.Context, name string, enabled bool) error {
	if name == "" {
		return ErrEmptyBranchName
	}
	if err := c.Store.Branches().SetEnabled(ctx, name, enabled); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return domain.ErrBranchNotFound
		}
		return storageFailure("branches: set enabled", err)
	}
	return nil
}

// ownedSession loads the session and hides its existence from anyone but
// the owner.
func (c *ChatServiceImpl) ownedSession(ctx context.Context, sessionID string, userID int64) (*domain.ChatSession, error) {
	sess, err := c.Store.Chats().GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, storageFailure("chat: lookup session", err)
	}
	if sess.UserID != userID {
		return nil, domain.ErrSessionNotFound
	}
	return sess, nil
}
