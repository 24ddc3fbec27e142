package store

import (
	"context"
	"errors"
	"time"

	"sheily-auth/internal/domain"

	"gorm.io/gorm"
)

type ChatStore struct{ db *gorm.DB }

func (s *Store) Chats() *ChatStore { return &ChatStore{db: s.DB} }

func (c *ChatStore) CreateSession(ctx context.Context, sess *domain.ChatSession) error {
	if err := c.db.WithContext(ctx).Create(sess).Error; err != nil {
		if IsDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (c *ChatStore) GetSession(ctx context.Context, sessionID string) (*domain.ChatSession, error) {
	var sess domain.ChatSession
	if err := c.db.WithContext(ctx).First(&sess, "session_id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &sess, nil
}

func (c *ChatStore) SessionsByUser(ctx context.Context, userID int64) ([]domain.ChatSession, error) {
	var out []domain.ChatSession
	err := c.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("last_activity DESC").
		Find(&out).Error
	return out, err
}

// AppendMessage stores the message and bumps the session counters in one
// transaction so totals never drift from the message rows.
func (c *ChatStore) AppendMessage(ctx context.Context, msg *domain.ChatMessage) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		res := tx.Model(&domain.ChatSession{}).
			Where("session_id = ?", msg.SessionID).
			Updates(map[string]any{
				"total_messages": gorm.Expr("total_messages + 1"),
				"total_tokens":   gorm.Expr("total_tokens + ?", msg.TokensUsed),
				"last_activity":  time.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRecordNotFound
		}
		return nil
	})
}

func (c *ChatStore) MessagesBySession(ctx context.Context, sessionID string) ([]domain.ChatMessage, error) {
	var out []domain.ChatMessage
	err := c.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (c *ChatStore) SetSessionStatus(ctx context.Context, sessionID, status string) error {
	res := c.db.WithContext(ctx).Model(&domain.ChatSession{}).
		Where("session_id = ?", sessionID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
