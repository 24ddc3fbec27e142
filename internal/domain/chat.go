package domain

import "time"

type ChatSession struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        int64     `gorm:"index;not null" json:"userId"`
	SessionID     string    `gorm:"size:255;uniqueIndex:ux_chat_sessions_session_id;not null" json:"sessionId"`
	BranchName    string    `gorm:"size:100;not null" json:"branchName"`
	Status        string    `gorm:"size:20;not null;default:active" json:"status"`
	TotalMessages int       `gorm:"not null;default:0" json:"totalMessages"`
	TotalTokens   int       `gorm:"not null;default:0" json:"totalTokens"`
	CreatedAt     time.Time `gorm:"not null" json:"createdAt"`
	LastActivity  time.Time `gorm:"not null" json:"lastActivity"`
}

func (ChatSession) TableName() string { return "chat_sessions" }

const (
	SessionActive = "active"
	SessionClosed = "closed"
)

type ChatMessage struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID  string    `gorm:"size:255;index;not null" json:"sessionId"`
	UserID     int64     `gorm:"index;not null" json:"userId"`
	Message    string    `gorm:"type:text;not null" json:"message"`
	IsUser     bool      `gorm:"not null" json:"isUser"`
	TokensUsed int       `gorm:"not null;default:0" json:"tokensUsed"`
	CreatedAt  time.Time `gorm:"not null" json:"createdAt"`
}

func (ChatMessage) TableName() string { return "chat_messages" }
