package dto

import "sheily-auth/internal/domain"

type CreateSessionRequest struct {
	BranchName string `json:"branchName"`
}

type CreateSessionResponse struct {
	SessionID  string `json:"sessionId"`
	BranchName string `json:"branchName"`
}

type AddMessageRequest struct {
	Message    string `json:"message"`
	IsUser     bool   `json:"isUser"`
	TokensUsed int    `json:"tokensUsed,omitempty"`
}

type CreateBranchRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
}

type SessionHistoryResponse struct {
	Session  domain.ChatSession   `json:"session"`
	Messages []domain.ChatMessage `json:"messages"`
}
