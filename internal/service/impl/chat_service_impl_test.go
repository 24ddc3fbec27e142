package impl

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"sheily-auth/internal/domain"
	"sheily-auth/internal/dto"
)

func TestChatSessionLifecycle(t *testing.T) {
	st := newTestStore(t)
	svc := NewChatServiceImpl(st)
	ctx := context.Background()

	const owner int64 = 1
	const stranger int64 = 2

	sess, err := svc.CreateSession(ctx, owner, "general")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if !strings.HasPrefix(sess.SessionID, fmt.Sprintf("chat_%d_", owner)) {
		t.Fatalf("unexpected session id format: %q", sess.SessionID)
	}
	if sess.BranchName != "general" {
		t.Fatalf("unexpected branch: %q", sess.BranchName)
	}

	if err := svc.AddMessage(ctx, sess.SessionID, owner, dto.AddMessageRequest{Message: "hello", IsUser: true, TokensUsed: 3}); err != nil {
		t.Fatalf("add user message: %v", err)
	}
	if err := svc.AddMessage(ctx, sess.SessionID, owner, dto.AddMessageRequest{Message: "hi there", IsUser: false, TokensUsed: 5}); err != nil {
		t.Fatalf("add reply: %v", err)
	}

	hist, err := svc.History(ctx, sess.SessionID, owner)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(hist.Messages))
	}
	if hist.Messages[0].Message != "hello" || !hist.Messages[0].IsUser {
		t.Fatalf("messages out of order: %+v", hist.Messages)
	}
	if hist.Session.TotalMessages != 2 || hist.Session.TotalTokens != 8 {
		t.Fatalf("session counters not maintained: %+v", hist.Session)
	}

	// Sessions are invisible to anyone but their owner.
	if _, err := svc.History(ctx, sess.SessionID, stranger); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("foreign history: expected ErrSessionNotFound, got %v", err)
	}
	if err := svc.AddMessage(ctx, sess.SessionID, stranger, dto.AddMessageRequest{Message: "intrude", IsUser: true}); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("foreign append: expected ErrSessionNotFound, got %v", err)
	}
	if err := svc.CloseSession(ctx, sess.SessionID, stranger); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("foreign close: expected ErrSessionNotFound, got %v", err)
	}

	sessions, err := svc.Sessions(ctx, owner)
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 1 || sessions[0].SessionID != sess.SessionID {
		t.Fatalf("unexpected session listing: %+v", sessions)
	}
	if got, _ := svc.Sessions(ctx, stranger); len(got) != 0 {
		t.Fatalf("stranger sees sessions: %+v", got)
	}

	if err := svc.CloseSession(ctx, sess.SessionID, owner); err != nil {
		t.Fatalf("close: %v", err)
	}
	hist, err = svc.History(ctx, sess.SessionID, owner)
	if err != nil {
		t.Fatalf("history after close: %v", err)
	}
	if hist.Session.Status != domain.SessionClosed {
		t.Fatalf("expected closed status, got %q", hist.Session.Status)
	}
}

func TestChatValidations(t *testing.T) {
	st := newTestStore(t)
	svc := NewChatServiceImpl(st)
	ctx := context.Background()

	if _, err := svc.CreateSession(ctx, 1, ""); !errors.Is(err, ErrEmptyBranchName) {
		t.Fatalf("empty branch: expected ErrEmptyBranchName, got %v", err)
	}

	sess, err := svc.CreateSession(ctx, 1, "general")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := svc.AddMessage(ctx, sess.SessionID, 1, dto.AddMessageRequest{Message: ""}); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("empty message: expected ErrEmptyMessage, got %v", err)
	}
	if _, err := svc.History(ctx, "chat_1_nonexistent", 1); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("unknown session: expected ErrSessionNotFound, got %v", err)
	}
}

func TestBranchListingAndToggle(t *testing.T) {
	st := newTestStore(t)
	svc := NewChatServiceImpl(st)
	ctx := context.Background()

	seed := []domain.Branch{
		{Name: "general", Description: "General conversation", Enabled: true},
		{Name: "math", Description: "Mathematics", Keywords: `["algebra","calculus"]`, Enabled: true},
		{Name: "legacy", Description: "Retired branch", Enabled: false},
	}
	for i := range seed {
		if err := st.Branches().Upsert(ctx, &seed[i]); err != nil {
			t.Fatalf("seed branch %s: %v", seed[i].Name, err)
		}
	}

	enabled, err := svc.ListBranches(ctx, true)
	if err != nil {
		t.Fatalf("list enabled: %v", err)
	}
	if len(enabled) != 2 {
		t.Fatalf("expected 2 enabled branches, got %d", len(enabled))
	}

	all, err := svc.ListBranches(ctx, false)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 branches, got %d", len(all))
	}

	if err := svc.SetBranchEnabled(ctx, "legacy", true); err != nil {
		t.Fatalf("enable branch: %v", err)
	}
	enabled, err = svc.ListBranches(ctx, true)
	if err != nil {
		t.Fatalf("list enabled: %v", err)
	}
	if len(enabled) != 3 {
		t.Fatalf("expected 3 enabled branches after toggle, got %d", len(enabled))
	}

	if err := svc.SetBranchEnabled(ctx, "nope", true); !errors.Is(err, domain.ErrBranchNotFound) {
		t.Fatalf("unknown branch: expected ErrBranchNotFound, got %v", err)
	}
	if err := svc.SetBranchEnabled(ctx, "", true); !errors.Is(err, ErrEmptyBranchName) {
		t.Fatalf("empty branch name: expected ErrEmptyBranchName, got %v", err)
	}
}

func TestCreateAndGetBranch(t *testing.T) {
	st := newTestStore(t)
	svc := NewChatServiceImpl(st)
	ctx := context.Background()

	if err := svc.CreateBranch(ctx, dto.CreateBranchRequest{}); !errors.Is(err, ErrEmptyBranchName) {
		t.Fatalf("nameless branch: expected ErrEmptyBranchName, got %v", err)
	}

	req := dto.CreateBranchRequest{
		Name:        "science",
		Description: "Natural sciences",
		Keywords:    []string{"physics", "chemistry"},
	}
	if err := svc.CreateBranch(ctx, req); err != nil {
		t.Fatalf("create branch: %v", err)
	}

	br, err := svc.GetBranch(ctx, "science")
	if err != nil {
		t.Fatalf("get branch: %v", err)
	}
	if !br.Enabled || br.Description != "Natural sciences" {
		t.Fatalf("unexpected branch: %+v", br)
	}
	if br.Keywords != `["physics","chemistry"]` {
		t.Fatalf("keywords not JSON-encoded: %q", br.Keywords)
	}

	// Re-creating the same name keeps the existing row.
	if err := svc.CreateBranch(ctx, dto.CreateBranchRequest{Name: "science", Description: "Overwrite attempt"}); err != nil {
		t.Fatalf("idempotent create: %v", err)
	}
	br, err = svc.GetBranch(ctx, "science")
	if err != nil {
		t.Fatalf("reload branch: %v", err)
	}
	if br.Description != "Natural sciences" {
		t.Fatalf("existing branch was overwritten: %+v", br)
	}

	if _, err := svc.GetBranch(ctx, "missing"); !errors.Is(err, domain.ErrBranchNotFound) {
		t.Fatalf("unknown branch: expected ErrBranchNotFound, got %v", err)
	}
}
