package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"sheily-auth/internal/dto"
	"sheily-auth/internal/observability/metrics"
	"sheily-auth/internal/service/impl"
	"sheily-auth/internal/store"
	httpx "sheily-auth/internal/transport/http"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	metrics.MustRegister("transport-test")
	os.Exit(m.Run())
}

func newTestServer(t *testing.T) (*httptest.Server, *store.Store) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	st := store.New(db)
	if err := st.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	pw := impl.NewPasswordServiceBcrypt(bcrypt.MinCost)
	ts := impl.NewTokenServiceHS256(impl.TokenConfig{
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
		SigningKey: []byte("test-signing-key"),
	}, st)
	as := impl.NewAuthServiceImpl(st, pw, ts, nil, impl.AuthConfig{
		BaseURL:   "http://localhost:3000",
		AccessTTL: time.Hour,
	})
	cs := impl.NewChatServiceImpl(st)

	srv := httptest.NewServer(httpx.NewRouter(as, cs, ts, httpx.Options{}))
	t.Cleanup(func() {
		srv.Close()
		_ = st.Close()
	})
	return srv, st
}

func postJSON(t *testing.T, url, token string, body any) *nethttp.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req, err := nethttp.NewRequest(nethttp.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := nethttp.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	return resp
}

func getJSON(t *testing.T, url, token string) *nethttp.Response {
	t.Helper()
	req, err := nethttp.NewRequest(nethttp.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := nethttp.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *nethttp.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func drain(resp *nethttp.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := nethttp.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("get healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestAuthEndToEnd(t *testing.T) {
	srv, st := newTestServer(t)
	ctx := context.Background()

	// Register.
	resp := postJSON(t, srv.URL+"/v1/auth/register", "", dto.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "hunter22!",
	})
	if resp.StatusCode != nethttp.StatusCreated {
		t.Fatalf("register: expected 201, got %d", resp.StatusCode)
	}
	drain(resp)

	// Duplicate registration conflicts.
	resp = postJSON(t, srv.URL+"/v1/auth/register", "", dto.RegisterRequest{
		Username: "alice",
		Email:    "alice2@example.com",
		Password: "hunter22!",
	})
	if resp.StatusCode != nethttp.StatusConflict {
		t.Fatalf("duplicate register: expected 409, got %d", resp.StatusCode)
	}
	drain(resp)

	// Login is forbidden until the email is verified.
	resp = postJSON(t, srv.URL+"/v1/auth/login", "", dto.LoginRequest{Identifier: "alice", Password: "hunter22!"})
	if resp.StatusCode != nethttp.StatusForbidden {
		t.Fatalf("unverified login: expected 403, got %d", resp.StatusCode)
	}
	drain(resp)

	user, err := st.Users().GetByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	resp = postJSON(t, srv.URL+"/v1/auth/verify-email", "", dto.VerifyEmailRequest{Token: *user.VerificationToken})
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("verify email: expected 200, got %d", resp.StatusCode)
	}
	drain(resp)

	// Login and use the pair.
	resp = postJSON(t, srv.URL+"/v1/auth/login", "", dto.LoginRequest{Identifier: "alice", Password: "hunter22!"})
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("login: expected 200, got %d", resp.StatusCode)
	}
	login := decode[dto.LoginResponse](t, resp)
	if login.AccessToken == "" || login.User.Username != "alice" {
		t.Fatalf("unexpected login response: %+v", login)
	}

	// Wrong password is a 401.
	resp = postJSON(t, srv.URL+"/v1/auth/login", "", dto.LoginRequest{Identifier: "alice", Password: "wrong"})
	if resp.StatusCode != nethttp.StatusUnauthorized {
		t.Fatalf("wrong password: expected 401, got %d", resp.StatusCode)
	}
	drain(resp)

	// Profile requires a bearer token.
	resp = getJSON(t, srv.URL+"/v1/users/me", "")
	if resp.StatusCode != nethttp.StatusUnauthorized {
		t.Fatalf("me without token: expected 401, got %d", resp.StatusCode)
	}
	drain(resp)

	resp = getJSON(t, srv.URL+"/v1/users/me", login.AccessToken)
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("me: expected 200, got %d", resp.StatusCode)
	}
	drain(resp)

	// Refresh rotates the pair.
	resp = postJSON(t, srv.URL+"/v1/auth/refresh", "", dto.RefreshRequest{RefreshToken: login.RefreshToken})
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("refresh: expected 200, got %d", resp.StatusCode)
	}
	rotated := decode[dto.TokenResponse](t, resp)
	if rotated.AccessToken == "" || rotated.RefreshToken == login.RefreshToken {
		t.Fatalf("expected a rotated pair: %+v", rotated)
	}

	// An access token is rejected on the refresh path.
	resp = postJSON(t, srv.URL+"/v1/auth/refresh", "", dto.RefreshRequest{RefreshToken: login.AccessToken})
	if resp.StatusCode != nethttp.StatusBadRequest {
		t.Fatalf("refresh with access token: expected 400, got %d", resp.StatusCode)
	}
	drain(resp)

	// A plain user cannot reach admin routes.
	req, err := nethttp.NewRequest(nethttp.MethodPut, fmt.Sprintf("%s/v1/admin/users/%d/active", srv.URL, user.ID), bytes.NewReader([]byte(`{"active":false}`)))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+login.AccessToken)
	adminResp, err := nethttp.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("admin request: %v", err)
	}
	if adminResp.StatusCode != nethttp.StatusForbidden {
		t.Fatalf("admin route as user: expected 403, got %d", adminResp.StatusCode)
	}
	drain(adminResp)
}

func TestChatEndpoints(t *testing.T) {
	srv, st := newTestServer(t)
	ctx := context.Background()

	resp := postJSON(t, srv.URL+"/v1/auth/register", "", dto.RegisterRequest{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "hunter22!",
	})
	drain(resp)
	user, err := st.Users().GetByEmail(ctx, "bob@example.com")
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	if err := st.Users().MarkEmailVerified(ctx, user.ID); err != nil {
		t.Fatalf("verify: %v", err)
	}

	resp = postJSON(t, srv.URL+"/v1/auth/login", "", dto.LoginRequest{Identifier: "bob", Password: "hunter22!"})
	login := decode[dto.LoginResponse](t, resp)

	resp = postJSON(t, srv.URL+"/v1/chat/sessions", login.AccessToken, dto.CreateSessionRequest{BranchName: "general"})
	if resp.StatusCode != nethttp.StatusCreated {
		t.Fatalf("create session: expected 201, got %d", resp.StatusCode)
	}
	sess := decode[dto.CreateSessionResponse](t, resp)
	if sess.SessionID == "" {
		t.Fatalf("missing session id: %+v", sess)
	}

	resp = postJSON(t, srv.URL+"/v1/chat/sessions/"+sess.SessionID+"/messages", login.AccessToken, dto.AddMessageRequest{
		Message: "hello", IsUser: true, TokensUsed: 2,
	})
	if resp.StatusCode != nethttp.StatusCreated {
		t.Fatalf("add message: expected 201, got %d", resp.StatusCode)
	}
	drain(resp)

	resp = getJSON(t, srv.URL+"/v1/chat/sessions/"+sess.SessionID+"/messages", login.AccessToken)
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("history: expected 200, got %d", resp.StatusCode)
	}
	hist := decode[dto.SessionHistoryResponse](t, resp)
	if len(hist.Messages) != 1 || hist.Messages[0].Message != "hello" {
		t.Fatalf("unexpected history: %+v", hist)
	}

	resp = postJSON(t, srv.URL+"/v1/chat/sessions/"+sess.SessionID+"/close", login.AccessToken, struct{}{})
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("close: expected 200, got %d", resp.StatusCode)
	}
	drain(resp)

	// A session id belonging to nobody yields 404.
	resp = getJSON(t, srv.URL+"/v1/chat/sessions/chat_9_9/messages", login.AccessToken)
	if resp.StatusCode != nethttp.StatusNotFound {
		t.Fatalf("unknown session: expected 404, got %d", resp.StatusCode)
	}
	drain(resp)
}
