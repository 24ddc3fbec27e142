package http

import (
	"net/http"
	"time"

	"sheily-auth/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	obsmw "sheily-auth/internal/observability/middleware"
)

type Options struct {
	CORSOrigins []string
}

func NewRouter(auth service.AuthService, chats service.ChatService, tokens service.TokenService, opts Options) *chi.Mux {
	h := &handler{auth: auth, chats: chats, tokens: tokens}

	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(obsmw.WithRequestAndTrace)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(httprate.LimitByIP(100, 1*time.Minute))
	r.Use(obsmw.WithMetrics)

	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
		r.Post("/refresh", h.refresh)
		r.Post("/verify-email", h.verifyEmail)
		r.Post("/resend-verification", h.resendVerification)
		r.Post("/forgot-password", h.forgotPassword)
		r.Post("/reset-password", h.resetPassword)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)
			r.Post("/change-password", h.changePassword)
		})
	})

	r.Route("/v1/users", func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Get("/me", h.me)
		r.Patch("/me", h.updateProfile)
	})

	r.Route("/v1/chat", func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Post("/sessions", h.createSession)
		r.Get("/sessions", h.listSessions)
		r.Get("/sessions/{sessionID}/messages", h.sessionHistory)
		r.Post("/sessions/{sessionID}/messages", h.addMessage)
		r.Post("/sessions/{sessionID}/close", h.closeSession)
	})

	r.Route("/v1/branches", func(r chi.Router) {
		r.Get("/", h.listBranches)
		r.Get("/{name}", h.getBranch)
	})

	r.Route("/v1/admin", func(r chi.Router) {
		r.Use(h.requireAuth, h.requireAdmin)
		r.Put("/users/{userID}/active", h.setUserActive)
		r.Post("/branches", h.createBranch)
		r.Put("/branches/{name}/enabled", h.setBranchEnabled)
	})

	return r
}
