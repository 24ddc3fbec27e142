package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sheily-auth/internal/config"
	"sheily-auth/internal/mailer"
	"sheily-auth/internal/observability/logging"
	"sheily-auth/internal/observability/metrics"
	"sheily-auth/internal/service"
	impl "sheily-auth/internal/service/impl"
	"sheily-auth/internal/store"
	httpx "sheily-auth/internal/transport/http"
)

func main() {
	cfg := config.Load()

	logger := logging.NewLogger(logging.Config{
		ServiceName: "sheily-auth",
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
	})
	slog.SetDefault(logger)

	logger.Info("starting service", "backend", cfg.DBBackend)

	metrics.MustRegister("sheily-auth")

	st, err := store.Open(cfg)
	if err != nil {
		logger.Error("store open", "error", err)
		os.Exit(1)
	}
	defer func() { _ = st.Close() }()

	if err := st.Migrate(); err != nil {
		logger.Error("migrate", "error", err)
		os.Exit(1)
	}

	pw := impl.NewPasswordServiceBcrypt(impl.DefaultBcryptCost)

	ts := impl.NewTokenServiceHS256(impl.TokenConfig{
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
		SigningKey: []byte(cfg.JWTSecret),
	}, st)

	var mail service.Mailer
	if cfg.SMTPUser != "" {
		mail = mailer.NewSMTPMailer(mailer.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
	} else {
		mail = mailer.LogMailer{}
	}

	as := impl.NewAuthServiceImpl(st, pw, ts, mail, impl.AuthConfig{
		BaseURL:   cfg.FrontendBaseURL,
		AccessTTL: cfg.AccessTTL,
	})
	cs := impl.NewChatServiceImpl(st)

	router := httpx.NewRouter(as, cs, ts, httpx.Options{
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		logger.Error("server error", "error", err)
		os.Exit(1)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}
