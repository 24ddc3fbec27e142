package config

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

type Config struct {
	// Storage. Backend is fixed once per process.
	DBBackend   string
	DatabaseURL string // postgres DSN
	SQLitePath  string

	// Tokens
	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Outbound email
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string
	// FrontendBaseURL is where verification/reset links point.
	FrontendBaseURL string

	// HTTP
	Addr        string
	CORSOrigins []string

	Environment string
	LogLevel    string
}

// Load reads configuration from the environment, with a .env file as an
// optional source for local development. Every knob has a workable
// default except the JWT secret: absent a configured secret a random
// ephemeral one is generated, which invalidates all tokens across
// restarts, so we warn loudly.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		DBBackend:   getenv("DB_BACKEND", BackendPostgres),
		DatabaseURL: getenv("DATABASE_URL", "postgres://sheily_ai_user:@localhost:5432/sheily_ai_db?sslmode=disable"),
		SQLitePath:  getenv("SQLITE_PATH", "sheily_ai.db"),

		JWTSecret:  os.Getenv("JWT_SECRET"),
		AccessTTL:  getdur("JWT_EXPIRATION", time.Hour),
		RefreshTTL: getdur("REFRESH_TOKEN_EXPIRATION", 24*time.Hour),

		SMTPHost:        getenv("SMTP_SERVER", "smtp.gmail.com"),
		SMTPPort:        getint("SMTP_PORT", 587),
		SMTPUser:        os.Getenv("SMTP_USER"),
		SMTPPassword:    os.Getenv("SMTP_PASSWORD"),
		MailFrom:        getenv("MAIL_FROM", os.Getenv("SMTP_USER")),
		FrontendBaseURL: getenv("FRONTEND_BASE_URL", "http://localhost:3000"),

		Addr:        getenv("ADDR", ":8000"),
		CORSOrigins: getlist("CORS_ORIGINS"),

		Environment: getenv("ENVIRONMENT", "dev"),
		LogLevel:    os.Getenv("LOG_LEVEL"),
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = randomSecret()
		slog.Warn("JWT_SECRET not set, generated an ephemeral secret; all issued tokens become invalid on restart")
	}

	return cfg
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		slog.Error("cannot generate ephemeral secret", "error", err)
		os.Exit(1)
	}
	return hex.EncodeToString(buf)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		slog.Warn("invalid integer, using default", "key", k, "value", v, "default", def)
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	// The legacy deployment configured TTLs as bare seconds.
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	slog.Warn("invalid duration, using default", "key", k, "value", v, "default", def)
	return def
}

func getlist(k string) []string {
	v := os.Getenv(k)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
