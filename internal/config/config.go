// Package config loads application configuration from environment
// variables.  Required variables are enforced with fail-fast helpers;
// optional ones carry defaults.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Auth mode values accepted in AUTH_MODE.
const (
	AuthModeJWT     = "jwt"
	AuthModeSession = "session"
)

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.
type Config struct {
	Env  string // application environment (dev/test/prod)
	Port string // HTTP port to listen on

	DBUser string // database username
	DBPass string // database password (optional)
	DBHost string // database host address
	DBPort string // database port number
	DBName string // database name

	AuthMode   string        // "jwt" (stateless) or "session" (stateful)
	JWTSecret  string        // secret used to sign JWTs (jwt mode)
	TokenTTL   time.Duration // bearer token lifetime
	SessionTTL time.Duration // session idle lifetime
	BcryptCost int           // bcrypt cost for password hashing

	GoogleClientID     string // OAuth client id (empty disables social login)
	GoogleClientSecret string // OAuth client secret
	GoogleRedirectURL  string // OAuth callback URL

	SMTPAddr string // host:port of the SMTP relay for welcome mail
	MailFrom string // From address on outgoing mail
	AMQPURL  string // RabbitMQ connection URL (empty disables welcome mail)
}

// Load reads configuration from the environment.  Missing required
// variables abort startup with a fatal log message.
func Load() Config {
	cfg := Config{
		Env:    must("APP_ENV"),
		Port:   must("APP_PORT"),
		DBUser: must("DB_USER"),
		DBPass: os.Getenv("DB_PASS"),
		DBHost: must("DB_HOST"),
		DBPort: must("DB_PORT"),
		DBName: must("DB_NAME"),

		AuthMode:   getenv("AUTH_MODE", AuthModeJWT),
		TokenTTL:   envDur("TOKEN_TTL", time.Hour),
		SessionTTL: envDur("SESSION_TTL", time.Hour),
		BcryptCost: mustInt("BCRYPT_COST"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),

		SMTPAddr: getenv("SMTP_ADDR", "localhost:1025"),
		MailFrom: getenv("MAIL_FROM", "no-reply@yitocode.dev"),
		AMQPURL:  os.Getenv("RABBITMQ_URL"),
	}

	switch cfg.AuthMode {
	case AuthModeJWT:
		cfg.JWTSecret = must("JWT_SECRET")
	case AuthModeSession:
		cfg.JWTSecret = os.Getenv("JWT_SECRET")
	default:
		log.Fatalf("invalid AUTH_MODE: %q (want %q or %q)", cfg.AuthMode, AuthModeJWT, AuthModeSession)
	}
	return cfg
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the value into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDur(key string, def time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		log.Fatalf("invalid duration for %s: %q", key, s)
	}
	return d
}
