package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/yitocode/members-api/internal/config"
	"github.com/yitocode/members-api/internal/database"
	"github.com/yitocode/members-api/internal/handler"
	"github.com/yitocode/members-api/internal/mailer"
	"github.com/yitocode/members-api/internal/middleware"
	"github.com/yitocode/members-api/internal/oauth"
	"github.com/yitocode/members-api/internal/queue"
	"github.com/yitocode/members-api/internal/repository"
	"github.com/yitocode/members-api/internal/router"
	"github.com/yitocode/members-api/internal/token"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()

	identities := repository.NewIdentityRepo(db)
	profiles := repository.NewProfileRepo(db)
	notifications := repository.NewNotificationRepo(db)

	var issuer token.Issuer
	switch cfg.AuthMode {
	case config.AuthModeSession:
		if rdb == nil {
			log.Fatal("AUTH_MODE=session requires a reachable Redis server")
		}
		sessions := repository.NewSessionRepo(rdb, "sess", cfg.SessionTTL)
		issuer = token.NewSessionIssuer(sessions, identities, cfg.SessionTTL)
	default:
		issuer = token.NewJWTIssuer(cfg.JWTSecret, cfg.TokenTTL)
	}

	// Welcome mail runs only when a broker is configured; without one
	// the publisher side is disabled too and signup skips the event.
	if cfg.AMQPURL != "" {
		go queue.StartWelcomeConsumer(cfg.AMQPURL, mailer.New(cfg.SMTPAddr, cfg.MailFrom).SendWelcome)
	}

	deps := router.Deps{
		Auth:          handler.NewAuthHandler(identities, issuer, cfg.BcryptCost, cfg.AMQPURL),
		Profiles:      handler.NewProfileHandler(profiles),
		Notifications: handler.NewNotificationHandler(notifications),
		Issuer:        issuer,
		RateLimit:     middleware.RateLimit(config.LoadRateLimitConfig(), rdb),
	}
	if cfg.GoogleClientID != "" {
		google := oauth.NewGoogle(oauth.GoogleConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
		})
		deps.Social = handler.NewSocialHandler(google, identities, issuer)
	}

	e := echo.New()
	router.Register(e, deps)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, auth_mode=%s)", addr, cfg.Env, cfg.AuthMode)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
