package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/marketcore/auth-service/internal/config"
	"github.com/marketcore/auth-service/internal/database"
	"github.com/marketcore/auth-service/internal/handler"
	"github.com/marketcore/auth-service/internal/mailer"
	"github.com/marketcore/auth-service/internal/repository"
	"github.com/marketcore/auth-service/internal/router"
	"github.com/marketcore/auth-service/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	if cfg.MigrationsDir != "" {
		if err := database.Migrate(db, cfg.MigrationsDir); err != nil {
			log.Fatalf("apply migrations: %v", err)
		}
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting disabled")
	}

	svc := service.NewAuthService(
		service.Options{
			AccessSecret:   cfg.AccessTokenSecret,
			RefreshSecret:  cfg.RefreshTokenSecret,
			AccessTTLMin:   cfg.AccessTTLMin,
			RefreshTTLDays: cfg.RefreshTTLDays,
			OTPTTL:         cfg.OTPTTL,
			BcryptCost:     cfg.BcryptCost,
		},
		repository.NewUserRepo(db),
		repository.NewRoleRepo(db),
		repository.NewDeviceRepo(db),
		repository.NewTokenRepo(db),
		repository.NewVerificationCodeRepo(db),
		mailer.NewPublisher(),
		service.NewTwoFactorService(cfg.AppName),
	)

	// Background worker delivering queued OTP mail.
	go func() {
		if err := mailer.StartConsumer(); err != nil {
			log.Printf("otp-mailer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.Register(e, handler.NewAuthHandler(svc), cfg, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
