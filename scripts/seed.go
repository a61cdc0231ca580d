//go:build ignore

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/hugh/muse/internal/auth"
	"github.com/hugh/muse/internal/database"
	"github.com/hugh/muse/internal/database/models"
	"github.com/hugh/muse/internal/jobs"
	"github.com/hugh/muse/internal/mailer"
	"github.com/hugh/muse/pkg/config"
	"github.com/hugh/muse/pkg/util"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Server.Env)

	db, err := database.Connect(&cfg.Database, false, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	ctx := context.Background()
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}
	if err := database.SeedCatalog(ctx, db); err != nil {
		log.Fatalf("failed to seed catalog: %v", err)
	}

	// Partner invites are logged rather than mailed.
	invites := jobs.NewInviteDispatcher(nil, nil, mailer.NewLogMailer(cfg.Mail.From, logger), cfg.Server.FrontendURL, logger)
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessTTL(), cfg.JWT.RefreshTTL())
	authService := auth.NewService(db, jwtService, invites, logger)

	email := envOr("DEMO_EMAIL", "bride@example.com")
	password := envOr("DEMO_PASSWORD", "weddingplanner1")

	result, err := authService.Signup(ctx, auth.SignupInput{
		Email:        email,
		Password:     password,
		FullName:     envOr("DEMO_NAME", "Demo Bride"),
		Role:         models.UserRoleBride,
		PartnerEmail: os.Getenv("DEMO_PARTNER_EMAIL"),
	})
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			fmt.Printf("Demo user already exists: %s\n", email)
			return
		}
		log.Fatalf("failed to create demo user: %v", err)
	}

	fmt.Printf("Demo user created successfully!\n")
	fmt.Printf("Email: %s\n", result.User.Email)
	fmt.Printf("Access token: %s\n", result.Tokens.Access)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
