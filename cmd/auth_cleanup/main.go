package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"vidstream/internal/config"
	"vidstream/internal/database"
	jwtsvc "vidstream/internal/pkg/jwt"
	"vidstream/internal/repository"
)

// Sweeps stored refresh tokens that are no longer valid JWTs (expired or
// signed with a rotated secret). Sessions keep working without this job; it
// only stops dead tokens from sitting in the users table forever. Run it
// from cron.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	j := jwtsvc.New(
		cfg.AccessTokenSecret,
		cfg.RefreshTokenSecret,
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
	)

	users := repository.NewUserRepository(db)

	ctx := context.Background()
	sessions, err := users.ActiveSessions(ctx)
	if err != nil {
		log.Fatalf("listing sessions failed: %v", err)
	}

	cleared := 0
	for _, s := range sessions {
		if _, err := j.ValidateRefreshToken(s.RefreshToken); err == nil {
			continue
		}
		if err := users.SetRefreshToken(ctx, s.UserID, ""); err != nil {
			log.Printf("clearing session failed user_id=%d error=%v", s.UserID, err)
			continue
		}
		cleared++
	}

	log.Printf("session cleanup completed: checked=%d cleared=%d", len(sessions), cleared)
}
