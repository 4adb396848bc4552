package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"vidstream/internal/config"
	"vidstream/internal/database"
	"vidstream/internal/media"
	"vidstream/internal/middleware"
	"vidstream/internal/modules/auth"
	"vidstream/internal/modules/profile"
	"vidstream/internal/modules/subscription"
	jwtsvc "vidstream/internal/pkg/jwt"
	"vidstream/internal/repository"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}

	storage, err := media.NewS3Storage(context.Background(), media.Config{
		Endpoint:      cfg.S3Endpoint,
		Region:        cfg.S3Region,
		Bucket:        cfg.S3Bucket,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		PublicBaseURL: cfg.S3PublicBaseURL,
	})
	if err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)

	j := jwtsvc.New(
		cfg.AccessTokenSecret,
		cfg.RefreshTokenSecret,
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
	)

	cookies := auth.CookieOptions{
		Secure:     cfg.CookieSecure,
		SameSite:   cfg.CookieSameSite,
		Domain:     cfg.CookieDomain,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	}

	authService := auth.NewService(userRepo, j, storage)
	authHandler := auth.NewHandler(authService, cookies)

	profileService := profile.NewService(userRepo, subscriptionRepo, storage)
	profileHandler := profile.NewHandler(profileService)

	subscriptionService := subscription.NewService(subscriptionRepo, userRepo)
	subscriptionHandler := subscription.NewHandler(subscriptionService)

	if cfg.AppEnv == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	users := r.Group("/api/v1/users")
	{
		// public
		authHandler.RegisterPublicRoutes(users)

		// channel pages are public but pick up the viewer when a valid
		// access token is presented
		channel := users.Group("/")
		channel.Use(middleware.OptionalJWTAuth(j, userRepo))
		{
			profileHandler.RegisterPublicRoutes(channel)
		}

		protected := users.Group("/")
		protected.Use(middleware.JWTAuth(j, userRepo))
		{
			authHandler.RegisterProtectedRoutes(protected)
			profileHandler.RegisterProtectedRoutes(protected)
			subscriptionHandler.RegisterProtectedRoutes(protected)
		}
	}

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
