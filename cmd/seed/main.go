package main

import (
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"

	"vidstream/internal/database"
	"vidstream/internal/domain"
)

func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "vidstream.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	// AutoMigrate to ensure schema is up to date
	log.Println("Running AutoMigrate...")
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Subscription{},
	); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	// Cleanup old data (subscriptions first, they reference users)
	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM subscriptions")
	db.Exec("DELETE FROM users")

	// ================== USERS ==================
	log.Println("Creating users...")

	usernames := []string{"asel", "bekzat", "dina", "aidar", "gulnaz"}
	users := []domain.User{}
	for i, username := range usernames {
		hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user := domain.User{
			Username:     username,
			Email:        fmt.Sprintf("%s@example.com", username),
			FullName:     fmt.Sprintf("User %d", i+1),
			PasswordHash: string(hash),
			AvatarURL:    fmt.Sprintf("https://assets.example.com/seed/avatar-%d.png", i+1),
			AvatarKey:    fmt.Sprintf("media/seed/avatar-%d.png", i+1),
		}
		db.Create(&user)
		users = append(users, user)
		log.Printf("User created: %s / password123", username)
	}

	// ================== SUBSCRIPTIONS ==================
	log.Println("Creating subscriptions...")

	// everyone subscribes to asel, asel subscribes back to bekzat and dina
	count := 0
	for _, u := range users[1:] {
		db.Create(&domain.Subscription{SubscriberID: u.ID, ChannelID: users[0].ID})
		count++
	}
	for _, channel := range users[1:3] {
		db.Create(&domain.Subscription{SubscriberID: users[0].ID, ChannelID: channel.ID})
		count++
	}

	log.Printf("Seed complete: %d users, %d subscriptions", len(users), count)
}
