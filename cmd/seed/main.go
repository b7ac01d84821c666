package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/clean-auth/config"
	"github.com/oksasatya/clean-auth/internal/application"
	"github.com/oksasatya/clean-auth/internal/domain/entity"
	"github.com/oksasatya/clean-auth/internal/domain/repository"
	pginfra "github.com/oksasatya/clean-auth/internal/infrastructure/postgres"
	"github.com/oksasatya/clean-auth/pkg/helpers"
)

func main() {
	email := flag.String("email", "demo@example.com", "email of the demo user")
	username := flag.String("username", "demo_user", "username of the demo user")
	password := flag.String("password", "Passw0rd1", "password of the demo user")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	if err := pginfra.Migrate(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{MaxConns: 2, MinConns: 1, MaxConnLife: time.Minute})
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	u, created, err := seedUser(ctx, pginfra.NewUserRepository(pool), *email, *username, *password)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	if !created {
		fmt.Printf("user already present: id=%s email=%s\n", u.ID, u.Email)
		return
	}
	fmt.Printf("seeded user: id=%s email=%s username=%s password=%s\n", u.ID, u.Email, u.Username, *password)
}

// seedUser creates a confirmed user unless one with the same email exists.
func seedUser(ctx context.Context, users repository.UserRepository, email, username, password string) (*entity.User, bool, error) {
	email = application.NormalizeEmail(email)
	if u, err := users.GetByEmail(ctx, email); err != nil {
		return nil, false, fmt.Errorf("lookup: %w", err)
	} else if u != nil {
		return u, false, nil
	}

	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}
	u := &entity.User{
		Email:            email,
		Username:         username,
		PasswordHash:     hash,
		DateOfBirth:      time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC),
		Gender:           entity.GenderFemale,
		IsEmailConfirmed: true,
	}
	if err := users.Create(ctx, u); err != nil {
		return nil, false, fmt.Errorf("create user: %w", err)
	}
	return u, true, nil
}
