package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/oksasatya/go-ddd-user-accounts/config"
	userapp "github.com/oksasatya/go-ddd-user-accounts/internal/application"
	pginfra "github.com/oksasatya/go-ddd-user-accounts/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-user-accounts/pkg/helpers"
	"github.com/oksasatya/go-ddd-user-accounts/pkg/validation"
)

// seed creates a demo user through the create pipeline and prints an access
// token for calling PUT /api/users.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.DB.DSN(), pginfra.PoolOptions{})
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	repo := pginfra.NewUserRepository(pool)
	svc := userapp.NewService(repo, helpers.NewBcryptHasher(cfg.Auth.BcryptCost), helpers.NewNopLogger())

	name, email, password := "demoUser", "demo@example.com", "password123"
	user, err := svc.CreateUser(ctx, validation.CreateUserPayload{Name: &name, Email: &email, Password: &password})
	switch {
	case errors.Is(err, userapp.ErrUserExists):
		existing, ferr := repo.FindByEmail(ctx, email)
		if ferr != nil {
			log.Fatalf("failed to load existing user: %v", ferr)
		}
		user = existing.Projection()
		fmt.Printf("user already seeded: id=%s email=%s\n", user.ID, user.Email)
	case err != nil:
		log.Fatalf("failed to seed user: %v", err)
	default:
		fmt.Printf("seeded user: id=%s email=%s name=%s password=%s\n", user.ID, user.Email, user.Name, password)
	}

	jwt := helpers.NewJWTManager(cfg.Auth.JWTAccessSecret, cfg.Auth.AccessTTL)
	token, exp, err := jwt.GenerateAccessToken(user.ID, uuid.NewString())
	if err != nil {
		log.Fatalf("failed to sign token: %v", err)
	}
	fmt.Printf("access token (expires %s):\n%s\n", exp.Format("2006-01-02 15:04:05"), token)
}
