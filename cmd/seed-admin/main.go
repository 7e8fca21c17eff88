package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/angelmondragon/placeshare-backend/internal/users"
	"github.com/angelmondragon/placeshare-backend/pkg/config"
	"github.com/angelmondragon/placeshare-backend/pkg/db"
	"github.com/angelmondragon/placeshare-backend/pkg/enums"
	"github.com/angelmondragon/placeshare-backend/pkg/logger"
	"github.com/angelmondragon/placeshare-backend/pkg/security"
)

// seed-admin promotes an existing account to admin, or creates one when the
// email is unknown. The API has no way to mint the first admin.
func main() {
	logg := logger.New(logger.Options{ServiceName: "seed-admin"})
	_ = godotenv.Load()

	email := flag.String("email", "", "admin email (required)")
	password := flag.String("password", "", "password for a newly created admin")
	firstName := flag.String("first-name", "Admin", "first name for a newly created admin")
	lastName := flag.String("last-name", "User", "last name for a newly created admin")
	flag.Parse()

	if strings.TrimSpace(*email) == "" {
		fmt.Fprintln(os.Stderr, "missing -email")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	ctx := logg.WithField(context.Background(), "env", cfg.App.Env)
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	repo := users.NewRepository(dbClient.DB())
	user, err := repo.FindByEmail(ctx, *email)
	switch {
	case err == nil:
		if err := repo.SetApproval(ctx, user.ID, enums.UserRoleAdmin, true); err != nil {
			logg.Error(ctx, "failed to promote user", err)
			os.Exit(1)
		}
		logg.Info(logg.WithUserID(ctx, user.ID.String()), "existing user promoted to admin")
	case errors.Is(err, gorm.ErrRecordNotFound):
		if len(*password) < cfg.Password.MinLength {
			fmt.Fprintf(os.Stderr, "-password must be at least %d characters for a new admin\n", cfg.Password.MinLength)
			os.Exit(1)
		}
		hash, err := security.HashPassword(*password, cfg.Password)
		if err != nil {
			logg.Error(ctx, "failed to hash password", err)
			os.Exit(1)
		}
		created, err := repo.Create(ctx, users.CreateUserDTO{
			Email:        strings.ToLower(strings.TrimSpace(*email)),
			PasswordHash: hash,
			FirstName:    *firstName,
			LastName:     *lastName,
			Role:         enums.UserRoleAdmin,
			IsApproved:   true,
		})
		if err != nil {
			logg.Error(ctx, "failed to create admin", err)
			os.Exit(1)
		}
		logg.Info(logg.WithUserID(ctx, created.ID.String()), "admin created")
	default:
		logg.Error(ctx, "failed to look up user", err)
		os.Exit(1)
	}
}
