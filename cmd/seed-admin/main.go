package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/ibrahem-systems/daftar-backend/internal/users"
	"github.com/ibrahem-systems/daftar-backend/pkg/config"
	"github.com/ibrahem-systems/daftar-backend/pkg/db"
	"github.com/ibrahem-systems/daftar-backend/pkg/enums"
	"github.com/ibrahem-systems/daftar-backend/pkg/logger"
	"github.com/ibrahem-systems/daftar-backend/pkg/migrate"
	"github.com/ibrahem-systems/daftar-backend/pkg/security"
)

const generatedPasswordLength = 20

// seed-admin makes sure the configured super admin account exists. Running it
// twice is safe: an existing account is re-activated and promoted, never
// duplicated, and its password is left alone unless -reset-password is set.
func main() {
	logg := logger.New(logger.Options{ServiceName: "seed-admin"})

	_ = godotenv.Load()

	password := flag.String("password", "", "password for a newly created admin (generated when empty)")
	resetPassword := flag.Bool("reset-password", false, "also reset the password of an existing admin")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "seed-admin",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":         cfg.App.Env,
		"admin_email": cfg.Admin.SeedEmail,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	repo := users.NewRepository(dbClient.DB())

	existing, err := repo.FindByEmail(ctx, cfg.Admin.SeedEmail)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logg.Error(ctx, "failed to look up admin account", err)
		os.Exit(1)
	}

	if existing != nil {
		changed := false
		if existing.Role != enums.UserRoleSuperAdmin {
			existing.Role = enums.UserRoleSuperAdmin
			changed = true
		}
		if !existing.IsActive {
			existing.IsActive = true
			changed = true
		}
		if changed {
			if err := repo.Save(ctx, existing); err != nil {
				logg.Error(ctx, "failed to update admin account", err)
				os.Exit(1)
			}
		}
		if *resetPassword {
			plain := *password
			if plain == "" {
				plain, err = security.GenerateTempPassword(generatedPasswordLength)
				if err != nil {
					logg.Error(ctx, "failed to generate password", err)
					os.Exit(1)
				}
			}
			hash, err := security.HashPassword(plain, cfg.Password)
			if err != nil {
				logg.Error(ctx, "failed to hash password", err)
				os.Exit(1)
			}
			if err := repo.UpdatePasswordHash(ctx, existing.ID, hash); err != nil {
				logg.Error(ctx, "failed to reset admin password", err)
				os.Exit(1)
			}
			fmt.Println("admin password reset:", plain)
		}
		logg.Info(ctx, "admin account already present")
		return
	}

	plain := *password
	if plain == "" {
		plain, err = security.GenerateTempPassword(generatedPasswordLength)
		if err != nil {
			logg.Error(ctx, "failed to generate password", err)
			os.Exit(1)
		}
	}
	hash, err := security.HashPassword(plain, cfg.Password)
	if err != nil {
		logg.Error(ctx, "failed to hash password", err)
		os.Exit(1)
	}

	if _, err := repo.Create(ctx, users.CreateUserDTO{
		Email:        cfg.Admin.SeedEmail,
		PasswordHash: hash,
		Name:         cfg.Admin.SeedName,
		Role:         enums.UserRoleSuperAdmin,
	}); err != nil {
		logg.Error(ctx, "failed to create admin account", err)
		os.Exit(1)
	}

	fmt.Println("admin account created:", cfg.Admin.SeedEmail)
	if *password == "" {
		fmt.Println("generated password:", plain)
	}
	logg.Info(ctx, "admin account seeded")
}
