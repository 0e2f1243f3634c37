package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ibrahem-systems/daftar-backend/api/routes"
	"github.com/ibrahem-systems/daftar-backend/internal/audit"
	"github.com/ibrahem-systems/daftar-backend/internal/auth"
	"github.com/ibrahem-systems/daftar-backend/internal/books"
	"github.com/ibrahem-systems/daftar-backend/internal/notifications"
	"github.com/ibrahem-systems/daftar-backend/internal/settings"
	"github.com/ibrahem-systems/daftar-backend/internal/tenants"
	"github.com/ibrahem-systems/daftar-backend/internal/users"
	"github.com/ibrahem-systems/daftar-backend/pkg/auth/session"
	"github.com/ibrahem-systems/daftar-backend/pkg/config"
	"github.com/ibrahem-systems/daftar-backend/pkg/db"
	"github.com/ibrahem-systems/daftar-backend/pkg/logger"
	"github.com/ibrahem-systems/daftar-backend/pkg/metrics"
	"github.com/ibrahem-systems/daftar-backend/pkg/migrate"
	"github.com/ibrahem-systems/daftar-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())
	tenantRepo := tenants.NewRepository(dbClient.DB())
	auditWriter := audit.NewWriter(dbClient, logg, metrics.NewAuditMetrics(prometheus.DefaultRegisterer))

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		UserRepo:       userRepo,
		TenantRepo:     tenantRepo,
		Trail:          auditWriter,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	resolver, err := auth.NewResolver(auth.ResolverParams{
		UserRepo:    userRepo,
		TenantRepo:  tenantRepo,
		AdminConfig: cfg.Admin,
		WarnDays:    cfg.Cron.ExpiryWarnDays,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create identity resolver", err)
		os.Exit(1)
	}

	usersService, err := users.NewService(userRepo, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	adminService, err := tenants.NewAdminService(tenantRepo, userRepo, auditWriter, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create tenant admin service", err)
		os.Exit(1)
	}

	settingsService, err := settings.NewService(settings.NewRepository(dbClient.DB()), auditWriter, cfg.Support)
	if err != nil {
		logg.Error(context.Background(), "failed to create settings service", err)
		os.Exit(1)
	}

	booksService := books.NewService(dbClient, logg, cfg.Records, auditWriter)
	notificationsService := notifications.NewService(dbClient.DB())

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, routes.Services{
			Sessions:      sessionManager,
			Resolver:      resolver,
			Auth:          authService,
			Register:      registerService,
			Books:         booksService,
			Users:         usersService,
			AdminTenants:  adminService,
			Audit:         auditWriter,
			Settings:      settingsService,
			Notifications: notificationsService,
		}),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		<-shutdownCtx.Done()
		graceCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(graceCtx); err != nil {
			logg.Error(ctx, "error during server shutdown", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "api server shut down gracefully")
}
