package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ibrahem-systems/daftar-backend/api/controllers"
	"github.com/ibrahem-systems/daftar-backend/api/middleware"
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
	"github.com/ibrahem-systems/daftar-backend/pkg/db/models"
	"github.com/ibrahem-systems/daftar-backend/pkg/logger"
	"github.com/ibrahem-systems/daftar-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Services bundles everything the router wires into handlers.
type Services struct {
	Sessions      sessionManager
	Resolver      *auth.Resolver
	Auth          auth.Service
	Register      auth.RegisterService
	Books         *books.Service
	Users         users.Service
	AdminTenants  tenants.AdminService
	Audit         *audit.Writer
	Settings      *settings.Service
	Notifications *notifications.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/support-contact", controllers.SupportContact(svcs.Settings))
		r.Get("/plans", controllers.SubscriptionPlans())
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(svcs.Register, svcs.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(svcs.Sessions, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(svcs.Sessions, cfg.JWT, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, svcs.Sessions, svcs.Resolver, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireTenant(logg))

			r.Route("/v1/books", func(r chi.Router) {
				mountResource(r, "/partners", svcs.Books.Partners, logg)
				mountResource(r, "/invoices-in", svcs.Books.InvoicesIn, logg)
				mountResource(r, "/invoices-out", svcs.Books.InvoicesOut, logg)
				mountResource(r, "/inventory", svcs.Books.Inventory, logg)
				mountResource(r, "/employees", svcs.Books.Employees, logg)
				mountResource(r, "/payroll", svcs.Books.Payroll, logg)
			})

			r.Route("/v1/users", func(r chi.Router) {
				r.Get("/", controllers.UsersList(svcs.Users, logg))
				r.Post("/", controllers.UsersCreate(svcs.Users, logg))
				r.Patch("/{userId}/capabilities", controllers.UsersUpdateCapabilities(svcs.Users, logg))
				r.Post("/{userId}/active", controllers.UsersSetActive(svcs.Users, logg))
				r.Post("/{userId}/reset-password", controllers.UsersResetPassword(svcs.Users, logg))
				r.Delete("/{userId}", controllers.UsersDelete(svcs.Users, logg))
			})

			r.Route("/v1/notifications", func(r chi.Router) {
				r.Get("/", controllers.NotificationsList(svcs.Notifications, logg))
				r.Post("/{notificationId}/read", controllers.NotificationMarkRead(svcs.Notifications, logg))
			})

			r.Route("/v1/subscription", func(r chi.Router) {
				r.Get("/", controllers.SubscriptionStatus(logg))
				r.Get("/plans", controllers.SubscriptionPlans())
			})
		})

		r.Route("/admin/v1", func(r chi.Router) {
			r.Use(middleware.RequireSuperAdmin(logg))

			r.Route("/tenants", func(r chi.Router) {
				r.Get("/", controllers.AdminTenantsList(svcs.AdminTenants, logg))
				r.Post("/", controllers.AdminTenantCreate(svcs.AdminTenants, logg))
				r.Post("/{tenantId}/extend", controllers.AdminTenantExtend(svcs.AdminTenants, logg))
				r.Delete("/{tenantId}", controllers.AdminTenantDelete(svcs.AdminTenants, logg))
			})
			r.Get("/orphan-owners", controllers.AdminOrphanOwnersList(svcs.AdminTenants, logg))
			r.Get("/audit-logs", controllers.AdminAuditLogs(svcs.Audit, logg))
			r.Route("/settings", func(r chi.Router) {
				r.Get("/", controllers.SettingsList(svcs.Settings, logg))
				r.Put("/", controllers.SettingsUpsert(svcs.Settings, logg))
			})
		})
	})

	return r
}

type record[T any] interface {
	*T
	models.TenantScoped
}

func mountResource[T any, P record[T]](r chi.Router, path string, res *books.Resource[T, P], logg *logger.Logger) {
	r.Route(path, func(r chi.Router) {
		r.Get("/", controllers.BooksList(res, logg))
		r.Post("/", controllers.BooksCreate(res, logg))
		r.Get("/{recordId}", controllers.BooksGet(res, logg))
		r.Put("/{recordId}", controllers.BooksUpdate(res, logg))
		r.Delete("/{recordId}", controllers.BooksDelete(res, logg))
	})
}
