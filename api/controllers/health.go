package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/ibrahem-systems/daftar-backend/api/responses"
	"github.com/ibrahem-systems/daftar-backend/pkg/config"
	"github.com/ibrahem-systems/daftar-backend/pkg/db"
	pkgerrors "github.com/ibrahem-systems/daftar-backend/pkg/errors"
	"github.com/ibrahem-systems/daftar-backend/pkg/logger"
	"github.com/ibrahem-systems/daftar-backend/pkg/redis"
)

const readinessTimeout = 2 * time.Second

// HealthLive reports process liveness without touching dependencies.
func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Daftar-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the database and redis before reporting ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Daftar-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		if dbP != nil {
			if err := dbP.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable"))
				return
			}
		}
		if redisP != nil {
			if err := redisP.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
