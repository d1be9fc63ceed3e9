package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/rentkit/rentkit-backend/api/responses"
	"github.com/rentkit/rentkit-backend/pkg/config"
	"github.com/rentkit/rentkit-backend/pkg/db"
	pkgerrors "github.com/rentkit/rentkit-backend/pkg/errors"
	"github.com/rentkit/rentkit-backend/pkg/logger"
	pkgredis "github.com/rentkit/rentkit-backend/pkg/redis"
)

const healthCheckTimeout = 2 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Rentkit-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the backing stores before reporting ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP pkgredis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Rentkit-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		components := map[string]string{}
		failed := false

		if dbP != nil {
			if err := dbP.Ping(ctx); err != nil {
				components["db"] = "down"
				failed = true
			} else {
				components["db"] = "up"
			}
		}
		if redisP != nil {
			if err := redisP.Ping(ctx); err != nil {
				components["redis"] = "down"
				failed = true
			} else {
				components["redis"] = "up"
			}
		}

		if failed {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(components))
			return
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "components": components})
	}
}
