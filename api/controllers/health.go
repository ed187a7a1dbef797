package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/heatparts/storefront/api/responses"
	"github.com/heatparts/storefront/pkg/config"
	"github.com/heatparts/storefront/pkg/db"
	pkgerrors "github.com/heatparts/storefront/pkg/errors"
	"github.com/heatparts/storefront/pkg/logger"
)

const envHeader = "X-Heatparts-Env"

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the device store and, when configured, Redis.
func HealthReady(cfg *config.Config, logg *logger.Logger, store db.Pinger, cache db.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{}
		if err := ping(ctx, store); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable").
				WithDetails(map[string]any{"check": "database"}))
			return
		}
		checks["database"] = "ok"

		if cache != nil {
			if err := ping(ctx, cache); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable").
					WithDetails(map[string]any{"check": "redis"}))
				return
			}
			checks["redis"] = "ok"
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}

func ping(ctx context.Context, p db.Pinger) error {
	if p == nil {
		return nil
	}
	return p.Ping(ctx)
}
