package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/tuanvle/dacsan-backend/api/responses"
	"github.com/tuanvle/dacsan-backend/pkg/config"
	pkgerrors "github.com/tuanvle/dacsan-backend/pkg/errors"
	"github.com/tuanvle/dacsan-backend/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Dacsan-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness only when every backing store answers a ping.
func HealthReady(cfg *config.Config, logg *logger.Logger, db, redis pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Dacsan-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := map[string]string{}
		healthy := true
		for name, p := range map[string]pinger{"database": db, "redis": redis} {
			if p == nil {
				checks[name] = "not configured"
				healthy = false
				continue
			}
			if err := p.Ping(ctx); err != nil {
				checks[name] = err.Error()
				healthy = false
				continue
			}
			checks[name] = "ok"
		}

		if !healthy {
			responses.WriteError(ctx, logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
