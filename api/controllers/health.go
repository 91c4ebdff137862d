package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/ogsoda/delivery-backend/api/responses"
	"github.com/ogsoda/delivery-backend/pkg/config"
	"github.com/ogsoda/delivery-backend/pkg/logger"
)

const healthTimeout = 2 * time.Second

// Pinger is satisfied by the database and redis clients.
type Pinger interface {
	Ping(ctx context.Context) error
}

type healthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache,omitempty"`
}

// Health pings the database and, when configured, redis. Any failure turns
// the response into a 503.
func Health(cfg *config.Config, database Pinger, cache Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg != nil {
			w.Header().Set("X-OGSoda-Env", cfg.App.Env)
		}
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		status := healthStatus{Status: "healthy", Database: "connected"}
		code := http.StatusOK

		if database == nil {
			status.Status, status.Database = "unhealthy", "disconnected"
			code = http.StatusServiceUnavailable
		} else if err := database.Ping(ctx); err != nil {
			if logg != nil {
				logg.Error(ctx, "health.database", err)
			}
			status.Status, status.Database = "unhealthy", "disconnected"
			code = http.StatusServiceUnavailable
		}

		if cache != nil {
			status.Cache = "connected"
			if err := cache.Ping(ctx); err != nil {
				if logg != nil {
					logg.Error(ctx, "health.cache", err)
				}
				status.Status, status.Cache = "unhealthy", "disconnected"
				code = http.StatusServiceUnavailable
			}
		}

		responses.WriteSuccessStatus(w, code, status)
	}
}
