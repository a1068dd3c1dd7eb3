// Package health exposes the HTTP health endpoints every agent serves. The
// plain endpoint only confirms the process is alive, the detailed endpoint
// inspects broker, store and archive connectivity.
package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/miskatonen/duolux/pkg/mqtt"
	"github.com/miskatonen/duolux/pkg/postgres"
	"github.com/miskatonen/duolux/pkg/redis"
)

const dependencyTimeout = 2 * time.Second

// Checker serves the liveness and readiness probes for one agent
type Checker struct {
	mqtt   mqtt.Client
	redis  redis.Client
	pg     postgres.Client
	logger *slog.Logger
}

// NewChecker wires a checker to the broker and store clients it probes
func NewChecker(mqttClient mqtt.Client, redisClient redis.Client, logger *slog.Logger) *Checker {
	return &Checker{
		mqtt:   mqttClient,
		redis:  redisClient,
		logger: logger,
	}
}

// SetPostgres adds the cycle archive connection to the detailed check.
// Agents without an archive skip this.
func (h *Checker) SetPostgres(pgClient postgres.Client) {
	h.pg = pgClient
}

// HealthResponse is the body returned by both endpoints
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp string    `json:"timestamp"`
	Services  *Services `json:"services,omitempty"`
}

// Services holds the per-dependency connectivity verdicts
type Services struct {
	MQTT     string `json:"mqtt"`
	Redis    string `json:"redis"`
	Postgres string `json:"postgres,omitempty"`
}

// HandlerFunc returns the liveness handler. It confirms the process is
// alive without touching any dependency, keeping the probe cheap for the
// scheduler.
func (h *Checker) HandlerFunc() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := HealthResponse{
			Status:    "ok",
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode health response", "error", err)
		}
	}
}

// DetailedHandlerFunc returns the readiness handler. It reports per-service
// connectivity and degrades the status code when anything is down.
func (h *Checker) DetailedHandlerFunc() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services := &Services{
			MQTT:  "disconnected",
			Redis: "disconnected",
		}

		if h.mqtt != nil && h.mqtt.IsConnected() {
			services.MQTT = "connected"
		}

		if h.redis != nil {
			ctx, cancel := context.WithTimeout(r.Context(), dependencyTimeout)
			if err := h.redis.Ping(ctx); err == nil {
				services.Redis = "connected"
			}
			cancel()
		}

		degraded := services.MQTT == "disconnected" || services.Redis == "disconnected"

		if h.pg != nil {
			ctx, cancel := context.WithTimeout(r.Context(), dependencyTimeout)
			pgStatus, err := h.pg.HealthCheck(ctx)
			cancel()

			switch {
			case err != nil:
				services.Postgres = "error"
				degraded = true
			case pgStatus.Connected:
				services.Postgres = "connected"
			default:
				services.Postgres = "disconnected"
				degraded = true
			}
		}

		status := "healthy"
		statusCode := http.StatusOK
		if degraded {
			status = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		response := HealthResponse{
			Status:    status,
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			Services:  services,
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)

		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode health response", "error", err)
		}
	}
}
