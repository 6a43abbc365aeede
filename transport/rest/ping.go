package rest

import (
	"context"
	"log/slog"
	"net/http"
)

// HealthCheck reports whether one backing store answers.
type HealthCheck func(ctx context.Context) error

type PingHandler interface {
	PingHandler(w http.ResponseWriter, r *http.Request)
}

type pingHandler struct {
	logger *slog.Logger
	checks map[string]HealthCheck
}

func NewPingHandler(logger *slog.Logger, checks map[string]HealthCheck) PingHandler {
	return &pingHandler{
		logger: logger.With("component", "ping_handler"),
		checks: checks,
	}
}

// PingHandler answers pong while every store is reachable.
func (that *pingHandler) PingHandler(w http.ResponseWriter, r *http.Request) {
	for name, check := range that.checks {
		if err := check(r.Context()); err != nil {
			that.logger.Error("health check failed", "method", "PingHandler", "store", name, "error", err)
			http.Error(w, name+" unavailable", http.StatusServiceUnavailable)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}
