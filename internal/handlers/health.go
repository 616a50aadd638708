package handlers

import (
	"context"
	"net/http"
	"time"

	"todoTracker/internal/logger"
)

const serviceName = "todo-tracker"

type HealthHandler struct {
	Checker HealthChecker
}

func NewHealthHandler(checker HealthChecker) HealthHandler {
	return HealthHandler{Checker: checker}
}

func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.Checker.HealthCheck(ctx); err != nil {
		logger.Error("HTTP: storage is unhealthy", err)
		responseWithJSON(w, http.StatusServiceUnavailable,
			toPayload("status", "unavailable"),
			toPayload("service", serviceName),
		)
		return
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("status", "ok"),
		toPayload("service", serviceName),
		toPayload("time", time.Now().UTC().Format(time.RFC3339)),
	)
}
