package handlers

import (
	"context"
	"net/http"
	"taskManager/internal/logger"
	"time"
)

const healthTimeout = 2 * time.Second

type HealthHandler struct {
	checker HealthChecker
}

func NewHealthHandler(checker HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.checker.HealthCheck(ctx); err != nil {
		logger.Error("HTTP: База данных недоступна", err)
		responseWithJSON(w, http.StatusServiceUnavailable,
			toPayload("success", false),
			toPayload("service", "task-manager"),
			toPayload("status", "unavailable"),
		)
		return
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("success", true),
		toPayload("service", "task-manager"),
		toPayload("status", "ok"),
	)
}
