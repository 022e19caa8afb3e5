package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/amankumar-in/univance/internal/infrastructure/monitor"
)

// StatusSource reports the last dependency check.
type StatusSource interface {
	GetStatus() monitor.Status
}

type HealthHandler struct {
	baseHandler
	service string
	monitor StatusSource
}

func NewHealthHandler(service string, mon StatusSource, opts Options) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(opts),
		service:     service,
		monitor:     mon,
	}
}

// @Summary Health check
// @Tags health
// @Router /health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	payload := map[string]interface{}{
		"status":    "ok",
		"service":   h.service,
		"timestamp": time.Now().UTC(),
		"dependencies": map[string]interface{}{
			"postgresql": status.PostgreSQL,
			"redis":      status.Redis,
			"outbox": map[string]interface{}{
				"online":  status.Outbox,
				"pending": status.OutboxPending,
				"dead":    status.OutboxDead,
			},
		},
	}

	code := http.StatusOK
	if !status.Healthy() {
		payload["status"] = "degraded"
		code = http.StatusServiceUnavailable
	}
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(code)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}
