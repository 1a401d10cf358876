package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-timetable-api/internal/service"
	"github.com/noah-isme/uni-timetable-api/pkg/response"
)

// MetricsHandler exposes liveness and Prometheus endpoints.
type MetricsHandler struct {
	metrics *service.MetricsService
}

// NewMetricsHandler constructs the handler.
func NewMetricsHandler(metrics *service.MetricsService) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// Health reports process liveness.
func (h *MetricsHandler) Health(c *gin.Context) {
	response.OK(c, h.metrics.Health())
}

// Prometheus serves the metrics registry.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	h.metrics.Prometheus(c)
}
