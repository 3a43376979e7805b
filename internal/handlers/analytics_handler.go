package handlers

import (
	"github.com/anonto42/recipehub/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// AnalyticsHandler serves the public analytics dashboard
type AnalyticsHandler struct {
	aggregator *services.Aggregator
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(aggregator *services.Aggregator) *AnalyticsHandler {
	return &AnalyticsHandler{aggregator: aggregator}
}

// RegisterAnalyticsRoutes registers analytics routes
func (h *AnalyticsHandler) RegisterAnalyticsRoutes(g *echo.Group) {
	g.GET("/analytics", h.GetAnalytics)
}

// GetAnalytics recomputes the analytics rollup
func (h *AnalyticsHandler) GetAnalytics(c echo.Context) error {
	analytics, err := h.aggregator.Analytics(c.Request().Context())
	if err != nil {
		return err
	}
	return ok(c, analytics)
}
