package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger
type PingFunc func(ctx context.Context) error

// Ping calls f
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthCheck reports service liveness and the state of the document store
func HealthCheck(store Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		status, code := "healthy", http.StatusOK
		if store != nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				status, code = "degraded", http.StatusServiceUnavailable
			}
		}
		return c.JSON(code, map[string]interface{}{
			"success": code == http.StatusOK,
			"status":  status,
			"service": "recipehub-api",
			"time":    time.Now().UTC(),
		})
	}
}
