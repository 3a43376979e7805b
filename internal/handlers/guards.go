package handlers

import "github.com/labstack/echo/v4"

// Guards are the route-level middlewares handlers attach to their routes
type Guards struct {
	Protect  echo.MiddlewareFunc
	Optional echo.MiddlewareFunc
	// Throttle limits social writes; it runs after Protect
	Throttle echo.MiddlewareFunc
}
