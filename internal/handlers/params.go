package handlers

import (
	"strconv"

	"github.com/anonto42/recipehub/backend/internal/models"
	"github.com/anonto42/recipehub/backend/internal/repositories"
	"github.com/anonto42/recipehub/backend/internal/services"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxPageLimit caps the page size a client may request
const MaxPageLimit = 100

// pageParams reads page and limit from the query string. Missing or invalid values
// fall back to page 1 and defaultLimit; pages past models.MaxPage are capped.
func pageParams(c echo.Context, defaultLimit int) (int, int) {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		page = 1
	}
	if page > models.MaxPage {
		page = models.MaxPage
	}
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page, limit
}

// pathID parses an ObjectID path parameter. A malformed id cannot match anything
// and is reported as not found.
func pathID(c echo.Context, name, entity string) (primitive.ObjectID, error) {
	id, err := repositories.ParseID(c.Param(name))
	if err != nil {
		return primitive.NilObjectID, services.NotFound(entity)
	}
	return id, nil
}

// bindAndValidate decodes the body into req and runs the registered validator
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return services.Validation("Invalid request payload")
	}
	return c.Validate(req)
}
