package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/recipehub/backend/internal/models"
	"github.com/anonto42/recipehub/backend/internal/repositories"
	"github.com/anonto42/recipehub/backend/internal/services"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// Response is the envelope of every API response
type Response struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message,omitempty"`
	Data       interface{}        `json:"data,omitempty"`
	Pagination *models.Pagination `json:"pagination,omitempty"`
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func created(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusCreated, Response{Success: true, Message: message, Data: data})
}

func okMessage(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusOK, Response{Success: true, Message: message, Data: data})
}

func paginated[T any](c echo.Context, page *services.Page[T]) error {
	return c.JSON(http.StatusOK, Response{Success: true, Data: page.Items, Pagination: &page.Pagination})
}

// ErrorHandler translates errors into the failure envelope. Service error kinds map to
// their status codes; anything unrecognised is logged and reported as a 500.
func ErrorHandler(logger logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, message := statusFor(err)
		if status >= http.StatusInternalServerError {
			logger.WithFields(logrus.Fields{
				"method": c.Request().Method,
				"uri":    c.Request().RequestURI,
				"error":  err.Error(),
			}).Error("request failed")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, Response{Success: false, Message: message})
		}
		if err != nil {
			logger.WithError(err).Warn("failed to write error response")
		}
	}
}

func statusFor(err error) (int, string) {
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		switch svcErr.Kind {
		case services.KindNotFound:
			return http.StatusNotFound, svcErr.Message
		case services.KindForbidden:
			return http.StatusForbidden, svcErr.Message
		case services.KindValidation:
			return http.StatusBadRequest, svcErr.Message
		case services.KindUnauthorized:
			return http.StatusUnauthorized, svcErr.Message
		case services.KindConflict:
			return http.StatusConflict, svcErr.Message
		}
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return http.StatusNotFound, "Resource not found"
	}
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		if msg, isString := httpErr.Message.(string); isString {
			return httpErr.Code, msg
		}
		return httpErr.Code, http.StatusText(httpErr.Code)
	}
	return http.StatusInternalServerError, "Server error"
}
