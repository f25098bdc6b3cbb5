package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	accountdomain "github.com/ratewatchlabs/ratewatch/internal/account/domain"
	clouddomain "github.com/ratewatchlabs/ratewatch/internal/cloud/domain"
	"github.com/ratewatchlabs/ratewatch/internal/collector"
	"github.com/ratewatchlabs/ratewatch/internal/keystone"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var ErrInvalidRequest = errors.New("invalid_request")

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}

	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, clouddomain.ErrInvalidCloud),
		errors.Is(err, clouddomain.ErrInvalidName),
		errors.Is(err, clouddomain.ErrInvalidRegion),
		errors.Is(err, clouddomain.ErrInvalidAuthURL),
		errors.Is(err, clouddomain.ErrInvalidAccount),
		errors.Is(err, clouddomain.ErrMissingCredents):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}

	case errors.Is(err, clouddomain.ErrCloudNotFound),
		errors.Is(err, accountdomain.ErrAccountNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: err.Error(),
		}

	case errors.Is(err, collector.ErrNoCloudConfigured):
		return http.StatusConflict, errorPayload{
			Type:    "configuration_error",
			Message: err.Error(),
		}
	}

	var authErr *keystone.AuthError
	if errors.As(err, &authErr) {
		return http.StatusBadGateway, errorPayload{
			Type:    "authentication_error",
			Message: authErr.Error(),
		}
	}

	var catalogErr *keystone.CatalogError
	if errors.As(err, &catalogErr) {
		return http.StatusConflict, errorPayload{
			Type:    "catalog_resolution_error",
			Message: catalogErr.Error(),
		}
	}

	return http.StatusInternalServerError, errorPayload{
		Type:    "internal_error",
		Message: "internal server error",
	}
}
