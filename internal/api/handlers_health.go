// handlers_health.go - Health check handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version  string
	bindings BindingStore
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, bindings BindingStore) HealthHandler {
	return &HealthHandlerImpl{
		version:  version,
		bindings: bindings,
	}
}

// HandleHealth returns server health status
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	body := map[string]interface{}{
		"status":  "ok",
		"version": h.version,
	}
	if h.bindings != nil {
		body["servers"] = len(h.bindings.ListServers())
		body["apps"] = len(h.bindings.ListApps())
	}
	return c.JSON(http.StatusOK, body)
}
