// handlers_config.go - Server and app binding handlers
package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/logplatform/backend/internal/models"
	"github.com/logplatform/backend/internal/registry"
	"go.uber.org/zap"
)

// ConfigHandlerImpl implements the ConfigHandler interface
type ConfigHandlerImpl struct {
	bindings BindingStore
	logger   *zap.Logger
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(bindings BindingStore, logger *zap.Logger) ConfigHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConfigHandlerImpl{
		bindings: bindings,
		logger:   logger.Named("config"),
	}
}

// HandleListServers returns every registered server
func (h *ConfigHandlerImpl) HandleListServers(c echo.Context) error {
	return respondOK(c, h.bindings.ListServers())
}

// HandleGetServer returns one server
func (h *ConfigHandlerImpl) HandleGetServer(c echo.Context) error {
	id := c.Param("id")
	server, ok := h.bindings.ResolveServer(id)
	if !ok {
		return NewNotFoundError("server", id)
	}
	return respondOK(c, server)
}

// HandleCreateServer registers a server
func (h *ConfigHandlerImpl) HandleCreateServer(c echo.Context) error {
	var server models.ServerBinding
	if err := c.Bind(&server); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if err := validateServer(server); err != nil {
		return err
	}
	server = h.bindings.AddServer(server)
	h.logger.Info("server registered", zap.String("id", server.ID), zap.String("host", server.Host))
	return respond(c, http.StatusCreated, Success(server))
}

// HandleUpdateServer replaces a server
func (h *ConfigHandlerImpl) HandleUpdateServer(c echo.Context) error {
	id := c.Param("id")
	var server models.ServerBinding
	if err := c.Bind(&server); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if err := validateServer(server); err != nil {
		return err
	}
	updated, err := h.bindings.UpdateServer(id, server)
	if err != nil {
		return NewNotFoundError("server", id)
	}
	return respondOK(c, updated)
}

// HandleDeleteServer removes a server and its apps
func (h *ConfigHandlerImpl) HandleDeleteServer(c echo.Context) error {
	id := c.Param("id")
	if !h.bindings.DeleteServer(id) {
		return NewNotFoundError("server", id)
	}
	h.logger.Info("server removed", zap.String("id", id))
	return respondOK(c, nil)
}

// HandleListApps returns every registered app
func (h *ConfigHandlerImpl) HandleListApps(c echo.Context) error {
	return respondOK(c, h.bindings.ListApps())
}

// HandleGetApp returns one app
func (h *ConfigHandlerImpl) HandleGetApp(c echo.Context) error {
	id := c.Param("id")
	app, ok := h.bindings.ResolveApp(id)
	if !ok {
		return NewNotFoundError("app", id)
	}
	return respondOK(c, app)
}

// HandleListAppsForServer returns the apps bound to one server
func (h *ConfigHandlerImpl) HandleListAppsForServer(c echo.Context) error {
	serverID := c.Param("serverId")
	if _, ok := h.bindings.ResolveServer(serverID); !ok {
		return NewNotFoundError("server", serverID)
	}
	return respondOK(c, h.bindings.ListAppsForServer(serverID))
}

// HandleCreateApp registers an app
func (h *ConfigHandlerImpl) HandleCreateApp(c echo.Context) error {
	var app models.AppBinding
	if err := c.Bind(&app); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if err := validateApp(app); err != nil {
		return err
	}
	created, err := h.bindings.AddApp(app)
	if err != nil {
		return NewValidationError("serverId", err)
	}
	h.logger.Info("app registered", zap.String("id", created.ID), zap.String("serverId", created.ServerID))
	return respond(c, http.StatusCreated, Success(created))
}

// HandleUpdateApp replaces an app
func (h *ConfigHandlerImpl) HandleUpdateApp(c echo.Context) error {
	id := c.Param("id")
	var app models.AppBinding
	if err := c.Bind(&app); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if err := validateApp(app); err != nil {
		return err
	}
	updated, err := h.bindings.UpdateApp(id, app)
	if err != nil {
		return appUpdateError(err, id)
	}
	return respondOK(c, updated)
}

// HandleDeleteApp removes an app
func (h *ConfigHandlerImpl) HandleDeleteApp(c echo.Context) error {
	id := c.Param("id")
	if !h.bindings.DeleteApp(id) {
		return NewNotFoundError("app", id)
	}
	return respondOK(c, nil)
}

func validateServer(s models.ServerBinding) error {
	if strings.TrimSpace(s.Host) == "" {
		return NewValidationError("host", errors.New("host is required"))
	}
	if s.Port < 0 || s.Port > 65535 {
		return NewValidationError("port", fmt.Errorf("port out of range: %d", s.Port))
	}
	return nil
}

func validateApp(a models.AppBinding) error {
	if strings.TrimSpace(a.LogPath) == "" {
		return NewValidationError("logPath", errors.New("logPath is required"))
	}
	if strings.TrimSpace(a.LogPrefix) == "" {
		return NewValidationError("logPrefix", errors.New("logPrefix is required"))
	}
	return nil
}

// appUpdateError maps registry sentinels: a missing app is 404, a dangling
// server reference is a validation failure.
func appUpdateError(err error, id string) error {
	switch {
	case errors.Is(err, registry.ErrAppNotFound):
		return NewNotFoundError("app", id)
	case errors.Is(err, registry.ErrServerNotFound):
		return NewValidationError("serverId", err)
	default:
		return NewInternalError("registry update failed", err)
	}
}
