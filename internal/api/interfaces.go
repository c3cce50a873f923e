// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/logplatform/backend/internal/logquery"
	"github.com/logplatform/backend/internal/models"
	"github.com/logplatform/backend/internal/remote"
)

// LogHandler handles local, remote and fleet log queries
type LogHandler interface {
	HandleQuery(c echo.Context) error
	HandleDates(c echo.Context) error
	HandleDateFiles(c echo.Context) error
	HandleRemoteQuery(c echo.Context) error
	HandleRemoteDates(c echo.Context) error
	HandleRemoteDateFiles(c echo.Context) error
	HandleFleetQuery(c echo.Context) error
}

// ConfigHandler handles server and app binding CRUD
type ConfigHandler interface {
	HandleListServers(c echo.Context) error
	HandleGetServer(c echo.Context) error
	HandleCreateServer(c echo.Context) error
	HandleUpdateServer(c echo.Context) error
	HandleDeleteServer(c echo.Context) error
	HandleListApps(c echo.Context) error
	HandleGetApp(c echo.Context) error
	HandleListAppsForServer(c echo.Context) error
	HandleCreateApp(c echo.Context) error
	HandleUpdateApp(c echo.Context) error
	HandleDeleteApp(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// QueryEngine answers local queries and delegates remote ones.
// This allows mocking in tests
type QueryEngine interface {
	Query(ctx context.Context, criteria models.QueryCriteria) *logquery.Result
	AvailableDates(ctx context.Context, appID string, logType models.LogType) []string
	DateFiles(ctx context.Context, date, appID string, logType models.LogType) []models.FileTimeRange
}

// PeerClient fetches dates and file summaries from peers
type PeerClient interface {
	Dates(ctx context.Context, server models.ServerBinding) remote.DatesResult
	DateFiles(ctx context.Context, server models.ServerBinding, date string) remote.FilesResult
}

// FleetQuerier fans a query out to every registered server
type FleetQuerier interface {
	QueryFleet(ctx context.Context, criteria models.QueryCriteria) []remote.PeerResult
}

// BindingStore is the server/app registry
type BindingStore interface {
	ResolveServer(id string) (models.ServerBinding, bool)
	ResolveApp(id string) (models.AppBinding, bool)
	ListServers() []models.ServerBinding
	ListApps() []models.AppBinding
	ListAppsForServer(serverID string) []models.AppBinding
	AddServer(s models.ServerBinding) models.ServerBinding
	UpdateServer(id string, s models.ServerBinding) (models.ServerBinding, error)
	DeleteServer(id string) bool
	AddApp(a models.AppBinding) (models.AppBinding, error)
	UpdateApp(id string, a models.AppBinding) (models.AppBinding, error)
	DeleteApp(id string) bool
}
