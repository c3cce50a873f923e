// handlers_logs.go - Log query handlers (local, remote and fleet)
package api

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/logplatform/backend/internal/logquery"
	"github.com/logplatform/backend/internal/models"
	"github.com/logplatform/backend/internal/remote"
	"go.uber.org/zap"
)

// Response headers carrying query metadata next to the compatible envelope.
const (
	HeaderPeerStatus    = "X-Peer-Status"
	HeaderResultCapped  = "X-Result-Capped"
	HeaderQueryWarnings = "X-Query-Warnings"
	HeaderQueryFiles    = "X-Query-Files"
)

// LogHandlerImpl implements the LogHandler interface
type LogHandlerImpl struct {
	engine   QueryEngine
	peers    PeerClient
	fleet    FleetQuerier
	bindings BindingStore
	logger   *zap.Logger
}

// NewLogHandler creates a new log handler
func NewLogHandler(engine QueryEngine, peers PeerClient, fleet FleetQuerier, bindings BindingStore, logger *zap.Logger) LogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogHandlerImpl{
		engine:   engine,
		peers:    peers,
		fleet:    fleet,
		bindings: bindings,
		logger:   logger.Named("api"),
	}
}

// HandleQuery runs a query against local files, or against a peer when
// serverId is given. An unknown app or server answers with an empty list.
func (h *LogHandlerImpl) HandleQuery(c echo.Context) error {
	criteria, err := criteriaFromRequest(c)
	if err != nil {
		return err
	}
	return h.runQuery(c, criteria)
}

// HandleRemoteQuery runs a query on the peer named by serverId
func (h *LogHandlerImpl) HandleRemoteQuery(c echo.Context) error {
	if _, err := h.requireServer(c); err != nil {
		return err
	}
	criteria, err := criteriaFromRequest(c)
	if err != nil {
		return err
	}
	return h.runQuery(c, criteria)
}

func (h *LogHandlerImpl) runQuery(c echo.Context, criteria models.QueryCriteria) error {
	result := h.engine.Query(c.Request().Context(), criteria)

	header := c.Response().Header()
	header.Set(HeaderQueryFiles, strconv.Itoa(result.Files))
	if result.Capped {
		header.Set(HeaderResultCapped, "true")
	}
	if len(result.Warnings) > 0 {
		header.Set(HeaderQueryWarnings, strconv.Itoa(len(result.Warnings)))
	}
	if result.Peer != nil {
		header.Set(HeaderPeerStatus, string(result.Peer.Status))
	}
	return respondOK(c, result.Lines)
}

// HandleDates lists the dates that have log files
func (h *LogHandlerImpl) HandleDates(c echo.Context) error {
	logType, err := models.ParseLogType(c.QueryParam("logType"))
	if err != nil {
		return NewValidationError("logType", err)
	}
	dates := h.engine.AvailableDates(c.Request().Context(), c.QueryParam("appId"), logType)
	return respondOK(c, dates)
}

// HandleDateFiles lists the files of a date with their time ranges
func (h *LogHandlerImpl) HandleDateFiles(c echo.Context) error {
	date := c.Param("date")
	if !logquery.ValidDate(date) {
		return NewValidationError("date", logquery.ErrInvalidDate)
	}
	logType, err := models.ParseLogType(c.QueryParam("logType"))
	if err != nil {
		return NewValidationError("logType", err)
	}
	files := h.engine.DateFiles(c.Request().Context(), date, c.QueryParam("appId"), logType)
	return respondOK(c, files)
}

// HandleRemoteDates lists the dates available on a peer
func (h *LogHandlerImpl) HandleRemoteDates(c echo.Context) error {
	server, err := h.requireServer(c)
	if err != nil {
		return err
	}
	result := h.peers.Dates(c.Request().Context(), server)
	c.Response().Header().Set(HeaderPeerStatus, string(result.Status))
	return respondOK(c, result.Dates)
}

// HandleRemoteDateFiles lists the files of a date on a peer
func (h *LogHandlerImpl) HandleRemoteDateFiles(c echo.Context) error {
	server, err := h.requireServer(c)
	if err != nil {
		return err
	}
	date := c.Param("date")
	if !logquery.ValidDate(date) {
		return NewValidationError("date", logquery.ErrInvalidDate)
	}
	result := h.peers.DateFiles(c.Request().Context(), server, date)
	c.Response().Header().Set(HeaderPeerStatus, string(result.Status))
	return respondOK(c, result.Files)
}

// HandleFleetQuery runs one query on every registered server
func (h *LogHandlerImpl) HandleFleetQuery(c echo.Context) error {
	criteria, err := criteriaFromRequest(c)
	if err != nil {
		return err
	}
	criteria.ServerID = ""
	results := h.fleet.QueryFleet(c.Request().Context(), criteria)
	if results == nil {
		results = []remote.PeerResult{}
	}
	return respondOK(c, results)
}

func (h *LogHandlerImpl) requireServer(c echo.Context) (models.ServerBinding, error) {
	id := c.QueryParam("serverId")
	if id == "" {
		return models.ServerBinding{}, NewValidationError("serverId", errors.New("serverId is required"))
	}
	server, ok := h.bindings.ResolveServer(id)
	if !ok {
		h.logger.Warn("server not found", zap.String("serverId", id))
		return models.ServerBinding{}, NewNotFoundError("server", id)
	}
	return server, nil
}

// criteriaFromRequest validates the query string into criteria
func criteriaFromRequest(c echo.Context) (models.QueryCriteria, error) {
	criteria, err := logquery.BuildCriteria(logquery.QueryParams{
		Date:      c.QueryParam("date"),
		Keyword:   c.QueryParam("keyword"),
		StartTime: c.QueryParam("startTime"),
		EndTime:   c.QueryParam("endTime"),
		FileName:  c.QueryParam("file"),
		AppID:     c.QueryParam("appId"),
		ServerID:  c.QueryParam("serverId"),
		LogType:   c.QueryParam("logType"),
	})
	switch {
	case err == nil:
		return criteria, nil
	case errors.Is(err, logquery.ErrInvalidDate):
		return criteria, NewValidationError("date", err)
	case errors.Is(err, logquery.ErrInvalidTime):
		return criteria, NewValidationError("time", err)
	default:
		return criteria, NewBadRequestError("invalid query", err)
	}
}
