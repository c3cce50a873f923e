package remote

import (
	"context"

	"github.com/logplatform/backend/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ServerLister provides the fleet of peers.
type ServerLister interface {
	ListServers() []models.ServerBinding
}

// PeerResult is one peer's share of a fleet query.
type PeerResult struct {
	ServerID   string   `json:"serverId" msgpack:"serverId"`
	ServerName string   `json:"serverName" msgpack:"serverName"`
	Status     Status   `json:"status" msgpack:"status"`
	Message    string   `json:"message,omitempty" msgpack:"message,omitempty"`
	Lines      []string `json:"lines" msgpack:"lines"`
}

// DefaultMaxConcurrent bounds the number of in-flight peer calls.
const DefaultMaxConcurrent = 16

// Aggregator fans one query out to every registered peer.
type Aggregator struct {
	client        *Client
	servers       ServerLister
	maxConcurrent int
	logger        *zap.Logger
}

// NewAggregator creates a fleet aggregator.
func NewAggregator(client *Client, servers ServerLister, maxConcurrent int, logger *zap.Logger) *Aggregator {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		client:        client,
		servers:       servers,
		maxConcurrent: maxConcurrent,
		logger:        logger.Named("aggregator"),
	}
}

// QueryFleet issues criteria to all peers concurrently, each call bounded by
// the client's per-peer deadline, and returns once every call has finished.
// Results keep the registry's server order; a failing peer never affects
// the others.
func (a *Aggregator) QueryFleet(ctx context.Context, criteria models.QueryCriteria) []PeerResult {
	servers := a.servers.ListServers()
	results := make([]PeerResult, len(servers))

	var g errgroup.Group
	g.SetLimit(a.maxConcurrent)
	for i, server := range servers {
		i, server := i, server
		g.Go(func() error {
			r := a.client.Query(ctx, server, criteria)
			results[i] = PeerResult{
				ServerID:   server.ID,
				ServerName: server.Name,
				Status:     r.Status,
				Message:    r.Message,
				Lines:      r.Lines,
			}
			return nil
		})
	}
	_ = g.Wait()

	total := 0
	for _, r := range results {
		total += len(r.Lines)
	}
	a.logger.Info("fleet query done",
		zap.String("date", criteria.Date),
		zap.Int("peers", len(servers)),
		zap.Int("lines", total))
	return results
}
