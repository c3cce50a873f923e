package remote

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/logplatform/backend/internal/models"
	"github.com/logplatform/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticServers []models.ServerBinding

func (s staticServers) ListServers() []models.ServerBinding { return s }

func TestAggregator_QueryFleet(t *testing.T) {
	ok := testutil.NewPeer(t, testutil.EnvelopeHandler(true, "success", []string{"a1", "a2"}))
	rejected := testutil.NewPeer(t, testutil.EnvelopeHandler(false, "no such date", nil))
	broken := testutil.NewPeer(t, testutil.RawHandler(http.StatusBadGateway, ""))
	down := testutil.NewPeer(t, testutil.EnvelopeHandler(true, "success", []string{}))
	downBinding := down.Binding("server-4")
	down.Close()

	servers := staticServers{
		ok.Binding("server-1"),
		rejected.Binding("server-2"),
		broken.Binding("server-3"),
		downBinding,
	}
	agg := NewAggregator(NewClient(time.Second, nil), servers, 2, nil)

	results := agg.QueryFleet(context.Background(), testCriteria())

	require.Len(t, results, 4)
	assert.Equal(t, []string{"server-1", "server-2", "server-3", "server-4"},
		[]string{results[0].ServerID, results[1].ServerID, results[2].ServerID, results[3].ServerID})

	assert.Equal(t, StatusOK, results[0].Status)
	assert.Equal(t, []string{"a1", "a2"}, results[0].Lines)
	assert.Equal(t, StatusRejected, results[1].Status)
	assert.Equal(t, "no such date", results[1].Message)
	assert.Equal(t, StatusUnreachable, results[2].Status)
	assert.Equal(t, StatusUnreachable, results[3].Status)
	for _, r := range results[1:] {
		assert.Empty(t, r.Lines)
	}
}

func TestAggregator_QueryFleetRunsConcurrently(t *testing.T) {
	var inFlight, peak atomic.Int32
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(100 * time.Millisecond)
		inFlight.Add(-1)
		testutil.EnvelopeHandler(true, "success", []string{"x"}).ServeHTTP(w, r)
	})

	var servers staticServers
	for i := 0; i < 4; i++ {
		p := testutil.NewPeer(t, slow)
		servers = append(servers, p.Binding(p.URL))
	}
	agg := NewAggregator(NewClient(5*time.Second, nil), servers, 0, nil)

	start := time.Now()
	results := agg.QueryFleet(context.Background(), testCriteria())

	require.Len(t, results, 4)
	for _, r := range results {
		assert.Equal(t, StatusOK, r.Status)
	}
	assert.Greater(t, peak.Load(), int32(1))
	assert.Less(t, time.Since(start), 400*time.Millisecond)
}

func TestAggregator_EmptyFleet(t *testing.T) {
	agg := NewAggregator(NewClient(time.Second, nil), staticServers{}, 0, nil)
	results := agg.QueryFleet(context.Background(), testCriteria())
	assert.NotNil(t, results)
	assert.Empty(t, results)
}
