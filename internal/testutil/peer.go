// peer.go - Fake peer instance for remote query tests
package testutil

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"

	"github.com/logplatform/backend/internal/models"
)

// Peer is an httptest server that answers like a remote instance and
// records the queries it received.
type Peer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []*http.Request
}

// NewPeer starts a peer that delegates to handler. The server is closed
// when the test ends.
func NewPeer(t testing.TB, handler http.Handler) *Peer {
	t.Helper()
	p := &Peer{}
	p.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		p.requests = append(p.requests, r.Clone(r.Context()))
		p.mu.Unlock()
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(p.Close)
	return p
}

// Requests returns the requests received so far.
func (p *Peer) Requests() []*http.Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*http.Request(nil), p.requests...)
}

// LastQuery returns the query string of the most recent request.
func (p *Peer) LastQuery() url.Values {
	reqs := p.Requests()
	if len(reqs) == 0 {
		return nil
	}
	return reqs[len(reqs)-1].URL.Query()
}

// Binding returns a server binding that points at the peer.
func (p *Peer) Binding(id string) models.ServerBinding {
	u, _ := url.Parse(p.URL)
	host, portStr, _ := net.SplitHostPort(u.Host)
	port, _ := strconv.Atoi(portStr)
	return models.ServerBinding{ID: id, Name: id, Host: host, Port: port}
}

// EnvelopeHandler answers every request with a {success, message, data} body.
func EnvelopeHandler(success bool, message string, data interface{}) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": success,
			"message": message,
			"data":    data,
		})
	})
}

// RawHandler answers every request with status and body verbatim.
func RawHandler(status int, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}
