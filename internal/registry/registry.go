// Package registry keeps the server and app bindings the query engine resolves against.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/logplatform/backend/internal/models"
)

var (
	ErrServerNotFound = errors.New("server not found")
	ErrAppNotFound    = errors.New("app not found")
)

const (
	serverIDPrefix = "server-"
	appIDPrefix    = "app-"
)

type serverEntry struct {
	binding models.ServerBinding
	order   uint64
}

type appEntry struct {
	binding models.AppBinding
	order   uint64
}

// Registry is a concurrent store of server and app bindings. Reads vastly
// outnumber writes. Every app's ServerID, when set, references a registered
// server; deleting a server deletes its apps.
type Registry struct {
	mu      sync.RWMutex
	servers map[string]*serverEntry
	apps    map[string]*appEntry

	order     atomic.Uint64
	serverSeq atomic.Uint64
	appSeq    atomic.Uint64
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		servers: make(map[string]*serverEntry),
		apps:    make(map[string]*appEntry),
	}
}

// Load registers bootstrap bindings, servers first.
func (r *Registry) Load(servers []models.ServerBinding, apps []models.AppBinding) error {
	for _, s := range servers {
		r.AddServer(s)
	}
	for _, a := range apps {
		if _, err := r.AddApp(a); err != nil {
			return fmt.Errorf("loading app %q: %w", a.ID, err)
		}
	}
	return nil
}

// ResolveServer returns the server registered under id.
func (r *Registry) ResolveServer(id string) (models.ServerBinding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.servers[id]
	if !ok {
		return models.ServerBinding{}, false
	}
	return e.binding, true
}

// ResolveApp returns the app registered under id.
func (r *Registry) ResolveApp(id string) (models.AppBinding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.apps[id]
	if !ok {
		return models.AppBinding{}, false
	}
	return e.binding, true
}

// ListServers returns all servers in registration order.
func (r *Registry) ListServers() []models.ServerBinding {
	r.mu.RLock()
	entries := make([]serverEntry, 0, len(r.servers))
	for _, e := range r.servers {
		entries = append(entries, *e)
	}
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].order < entries[j].order })
	list := make([]models.ServerBinding, len(entries))
	for i, e := range entries {
		list[i] = e.binding
	}
	return list
}

// ListApps returns all apps in registration order.
func (r *Registry) ListApps() []models.AppBinding {
	return r.filterApps(func(models.AppBinding) bool { return true })
}

// ListAppsForServer returns the apps bound to serverID.
func (r *Registry) ListAppsForServer(serverID string) []models.AppBinding {
	return r.filterApps(func(a models.AppBinding) bool { return a.ServerID == serverID })
}

func (r *Registry) filterApps(keep func(models.AppBinding) bool) []models.AppBinding {
	r.mu.RLock()
	entries := make([]appEntry, 0, len(r.apps))
	for _, e := range r.apps {
		if keep(e.binding) {
			entries = append(entries, *e)
		}
	}
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].order < entries[j].order })
	list := make([]models.AppBinding, len(entries))
	for i, e := range entries {
		list[i] = e.binding
	}
	return list
}

// AddServer registers s, generating an id when s.ID is empty. An existing
// server with the same id is replaced.
func (r *Registry) AddServer(s models.ServerBinding) models.ServerBinding {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s.ID == "" {
		s.ID = r.nextID(serverIDPrefix, &r.serverSeq, func(id string) bool { _, ok := r.servers[id]; return ok })
	}
	order := r.order.Add(1)
	if existing, ok := r.servers[s.ID]; ok {
		order = existing.order
	}
	r.servers[s.ID] = &serverEntry{binding: s, order: order}
	return s
}

// UpdateServer replaces the server registered under id.
func (r *Registry) UpdateServer(id string, s models.ServerBinding) (models.ServerBinding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.servers[id]
	if !ok {
		return models.ServerBinding{}, fmt.Errorf("%w: %s", ErrServerNotFound, id)
	}
	s.ID = id
	e.binding = s
	return s, nil
}

// DeleteServer removes a server and every app bound to it.
func (r *Registry) DeleteServer(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.servers[id]; !ok {
		return false
	}
	for appID, e := range r.apps {
		if e.binding.ServerID == id {
			delete(r.apps, appID)
		}
	}
	delete(r.servers, id)
	return true
}

// AddApp registers a, generating an id when a.ID is empty. The referenced
// server, if any, must exist.
func (r *Registry) AddApp(a models.AppBinding) (models.AppBinding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a.ServerID != "" {
		if _, ok := r.servers[a.ServerID]; !ok {
			return models.AppBinding{}, fmt.Errorf("%w: %s", ErrServerNotFound, a.ServerID)
		}
	}
	if a.ID == "" {
		a.ID = r.nextID(appIDPrefix, &r.appSeq, func(id string) bool { _, ok := r.apps[id]; return ok })
	}
	order := r.order.Add(1)
	if existing, ok := r.apps[a.ID]; ok {
		order = existing.order
	}
	r.apps[a.ID] = &appEntry{binding: a, order: order}
	return a, nil
}

// UpdateApp replaces the app registered under id.
func (r *Registry) UpdateApp(id string, a models.AppBinding) (models.AppBinding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.apps[id]
	if !ok {
		return models.AppBinding{}, fmt.Errorf("%w: %s", ErrAppNotFound, id)
	}
	if a.ServerID != "" {
		if _, ok := r.servers[a.ServerID]; !ok {
			return models.AppBinding{}, fmt.Errorf("%w: %s", ErrServerNotFound, a.ServerID)
		}
	}
	a.ID = id
	e.binding = a
	return a, nil
}

// DeleteApp removes one app.
func (r *Registry) DeleteApp(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.apps[id]; !ok {
		return false
	}
	delete(r.apps, id)
	return true
}

// nextID draws ids from a monotonic counter, skipping ids already taken by
// explicitly named bindings. Callers hold r.mu.
func (r *Registry) nextID(prefix string, seq *atomic.Uint64, taken func(string) bool) string {
	for {
		id := prefix + strconv.FormatUint(seq.Add(1), 10)
		if !taken(id) {
			return id
		}
	}
}
