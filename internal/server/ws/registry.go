package ws

import (
	"sync"
	"time"

	"github.com/slatedeck/slate/pkg/idx"
)

// Registry tracks live connections by id. One mutex guards both the map and
// every connection's session state, so check-then-mutate sequences (is this
// connection authenticated, and if so which profile is it on) are atomic.
type Registry struct {
	mu    sync.Mutex
	conns map[idx.ID]*Conn
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[idx.ID]*Conn)}
}

func (r *Registry) Register(c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[c.id] = c
}

// Unregister removes a connection, reporting whether it was present.
// Safe to call twice; the second call is a no-op.
func (r *Registry) Unregister(id idx.ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.conns[id]
	delete(r.conns, id)
	return ok
}

func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

func (r *Registry) setHello(c *Conn, version string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.clientVersion = version
}

func (r *Registry) markAuthenticated(c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.authenticated = true
}

func (r *Registry) isAuthenticated(c *Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return c.authenticated
}

func (r *Registry) activeProfile(c *Conn) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return c.activeProfileID
}

func (r *Registry) setActiveProfile(c *Conn, profileID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.activeProfileID = profileID
}

// bindProfileIfUnset sets the profile only when none is bound yet, returning
// the profile the connection ends up on.
func (r *Registry) bindProfileIfUnset(c *Conn, profileID string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.activeProfileID == "" {
		c.activeProfileID = profileID
	}
	return c.activeProfileID
}

func (r *Registry) touchPong(c *Conn, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.lastPong = now
}

// snapshot returns every live connection. Broadcast loops iterate the
// snapshot so a concurrent register or unregister cannot invalidate it.
func (r *Registry) snapshot() []*Conn {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns := make([]*Conn, 0, len(r.conns))
	for _, c := range r.conns {
		conns = append(conns, c)
	}
	return conns
}

// connView is a consistent copy of the per-connection state a broadcast
// needs, taken under the lock.
type connView struct {
	conn      *Conn
	profileID string
}

func (r *Registry) authenticatedViews() []connView {
	r.mu.Lock()
	defer r.mu.Unlock()

	views := make([]connView, 0, len(r.conns))
	for _, c := range r.conns {
		if c.authenticated {
			views = append(views, connView{conn: c, profileID: c.activeProfileID})
		}
	}
	return views
}

// rebindAll points every authenticated connection at profileID in one
// critical section and returns the affected connections.
func (r *Registry) rebindAll(profileID string) []*Conn {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns := make([]*Conn, 0, len(r.conns))
	for _, c := range r.conns {
		if c.authenticated {
			c.activeProfileID = profileID
			conns = append(conns, c)
		}
	}
	return conns
}

// staleConns returns connections whose last pong is older than timeout.
func (r *Registry) staleConns(now time.Time, timeout time.Duration) []*Conn {
	r.mu.Lock()
	defer r.mu.Unlock()

	stale := make([]*Conn, 0)
	for _, c := range r.conns {
		if now.Sub(c.lastPong) > timeout {
			stale = append(stale, c)
		}
	}
	return stale
}
