package ws

import (
	"log/slog"
	"time"
)

// Heartbeat pings every connection on a fixed interval and evicts those
// whose last pong is too old. Unauthenticated connections are pinged too;
// they time out the same way.
type Heartbeat struct {
	Registry     *Registry
	Logger       *slog.Logger
	PingInterval time.Duration
	PongTimeout  time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHeartbeat creates the liveness scheduler. Zero or negative intervals
// fall back to 30s pings and 90s timeouts.
func NewHeartbeat(registry *Registry, logger *slog.Logger, pingInterval, pongTimeout time.Duration) *Heartbeat {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	if pongTimeout <= 0 {
		pongTimeout = 90 * time.Second
	}

	return &Heartbeat{
		Registry:     registry,
		Logger:       logger,
		PingInterval: pingInterval,
		PongTimeout:  pongTimeout,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop to shut down.
func (h *Heartbeat) Start() {
	go h.run()
	h.Logger.Info("heartbeat started",
		"ping_interval", h.PingInterval, "pong_timeout", h.PongTimeout)
}

// Stop shuts down the worker, blocking until the current tick finishes.
func (h *Heartbeat) Stop() {
	close(h.stopCh)
	<-h.doneCh
	h.Logger.Info("heartbeat stopped")
}

func (h *Heartbeat) run() {
	defer close(h.doneCh)

	ticker := time.NewTicker(h.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.pingAll()
			h.sweepStale(time.Now())
		case <-h.stopCh:
			return
		}
	}
}

// pingAll enqueues a PING on every connection. A refused enqueue means the
// connection is closed or wedged; it is dropped immediately rather than
// waiting out the pong timeout.
func (h *Heartbeat) pingAll() {
	for _, c := range h.Registry.snapshot() {
		if !c.Enqueue(Envelope{Type: TypePing}) {
			h.evict(c, "send failed")
		}
	}
}

// sweepStale evicts connections whose last pong predates the timeout.
func (h *Heartbeat) sweepStale(now time.Time) {
	for _, c := range h.Registry.staleConns(now, h.PongTimeout) {
		h.evict(c, "heartbeat timeout")
	}
}

func (h *Heartbeat) evict(c *Conn, reason string) {
	if h.Registry.Unregister(c.id) {
		h.Logger.Info("connection evicted",
			"conn_id", c.id, "reason", reason, "active", h.Registry.Count())
	}
	c.Close()
}
