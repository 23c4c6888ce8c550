package ws

import (
	"context"
	"log/slog"
	"time"

	"github.com/slatedeck/slate/internal/server/domain"
)

// StatsSource samples the host. The monitor package provides the real one.
type StatsSource interface {
	Stats(ctx context.Context) domain.SystemStats
}

// StatsBroadcaster pushes one stats snapshot per interval to every
// authenticated connection. Nothing is pushed to connections still in the
// handshake.
type StatsBroadcaster struct {
	Registry *Registry
	Source   StatsSource
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

func NewStatsBroadcaster(registry *Registry, source StatsSource, logger *slog.Logger, interval time.Duration) *StatsBroadcaster {
	if interval <= 0 {
		interval = time.Second
	}

	return &StatsBroadcaster{
		Registry: registry,
		Source:   source,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the broadcast loop. A nil source disables it entirely.
func (s *StatsBroadcaster) Start() {
	if s.Source == nil {
		close(s.doneCh)
		return
	}
	go s.run()
	s.Logger.Info("stats broadcaster started", "interval", s.Interval)
}

func (s *StatsBroadcaster) Stop() {
	if s.Source == nil {
		return
	}
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("stats broadcaster stopped")
}

func (s *StatsBroadcaster) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.broadcast(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

func (s *StatsBroadcaster) broadcast(ctx context.Context) {
	views := s.Registry.authenticatedViews()
	if len(views) == 0 {
		return
	}

	env := Envelope{Type: TypeSystemStats, Payload: s.Source.Stats(ctx)}
	for _, v := range views {
		v.conn.Enqueue(env)
	}
}
