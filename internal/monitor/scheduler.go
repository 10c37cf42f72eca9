package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Scheduler owns the live-mode timer. While enabled, and while the session
// has a selected subject, it fires a silent simulation cycle at a fixed
// cadence. Disable stops the timer deterministically; re-enabling restarts
// the cadence from zero elapsed time.
type Scheduler struct {
	session  *Session
	interval time.Duration

	mu      sync.Mutex
	enabled bool
	stop    chan struct{}
}

// NewScheduler creates a live-mode scheduler over the given session
func NewScheduler(session *Session, interval time.Duration) *Scheduler {
	return &Scheduler{
		session:  session,
		interval: interval,
	}
}

// Enable starts the cadence. Enabling an already-enabled scheduler is a
// no-op, so the running cadence is never reset by a repeat call.
func (s *Scheduler) Enable(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enabled {
		return
	}
	s.enabled = true
	s.stop = make(chan struct{})

	log.Info().Dur("interval", s.interval).Msg("Live mode enabled")
	go s.run(ctx, s.stop)
}

// Disable stops the cadence; no cycle fires after Disable returns
func (s *Scheduler) Disable() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return
	}
	s.enabled = false
	close(s.stop)

	log.Info().Msg("Live mode disabled")
}

// Enabled reports whether live mode is on
func (s *Scheduler) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

func (s *Scheduler) run(ctx context.Context, stop chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			if s.session.Subject() == "" {
				continue
			}
			// Silent: failures are suppressed inside the session
			_ = s.session.Simulate(ctx, true)
		}
	}
}
