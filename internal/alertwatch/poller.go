// Package alertwatch polls the backend alert feed and raises a transient
// notification signal exactly once per newly observed alert.
package alertwatch

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"stealthcompany.com/sentinelcare/internal/backend"
	"stealthcompany.com/sentinelcare/internal/metrics"
)

// Fetcher fetches the full alert collection
type Fetcher interface {
	Alerts(ctx context.Context) ([]backend.Alert, error)
}

// Recorder receives a copy of every raised signal, best-effort
type Recorder interface {
	RecordSignal(ctx context.Context, alert backend.Alert, observedAt time.Time) error
}

// Signal is the current state of the notification signal. Severity always
// reflects the most recent known newest alert, even between flashes, so the
// shell can color the indicator accordingly.
type Signal struct {
	Flashing bool             `json:"flashing"`
	Severity backend.Severity `json:"severity,omitempty"`
}

// Newest returns the alert with the maximum creation timestamp. On equal
// timestamps the first element encountered wins, a consequence of the
// strictly-greater fold.
func Newest(alerts []backend.Alert) (backend.Alert, bool) {
	if len(alerts) == 0 {
		return backend.Alert{}, false
	}
	newest := alerts[0]
	for _, a := range alerts[1:] {
		if a.CreatedAt.After(newest.CreatedAt) {
			newest = a
		}
	}
	return newest, true
}

// Poller owns the alert feed timer. Fetch failures are swallowed so a flaky
// backend never interrupts the operator; recovery is the next scheduled poll.
type Poller struct {
	fetcher  Fetcher
	recorder Recorder
	interval time.Duration
	flashFor time.Duration

	mu             sync.Mutex
	running        bool
	stop           chan struct{}
	lastSeenID     string
	lastSeenAt     time.Time
	latestSeverity backend.Severity
	flashing       bool
	flashSeq       uint64
}

// NewPoller creates a poller over the given feed. interval is the polling
// cadence; flashFor is how long a raised signal stays visible.
func NewPoller(fetcher Fetcher, interval, flashFor time.Duration) *Poller {
	return &Poller{
		fetcher:  fetcher,
		interval: interval,
		flashFor: flashFor,
	}
}

// SetRecorder installs an optional signal recorder
func (p *Poller) SetRecorder(r Recorder) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.recorder = r
}

// Start begins polling. The first poll fires immediately, then on the
// cadence. Calling Start on a running poller is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.stop = make(chan struct{})
	stop := p.stop
	p.mu.Unlock()

	go p.run(ctx, stop)
}

// Stop halts polling deterministically; no poll fires after Stop returns.
// The poller can be restarted with Start.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	p.running = false
	close(p.stop)
}

func (p *Poller) run(ctx context.Context, stop chan struct{}) {
	p.pollOnce(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			p.pollOnce(ctx)
		}
	}
}

// pollOnce fetches the feed and advances the signal state. Overlapping polls
// are safe: the staleness guard keeps an out-of-order response carrying an
// older newest alert from moving the last-seen pointer backwards.
func (p *Poller) pollOnce(ctx context.Context) {
	alerts, err := p.fetcher.Alerts(ctx)
	if err != nil {
		// Swallowed: background refresh must never interrupt the operator
		log.Debug().Err(err).Msg("Alert poll failed")
		metrics.RecordAlertPoll("error")
		return
	}

	newest, ok := Newest(alerts)
	if !ok {
		metrics.RecordAlertPoll("empty")
		return
	}
	metrics.RecordAlertPoll("success")

	p.observe(ctx, newest)
}

func (p *Poller) observe(ctx context.Context, newest backend.Alert) {
	p.mu.Lock()

	// A late response whose newest alert predates the recorded pointer is
	// stale; identifier equality decides novelty, the timestamp rejects
	// out-of-order regressions.
	if p.lastSeenID != "" && newest.CreatedAt.Before(p.lastSeenAt) {
		p.mu.Unlock()
		return
	}

	p.latestSeverity = newest.Severity

	if newest.AlertID == p.lastSeenID {
		p.mu.Unlock()
		return
	}

	p.lastSeenID = newest.AlertID
	p.lastSeenAt = newest.CreatedAt
	p.flashing = true
	p.flashSeq++
	seq := p.flashSeq
	recorder := p.recorder
	p.mu.Unlock()

	time.AfterFunc(p.flashFor, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.flashSeq == seq {
			p.flashing = false
		}
	})

	log.Info().
		Str("alert_id", newest.AlertID).
		Str("severity", string(newest.Severity)).
		Msg("New alert observed")
	metrics.RecordAlertSignal(string(newest.Severity))

	if recorder != nil {
		if err := recorder.RecordSignal(ctx, newest, time.Now().UTC()); err != nil {
			log.Debug().Err(err).Str("alert_id", newest.AlertID).Msg("Failed to record alert signal")
		}
	}
}

// Signal returns the current notification signal state
func (p *Poller) Signal() Signal {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Signal{
		Flashing: p.flashing,
		Severity: p.latestSeverity,
	}
}

// LastSeen returns the identifier of the last alert that raised a signal
func (p *Poller) LastSeen() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSeenID
}
