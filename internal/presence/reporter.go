// Package presence keeps own and peer online state. Everything here is
// advisory: a presence failure is logged and swallowed, it never blocks
// messaging.
package presence

import (
	"context"
	"sync"
	"time"

	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/logging"
)

// ReporterBackend is the slice of the API client the reporter needs.
type ReporterBackend interface {
	SetUserStatus(ctx context.Context, online bool) error
	Beacon(online bool) error
}

// Reporter advertises the local user as online with a periodic heartbeat.
// Stop fires a short-deadline offline beacon so the peer sees the
// disappearance quickly instead of waiting for the heartbeat to lapse.
type Reporter struct {
	backend  ReporterBackend
	interval time.Duration
	log      *logging.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewReporter creates a Reporter. interval defaults to 60s.
func NewReporter(backend ReporterBackend, interval time.Duration, log *logging.Logger) *Reporter {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &Reporter{
		backend:  backend,
		interval: interval,
		log:      log.Sub("presence"),
	}
}

// Start begins the heartbeat loop. Calling Start on a running reporter is a
// no-op.
func (r *Reporter) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})

	go r.loop(ctx, r.done)
}

func (r *Reporter) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	r.beat(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.beat(ctx)
		}
	}
}

func (r *Reporter) beat(ctx context.Context) {
	if err := r.backend.SetUserStatus(ctx, true); err != nil {
		r.log.Debug().Err(err).Msg("heartbeat failed")
	}
}

// Stop halts the heartbeat and sends the offline beacon. It returns once
// the loop has exited; the beacon rides its own short deadline.
func (r *Reporter) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	if err := r.backend.Beacon(false); err != nil {
		r.log.Debug().Err(err).Msg("offline beacon failed")
	}
}
