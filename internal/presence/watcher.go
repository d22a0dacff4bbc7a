package presence

import (
	"context"
	"sync"
	"time"

	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/domain"
	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/logging"
)

// WatcherBackend is the slice of the API client the watcher needs.
type WatcherBackend interface {
	GetUserStatus(ctx context.Context, userID string) (*domain.Presence, error)
}

// Watcher polls one peer's online state. A failed poll keeps the last known
// state; push events can update it out of band via Apply.
type Watcher struct {
	backend  WatcherBackend
	userID   string
	interval time.Duration
	log      *logging.Logger

	mu       sync.Mutex
	last     domain.Presence
	onChange func(domain.Presence)
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewWatcher creates a Watcher for one peer. interval defaults to 30s.
func NewWatcher(backend WatcherBackend, userID string, interval time.Duration, log *logging.Logger) *Watcher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Watcher{
		backend:  backend,
		userID:   userID,
		interval: interval,
		log:      log.Sub("presence").WithUser(userID),
	}
}

// OnChange registers a callback fired when the peer's online flag flips.
// The callback runs outside the watcher's lock. Set it before Start.
func (w *Watcher) OnChange(fn func(domain.Presence)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start begins polling. Calling Start on a running watcher is a no-op.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})

	go w.loop(ctx, w.done)
}

func (w *Watcher) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	w.poll(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

func (w *Watcher) poll(ctx context.Context) {
	p, err := w.backend.GetUserStatus(ctx, w.userID)
	if err != nil {
		w.log.Debug().Err(err).Msg("presence poll failed, keeping last known state")
		return
	}
	w.Apply(*p)
}

// Apply records a fresh presence observation. Push handlers call this
// directly so a peer's status flip shows up before the next poll.
func (w *Watcher) Apply(p domain.Presence) {
	if p.UserID != w.userID {
		return
	}

	w.mu.Lock()
	changed := w.last.IsOnline != p.IsOnline || !w.last.Known()
	w.last = p
	fn := w.onChange
	w.mu.Unlock()

	if changed && fn != nil {
		fn(p)
	}
}

// Last returns the last known presence. Known() is false until the first
// successful poll or Apply.
func (w *Watcher) Last() domain.Presence {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

// Stop halts polling and waits for the loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.cancel, w.done = nil, nil
	w.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
