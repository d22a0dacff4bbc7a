package presence

import (
	"sync"
	"time"

	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/logging"
)

// Signaller delivers typing signals to the peer, usually over the push
// socket. Signals are best-effort; a disconnected signaller drops them.
type Signaller interface {
	SignalTyping(conversationID string, typing bool) error
	Connected() bool
}

// TypingNotifierConfig controls when the typing indicator auto-clears.
type TypingNotifierConfig struct {
	// IdleTimeout clears the indicator when no keystroke arrives within
	// this duration. Default: 3 seconds.
	IdleTimeout time.Duration
}

// TypingNotifier debounces keystrokes into at most one "typing" signal per
// burst. The first pulse signals true; the indicator clears on idle
// timeout, on Stop, or when the composed message is sent.
type TypingNotifier struct {
	cfg    TypingNotifierConfig
	sig    Signaller
	convID string
	log    *logging.Logger

	mu     sync.Mutex
	timer  *time.Timer
	active bool
}

// NewTypingNotifier creates a notifier for one conversation. sig may be nil
// when no push connection exists; pulses are then tracked but never sent.
func NewTypingNotifier(cfg TypingNotifierConfig, sig Signaller, conversationID string, log *logging.Logger) *TypingNotifier {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 3 * time.Second
	}
	return &TypingNotifier{
		cfg:    cfg,
		sig:    sig,
		convID: conversationID,
		log:    log.Sub("typing"),
	}
}

// Pulse records a keystroke. The first pulse of a burst signals typing;
// every pulse pushes the auto-clear deadline out.
func (n *TypingNotifier) Pulse() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.active {
		n.active = true
		n.signalLocked(true)
	}

	// Reset idle timer
	if n.timer != nil {
		n.timer.Stop()
	}
	n.timer = time.AfterFunc(n.cfg.IdleTimeout, func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		n.clearLocked()
	})
}

// Stop clears the indicator immediately. Called when the message is sent
// or the composer loses focus. Safe to call repeatedly.
func (n *TypingNotifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.clearLocked()
}

// Active reports whether a typing burst is in progress.
func (n *TypingNotifier) Active() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.active
}

func (n *TypingNotifier) clearLocked() {
	if !n.active {
		return
	}
	n.active = false
	n.signalLocked(false)
}

func (n *TypingNotifier) signalLocked(typing bool) {
	if n.sig == nil || !n.sig.Connected() {
		return
	}
	if err := n.sig.SignalTyping(n.convID, typing); err != nil {
		n.log.Debug().Err(err).Bool("typing", typing).Msg("typing signal dropped")
	}
}
