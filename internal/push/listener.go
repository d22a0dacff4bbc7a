package push

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/logging"
)

// ErrNotConnected is returned when an outbound frame has no socket to ride.
var ErrNotConnected = errors.New("push: not connected")

// ListenerConfig configures a Listener.
type ListenerConfig struct {
	URL   string // ws:// or wss:// endpoint
	Token string // bearer token; empty disables auth

	// ReconnectMin/Max bound the backoff between dial attempts.
	// Defaults: 1s and 30s.
	ReconnectMin time.Duration
	ReconnectMax time.Duration
}

// Listener holds one WebSocket to the backend and fans incoming events out
// to registered handlers. It keeps redialing with capped backoff until
// stopped.
type Listener struct {
	cfg ListenerConfig
	log *logging.Logger

	mu       sync.Mutex
	conn     *websocket.Conn
	handlers []func(Event)
	lastSeq  int64
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewListener creates a Listener. It does nothing until Start.
func NewListener(cfg ListenerConfig, log *logging.Logger) *Listener {
	if cfg.ReconnectMin <= 0 {
		cfg.ReconnectMin = time.Second
	}
	if cfg.ReconnectMax < cfg.ReconnectMin {
		cfg.ReconnectMax = 30 * time.Second
	}
	return &Listener{
		cfg: cfg,
		log: log.Sub("push"),
	}
}

// OnEvent registers a handler for incoming events. Handlers run on the read
// goroutine and outside the listener's lock; register before Start.
func (l *Listener) OnEvent(fn func(Event)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers = append(l.handlers, fn)
}

// Start begins dialing and reading. Calling Start on a running listener is
// a no-op.
func (l *Listener) Start(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.done = make(chan struct{})

	go l.run(ctx, l.done)
}

func (l *Listener) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	backoff := l.cfg.ReconnectMin
	for {
		if ctx.Err() != nil {
			return
		}

		conn, err := l.dial(ctx)
		if err != nil {
			l.log.Debug().Err(err).Dur("retryIn", backoff).Msg("push dial failed")
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, l.cfg.ReconnectMax)
			continue
		}

		l.mu.Lock()
		l.conn = conn
		l.mu.Unlock()
		l.log.Info().Str("url", l.cfg.URL).Msg("push connected")
		backoff = l.cfg.ReconnectMin

		l.readLoop(ctx, conn)

		l.mu.Lock()
		l.conn = nil
		l.mu.Unlock()

		if ctx.Err() == nil {
			l.log.Warn().Msg("push connection lost, reconnecting")
		}
	}
}

func (l *Listener) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	if l.cfg.Token != "" {
		header.Set("Authorization", "Bearer "+l.cfg.Token)
	}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, l.cfg.URL, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return conn, err
}

func (l *Listener) readLoop(ctx context.Context, conn *websocket.Conn) {
	// Unblock ReadMessage when the context ends.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()
	defer conn.Close()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var evt Event
		if err := json.Unmarshal(raw, &evt); err != nil {
			l.log.Warn().Err(err).Msg("dropping unparseable push frame")
			continue
		}
		l.handleEvent(evt)
	}
}

// handleEvent dispatches one event to the registered handlers. Frames with
// a sequence number at or below the last seen one are duplicates from a
// reconnect replay and are dropped.
func (l *Listener) handleEvent(evt Event) {
	l.mu.Lock()
	if evt.Seq > 0 {
		if evt.Seq <= l.lastSeq {
			l.mu.Unlock()
			return
		}
		l.lastSeq = evt.Seq
	}
	handlers := make([]func(Event), len(l.handlers))
	copy(handlers, l.handlers)
	l.mu.Unlock()

	for _, fn := range handlers {
		fn(evt)
	}
}

// Connected reports whether a socket is currently open.
func (l *Listener) Connected() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conn != nil
}

// SignalTyping sends an outbound typing frame. Implements
// presence.Signaller.
func (l *Listener) SignalTyping(conversationID string, typing bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conn == nil {
		return ErrNotConnected
	}
	return l.conn.WriteJSON(typingSignal{
		Event:          EventTyping,
		ConversationID: conversationID,
		Typing:         typing,
	})
}

// Stop closes the socket and halts reconnection. It returns once the run
// loop has exited.
func (l *Listener) Stop() {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.cancel, l.done = nil, nil
	if l.conn != nil {
		// Best-effort close handshake so the server logs a clean exit.
		// Held under mu so it never interleaves with SignalTyping.
		_ = l.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}
	l.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
