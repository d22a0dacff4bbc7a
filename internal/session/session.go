// Package session runs the message loop for the open conversation. A
// session owns one poll goroutine; its cadence stretches when the push
// socket is healthy and snaps back when it is not.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/api"
	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/domain"
	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/logging"
	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/presence"
)

// State is the session lifecycle phase.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateSending State = "sending"
	StateError   State = "error"
	StateClosed  State = "closed"
)

var (
	// ErrConversationClosed rejects sends into a closed conversation.
	ErrConversationClosed = errors.New("session: conversation is closed")
	// ErrSendInProgress rejects a second send while one is on the wire.
	ErrSendInProgress = errors.New("session: send already in progress")
	// ErrNotStarted rejects operations on a session before Start.
	ErrNotStarted = errors.New("session: not started")
)

// Backend is the slice of the API client the session needs.
type Backend interface {
	GetConversation(ctx context.Context, id string) (*domain.Conversation, error)
	GetMessages(ctx context.Context, conversationID string) ([]domain.Message, error)
	SendMessage(ctx context.Context, conversationID string, req api.SendMessageRequest) (*domain.Message, error)
	MarkRead(ctx context.Context, conversationID string) error
}

// DraftStore persists unsent composer state across sessions.
type DraftStore interface {
	Put(d domain.Draft) error
	Get(conversationID string) (domain.Draft, bool, error)
	Clear(conversationID string) error
}

// Config tunes the poll cadence.
type Config struct {
	// PollInterval is the cadence when polling is the only message
	// source. Default: 4s.
	PollInterval time.Duration
	// PollPushInterval is the relaxed cadence while the push socket is
	// connected and nudging the session. Default: 30s.
	PollPushInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = 4 * time.Second
	}
	if c.PollPushInterval <= 0 {
		c.PollPushInterval = 30 * time.Second
	}
	return c
}

// Session is one open conversation. Messages are the backend's order,
// never re-sorted locally; the draft survives failed sends and teardown.
type Session struct {
	backend Backend
	cfg     Config
	actorID string
	log     *logging.Logger

	// Optional collaborators, set before Start.
	drafts        DraftStore
	typing        *presence.TypingNotifier
	pushConnected func() bool

	mu         sync.Mutex
	conv       domain.Conversation
	state      State
	messages   []domain.Message
	draft      domain.Draft
	lastErr    error
	minimized  bool
	markedRead bool
	generation uint64
	cancel     context.CancelFunc
	done       chan struct{}
	nudge      chan struct{}
	onUpdate   func()
	onScroll   func()
	onSent     func()
}

// New creates a Session for conv. It does nothing until Start.
func New(backend Backend, conv domain.Conversation, actorID string, cfg Config, log *logging.Logger) *Session {
	return &Session{
		backend: backend,
		cfg:     cfg.withDefaults(),
		actorID: actorID,
		conv:    conv,
		state:   StateIdle,
		nudge:   make(chan struct{}, 1),
		log:     log.Sub("session").WithConversation(conv.ID),
	}
}

// SetDraftStore wires draft persistence. Call before Start.
func (s *Session) SetDraftStore(d DraftStore) { s.drafts = d }

// SetTyping wires the typing notifier. Call before Start.
func (s *Session) SetTyping(n *presence.TypingNotifier) { s.typing = n }

// SetPushConnected wires the push connectivity check that relaxes the
// poll cadence. Call before Start.
func (s *Session) SetPushConnected(fn func() bool) { s.pushConnected = fn }

// OnUpdate registers a callback fired after any state or message change.
// It runs outside the session's lock.
func (s *Session) OnUpdate(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUpdate = fn
}

// OnScrollToLatest registers a callback fired when new messages arrive
// while the conversation is not minimized.
func (s *Session) OnScrollToLatest(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onScroll = fn
}

// OnSent registers a callback fired after the backend accepts a message.
// A send reorders the conversation listing, so whoever caches one hooks in
// here to mark it stale. It runs outside the session's lock.
func (s *Session) OnSent(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSent = fn
}

// Start activates the session: restore the draft, load the conversation
// and its messages, mark them read, then begin polling. A failed initial
// load leaves the session in StateError but polling still starts, so the
// session heals itself once the backend recovers. Start may be called once.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return fmt.Errorf("session: already started")
	}
	s.state = StateLoading

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.mu.Unlock()

	s.restoreDraft()

	err := s.initialLoad(ctx)

	go s.loop(ctx, s.done)
	return err
}

func (s *Session) restoreDraft() {
	if s.drafts == nil {
		return
	}
	draft, found, err := s.drafts.Get(s.conv.ID)
	if err != nil {
		s.log.Warn().Err(err).Msg("draft restore failed")
		return
	}
	if !found {
		return
	}
	s.mu.Lock()
	s.draft = draft
	s.mu.Unlock()
	s.log.Debug().Msg("draft restored")
}

func (s *Session) initialLoad(ctx context.Context) error {
	conv, err := s.backend.GetConversation(ctx, s.conv.ID)
	if err == nil {
		s.mu.Lock()
		s.conv = *conv
		s.mu.Unlock()
	} else {
		s.log.Warn().Err(err).Msg("conversation refetch failed, using cached copy")
	}

	// Opening the conversation is what consumes its unread badge. Once
	// per session, and a failure is not retried; the next directory
	// refresh settles the count.
	s.mu.Lock()
	marked := s.markedRead
	s.markedRead = true
	s.mu.Unlock()
	if !marked {
		if err := s.backend.MarkRead(ctx, s.conv.ID); err != nil {
			s.log.Debug().Err(err).Msg("mark read failed")
		}
	}

	if err := s.sync(ctx); err != nil {
		return fmt.Errorf("loading conversation: %w", err)
	}
	return nil
}

func (s *Session) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		interval := s.cfg.PollInterval
		if s.pushConnected != nil && s.pushConnected() {
			interval = s.cfg.PollPushInterval
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-s.nudge:
			timer.Stop()
		case <-timer.C:
		}

		if ctx.Err() != nil {
			return
		}
		_ = s.sync(ctx)
	}
}

// Nudge triggers an immediate sync. Push handlers call this when an event
// names this conversation. Never blocks.
func (s *Session) Nudge() {
	select {
	case s.nudge <- struct{}{}:
	default:
	}
}

// sync fetches messages once and applies the result unless a newer request
// superseded this one while it was on the wire.
func (s *Session) sync(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return nil
	}
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	msgs, err := s.backend.GetMessages(ctx, s.conv.ID)

	s.mu.Lock()
	if gen != s.generation {
		// A send or a later fetch already applied newer data.
		s.mu.Unlock()
		return nil
	}

	if err != nil {
		s.lastErr = err
		if s.state == StateLoading {
			s.state = StateError
		}
		update := s.onUpdate
		s.mu.Unlock()

		s.log.Warn().Err(err).Msg("message sync failed, keeping current list")
		if update != nil {
			update()
		}
		return err
	}

	grew := len(msgs) > len(s.messages)
	s.messages = msgs
	s.lastErr = nil
	if s.state == StateLoading || s.state == StateError {
		s.state = StateReady
	}
	update := s.onUpdate
	scroll := s.onScroll
	if !grew || s.minimized {
		scroll = nil
	}
	s.mu.Unlock()

	if update != nil {
		update()
	}
	if scroll != nil {
		scroll()
	}
	return nil
}

// Send validates the draft locally, ships it, and appends the accepted
// message. Validation failures never reach the network; send failures keep
// the draft so nothing typed is lost.
func (s *Session) Send(ctx context.Context, content string, attachments []domain.Attachment, productRefs []string) (*domain.Message, error) {
	candidate := domain.Message{
		Content:           content,
		Attachments:       attachments,
		ProductReferences: productRefs,
	}
	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	switch {
	case s.state == StateIdle:
		s.mu.Unlock()
		return nil, ErrNotStarted
	case s.state == StateClosed || s.conv.IsClosed():
		s.mu.Unlock()
		return nil, ErrConversationClosed
	case s.state == StateSending:
		s.mu.Unlock()
		return nil, ErrSendInProgress
	}
	prev := s.state
	s.state = StateSending
	update := s.onUpdate
	s.mu.Unlock()

	if update != nil {
		update()
	}
	if s.typing != nil {
		s.typing.Stop()
	}

	msg, err := s.backend.SendMessage(ctx, s.conv.ID, api.SendMessageRequest{
		Content:           content,
		Attachments:       attachments,
		ProductReferences: productRefs,
	})

	s.mu.Lock()
	if err != nil {
		// The draft is untouched; the composer keeps what was typed.
		s.state = prev
		s.lastErr = err
		update = s.onUpdate
		s.mu.Unlock()

		if update != nil {
			update()
		}
		return nil, fmt.Errorf("sending message: %w", err)
	}

	s.messages = append(s.messages, *msg)
	s.draft = domain.Draft{ConversationID: s.conv.ID}
	s.lastErr = nil
	s.state = StateReady
	// Invalidate any fetch still on the wire; it predates this append.
	s.generation++
	update = s.onUpdate
	scroll := s.onScroll
	sent := s.onSent
	if s.minimized {
		scroll = nil
	}
	s.mu.Unlock()

	if s.drafts != nil {
		if err := s.drafts.Clear(s.conv.ID); err != nil {
			s.log.Warn().Err(err).Msg("draft clear failed")
		}
	}
	if update != nil {
		update()
	}
	if scroll != nil {
		scroll()
	}
	if sent != nil {
		sent()
	}

	// Pick up whatever else landed server-side while we were sending.
	s.Nudge()
	return msg, nil
}

// Compose updates the draft content and pulses the typing indicator.
func (s *Session) Compose(content string) {
	s.mu.Lock()
	s.draft.ConversationID = s.conv.ID
	s.draft.Content = content
	s.draft.UpdatedAt = time.Now()
	s.mu.Unlock()

	if s.typing != nil && content != "" {
		s.typing.Pulse()
	}
}

// SetDraft replaces the whole draft without touching the typing state.
func (s *Session) SetDraft(d domain.Draft) {
	s.mu.Lock()
	d.ConversationID = s.conv.ID
	s.draft = d
	s.mu.Unlock()
}

// Draft returns the current composer state.
func (s *Session) Draft() domain.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// SetMinimized gates the scroll-to-latest callback. Background arrivals in
// a minimized conversation accumulate silently.
func (s *Session) SetMinimized(minimized bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.minimized = minimized
}

// Minimized reports the minimized flag.
func (s *Session) Minimized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.minimized
}

// State returns the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Conversation returns the session's conversation as of the last load.
func (s *Session) Conversation() domain.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv
}

// Messages returns a copy of the message list in backend order.
func (s *Session) Messages() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// LastError returns the most recent sync or send error, nil after a
// successful sync.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Close tears the session down: the poll loop exits, the typing indicator
// clears, and a non-empty draft is persisted. Safe to call repeatedly;
// returns once the loop is gone.
func (s *Session) Close() {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.state = StateClosed
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	draft := s.draft
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	if s.typing != nil {
		s.typing.Stop()
	}
	s.persistDraft(draft)
	s.log.Debug().Msg("session closed")
}

func (s *Session) persistDraft(draft domain.Draft) {
	if s.drafts == nil {
		return
	}
	var err error
	if draft.Empty() {
		err = s.drafts.Clear(s.conv.ID)
	} else {
		err = s.drafts.Put(draft)
	}
	if err != nil {
		s.log.Warn().Err(err).Msg("draft persist failed")
	}
}
