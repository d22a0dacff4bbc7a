package session

import (
	"context"
	"sync"

	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/domain"
	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/logging"
	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/presence"
)

// Manager holds the single active session. Selecting a conversation tears
// the previous session down completely before the next one starts, so at
// most one poll loop ever runs.
type Manager struct {
	backend Backend
	cfg     Config
	actorID string
	log     *logging.Logger

	drafts        DraftStore
	signaller     presence.Signaller
	pushConnected func() bool
	typingIdle    TypingIdle

	mu     sync.Mutex
	active *Session
}

// TypingIdle carries the typing auto-clear timeout into per-session
// notifiers.
type TypingIdle = presence.TypingNotifierConfig

// NewManager creates a Manager.
func NewManager(backend Backend, actorID string, cfg Config, log *logging.Logger) *Manager {
	return &Manager{
		backend: backend,
		cfg:     cfg,
		actorID: actorID,
		log:     log.Sub("session"),
	}
}

// SetDraftStore wires draft persistence for every session.
func (m *Manager) SetDraftStore(d DraftStore) { m.drafts = d }

// SetPush wires the push socket: sig carries outbound typing signals and
// connected relaxes the poll cadence. Either may be nil.
func (m *Manager) SetPush(sig presence.Signaller, connected func() bool) {
	m.signaller = sig
	m.pushConnected = connected
}

// SetTypingIdle overrides the typing auto-clear timeout.
func (m *Manager) SetTypingIdle(cfg TypingIdle) { m.typingIdle = cfg }

// Select makes conv the active conversation. The previous session, if any,
// is closed first; its draft is persisted and its timers are gone before
// the new session starts. The returned session is active even when the
// initial load failed, in which case the error reports why.
func (m *Manager) Select(ctx context.Context, conv domain.Conversation) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		if m.active.Conversation().ID == conv.ID && m.active.State() != StateClosed {
			return m.active, nil
		}
		m.active.Close()
		m.active = nil
	}

	s := New(m.backend, conv, m.actorID, m.cfg, m.log)
	if m.drafts != nil {
		s.SetDraftStore(m.drafts)
	}
	if m.signaller != nil {
		s.SetTyping(presence.NewTypingNotifier(m.typingIdle, m.signaller, conv.ID, m.log))
	}
	if m.pushConnected != nil {
		s.SetPushConnected(m.pushConnected)
	}

	err := s.Start(ctx)
	m.active = s
	return s, err
}

// Active returns the current session, nil when none is open.
func (m *Manager) Active() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Nudge pokes the active session when a push event names its conversation.
func (m *Manager) Nudge(conversationID string) {
	m.mu.Lock()
	s := m.active
	m.mu.Unlock()

	if s != nil && s.Conversation().ID == conversationID {
		s.Nudge()
	}
}

// Typing returns the active session's typing notifier, nil when absent.
func (m *Manager) Typing() *presence.TypingNotifier {
	m.mu.Lock()
	s := m.active
	m.mu.Unlock()

	if s == nil {
		return nil
	}
	return s.typing
}

// CloseActive tears down the active session.
func (m *Manager) CloseActive() {
	m.mu.Lock()
	s := m.active
	m.active = nil
	m.mu.Unlock()

	if s != nil {
		s.Close()
	}
}
