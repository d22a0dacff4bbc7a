package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/domain"
	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/store"
)

func conv(id string) domain.Conversation {
	return domain.Conversation{ID: id, Type: domain.TypeBuyerSupplier, Status: domain.StatusActive}
}

// recordingSignaller is a test double for presence.Signaller.
type recordingSignaller struct {
	mu      sync.Mutex
	signals []bool
}

func (r *recordingSignaller) SignalTyping(_ string, typing bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signals = append(r.signals, typing)
	return nil
}

func (r *recordingSignaller) Connected() bool { return true }

func (r *recordingSignaller) sent() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.signals...)
}

// --- Manager tests ---

func TestManager_SelectStartsSession(t *testing.T) {
	backend := newFakeBackend(conv("c1"), domain.Message{ID: "m1"})
	m := NewManager(backend, "buy-1", quiet(), testLogger())
	t.Cleanup(m.CloseActive)

	s, err := m.Select(context.Background(), conv("c1"))
	require.NoError(t, err)
	assert.Equal(t, StateReady, s.State())
	assert.Same(t, s, m.Active())
}

func TestManager_SelectSameConversationReusesSession(t *testing.T) {
	backend := newFakeBackend(conv("c1"))
	m := NewManager(backend, "buy-1", quiet(), testLogger())
	t.Cleanup(m.CloseActive)

	s1, err := m.Select(context.Background(), conv("c1"))
	require.NoError(t, err)
	s2, err := m.Select(context.Background(), conv("c1"))
	require.NoError(t, err)

	assert.Same(t, s1, s2)
	assert.Equal(t, 1, backend.reads(), "re-selecting the open conversation does not re-activate it")
}

func TestManager_SwitchTearsDownPrevious(t *testing.T) {
	backend := newFakeBackend(conv("c1"))
	m := NewManager(backend, "buy-1",
		Config{PollInterval: 10 * time.Millisecond, PollPushInterval: time.Hour},
		testLogger())
	t.Cleanup(m.CloseActive)

	s1, err := m.Select(context.Background(), conv("c1"))
	require.NoError(t, err)
	waitFor(t, func() bool { return backend.fetches("c1") >= 2 })

	s2, err := m.Select(context.Background(), conv("c2"))
	require.NoError(t, err)

	assert.Equal(t, StateClosed, s1.State())
	assert.Equal(t, StateReady, s2.State())

	// The old loop is gone: its fetch count stays put.
	settled := backend.fetches("c1")
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, settled, backend.fetches("c1"))
	assert.Greater(t, backend.fetches("c2"), 1)
}

func TestManager_RapidReselection(t *testing.T) {
	backend := newFakeBackend(conv("c1"))
	m := NewManager(backend, "buy-1", quiet(), testLogger())
	t.Cleanup(m.CloseActive)

	var all []*Session
	for i := 0; i < 6; i++ {
		id := "c1"
		if i%2 == 1 {
			id = "c2"
		}
		s, err := m.Select(context.Background(), conv(id))
		require.NoError(t, err)
		all = append(all, s)
	}

	active := m.Active()
	for _, s := range all[:len(all)-1] {
		assert.Equal(t, StateClosed, s.State(), "every superseded session is fully torn down")
	}
	assert.Equal(t, StateReady, active.State())
}

func TestManager_SwitchPersistsDraftOfPrevious(t *testing.T) {
	drafts := store.NewMemoryDraftStore()
	backend := newFakeBackend(conv("c1"))
	m := NewManager(backend, "buy-1", quiet(), testLogger())
	m.SetDraftStore(drafts)
	t.Cleanup(m.CloseActive)

	s1, err := m.Select(context.Background(), conv("c1"))
	require.NoError(t, err)
	s1.Compose("dear supplier")

	_, err = m.Select(context.Background(), conv("c2"))
	require.NoError(t, err)

	saved, found, err := drafts.Get("c1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "dear supplier", saved.Content)

	// Coming back restores it.
	back, err := m.Select(context.Background(), conv("c1"))
	require.NoError(t, err)
	assert.Equal(t, "dear supplier", back.Draft().Content)
}

func TestManager_SwitchClearsTypingOfPrevious(t *testing.T) {
	sig := &recordingSignaller{}
	backend := newFakeBackend(conv("c1"))
	m := NewManager(backend, "buy-1", quiet(), testLogger())
	m.SetPush(sig, func() bool { return true })
	m.SetTypingIdle(TypingIdle{IdleTimeout: time.Minute})
	t.Cleanup(m.CloseActive)

	s1, err := m.Select(context.Background(), conv("c1"))
	require.NoError(t, err)
	s1.Compose("still thinking")
	assert.Equal(t, []bool{true}, sig.sent())

	_, err = m.Select(context.Background(), conv("c2"))
	require.NoError(t, err)

	assert.Equal(t, []bool{true, false}, sig.sent(), "leaving a conversation clears its typing indicator")
}

func TestManager_NudgeRoutesByConversation(t *testing.T) {
	backend := newFakeBackend(conv("c1"))
	m := NewManager(backend, "buy-1", quiet(), testLogger())
	t.Cleanup(m.CloseActive)

	_, err := m.Select(context.Background(), conv("c1"))
	require.NoError(t, err)
	base := backend.fetches("c1")

	m.Nudge("other-conversation")
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, base, backend.fetches("c1"), "events for other conversations do not poke the session")

	m.Nudge("c1")
	waitFor(t, func() bool { return backend.fetches("c1") > base })
}

func TestManager_CloseActive(t *testing.T) {
	backend := newFakeBackend(conv("c1"))
	m := NewManager(backend, "buy-1", quiet(), testLogger())

	s, err := m.Select(context.Background(), conv("c1"))
	require.NoError(t, err)

	m.CloseActive()
	assert.Nil(t, m.Active())
	assert.Equal(t, StateClosed, s.State())

	require.NotPanics(t, m.CloseActive)
}
