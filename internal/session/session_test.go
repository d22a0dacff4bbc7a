package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/api"
	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/domain"
	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/logging"
	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/store"
)

func testLogger() *logging.Logger {
	return logging.New(nil, "silent")
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

// fakeBackend is a test double for Backend.
type fakeBackend struct {
	mu            sync.Mutex
	conv          domain.Conversation
	serverMsgs    []domain.Message
	getMsgsFunc   func(id string) ([]domain.Message, error)
	sendFunc      func(id string, req api.SendMessageRequest) (*domain.Message, error)
	markReadErr   error
	fetchCalls    map[string]int
	sendCalls     int
	markReadCalls int
}

func newFakeBackend(conv domain.Conversation, msgs ...domain.Message) *fakeBackend {
	return &fakeBackend{
		conv:       conv,
		serverMsgs: msgs,
		fetchCalls: make(map[string]int),
	}
}

func (f *fakeBackend) GetConversation(_ context.Context, id string) (*domain.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conv.ID == id {
		conv := f.conv
		return &conv, nil
	}
	return &domain.Conversation{ID: id, Type: domain.TypeBuyerSupplier, Status: domain.StatusActive}, nil
}

func (f *fakeBackend) GetMessages(_ context.Context, id string) ([]domain.Message, error) {
	f.mu.Lock()
	f.fetchCalls[id]++
	fn := f.getMsgsFunc
	snap := append([]domain.Message(nil), f.serverMsgs...)
	f.mu.Unlock()

	if fn != nil {
		return fn(id)
	}
	return snap, nil
}

func (f *fakeBackend) SendMessage(_ context.Context, id string, req api.SendMessageRequest) (*domain.Message, error) {
	f.mu.Lock()
	f.sendCalls++
	fn := f.sendFunc
	f.mu.Unlock()

	if fn != nil {
		return fn(id, req)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	msg := domain.Message{
		ID:             "srv-" + req.Content,
		ConversationID: id,
		Content:        req.Content,
		Attachments:    req.Attachments,
	}
	f.serverMsgs = append(f.serverMsgs, msg)
	return &msg, nil
}

func (f *fakeBackend) MarkRead(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markReadCalls++
	return f.markReadErr
}

func (f *fakeBackend) fetches(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchCalls[id]
}

func (f *fakeBackend) reads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.markReadCalls
}

func (f *fakeBackend) sends() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sendCalls
}

func (f *fakeBackend) appendServer(msg domain.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.serverMsgs = append(f.serverMsgs, msg)
}

func openConv() domain.Conversation {
	return domain.Conversation{
		ID:     "c1",
		Type:   domain.TypeBuyerSupplier,
		Status: domain.StatusActive,
		Buyer:  &domain.Participant{ID: "buy-1", Name: "Nora Imports"},
	}
}

// quiet returns a config whose timer-driven polls never fire during a
// test; syncs happen only via Nudge.
func quiet() Config {
	return Config{PollInterval: time.Hour, PollPushInterval: time.Hour}
}

func startedSession(t *testing.T, backend Backend, cfg Config) *Session {
	t.Helper()
	s := New(backend, openConv(), "buy-1", cfg, testLogger())
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(s.Close)
	return s
}

// --- Activation tests ---

func TestStart_LoadsAndMarksRead(t *testing.T) {
	backend := newFakeBackend(openConv(), domain.Message{ID: "m1", Content: "hello"})
	s := startedSession(t, backend, quiet())

	assert.Equal(t, StateReady, s.State())
	require.Len(t, s.Messages(), 1)
	assert.Equal(t, "m1", s.Messages()[0].ID)
	assert.Equal(t, 1, backend.reads())
}

func TestStart_MarksReadExactlyOnce(t *testing.T) {
	backend := newFakeBackend(openConv(), domain.Message{ID: "m1"})
	s := startedSession(t, backend, quiet())

	before := backend.fetches("c1")
	s.Nudge()
	waitFor(t, func() bool { return backend.fetches("c1") > before })

	assert.Equal(t, 1, backend.reads(), "reading happens on activation, not on every sync")
}

func TestStart_MarkReadFailureIsSwallowed(t *testing.T) {
	backend := newFakeBackend(openConv(), domain.Message{ID: "m1"})
	backend.markReadErr = errors.New("read receipt endpoint down")

	s := startedSession(t, backend, quiet())
	assert.Equal(t, StateReady, s.State(), "a failed receipt never blocks the conversation")
}

func TestStart_InitialLoadFailureThenSelfHeal(t *testing.T) {
	backend := newFakeBackend(openConv(), domain.Message{ID: "m1"})
	var failing = true
	var mu sync.Mutex
	backend.getMsgsFunc = func(id string) ([]domain.Message, error) {
		mu.Lock()
		defer mu.Unlock()
		if failing {
			return nil, errors.New("boom")
		}
		return []domain.Message{{ID: "m1"}}, nil
	}

	s := New(backend, openConv(), "buy-1", quiet(), testLogger())
	err := s.Start(context.Background())
	t.Cleanup(s.Close)

	require.Error(t, err)
	assert.Equal(t, StateError, s.State())
	assert.Error(t, s.LastError())

	mu.Lock()
	failing = false
	mu.Unlock()
	s.Nudge()

	waitFor(t, func() bool { return s.State() == StateReady })
	assert.NoError(t, s.LastError())
	assert.Len(t, s.Messages(), 1)
}

func TestStart_Twice(t *testing.T) {
	backend := newFakeBackend(openConv())
	s := startedSession(t, backend, quiet())
	assert.Error(t, s.Start(context.Background()))
}

// --- Sync tests ---

func TestSync_FailureKeepsMessages(t *testing.T) {
	backend := newFakeBackend(openConv(), domain.Message{ID: "m1"})
	s := startedSession(t, backend, quiet())

	var mu sync.Mutex
	failing := true
	backend.getMsgsFunc = func(id string) ([]domain.Message, error) {
		mu.Lock()
		defer mu.Unlock()
		if failing {
			return nil, errors.New("poll failed")
		}
		return []domain.Message{{ID: "m1"}}, nil
	}

	s.Nudge()
	waitFor(t, func() bool { return s.LastError() != nil })

	assert.Equal(t, StateReady, s.State(), "steady-state poll failures do not degrade the session")
	assert.Len(t, s.Messages(), 1, "stale data beats no data")

	mu.Lock()
	failing = false
	mu.Unlock()
	s.Nudge()
	waitFor(t, func() bool { return s.LastError() == nil })
}

func TestSync_SupersededResponseIsDropped(t *testing.T) {
	m1 := domain.Message{ID: "m1", Content: "first"}
	backend := newFakeBackend(openConv(), m1)

	var (
		mu       sync.Mutex
		gated    bool
		inFlight = make(chan struct{}, 4)
		release  = make(chan struct{})
	)
	backend.getMsgsFunc = func(id string) ([]domain.Message, error) {
		backend.mu.Lock()
		snap := append([]domain.Message(nil), backend.serverMsgs...)
		backend.mu.Unlock()

		mu.Lock()
		g := gated
		mu.Unlock()
		if g {
			inFlight <- struct{}{}
			<-release
		}
		return snap, nil
	}

	s := startedSession(t, backend, quiet())
	require.Len(t, s.Messages(), 1)

	// A fetch goes on the wire and stalls holding the pre-send snapshot.
	mu.Lock()
	gated = true
	mu.Unlock()
	s.Nudge()
	<-inFlight

	// The send lands while that fetch is still out.
	msg, err := s.Send(context.Background(), "second", nil, nil)
	require.NoError(t, err)
	require.Len(t, s.Messages(), 2)

	// The stale response arrives after the send already applied.
	release <- struct{}{}

	// The queued follow-up fetch starts; the stale one must not have
	// rolled the list back while we hold the follow-up open.
	<-inFlight
	msgs := s.Messages()
	require.Len(t, msgs, 2, "a superseded response must never clobber newer data")
	assert.Equal(t, msg.ID, msgs[1].ID)

	mu.Lock()
	gated = false
	mu.Unlock()
	release <- struct{}{}
	waitFor(t, func() bool { return s.LastError() == nil })
}

// --- Send tests ---

func TestSend_EmptyDraftNeverReachesNetwork(t *testing.T) {
	backend := newFakeBackend(openConv())
	s := startedSession(t, backend, quiet())

	_, err := s.Send(context.Background(), "   ", nil, nil)
	assert.ErrorIs(t, err, domain.ErrEmptyMessage)
	assert.Equal(t, 0, backend.sends())
	assert.Equal(t, StateReady, s.State())
}

func TestSend_AttachmentOnlyIsValid(t *testing.T) {
	backend := newFakeBackend(openConv())
	s := startedSession(t, backend, quiet())

	msg, err := s.Send(context.Background(), "", []domain.Attachment{
		{Name: "po.pdf", Kind: domain.AttachmentDocument, Size: 42},
	}, nil)
	require.NoError(t, err)
	require.Len(t, msg.Attachments, 1)
}

func TestSend_FailureKeepsDraft(t *testing.T) {
	backend := newFakeBackend(openConv(), domain.Message{ID: "m1"})
	var mu sync.Mutex
	failing := true
	backend.sendFunc = func(id string, req api.SendMessageRequest) (*domain.Message, error) {
		mu.Lock()
		defer mu.Unlock()
		if failing {
			return nil, errors.New("backend rejected the send")
		}
		return &domain.Message{ID: "m2", Content: req.Content}, nil
	}

	s := startedSession(t, backend, quiet())
	s.Compose("three pallets by friday?")

	_, err := s.Send(context.Background(), s.Draft().Content, nil, nil)
	require.Error(t, err)

	assert.Equal(t, "three pallets by friday?", s.Draft().Content, "nothing typed is lost on failure")
	assert.Equal(t, StateReady, s.State())
	assert.Error(t, s.LastError())
	assert.Len(t, s.Messages(), 1, "no optimistic append for a failed send")

	// The retry goes through and clears the draft.
	mu.Lock()
	failing = false
	mu.Unlock()
	_, err = s.Send(context.Background(), s.Draft().Content, nil, nil)
	require.NoError(t, err)
	assert.True(t, s.Draft().Empty())
	assert.Len(t, s.Messages(), 2)
}

func TestSend_NotifiesOnlyAcceptedSends(t *testing.T) {
	backend := newFakeBackend(openConv())
	var mu sync.Mutex
	failing := true
	backend.sendFunc = func(id string, req api.SendMessageRequest) (*domain.Message, error) {
		mu.Lock()
		defer mu.Unlock()
		if failing {
			return nil, errors.New("backend rejected the send")
		}
		return &domain.Message{ID: "m-ok", Content: req.Content}, nil
	}

	s := startedSession(t, backend, quiet())

	notified := 0
	s.OnSent(func() { notified++ })

	_, err := s.Send(context.Background(), "   ", nil, nil)
	require.Error(t, err)

	_, err = s.Send(context.Background(), "first try", nil, nil)
	require.Error(t, err)
	assert.Zero(t, notified, "neither a rejected nor a failed send is a send")

	mu.Lock()
	failing = false
	mu.Unlock()

	_, err = s.Send(context.Background(), "second try", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, notified)
}

func TestSend_RejectedWhileClosedConversation(t *testing.T) {
	conv := openConv()
	conv.Status = domain.StatusClosed
	backend := newFakeBackend(conv)

	s := New(backend, conv, "buy-1", quiet(), testLogger())
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(s.Close)

	_, err := s.Send(context.Background(), "anyone there?", nil, nil)
	assert.ErrorIs(t, err, ErrConversationClosed)
	assert.Equal(t, 0, backend.sends())
}

func TestSend_SecondSendWhileInFlight(t *testing.T) {
	backend := newFakeBackend(openConv())
	release := make(chan struct{})
	started := make(chan struct{})
	backend.sendFunc = func(id string, req api.SendMessageRequest) (*domain.Message, error) {
		close(started)
		<-release
		return &domain.Message{ID: "m-slow", Content: req.Content}, nil
	}

	s := startedSession(t, backend, quiet())

	errCh := make(chan error, 1)
	go func() {
		_, err := s.Send(context.Background(), "first", nil, nil)
		errCh <- err
	}()
	<-started

	_, err := s.Send(context.Background(), "second", nil, nil)
	assert.ErrorIs(t, err, ErrSendInProgress)

	close(release)
	require.NoError(t, <-errCh)
}

func TestSend_BeforeStart(t *testing.T) {
	backend := newFakeBackend(openConv())
	s := New(backend, openConv(), "buy-1", quiet(), testLogger())

	_, err := s.Send(context.Background(), "too early", nil, nil)
	assert.ErrorIs(t, err, ErrNotStarted)
}

// --- Poll cadence tests ---

func TestPolling_DefaultCadence(t *testing.T) {
	backend := newFakeBackend(openConv())
	s := startedSession(t, backend, Config{PollInterval: 20 * time.Millisecond, PollPushInterval: time.Hour})
	_ = s

	waitFor(t, func() bool { return backend.fetches("c1") >= 3 })
}

func TestPolling_RelaxedWhilePushHealthy(t *testing.T) {
	backend := newFakeBackend(openConv())
	s := New(backend, openConv(), "buy-1",
		Config{PollInterval: 20 * time.Millisecond, PollPushInterval: time.Hour},
		testLogger())
	s.SetPushConnected(func() bool { return true })
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(s.Close)

	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, 1, backend.fetches("c1"), "with a healthy socket only the initial load polls")

	// A push nudge still forces an immediate fetch.
	s.Nudge()
	waitFor(t, func() bool { return backend.fetches("c1") == 2 })
}

// --- Scroll gating tests ---

func TestScroll_GatedByMinimized(t *testing.T) {
	backend := newFakeBackend(openConv(), domain.Message{ID: "m1"})
	s := New(backend, openConv(), "buy-1", quiet(), testLogger())
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(s.Close)

	// Registered after the initial load so only live arrivals count.
	var mu sync.Mutex
	scrolls := 0
	s.OnScrollToLatest(func() {
		mu.Lock()
		scrolls++
		mu.Unlock()
	})
	count := func() int {
		mu.Lock()
		defer mu.Unlock()
		return scrolls
	}

	backend.appendServer(domain.Message{ID: "m2"})
	s.Nudge()
	waitFor(t, func() bool { return len(s.Messages()) == 2 })
	assert.Equal(t, 1, count())

	// Minimized conversations accumulate silently.
	s.SetMinimized(true)
	backend.appendServer(domain.Message{ID: "m3"})
	s.Nudge()
	waitFor(t, func() bool { return len(s.Messages()) == 3 })
	assert.Equal(t, 1, count())

	s.SetMinimized(false)
	backend.appendServer(domain.Message{ID: "m4"})
	s.Nudge()
	waitFor(t, func() bool { return len(s.Messages()) == 4 })
	assert.Equal(t, 2, count())
}

// --- Draft persistence tests ---

func TestDraft_PersistedOnCloseRestoredOnStart(t *testing.T) {
	drafts := store.NewMemoryDraftStore()
	backend := newFakeBackend(openConv())

	s := New(backend, openConv(), "buy-1", quiet(), testLogger())
	s.SetDraftStore(drafts)
	require.NoError(t, s.Start(context.Background()))

	s.Compose("half-finished reply")
	s.Close()

	saved, found, err := drafts.Get("c1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "half-finished reply", saved.Content)

	// A fresh session over the same conversation picks the draft up.
	s2 := New(backend, openConv(), "buy-1", quiet(), testLogger())
	s2.SetDraftStore(drafts)
	require.NoError(t, s2.Start(context.Background()))
	t.Cleanup(s2.Close)

	assert.Equal(t, "half-finished reply", s2.Draft().Content)
}

func TestDraft_ClearedAfterSuccessfulSend(t *testing.T) {
	drafts := store.NewMemoryDraftStore()
	backend := newFakeBackend(openConv())

	s := New(backend, openConv(), "buy-1", quiet(), testLogger())
	s.SetDraftStore(drafts)
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(s.Close)

	s.Compose("quick question")
	_, err := s.Send(context.Background(), s.Draft().Content, nil, nil)
	require.NoError(t, err)

	assert.True(t, s.Draft().Empty())
	_, found, err := drafts.Get("c1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDraft_EmptyDraftClearsStoreOnClose(t *testing.T) {
	drafts := store.NewMemoryDraftStore()
	require.NoError(t, drafts.Put(domain.Draft{ConversationID: "c1", Content: "old leftovers"}))

	backend := newFakeBackend(openConv())
	s := New(backend, openConv(), "buy-1", quiet(), testLogger())
	s.SetDraftStore(drafts)
	require.NoError(t, s.Start(context.Background()))

	// The user wiped the restored draft before leaving.
	s.SetDraft(domain.Draft{})
	s.Close()

	_, found, err := drafts.Get("c1")
	require.NoError(t, err)
	assert.False(t, found)
}

// --- Teardown tests ---

func TestClose_StopsPolling(t *testing.T) {
	backend := newFakeBackend(openConv())
	s := New(backend, openConv(), "buy-1",
		Config{PollInterval: 10 * time.Millisecond, PollPushInterval: time.Hour},
		testLogger())
	require.NoError(t, s.Start(context.Background()))

	waitFor(t, func() bool { return backend.fetches("c1") >= 2 })
	s.Close()

	settled := backend.fetches("c1")
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, settled, backend.fetches("c1"), "no fetches after teardown")
	assert.Equal(t, StateClosed, s.State())
}

func TestClose_Idempotent(t *testing.T) {
	backend := newFakeBackend(openConv())
	s := startedSession(t, backend, quiet())

	s.Close()
	require.NotPanics(t, s.Close)
	assert.Equal(t, StateClosed, s.State())
}

func TestClose_SendAfterCloseRejected(t *testing.T) {
	backend := newFakeBackend(openConv())
	s := startedSession(t, backend, quiet())
	s.Close()

	_, err := s.Send(context.Background(), "late", nil, nil)
	assert.ErrorIs(t, err, ErrConversationClosed)
}
