// Package directory maintains the conversation list for one signed-in user.
package directory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/api"
	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/domain"
	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/logging"
)

// Backend is the slice of the API client the directory needs.
type Backend interface {
	ListConversations(ctx context.Context, opts api.ListOptions) ([]domain.Conversation, error)
	CreateConversation(ctx context.Context, req api.CreateConversationRequest) (*domain.Conversation, error)
	Assign(ctx context.Context, conversationID, adminID string, priority domain.Priority) (*domain.Conversation, error)
	UpdatePriority(ctx context.Context, conversationID string, priority domain.Priority) (*domain.Conversation, error)
	CloseConversation(ctx context.Context, conversationID string) (*domain.Conversation, error)
}

// Directory caches the viewer's conversations. A failed refresh keeps the
// previous snapshot so the list never blanks out on a flaky connection.
type Directory struct {
	backend Backend
	userID  string
	role    domain.ParticipantRole
	log     *logging.Logger

	mu            sync.RWMutex
	conversations []domain.Conversation
	lastSync      time.Time
	lastErr       error
}

// New creates a Directory for the given viewer.
func New(backend Backend, userID string, role domain.ParticipantRole, log *logging.Logger) *Directory {
	return &Directory{
		backend: backend,
		userID:  userID,
		role:    role,
		log:     log.Sub("directory"),
	}
}

// Refresh fetches the conversation list from the backend. On failure the
// cached snapshot is untouched and the error is recorded and returned.
func (d *Directory) Refresh(ctx context.Context) error {
	list, err := d.backend.ListConversations(ctx, api.ListOptions{UserID: d.userID, Role: d.role})
	if err != nil {
		d.mu.Lock()
		d.lastErr = err
		d.mu.Unlock()
		d.log.Error().Err(err).Msg("conversation list refresh failed, keeping cached snapshot")
		return fmt.Errorf("refreshing conversations: %w", err)
	}

	d.mu.Lock()
	d.conversations = list
	d.lastSync = time.Now()
	d.lastErr = nil
	d.mu.Unlock()

	d.log.Debug().Int("count", len(list)).Msg("conversation list refreshed")
	return nil
}

// Snapshot returns a copy of the cached conversations and the time of the
// last successful refresh. The zero time means no refresh has succeeded yet.
func (d *Directory) Snapshot() ([]domain.Conversation, time.Time) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]domain.Conversation, len(d.conversations))
	copy(out, d.conversations)
	return out, d.lastSync
}

// Get returns the cached conversation with the given id.
func (d *Directory) Get(id string) (domain.Conversation, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, c := range d.conversations {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Conversation{}, false
}

// LastError returns the error from the most recent refresh, or nil if it
// succeeded.
func (d *Directory) LastError() error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lastErr
}

// Invalidate marks the cached snapshot stale without dropping it: Snapshot
// keeps serving the old list with a zero sync time until the next Refresh.
// Mutations that land outside the directory, like a send from a live
// session, report through here.
func (d *Directory) Invalidate() {
	d.mu.Lock()
	d.lastSync = time.Time{}
	d.mu.Unlock()
	d.log.Debug().Msg("snapshot invalidated")
}

// Create starts a new conversation and refreshes the list so it appears in
// the next snapshot. The viewer's role is stamped onto the request when the
// caller left it empty; the wire body keys the counterpart by role.
func (d *Directory) Create(ctx context.Context, req api.CreateConversationRequest) (*domain.Conversation, error) {
	if req.ActorRole == "" {
		req.ActorRole = d.role
	}
	conv, err := d.backend.CreateConversation(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("creating conversation: %w", err)
	}
	d.refreshAfterMutation(ctx)
	return conv, nil
}

// Assign claims a support ticket for adminID. The returned conversation is
// the backend's view, which names whichever admin actually won the ticket.
func (d *Directory) Assign(ctx context.Context, conversationID, adminID string, priority domain.Priority) (*domain.Conversation, error) {
	conv, err := d.backend.Assign(ctx, conversationID, adminID, priority)
	if err != nil {
		return nil, fmt.Errorf("assigning ticket: %w", err)
	}
	d.log.WithConversation(conversationID).Info().
		Str("assignedTo", conv.AssignedTo).
		Msg("ticket assigned")
	d.refreshAfterMutation(ctx)
	return conv, nil
}

// SetPriority changes a ticket's priority level.
func (d *Directory) SetPriority(ctx context.Context, conversationID string, priority domain.Priority) (*domain.Conversation, error) {
	if !priority.Valid() {
		return nil, fmt.Errorf("invalid priority %q", priority)
	}
	conv, err := d.backend.UpdatePriority(ctx, conversationID, priority)
	if err != nil {
		return nil, fmt.Errorf("updating priority: %w", err)
	}
	d.refreshAfterMutation(ctx)
	return conv, nil
}

// Close closes a conversation. Closed conversations stay listed but reject
// new messages.
func (d *Directory) Close(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	conv, err := d.backend.CloseConversation(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("closing conversation: %w", err)
	}
	d.log.WithConversation(conversationID).Info().Msg("conversation closed")
	d.refreshAfterMutation(ctx)
	return conv, nil
}

// refreshAfterMutation refetches the list after a successful write. The
// mutation already landed, so a failed refetch only means the snapshot is
// stale, not that the operation failed.
func (d *Directory) refreshAfterMutation(ctx context.Context) {
	if err := d.Refresh(ctx); err != nil {
		d.log.Warn().Err(err).Msg("refetch after mutation failed, snapshot is stale")
	}
}
