// Package templates caches the quick-response templates suppliers and
// admins insert into replies.
package templates

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/domain"
	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/logging"
)

// useTimeout bounds the detached usage report fired by Apply.
const useTimeout = 5 * time.Second

// Backend is the slice of the API client the template manager needs.
type Backend interface {
	ListTemplates(ctx context.Context) ([]domain.Template, error)
	CreateTemplate(ctx context.Context, t domain.Template) (*domain.Template, error)
	UpdateTemplate(ctx context.Context, t domain.Template) (*domain.Template, error)
	DeleteTemplate(ctx context.Context, id string) error
	UseTemplate(ctx context.Context, id string) error
}

// Manager caches templates. Like the conversation directory, a failed
// refresh keeps the previous snapshot.
type Manager struct {
	backend Backend
	log     *logging.Logger

	mu        sync.RWMutex
	templates []domain.Template
}

// NewManager creates a Manager with an empty cache.
func NewManager(backend Backend, log *logging.Logger) *Manager {
	return &Manager{
		backend: backend,
		log:     log.Sub("templates"),
	}
}

// Refresh fetches the template list. On failure the cache is untouched.
func (m *Manager) Refresh(ctx context.Context) error {
	list, err := m.backend.ListTemplates(ctx)
	if err != nil {
		m.log.Warn().Err(err).Msg("template refresh failed, keeping cache")
		return fmt.Errorf("refreshing templates: %w", err)
	}

	m.mu.Lock()
	m.templates = list
	m.mu.Unlock()

	m.log.Debug().Int("count", len(list)).Msg("templates refreshed")
	return nil
}

// All returns a copy of the cached templates.
func (m *Manager) All() []domain.Template {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Template, len(m.templates))
	copy(out, m.templates)
	return out
}

// ByShortcut finds the template a composer shortcut expands to. Matching
// is case-insensitive.
func (m *Manager) ByShortcut(shortcut string) (domain.Template, bool) {
	if shortcut == "" {
		return domain.Template{}, false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.templates {
		if strings.EqualFold(t.Shortcut, shortcut) {
			return t, true
		}
	}
	return domain.Template{}, false
}

// Apply returns the template's content for insertion and reports the usage
// in the background. The report is fire-and-forget: composing never waits
// on it, and the usage counter settles on the next refresh.
func (m *Manager) Apply(t domain.Template) string {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), useTimeout)
		defer cancel()
		if err := m.backend.UseTemplate(ctx, t.ID); err != nil {
			m.log.Debug().Err(err).Str("template", t.ID).Msg("usage report dropped")
		}
	}()
	return t.Content
}

// Use reports one usage and waits for the acknowledgement. Short-lived
// commands call this instead of Apply, whose detached report would not
// outlive the process.
func (m *Manager) Use(ctx context.Context, id string) error {
	if err := m.backend.UseTemplate(ctx, id); err != nil {
		return fmt.Errorf("reporting template usage: %w", err)
	}
	return nil
}

// Create adds a template and refreshes the cache.
func (m *Manager) Create(ctx context.Context, t domain.Template) (*domain.Template, error) {
	created, err := m.backend.CreateTemplate(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("creating template: %w", err)
	}
	m.refreshAfterMutation(ctx)
	return created, nil
}

// Update replaces a template and refreshes the cache.
func (m *Manager) Update(ctx context.Context, t domain.Template) (*domain.Template, error) {
	updated, err := m.backend.UpdateTemplate(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("updating template: %w", err)
	}
	m.refreshAfterMutation(ctx)
	return updated, nil
}

// Delete removes a template and refreshes the cache.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if err := m.backend.DeleteTemplate(ctx, id); err != nil {
		return fmt.Errorf("deleting template: %w", err)
	}
	m.refreshAfterMutation(ctx)
	return nil
}

func (m *Manager) refreshAfterMutation(ctx context.Context) {
	if err := m.Refresh(ctx); err != nil {
		m.log.Warn().Err(err).Msg("refetch after mutation failed, cache is stale")
	}
}
