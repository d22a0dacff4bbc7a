package templates

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/domain"
	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/logging"
)

func testLogger() *logging.Logger {
	return logging.New(nil, "silent")
}

// mockBackend is a test double for Backend.
type mockBackend struct {
	mu        sync.Mutex
	templates []domain.Template
	listErr   error
	useCalls  []string
	listCalls int
}

func (m *mockBackend) ListTemplates(_ context.Context) ([]domain.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]domain.Template(nil), m.templates...), nil
}

func (m *mockBackend) CreateTemplate(_ context.Context, t domain.Template) (*domain.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = "t-created"
	m.templates = append(m.templates, t)
	return &t, nil
}

func (m *mockBackend) UpdateTemplate(_ context.Context, t domain.Template) (*domain.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.templates {
		if m.templates[i].ID == t.ID {
			m.templates[i] = t
			return &t, nil
		}
	}
	return nil, errors.New("template not found")
}

func (m *mockBackend) DeleteTemplate(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.templates {
		if m.templates[i].ID == id {
			m.templates = append(m.templates[:i], m.templates[i+1:]...)
			return nil
		}
	}
	return errors.New("template not found")
}

func (m *mockBackend) UseTemplate(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.useCalls = append(m.useCalls, id)
	return nil
}

func (m *mockBackend) used() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.useCalls...)
}

func (m *mockBackend) setListErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listErr = err
}

func fixtureTemplates() []domain.Template {
	return []domain.Template{
		{ID: "t1", Name: "Greeting", Shortcut: "/hi", Content: "Hello! How can we help?"},
		{ID: "t2", Name: "Shipping", Shortcut: "/ship", Content: "Your order ships within 3 business days."},
	}
}

// --- Manager tests ---

func TestRefresh_FailureKeepsCache(t *testing.T) {
	backend := &mockBackend{templates: fixtureTemplates()}
	m := NewManager(backend, testLogger())

	require.NoError(t, m.Refresh(context.Background()))
	assert.Len(t, m.All(), 2)

	backend.setListErr(errors.New("listing is down"))
	require.Error(t, m.Refresh(context.Background()))
	assert.Len(t, m.All(), 2, "a failed refresh keeps the cached templates")
}

func TestByShortcut(t *testing.T) {
	backend := &mockBackend{templates: fixtureTemplates()}
	m := NewManager(backend, testLogger())
	require.NoError(t, m.Refresh(context.Background()))

	tests := []struct {
		name     string
		shortcut string
		wantID   string
		found    bool
	}{
		{name: "exact", shortcut: "/ship", wantID: "t2", found: true},
		{name: "case-insensitive", shortcut: "/SHIP", wantID: "t2", found: true},
		{name: "unknown", shortcut: "/nope", found: false},
		{name: "empty", shortcut: "", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := m.ByShortcut(tt.shortcut)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.wantID, got.ID)
			}
		})
	}
}

func TestApply_ReturnsContentAndReportsUsage(t *testing.T) {
	backend := &mockBackend{templates: fixtureTemplates()}
	m := NewManager(backend, testLogger())
	require.NoError(t, m.Refresh(context.Background()))

	tpl, ok := m.ByShortcut("/hi")
	require.True(t, ok)

	content := m.Apply(tpl)
	assert.Equal(t, "Hello! How can we help?", content)

	// The usage report lands in the background.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(backend.used()) == 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, []string{"t1"}, backend.used())
}

func TestUse_ReportsSynchronously(t *testing.T) {
	backend := &mockBackend{templates: fixtureTemplates()}
	m := NewManager(backend, testLogger())
	require.NoError(t, m.Refresh(context.Background()))

	require.NoError(t, m.Use(context.Background(), "t2"))
	assert.Equal(t, []string{"t2"}, backend.used())
}

func TestCRUD_RefreshesCache(t *testing.T) {
	backend := &mockBackend{templates: fixtureTemplates()}
	m := NewManager(backend, testLogger())
	require.NoError(t, m.Refresh(context.Background()))

	created, err := m.Create(context.Background(), domain.Template{Name: "Thanks", Shortcut: "/ty", Content: "Thank you!"})
	require.NoError(t, err)
	assert.Equal(t, "t-created", created.ID)
	assert.Len(t, m.All(), 3)

	created.Content = "Thank you for your order!"
	_, err = m.Update(context.Background(), *created)
	require.NoError(t, err)
	got, ok := m.ByShortcut("/ty")
	require.True(t, ok)
	assert.Equal(t, "Thank you for your order!", got.Content)

	require.NoError(t, m.Delete(context.Background(), "t-created"))
	_, ok = m.ByShortcut("/ty")
	assert.False(t, ok)
}
