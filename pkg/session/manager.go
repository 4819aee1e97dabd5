package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/blockflow/internal/logging"
	"github.com/aretw0/blockflow/pkg/domain"
	"github.com/aretw0/blockflow/pkg/ports"
	"github.com/google/uuid"
)

// DefaultLockTTL bounds how long a distributed lock outlives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager owns the open editors and serialises access to each of them.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.WorkflowStore

	mu    sync.Mutex            // guards locks
	locks map[string]*lockEntry // active per-session locks

	editorsMu sync.Mutex
	editors   map[string]*Editor

	locker     ports.DistributedLocker // optional
	lockTTL    time.Duration
	editorOpts []EditorOption
	logger     *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the distributed lock expiry (DefaultLockTTL otherwise).
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager and the editors it opens.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithEditorOptions are applied to every editor the Manager opens.
func WithEditorOptions(opts ...EditorOption) Option {
	return func(m *Manager) {
		m.editorOpts = append(m.editorOpts, opts...)
	}
}

// NewManager creates a new session manager that saves through store.
func NewManager(store ports.WorkflowStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		editors: make(map[string]*Editor),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

func (m *Manager) newEditor(sessionID string) *Editor {
	opts := make([]EditorOption, 0, len(m.editorOpts)+2)
	opts = append(opts, WithStore(m.store), WithEditorLogger(m.logger))
	opts = append(opts, m.editorOpts...)
	return NewEditor(sessionID, opts...)
}

// open returns the editor for sessionID, loading the saved document on first use.
// Unless create is set, an id that is neither open nor saved yields ErrSessionNotOpen.
// Callers must hold the session lock.
func (m *Manager) open(ctx context.Context, sessionID string, create bool) (*Editor, error) {
	m.editorsMu.Lock()
	ed, ok := m.editors[sessionID]
	m.editorsMu.Unlock()
	if ok {
		return ed, nil
	}

	ed = m.newEditor(sessionID)
	doc, err := m.store.Load(ctx, sessionID)
	switch {
	case err == nil:
		ed.Load(doc)
		m.logger.Debug("session restored", "session_id", sessionID, "nodes", len(doc.Nodes))
	case errors.Is(err, domain.ErrWorkflowNotFound):
		if !create {
			return nil, fmt.Errorf("%w: %q", ErrSessionNotOpen, sessionID)
		}
		m.logger.Debug("session started", "session_id", sessionID)
	default:
		return nil, fmt.Errorf("failed to load workflow %q: %w", sessionID, err)
	}

	m.editorsMu.Lock()
	m.editors[sessionID] = ed
	m.editorsMu.Unlock()
	return ed, nil
}

// Create opens a new, empty session under a random id.
func (m *Manager) Create(ctx context.Context) (string, error) {
	id := uuid.NewString()
	if err := m.Open(ctx, id); err != nil {
		return "", err
	}
	return id, nil
}

// Open makes sessionID available, loading its saved document if there is one.
// Opening an already open session is a no-op.
func (m *Manager) Open(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session id cannot be empty")
	}
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		_, err := m.open(ctx, sessionID, true)
		return err
	})
}

// WithEditor runs fn with exclusive access to the session's editor,
// opening the session first if needed.
func (m *Manager) WithEditor(ctx context.Context, sessionID string, fn func(context.Context, *Editor) error) error {
	if sessionID == "" {
		return fmt.Errorf("session id cannot be empty")
	}
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		ed, err := m.open(ctx, sessionID, true)
		if err != nil {
			return err
		}
		return fn(ctx, ed)
	})
}

// WithExistingEditor is WithEditor for sessions that are already open or
// saved. Any other id returns ErrSessionNotOpen and registers nothing.
func (m *Manager) WithExistingEditor(ctx context.Context, sessionID string, fn func(context.Context, *Editor) error) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		ed, err := m.open(ctx, sessionID, false)
		if err != nil {
			return err
		}
		return fn(ctx, ed)
	})
}

// Close drops the in-memory editor. Saved documents stay in the store.
func (m *Manager) Close(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		m.editorsMu.Lock()
		defer m.editorsMu.Unlock()
		if _, ok := m.editors[sessionID]; !ok {
			return fmt.Errorf("%w: %q", ErrSessionNotOpen, sessionID)
		}
		delete(m.editors, sessionID)
		return nil
	})
}

// List returns the ids of open sessions, sorted.
func (m *Manager) List() []string {
	m.editorsMu.Lock()
	defer m.editorsMu.Unlock()

	ids := make([]string, 0, len(m.editors))
	for id := range m.editors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Saved delegates to the store.
func (m *Manager) Saved(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying workflow store.
func (m *Manager) Store() ports.WorkflowStore {
	return m.store
}
