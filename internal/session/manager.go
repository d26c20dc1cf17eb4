// Package session ties a principal's workspace (ticket store and client
// directory) to the lifetime of a signed-in session.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Reissam/ajuda-tech-hub/internal/apperr"
	"github.com/Reissam/ajuda-tech-hub/internal/clients"
	"github.com/Reissam/ajuda-tech-hub/internal/metrics"
	"github.com/Reissam/ajuda-tech-hub/internal/models"
	"github.com/Reissam/ajuda-tech-hub/internal/notify"
	"github.com/Reissam/ajuda-tech-hub/internal/repository"
	"github.com/Reissam/ajuda-tech-hub/internal/tickets"
)

type Event string

const (
	EventSignedIn  Event = "signed_in"
	EventRestored  Event = "restored"
	EventSignedOut Event = "signed_out"
	EventExpired   Event = "expired"
)

// Listener receives session changes. ws is nil for signed_out and expired.
type Listener func(ev Event, ws *Workspace)

type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Workspace is the state owned by one session.
type Workspace struct {
	Session Session
	User    models.User
	Tickets *tickets.Store
	Clients *clients.Directory
}

// ProfileLookup rehydrates the principal of a session after a restart.
type ProfileLookup interface {
	Lookup(ctx context.Context, id string) (models.User, error)
}

type Config struct {
	Registry      Registry
	Profiles      ProfileLookup
	Tickets       repository.TicketRepository
	Clients       repository.ClientRepository
	TicketOptions tickets.Options
	Notifier      notify.Notifier
	Metrics       *metrics.Recorder
	Log           zerolog.Logger
	TTL           time.Duration
}

type Manager struct {
	cfg Config
	now func() time.Time

	mu   sync.RWMutex
	live map[string]*Workspace
	subs map[int]Listener
	next int
}

func NewManager(cfg Config) *Manager {
	if cfg.Registry == nil {
		cfg.Registry = NewMemoryRegistry()
	}
	if cfg.Notifier == nil {
		cfg.Notifier = notify.Discard
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	cfg.TicketOptions.Notifier = cfg.Notifier
	cfg.TicketOptions.Metrics = cfg.Metrics
	cfg.TicketOptions.Log = cfg.Log
	return &Manager{
		cfg:  cfg,
		now:  time.Now,
		live: map[string]*Workspace{},
		subs: map[int]Listener{},
	}
}

func (m *Manager) TTL() time.Duration { return m.cfg.TTL }

// Start opens a session for u and builds its workspace.
func (m *Manager) Start(ctx context.Context, u models.User) (*Workspace, error) {
	id := uuid.NewString()
	if err := m.cfg.Registry.Put(ctx, id, u.ID, m.cfg.TTL); err != nil {
		m.cfg.Log.Error().Err(err).Str("user_id", u.ID).Msg("register session")
		return nil, apperr.Wrap(apperr.KindInternal, err, "could not start session")
	}
	ws := m.build(Session{ID: id, UserID: u.ID, ExpiresAt: m.now().Add(m.cfg.TTL)}, u)

	m.mu.Lock()
	m.live[id] = ws
	m.mu.Unlock()

	m.emit(EventSignedIn, ws)
	return ws, nil
}

// Workspace returns the workspace of a live session owned by userID.
// Sessions still registered but unknown to this process are rebuilt from
// the stored profile.
func (m *Manager) Workspace(ctx context.Context, id, userID string) (*Workspace, error) {
	owner, err := m.cfg.Registry.Lookup(ctx, id)
	if errors.Is(err, ErrNotFound) {
		m.drop(id)
		m.emit(EventExpired, nil)
		return nil, apperr.Unauthenticated("session expired")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "session lookup failed")
	}
	if owner != userID {
		return nil, apperr.Unauthenticated("session does not belong to this user")
	}

	m.mu.RLock()
	ws, ok := m.live[id]
	m.mu.RUnlock()
	if ok {
		if m.expired(ws) {
			m.drop(id)
			m.emit(EventExpired, nil)
			return nil, apperr.Unauthenticated("session expired")
		}
		return ws, nil
	}

	if m.cfg.Profiles == nil {
		return nil, apperr.Unauthenticated("session expired")
	}
	u, err := m.cfg.Profiles.Lookup(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.Active {
		return nil, apperr.Unauthenticated("account is disabled")
	}
	ws = m.build(Session{ID: id, UserID: userID, ExpiresAt: m.now().Add(m.cfg.TTL)}, u)

	m.mu.Lock()
	if existing, ok := m.live[id]; ok {
		ws = existing
	} else {
		m.live[id] = ws
	}
	m.mu.Unlock()

	m.emit(EventRestored, ws)
	return ws, nil
}

// End revokes the session and discards its workspace.
func (m *Manager) End(ctx context.Context, id string) error {
	if err := m.cfg.Registry.Delete(ctx, id); err != nil {
		return apperr.Wrap(apperr.KindInternal, err, "could not end session")
	}
	m.drop(id)
	m.emit(EventSignedOut, nil)
	return nil
}

// Invalidate drops the cached workspaces of userID so the next request
// rebuilds them from the current profile. The sessions stay valid.
func (m *Manager) Invalidate(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, ws := range m.live {
		if ws.User.ID == userID {
			delete(m.live, id)
		}
	}
}

// Sweep discards the workspaces of expired sessions that were never used
// again, so their ticket mirrors do not outlive them. It returns how many
// were dropped.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	n := 0
	for id, ws := range m.live {
		if m.expired(ws) {
			delete(m.live, id)
			n++
		}
	}
	m.mu.Unlock()

	for i := 0; i < n; i++ {
		m.emit(EventExpired, nil)
	}
	if n > 0 {
		m.cfg.Log.Debug().Int("count", n).Msg("expired workspaces swept")
	}
	return n
}

// RunJanitor calls Sweep every interval until ctx is done.
func (m *Manager) RunJanitor(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Sweep()
		}
	}
}

// Subscribe registers fn for session changes and returns its cancel func.
func (m *Manager) Subscribe(fn Listener) func() {
	m.mu.Lock()
	id := m.next
	m.next++
	m.subs[id] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

func (m *Manager) build(s Session, u models.User) *Workspace {
	return &Workspace{
		Session: s,
		User:    u,
		Tickets: tickets.NewStore(m.cfg.Tickets, u, m.cfg.TicketOptions),
		Clients: clients.NewDirectory(m.cfg.Clients, u, m.cfg.Notifier, m.cfg.Metrics, m.cfg.Log),
	}
}

func (m *Manager) expired(ws *Workspace) bool {
	return !m.now().Before(ws.Session.ExpiresAt)
}

func (m *Manager) drop(id string) {
	m.mu.Lock()
	delete(m.live, id)
	m.mu.Unlock()
}

func (m *Manager) emit(ev Event, ws *Workspace) {
	m.cfg.Metrics.SessionEvent(string(ev))
	entry := m.cfg.Log.Debug().Str("event", string(ev))
	if ws != nil {
		entry = entry.Str("session_id", ws.Session.ID).Str("user_id", ws.User.ID)
	}
	entry.Msg("session event")

	m.mu.RLock()
	listeners := make([]Listener, 0, len(m.subs))
	for _, fn := range m.subs {
		listeners = append(listeners, fn)
	}
	m.mu.RUnlock()
	for _, fn := range listeners {
		fn(ev, ws)
	}
}
