package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Reissam/ajuda-tech-hub/internal/access"
	"github.com/Reissam/ajuda-tech-hub/internal/apperr"
	"github.com/Reissam/ajuda-tech-hub/internal/models"
)

type noTickets struct{}

func (noTickets) List(context.Context, access.Scope) ([]models.Ticket, error) { return nil, nil }
func (noTickets) Get(context.Context, string) (*models.Ticket, error)        { return nil, nil }
func (noTickets) Create(context.Context, *models.Ticket) error                { return nil }
func (noTickets) Update(context.Context, string, models.TicketPatch, time.Time) error {
	return nil
}
func (noTickets) AddComment(context.Context, *models.Comment) error { return nil }

type profiles map[string]models.User

func (p profiles) Lookup(_ context.Context, id string) (models.User, error) {
	u, ok := p[id]
	if !ok {
		return models.User{}, apperr.NotFound("user not found")
	}
	return u, nil
}

func newManager(reg Registry, users profiles) *Manager {
	return NewManager(Config{
		Registry: reg,
		Profiles: users,
		Tickets:  noTickets{},
		Log:      zerolog.Nop(),
		TTL:      time.Hour,
	})
}

type recorded struct {
	mu     sync.Mutex
	events []Event
	nilWS  []bool
}

func (r *recorded) listen(ev Event, ws *Workspace) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	r.nilWS = append(r.nilWS, ws == nil)
}

func TestStartWorkspaceEnd(t *testing.T) {
	alice := models.User{ID: "u1", Role: models.RoleManager, Active: true}
	m := newManager(NewMemoryRegistry(), profiles{"u1": alice})
	rec := &recorded{}
	cancel := m.Subscribe(rec.listen)
	defer cancel()
	ctx := context.Background()

	ws, err := m.Start(ctx, alice)
	require.NoError(t, err)
	require.NotEmpty(t, ws.Session.ID)
	assert.Equal(t, alice, ws.Tickets.Principal())

	same, err := m.Workspace(ctx, ws.Session.ID, "u1")
	require.NoError(t, err)
	assert.Same(t, ws, same)

	_, err = m.Workspace(ctx, ws.Session.ID, "someone-else")
	assert.Equal(t, apperr.KindAuthentication, apperr.KindOf(err))

	require.NoError(t, m.End(ctx, ws.Session.ID))
	_, err = m.Workspace(ctx, ws.Session.ID, "u1")
	assert.Equal(t, apperr.KindAuthentication, apperr.KindOf(err))

	assert.Equal(t, []Event{EventSignedIn, EventSignedOut, EventExpired}, rec.events)
	assert.Equal(t, []bool{false, true, true}, rec.nilWS)
}

func TestWorkspaceRehydratesAfterRestart(t *testing.T) {
	reg := NewMemoryRegistry()
	bob := models.User{ID: "u2", Role: models.RoleTechnician, Active: true}
	first := newManager(reg, profiles{"u2": bob})
	ws, err := first.Start(context.Background(), bob)
	require.NoError(t, err)

	restarted := newManager(reg, profiles{"u2": bob})
	rec := &recorded{}
	restarted.Subscribe(rec.listen)

	got, err := restarted.Workspace(context.Background(), ws.Session.ID, "u2")
	require.NoError(t, err)
	assert.Equal(t, models.RoleTechnician, got.User.Role)
	assert.Equal(t, []Event{EventRestored}, rec.events)
}

func TestInvalidatePicksUpProfileChanges(t *testing.T) {
	users := profiles{"u3": {ID: "u3", Role: models.RoleClient, Active: true}}
	m := newManager(NewMemoryRegistry(), users)
	ws, err := m.Start(context.Background(), users["u3"])
	require.NoError(t, err)

	users["u3"] = models.User{ID: "u3", Role: models.RoleManager, Active: true}
	m.Invalidate("u3")
	got, err := m.Workspace(context.Background(), ws.Session.ID, "u3")
	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, got.User.Role)

	users["u3"] = models.User{ID: "u3", Role: models.RoleManager, Active: false}
	m.Invalidate("u3")
	_, err = m.Workspace(context.Background(), ws.Session.ID, "u3")
	assert.Equal(t, apperr.KindAuthentication, apperr.KindOf(err))
}

func (m *Manager) liveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.live)
}

func TestSweepDropsExpiredWorkspaces(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	reg := NewMemoryRegistry()
	reg.now = func() time.Time { return now }
	m := NewManager(Config{Registry: reg, Tickets: noTickets{}, Log: zerolog.Nop(), TTL: time.Millisecond})
	m.now = func() time.Time { return now }
	rec := &recorded{}
	m.Subscribe(rec.listen)
	ctx := context.Background()

	var last *Workspace
	for i := 0; i < 100; i++ {
		ws, err := m.Start(ctx, models.User{ID: "u", Role: models.RoleManager, Active: true})
		require.NoError(t, err)
		last = ws
	}
	assert.Zero(t, m.Sweep(), "nothing has expired yet")
	assert.Equal(t, 100, m.liveCount())

	now = now.Add(5 * time.Millisecond)
	assert.Equal(t, 100, m.Sweep())
	assert.Zero(t, m.liveCount())
	assert.Len(t, rec.events, 200)
	assert.Equal(t, EventExpired, rec.events[len(rec.events)-1])

	// A cached workspace past its expiry is refused even if the registry
	// has not noticed yet.
	reg.now = func() time.Time { return now.Add(-time.Hour) }
	m.mu.Lock()
	m.live[last.Session.ID] = last
	m.mu.Unlock()
	_, err := m.Workspace(ctx, last.Session.ID, "u")
	assert.Equal(t, apperr.KindAuthentication, apperr.KindOf(err))
	assert.Zero(t, m.liveCount())
}

func TestJanitorEvictsInBackground(t *testing.T) {
	m := NewManager(Config{Tickets: noTickets{}, Log: zerolog.Nop(), TTL: time.Millisecond})
	for i := 0; i < 10; i++ {
		_, err := m.Start(context.Background(), models.User{ID: "u", Role: models.RoleAdmin, Active: true})
		require.NoError(t, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.RunJanitor(ctx, time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return m.liveCount() == 0 }, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop after cancel")
	}
}

func TestUnsubscribe(t *testing.T) {
	m := newManager(NewMemoryRegistry(), profiles{})
	rec := &recorded{}
	cancel := m.Subscribe(rec.listen)
	cancel()
	_, err := m.Start(context.Background(), models.User{ID: "u"})
	require.NoError(t, err)
	assert.Empty(t, rec.events)
}

func TestMemoryRegistryExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	reg := NewMemoryRegistry()
	reg.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, reg.Put(ctx, "s1", "u1", time.Minute))
	owner, err := reg.Lookup(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "u1", owner)

	now = now.Add(2 * time.Minute)
	_, err = reg.Lookup(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}

type fakeRedis struct {
	data map[string]string
	ttl  map[string]time.Duration
}

func (f *fakeRedis) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	f.data[key] = value.(string)
	f.ttl[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(f.data, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestRedisRegistry(t *testing.T) {
	store := &fakeRedis{data: map[string]string{}, ttl: map[string]time.Duration{}}
	reg := NewRedisRegistry(store)
	ctx := context.Background()

	require.NoError(t, reg.Put(ctx, "abc", "u1", 30*time.Minute))
	assert.Equal(t, 30*time.Minute, store.ttl["helpdesk:session:abc"])

	owner, err := reg.Lookup(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "u1", owner)

	require.NoError(t, reg.Delete(ctx, "abc"))
	_, err = reg.Lookup(ctx, "abc")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, reg.Ping(ctx))
}
