package session_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/notate-dashboard/apiclient"
	"github.com/jrsteele09/notate-dashboard/routes"
	"github.com/jrsteele09/notate-dashboard/session"
	"github.com/jrsteele09/notate-dashboard/token"
	"github.com/jrsteele09/notate-dashboard/token/jwt"
	"github.com/jrsteele09/notate-dashboard/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is a Navigator and CacheClearer that remembers what happened
type recorder struct {
	mu      sync.Mutex
	paths   []string
	cleared int
}

func (r *recorder) Navigate(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

func (r *recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cleared++
}

func (r *recorder) navigations() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func (r *recorder) clears() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cleared
}

type fixture struct {
	store   *token.MemoryStore
	rec     *recorder
	service *session.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := token.NewMemoryStore()
	rec := &recorder{}
	svc := session.New(store, jwt.NewDecoder(), session.WithNavigator(rec), session.WithCacheClearer(rec))
	t.Cleanup(svc.Close)
	return &fixture{store: store, rec: rec, service: svc}
}

func mintToken(t *testing.T, userID string, role users.Role) string {
	t.Helper()
	tok, err := jwt.NewCreator(jwt.NewHMACSigner("session-test"), time.Hour).CreateAccessToken(userID, role)
	require.NoError(t, err)
	return tok
}

func storedToken(t *testing.T, s token.Store) (string, bool) {
	t.Helper()
	tok, ok, err := s.Get(context.Background())
	require.NoError(t, err)
	return tok, ok
}

func TestInitialStateIsLoading(t *testing.T) {
	f := newFixture(t)
	st := f.service.Snapshot()
	assert.True(t, st.IsLoading)
	assert.Nil(t, st.User)
	assert.False(t, st.Authenticated())
}

func TestRefreshValidTokens(t *testing.T) {
	for _, role := range users.Roles() {
		t.Run(string(role), func(t *testing.T) {
			f := newFixture(t)
			require.NoError(t, f.store.Set(context.Background(), mintToken(t, "u-"+string(role), role)))

			st := f.service.Start(context.Background())
			assert.False(t, st.IsLoading)
			require.NotNil(t, st.User)
			assert.Equal(t, role, st.User.Role)
			assert.Equal(t, "u-"+string(role), st.User.ID)
			assert.True(t, st.Authenticated())
			assert.Empty(t, f.rec.navigations())
		})
	}
}

func TestRefreshMissingToken(t *testing.T) {
	f := newFixture(t)
	st := f.service.Refresh(context.Background())
	assert.Equal(t, session.State{}, st)
	assert.Empty(t, f.rec.navigations())
	assert.Zero(t, f.rec.clears())
}

func TestRefreshInvalidTokenLogsOut(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Set(context.Background(), "not-a-jwt"))

	st := f.service.Refresh(context.Background())
	assert.Nil(t, st.User)
	assert.False(t, st.IsLoading)

	_, ok := storedToken(t, f.store)
	assert.False(t, ok)
	assert.Equal(t, []string{routes.Login}, f.rec.navigations())
	assert.Equal(t, 1, f.rec.clears())
}

func TestRefreshIsIdempotent(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Set(context.Background(), mintToken(t, "u1", users.RoleStudent)))

	var changes atomic.Int32
	unwatch := f.service.Watch(func(session.State) { changes.Add(1) })
	defer unwatch()

	first := f.service.Refresh(context.Background())
	second := f.service.Refresh(context.Background())
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), changes.Load())
}

func TestConcurrentRefresh(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Set(context.Background(), mintToken(t, "u1", users.RoleTeacher)))

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.service.Refresh(context.Background())
		}()
	}
	wg.Wait()

	st := f.service.Snapshot()
	require.NotNil(t, st.User)
	assert.Equal(t, users.RoleTeacher, st.User.Role)
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Set(context.Background(), mintToken(t, "t1", users.RoleTeacher)))
	st := f.service.Start(context.Background())
	require.Equal(t, users.RoleTeacher, st.Role())

	require.NoError(t, f.service.Logout(context.Background()))

	_, ok := storedToken(t, f.store)
	assert.False(t, ok)
	assert.Nil(t, f.service.Snapshot().User)
	assert.False(t, f.service.Snapshot().IsLoading)
	assert.Equal(t, []string{routes.Login}, f.rec.navigations())
	assert.Equal(t, 1, f.rec.clears())
}

func TestSetToken(t *testing.T) {
	f := newFixture(t)
	f.service.Start(context.Background())

	st, err := f.service.SetToken(context.Background(), mintToken(t, "a1", users.RoleAdmin))
	require.NoError(t, err)
	assert.Equal(t, users.RoleAdmin, st.Role())
}

func TestCrossContextChange(t *testing.T) {
	origin := token.NewMemoryOrigin()
	first, second := origin.Tab(), origin.Tab()

	svc := session.New(first, jwt.NewDecoder())
	defer svc.Close()
	require.Nil(t, svc.Start(context.Background()).User)

	require.NoError(t, second.Set(context.Background(), mintToken(t, "s1", users.RoleStudent)))
	require.Eventually(t, func() bool {
		return svc.Snapshot().Role() == users.RoleStudent
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, second.Clear(context.Background()))
	require.Eventually(t, func() bool {
		st := svc.Snapshot()
		return st.User == nil && !st.IsLoading
	}, 2*time.Second, 10*time.Millisecond)
}

func TestUserSwitchClearsCachedResponses(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := jwt.NewDecoder().Decode(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"id": id.ID})
	}))
	defer srv.Close()

	origin := token.NewMemoryOrigin()
	first, second := origin.Tab(), origin.Tab()
	api := apiclient.New(srv.URL, first, apiclient.WithCache(apiclient.NewCache(time.Minute)))
	svc := session.New(first, jwt.NewDecoder(), session.WithCacheClearer(api.Cache()))
	defer svc.Close()
	svc.Start(ctx)

	_, err := svc.SetToken(ctx, mintToken(t, "alice", users.RoleStudent))
	require.NoError(t, err)
	var me struct {
		ID string `json:"id"`
	}
	require.NoError(t, api.Get(ctx, "/api/me", &me))
	require.Equal(t, "alice", me.ID)

	require.NoError(t, second.Set(ctx, mintToken(t, "bob", users.RoleStudent)))
	require.Eventually(t, func() bool {
		st := svc.Snapshot()
		return st.User != nil && st.User.ID == "bob"
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, api.Get(ctx, "/api/me", &me))
	assert.Equal(t, "bob", me.ID)
}

func TestRefreshClearsCachesWhenUserChanges(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.store.Set(ctx, mintToken(t, "t1", users.RoleTeacher)))
	f.service.Refresh(ctx)
	assert.Zero(t, f.rec.clears())

	f.service.Refresh(ctx)
	assert.Zero(t, f.rec.clears(), "same user keeps the cache")

	require.NoError(t, f.store.Set(ctx, mintToken(t, "t2", users.RoleTeacher)))
	f.service.Refresh(ctx)
	assert.Equal(t, 1, f.rec.clears())

	require.NoError(t, f.store.Clear(ctx))
	f.service.Refresh(ctx)
	assert.Equal(t, 2, f.rec.clears())
	assert.Empty(t, f.rec.navigations())
}

func TestWatcherMayReadSnapshot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	unwatch := f.service.Watch(func(session.State) {
		f.service.Snapshot()
	})
	defer unwatch()
	f.service.Start(ctx)

	var tokens []string
	for i, role := range users.Roles() {
		tokens = append(tokens, mintToken(t, "u"+strconv.Itoa(i), role))
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				for j := 0; j < 50; j++ {
					_, _ = f.service.SetToken(ctx, tokens[(i+j)%len(tokens)])
				}
			}(i)
		}
		wg.Wait()
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("session transitions deadlocked against a watcher")
	}
}

func TestCloseStopsReacting(t *testing.T) {
	origin := token.NewMemoryOrigin()
	first, second := origin.Tab(), origin.Tab()

	svc := session.New(first, jwt.NewDecoder())
	svc.Start(context.Background())
	svc.Close()

	require.NoError(t, second.Set(context.Background(), mintToken(t, "s1", users.RoleStudent)))
	time.Sleep(50 * time.Millisecond)
	assert.Nil(t, svc.Snapshot().User)
}

// countingStore counts subscriptions
type countingStore struct {
	*token.MemoryStore
	subscribed atomic.Int32
	clearErr   error
	getErr     error
}

func (c *countingStore) Subscribe(fn func()) func() {
	c.subscribed.Add(1)
	return c.MemoryStore.Subscribe(fn)
}

func (c *countingStore) Clear(ctx context.Context) error {
	if c.clearErr != nil {
		return c.clearErr
	}
	return c.MemoryStore.Clear(ctx)
}

func (c *countingStore) Get(ctx context.Context) (string, bool, error) {
	if c.getErr != nil {
		return "", false, c.getErr
	}
	return c.MemoryStore.Get(ctx)
}

func TestStartSubscribesOnce(t *testing.T) {
	store := &countingStore{MemoryStore: token.NewMemoryStore()}
	svc := session.New(store, jwt.NewDecoder())
	defer svc.Close()

	svc.Start(context.Background())
	svc.Start(context.Background())
	assert.Equal(t, int32(1), store.subscribed.Load())
}

func TestStoreReadFailureIsLoggedOut(t *testing.T) {
	store := &countingStore{MemoryStore: token.NewMemoryStore(), getErr: errors.New("disk on fire")}
	svc := session.New(store, jwt.NewDecoder())

	st := svc.Refresh(context.Background())
	assert.Equal(t, session.State{}, st)
}

func TestLogoutCompletesWhenClearFails(t *testing.T) {
	store := &countingStore{MemoryStore: token.NewMemoryStore(), clearErr: errors.New("read only")}
	rec := &recorder{}
	svc := session.New(store, jwt.NewDecoder(), session.WithNavigator(rec), session.WithCacheClearer(rec))
	require.NoError(t, store.Set(context.Background(), mintToken(t, "a1", users.RoleAdmin)))
	svc.Refresh(context.Background())

	err := svc.Logout(context.Background())
	require.Error(t, err)
	assert.Nil(t, svc.Snapshot().User)
	assert.Equal(t, []string{routes.Login}, rec.navigations())
	assert.Equal(t, 1, rec.clears())
}

func TestWatchSeesTransitionsInOrder(t *testing.T) {
	f := newFixture(t)
	var mu sync.Mutex
	var seen []users.Role
	unwatch := f.service.Watch(func(st session.State) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, st.Role())
	})
	defer unwatch()

	f.service.Start(context.Background())
	_, err := f.service.SetToken(context.Background(), mintToken(t, "a1", users.RoleAdmin))
	require.NoError(t, err)
	require.NoError(t, f.service.Logout(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []users.Role{"", users.RoleAdmin, ""}, seen)
}
