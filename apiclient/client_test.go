package apiclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/notate-dashboard/apiclient"
	apperrors "github.com/jrsteele09/notate-dashboard/internal/errors"
	"github.com/jrsteele09/notate-dashboard/token"
	"github.com/jrsteele09/notate-dashboard/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backend records the Authorization header of every request
type backend struct {
	mu      sync.Mutex
	auth    []string
	hits    atomic.Int32
	handler http.HandlerFunc
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.hits.Add(1)
	b.mu.Lock()
	b.auth = append(b.auth, r.Header.Get("Authorization"))
	b.mu.Unlock()
	b.handler(w, r)
}

func (b *backend) headers() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.auth...)
}

func newBackend(t *testing.T, h http.HandlerFunc) (*backend, *httptest.Server) {
	t.Helper()
	b := &backend{handler: h}
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)
	return b, srv
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestBearerReadAtCallTime(t *testing.T) {
	ctx := context.Background()
	b, srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"ok": "yes"})
	})
	store := token.NewMemoryStore()
	client := apiclient.New(srv.URL, store)

	require.NoError(t, client.Post(ctx, "/api/ping", nil, nil))

	require.NoError(t, store.Set(ctx, "first.token.value"))
	require.NoError(t, client.Post(ctx, "/api/ping", nil, nil))

	require.NoError(t, store.Set(ctx, "second.token.value"))
	require.NoError(t, client.Post(ctx, "/api/ping", nil, nil))

	assert.Equal(t, []string{"", "Bearer first.token.value", "Bearer second.token.value"}, b.headers())
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	b, srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, apiclient.RouteLogin, r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "right" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid email or password"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": "a.b.c"})
	})
	store := token.NewMemoryStore()
	require.NoError(t, store.Set(ctx, "stale.token.value"))
	client := apiclient.New(srv.URL, store)

	tok, err := client.Login(ctx, "t@school.test", "right")
	require.NoError(t, err)
	assert.Equal(t, "a.b.c", tok)

	_, err = client.Login(ctx, "t@school.test", "wrong")
	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid email or password", apiErr.Message)
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))

	// login never forwards the stored token
	for _, h := range b.headers() {
		assert.Empty(t, h)
	}
}

func TestLoginWithoutToken(t *testing.T) {
	_, srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{})
	})
	_, err := apiclient.New(srv.URL, token.NewMemoryStore()).Login(context.Background(), "a", "b")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrBackend))
}

func TestErrorWithoutBody(t *testing.T) {
	_, srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	client := apiclient.New(srv.URL, token.NewMemoryStore())

	err := client.Get(context.Background(), "/api/things", nil)
	require.EqualError(t, err, "HTTP error! status: 500")
	assert.True(t, apperrors.Is(err, apperrors.ErrBackend))
}

func TestGetIsCachedUntilCleared(t *testing.T) {
	ctx := context.Background()
	b, srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, apiclient.DashboardStats{Enrollments: 3, UpcomingDeadlines: 1})
	})
	cache := apiclient.NewCache(time.Minute)
	client := apiclient.New(srv.URL, token.NewMemoryStore(), apiclient.WithCache(cache))

	stats, err := client.Stats(ctx, users.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Enrollments)
	assert.Nil(t, stats.AverageGrade)

	_, err = client.Stats(ctx, users.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, int32(1), b.hits.Load())

	client.Cache().Clear()
	_, err = client.Stats(ctx, users.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, int32(2), b.hits.Load())

	require.NoError(t, client.Put(ctx, "/api/subjects/1", map[string]string{"name": "Maths"}, nil))
	assert.Zero(t, cache.Len())
}

func TestGetBlob(t *testing.T) {
	_, srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4"))
	})
	blob, err := apiclient.New(srv.URL, token.NewMemoryStore()).GetBlob(context.Background(), "/api/submission/1/file")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", blob.ContentType)
	assert.Equal(t, []byte("%PDF-1.4"), blob.Data)
}

func TestDelete(t *testing.T) {
	_, srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})
	require.NoError(t, apiclient.New(srv.URL, token.NewMemoryStore()).Delete(context.Background(), "/api/users/9", nil))
}

func TestUsers(t *testing.T) {
	_, srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, apiclient.RouteUsers, r.URL.Path)
		assert.Equal(t, "teacher", r.URL.Query().Get("role"))
		writeJSON(w, http.StatusOK, []map[string]string{
			{"id": "teacher-1", "email": "tom@notate.test", "firstName": "Tom", "lastName": "Teacher", "role": "teacher"},
		})
	})
	list, err := apiclient.New(srv.URL, token.NewMemoryStore()).Users(context.Background(), users.RoleTeacher)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Tom Teacher", list[0].DisplayName())
	assert.Equal(t, users.RoleTeacher, list[0].Role)
}
