package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haierkeys/murverse-service/pkg/fragment"
)

func writeEnvelope(w http.ResponseWriter, status, code int, msg string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"code":    code,
		"status":  status < 300,
		"message": msg,
		"data":    data,
	})
}

// rotating server: every login issues a new token, only the latest one is accepted
func newRotatingServer(t *testing.T, logins *int32) *httptest.Server {
	t.Helper()
	var current atomic.Value
	current.Store("")
	mux := http.NewServeMux()
	mux.HandleFunc("/api/user/login", func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(logins, 1)
		tok := "tok-" + string(rune('0'+n))
		current.Store(tok)
		writeEnvelope(w, 200, 1, "ok", map[string]any{"token": tok, "expiresAt": "2099-01-01 00:00:00"})
	})
	mux.HandleFunc("/api/fragments/f1", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+current.Load().(string) {
			writeEnvelope(w, 401, 505, "token invalid", nil)
			return
		}
		writeEnvelope(w, 200, 1, "ok", map[string]any{"id": "f1", "content": "buy milk", "type": "fragment"})
	})
	return httptest.NewServer(mux)
}

func TestClient_PasswordLoginAndGet(t *testing.T) {
	var logins int32
	srv := newRotatingServer(t, &logins)
	defer srv.Close()

	ctx := context.Background()
	c := New(srv.URL, WithTokenSource(NewPasswordTokenSource(ctx, srv.URL, "alice", "secret")))

	f, err := c.Fragments().Get(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "buy milk", f.Content)
	assert.Equal(t, fragment.TypeFragment, f.Type)

	_, err = c.Fragments().Get(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&logins), "cached token reused")
}

func TestClient_RetryOnceOn401(t *testing.T) {
	var logins int32
	srv := newRotatingServer(t, &logins)
	defer srv.Close()

	ctx := context.Background()
	src := NewPasswordTokenSource(ctx, srv.URL, "alice", "secret")
	c := New(srv.URL, WithTokenSource(src))

	_, err := c.Fragments().Get(ctx, "f1")
	require.NoError(t, err)

	// another login elsewhere rotates the token, the cached one is now stale
	_, err = src.Token()
	require.NoError(t, err)

	_, err = c.Fragments().Get(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&logins))
}

func TestClient_401ReplayedExactlyOnce(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		writeEnvelope(w, 401, 505, "token invalid", nil)
	}))
	defer srv.Close()

	c := New(srv.URL, WithAPIKey("k"))
	_, err := c.Fragments().Get(context.Background(), "f1")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestClient_APIErrorCarriesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		writeEnvelope(w, 404, 441, "fragment not found", nil)
	}))
	defer srv.Close()

	c := New(srv.URL, WithAPIKey("key"))
	err := c.Fragments().Delete(context.Background(), "missing")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 404, apiErr.Status)
	assert.Equal(t, 441, apiErr.Code)
	assert.Equal(t, "fragment not found", apiErr.Message)
	assert.Contains(t, apiErr.Error(), "fragment not found")
}

func TestFragmentRepository_ListQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/api/fragments", r.URL.Path)
		assert.Equal(t, "milk", q.Get("q"))
		assert.Equal(t, []string{"shop", "home"}, q["tags"])
		assert.Equal(t, "OR", q.Get("tagLogic"))
		assert.Empty(t, q.Get("timeRange"))
		writeEnvelope(w, 200, 1, "ok", []map[string]any{{"id": "a"}, {"id": "b"}})
	}))
	defer srv.Close()

	c := New(srv.URL)
	list, err := c.Fragments().List(context.Background(), ListOptions{Q: "milk", Tags: []string{"shop", "home"}, TagLogic: "OR"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[1].ID)
}

func TestFragmentRepository_UpsertBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/fragments/f%201", r.URL.EscapedPath())

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "x", body["content"])
		assert.Equal(t, []any{}, body["notes"])
		assert.Equal(t, float64(3), body["baseVersion"])
		writeEnvelope(w, 200, 3, "ok", map[string]any{"id": "f 1", "content": "x", "version": 4})
	}))
	defer srv.Close()

	c := New(srv.URL)
	out, err := c.Fragments().Upsert(context.Background(), &fragment.Fragment{ID: "f 1", Content: "x"}, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(4), out.Version)
}

func TestFragmentRepository_CreatePartial(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, 207, 6, "partial", map[string]any{
			"fragment": map[string]any{"id": "n1", "content": "buy milk"},
			"failed":   []map[string]any{{"part": "tag", "index": 1, "value": "x", "error": "boom"}},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	res, err := c.Fragments().Create(context.Background(), CreateInput{Content: "buy milk", Tags: []string{"a", "x"}})
	require.NoError(t, err)
	assert.Equal(t, "n1", res.Fragment.ID)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "tag", res.Failed[0].Part)
}
