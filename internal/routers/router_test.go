package routers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/creasty/defaults"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/haierkeys/murverse-service/internal/app"
	"github.com/haierkeys/murverse-service/internal/dao"
	"github.com/haierkeys/murverse-service/pkg/client"
	"github.com/haierkeys/murverse-service/pkg/fragment"
	"github.com/haierkeys/murverse-service/pkg/store"
	"github.com/haierkeys/murverse-service/pkg/validator"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zaptest.NewLogger(t)

	cfg := &app.AppConfig{}
	require.NoError(t, defaults.Set(cfg))
	cfg.Security.AuthTokenKey = "router-test-secret"
	cfg.Database.Path = ":memory:"
	cfg.Database.MaxOpenConns = 1
	cfg.Database.MaxIdleConns = 1
	cfg.User.AdminUIDs = []int64{1}

	db, err := dao.NewDBEngine(cfg.DatabaseConfig(), logger)
	require.NoError(t, err)

	a, err := app.NewApp(cfg, logger, db)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = a.Shutdown(context.Background())
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	uni, err := validator.Register()
	require.NoError(t, err)

	srv := httptest.NewServer(NewRouter(a, uni))
	t.Cleanup(srv.Close)
	return srv
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func call(t *testing.T, srv *httptest.Server, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, srv.URL+path, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	_ = json.NewDecoder(resp.Body).Decode(&env)
	return resp.StatusCode, env
}

func register(t *testing.T, srv *httptest.Server, name string) string {
	t.Helper()
	status, env := call(t, srv, http.MethodPost, "/api/user/register", "", map[string]string{
		"email":           name + "@example.com",
		"username":        name,
		"password":        "secret123",
		"confirmPassword": "secret123",
	})
	require.Equal(t, http.StatusOK, status, env.Message)
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func TestRouter_BuyMilkThroughClient(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "alice")

	ctx := context.Background()
	c := client.New(srv.URL, client.WithTokenSource(client.NewPasswordTokenSource(ctx, srv.URL, "alice", "secret123")))
	repo := c.Fragments()

	res, err := repo.Create(ctx, client.CreateInput{
		Content: "buy milk",
		Tags:    []string{"errand"},
		Notes:   []client.NoteInput{{Title: "where", Value: "corner shop"}},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Failed)
	id := res.Fragment.ID

	_, err = repo.Create(ctx, client.CreateInput{Content: "walk the dog", Tags: []string{"home"}})
	require.NoError(t, err)

	found, err := repo.List(ctx, client.ListOptions{Q: "milk"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, id, found[0].ID)

	found, err = repo.List(ctx, client.ListOptions{Q: "corner", Scopes: []string{"note"}})
	require.NoError(t, err)
	require.Len(t, found, 1)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	tags, err := repo.AddTag(ctx, id, "Errand")
	assert.Nil(t, tags)
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)

	stats, err := repo.Tags(ctx)
	require.NoError(t, err)
	assert.Len(t, stats, 2)
}

func TestRouter_OwnershipAndAuth(t *testing.T) {
	srv := newTestServer(t)
	alice := register(t, srv, "alice")
	bob := register(t, srv, "bobby")

	status, _ := call(t, srv, http.MethodGet, "/api/fragments", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env := call(t, srv, http.MethodPost, "/api/fragments", alice, map[string]any{
		"content": "secret plan",
		"notes":   []map[string]string{{"title": "step 1"}},
	})
	require.Equal(t, http.StatusOK, status, env.Message)
	var created struct {
		Fragment struct {
			ID    string `json:"id"`
			Notes []struct {
				ID string `json:"id"`
			} `json:"notes"`
		} `json:"fragment"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	id := created.Fragment.ID
	noteID := created.Fragment.Notes[0].ID

	status, _ = call(t, srv, http.MethodPatch, "/api/fragments/"+id+"/notes", bob, map[string]any{"noteId": noteID, "title": "pwned"})
	assert.Equal(t, http.StatusNotFound, status)

	status, env = call(t, srv, http.MethodGet, "/api/fragments/"+id, alice, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), "step 1")
	assert.NotContains(t, string(env.Data), "pwned")

	status, _ = call(t, srv, http.MethodPost, "/api/fragments", alice, map[string]any{"content": "  "})
	assert.Equal(t, http.StatusBadRequest, status)

	// 第一个注册的用户 uid 为 1，是管理员
	status, _ = call(t, srv, http.MethodGet, "/api/admin/backups", bob, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = call(t, srv, http.MethodGet, "/api/admin/backups", alice, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestRouter_BuyMilkScenario(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "carol")
	ctx := context.Background()
	repo := client.New(srv.URL, client.WithAPIKey(token)).Fragments()

	res, err := repo.Create(ctx, client.CreateInput{Content: "buy milk", Tags: []string{"errand"}})
	require.NoError(t, err)
	id := res.Fragment.ID

	status, env := call(t, srv, http.MethodGet, "/api/fragments", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"tags":["errand"]`)
	assert.Contains(t, string(env.Data), `"notes":[]`)

	_, err = repo.AddNote(ctx, id, client.NoteInput{Value: "2% milk"})
	require.NoError(t, err)
	f, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, f.Notes, 1)

	_, err = repo.AddTag(ctx, id, "home")
	require.NoError(t, err)
	f, err = repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"errand", "home"}, f.Tags)

	tags, err := repo.RemoveTag(ctx, id, "errand")
	require.NoError(t, err)
	assert.Equal(t, []string{"home"}, tags)
}

func TestRouter_StoreOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "dave")
	ctx := context.Background()
	repo := client.New(srv.URL, client.WithAPIKey(token)).Fragments()

	_, err := repo.Create(ctx, client.CreateInput{Content: "walk the dog", Tags: []string{"home"}})
	require.NoError(t, err)

	s := store.New("dave", repo)
	require.NoError(t, s.Load(ctx))
	snap := s.Snapshot()
	require.Len(t, snap.Fragments, 1)
	assert.Equal(t, store.ProvenanceNetwork, snap.Provenance)
	id := snap.Fragments[0].ID

	res, err := s.AddTagToFragment(ctx, id, "Evening")
	require.NoError(t, err)
	require.True(t, res.OK())

	added, res, err := s.AddFragment(ctx, &fragment.Fragment{Content: "call mom"})
	require.NoError(t, err)
	require.True(t, res.OK())

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"home", "Evening"}, got.Tags)

	got, err = repo.Get(ctx, added.ID)
	require.NoError(t, err)
	assert.Equal(t, "call mom", got.Content)
}

func TestRouter_RemoveTagWithSlash(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "erin")
	ctx := context.Background()
	repo := client.New(srv.URL, client.WithAPIKey(token)).Fragments()

	res, err := repo.Create(ctx, client.CreateInput{Content: "file taxes", Tags: []string{"work/urgent", "home"}})
	require.NoError(t, err)
	id := res.Fragment.ID

	tags, err := repo.RemoveTag(ctx, id, "work/urgent")
	require.NoError(t, err)
	assert.Equal(t, []string{"home"}, tags)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"home"}, got.Tags)
}
