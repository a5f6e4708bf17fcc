package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newhook/flagtrack/internal/flag"
	"github.com/newhook/flagtrack/internal/store"
	"github.com/newhook/flagtrack/internal/watcher"
)

var testNow = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, backend store.Backend, cfg Config) (*Server, *store.Store) {
	t.Helper()
	st := store.New(backend, store.WithClock(func() time.Time { return testNow }))
	srv, err := NewServer(st, cfg)
	require.NoError(t, err)
	return srv, st
}

func get(t *testing.T, h http.Handler, path string, header ...string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Result()
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func TestIndexAndStatic(t *testing.T) {
	srv, _ := newTestServer(t, store.NewMemory(), Config{CacheTTL: time.Minute})

	resp := get(t, srv, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body(t, resp), "/static/js/app.js")

	resp = get(t, srv, "/static/js/app.js")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "fetch('/flags.json'")

	resp = get(t, srv, "/static/missing.js")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, store.NewMemory(), Config{})

	resp := get(t, srv, "/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body(t, resp))
}

func TestFlagsDocumentMatchesFileFormat(t *testing.T) {
	f := flag.New("abc", "Learn Go", "study 1 hour daily", "2026-06-01", "学习成长", testNow)
	srv, _ := newTestServer(t, store.NewMemory(f), Config{CacheTTL: time.Minute})

	resp := get(t, srv, "/flags.json")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")

	want, err := store.EncodeFlags([]*flag.Flag{f})
	require.NoError(t, err)
	got := body(t, resp)
	assert.Equal(t, string(want), got)
	assert.Contains(t, got, "学习成长")

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal([]byte(got), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "abc", decoded[0]["id"])
}

func TestFlagsDocumentIsCachedUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	srv, st := newTestServer(t, store.NewMemory(), Config{CacheTTL: time.Minute})

	assert.JSONEq(t, "[]", body(t, get(t, srv, "/flags.json")))

	_, err := st.Add(ctx, store.NewFlag{Title: "Swim weekly", TargetDate: "2026-06-01"})
	require.NoError(t, err)
	assert.JSONEq(t, "[]", body(t, get(t, srv, "/flags.json")))

	srv.Invalidate(ctx)
	assert.Contains(t, body(t, get(t, srv, "/flags.json")), "Swim weekly")
}

func TestWatchInvalidatesOnStoreWrite(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := filepath.Join(t.TempDir(), "flags.json")
	backend := store.NewJSONFile(path)
	srv, st := newTestServer(t, backend, Config{CacheTTL: time.Hour})
	require.NoError(t, st.Replace(ctx, nil))

	w, err := watcher.New(watcher.Config{Path: path, DebounceDur: 20 * time.Millisecond})
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()
	require.NoError(t, w.Start())
	go srv.Watch(ctx, w)
	require.Eventually(t, func() bool { return w.Broker().SubscriberCount() == 1 }, time.Second, 10*time.Millisecond)

	assert.JSONEq(t, "[]", body(t, get(t, srv, "/flags.json")))

	_, err = st.Add(ctx, store.NewFlag{Title: "Write a novel", TargetDate: "2026-12-01"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return strings.Contains(body(t, get(t, srv, "/flags.json")), "Write a novel")
	}, 2*time.Second, 20*time.Millisecond)
}

func TestCORS(t *testing.T) {
	srv, _ := newTestServer(t, store.NewMemory(), Config{AllowedOrigins: []string{"http://localhost:3000"}})

	resp := get(t, srv, "/flags.json", "Origin", "http://localhost:3000")
	body(t, resp)
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))

	resp = get(t, srv, "/flags.json", "Origin", "http://evil.example")
	body(t, resp)
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestNoWriteRoutes(t *testing.T) {
	srv, _ := newTestServer(t, store.NewMemory(), Config{})

	req := httptest.NewRequest(http.MethodPost, "/flags.json", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestNewServerRequiresStore(t *testing.T) {
	_, err := NewServer(nil, Config{})
	require.Error(t, err)
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	srv, _ := newTestServer(t, store.NewMemory(), Config{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, "127.0.0.1:0") }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(6 * time.Second):
		require.Fail(t, "server did not shut down")
	}
}
