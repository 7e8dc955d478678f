package services

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBundle(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "assets"), 0o755))
	files := map[string]string{
		"index.html":            "<!doctype html><div id=\"root\"></div>",
		"assets/index-a1b2.js":  "console.log('app')",
		"assets/index-c3d4.css": "body{margin:0}",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestStaticServerRoutes(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("backend:" + r.URL.Path))
	}))
	defer backend.Close()

	server, err := NewStaticServer(StaticOptions{Dir: writeBundle(t), APIProxy: backend.URL})
	require.NoError(t, err)

	srv := httptest.NewServer(server.SetupRoutes())
	defer srv.Close()

	tests := []struct {
		name     string
		path     string
		status   int
		contains string
	}{
		{name: "root", path: "/", status: http.StatusOK, contains: `id="root"`},
		{name: "asset", path: "/assets/index-a1b2.js", status: http.StatusOK, contains: "console.log"},
		{name: "client route falls back to index", path: "/dashboard/agents", status: http.StatusOK, contains: `id="root"`},
		{name: "missing asset is 404", path: "/assets/missing.js", status: http.StatusNotFound},
		{name: "health", path: "/health", status: http.StatusOK, contains: `"status":"ok"`},
		{name: "api proxied", path: "/api/agent-config", status: http.StatusOK, contains: "backend:/api/agent-config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := get(t, srv.URL+tt.path)
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.contains != "" {
				assert.Contains(t, body, tt.contains)
			}
		})
	}
}

func TestNewStaticServerValidation(t *testing.T) {
	_, err := NewStaticServer(StaticOptions{Dir: filepath.Join(t.TempDir(), "nope")})
	assert.Error(t, err)

	_, err = NewStaticServer(StaticOptions{Dir: t.TempDir(), APIProxy: "localhost"})
	assert.Error(t, err)
}

func TestStaticServerStopsWithContext(t *testing.T) {
	server, err := NewStaticServer(StaticOptions{Dir: writeBundle(t), Port: "0"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after the context was cancelled")
	}
}

func TestSmokeDir(t *testing.T) {
	report, err := SmokeDir(context.Background(), writeBundle(t))
	require.NoError(t, err)

	require.Len(t, report.Checks, 4)
	assert.True(t, report.OK())
	assert.Equal(t, "/assets/index-a1b2.js", report.Checks[2].Path)
	assert.Equal(t, "/assets/index-c3d4.css", report.Checks[3].Path)
}

func TestSmokeDirWithoutIndex(t *testing.T) {
	_, err := SmokeDir(context.Background(), t.TempDir())
	assert.Error(t, err)
}

func TestSmokeFlagsNonHTMLRoot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	report := Smoke(context.Background(), srv.Client(), srv.URL, []string{"/"})
	assert.False(t, report.OK())
	assert.Equal(t, "root is not served as HTML", report.Checks[0].Error)
}
