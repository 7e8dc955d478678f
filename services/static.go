package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type StaticOptions struct {
	Dir  string
	Port string
	// APIProxy forwards /api/* to the backend, as the vite dev server does
	APIProxy string
}

// StaticServer serves a built front-end bundle
type StaticServer struct {
	opts  StaticOptions
	files http.Handler
	proxy *httputil.ReverseProxy
}

// NewStaticServer creates a new static server instance
func NewStaticServer(opts StaticOptions) (*StaticServer, error) {
	info, err := os.Stat(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open static dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", opts.Dir)
	}

	s := &StaticServer{
		opts:  opts,
		files: http.FileServer(http.Dir(opts.Dir)),
	}

	if opts.APIProxy != "" {
		target, err := url.Parse(opts.APIProxy)
		if err != nil || target.Scheme == "" || target.Host == "" {
			return nil, fmt.Errorf("invalid api proxy URL %q", opts.APIProxy)
		}
		s.proxy = httputil.NewSingleHostReverseProxy(target)
		s.proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
			slog.Error("API proxy error", "error", err, "path", r.URL.Path)
			http.Error(w, "Bad gateway", http.StatusBadGateway)
		}
	}
	return s, nil
}

// SetupRoutes configures all HTTP routes
func (s *StaticServer) SetupRoutes() *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.healthHandler)

	if s.proxy != nil {
		r.Mount("/api", s.proxy)
	}

	r.Get("/*", s.staticHandler)
	r.Head("/*", s.staticHandler)

	return r
}

// Start serves until ctx is done, then shuts down gracefully
func (s *StaticServer) Start(ctx context.Context) error {
	port := s.opts.Port
	if port == "" {
		port = "4173"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: s.SetupRoutes(),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting static server", "port", port, "dir", s.opts.Dir, "api_proxy", s.opts.APIProxy)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("static server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down static server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("static server forced to shutdown: %w", err)
	}

	slog.Info("Static server exited")
	return nil
}

func (s *StaticServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if _, err := os.Stat(filepath.Join(s.opts.Dir, "index.html")); err != nil {
		status = "degraded"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"` + status + `"}`))
}

// staticHandler serves files from the bundle and falls back to index.html for
// client-side routes. Missing files with an extension stay 404.
func (s *StaticServer) staticHandler(w http.ResponseWriter, r *http.Request) {
	name := path.Clean("/" + r.URL.Path)

	f, err := http.Dir(s.opts.Dir).Open(name)
	if err == nil {
		f.Close()
		s.files.ServeHTTP(w, r)
		return
	}
	if path.Ext(name) != "" {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, filepath.Join(s.opts.Dir, "index.html"))
}

type SmokeCheck struct {
	Path        string `json:"path"`
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Bytes       int    `json:"bytes"`
	Error       string `json:"error,omitempty"`
}

func (c SmokeCheck) OK() bool {
	return c.Error == "" && c.Status == http.StatusOK
}

type SmokeReport struct {
	BaseURL string       `json:"base_url"`
	Checks  []SmokeCheck `json:"checks"`
}

func (r *SmokeReport) OK() bool {
	for _, c := range r.Checks {
		if !c.OK() {
			return false
		}
	}
	return len(r.Checks) > 0
}

// Smoke GETs every path and records the outcome. The root must be HTML.
func Smoke(ctx context.Context, client *http.Client, baseURL string, paths []string) *SmokeReport {
	report := &SmokeReport{BaseURL: baseURL}
	base := strings.TrimRight(baseURL, "/")

	for _, p := range paths {
		check := SmokeCheck{Path: p}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+p, nil)
		if err != nil {
			check.Error = err.Error()
			report.Checks = append(report.Checks, check)
			continue
		}

		resp, err := client.Do(req)
		if err != nil {
			check.Error = err.Error()
			report.Checks = append(report.Checks, check)
			continue
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		check.Status = resp.StatusCode
		check.ContentType = resp.Header.Get("Content-Type")
		check.Bytes = len(body)
		if p == "/" && !strings.HasPrefix(check.ContentType, "text/html") {
			check.Error = "root is not served as HTML"
		}
		report.Checks = append(report.Checks, check)
	}
	return report
}

// SmokeDir serves dir on an ephemeral local port and smoke-tests the root,
// the health endpoint and the first js and css assets of the bundle
func SmokeDir(ctx context.Context, dir string) (*SmokeReport, error) {
	if _, err := os.Stat(filepath.Join(dir, "index.html")); err != nil {
		return nil, fmt.Errorf("bundle has no index.html: %w", err)
	}

	server, err := NewStaticServer(StaticOptions{Dir: dir})
	if err != nil {
		return nil, err
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %w", err)
	}
	srv := &http.Server{Handler: server.SetupRoutes()}
	go srv.Serve(ln)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	paths := append([]string{"/", "/health"}, bundleAssets(dir)...)
	client := &http.Client{Timeout: 10 * time.Second}
	return Smoke(ctx, client, "http://"+ln.Addr().String(), paths), nil
}

// bundleAssets returns the first .js and .css file under assets/
func bundleAssets(dir string) []string {
	entries, err := os.ReadDir(filepath.Join(dir, "assets"))
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var out []string
	for _, ext := range []string{".js", ".css"} {
		for _, n := range names {
			if filepath.Ext(n) == ext {
				out = append(out, "/assets/"+n)
				break
			}
		}
	}
	return out
}
