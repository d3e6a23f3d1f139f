package live

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/zvue/pkg/compile"
	"github.com/vango-dev/zvue/pkg/instrument"
	"github.com/vango-dev/zvue/pkg/reactive"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records patch and client counts on m.
func WithMetrics(m *instrument.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithGatherer sets the registry served on /metrics.
// Default: prometheus.DefaultGatherer
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		if g != nil {
			s.gatherer = g
		}
	}
}

// WithTitle sets the page title.
func WithTitle(title string) Option {
	return func(s *Server) {
		s.title = title
	}
}

// WithShutdownTimeout bounds graceful shutdown.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.shutdownTimeout = d
	}
}

// Server serves one compiled view.
type Server struct {
	view     *compile.View
	vm       *reactive.VM
	hub      *Hub
	router   chi.Router
	logger   *slog.Logger
	metrics  *instrument.Metrics
	gatherer prometheus.Gatherer
	title    string

	shutdownTimeout time.Duration

	// mu serializes every VM read and write.
	mu sync.Mutex
}

// New creates a server for view. Patches produced by the view are broadcast
// to every connected client.
func New(view *compile.View, opts ...Option) *Server {
	s := &Server{
		view:            view,
		vm:              view.VM(),
		logger:          slog.Default().With("component", "live"),
		gatherer:        prometheus.DefaultGatherer,
		title:           "zvue",
		shutdownTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.hub = NewHub(s.logger)
	if s.metrics != nil {
		s.hub.onConnect = s.metrics.ClientConnected
		s.hub.onDisconnect = s.metrics.ClientDisconnected
	}

	view.OnPatch(func(p compile.Patch) {
		s.hub.Broadcast(p)
		if s.metrics != nil {
			s.metrics.RecordPatches(1)
		}
	})

	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handlePage)
	r.Get("/ws", s.hub.HandleWebSocket)
	r.Route("/data", func(r chi.Router) {
		r.Get("/", s.handleSnapshot)
		r.Get("/{key}", s.handleGet)
		r.Put("/{key}", s.handlePut)
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		s.write(w, []byte("ok"))
	})
	return r
}

// requestLogger logs each request at debug level.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// Handler returns the HTTP handler for all routes.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Set writes key through the VM, serialized with every other access.
func (s *Server) Set(key string, val any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vm.Set(key, val)
}

// Apply writes every top-level key of data whose value differs from the
// current snapshot, in sorted key order. It returns the keys written. A
// failed write stops the pass.
func (s *Server) Apply(data map[string]any) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.vm.Snapshot()
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var written []string
	for _, k := range keys {
		if old, ok := current[k]; ok && reflect.DeepEqual(old, data[k]) {
			continue
		}
		if err := s.vm.Set(k, data[k]); err != nil {
			return written, fmt.Errorf("apply %s: %w", k, err)
		}
		written = append(written, k)
	}
	return written, nil
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	s.hub.Close()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("shutdown error", "error", err)
		return err
	}
	s.logger.Info("server shutdown complete")
	return nil
}

func (s *Server) render() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	if err := s.view.Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
