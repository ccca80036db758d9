package api

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sanverite/wildlife-sightings/internal/loader"
	"github.com/sanverite/wildlife-sightings/internal/sighting"
)

// DefaultAddress is used when ServerOptions.Addr is empty.
const DefaultAddress = ":3000"

//go:embed web/index.html
var landingPage []byte

// Source produces the current sighting collection. *loader.Loader is the
// production implementation.
type Source interface {
	Load(ctx context.Context) ([]sighting.Record, error)
}

// ServerOptions configures the HTTP server.
type ServerOptions struct {
	Addr              string
	StaticDir         string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	// Development exposes panic details in 500 responses.
	Development bool
	Logger      *zap.Logger
}

// Server hosts the sightings HTTP API.
type Server struct {
	http   *http.Server
	source Source
	logger *zap.Logger
	opts   ServerOptions
}

// NewServer constructs a new API server reading from source.
// The server does not start listening until Run is called.
func NewServer(source Source, opts ServerOptions) *Server {
	if source == nil {
		panic("api.NewServer: source is nil")
	}
	if opts.Addr == "" {
		opts.Addr = DefaultAddress
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 5 * time.Second
	}
	if opts.ReadHeaderTimeout == 0 {
		opts.ReadHeaderTimeout = 2 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 10 * time.Second
	}
	if opts.IdleTimeout == 0 {
		opts.IdleTimeout = 60 * time.Second
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = 5 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	logger := opts.Logger.Named("api")

	mux := http.NewServeMux()
	s := &Server{
		source: source,
		logger: logger,
		opts:   opts,
	}
	s.http = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.middleware(s.cleanPaths(mux)),
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: opts.ReadHeaderTimeout,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       opts.IdleTimeout,
		ErrorLog:          zap.NewStdLog(logger),
	}

	// Routes
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	for _, rt := range dataRoutes {
		h := s.handleQuery(rt.path, rt.query)
		mux.HandleFunc("GET "+rt.path, h)
		mux.HandleFunc("GET "+rt.path+"/{$}", h)
	}
	if opts.StaticDir != "" {
		mux.HandleFunc("GET /static/", s.handleStatic)
	}
	mux.HandleFunc("/", s.handleNotFound)

	return s
}

// Handler returns the fully wrapped handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.opts.Addr }

// Run listens on the configured address and serves until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, waiting up to ShutdownTimeout
// for in-flight requests. It returns nil after a clean shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("listening", zap.String("addr", ln.Addr().String()))
		if err := s.http.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.ShutdownTimeout)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return err
		}
		s.logger.Info("stopped")
		return nil
	})

	return g.Wait()
}

// handleQuery loads the collection for every request and applies q.
func (s *Server) handleQuery(route string, q query) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := s.source.Load(r.Context())
		if err != nil {
			s.writeRouteError(w, r, route, err)
			return
		}
		writeJSON(w, http.StatusOK, q(records))
	}
}

// writeRouteError maps any load failure to the uniform 500 payload.
// The HTTP status does not depend on the error kind.
func (s *Server) writeRouteError(w http.ResponseWriter, r *http.Request, route string, err error) {
	s.logger.Error("route failed",
		zap.String("route", route),
		zap.String("kind", string(loader.KindOf(err))),
		zap.String("request_id", RequestIDFrom(r.Context())),
		zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, APIError{
		Error:     err.Error(),
		Route:     route,
		Timestamp: timestamp(),
	})
}

// handleIndex serves the landing page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(landingPage)
}

// handleHealthz is a simple liveness endpoint. It does not touch the data file.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: timestamp(),
	})
}

// handleStatic serves regular files below StaticDir. Missing files and
// directories fall through to the JSON 404.
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	rel := strings.TrimPrefix(path.Clean(r.URL.Path), "/static/")
	full := filepath.Join(s.opts.StaticDir, filepath.FromSlash(rel))
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		s.handleNotFound(w, r)
		return
	}
	w.Header().Del("Content-Type")
	http.ServeFile(w, r, full)
}

// handleNotFound answers every unmatched route, whatever the method.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, NotFoundError{
		Error:           "Route not found",
		Message:         "The route " + r.URL.RequestURI() + " does not exist on this server",
		AvailableRoutes: AvailableRoutes(),
	})
}

// cleanPaths answers non-canonical paths (empty segments, dot segments)
// with the JSON 404 instead of the ServeMux redirect.
func (s *Server) cleanPaths(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p := r.URL.Path; p != cleanPath(p) {
			s.handleNotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// cleanPath is path.Clean keeping a trailing slash.
func cleanPath(p string) string {
	if p == "" {
		return p
	}
	c := path.Clean(p)
	if strings.HasSuffix(p, "/") && c != "/" {
		c += "/"
	}
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(v)
}
