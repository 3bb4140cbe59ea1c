// Package server exposes the dashboard over HTTP: login, search, pivot,
// drill-down, details and exports, backed by per-session view state.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/go-faster/errors"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/spektr-org/gccdash/auth"
	"github.com/spektr-org/gccdash/configuration"
	"github.com/spektr-org/gccdash/engine"
	"github.com/spektr-org/gccdash/roster"
)

// Options wires a Server to its collaborators. Registry defaults to a fresh
// Prometheus registry; Logger to the configuration's logger.
type Options struct {
	Configuration *configuration.Configuration
	Store         *roster.Store
	Engine        *engine.Engine
	Authenticator *auth.Authenticator
	Sessions      *auth.Sessions
	Logger        *logrus.Logger
	Registry      *prometheus.Registry
}

type Server struct {
	conf     *configuration.Configuration
	store    *roster.Store
	engine   *engine.Engine
	auth     *auth.Authenticator
	sessions *auth.Sessions
	log      *logrus.Logger
	registry *prometheus.Registry
	metrics  *Metrics
}

// New creates a Server.
func New(opts Options) *Server {
	s := &Server{
		conf:     opts.Configuration,
		store:    opts.Store,
		engine:   opts.Engine,
		auth:     opts.Authenticator,
		sessions: opts.Sessions,
		log:      opts.Logger,
		registry: opts.Registry,
	}
	if s.log == nil {
		s.log = s.conf.Logger()
	}
	if s.sessions == nil {
		s.sessions = auth.NewSessions()
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.metrics = newMetrics(s.registry,
		func() float64 { return float64(s.store.Status().Records) },
		func() float64 { return float64(s.sessions.Len()) },
	)
	return s
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.withLogger, s.withMetrics)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Handle("/login", s.loginLimiter(http.HandlerFunc(s.handleLogin))).Methods(http.MethodPost)
	api.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)
	api.HandleFunc("/session", s.handleSession).Methods(http.MethodGet)

	private := api.NewRoute().Subrouter()
	private.Use(s.requireAuth)
	private.HandleFunc("/dataset", s.handleDataset).Methods(http.MethodGet)
	private.HandleFunc("/dataset/reload", s.handleReload).Methods(http.MethodPost)
	private.HandleFunc("/search", s.handleSearch).Methods(http.MethodPost)
	private.HandleFunc("/pivot/options", s.handleFilterOptions).Methods(http.MethodGet)
	private.HandleFunc("/pivot/toggle", s.handleTogglePivot).Methods(http.MethodPost)
	private.HandleFunc("/pivot/drill", s.handleDrillDown).Methods(http.MethodPost)
	private.HandleFunc("/pivot", s.handlePivot).Methods(http.MethodPost)
	private.HandleFunc("/select", s.handleSelect).Methods(http.MethodPost)
	private.HandleFunc("/details", s.handleDetails).Methods(http.MethodGet)
	private.HandleFunc("/export/record.csv", s.handleExportCSV).Methods(http.MethodGet)
	private.HandleFunc("/export/record.xlsx", s.handleExportXLSX).Methods(http.MethodGet)
	private.HandleFunc("/export/pivot.xlsx", s.handleExportPivot).Methods(http.MethodGet)

	if s.conf.Prometheus.Enabled {
		r.Handle(s.conf.Prometheus.Path, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{DisableCompression: true})).Methods(http.MethodGet)
	}
	if s.conf.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(s.conf.StaticDir))).Methods(http.MethodGet, http.MethodHead)
	}
	return r
}

// Handler is the router behind CORS and gzip.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.Router())
	if len(s.conf.CORS.AllowedOrigins) > 0 {
		h = cors.New(cors.Options{
			AllowedOrigins:   s.conf.CORS.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost},
			AllowedHeaders:   []string{"Content-Type", s.conf.RequestIDHeader},
			ExposedHeaders:   []string{"X-Request-Id", "Content-Disposition"},
			AllowCredentials: true,
		}).Handler(h)
	}
	return gziphandler.GzipHandler(h)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.conf.SocketAddress,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.WithField("addr", srv.Addr).Info("server listening")

	select {
	case err := <-errc:
		return errors.Wrap(err, "listen")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "listen")
	}
	return nil
}

// loginLimiter throttles login attempts per client IP.
func (s *Server) loginLimiter(next http.Handler) http.Handler {
	if !s.conf.RateLimit.Enabled {
		return next
	}
	instance := limiter.New(memory.NewStore(), s.conf.RateLimit.Rate())
	mw := stdlib.NewMiddleware(instance, stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
		s.metrics.logins.WithLabelValues("limited").Inc()
		writeError(w, http.StatusTooManyRequests, "rate_limited", "Too many login attempts. Please wait and try again.")
	}))
	return mw.Handler(next)
}

func (s *Server) current() *roster.Dataset {
	ds, _ := s.store.Current()
	return ds
}
