// Package httpapi is the scheduler's HTTP surface: the OpenAI-compatible
// inference path, admin endpoints for settings/reservations, and a
// websocket dashboard feed. It assumes an already-authenticated caller —
// identity/session handling is an external front end's job per this
// repository's scope.
package httpapi

import (
	"io"
	"net/http"

	"github.com/fairgate/scheduler/pkg/backend"
	"github.com/fairgate/scheduler/pkg/db"
	"github.com/fairgate/scheduler/pkg/logging"
	"github.com/fairgate/scheduler/pkg/metrics"
	"github.com/fairgate/scheduler/pkg/middleware"
	"github.com/fairgate/scheduler/pkg/routing"
	"github.com/fairgate/scheduler/pkg/scheduler"
)

// Server composes the scheduler facade, database, and metrics collaborators
// behind a single HTTP router, mirroring the teacher's pattern of a facade
// struct owning a *http.ServeMux and a ServeHTTP entry point.
type Server struct {
	log       logging.Logger
	scheduler *scheduler.Scheduler
	database  *db.Database
	exporter  *metrics.Exporter
	dashboard *metrics.Dashboard
	tail      io.ReadWriter

	allowedOrigins []string
	schedulerToken string

	dispatchers *dispatcherCache
	router      *routing.NormalizedServeMux
}

// NewServer builds the HTTP router and registers every route.
func NewServer(
	log logging.Logger,
	sched *scheduler.Scheduler,
	database *db.Database,
	exporter *metrics.Exporter,
	dashboard *metrics.Dashboard,
	tail io.ReadWriter,
	allowedOrigins []string,
	schedulerToken string,
) *Server {
	s := &Server{
		log:            log,
		scheduler:      sched,
		database:       database,
		exporter:       exporter,
		dashboard:      dashboard,
		tail:           tail,
		allowedOrigins: allowedOrigins,
		schedulerToken: schedulerToken,
		router:         routing.NewNormalizedServeMux(),
	}
	s.dispatchers = newDispatcherCache(func(port int32) *backend.Dispatcher {
		return backend.New(logging.WithComponent(log, "dispatcher"), port)
	})
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	s.router.HandleFunc("/v1/chat/completions", s.handleInference)
	s.router.HandleFunc("/v1/completions", s.handleInference)
	s.router.HandleFunc("/v1/embeddings", s.handleInference)
	s.router.HandleFunc("/v1/models", s.handleListModels)

	s.router.HandleFunc("/admin/settings", s.handleSettings)
	s.router.HandleFunc("/admin/reservations", s.handleReservations)
	s.router.HandleFunc("/admin/reservations/", s.handleReservationByID)
	s.router.HandleFunc("/admin/queue", s.handleQueueStatus)
	s.router.HandleFunc("/admin/logs", s.handleLogs)
	s.router.HandleFunc("/admin/models/ingest", s.handleIngest)
	s.router.HandleFunc("/admin/gate/register", s.handleGateRegister)
	s.router.HandleFunc("/admin/ws", func(w http.ResponseWriter, r *http.Request) {
		if !s.requireToken(r) {
			writeJSONError(w, http.StatusUnauthorized, "invalid admin token")
			return
		}
		s.dashboard.ServeHTTP(w, r)
	})
}

// ServeHTTP makes Server an http.Handler, wrapping every route with CORS
// handling the way the teacher wraps its own router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	middleware.CorsMiddleware(s.allowedOrigins, s.router).ServeHTTP(w, r)
}

// requireToken checks the trusted X-Scheduler-Token header an upstream
// authenticating proxy is expected to set. An empty configured token
// disables the check, which is the expected configuration in a deployment
// where an external front end already enforces authentication before
// requests reach this process.
func (s *Server) requireToken(r *http.Request) bool {
	if s.schedulerToken == "" {
		return true
	}
	return r.Header.Get("X-Scheduler-Token") == s.schedulerToken
}
