// Package httpapi is the thin JSON HTTP surface over the solver core: it
// loads vehicles and track meshes, runs solutions/sweeps/competitions, and
// persists the results via internal/store. Grounded on the teacher's
// internal/api server: a stored *http.ServeMux, a logging middleware, and
// a uniform JSON error helper.
package httpapi

import (
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/fsae-sim/laptimesim/internal/config"
	"github.com/fsae-sim/laptimesim/internal/httputil"
	"github.com/fsae-sim/laptimesim/internal/store"
	"github.com/fsae-sim/laptimesim/internal/version"
)

// Server wires the store and solver config into HTTP handlers.
type Server struct {
	db       *store.DB
	settings *config.SolverSettings
	mux      *http.ServeMux
}

// NewServer constructs a Server. settings may be nil, in which case every
// handler uses config.EmptySolverSettings defaults.
func NewServer(db *store.DB, settings *config.SolverSettings) *Server {
	if settings == nil {
		settings = config.EmptySolverSettings()
	}
	return &Server{db: db, settings: settings}
}

// ServeMux returns the Server's handler mux, building and caching it on
// first call so callers may register additional routes (admin, metrics)
// before Start.
func (s *Server) ServeMux() *http.ServeMux {
	if s.mux != nil {
		return s.mux
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/vehicles", s.handleVehicles)
	mux.HandleFunc("/api/vehicles/", s.handleVehicleByID)
	mux.HandleFunc("/api/track-meshes", s.handleTrackMeshes)
	mux.HandleFunc("/api/track-meshes/", s.handleTrackMeshByID)
	mux.HandleFunc("/api/solutions", s.handleSolutions)
	mux.HandleFunc("/api/solutions/", s.handleSolutionByID)
	mux.HandleFunc("/api/sweeps", s.handleSweeps)
	mux.HandleFunc("/api/sweeps/", s.handleSweepByID)
	mux.HandleFunc("/api/competitions", s.handleCompetitions)
	mux.HandleFunc("/api/reports/plot.png", s.handlePlotReport)
	mux.HandleFunc("/api/reports/gg.png", s.handleGGReport)
	mux.HandleFunc("/api/reports/dashboard.html", s.handleDashboardReport)
	mux.HandleFunc("/api/version", handleVersion)
	s.mux = mux
	return mux
}

// handleVersion reports the build identity baked in at link time, so an
// engineer hitting a deployed lapsimd can confirm which commit produced a
// given lap result without shell access to the host.
func handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, version.Current())
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs method, path, status and duration for every request.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)

		portPrefix := ""
		if host := r.Host; host != "" {
			if _, p, err := net.SplitHostPort(host); err == nil {
				portPrefix = ":" + p
			}
		}
		log.Printf("[%d] %s %s%s %vms", lrw.statusCode, r.Method, portPrefix, r.RequestURI,
			float64(time.Since(start).Nanoseconds())/1e6)
	})
}

// Start launches the HTTP server and blocks until the server fails,
// returning ListenAndServe's error.
func (s *Server) Start(listen string) error {
	server := &http.Server{
		Addr:    listen,
		Handler: LoggingMiddleware(s.ServeMux()),
	}
	log.Printf("lap-time solver API listening on %s", listen)
	return server.ListenAndServe()
}

func pathID(prefix, path string) (string, error) {
	id := path[len(prefix):]
	for len(id) > 0 && id[0] == '/' {
		id = id[1:]
	}
	if id == "" {
		return "", fmt.Errorf("missing id in path %q", path)
	}
	return id, nil
}

func queryLimit(r *http.Request, def int) int {
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
