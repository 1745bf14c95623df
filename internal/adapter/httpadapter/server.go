package httpadapter

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/weather-fusion-service/internal/domain"
	"github.com/couchcryptid/weather-fusion-service/internal/enhance"
)

var validate = validator.New()

// AdvisoryLookup returns the latest report for a location key.
type AdvisoryLookup interface {
	Current(locationKey string) (domain.FusionReport, error)
}

// Server exposes health, readiness, metrics, and advisory lookup endpoints.
type Server struct {
	httpServer *http.Server
	advisories AdvisoryLookup
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and
// /api/v1/advisory routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, advisories AdvisoryLookup, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		advisories: advisories,
		logger:     logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/v1/advisory", s.handleAdvisory)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// advisoryQuery holds query parameters for the advisory endpoint.
type advisoryQuery struct {
	Location string `validate:"required,max=128,printascii"`
}

func (s *Server) handleAdvisory(w http.ResponseWriter, r *http.Request) {
	q := advisoryQuery{Location: r.URL.Query().Get("location")}
	if err := validate.Struct(q); err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid location parameter"})
		return
	}

	report, err := s.advisories.Current(q.Location)
	if err != nil {
		if errors.Is(err, enhance.ErrNotFound) {
			sharedobs.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "no advisory for requested location"})
			return
		}
		s.logger.Error("advisory lookup failed", "error", err, "location", q.Location)
		sharedobs.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to fetch advisory"})
		return
	}

	sharedobs.WriteJSON(w, http.StatusOK, report)
}
