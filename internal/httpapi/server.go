package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/veteranop/vetrender/core"
	"github.com/veteranop/vetrender/internal/logging"
	"github.com/veteranop/vetrender/internal/observability"
	"github.com/veteranop/vetrender/model"
)

// computationIDHeader lets callers correlate their own request IDs with the
// engine's log lines. Absent the header, a fresh ID is generated.
const computationIDHeader = "X-Computation-Id"

// Server exposes the coverage engine over JSON HTTP. One instance is safe for
// concurrent use; the engine's single-flight guard handles duplicate
// submissions.
type Server struct {
	engine  *core.Engine
	metrics *observability.CoverageCollector
	log     logging.Logger
}

// NewServer wires the API around an engine. metrics may be nil to disable
// request instrumentation.
func NewServer(engine *core.Engine, metrics *observability.CoverageCollector, log logging.Logger) *Server {
	if log == nil {
		log = logging.Noop()
	}
	return &Server{engine: engine, metrics: metrics, log: log}
}

// Handler returns the routed HTTP handler for the API surface.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/v1/coverage", s.instrument("/v1/coverage", http.HandlerFunc(s.handleCoverage)))
	mux.Handle("/healthz", s.instrument("/healthz", http.HandlerFunc(s.handleHealth)))
	return mux
}

// coverageResponse is the wire form of one computed field. TerrainLossDB is
// omitted when the computation ran without terrain.
type coverageResponse struct {
	ComputationID string                  `json:"ComputationID"`
	Config        model.TransmitterConfig `json:"Config"`

	Resolution    int       `json:"Resolution"`
	AxisKm        []float64 `json:"AxisKm"`
	PowerDBm      []float64 `json:"PowerDBm"`
	TerrainLossDB []float64 `json:"TerrainLossDB,omitempty"`

	Degraded bool    `json:"Degraded"`
	EIRPdBm  float64 `json:"EIRPdBm"`
}

type errorResponse struct {
	Error string `json:"Error"`
}

func (s *Server) handleCoverage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "use POST")
		return
	}

	var cfg model.TransmitterConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return
	}

	ctx := r.Context()
	if incoming := r.Header.Get(computationIDHeader); incoming != "" {
		ctx = logging.ContextWithComputationID(ctx, incoming)
	}
	ctx, id := logging.EnsureComputationID(ctx)

	res, err := s.engine.Compute(ctx, cfg)
	if err != nil {
		s.log.Warn(ctx, "coverage request failed",
			logging.String("computation_id", id),
			logging.String("error", err.Error()))
		writeError(w, statusFromError(err), err.Error())
		return
	}

	w.Header().Set(computationIDHeader, id)
	writeJSON(w, http.StatusOK, coverageResponse{
		ComputationID: id,
		Config:        res.Config,
		Resolution:    res.Grid.Resolution,
		AxisKm:        res.Grid.Axis(),
		PowerDBm:      res.PowerDBm,
		TerrainLossDB: res.TerrainLossDB,
		Degraded:      res.Degraded,
		EIRPdBm:       res.EIRPdBm,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusFromError maps engine errors onto HTTP statuses. Elevation provider
// trouble is an upstream failure, not a client one.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidConfig):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrComputationInFlight):
		return http.StatusConflict
	case errors.Is(err, core.ErrElevationProvider):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}

// instrument records per-route request counts and latency.
func (s *Server) instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)
		if s.metrics != nil {
			s.metrics.ObserveHTTP(route, rec.code, time.Since(start))
		}
	})
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}
