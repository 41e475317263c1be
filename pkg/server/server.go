// Package server exposes validation over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ormasoftchile/actionspec/pkg/logging"
	"github.com/ormasoftchile/actionspec/pkg/publish"
	"github.com/ormasoftchile/actionspec/pkg/schema"
	"github.com/ormasoftchile/actionspec/pkg/validate"
)

// MaxBodyBytes bounds request documents.
const MaxBodyBytes = 1 << 20

// Validation results used as metric labels.
const (
	ResultValid     = "valid"
	ResultInvalid   = "invalid"
	ResultMalformed = "malformed"
)

// Metrics holds the server's collectors.
type Metrics struct {
	Validations *prometheus.CounterVec
	Duration    prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "actionspec_validations_total",
			Help: "Validated documents by result.",
		}, []string{"result"}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "actionspec_validation_duration_seconds",
			Help:    "Time spent validating one document.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}
	reg.MustRegister(m.Validations, m.Duration)
	return m
}

// Options configures a Server.
type Options struct {
	Validator *validate.Validator
	Publisher publish.Publisher // optional; enables POST /v1/publish
	Logger    *slog.Logger
	Registry  *prometheus.Registry // optional; a private registry is created
}

// Server handles validation requests.
type Server struct {
	validator *validate.Validator
	publisher publish.Publisher
	log       *slog.Logger
	metrics   *Metrics
	gatherer  prometheus.Gatherer
	schema    []byte
}

// ValidateResponse is the body returned by POST /v1/validate.
type ValidateResponse struct {
	Valid    bool                        `json:"valid"`
	Errors   []string                    `json:"errors"`
	Warnings []*validate.ValidationError `json:"warnings,omitempty"`
}

// PublishResponse is the body returned by POST /v1/publish.
type PublishResponse struct {
	CID string `json:"cid"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// New builds a server. The exported JSON Schema is rendered once here.
func New(opts Options) (*Server, error) {
	if opts.Validator == nil {
		opts.Validator = validate.Default()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	doc, err := schema.GenerateJSONSchema(opts.Validator.Engine().Registry())
	if err != nil {
		return nil, err
	}
	return &Server{
		validator: opts.Validator,
		publisher: opts.Publisher,
		log:       opts.Logger,
		metrics:   NewMetrics(opts.Registry),
		gatherer:  opts.Registry,
		schema:    doc,
	}, nil
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.Healthz)
	r.Get("/v1/schema", s.Schema)
	r.Post("/v1/validate", s.Validate)
	if s.publisher != nil {
		r.Post("/v1/publish", s.Publish)
	}
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return r
}

// Healthz handles GET /healthz.
func (s *Server) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("ok\n"))
}

// Schema handles GET /v1/schema.
func (s *Server) Schema(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/schema+json")
	w.Write(s.schema)
}

// Validate handles POST /v1/validate. Invalid documents are a 200 with
// valid=false; only unreadable bodies are a 400.
func (s *Server) Validate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	doc, err := schema.LoadJSON(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		s.metrics.Validations.WithLabelValues(ResultMalformed).Inc()
		s.log.Warn("Validate: invalid request body", "error", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()}, s.log)
		return
	}

	report := s.validator.Validate(doc)
	s.metrics.Duration.Observe(time.Since(start).Seconds())

	verdict := report.Verdict()
	resp := ValidateResponse{Valid: verdict.Valid, Errors: verdict.Errors, Warnings: report.Warnings}
	if resp.Errors == nil {
		resp.Errors = []string{}
	}
	result := ResultValid
	if !verdict.Valid {
		result = ResultInvalid
	}
	s.metrics.Validations.WithLabelValues(result).Inc()
	s.log.Debug("validated document", "result", result, "errors", len(report.Errors), "warnings", len(report.Warnings))
	writeJSON(w, http.StatusOK, resp, s.log)
}

// Publish handles POST /v1/publish.
func (s *Server) Publish(w http.ResponseWriter, r *http.Request) {
	doc, err := schema.LoadJSON(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()}, s.log)
		return
	}
	cid, err := s.publisher.Publish(r.Context(), doc)
	switch {
	case errors.Is(err, publish.ErrInvalidDocument):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()}, s.log)
	case err != nil:
		s.log.Error("Publish failed", "error", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()}, s.log)
	default:
		writeJSON(w, http.StatusOK, PublishResponse{CID: cid}, s.log)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any, log *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("response encode failed", "error", err)
	}
}

// Run serves the handler on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info("server stopped")
	return nil
}
