// Package api serves the analysis report over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/growthlens/internal/domain/types"
	"github.com/okian/growthlens/pkg/logger"
	"github.com/okian/growthlens/pkg/metrics"
)

// ReportProvider supplies the report the API serves.
type ReportProvider interface {
	Report(ctx context.Context) (types.Report, error)
}

// StaticReport is a ReportProvider for a report computed once at startup.
type StaticReport types.Report

// Report returns the stored report.
func (s StaticReport) Report(context.Context) (types.Report, error) {
	return types.Report(s), nil
}

// Server wires HTTP routes for the report API.
type Server struct {
	healthHandler *HealthHandler
	reportHandler *ReportHandler
	logger        logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithLogger sets a custom logger for request failures.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(provider ReportProvider, opts ...Option) *Server {
	s := &Server{logger: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler(provider)
	s.reportHandler = NewReportHandler(provider, s.logger)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /report", MetricsMiddleware(s.reportHandler.HandleReport, "report"))
	mux.HandleFunc("GET /report/{group}", MetricsMiddleware(s.reportHandler.HandleGroup, "report_group"))
	mux.Handle("GET /metrics", metrics.Handler())
}

// Handler returns a mux with every route registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return mux
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// statusFor maps API error kinds to a status and response code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrGroupNotFound):
		return http.StatusNotFound, "not_found"
	default:
		return http.StatusServiceUnavailable, "unavailable"
	}
}

// parseTop reads the optional top query parameter. Zero means no limit.
func parseTop(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("top")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: top must be a positive integer", ErrBadRequest)
	}
	return n, nil
}

// limitTags cuts the tag ranking of g to top rows.
func limitTags(g types.GroupReport, top int) types.GroupReport {
	if top > 0 && len(g.Tags) > top {
		g.Tags = g.Tags[:top]
	}
	return g
}
