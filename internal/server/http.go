package server

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/muurk/midnightbrew/internal/contact"
	"github.com/muurk/midnightbrew/internal/logging"
	"github.com/muurk/midnightbrew/internal/signup"
	"github.com/muurk/midnightbrew/internal/stream"
	"github.com/muurk/midnightbrew/internal/version"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// API routes
const (
	CatalogPath = "/api/v1/catalog"
	PlansPath   = "/api/v1/plans/"
	HealthPath  = "/healthz"
	MetricsPath = "/metrics"
)

// maxBodyBytes bounds JSON request bodies
const maxBodyBytes = 64 << 10

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+CatalogPath, s.handleCatalog)
	mux.HandleFunc("GET "+PlansPath+"{id}", s.handlePlan)
	mux.HandleFunc("POST "+signup.SignupsPath, s.handleSignup)
	mux.HandleFunc("POST "+contact.Path, s.handleContact)
	mux.HandleFunc("GET "+stream.TestimonialsPath, s.handleTestimonials)
	mux.HandleFunc("GET "+HealthPath, s.handleHealth)
	mux.Handle("GET "+MetricsPath, promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
	return s.instrument(mux)
}

// instrument adds the Server header, request logging and HTTP metrics.
// The route label is the matched pattern so path parameters do not
// explode label cardinality.
func (s *Server) instrument(mux *http.ServeMux) http.Handler {
	serverHeader := version.UserAgent(version.Server)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		w.Header().Set("Server", serverHeader)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		_, pattern := mux.Handler(r)
		mux.ServeHTTP(rec, r)

		if pattern == "" {
			pattern = "unmatched"
		}
		elapsed := time.Since(start)
		recordHTTPRequestMetric(pattern, rec.status, elapsed.Seconds())
		logging.LogHTTPRequest(r.RemoteAddr, r.Method, r.URL.Path, rec.status, elapsed)
	})
}

// statusRecorder captures the response status. It stays hijackable so
// WebSocket upgrades pass through.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(status int) {
	if !r.wroteHeader {
		r.status = status
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog)
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	plan, ok := s.catalog.Plan(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Unknown plan %q", id), nil)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": version.Version,
		"streams": s.GetActiveConnections(),
	})
}

// decodeJSON reads a bounded JSON body into v. Unknown fields are
// rejected so client/server drift shows up early.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Debug("Failed to write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, message string, fields map[string]string) {
	writeJSON(w, status, signup.ErrorResponse{Error: message, Fields: fields})
}
