// Package api serves experiment runs over HTTP.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"math/bits"
	"net/http"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"phaseshift/adapters/chart"
	"phaseshift/app"
	"phaseshift/domain/core"
	"phaseshift/domain/experiment"
	"phaseshift/internal"
	"phaseshift/internal/config"
	"phaseshift/internal/errors"
)

// MaxSamples caps cycles * experiments * num_integers for one request
const MaxSamples = 10_000_000

// Server runs experiments on demand and keeps finished runs in memory
type Server struct {
	router   *chi.Mux
	service  *app.ExperimentService
	defaults config.RunConfig
	logger   *internal.Logger

	mu   sync.RWMutex
	runs map[core.RunID]*experiment.Result
}

// NewServer creates a server. Request bodies are overlaid on defaults.
func NewServer(service *app.ExperimentService, defaults config.RunConfig, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.NewDefaultLogger()
	}
	s := &Server{
		router:   chi.NewRouter(),
		service:  service,
		defaults: defaults,
		logger:   logger.With("API"),
		runs:     make(map[core.RunID]*experiment.Result),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Route("/api/runs", func(r chi.Router) {
		r.Get("/", s.handleListRuns)
		r.Post("/", s.handleCreateRun)
		r.Get("/{id}", s.handleGetRun)
		r.Get("/{id}/histogram", s.handleHistogram)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "runs": s.count()})
}

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	rc := s.defaults
	if r.Body != nil && r.ContentLength != 0 {
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&rc); err != nil {
			s.writeError(w, errors.WithCode(errors.CodeParseError, errors.Wrap(err, "decoding run request")))
			return
		}
	}
	if err := rc.Validate(); err != nil {
		s.writeError(w, err)
		return
	}
	settings, err := rc.Settings()
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !withinSampleLimit(settings) {
		s.writeError(w, errors.ValidationError(fmt.Sprintf(
			"run would emit %d x %d x %d integers, limit is %d",
			settings.Cycles, settings.Experiments, settings.Layout.NumIntegers, MaxSamples)))
		return
	}

	result, err := s.service.Run(r.Context(), settings, "")
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.mu.Lock()
	s.runs[result.RunID] = result
	s.mu.Unlock()

	s.logger.Info("Stored run %s (%s)", result.RunID, result.Expression)
	writeJSON(w, http.StatusCreated, result)
}

// withinSampleLimit reports whether cycles * experiments * num_integers <= MaxSamples
func withinSampleLimit(settings experiment.Settings) bool {
	total := uint64(1)
	for _, factor := range []int{settings.Cycles, settings.Experiments, settings.Layout.NumIntegers} {
		if factor < 0 {
			return false
		}
		hi, lo := bits.Mul64(total, uint64(factor))
		if hi != 0 || lo > MaxSamples {
			return false
		}
		total = lo
	}
	return true
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.runs))
	for id := range s.runs {
		ids = append(ids, id.String())
	}
	s.mu.RUnlock()

	// v7 IDs sort by creation time
	sort.Strings(ids)
	writeJSON(w, http.StatusOK, map[string]interface{}{"runs": ids})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	result, err := s.lookup(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHistogram(w http.ResponseWriter, r *http.Request) {
	result, err := s.lookup(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := chart.WriteHTML(w, result); err != nil {
		s.logger.Error("Rendering histogram for %s: %v", result.RunID, err)
	}
}

func (s *Server) lookup(raw string) (*experiment.Result, error) {
	id, err := core.ParseRunID(raw)
	if err != nil {
		return nil, errors.WithCode(errors.CodeNotFound, err)
	}
	s.mu.RLock()
	result, ok := s.runs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.NotFound(fmt.Sprintf("run %s", id))
	}
	return result, nil
}

func (s *Server) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}

// statusClientClosedRequest is the non-standard status for requests the client abandoned
const statusClientClosedRequest = 499

// StatusFor maps an error code to the HTTP status returned for it
func StatusFor(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest
	}
	switch errors.GetCode(err) {
	case errors.CodeValidationError, errors.CodeConfigInvalid, errors.CodeParseError, errors.CodeDimensionError:
		return http.StatusBadRequest
	case errors.CodeNotFound, errors.CodeIndexOutOfRange:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed: %v", err)
	}
	writeJSON(w, status, map[string]interface{}{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
