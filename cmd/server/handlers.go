package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/himanishpuri/spectrodft/internal/model"
	"github.com/himanishpuri/spectrodft/pkg/logger"
	"github.com/himanishpuri/spectrodft/pkg/spectrodft"
)

// Server encapsulates the HTTP server and its dependencies
type Server struct {
	service spectrodft.Service
	config  *ServerConfig
	log     spectrodft.Logger
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	DBPath         string
	Workers        int
	AllowedOrigins []string
	LogRequests    bool
}

// NewServer creates a new server instance
func NewServer(service spectrodft.Service, config *ServerConfig) *Server {
	return &Server{
		service: service,
		config:  config,
		log:     logger.GetLogger(),
	}
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("Failed to encode JSON response: %v", err)
	}
}

// respondError writes an error response
func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrAllocation):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// handleRoot handles GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"service": "spectrodft API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"health":      "GET /health",
			"metrics":     "GET /api/health/metrics",
			"runs":        "GET /api/runs",
			"getRun":      "GET /api/runs/{id}",
			"deleteRun":   "DELETE /api/runs/{id}",
			"spectrogram": "POST /api/spectrogram",
		},
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleMetrics handles GET /api/health/metrics
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	runs, err := s.service.ListRuns(0)
	if err != nil {
		s.log.Errorf("Failed to get run count: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve metrics")
		return
	}

	s.respondJSON(w, http.StatusOK, MetricsResponse{
		Status:       "healthy",
		DatabasePath: s.config.DBPath,
		RunCount:     len(runs),
		Workers:      s.config.Workers,
		MaxUpload:    humanize.IBytes(MaxUploadBytes),
	})
}

// handleListRuns handles GET /api/runs
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.respondError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	runs, err := s.service.ListRuns(limit)
	if err != nil {
		s.log.Errorf("Failed to list runs: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve runs")
		return
	}

	dtos := make([]RunDTO, len(runs))
	for i := range runs {
		dtos[i] = toRunDTO(&runs[i])
	}
	s.respondJSON(w, http.StatusOK, ListRunsResponse{
		Runs:  dtos,
		Count: len(dtos),
	})
}

// handleGetRun handles GET /api/runs/{id}
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request, id string) {
	run, err := s.service.GetRun(id)
	if err != nil {
		s.log.Warnf("Run %s: %v", id, err)
		s.respondError(w, statusFor(err), fmt.Sprintf("Run %s not available", id))
		return
	}
	s.respondJSON(w, http.StatusOK, toRunDTO(run))
}

// handleDeleteRun handles DELETE /api/runs/{id}?rm=true
func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request, id string) {
	rm, _ := strconv.ParseBool(r.URL.Query().Get("rm"))

	run, err := s.service.DeleteRun(id, rm)
	if err != nil {
		s.log.Errorf("Failed to delete run %s: %v", id, err)
		s.respondError(w, statusFor(err), fmt.Sprintf("Failed to delete run %s", id))
		return
	}

	s.log.Infof("Deleted run %s (%s)", run.ID, run.OutputPath)
	s.respondJSON(w, http.StatusOK, DeleteRunResponse{
		Message:       "Run deleted successfully",
		ID:            run.ID,
		OutputRemoved: rm,
	})
}

// matrixResponse delays the TSV headers until the first row, so a rejected
// request can still be answered with a JSON error.
type matrixResponse struct {
	w       http.ResponseWriter
	name    string
	started bool
}

func (m *matrixResponse) Write(p []byte) (int, error) {
	if !m.started {
		m.started = true
		h := m.w.Header()
		h.Set("Content-Type", "text/tab-separated-values; charset=utf-8")
		h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", m.name))
		m.w.WriteHeader(http.StatusOK)
	}
	return m.w.Write(p)
}

// handleSpectrogram handles POST /api/spectrogram. The uploaded WAV is
// analysed in memory and the matrix is streamed back row by row.
func (s *Server) handleSpectrogram(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		s.log.Errorf("Failed to parse form: %v", err)
		s.respondError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	req := SpectrogramRequest{
		AnalysisWindow: r.FormValue("analysis_window"),
		DFTWindow:      r.FormValue("dft_window"),
		FrameInterval:  r.FormValue("frame_interval"),
		Window:         r.FormValue("window"),
		SampleRate:     r.FormValue("sample_rate"),
		SampleCount:    r.FormValue("sample_count"),
	}
	params, err := req.Params()
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.log.Errorf("Failed to get audio file: %v", err)
		s.respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	if header.Size >= LargeUploadThreshold {
		s.log.Warnf("Large upload received: %s (%s)", header.Filename, humanize.IBytes(uint64(header.Size)))
	}

	name := strings.TrimSuffix(header.Filename, ".wav") + ".txt"
	out := &matrixResponse{w: w, name: name}

	run, err := s.service.Stream(ctx, file, params, out)
	if err != nil {
		if out.started {
			s.log.Errorf("Spectrogram of %s aborted mid-stream: %v", header.Filename, err)
			return
		}
		s.log.Warnf("Spectrogram of %s rejected: %v", header.Filename, err)
		s.respondError(w, statusFor(err), err.Error())
		return
	}
	if !out.started {
		// no frames: an empty matrix
		out.Write(nil)
	}

	s.log.Infof("Streamed %s: %d frames × %d bins in %v", header.Filename, run.Frames, run.Bins, run.Elapsed)
}

// handleRuns routes requests to /api/runs
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.handleListRuns(w, r)
}

// handleRun routes requests to /api/runs/{id}
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/runs/")
	if id == "" || strings.Contains(id, "/") {
		s.respondError(w, http.StatusBadRequest, "Run ID required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGetRun(w, r, id)
	case http.MethodDelete:
		s.handleDeleteRun(w, r, id)
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleSpectrogramRoute routes requests to /api/spectrogram
func (s *Server) handleSpectrogramRoute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.handleSpectrogram(w, r)
}
