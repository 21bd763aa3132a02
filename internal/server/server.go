/**
 * HTTP Transport for the CAPTCHA Solver Worker
 *
 * Maps solve outcomes onto JSON responses:
 * - decode failures       -> 400
 * - preprocess failures   -> 422
 * - no winning candidate  -> 200 with success=false
 * - winner                -> 200 with success=true
 * A structured body is always returned, never a raw fault.
 */

package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	solveerrors "github.com/ameyrk/captcha-solver/internal/errors"
	"github.com/ameyrk/captcha-solver/internal/logging"
	"github.com/ameyrk/captcha-solver/internal/solver"
)

const (
	ServiceName    = "captcha-solver"
	ServiceVersion = "1.0.0"
)

// SolverInterface defines the solve capability the transport depends on
type SolverInterface interface {
	Solve(ctx context.Context, req *solver.Request) (*solver.Result, error)
}

// Server is the HTTP front end of the worker
type Server struct {
	solver        SolverInterface
	logger        *logging.Logger
	httpServer    *http.Server
	maxImageBytes int64
}

// New creates an HTTP server bound to addr
func New(addr string, s SolverInterface, maxImageBytes int64, logger *logging.Logger) *Server {
	srv := &Server{
		solver:        s,
		logger:        logger,
		maxImageBytes: maxImageBytes,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", srv.handleIndex)
	mux.HandleFunc("/health", srv.handleHealth)
	mux.HandleFunc("/solve", srv.handleSolve)

	srv.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return srv
}

// Start begins serving; blocks until the server stops
func (s *Server) Start() error {
	err := s.httpServer.ListenAndServe()
	if stderrors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

type solveRequest struct {
	Image string `json:"image"`
}

type solveResponse struct {
	Success   bool   `json:"success"`
	Text      string `json:"text,omitempty"`
	Support   int    `json:"support,omitempty"`
	Error     string `json:"error,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, solveResponse{
			Success: false,
			Error:   "Method not allowed. POST a JSON body to /solve.",
		})
		return
	}

	requestID := uuid.NewString()

	var req solveRequest
	body := http.MaxBytesReader(w, r.Body, s.maxImageBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		s.logger.Warn("invalid request body", "request_id", requestID, "error", err)
		writeJSON(w, http.StatusBadRequest, solveResponse{
			Success:   false,
			Error:     "Invalid JSON body.",
			RequestID: requestID,
		})
		return
	}

	if req.Image == "" {
		writeJSON(w, http.StatusBadRequest, solveResponse{
			Success:   false,
			Error:     "No image provided. Send JSON with 'image' field.",
			RequestID: requestID,
		})
		return
	}

	result, err := s.solver.Solve(r.Context(), &solver.Request{
		RequestID:   requestID,
		ImageString: req.Image,
	})
	if err != nil {
		status := http.StatusInternalServerError

		var solveErr *solveerrors.SolveError
		if stderrors.As(err, &solveErr) {
			switch solveErr.Code {
			case solveerrors.ErrorDecodeFailed:
				status = http.StatusBadRequest
			case solveerrors.ErrorPreprocessFailed:
				status = http.StatusUnprocessableEntity
			}
		}

		writeJSON(w, status, solveResponse{
			Success:   false,
			Error:     err.Error(),
			RequestID: requestID,
		})
		return
	}

	if !result.Success {
		// Processed cleanly but inconclusive; not a transport error
		writeJSON(w, http.StatusOK, solveResponse{
			Success:   false,
			Error:     "Could not solve CAPTCHA",
			RequestID: requestID,
		})
		return
	}

	writeJSON(w, http.StatusOK, solveResponse{
		Success:   true,
		Text:      result.Text,
		Support:   result.Support,
		RequestID: requestID,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": ServiceName,
		"version": ServiceVersion,
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":        "Captcha Solver",
		"version":     ServiceVersion,
		"description": "A free, self-hosted CAPTCHA solver using Tesseract OCR",
		"endpoints": map[string]string{
			"GET /":       "This documentation",
			"GET /health": "Health check",
			"POST /solve": "Solve CAPTCHA (send JSON with base64 'image')",
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Encode errors at this point can only be connection-level
	_ = json.NewEncoder(w).Encode(body)
}
