package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	solveerrors "github.com/ameyrk/captcha-solver/internal/errors"
	"github.com/ameyrk/captcha-solver/internal/logging"
	"github.com/ameyrk/captcha-solver/internal/solver"
)

// fakeSolver returns a scripted outcome regardless of input
type fakeSolver struct {
	result *solver.Result
	err    error
}

func (f *fakeSolver) Solve(ctx context.Context, req *solver.Request) (*solver.Result, error) {
	return f.result, f.err
}

func newTestServer(f *fakeSolver) *Server {
	return New("127.0.0.1:0", f, 1<<20, logging.NewLogger("test", "error"))
}

func postSolve(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/solve", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) solveResponse {
	t.Helper()

	var resp solveResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return resp
}

func TestHandleSolveSuccess(t *testing.T) {
	srv := newTestServer(&fakeSolver{result: &solver.Result{
		Success: true,
		Text:    "Qw8rTp",
		Support: 2,
	}})

	rec := postSolve(t, srv, `{"image":"aGVsbG8="}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	resp := decodeResponse(t, rec)
	if !resp.Success || resp.Text != "Qw8rTp" || resp.Support != 2 {
		t.Errorf("response = %+v, want success with Qw8rTp/2", resp)
	}
	if resp.RequestID == "" {
		t.Error("response missing request_id")
	}
}

func TestHandleSolveNoWinner(t *testing.T) {
	srv := newTestServer(&fakeSolver{result: &solver.Result{
		Success: false,
		Err:     solveerrors.NewNoWinnerError("rid", 4),
	}})

	rec := postSolve(t, srv, `{"image":"aGVsbG8="}`)

	// Inconclusive is not a transport error
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	resp := decodeResponse(t, rec)
	if resp.Success {
		t.Error("expected success=false")
	}
	if resp.Error == "" {
		t.Error("expected error message in body")
	}
	if resp.Text != "" {
		t.Errorf("text = %q, want empty", resp.Text)
	}
}

func TestHandleSolveErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "decode failure",
			err:        solveerrors.NewDecodeFailedError("rid", nil),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "preprocess failure",
			err:        solveerrors.NewPreprocessFailedError("rid", nil),
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(&fakeSolver{err: tt.err})

			rec := postSolve(t, srv, `{"image":"aGVsbG8="}`)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			resp := decodeResponse(t, rec)
			if resp.Success {
				t.Error("expected success=false")
			}
			if resp.Error == "" {
				t.Error("expected error message in body")
			}
		})
	}
}

func TestHandleSolveBadRequests(t *testing.T) {
	srv := newTestServer(&fakeSolver{})

	tests := []struct {
		name string
		body string
	}{
		{name: "missing image field", body: `{}`},
		{name: "empty image", body: `{"image":""}`},
		{name: "invalid json", body: `{not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postSolve(t, srv, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestHandleSolveMethodNotAllowed(t *testing.T) {
	srv := newTestServer(&fakeSolver{})

	req := httptest.NewRequest(http.MethodGet, "/solve", nil)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(&fakeSolver{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp["status"] != "ok" || resp["service"] != ServiceName {
		t.Errorf("response = %v, want status ok from %s", resp, ServiceName)
	}
}

func TestHandleIndex(t *testing.T) {
	srv := newTestServer(&fakeSolver{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("endpoints")) {
		t.Error("index response missing endpoint documentation")
	}
}

func TestHandleIndexUnknownPath(t *testing.T) {
	srv := newTestServer(&fakeSolver{})

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
