// Package httpapi serves the retrieval API over HTTP.
//
// Routes:
//
//	POST /v1/retrieve    JSON {query, k?, userId?} -> [{text, source}]
//	GET  /v1/statistics  index statistics
//	GET  /health         same as /v1/statistics
//
// Every other method and path gets a 404 with an empty body.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

const (
	// maxRequestBytes caps the size of a retrieve request body.
	maxRequestBytes = 1 << 20

	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Server is the HTTP front end of a RetrievalService.
type Server struct {
	retrieval driving.RetrievalService
	addr      string
}

// NewServer creates a server that will listen on addr.
func NewServer(retrieval driving.RetrievalService, addr string) *Server {
	return &Server{
		retrieval: retrieval,
		addr:      addr,
	}
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Handler returns the routed, request-logging handler.
func (s *Server) Handler() http.Handler {
	return logRequests(http.HandlerFunc(s.route))
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections on listener until ctx is cancelled, then shuts
// down gracefully. In-flight requests get shutdownTimeout to finish.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(listener)
	}()
	logger.Info("serving on http://%s", listener.Addr())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// route dispatches on exact method and path.
func (s *Server) route(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/v1/retrieve":
		s.handleRetrieve(w, r)
	case r.Method == http.MethodGet && (r.URL.Path == "/v1/statistics" || r.URL.Path == "/health"):
		s.handleStatistics(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleRetrieve answers a similarity query.
// Malformed bodies are reported as 500, like any other failure.
func (s *Server) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	var req domain.RetrieveRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		err = fmt.Errorf("%w: %w", domain.ErrMalformedRequest, err)
		logger.Warn("retrieve: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	results, err := s.retrieval.Retrieve(r.Context(), req)
	if err != nil {
		logger.Error("retrieve %q: %v", req.Query, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.retrieval.Statistics(r.Context()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("write response: %v", err)
	}
}
