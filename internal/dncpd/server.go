package dncpd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Server is dncpd's HTTP control-and-status API, a plain TCP listener on
// the configured api.listen_address (loopback by default) with no
// socket-file/cookie ceremony. It serves status, node/peer listing and
// TLV publish/unpublish; it has no route for applying a config.
type Server struct {
	runtime RuntimeInfo
	metrics *Metrics

	httpServer *http.Server
	ShutdownCh chan struct{}
}

// NewServer builds a Server bound to addr (e.g. "127.0.0.1:8808").
func NewServer(addr string, runtime RuntimeInfo, metrics *Metrics) *Server {
	s := &Server{
		runtime:    runtime,
		metrics:    metrics,
		ShutdownCh: make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/status", s.handleStatus)
	mux.HandleFunc("GET /v1/nodes", s.handleListNodes)
	mux.HandleFunc("GET /v1/peers", s.handleListPeers)
	mux.HandleFunc("POST /v1/publish", s.handlePublish)
	mux.HandleFunc("DELETE /v1/publish", s.handleUnpublish)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.instrument(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

// instrument wraps h with request-count and latency observation, when
// metrics are configured.
func (s *Server) instrument(h http.Handler) http.Handler {
	if s.metrics == nil {
		return h
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		h.ServeHTTP(rec, r)
		elapsed := time.Since(start).Seconds()
		status := fmt.Sprintf("%d", rec.status)
		s.metrics.APIRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		s.metrics.APIRequestDurationSeconds.WithLabelValues(r.Method, r.URL.Path, status).Observe(elapsed)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Start begins serving until the server's listener fails or Stop is called.
func (s *Server) Start() error {
	slog.Info("dncpd: control API listening", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts the server down within ctx's deadline.
func (s *Server) Stop(ctx context.Context) error {
	close(s.ShutdownCh)
	return s.httpServer.Shutdown(ctx)
}
