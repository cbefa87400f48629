// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

const (
	baseURL = "/ext"

	// MetricsEndpoint serves the prometheus metrics of the process.
	MetricsEndpoint = "/metrics"
	// LivenessEndpoint only reports that the process serves HTTP. Readiness
	// checks are added as a route under /ext.
	LivenessEndpoint = "/liveness"
)

var errInvalidEndpoint = errors.New("endpoint must not be empty")

type HTTPConfig struct {
	ReadTimeout       time.Duration `json:"readTimeout"`
	ReadHeaderTimeout time.Duration `json:"readHeaderTimeout"`
	WriteTimeout      time.Duration `json:"writeTimeout"`
	IdleTimeout       time.Duration `json:"idleTimeout"`
}

// Server maintains the HTTP router
type Server struct {
	// log this server writes to
	log log.Logger

	shutdownTimeout time.Duration

	metrics *serverMetrics

	router *mux.Router

	srv *http.Server

	// Listener used to serve traffic
	listener net.Listener
}

// New returns a server that serves on listener once dispatched. Metrics are
// registered with registerer and served from gatherer.
func New(
	log log.Logger,
	listener net.Listener,
	allowedOrigins []string,
	shutdownTimeout time.Duration,
	registerer prometheus.Registerer,
	gatherer prometheus.Gatherer,
	httpConfig HTTPConfig,
) (*Server, error) {
	m, err := newMetrics(registerer)
	if err != nil {
		return nil, err
	}

	router := mux.NewRouter()
	router.Handle(MetricsEndpoint, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	router.HandleFunc(LivenessEndpoint, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"alive":true}`))
	}).Methods(http.MethodGet)

	httpServer := &http.Server{
		Handler:           wrapHandler(router, allowedOrigins),
		ReadTimeout:       httpConfig.ReadTimeout,
		ReadHeaderTimeout: httpConfig.ReadHeaderTimeout,
		WriteTimeout:      httpConfig.WriteTimeout,
		IdleTimeout:       httpConfig.IdleTimeout,
	}

	log.Info("API created with allowed origins: " + strings.Join(allowedOrigins, ","))

	return &Server{
		log:             log,
		shutdownTimeout: shutdownTimeout,
		metrics:         m,
		router:          router,
		srv:             httpServer,
		listener:        listener,
	}, nil
}

// AddRoute serves handler at /ext/endpoint.
func (s *Server) AddRoute(handler http.Handler, endpoint string) error {
	endpoint = strings.Trim(endpoint, "/")
	if endpoint == "" {
		return errInvalidEndpoint
	}
	url := path.Join(baseURL, endpoint)
	s.log.Info("adding route",
		log.String("url", url),
	)
	s.router.Handle(url, s.metrics.wrapHandler(endpoint, handler))
	return nil
}

// Handler returns the handler the server serves.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Addr is the address the server listens on.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Dispatch starts the API server. It returns nil once the server was shut
// down.
func (s *Server) Dispatch() error {
	err := s.srv.Serve(s.listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	err := s.srv.Shutdown(ctx)
	cancel()

	// If shutdown times out, make sure the server is still shutdown.
	_ = s.srv.Close()
	return err
}

func wrapHandler(handler http.Handler, allowedOrigins []string) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
	}).Handler(handler)
}
