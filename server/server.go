/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package server exposes the indicator service over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rulego/indicators/indicator"
	"github.com/rulego/indicators/logger"
)

const (
	maxBodyBytes    = 32 << 20
	shutdownTimeout = 10 * time.Second
)

// Server routes HTTP requests to an indicator.Service.
type Server struct {
	router   *chi.Mux
	svc      *indicator.Service
	logger   logger.Logger
	gatherer prometheus.Gatherer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Server) {
		s.logger = log
	}
}

// WithGatherer sets the registry served on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// New creates a Server with all routes mounted.
func New(svc *indicator.Service, opts ...Option) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		svc:      svc,
		gatherer: prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.GetDefault()
	}
	s.logger = s.logger.With("component", "http")
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/indicators", func(r chi.Router) {
		r.Get("/", s.handleListIndicators)
		r.Post("/", s.handleCreateIndicator)
		r.Post("/validate-formula", s.handleValidateFormula)
		r.Post("/preview", s.handlePreview)
		r.Post("/compute/{surveyID}", s.handleCompute)
		r.Get("/{id}", s.handleGetIndicator)
		r.Patch("/{id}", s.handleUpdateIndicator)
		r.Delete("/{id}", s.handleDeleteIndicator)
	})
	r.Route("/surveys", func(r chi.Router) {
		r.Get("/", s.handleListSurveys)
		r.Post("/", s.handleCreateSurvey)
		r.Get("/{id}", s.handleGetSurvey)
		r.Get("/{id}/fields", s.handleSurveyFields)
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.With("request_id", middleware.GetReqID(r.Context())).
			Info("%s %s %d %s", r.Method, r.URL.Path, ww.Status(), time.Since(start))
	})
}
