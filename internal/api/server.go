// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/yomira-directory/internal/core/company"
	"github.com/taibuivan/yomira-directory/internal/core/media"
	"github.com/taibuivan/yomira-directory/internal/core/tag"
	"github.com/taibuivan/yomira-directory/internal/core/taxonomy"
	"github.com/taibuivan/yomira-directory/internal/platform/config"
	"github.com/taibuivan/yomira-directory/internal/platform/constants"
	"github.com/taibuivan/yomira-directory/internal/platform/middleware"
	requestutil "github.com/taibuivan/yomira-directory/internal/platform/request"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
type Handlers struct {
	// Liveness is the /health handler; always 200 while the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler; 200 only when every dependency answers.
	Readiness http.HandlerFunc

	// Uploads serves stored files below the public prefix. The prefix is stripped.
	Uploads http.Handler

	Media    *media.Handler
	Taxonomy *taxonomy.Handler
	Tag      *tag.Handler
	Company  *company.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(requestTimeout)
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Authenticate(verifier))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Stored Files
	if h.Uploads != nil {
		prefix := cfg.Storage().PublicPrefix
		r.Handle(prefix+"/*", http.StripPrefix(prefix, h.Uploads))
	}

	// # Application API
	// Domain-specific route groups mounted under versioned prefix.
	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/media", h.Media.Routes())
		api.Mount("/taxonomies", h.Taxonomy.Routes())
		api.Mount("/tags", h.Tag.Routes())
		api.Mount("/companies", h.Company.Routes())
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// requestTimeout applies [constants.UploadRequestTimeout] to multipart bodies
// and [constants.GlobalRequestTimeout] to everything else.
func requestTimeout(next http.Handler) http.Handler {
	regular := chimw.Timeout(constants.GlobalRequestTimeout)(next)
	upload := chimw.Timeout(constants.UploadRequestTimeout)(next)

	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if requestutil.IsMultipart(request) {
			upload.ServeHTTP(writer, request)
			return
		}
		regular.ServeHTTP(writer, request)
	})
}

// Handler exposes the root router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
