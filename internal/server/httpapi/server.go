package httpapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/chartkeeper/internal/logging"
	"github.com/dmitrijs2005/chartkeeper/internal/server/config"
	"github.com/go-chi/chi/v5"
)

const shutdownTimeout = 10 * time.Second

// Server is the HTTP front of ChartKeeper with graceful shutdown on
// SIGINT/SIGTERM.
type Server struct {
	httpServer *http.Server
	logger     logging.Logger
}

// NewRouter builds the full route tree. Everything under /api requires a
// bearer token except the auth entry endpoints.
func NewRouter(cfg *config.Config, logger logging.Logger, h *Handler) chi.Router {
	router := chi.NewRouter()

	router.Use(RequestLogger(logger))

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ChartKeeper API is running\n"))
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "route not found")
	})

	authenticated := Authenticate([]byte(cfg.SecretKey))

	router.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", h.signup)
		r.Post("/login", h.login)
		r.Post("/forgot-password", h.forgotPassword)
		r.Post("/check-user", h.checkUser)
		r.Post("/verify-answer", h.verifyAnswer)
		r.Post("/reset-password", h.resetPassword)

		r.Group(func(r chi.Router) {
			r.Use(authenticated)
			r.Get("/profile", h.profile)
			r.Put("/profile", h.updateProfile)
		})
	})

	router.Route("/api/projects", func(r chi.Router) {
		r.Use(authenticated)

		r.Post("/", h.createProject)
		r.Get("/", h.listProjects)

		// Registered before /{id} so "folders" is never read as a project id.
		r.Route("/folders", func(r chi.Router) {
			r.Post("/", h.createFolder)
			r.Get("/", h.listFolders)
			r.Get("/{id}/projects", h.folderProjects)
		})

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getProject)
			r.Put("/", h.updateProject)
			r.Delete("/", h.deleteProject)
			r.Get("/preview", h.previewProject)
			r.Post("/duplicate", h.duplicateProject)
			r.Put("/move", h.moveProject)
		})
	})

	return router
}

// New creates an HTTP server listening on the configured address.
func New(cfg *config.Config, logger logging.Logger, h *Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.EndpointAddr,
			Handler:      NewRouter(cfg, logger, h),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		logger: logger,
	}
}

// Run serves until the context is canceled, a termination signal arrives or
// the listener fails, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info(ctx, "http server started", "addr", s.httpServer.Addr)
		err := s.httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		s.logger.Info(ctx, "termination signal received", "signal", sig.String())
	case <-ctx.Done():
		s.logger.Info(ctx, "context canceled")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info(ctx, "shutting down")
	return s.httpServer.Shutdown(shutdownCtx)
}
