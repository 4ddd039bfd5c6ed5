// Package server is the composition root: it wires the database,
// services, handlers, and middleware together and owns the HTTP lifecycle.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/manterx/codesnip/internal/auth"
	"github.com/manterx/codesnip/internal/config"
	"github.com/manterx/codesnip/internal/executor"
	"github.com/manterx/codesnip/internal/handler"
	"github.com/manterx/codesnip/internal/middleware"
	sqliteRepo "github.com/manterx/codesnip/internal/repository/sqlite"
	"github.com/manterx/codesnip/internal/service"
)

// Server owns the router, the database connection, and (optionally) the
// code execution sandbox. Both resources are closed during shutdown.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
	exec   executor.Executor
}

// New assembles the dependency chain: database, auth utilities, services,
// handlers, routes. exec may be nil; the run endpoint then responds 404.
func New(cfg *config.Config, exec executor.Executor, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
		exec:   exec,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes wires middleware, services, handlers, and the route table.
//
// Route overview:
//
//	POST   /api/auth/register            create account, sign in
//	POST   /api/auth/login               password sign in
//	POST   /api/auth/logout              clear session cookie
//	GET    /api/auth/github              redirect to GitHub OAuth
//	GET    /api/auth/github/callback     complete GitHub OAuth
//	GET    /api/auth/me                  current user            (auth)
//	GET    /api/snippets                 list snippets
//	GET    /api/snippets/{id}            get snippet
//	POST   /api/snippets                 create snippet          (auth, editor+)
//	PATCH  /api/snippets/{id}            update snippet          (auth, owner/admin)
//	DELETE /api/snippets/{id}            delete snippet          (auth, owner/admin)
//	POST   /api/snippets/{id}/run        run in sandbox          (auth)
//	GET    /api/languages                list catalog
//	GET    /api/languages/{id}           get catalog entry
//	POST   /api/languages                create entry            (auth, admin)
//	PATCH  /api/languages/{id}           update entry            (auth, admin)
//	DELETE /api/languages/{id}           delete entry            (auth, admin)
//	POST   /api/bookmarks/{snippetId}    toggle bookmark         (auth)
//	GET    /api/bookmarks                list own bookmarks      (auth)
//	GET    /api/users                    list accounts           (auth, admin)
//	PATCH  /api/users/{id}               update account          (auth, admin)
//	DELETE /api/users/{id}               delete account          (auth, admin)
//
// The middleware gate only checks authentication. Role and ownership rules
// live in the service layer, which re-reads the actor's row each request.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	var github *auth.GitHubProvider
	if s.config.GitHubClientID != "" {
		github = auth.NewGitHubProvider(
			s.config.GitHubClientID,
			s.config.GitHubClientSecret,
			s.config.GitHubCallbackURL,
		)
	} else {
		s.logger.Info("GitHub OAuth not configured, sign-in is password only")
	}

	userSvc := service.NewUserService(s.db.Users, tokens, passwords, s.logger)
	snippetSvc := service.NewSnippetService(s.db.Snippets, s.db.Languages, s.logger)
	languageSvc := service.NewLanguageService(s.db.Languages, s.logger)
	bookmarkSvc := service.NewBookmarkService(s.db.Bookmarks, s.db.Snippets, s.logger)

	authHandler := handler.NewAuthHandler(userSvc, github, s.logger)
	snippetHandler := handler.NewSnippetHandler(snippetSvc, s.exec, s.logger)
	languageHandler := handler.NewLanguageHandler(languageSvc)
	bookmarkHandler := handler.NewBookmarkHandler(bookmarkSvc)
	userHandler := handler.NewUserHandler(userSvc)

	requireActor := auth.RequireActor(tokens, s.db.Users)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/logout", authHandler.HandleLogout)
		r.Get("/auth/github", authHandler.HandleGitHubLogin)
		r.Get("/auth/github/callback", authHandler.HandleGitHubCallback)

		r.Get("/snippets", snippetHandler.HandleList)
		r.Get("/snippets/{id}", snippetHandler.HandleGet)
		r.Get("/languages", languageHandler.HandleList)
		r.Get("/languages/{id}", languageHandler.HandleGet)

		r.Group(func(r chi.Router) {
			r.Use(requireActor)

			r.Get("/auth/me", authHandler.HandleMe)

			r.Post("/snippets", snippetHandler.HandleCreate)
			r.Patch("/snippets/{id}", snippetHandler.HandleUpdate)
			r.Delete("/snippets/{id}", snippetHandler.HandleDelete)
			r.Post("/snippets/{id}/run", snippetHandler.HandleRun)

			r.Post("/languages", languageHandler.HandleCreate)
			r.Patch("/languages/{id}", languageHandler.HandleUpdate)
			r.Delete("/languages/{id}", languageHandler.HandleDelete)

			r.Post("/bookmarks/{snippetId}", bookmarkHandler.HandleToggle)
			r.Get("/bookmarks", bookmarkHandler.HandleList)

			r.Get("/users", userHandler.HandleList)
			r.Patch("/users/{id}", userHandler.HandleUpdate)
			r.Delete("/users/{id}", userHandler.HandleDelete)
		})
	})

	return nil
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully:
// stop accepting connections, let in-flight requests finish (30s cap),
// close the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
