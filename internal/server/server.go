package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/curriculo/apiserver/config"
	"github.com/curriculo/apiserver/internal/auth"
	"github.com/curriculo/apiserver/internal/db"
	"github.com/curriculo/apiserver/internal/handlers"
	"github.com/curriculo/apiserver/internal/mailer"
	"github.com/curriculo/apiserver/internal/mq"
	"github.com/curriculo/apiserver/internal/services"
	"github.com/curriculo/apiserver/internal/storage"
	"github.com/curriculo/apiserver/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	queue      *mq.MQ
}

// New constructs a Server with its full dependency graph: database,
// stores, auth components, mail queue, object storage and routes.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	if strings.TrimSpace(cfg.Auth.Secret) == "" {
		return nil, errors.New("AUTH_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queue, err := mq.Open(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	media, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		_ = queue.Close()
		return nil, err
	}
	if err := media.EnsureBucket(ctx); err != nil {
		_ = dbConn.Close()
		_ = queue.Close()
		return nil, err
	}

	tokenRepo := store.NewTokenRepository(dbConn)
	userRepo := store.NewUserRepository(dbConn)
	roleRepo := store.NewRoleRepository(dbConn)
	addressRepo := store.NewAddressRepository(dbConn)
	sessionRepo := store.NewSessionRepository(dbConn)
	companyRepo := store.NewCompanyRepository(dbConn)
	cvLanguageRepo := store.NewCVLanguageRepository(dbConn)

	userService := services.NewUserService(userRepo, addressRepo)
	roleService := services.NewRoleService(roleRepo)
	companyService := services.NewCompanyService(companyRepo)
	cvLanguageService := services.NewCVLanguageService(cvLanguageRepo)

	policy := auth.NewExpiryPolicy(cfg.Auth)
	evaluator := auth.NewEvaluator(policy, tokenRepo)
	authenticator := auth.NewAuthenticator(tokenRepo, userRepo, evaluator)
	codes := auth.NewCodeIssuer(cfg.Auth)

	mail := mailer.NewMailer(queue, cfg.Mail, cfg.AppName)

	authHandler := handlers.NewAuthHandler(
		authenticator, codes, tokenRepo, sessionRepo, userService, companyService)
	userHandler := handlers.NewUserHandler(
		userService, roleService, companyService, tokenRepo, codes, mail,
		media, cfg.ActivateURL, cfg.AppName)
	feedbackHandler := handlers.NewFeedbackHandler(mail, cfg.Mail.FeedbackEmail, cfg.AppName)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, authHandler)
	})
	router.Route("/users", func(r chi.Router) {
		handlers.UserRouter(r, userHandler, authHandler.RequireAuth)
	})
	router.Route("/cv-languages", func(r chi.Router) {
		handlers.CVLanguageRouter(r, cvLanguageService, authHandler.RequireAuth)
	})
	router.Route("/feedback", func(r chi.Router) {
		handlers.FeedbackRouter(r, feedbackHandler, authHandler.RequireAuth)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		queue:      queue,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.queue != nil {
		_ = s.queue.Close()
	}
	return s.httpServer.Close()
}
