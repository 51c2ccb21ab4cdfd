package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/katemdaly/newspulse/backend/internal/auth"
	"github.com/katemdaly/newspulse/backend/internal/config"
	"github.com/katemdaly/newspulse/backend/internal/database"
	"github.com/katemdaly/newspulse/backend/internal/handlers"
	"github.com/katemdaly/newspulse/backend/internal/middleware"
	"github.com/katemdaly/newspulse/backend/internal/store"
)

const serviceVersion = "1.0.0"

type Server struct {
	cfg     *config.Config
	log     *slog.Logger
	db      *database.Database
	store   *store.Store
	tokens  *auth.TokenService
	handler *handlers.Handler
}

// New wires the server from explicitly constructed dependencies.
func New(cfg *config.Config, db *database.Database, verifier auth.IdentityVerifier, log *slog.Logger) (*Server, error) {
	tokens, err := auth.NewTokenService(cfg.JWTSecret, time.Duration(cfg.SessionDurationHours)*time.Hour)
	if err != nil {
		return nil, err
	}

	st := store.New(db.DB)

	return &Server{
		cfg:     cfg,
		log:     log,
		db:      db,
		store:   st,
		tokens:  tokens,
		handler: handlers.NewHandler(st, tokens, verifier, log),
	}, nil
}

// RegisterRoutes sets up all application routes.
func (s *Server) RegisterRoutes() *gin.Engine {
	if s.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			s.cfg.FrontendURL,
			"http://localhost:3001",
			"http://127.0.0.1:3000",
			"http://127.0.0.1:3001",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.CleanupExpiredSessions(s.store, s.log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"service":   "News App Backend",
			"version":   serviceVersion,
			"database":  s.db.Health(),
		})
	})

	requireAuth := middleware.RequireAuth(s.tokens, s.store, s.log)
	optionalAuth := middleware.OptionalAuth(s.tokens, s.store, s.log)

	api := r.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/google", s.handler.Auth.Google)
			authRoutes.GET("/me", requireAuth, s.handler.Auth.Me)
			authRoutes.POST("/logout", requireAuth, s.handler.Auth.Logout)
			authRoutes.GET("/stats", s.handler.Auth.Stats)
		}

		voting := api.Group("/voting")
		{
			voting.POST("/vote", requireAuth, s.handler.Voting.Vote)
			voting.GET("/article/:articleId", optionalAuth, s.handler.Voting.Article)
			voting.GET("/articles/all", optionalAuth, s.handler.Voting.All)
			voting.GET("/user/votes", requireAuth, s.handler.Voting.UserVotes)
			voting.GET("/stats", s.handler.Voting.Stats)
		}

		prefs := api.Group("/preferences")
		{
			prefs.GET("/defaults", s.handler.Preferences.Defaults)
			prefs.GET("", requireAuth, s.handler.Preferences.List)
			prefs.GET("/:key", requireAuth, s.handler.Preferences.Get)
			prefs.POST("/bulk", requireAuth, s.handler.Preferences.Bulk)
			prefs.POST("/pagination", requireAuth, s.handler.Preferences.Pagination)
			prefs.POST("/filters", requireAuth, s.handler.Preferences.Filters)
			prefs.POST("/:key", requireAuth, s.handler.Preferences.Set)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":  "Endpoint not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	return r
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully.
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:         "0.0.0.0:" + s.cfg.Port,
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server starting", "port", s.cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
