package web

import (
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/baristaner/spotify-song-recommendation/internal/auth"
	"github.com/baristaner/spotify-song-recommendation/internal/clustering"
	_ "github.com/baristaner/spotify-song-recommendation/internal/docs" // registers the OpenAPI document
	"github.com/baristaner/spotify-song-recommendation/internal/logging"
	"github.com/baristaner/spotify-song-recommendation/internal/metrics"
	"github.com/baristaner/spotify-song-recommendation/internal/recommend"
	"github.com/baristaner/spotify-song-recommendation/internal/spotify"
)

const shutdownTimeout = 10 * time.Second

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr         string
	ClientID     string
	ClientSecret string
	RedirectURI  string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigins  []string

	Recommend         recommend.Config
	DetailConcurrency int
	Moods             clustering.Config

	// SpotifyBaseURL overrides the Web API endpoint; empty uses the public API.
	SpotifyBaseURL string
	Breaker        *spotify.Breaker

	// Platforms overrides how per-request clients are built. Defaults to
	// the Spotify Web API.
	Platforms PlatformFactory

	// Optional collaborators; nil disables them.
	History  History
	Fallback recommend.GenreFallback
	Database Pinger
}

// Server is the HTTP server for the web application.
type Server struct {
	router   chi.Router
	server   *http.Server
	sessions *SessionStore
	handlers *Handlers
}

// NewServer creates a new web server.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("spotify client credentials are required")
	}

	spotifyAuth := auth.NewSpotifyAuth(auth.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURI,
	})

	platforms := cfg.Platforms
	if platforms == nil {
		platforms = SpotifyPlatforms(spotifyAuth, cfg.Breaker, cfg.SpotifyBaseURL)
	}

	moods := cfg.Moods
	if moods.NumClusters == 0 {
		moods = clustering.DefaultConfig()
	}

	sessions := NewSessionStore()
	handlers := &Handlers{
		auth:        spotifyAuth,
		sessions:    sessions,
		platforms:   platforms,
		history:     cfg.History,
		fallback:    cfg.Fallback,
		database:    cfg.Database,
		recommend:   cfg.Recommend,
		concurrency: cfg.DetailConcurrency,
		moods:       moods,
	}

	s := &Server{
		router:   chi.NewRouter(),
		sessions: sessions,
		handlers: handlers,
	}

	s.setupMiddleware(cfg.CORSOrigins)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s, nil
}

// setupMiddleware configures middleware for the router.
func (s *Server) setupMiddleware(origins []string) {
	accessLog := logging.Logger()
	middleware.DefaultLogger = middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  stdlog.New(accessLog, "", 0),
		NoColor: true,
	})

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	s.router.Use(instrument)
}

// setupRoutes configures routes for the application.
func (s *Server) setupRoutes() {
	s.router.Get("/", s.handlers.Index)

	// Auth routes
	s.router.Get("/login", s.handlers.Login)
	s.router.Get("/callback", s.handlers.Callback)
	s.router.Post("/logout", s.handlers.Logout)

	s.router.Get("/recommendation/{strategy}", s.handlers.Recommendation)
	s.router.Get("/profile/moods", s.handlers.Moods)
	s.router.Get("/history", s.handlers.RunHistory)

	// Observability
	s.router.Get("/health", s.handlers.Health)
	s.router.Handle("/metrics", metrics.Handler())
	s.router.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))
}

// Handler returns the configured router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Sessions returns the server's session store.
func (s *Server) Sessions() *SessionStore {
	return s.sessions
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", s.server.Addr).Msgf("starting server at http://%s", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logging.Info().Msg("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logging.Info().Msg("server stopped")
	return nil
}
