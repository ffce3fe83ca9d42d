// Package server exposes the performance engine over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sohumt123/Tickker"
	"github.com/sohumt123/Tickker/date"
)

// Engine computes the responses served by the API.
type Engine interface {
	Comparison(ctx context.Context, user tickker.UserID, req tickker.ComparisonRequest) (*tickker.ComparisonResponse, error)
	Performance(ctx context.Context, user tickker.UserID, baseline date.Date) (*tickker.PerformanceResponse, error)
	NetReturn(ctx context.Context, user tickker.UserID, r date.Range) (*tickker.NetReturnResponse, error)
	Holdings(ctx context.Context, user tickker.UserID, on date.Date) (*tickker.HoldingsResponse, error)
	WeeklyLeaderboard(ctx context.Context, group tickker.GroupID, week date.Range) (*tickker.LeaderboardResponse, error)
	GroupComparison(ctx context.Context, group tickker.GroupID, baseline date.Date) (*tickker.ComparisonResponse, error)
	History(ctx context.Context, user tickker.UserID, r date.Range) (*tickker.HistoryResponse, error)
	Trades(ctx context.Context, user tickker.UserID, limit int) (*tickker.TradesResponse, error)
	GroupRanking(ctx context.Context, group tickker.GroupID, baseline date.Date) (*tickker.RankingResponse, error)
}

// Config holds server configuration.
type Config struct {
	Engine      Engine
	Log         zerolog.Logger
	Addr        string
	CORSOrigins []string         // defaults to any origin
	Timeout     time.Duration    // per request, defaults to 60s
	Today       func() date.Date // defaults to date.Today
}

// Server is the HTTP API server.
type Server struct {
	router  *chi.Mux
	server  *http.Server
	engine  Engine
	log     zerolog.Logger
	today   func() date.Date
	addr    string
	origins []string
	timeout time.Duration
}

// New creates a new HTTP server.
func New(cfg Config) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		engine:  cfg.Engine,
		log:     cfg.Log.With().Str("component", "server").Logger(),
		today:   cfg.Today,
		addr:    cfg.Addr,
		origins: cfg.CORSOrigins,
		timeout: cfg.Timeout,
	}
	if s.today == nil {
		s.today = date.Today
	}
	if len(s.origins) == 0 {
		s.origins = []string{"*"}
	}
	if s.timeout <= 0 {
		s.timeout = 60 * time.Second
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: s.timeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the root handler of the API.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(requestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(s.timeout))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/comparison", s.handleComparison)
			r.Get("/performance", s.handlePerformance)
			r.Get("/net-return", s.handleNetReturn)
			r.Get("/holdings", s.handleHoldings)
			r.Get("/history", s.handleHistory)
			r.Get("/trades", s.handleTrades)
		})
		r.Route("/groups/{groupID}", func(r chi.Router) {
			r.Get("/weekly", s.handleWeekly)
			r.Get("/comparison", s.handleGroupComparison)
			r.Get("/leaderboard", s.handleGroupRanking)
		})
	})
}

// Start listens and serves until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

const requestIDHeader = "X-Request-Id"

type requestIDKey struct{}

// requestID reuses the caller's request id or assigns a new one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func getRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// loggingMiddleware logs HTTP requests and attaches a request scoped logger
// to the context.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := s.log.With().Str("request_id", getRequestID(r.Context())).Logger()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(log.WithContext(r.Context())))

		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Msg("HTTP request")
	})
}
