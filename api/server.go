package api

import (
	"net/http"
	"time"

	"courtside/config"
	"courtside/service"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// Server is the HTTP presentation layer over the lifecycle services
type Server struct {
	cfg      *config.Config
	users    service.UserService
	bets     service.BetService
	judging  service.JudgingService
	validate *validator.Validate
}

// New creates a new API server
func New(cfg *config.Config, users service.UserService, bets service.BetService, judging service.JudgingService) *Server {
	return &Server{
		cfg:      cfg,
		users:    users,
		bets:     bets,
		judging:  judging,
		validate: validator.New(),
	}
}

// Router builds the full middleware and route tree
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()

	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware)
	r.Use(rateLimitMiddleware(s.cfg.RateLimit, s.cfg.RateLimitBurst))

	r.HandleFunc("/api/auth/signup", s.handleSignup).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/login", s.handleLogin).Methods(http.MethodPost)

	authed := r.PathPrefix("/api").Subrouter()
	authed.Use(s.authMiddleware)

	authed.HandleFunc("/bets", s.handleCreateBet).Methods(http.MethodPost)
	authed.HandleFunc("/bets", s.handleListBets).Methods(http.MethodGet)
	authed.HandleFunc("/bets/{id:[0-9]+}", s.handleGetBet).Methods(http.MethodGet)
	authed.HandleFunc("/bets/{id:[0-9]+}", s.handleCancelBet).Methods(http.MethodDelete)
	authed.HandleFunc("/bets/{id:[0-9]+}/accept", s.handleAcceptBet).Methods(http.MethodPost)
	authed.HandleFunc("/bets/{id:[0-9]+}/judge", s.handleJudgeBet).Methods(http.MethodPost)

	authed.HandleFunc("/balance", s.handleGetBalance).Methods(http.MethodGet)
	authed.HandleFunc("/balance/credit", s.handleCreditBalance).Methods(http.MethodPost)
	authed.HandleFunc("/balance/transfer", s.handleTransfer).Methods(http.MethodPost)

	authed.HandleFunc("/leaderboard", s.handleLeaderboard).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	return c.Handler(r)
}

// ListenAndServe runs the API server until the listener fails or is shut down
func (s *Server) ListenAndServe() *http.Server {
	srv := &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return srv
}
