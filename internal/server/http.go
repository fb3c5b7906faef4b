package server

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/quizdash/server/internal/auth"
	"github.com/quizdash/server/internal/config"
	"github.com/quizdash/server/internal/quiz"
	"github.com/quizdash/server/internal/scoreboard"
	"github.com/quizdash/server/internal/users"
)

// Handlers bundles the route handlers wired by the app.
type Handlers struct {
	Auth       *auth.HTTPHandlers
	Quiz       *quiz.HTTPHandler
	Users      *users.HTTPHandler
	Scoreboard *scoreboard.HTTPHandler
	Feed       http.HandlerFunc
}

// NewHTTPServer wires all routes for the API service.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, pool *pgxpool.Pool, redisClient *redis.Client, authSvc *auth.Service, h Handlers) *http.Server {
	mux := http.NewServeMux()
	requireAuth := auth.RequireAuth(authSvc, logger)

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.HandleFunc("GET /api/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := pingDependencies(r.Context(), pool, redisClient); err != nil {
			logger.Error().Err(err).Msg("dependency ping failed")
			http.Error(w, "upstream error", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	// Auth endpoints
	mux.HandleFunc("POST /api/auth/register", h.Auth.Register)
	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)
	mux.HandleFunc("POST /api/auth/refresh", h.Auth.RefreshToken)
	mux.HandleFunc("GET /api/auth/oauth/{provider}/start", h.Auth.OAuthStart)
	mux.HandleFunc("GET /api/auth/oauth/{provider}/callback", h.Auth.OAuthCallback)

	// Quiz-taking endpoints
	mux.HandleFunc("GET /api/quiz/questions", requireAuth(h.Quiz.Questions))
	mux.HandleFunc("POST /api/quiz/submit", requireAuth(h.Quiz.Submit))
	mux.HandleFunc("GET /api/quiz/stats", requireAuth(h.Quiz.Stats))

	// Account endpoints
	mux.HandleFunc("GET /api/users/profile", requireAuth(h.Users.Profile))
	mux.HandleFunc("GET /api/users/history", requireAuth(h.Users.History))
	mux.HandleFunc("GET /api/users/stats", requireAuth(h.Users.Stats))

	// Scoreboard endpoints; the boards themselves are public.
	mux.HandleFunc("GET /api/scoreboard/top-scorers", h.Scoreboard.TopScorers)
	mux.HandleFunc("GET /api/scoreboard/recent-results", h.Scoreboard.RecentResults)
	mux.HandleFunc("GET /api/scoreboard/user-ranking", requireAuth(h.Scoreboard.UserRanking))

	// Live scoreboard feed
	if h.Feed != nil {
		mux.HandleFunc("GET /ws/scoreboard", h.Feed)
	}

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: CORSMiddleware(cfg.CORS, mux),
	}
}

func pingDependencies(ctx context.Context, pool *pgxpool.Pool, redisClient *redis.Client) error {
	if err := pool.Ping(ctx); err != nil {
		return err
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return err
	}
	return nil
}
