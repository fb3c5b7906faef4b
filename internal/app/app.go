package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/quizdash/server/internal/auth"
	"github.com/quizdash/server/internal/auth/jwt"
	"github.com/quizdash/server/internal/config"
	"github.com/quizdash/server/internal/db/repository"
	"github.com/quizdash/server/internal/logging"
	"github.com/quizdash/server/internal/quiz"
	"github.com/quizdash/server/internal/scoreboard"
	"github.com/quizdash/server/internal/server"
	"github.com/quizdash/server/internal/stats"
	"github.com/quizdash/server/internal/users"
	ws "github.com/quizdash/server/pkg/http/ws"
)

// Application aggregates shared infrastructure (DB, Pub/Sub, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server

	broadcaster *scoreboard.Broadcaster
	bgCancels   []context.CancelFunc
}

// New bootstraps config, logger, Postgres, Redis and the HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	connString := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=10",
		cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Database, cfg.Postgres.SSLMode)

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	userRepo := repository.NewUserRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	resultRepo := repository.NewResultRepository(pool)

	if cfg.Security.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be configured")
	}

	authSvc := auth.NewService(userRepo, auth.ServiceOptions{
		TokenConfig: jwt.TokenConfig{
			AccessSecret:  []byte(cfg.Security.JWTSecret),
			RefreshSecret: []byte(cfg.Security.JWTSecret + "_refresh"),
			Issuer:        cfg.Name,
		},
	}, logger)

	var oauthSvc *auth.OAuthService
	if cfg.OAuth.GoogleClientID != "" && cfg.OAuth.GoogleClientSecret != "" {
		redirectURL := cfg.OAuth.GoogleRedirectURL
		if redirectURL == "" {
			redirectURL = fmt.Sprintf("http://%s/api/auth/oauth/google/callback", cfg.HTTPAddr)
		}
		oauthSvc = auth.NewOAuthService(cfg.OAuth.GoogleClientID, cfg.OAuth.GoogleClientSecret, redirectURL, logger)
		logger.Info().Msg("oauth service initialized")
	} else {
		logger.Warn().Msg("oauth not configured (missing GOOGLE_OAUTH_CLIENT_ID or GOOGLE_OAUTH_CLIENT_SECRET)")
	}

	// Core services
	quizSvc := quiz.NewService(questionRepo, resultRepo, logger)
	aggregator := stats.NewAggregator(resultRepo, logger)
	ranker := scoreboard.NewRanker(resultRepo, logger)

	// Live scoreboard feed
	hub := ws.NewHub(logger)
	publisher := scoreboard.NewPublisher(redisClient, cfg.Scoreboard.PubSubChannel, logger)
	broadcaster := scoreboard.NewBroadcaster(redisClient, hub, aggregator, cfg.Scoreboard.PubSubChannel, cfg.Scoreboard.TopScorersLimit, logger)

	handlers := server.Handlers{
		Auth: auth.NewHTTPHandlers(authSvc, oauthSvc, logger),
		Quiz: quiz.NewHTTPHandler(quizSvc, aggregator, publisher, quiz.HandlerOptions{
			DefaultQuestionCount: cfg.Quiz.QuestionCount,
		}, logger),
		Users: users.NewHTTPHandler(userRepo, resultRepo, aggregator, logger),
		Scoreboard: scoreboard.NewHTTPHandler(aggregator, ranker, scoreboard.HandlerOptions{
			TopScorersLimit:    cfg.Scoreboard.TopScorersLimit,
			RecentResultsLimit: cfg.Scoreboard.RecentResultsLimit,
		}, logger),
		Feed: scoreboard.NewWSHandler(hub, logger).HandleFeed,
	}

	apiServer := server.NewHTTPServer(cfg, logger, pool, redisClient, authSvc, handlers)

	return &Application{
		cfg:         cfg,
		logger:      logger,
		pool:        pool,
		redis:       redisClient,
		http:        apiServer,
		broadcaster: broadcaster,
		bgCancels:   make([]context.CancelFunc, 0, 1),
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.startBackgroundWorkers(ctx)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	for _, cancel := range a.bgCancels {
		cancel()
	}

	a.pool.Close()
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}

func (a *Application) startBackgroundWorkers(ctx context.Context) {
	if a.broadcaster == nil {
		return
	}
	bgCtx, cancel := context.WithCancel(ctx)
	a.bgCancels = append(a.bgCancels, cancel)
	go func() {
		if err := a.broadcaster.Run(bgCtx); err != nil && err != context.Canceled {
			a.logger.Warn().Err(err).Msg("scoreboard broadcaster stopped")
		}
	}()
}
