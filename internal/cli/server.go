package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"quiz-results-service/internal/app"
	"quiz-results-service/internal/config"
	"quiz-results-service/internal/domain"
	"quiz-results-service/internal/infra/memory"
	"quiz-results-service/internal/infra/postgres"
	infraredis "quiz-results-service/internal/infra/redis"
	"quiz-results-service/internal/logging"
	transport "quiz-results-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the results server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg, log); err != nil {
			return err
		}
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	var loader memory.QuizLoader = memory.NewStaticQuizLoader(sampleQuizzes())
	if pool != nil {
		loader = postgres.NewQuizLoader(pool)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo app.QuizRepository
	if redisClient != nil {
		quizRepo = infraredis.NewQuizRepository(redisClient, loader, quizTTL)
	} else {
		quizRepo = memory.NewQuizRepository(loader, quizTTL)
	}

	var attempts app.AttemptRepository
	switch {
	case pool != nil:
		attempts = postgres.NewAttemptStore(pool)
	case redisClient != nil:
		attempts = infraredis.NewAttemptStore(redisClient)
	default:
		attempts = memory.NewAttemptStore()
	}
	log.Info().
		Bool("postgres", pool != nil).
		Bool("redis", redisClient != nil).
		Dur("quiz_ttl", quizTTL).
		Msg("storage configured")

	service := app.NewResultService(attempts, quizRepo, log)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(service, log, cfg.Server.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("port", finalPort).Msg("starting results service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(ctx, log)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func waitForShutdown(ctx context.Context, log zerolog.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case <-stop:
		log.Info().Msg("shutting down server...")
	case <-ctx.Done():
		log.Info().Msg("context canceled, shutting down server...")
	}
}

// sampleQuizzes serves a demo quiz when no Postgres is configured.
func sampleQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"quiz-1": {
			ID:          "quiz-1",
			Name:        "General Knowledge",
			Description: "A short warm-up",
			Category:    "General",
			Difficulty:  "Easy",
			TimeLimit:   60,
			Questions: `[{"id":1,"type":"single","prompt":"What is 2 + 2?","options":["3","4","5"]},` +
				`{"id":2,"type":"multiple","prompt":"Which are primes?","options":["2","4","5","9"]},` +
				`{"id":3,"type":"tf","prompt":"Water boils at 100C at sea level"},` +
				`{"id":4,"type":"text","prompt":"Capital of France"}]`,
			Answers: `[{"id":1,"correct":1},{"id":2,"correct":[0,2]},{"id":3,"correct":true},{"id":4,"correct":"Paris"}]`,
		},
	}
}
