package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"quiz-proctor-service/internal/app"
	"quiz-proctor-service/internal/config"
	"quiz-proctor-service/internal/domain"
	filestore "quiz-proctor-service/internal/infra/file"
	pgstore "quiz-proctor-service/internal/infra/postgres"
	redisstore "quiz-proctor-service/internal/infra/redis"
	transport "quiz-proctor-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz proctor server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var store app.DefinitionStore
	switch {
	case cfg.Postgres.URL != "":
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		store = pgstore.NewDefinitionStore(pool)
		logger.Info("quiz definition backend: postgres")
	case cfg.Redis.Addr != "":
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		store = redisstore.NewDefinitionStore(client)
		logger.Info("quiz definition backend: redis", "addr", cfg.Redis.Addr)
	default:
		store = filestore.NewDefinitionStore(cfg.Quiz.File)
		logger.Info("quiz definition backend: file", "path", cfg.Quiz.File)
	}

	service := app.NewService(store)
	if err := service.Bootstrap(ctx, sampleDefinition()); err != nil {
		return err
	}

	handler := transport.NewHandler(service, logger)
	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      handler.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting quiz proctor service", "port", finalPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// sampleDefinition is the bundled fallback used when the store holds
// nothing; uploading a real quiz replaces it.
func sampleDefinition() *domain.QuizDefinition {
	return &domain.QuizDefinition{
		Title:       "General Knowledge Quiz",
		Description: "Test your knowledge with these general questions",
		TimeLimit:   300,
		Questions: []domain.Question{
			{
				ID:            1,
				Text:          "What is the capital of France?",
				Options:       []string{"London", "Berlin", "Paris", "Madrid"},
				CorrectAnswer: 2,
				Points:        10,
			},
			{
				ID:            2,
				Text:          "Which planet is known as the Red Planet?",
				Options:       []string{"Venus", "Mars", "Jupiter", "Saturn"},
				CorrectAnswer: 1,
				Points:        10,
			},
		},
	}
}
