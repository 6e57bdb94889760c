package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"study-companion/internal/app"
	"study-companion/internal/config"
	"study-companion/internal/domain"
	"study-companion/internal/infra/generator"
	"study-companion/internal/infra/memory"
	pgstore "study-companion/internal/infra/postgres"
	redisstore "study-companion/internal/infra/redis"
	transport "study-companion/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the study server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// setStorage is the question set loader and store pair; memory and Postgres both satisfy it.
type setStorage interface {
	memory.QuestionSetLoader
	app.QuestionSetStore
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := config.NewLogger(cfg)

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
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
	sessionTTL := config.TTLDuration(cfg.Redis.TTL, 30*time.Minute)

	var storage setStorage = memory.NewQuestionSetStore(sampleQuestionSets())
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		storage = pgstore.NewQuestionSetStore(pool)
	}

	setTTL := config.TTLDuration(cfg.QuestionSets.TTL, 10*time.Minute)
	var sets app.QuestionSetRepository
	var sessions app.SessionRepository
	var history app.HistoryStore
	if redisClient != nil {
		sets = redisstore.NewQuestionSetRepository(redisClient, storage, setTTL, logger)
		sessions = redisstore.NewSessionStore(redisClient, sessionTTL)
		history = redisstore.NewHistoryStore(redisClient)
	} else {
		sets = memory.NewQuestionSetRepository(storage, setTTL)
		sessions = memory.NewSessionStore()
		history = memory.NewHistoryStore()
	}

	gen := generator.NewClient(cfg.Generator.BaseURL, cfg.Generator.Path, config.TTLDuration(cfg.Generator.Timeout, 2*time.Minute))
	limits := app.UploadLimits{MaxDocumentBytes: cfg.Uploads.MaxBytes, HistoryLimit: cfg.Uploads.HistoryLimit}

	study := app.NewStudyService(sessions, sets, app.WithLogger(logger))
	uploads := app.NewUploadService(gen, storage, history, limits, logger)
	api := transport.NewAPI(study, uploads, limits.MaxDocumentBytes, logger)
	wsHandler := transport.NewWSHandler(study, logger)

	// No write timeout: websocket sessions outlive any fixed deadline.
	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     transport.NewRouter(api, wsHandler),
		ReadTimeout: 15 * time.Second,
	}

	go func() {
		logger.WithField("port", finalPort).Info("starting study service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server...")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuestionSets seeds the in-memory store so a session can be tried without the generator.
func sampleQuestionSets() map[string]domain.QuestionSet {
	return map[string]domain.QuestionSet{
		"sample": {
			Name: "sample.pdf",
			Questions: []domain.Question{
				{
					Text: "Which organelle produces most of a cell's ATP?",
					Options: []domain.Option{
						{Label: "A", Value: "Nucleus"},
						{Label: "B", Value: "Mitochondrion"},
						{Label: "C", Value: "Ribosome"},
						{Label: "D", Value: "Golgi apparatus"},
					},
					CorrectLabel: "B",
				},
				{
					Text: "What is the chemical symbol for sodium?",
					Options: []domain.Option{
						{Label: "A", Value: "S"},
						{Label: "B", Value: "So"},
						{Label: "C", Value: "Na"},
						{Label: "D", Value: "Sd"},
					},
					CorrectLabel: "C",
				},
			},
		},
	}
}
