package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"exam-drill-service/internal/app"
	"exam-drill-service/internal/config"
	"exam-drill-service/internal/exam"
	"exam-drill-service/internal/game"
	"exam-drill-service/internal/infra/gemini"
	"exam-drill-service/internal/infra/memory"
	"exam-drill-service/internal/infra/postgres"
	redisinfra "exam-drill-service/internal/infra/redis"
	"exam-drill-service/internal/logger"
	transport "exam-drill-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the drill server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.Gemini.APIKey == "" {
		return config.ErrMissingAPIKey
	}
	catalog, err := exam.Load(cfg.Quiz.ExamCatalog)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}

	var generator app.QuestionGenerator
	generator, err = gemini.NewClient(cfg.Gemini.Model, cfg.Gemini.APIKey, cfg.Gemini.BaseURL, nil, catalog, log.Named("gemini"))
	if err != nil {
		return err
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg.Postgres.URL, log); err != nil {
			return err
		}
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		generator = app.NewArchivingGenerator(generator, postgres.NewQuestionArchive(pool), log.Named("archive"))
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

	cacheTTL := config.TTLDuration(cfg.Quiz.CacheTTL, 0)
	if redisClient != nil {
		generator = redisinfra.NewQuestionCache(redisClient, generator, cacheTTL, log.Named("cache"))
	} else {
		generator = memory.NewQuestionCache(generator, cacheTTL)
	}

	var (
		store   app.SessionRepository
		counter transport.LiveCounter
	)
	if redisClient != nil {
		redisStore := redisinfra.NewSessionStore(redisClient, config.TTLDuration(cfg.Redis.TTL, 10*time.Minute))
		store, counter = redisStore, redisStore
	} else {
		memStore := memory.NewSessionStore()
		store, counter = memStore, memStore
	}

	service := app.NewQuizService(store, app.SessionOptions{
		Generator:       generator,
		Catalog:         catalog,
		Game:            game.DefaultConfig(),
		Scheduler:       game.WallClock(),
		GenerateTimeout: config.TTLDuration(cfg.Gemini.Timeout, 45*time.Second),
		MaxQuestions:    cfg.Quiz.MaxQuestions,
		Logger:          log.Named("session"),
	})
	wsHandler := transport.NewWSHandler(service, log.Named("ws"))

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/exams", transport.CatalogHandler(catalog))
	mux.HandleFunc("/stats", transport.StatsHandler(counter, log.Named("stats")))
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting exam drill service", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
