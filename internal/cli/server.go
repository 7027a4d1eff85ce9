package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quizboard-service/internal/app"
	"quizboard-service/internal/board"
	"quizboard-service/internal/config"
	"quizboard-service/internal/domain"
	"quizboard-service/internal/infra/memory"
	"quizboard-service/internal/infra/postgres"
	redisinfra "quizboard-service/internal/infra/redis"
	"quizboard-service/internal/logger"
	"quizboard-service/internal/metrics"
	transport "quizboard-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	return logger.New(logger.Config{Level: cfg.Log.Level, File: cfg.Log.File})
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
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
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	gameBoard, err := loadBoard(ctx, cfg)
	if err != nil {
		return err
	}

	var loader memory.QuestionLoader = memory.NewStaticQuestionLoader(sampleQuestions())
	if pool != nil {
		loader = postgres.NewQuestionLoader(pool)
	}

	questionTTL := config.TTLDuration(cfg.Questions.TTL, 10*time.Minute)
	var bank app.QuestionBank
	if redisClient != nil {
		bank = redisinfra.NewQuestionRepository(redisClient, loader, questionTTL)
	} else {
		bank = memory.NewQuestionRepository(loader, questionTTL)
	}

	var store app.SessionRepository
	if redisClient != nil {
		store = redisinfra.NewSessionStore(redisClient, redisTTL, log)
	} else {
		store = memory.NewSessionStore()
	}

	var ledger app.MoveLedger = memory.NewMoveLedger()
	if pool != nil {
		ledger = postgres.NewMoveLedger(pool)
	}

	broadcaster := memory.NewBroadcaster()
	publishers := app.Publishers{broadcaster}
	if redisClient != nil {
		publishers = append(publishers, redisinfra.NewPublisher(redisClient, log))
	}

	policy, err := app.PolicyFor(cfg.Game.Difficulty)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	service := app.NewGameService(store, app.NewQuestionGate(bank, policy), ledger, gameBoard,
		app.WithPublisher(publishers),
		app.WithLogger(log),
		app.WithMetrics(metrics.New(registry)),
		app.WithPendingTTL(config.TTLDuration(cfg.Game.PendingTTL, time.Minute)),
		app.WithMaxPlayers(cfg.Game.MaxPlayers),
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/ws", transport.NewWSHandler(service, broadcaster, log).ServeWS)
	transport.NewAPIHandler(service, log).Routes(mux)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting game server",
			zap.String("port", finalPort),
			zap.String("board", cfg.Board.Source),
			zap.Bool("redis", redisClient != nil),
			zap.Bool("postgres", pool != nil),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", zap.Error(err))
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

func loadBoard(ctx context.Context, cfg config.Config) (*board.Board, error) {
	switch cfg.Board.Source {
	case "static":
		return board.New(board.Classic())
	case "postgres":
		if cfg.Postgres.URL == "" {
			return nil, fmt.Errorf("board source postgres needs postgres.url")
		}
		db := openBun(cfg.Postgres.URL)
		defer db.Close()
		return postgres.NewBoardLoader(db).LoadBoard(ctx)
	default:
		return nil, fmt.Errorf("unknown board source %q", cfg.Board.Source)
	}
}

// sampleQuestions keeps the server playable without a database; swap in the
// Postgres loader by configuring postgres.url.
func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:         "easy-1",
			Prompt:     "What is 2 + 2?",
			Type:       domain.TypeMultipleChoice,
			Difficulty: domain.DifficultyEasy,
			Options: []domain.Option{
				{ID: "a", Text: "3", Correct: false},
				{ID: "b", Text: "4", Correct: true},
				{ID: "c", Text: "5", Correct: false},
			},
		},
		{
			ID:         "medium-1",
			Prompt:     "Light travels faster than sound.",
			Type:       domain.TypeTrueFalse,
			Difficulty: domain.DifficultyMedium,
			Answer:     "true",
		},
		{
			ID:         "hard-1",
			Prompt:     "Match each element to its symbol.",
			Type:       domain.TypeMatching,
			Difficulty: domain.DifficultyHard,
			Pairs: []domain.MatchPair{
				{Left: "Gold", Right: "Au"},
				{Left: "Iron", Right: "Fe"},
				{Left: "Tungsten", Right: "W"},
			},
		},
	}
}
