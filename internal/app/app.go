package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"newsdigest/internal/api"
	"newsdigest/internal/config"
	"newsdigest/internal/digest"
	"newsdigest/internal/infrastructure/feeds"
	"newsdigest/internal/infrastructure/llm"
	"newsdigest/internal/infrastructure/mail"
	"newsdigest/internal/infrastructure/scheduler"
	"newsdigest/internal/infrastructure/search"
	"newsdigest/internal/infrastructure/storage"
	"newsdigest/internal/logging"
	"newsdigest/internal/ports"
	"newsdigest/internal/scoring"
	"newsdigest/internal/usecase"
)

// Application wires configuration to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	pipeline  *usecase.Pipeline
	store     *storage.PostgresStore
	scheduler *usecase.Scheduler
	engine    *gin.Engine
}

// New builds a runnable application instance.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := storage.RunMigrations(db); err != nil {
		return nil, err
	}
	store := storage.NewPostgresStore(db)

	chat := llm.NewOpenAIClient(cfg.OpenAI)

	scorer := scoring.New(chat, baseLogger.With("component", "scorer"),
		scoring.WithMinScore(cfg.Scoring.MinScore),
		scoring.WithRateLimit(cfg.Scoring.RequestsPerSecond))

	assembler := digest.NewAssembler(chat, baseLogger.With("component", "digest"))

	source := feeds.NewSource(cfg.Feeds, baseLogger.With("component", "feeds"))

	var searcher ports.ClientSearcher
	if cfg.Tavily.APIKey != "" {
		searcher = search.NewTavilyClient(cfg.Tavily, baseLogger.With("component", "search"))
	}

	var mailer ports.Mailer
	if cfg.Email.TokenFile != "" {
		sender, err := mail.NewGmailSender(ctx, cfg.Email.TokenFile)
		if err != nil {
			baseLogger.Warn("gmail sender unavailable, digests will not be emailed", "error", err)
		} else {
			mailer = sender
		}
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:       source,
		Searcher:     searcher,
		Directory:    store,
		Store:        store,
		Scorer:       scorer,
		Assembler:    assembler,
		Mailer:       mailer,
		AdvisorEmail: cfg.Email.AdvisorAddress,
		MaxPerClient: cfg.Scoring.MaxPerClient,
		RetentionAge: cfg.Retention.MaxAge,
		Logger:       baseLogger.With("component", "pipeline"),
	})

	runScheduler := usecase.NewScheduler(
		scheduler.NewIntervalScheduler(cfg.Scheduler.FetchInterval, true),
		scheduler.NewIntervalScheduler(cfg.Scheduler.RetentionInterval, false),
		pipeline,
	)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.Default()
	api.NewHandler(pipeline, store, baseLogger.With("component", "api")).RegisterRoutes(engine)

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		pipeline:  pipeline,
		store:     store,
		scheduler: runScheduler,
		engine:    engine,
	}, nil
}

// Run starts background jobs and serves HTTP until the context is canceled
// or the listener fails.
func (a *Application) Run(ctx context.Context) error {
	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer a.scheduler.Stop(ctx)

	addr := ":" + a.cfg.Server.Port
	a.logger.Info("server starting", "addr", addr)

	srv := &http.Server{Addr: addr, Handler: a.engine}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}
