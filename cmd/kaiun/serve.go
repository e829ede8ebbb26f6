package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/kaiunlab/kaiun/internal/advice"
	"github.com/kaiunlab/kaiun/internal/config"
	"github.com/kaiunlab/kaiun/internal/db"
	"github.com/kaiunlab/kaiun/internal/handlers"
	"github.com/kaiunlab/kaiun/internal/line"
	"github.com/kaiunlab/kaiun/internal/logger"
	"github.com/kaiunlab/kaiun/internal/pipeline"
	"github.com/kaiunlab/kaiun/internal/recommend"
	"github.com/kaiunlab/kaiun/internal/schedule"
	"github.com/kaiunlab/kaiun/internal/server"
	"github.com/kaiunlab/kaiun/internal/store"
	"github.com/kaiunlab/kaiun/internal/version"
)

func runServe() {
	fx.New(
		fx.Provide(
			provideConfig,
			provideLogger,
			provideDBConn,
			provideStore,
			provideAdviceEngine,
			provideAdviceService,
			provideMatcher,
			provideLineClient,
			providePipelineController,
			provideCacheReporter,
			provideServerHandler(handlers.NewPingHandler),
			provideServerHandler(provideAuthHandler),
			provideServerHandler(provideAdminHandler),
			provideServerHandler(provideWebhookHandler),
			provideServer,
		),
		fx.Invoke(
			startCacheReporter,
			startServer,
		),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
		}),
	).Run()
}

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

func provideConfig() (config.Config, error) {
	cfgPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideDBConn(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	conn, err := db.Open(context.Background(), cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	lc.Append(fx.Hook{OnStop: func(ctx context.Context) error { conn.Close(); return nil }})
	return conn, nil
}

func provideStore(log *slog.Logger, conn *pgxpool.Pool) *store.Store {
	return store.NewStore(log, conn)
}

func provideAdviceEngine(cfg config.Config) advice.Engine {
	return advice.NewOpenAIEngine(advice.OpenAIOptions{
		APIKey:  cfg.Advice.APIKey,
		BaseURL: cfg.Advice.BaseURL,
		Model:   cfg.Advice.Model,
		Timeout: time.Duration(cfg.Advice.TimeoutSeconds) * time.Second,
	})
}

func provideAdviceService(log *slog.Logger, engine advice.Engine, st *store.Store, cfg config.Config) *advice.Service {
	return advice.NewService(log, engine, st, cfg.Advice.Singleflight)
}

func provideMatcher(cfg config.Config) (*recommend.Matcher, error) {
	return recommend.NewMatcher(recommend.Policy(cfg.Recommend.Policy))
}

func provideLineClient(log *slog.Logger, cfg config.Config) *line.Client {
	return line.NewClient(log, cfg.Line.AccessToken, cfg.Line.APIBaseURL)
}

func providePipelineController(log *slog.Logger, adviceService *advice.Service, st *store.Store, matcher *recommend.Matcher, client *line.Client) *pipeline.Controller {
	return pipeline.NewController(log, adviceService, st, matcher, client)
}

func provideCacheReporter(log *slog.Logger, st *store.Store, cfg config.Config) *schedule.CacheReporter {
	return schedule.NewCacheReporter(log, st, cfg.Report.CronSpec)
}

func provideAuthHandler(log *slog.Logger, cfg config.Config) (*handlers.AuthHandler, error) {
	return handlers.NewAuthHandler(log, cfg)
}

func provideAdminHandler(log *slog.Logger, st *store.Store) *handlers.AdminHandler {
	return handlers.NewAdminHandler(log, st)
}

func provideWebhookHandler(log *slog.Logger, cfg config.Config, controller *pipeline.Controller) *handlers.WebhookHandler {
	return handlers.NewWebhookHandler(log, cfg.Line.ChannelSecret, controller)
}

type serverParams struct {
	fx.In

	Logger   *slog.Logger
	Config   config.Config
	Handlers []server.Handler `group:"server_handlers"`
}

func provideServer(params serverParams) *server.Server {
	return server.NewServer(params.Logger, params.Config.Server.Addr, params.Config.Auth.JWTSecret, params.Handlers)
}

func startCacheReporter(lc fx.Lifecycle, cfg config.Config, reporter *schedule.CacheReporter) {
	if !cfg.Report.Enabled {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error { return reporter.Start() },
		OnStop:  func(ctx context.Context) error { return reporter.Stop(ctx) },
	})
}

func startServer(lc fx.Lifecycle, logger *slog.Logger, srv *server.Server, shutdowner fx.Shutdowner) {
	fmt.Printf("Starting Kaiun %s\n", version.GetInfo())
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}
