package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/sandevgo/skylark/internal/config"
	"github.com/sandevgo/skylark/internal/core"
	"github.com/sandevgo/skylark/internal/providers/flights"
	"github.com/sandevgo/skylark/internal/providers/llm"
	"github.com/sandevgo/skylark/internal/service/agent"
	"github.com/sandevgo/skylark/internal/storage/memstore"
	"github.com/sandevgo/skylark/internal/storage/sqlite"
	"github.com/sandevgo/skylark/internal/transport/httpapi"
	"github.com/sandevgo/skylark/internal/transport/telegram"
	"github.com/sandevgo/skylark/pkg/log"
	"github.com/sandevgo/skylark/pkg/srv"
)

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)

	// 2. Session store
	store, cleanup, err := initSessionStore(ctx, appCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize session store")
	}
	if cleanup != nil {
		services = append(services, srv.NewCleanup(cleanup))
	}

	// 3. Assistant
	ag := buildAgent(ctx, appCfg, store)

	// 4. Transports
	transports, err := initTransports(ctx, appCfg, ag)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize transports")
	}
	if len(transports) == 0 {
		logger.Fatal().Msg("no transport enabled, set ENABLE_HTTP or ENABLE_TELEGRAM")
	}
	services = append(services, transports...)

	return services
}

func buildAgent(ctx context.Context, appCfg *config.AppConfig, store core.SessionStore) *agent.Agent {
	logger := log.FromCtx(ctx)

	generator, err := llm.NewProvider(ctx, appCfg.LLMProvider, config.NewLLMConfig(ctx))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize LLM provider")
	}

	flightSource := flights.NewAmadeus(config.NewAmadeusConfig(ctx))

	ag, err := agent.NewAgent(
		agent.NewRouter(generator, appCfg.PromptTokenBudget),
		newResearcher(ctx, appCfg, generator, flightSource),
		agent.NewResponder(generator, appCfg.CurrencySymbol),
		store,
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build agent")
	}
	return ag
}

func newResearcher(ctx context.Context, appCfg *config.AppConfig, generator core.TextGenerator, source core.FlightSource) *agent.Researcher {
	return agent.NewResearcher(
		generator,
		source,
		appCfg.CurrencyRate,
		appCfg.CurrencyCode,
		appCfg.PromptTokenBudget,
	)
}

func initSessionStore(ctx context.Context, cfg *config.AppConfig) (core.SessionStore, func() error, error) {
	if cfg.SessionBackend != "sqlite" {
		return memstore.New(), nil, nil
	}

	db, err := sqlite.NewDB(ctx, cfg.GetDatabasePath())
	if err != nil {
		return nil, nil, err
	}
	return sqlite.NewTurns(db), db.Close, nil
}

func initTransports(ctx context.Context, cfg *config.AppConfig, ag *agent.Agent) ([]srv.Service, error) {
	var services []srv.Service

	if cfg.IsHTTPSelected() {
		services = append(services, httpapi.NewServer(config.NewServerConfig(ctx), ag))
	}

	if cfg.IsTelegramSelected() {
		bot, err := telegram.NewBot(ctx, config.NewTelegramConfig(ctx), ag)
		if err != nil {
			return nil, err
		}
		services = append(services, bot)
	}

	return services, nil
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
