package main

import (
	"github.com/spf13/cobra"

	"github.com/sandevgo/skylark/internal/config"
	"github.com/sandevgo/skylark/internal/providers/flights"
	"github.com/sandevgo/skylark/internal/providers/llm"
	"github.com/sandevgo/skylark/internal/service/booking"
	"github.com/sandevgo/skylark/internal/storage/sqlite"
	"github.com/sandevgo/skylark/internal/transport/mcpserver"
	"github.com/sandevgo/skylark/pkg/log"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve flight search and booking tools over MCP stdio",
	Long:  `Exposes search_flights, create_booking, get_booking, list_bookings and cancel_booking as MCP tools on stdin/stdout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()
		logger := log.FromCtx(ctx)

		if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
			logger.Fatal().Err(err).Msg("failed to init env")
		}
		appCfg := config.NewAppConfig(ctx)

		generator, err := llm.NewProvider(ctx, appCfg.LLMProvider, config.NewLLMConfig(ctx))
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize LLM provider")
		}
		flightSource := flights.NewAmadeus(config.NewAmadeusConfig(ctx))

		// Bookings always persist, even when sessions stay in memory.
		db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to open database")
		}
		defer db.Close()

		server := mcpserver.NewServer(
			newResearcher(ctx, appCfg, generator, flightSource),
			booking.NewService(sqlite.NewBookings(db)),
		)
		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
