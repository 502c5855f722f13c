package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandevgo/skylark/internal/config"
	"github.com/sandevgo/skylark/pkg/log"
)

var (
	debug bool
)

var rootCmd = &cobra.Command{
	Use:   "skylark",
	Short: "Skylark, a conversational flight-search assistant",
	Long:  `Skylark routes natural-language messages through a flight research workflow and serves the result over HTTP, Telegram or MCP.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all subcommands
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", config.IsDebug(), "enable debug logging")
}

func setupLogger(ctx context.Context) (context.Context, func()) {
	isDebug := debug || config.IsDebug()
	return log.NewContextWithLogger(ctx, isDebug)
}
