package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/skylark/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"SKYLARK_RUNTIME_PATH" envDefault:".skylark"`
	// Allow selecting the provider
	LLMProvider string `env:"LLM_PROVIDER" envDefault:"mistral"`

	// Transport Flags
	EnableHTTP     bool `env:"ENABLE_HTTP" envDefault:"true"`
	EnableTelegram bool `env:"ENABLE_TELEGRAM" envDefault:"false"`

	// Session store backend: "memory" or "sqlite"
	SessionBackend string `env:"SESSION_BACKEND" envDefault:"memory"`

	// Currency normalization applied to flight offers before ranking.
	// The rate is a fixed constant, never fetched live.
	CurrencyRate   float64 `env:"CURRENCY_RATE" envDefault:"107.37"`
	CurrencyCode   string  `env:"CURRENCY_CODE" envDefault:"INR"`
	CurrencySymbol string  `env:"CURRENCY_SYMBOL" envDefault:"₹"`

	// Upper bound on rendered-transcript tokens embedded into prompts
	PromptTokenBudget int `env:"PROMPT_TOKEN_BUDGET" envDefault:"3000"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "skylark.db")
}

func (c AppConfig) IsTelegramSelected() bool {
	return c.EnableTelegram
}

func (c AppConfig) IsHTTPSelected() bool {
	return c.EnableHTTP
}
