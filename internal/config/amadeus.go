package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/skylark/pkg/log"
)

type AmadeusConfig struct {
	APIKey    string `env:"AMADEUS_API_KEY,required,notEmpty"`
	APISecret string `env:"AMADEUS_API_SECRET,required,notEmpty"`
	BaseURL   string `env:"AMADEUS_BASE_URL" envDefault:"https://test.api.amadeus.com"`
}

func NewAmadeusConfig(ctx context.Context) *AmadeusConfig {
	c := &AmadeusConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Amadeus config")
	}
	return c
}
