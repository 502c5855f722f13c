package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/skylark/pkg/log"
)

type ServerConfig struct {
	Addr string `env:"HTTP_ADDR" envDefault:"127.0.0.1:8000"`
}

func NewServerConfig(ctx context.Context) *ServerConfig {
	c := &ServerConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Server config")
	}
	return c
}
