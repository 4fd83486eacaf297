package app

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/samber/do"

	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/config"
)

func Provide(i *do.Injector) {
	provideApp(i)
}

func provideApp(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*App, error) {
		cfg, err := do.Invoke[config.Config](i)
		if err != nil {
			return nil, fmt.Errorf("failed to get config: %w", err)
		}
		logger, err := do.Invoke[zerolog.Logger](i)
		if err != nil {
			return nil, fmt.Errorf("failed to get logger: %w", err)
		}
		return NewApp(cfg, logger)
	})
}
