// Package setup builds a srvenv.SrvEnv from a configuration struct processed
// with envconfig.
package setup

import (
	"context"
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"github.com/go-sod/boss/internal/classifier/boss"
	"github.com/go-sod/boss/internal/database"
	"github.com/go-sod/boss/internal/dataset"
	"github.com/go-sod/boss/internal/logging"
	"github.com/go-sod/boss/internal/srvenv"
)

type DatasetConfigProvider interface {
	DatasetConfig() *dataset.Config
}

type EnsembleConfigProvider interface {
	EnsembleConfig() *boss.Config
}

type DatabaseConfigProvider interface {
	DatabaseConfig() *database.Config
}

// Setup processes config and wires every dependency it provides a
// configuration for.
func Setup(ctx context.Context, config interface{}) (*srvenv.SrvEnv, error) {
	logger := logging.FromContext(ctx)
	var serverEnvOpts []srvenv.Option
	if err := envconfig.Process("", config); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	if datasetConfigProvider, ok := config.(DatasetConfigProvider); ok {
		logger.Info("configuring dataset loader")
		loader, err := ProvideLoaderFor(datasetConfigProvider)
		if err != nil {
			return nil, err
		}
		serverEnvOpts = append(serverEnvOpts, srvenv.WithLoader(loader))
	}

	if ensembleConfigProvider, ok := config.(EnsembleConfigProvider); ok {
		logger.Info("configuring ensemble")
		provideFn, err := ProvideEnsembleFor(ensembleConfigProvider)
		if err != nil {
			return nil, err
		}
		serverEnvOpts = append(serverEnvOpts, srvenv.WithEnsemble(provideFn))
	}

	if dbConfigProvider, ok := config.(DatabaseConfigProvider); ok {
		logger.Info("configuring database")
		cfg := dbConfigProvider.DatabaseConfig()
		if err := envconfig.Process("", cfg); err != nil {
			return nil, fmt.Errorf("unable to process database env: %w", err)
		}
		db, err := database.NewFromEnv(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("unable to connect to database: %w", err)
		}
		serverEnvOpts = append(serverEnvOpts, srvenv.WithDatabase(db))
	}

	return srvenv.New(serverEnvOpts...), nil
}

func ProvideLoaderFor(provider DatasetConfigProvider) (*dataset.Loader, error) {
	cfg := provider.DatasetConfig()
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("unable to process dataset env: %w", err)
	}
	loader, err := dataset.NewLoaderFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create loader: %w", err)
	}
	return loader, nil
}

func ProvideEnsembleFor(provider EnsembleConfigProvider) (boss.ProvideFn, error) {
	cfg := provider.EnsembleConfig()
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("unable to process ensemble env: %w", err)
	}
	provideFn, err := cfg.Provide()
	if err != nil {
		return nil, fmt.Errorf("unable to create ensemble provide function: %w", err)
	}
	return provideFn, nil
}
