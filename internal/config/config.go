// Package config declares the environment of the binaries.
package config

import (
	"github.com/go-sod/boss/internal/classifier/boss"
	"github.com/go-sod/boss/internal/database"
	"github.com/go-sod/boss/internal/dataset"
	"github.com/go-sod/boss/internal/serve"
	"github.com/go-sod/boss/internal/setup"
)

var (
	_ setup.DatasetConfigProvider  = (*Config)(nil)
	_ setup.EnsembleConfigProvider = (*Config)(nil)

	_ setup.DatasetConfigProvider  = (*ExperimentConfig)(nil)
	_ setup.EnsembleConfigProvider = (*ExperimentConfig)(nil)
	_ setup.DatabaseConfigProvider = (*ExperimentConfig)(nil)
)

// Config is the environment of the classification service.
type Config struct {
	SrvAddr   string `envconfig:"BOSS_ADDR" default:":8787"`
	DebugAddr string `envconfig:"BOSS_DEBUG_ADDR" default:"127.0.0.1:8080"`
	Serve     serve.Config
	Dataset   dataset.Config
	Ensemble  boss.Config
}

func (c *Config) DatasetConfig() *dataset.Config {
	return &c.Dataset
}

func (c *Config) EnsembleConfig() *boss.Config {
	return &c.Ensemble
}

func (c *Config) ServeConfig() *serve.Config {
	return &c.Serve
}

// ExperimentConfig is the environment of the batch runner.
type ExperimentConfig struct {
	PlanFile    string `envconfig:"BOSS_PLAN"`
	MetricsAddr string `envconfig:"BOSS_METRICS_ADDR"`
	Dataset     dataset.Config
	Ensemble    boss.Config
	Database    database.Config
}

func (c *ExperimentConfig) DatasetConfig() *dataset.Config {
	return &c.Dataset
}

func (c *ExperimentConfig) EnsembleConfig() *boss.Config {
	return &c.Ensemble
}

func (c *ExperimentConfig) DatabaseConfig() *database.Config {
	return &c.Database
}
