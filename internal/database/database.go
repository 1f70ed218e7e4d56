// Package database opens the bbolt file experiment results are kept in.
package database

import (
	"context"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/go-sod/boss/internal/logging"
)

type Config struct {
	FileName    string        `envconfig:"BOSS_DB_FILE" default:"boss.db"`
	OpenTimeout time.Duration `envconfig:"BOSS_DB_OPEN_TIMEOUT" default:"5s"`
}

func (c *Config) DatabaseConfig() *Config {
	return c
}

type DB struct {
	DB *bolt.DB
}

func NewFromEnv(ctx context.Context, config *Config) (*DB, error) {
	logger := logging.FromContext(ctx)
	logger.Infof("opening database %s", config.FileName)

	db, err := bolt.Open(config.FileName, 0600, &bolt.Options{Timeout: config.OpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	return &DB{DB: db}, nil
}

func (db *DB) Close(ctx context.Context) error {
	logger := logging.FromContext(ctx)
	logger.Infof("closing database")

	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("unable to close database: %w", err)
	}

	return nil
}
