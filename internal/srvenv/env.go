// Package srvenv holds the dependencies built from the environment.
package srvenv

import (
	"context"

	"github.com/go-sod/boss/internal/classifier/boss"
	"github.com/go-sod/boss/internal/database"
	"github.com/go-sod/boss/internal/dataset"
)

type Option func(*SrvEnv) *SrvEnv

func New(opts ...Option) *SrvEnv {
	env := &SrvEnv{}
	for _, f := range opts {
		env = f(env)
	}

	return env
}

type SrvEnv struct {
	database *database.DB
	loader   *dataset.Loader
	ensemble boss.ProvideFn
}

func (s *SrvEnv) ProvideEnsemble() boss.ProvideFn {
	return s.ensemble
}

func (s *SrvEnv) Loader() *dataset.Loader {
	return s.loader
}

func (s *SrvEnv) Database() *database.DB {
	return s.database
}

func WithEnsemble(fn boss.ProvideFn) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.ensemble = fn
		return s
	}
}

func WithLoader(l *dataset.Loader) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.loader = l
		return s
	}
}

func WithDatabase(db *database.DB) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.database = db
		return s
	}
}

func (s *SrvEnv) Close(ctx context.Context) error {
	if s == nil {
		return nil
	}

	if s.database != nil {
		return s.database.Close(ctx)
	}
	return nil
}
