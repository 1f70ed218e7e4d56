package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"

	"contrib.go.opencensus.io/exporter/prometheus"

	"github.com/go-sod/boss/internal/buildinfo"
	"github.com/go-sod/boss/internal/classifier/boss"
	"github.com/go-sod/boss/internal/config"
	"github.com/go-sod/boss/internal/logging"
	"github.com/go-sod/boss/internal/serve"
	"github.com/go-sod/boss/internal/server"
	"github.com/go-sod/boss/internal/setup"
	"github.com/go-sod/boss/internal/shutdown"
)

func main() {
	_, _ = fmt.Fprint(os.Stdout, buildinfo.Graffiti)
	_, _ = fmt.Fprintln(os.Stdout, buildinfo.Info.String())

	ctx, done := shutdown.New()
	logger := logging.FromContext(ctx)
	if err := run(ctx, done); err != nil {
		done()
		logger.Fatal(err)
	}

	done()
}

func run(ctx context.Context, cancel func()) error {
	logger := logging.FromContext(ctx)
	cfg := config.Config{}
	env, err := setup.Setup(ctx, &cfg)
	if err != nil {
		return fmt.Errorf("setup.Setup: %w", err)
	}
	defer env.Close(ctx)

	if cfg.Dataset.Problem == "" {
		return errors.New("BOSS_PROBLEM is not set")
	}

	if err := boss.RegisterViews(); err != nil {
		return fmt.Errorf("boss.RegisterViews: %w", err)
	}
	if err := serve.RegisterViews(); err != nil {
		return fmt.Errorf("serve.RegisterViews: %w", err)
	}
	exporter, err := prometheus.NewExporter(prometheus.Options{Namespace: "boss"})
	if err != nil {
		return fmt.Errorf("prometheus.NewExporter: %w", err)
	}

	train, _, err := env.Loader().Load(ctx, cfg.Dataset.Problem)
	if err != nil {
		return fmt.Errorf("loader.Load: %w", err)
	}
	logger.Info(train.Summary())

	ensemble, err := env.ProvideEnsemble()()
	if err != nil {
		return fmt.Errorf("ensemble provider function error: %w", err)
	}
	if err := ensemble.Build(ctx, train); err != nil {
		return fmt.Errorf("ensemble.Build: %w", err)
	}
	if ensemble.Len() == 0 {
		logger.Warnf("ensemble for %s has no members, every request will fail", cfg.Dataset.Problem)
	}

	classifyHandler, err := serve.NewHandler(cfg.ServeConfig(), ensemble)
	if err != nil {
		return fmt.Errorf("serve.NewHandler: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/classify", classifyHandler)
	mux.Handle("/members", serve.NewMembersHandler(ensemble))
	mux.Handle("/health", server.HandleHealth(ctx))
	mux.Handle("/metrics", exporter)

	srv, err := server.New(cfg.SrvAddr)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}
	logger.Infof("serving %s on %s", cfg.Dataset.Problem, srv.Addr())

	go func() {
		if err := http.ListenAndServe(cfg.DebugAddr, nil); err != nil {
			logger.Warnf("debug server: %v", err)
		}
	}()

	if err := srv.ServeHTTPHandler(ctx, mux); err != nil {
		cancel()
		return fmt.Errorf("server.ServeHTTPHandler: %w", err)
	}
	return nil
}
