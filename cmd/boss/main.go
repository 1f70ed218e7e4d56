package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"

	"contrib.go.opencensus.io/exporter/prometheus"

	"github.com/go-sod/boss/internal/buildinfo"
	"github.com/go-sod/boss/internal/classifier/boss"
	"github.com/go-sod/boss/internal/config"
	"github.com/go-sod/boss/internal/dataset"
	"github.com/go-sod/boss/internal/experiment"
	"github.com/go-sod/boss/internal/experiment/database"
	"github.com/go-sod/boss/internal/experiment/model"
	"github.com/go-sod/boss/internal/logging"
	"github.com/go-sod/boss/internal/setup"
	"github.com/go-sod/boss/internal/shutdown"
)

func main() {
	_, _ = fmt.Fprint(os.Stdout, buildinfo.Graffiti)
	_, _ = fmt.Fprintln(os.Stdout, buildinfo.Info.String())

	ctx, done := shutdown.New()
	logger := logging.FromContext(ctx)
	if err := run(ctx); err != nil {
		done()
		logger.Fatal(err)
	}

	done()
}

func run(ctx context.Context) error {
	logger := logging.FromContext(ctx)
	cfg := config.ExperimentConfig{}
	env, err := setup.Setup(ctx, &cfg)
	if err != nil {
		return fmt.Errorf("setup.Setup: %w", err)
	}
	defer env.Close(ctx)

	if cfg.MetricsAddr != "" {
		if err := serveMetrics(cfg.MetricsAddr); err != nil {
			return err
		}
	}

	plan := &experiment.Plan{}
	if cfg.PlanFile != "" {
		if plan, err = experiment.LoadPlan(cfg.PlanFile); err != nil {
			return err
		}
	}
	if len(plan.Problems) == 0 {
		if cfg.Dataset.Problem == "" {
			return fmt.Errorf("neither BOSS_PLAN nor BOSS_PROBLEM is set")
		}
		plan.Problems = []experiment.ProblemPlan{{Name: cfg.Dataset.Problem}}
	}

	loader := env.Loader()
	if cfg.PlanFile != "" {
		dsCfg := plan.Dataset(cfg.Dataset)
		if loader, err = dataset.NewLoaderFromConfig(&dsCfg); err != nil {
			return err
		}
	}
	runner := experiment.NewRunner(loader, experiment.WithStore(database.New(env.Database())))

	logger.Infof("running %d problems", len(plan.Problems))
	results, err := runner.RunPlan(ctx, plan, &cfg.Ensemble)
	printResults(results)
	return err
}

func serveMetrics(addr string) error {
	if err := boss.RegisterViews(); err != nil {
		return fmt.Errorf("boss.RegisterViews: %w", err)
	}
	exporter, err := prometheus.NewExporter(prometheus.Options{Namespace: "boss"})
	if err != nil {
		return fmt.Errorf("prometheus.NewExporter: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", exporter)
	go func() {
		_ = http.ListenAndServe(addr, mux)
	}()
	return nil
}

func printResults(results []*model.Result) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "problem\ttrain\ttest\tmembers\ttrain acc\ttest acc\tbuild")
	for _, r := range results {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.4f\t%.4f\t%s\n",
			r.Problem, r.TrainSize, r.TestSize, len(r.Members), r.TrainAccuracy, r.TestAccuracy, r.BuildTime)
	}
	_ = w.Flush()
}
