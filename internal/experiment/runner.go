// Package experiment trains and tests ensembles on archive problems and
// keeps the results.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/go-sod/boss/internal/classifier/boss"
	"github.com/go-sod/boss/internal/dataset"
	"github.com/go-sod/boss/internal/experiment/database"
	"github.com/go-sod/boss/internal/experiment/model"
	"github.com/go-sod/boss/internal/logging"
)

// Store keeps run results.
type Store interface {
	Store(ctx context.Context, result model.Result) error
}

var _ Store = (*database.DB)(nil)

type Runner struct {
	loader *dataset.Loader
	store  Store
	now    func() time.Time
}

type Option func(*Runner)

// WithStore persists every result.
func WithStore(s Store) Option {
	return func(r *Runner) {
		r.store = s
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

func NewRunner(loader *dataset.Loader, opts ...Option) *Runner {
	r := &Runner{loader: loader, now: time.Now}
	for _, f := range opts {
		f(r)
	}
	return r
}

// Run loads problem, trains an ensemble on its train split and scores it
// on the test split.
func (r *Runner) Run(ctx context.Context, problem string, opts ...boss.Option) (*model.Result, error) {
	logger := logging.FromContext(ctx).With("problem", problem)
	ctx = logging.WithLogger(ctx, logger)

	train, test, err := r.loader.Load(ctx, problem)
	if err != nil {
		return nil, fmt.Errorf("unable to load problem %s: %w", problem, err)
	}
	logger.Info(train.Summary())
	logger.Info(test.Summary())

	result, err := Evaluate(ctx, train, test, opts...)
	if err != nil {
		return nil, err
	}
	result.ID = uuid.New()
	result.Problem = problem
	result.CreatedAt = r.now()

	logger.Infof("train accuracy %.4f test accuracy %.4f, %d members", result.TrainAccuracy, result.TestAccuracy, len(result.Members))
	if r.store != nil {
		if err := r.store.Store(ctx, *result); err != nil {
			return nil, fmt.Errorf("unable to store result: %w", err)
		}
	}
	return result, nil
}

// Evaluate builds an ensemble on train and measures its accuracy on test.
// An ensemble that classifies nothing scores zero.
func Evaluate(ctx context.Context, train, test dataset.Collection, opts ...boss.Option) (*model.Result, error) {
	e, err := boss.NewEnsemble(opts...)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	if err := e.Build(ctx, train); err != nil {
		return nil, fmt.Errorf("unable to build ensemble: %w", err)
	}
	buildTime := time.Since(start)

	start = time.Now()
	var correct int
	for i := 0; i < test.Len(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		seq := test.At(i)
		label, err := e.Classify(seq.Data)
		if errors.Is(err, boss.ErrEmptyEnsemble) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unable to classify test series %d: %w", i, err)
		}
		if label == seq.Label {
			correct++
		}
	}

	res := &model.Result{
		TrainSize:     train.Len(),
		TestSize:      test.Len(),
		NumClasses:    train.NumClasses(),
		SeriesLength:  train.MaxLength(),
		TrainAccuracy: e.TrainAccuracy(),
		Members:       e.Members(),
		BuildTime:     buildTime,
		TestTime:      time.Since(start),
	}
	if test.Len() > 0 {
		res.TestAccuracy = float64(correct) / float64(test.Len())
	}
	return res, nil
}

// RunPlan runs every problem of the plan in order. A failing problem is
// logged and the remaining ones still run; the joined failures are
// returned.
func (r *Runner) RunPlan(ctx context.Context, plan *Plan, base *boss.Config) ([]*model.Result, error) {
	logger := logging.FromContext(ctx)
	var (
		results []*model.Result
		errs    []error
	)
	for _, problem := range plan.Problems {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		opts, err := plan.EnsembleFor(problem).Options(base)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", problem.Name, err))
			continue
		}
		res, err := r.Run(ctx, problem.Name, opts...)
		if err != nil {
			logger.Errorf("problem %s failed: %v", problem.Name, err)
			errs = append(errs, fmt.Errorf("%s: %w", problem.Name, err))
			continue
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}
