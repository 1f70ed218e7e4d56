package experiment

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/go-sod/boss/internal/classifier/boss"
	"github.com/go-sod/boss/internal/dataset"
)

// Plan lists the problems of a batch run. Ensemble fields left empty in a
// problem fall back to the plan defaults.
//
//	data_path = "./UCRArchive_2018"
//
//	[ensemble]
//	max_ensemble_size = 50
//
//	[[problem]]
//	name = "Coffee"
//	[problem.ensemble]
//	norm = "TRUE"
type Plan struct {
	DataPath   string        `toml:"data_path"`
	Processor  string        `toml:"processor"`
	Normalizer string        `toml:"normalizer"`
	Method     *int          `toml:"method"`
	Ensemble   EnsemblePlan  `toml:"ensemble"`
	Problems   []ProblemPlan `toml:"problem"`
}

type ProblemPlan struct {
	Name     string       `toml:"name"`
	Ensemble EnsemblePlan `toml:"ensemble"`
}

type EnsemblePlan struct {
	WordLengths      []int    `toml:"word_lengths"`
	AlphabetSize     int      `toml:"alphabet_size"`
	Norm             string   `toml:"norm"`
	MinWindow        int      `toml:"min_window"`
	MaxEnsembleSize  int      `toml:"max_ensemble_size"`
	CorrectThreshold *float64 `toml:"correct_threshold"`
	Concurrency      int      `toml:"concurrency"`
}

func LoadPlan(path string) (*Plan, error) {
	var p Plan
	if _, err := toml.DecodeFile(path, &p); err != nil {
		return nil, fmt.Errorf("unable to decode plan %s: %w", path, err)
	}
	for i, problem := range p.Problems {
		if problem.Name == "" {
			return nil, fmt.Errorf("problem %d of plan %s has no name", i, path)
		}
	}
	return &p, nil
}

// Dataset overlays the data settings of the plan on c.
func (p *Plan) Dataset(c dataset.Config) dataset.Config {
	if p.DataPath != "" {
		c.Path = p.DataPath
	}
	if p.Processor != "" {
		c.Processor = dataset.ProcessorType(p.Processor)
	}
	if p.Normalizer != "" {
		c.Normalizer = dataset.NormalizerType(p.Normalizer)
	}
	if p.Method != nil {
		c.Method = dataset.Method(*p.Method)
	}
	return c
}

// EnsembleFor returns the ensemble settings of one problem.
func (p *Plan) EnsembleFor(problem ProblemPlan) EnsemblePlan {
	return p.Ensemble.merge(problem.Ensemble)
}

// merge overlays the set fields of o on top of e.
func (e EnsemblePlan) merge(o EnsemblePlan) EnsemblePlan {
	if len(o.WordLengths) > 0 {
		e.WordLengths = o.WordLengths
	}
	if o.AlphabetSize > 0 {
		e.AlphabetSize = o.AlphabetSize
	}
	if o.Norm != "" {
		e.Norm = o.Norm
	}
	if o.MinWindow > 0 {
		e.MinWindow = o.MinWindow
	}
	if o.MaxEnsembleSize > 0 {
		e.MaxEnsembleSize = o.MaxEnsembleSize
	}
	if o.CorrectThreshold != nil {
		e.CorrectThreshold = o.CorrectThreshold
	}
	if o.Concurrency > 0 {
		e.Concurrency = o.Concurrency
	}
	return e
}

// Options resolves the ensemble options of a problem on top of base.
func (e EnsemblePlan) Options(base *boss.Config) ([]boss.Option, error) {
	cfg := *base
	if len(e.WordLengths) > 0 {
		lengths := make([]string, len(e.WordLengths))
		for i, l := range e.WordLengths {
			lengths[i] = strconv.Itoa(l)
		}
		cfg.WordLengths = strings.Join(lengths, ",")
	}
	if e.AlphabetSize > 0 {
		cfg.AlphabetSize = e.AlphabetSize
	}
	if e.Norm != "" {
		cfg.Norm = e.Norm
	}
	if e.MinWindow > 0 {
		cfg.MinWindow = e.MinWindow
	}
	if e.MaxEnsembleSize > 0 {
		cfg.MaxEnsembleSize = e.MaxEnsembleSize
	}
	if e.CorrectThreshold != nil {
		cfg.CorrectThreshold = e.CorrectThreshold
	}
	if e.Concurrency > 0 {
		cfg.Concurrency = e.Concurrency
	}
	return cfg.Options()
}
