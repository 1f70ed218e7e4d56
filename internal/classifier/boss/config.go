package boss

import (
	"fmt"
	"strconv"
	"strings"
)

// Config carries the ensemble search knobs. Zero values keep the defaults,
// except CorrectThreshold: unset keeps DefaultCorrectThreshold and an
// explicit 0 admits every candidate up to MaxEnsembleSize.
type Config struct {
	WordLengths      string   `envconfig:"BOSS_WORD_LENGTHS" default:"16,14,12,10,8"`
	AlphabetSize     int      `envconfig:"BOSS_ALPHABET_SIZE" default:"4"`
	Norm             string   `envconfig:"BOSS_NORM" default:"BOTH"`
	MinWindow        int      `envconfig:"BOSS_MIN_WINDOW" default:"10"`
	MaxEnsembleSize  int      `envconfig:"BOSS_MAX_ENSEMBLE_SIZE" default:"0"`
	CorrectThreshold *float64 `envconfig:"BOSS_CORRECT_THRESHOLD"`
	Concurrency      int      `envconfig:"BOSS_CONCURRENCY" default:"0"`
}

func (c *Config) EnsembleConfig() *Config {
	return c
}

// Options turns the configuration into ensemble options.
func (c *Config) Options() ([]Option, error) {
	var opts []Option
	if c.WordLengths != "" {
		var lengths []int
		for _, f := range strings.Split(c.WordLengths, ",") {
			l, err := strconv.Atoi(strings.TrimSpace(f))
			if err != nil {
				return nil, fmt.Errorf("unable to parse word length %q: %w", f, err)
			}
			lengths = append(lengths, l)
		}
		opts = append(opts, WithWordLengths(lengths...))
	}
	if c.AlphabetSize > 0 {
		opts = append(opts, WithAlphabetSize(c.AlphabetSize))
	}
	switch strings.ToUpper(c.Norm) {
	case "", "BOTH":
		opts = append(opts, WithNormOptions(true, false))
	case "TRUE":
		opts = append(opts, WithNormOptions(true))
	case "FALSE":
		opts = append(opts, WithNormOptions(false))
	default:
		return nil, fmt.Errorf("unknown norm option: %s", c.Norm)
	}
	if c.MinWindow > 0 {
		opts = append(opts, WithMinWindow(c.MinWindow))
	}
	if c.MaxEnsembleSize > 0 {
		opts = append(opts, WithMaxEnsembleSize(c.MaxEnsembleSize))
	}
	if c.CorrectThreshold != nil {
		opts = append(opts, WithCorrectThreshold(*c.CorrectThreshold))
	}
	if c.Concurrency > 0 {
		opts = append(opts, WithConcurrency(c.Concurrency))
	}
	return opts, nil
}

// ProvideFn creates an untrained ensemble.
type ProvideFn func() (*Ensemble, error)

// Provide resolves the options once and returns a constructor for them.
func (c *Config) Provide() (ProvideFn, error) {
	opts, err := c.Options()
	if err != nil {
		return nil, err
	}
	if _, err := NewEnsemble(opts...); err != nil {
		return nil, err
	}
	return func() (*Ensemble, error) {
		return NewEnsemble(opts...)
	}, nil
}
