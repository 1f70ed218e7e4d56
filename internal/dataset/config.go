package dataset

import "fmt"

type Config struct {
	Path       string         `envconfig:"BOSS_DATA_PATH" default:"./data"`
	Problem    string         `envconfig:"BOSS_PROBLEM"`
	Processor  ProcessorType  `envconfig:"BOSS_PROCESSOR" default:"NONE"`
	Normalizer NormalizerType `envconfig:"BOSS_NORMALIZER" default:"NONE"`
	Method     Method         `envconfig:"BOSS_METHOD" default:"0"`
}

func (c *Config) DatasetConfig() *Config {
	return c
}

// NewLoaderFromConfig resolves the configured processor and normalizer.
func NewLoaderFromConfig(c *Config) (*Loader, error) {
	p, err := ProcessorFor(c.Processor)
	if err != nil {
		return nil, fmt.Errorf("unable to create loader: %w", err)
	}
	n, err := NormalizerFor(c.Normalizer)
	if err != nil {
		return nil, fmt.Errorf("unable to create loader: %w", err)
	}
	if c.Method != MethodProcessFirst && c.Method != MethodNormalizeFirst {
		return nil, fmt.Errorf("unable to create loader: unknown method %d", c.Method)
	}
	return NewLoader(c.Path, WithProcessor(p), WithNormalizer(n), WithMethod(c.Method)), nil
}
