package serve

import "time"

type Config struct {
	RequestTimeout  time.Duration `envconfig:"BOSS_SERVE_REQUEST_TIMEOUT" default:"30s"`
	MaxDataItemsLen int           `envconfig:"BOSS_SERVE_MAX_DATA_ITEMS_LEN" default:"100"`
}

func (c *Config) ServeConfig() *Config {
	return c
}
