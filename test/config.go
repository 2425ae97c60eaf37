package test

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Host string `envconfig:"RELAY_TEST_HOST" default:"127.0.0.1"`
	// RELAY_TEST_TIMEOUT bounds every read in the end-to-end scenario
	Timeout        time.Duration `envconfig:"RELAY_TEST_TIMEOUT" default:"5s"`
	ReadBufferSize int           `envconfig:"RELAY_TEST_READ_BUFFER" default:"4096"`
	MaxClients     int           `envconfig:"RELAY_TEST_MAX_CLIENTS" default:"16"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
