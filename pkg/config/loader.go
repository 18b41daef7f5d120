// Package config parses service configuration from the environment. The
// bridge runs as a container, so environment variables are its only
// configuration surface.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load fills cfg from environment variables using `env` tags.
//
//	type Config struct {
//	    HTTPPort         int      `env:"HTTP_PORT" envDefault:"8080"`
//	    ElasticAddresses []string `env:"ES_ADDRESSES" envDefault:"http://localhost:9200"`
//	}
//
// Slice fields split on commas. Fields tagged required fail Load when unset,
// which keeps a misconfigured pod from starting at all.
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
