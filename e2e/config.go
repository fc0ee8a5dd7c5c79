package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_SERVER_ADDR points at an already-running devhub server, e.g.
	// "localhost:8080". Scenarios are skipped when it is empty.
	ServerAddr string `envconfig:"E2E_SERVER_ADDR"`
	// E2E_SESSION_CODE is the join code used by the scenarios; it does
	// not need a durable session record.
	SessionCode string `envconfig:"E2E_SESSION_CODE" default:"E2ETEST1"`
	// E2E_TOKEN is an optional bearer token for the first client.
	Token string `envconfig:"E2E_TOKEN"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
