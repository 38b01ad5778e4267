package injector

import (
	"github.com/spatialsync/arboard/internal/config"
	"github.com/spatialsync/arboard/internal/core/observability/log"
)

// ProvideLevel maps the configured log level string to a log.Level.
func ProvideLevel(cfg config.Config) log.Level {
	return log.ParseLevel(cfg.LogLevel)
}
