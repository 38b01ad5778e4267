//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/spatialsync/arboard/internal/config"
	"github.com/spatialsync/arboard/internal/core/observability/log"
)

// BuildLogger assembles the application logger from a loaded config.
func BuildLogger(cfg config.Config) *log.Logger {
	wire.Build(ProvideLevel, log.New)
	return nil
}
