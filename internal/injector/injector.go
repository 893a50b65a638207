//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"context"

	"github.com/google/wire"
	"github.com/zeusync/racecollide/internal/core/events/bus"
	"github.com/zeusync/racecollide/internal/sim"
)

func InitializeRace(ctx context.Context, settingsPath SettingsPath, shapePaths ShapePaths, autopilot Autopilot, events bus.EventBus) (*sim.Race, error) {
	wire.Build(ProvideLogger, ProvideSettings, ProvideCatalog, ProvideRace)
	return nil, nil
}
