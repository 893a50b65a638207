package injector

import (
	"context"

	"github.com/zeusync/racecollide/internal/config"
	"github.com/zeusync/racecollide/internal/core/catalog"
	"github.com/zeusync/racecollide/internal/core/events/bus"
	"github.com/zeusync/racecollide/internal/core/observability/log"
	"github.com/zeusync/racecollide/internal/sim"
)

// SettingsPath is the settings file; empty means every option reads as 0.
type SettingsPath string

// ShapePaths are the shape catalog files, applied in order.
type ShapePaths []string

type Autopilot bool

func ProvideLogger() log.Log {
	return log.Provide()
}

func ProvideSettings(path SettingsPath) (*config.Settings, error) {
	if path == "" {
		return config.New(nil), nil
	}
	return config.LoadFile(string(path))
}

func ProvideCatalog(ctx context.Context, paths ShapePaths, logger log.Log) (*catalog.Catalog, error) {
	c := catalog.New(catalog.WithLogger(logger))
	if err := c.LoadFiles(ctx, paths...); err != nil {
		return nil, err
	}
	return c, nil
}

func ProvideRace(settings *config.Settings, shapes *catalog.Catalog, logger log.Log, autopilot Autopilot, events bus.EventBus) *sim.Race {
	return sim.NewRace(settings, shapes,
		sim.WithLogger(logger),
		sim.WithAutopilot(bool(autopilot)),
		sim.WithEventBus(events),
	)
}
