package collision

import (
	"github.com/zeusync/racecollide/internal/core/observability/log"
	"github.com/zeusync/racecollide/internal/core/systems/intersect"
)

// Config holds the tunables of a Manager.
type Config struct {
	CheckRadius float64          // broad-phase cull distance between object positions, <= 0 disables it
	Table       *intersect.Table // narrow-phase dispatch table
	Logger      log.Log          // transition and error logging
	EndOnRemove bool             // fire End for overlaps dropped by RemoveObject
}

// Option configures a Manager.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Table:       intersect.DefaultTable(),
		Logger:      log.Provide(),
		EndOnRemove: true,
	}
}

// WithCheckRadius sets the broad-phase cull radius.
func WithCheckRadius(radius float64) Option {
	return func(c *Config) {
		c.CheckRadius = radius
	}
}

// WithTable replaces the default dispatch table.
func WithTable(table *intersect.Table) Option {
	return func(c *Config) {
		if table != nil {
			c.Table = table
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger log.Log) Option {
	return func(c *Config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithEndOnRemove controls whether removing an object ends its overlaps with an End callback.
func WithEndOnRemove(enabled bool) Option {
	return func(c *Config) {
		c.EndOnRemove = enabled
	}
}
