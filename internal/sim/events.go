package sim

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/racecollide/internal/core/events/bus"
	"github.com/zeusync/racecollide/internal/core/observability/log"
)

// Event types published on the race bus.
const (
	EventCrash       = "race.crash"
	EventBonusPicked = "race.bonus"
	EventCheckPoint  = "race.checkpoint"
	EventLap         = "race.lap"
	EventFinished    = "race.finished"
)

const eventSource = "race"

type CrashEvent struct {
	Obstacle string
	Contact  mgl64.Vec3
	Velocity mgl64.Vec3
}

type BonusEvent struct {
	Bonus     time.Duration
	Remaining time.Duration
}

type CheckPointEvent struct {
	Number   int
	LapsLeft int
}

type LapEvent struct {
	Lap  int
	Laps int
}

type FinishedEvent struct {
	Status  Status
	Elapsed time.Duration
}

// WithEventBus publishes gameplay events on b.
func WithEventBus(b bus.EventBus) Option {
	return func(r *Race) {
		r.events = b
	}
}

func (r *Race) publish(typ string, data any) {
	if r.events == nil {
		return
	}
	if err := r.events.Publish(bus.NewEvent(typ, eventSource, data)); err != nil {
		r.logger.Warn("Race event handler failed", log.String("event", typ), log.Error(err))
	}
}
