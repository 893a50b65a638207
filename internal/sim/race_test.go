package sim

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/racecollide/internal/config"
	"github.com/zeusync/racecollide/internal/core/catalog"
	"github.com/zeusync/racecollide/internal/core/events/bus"
	"github.com/zeusync/racecollide/internal/core/observability/log"
	"github.com/zeusync/racecollide/internal/core/systems/shape"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	unit := func() (mgl64.Vec3, mgl64.Vec3) { return mgl64.Vec3{-1, -1, -1}, mgl64.Vec3{1, 1, 1} }

	c := catalog.New(catalog.WithLogger(log.NewNop()))
	require.NoError(t, c.Add(ModelCar, shape.MustOrientedBox(unit())))
	require.NoError(t, c.Add(ModelTimeBonus, shape.MustAxisAlignedBox(unit())))
	require.NoError(t, c.Add(ModelCheckPoint, shape.MustAxisAlignedBox(unit())))
	require.NoError(t, c.Add("wall", shape.MustAxisAlignedBox(unit())))
	return c
}

func newTestRace(t *testing.T, values map[string]float64, opts ...Option) *Race {
	t.Helper()
	opts = append([]Option{WithLogger(log.NewNop())}, opts...)
	return NewRace(config.New(values), testCatalog(t), opts...)
}

func placeCar(r *Race, pos mgl64.Vec3) {
	r.Car().SetPosition(pos)
	r.Car().Update()
}

func TestRaceCarBouncesOffScenery(t *testing.T) {
	r := newTestRace(t, nil)
	require.NoError(t, r.SpawnCar(mgl64.Vec3{}, mgl64.QuatIdent()))
	require.NoError(t, r.AddSceneObject("wall", mgl64.Vec3{5, 0, 0}, mgl64.QuatIdent(), 1))
	r.Car().SetVelocity(mgl64.Vec3{10, 0, 0})

	snap, err := r.Tick(350 * time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, 1, snap.Bounces)

	// Back where it started, heading away from the wall with damped speed.
	require.Equal(t, mgl64.Vec3{}, r.Car().Position())
	require.InDelta(t, -8.5, r.Car().Velocity().X(), 1e-9)
	require.InDelta(t, 0, r.Car().Velocity().Y(), 1e-9)
	require.Equal(t, StatusVictory, snap.Status, "no checkpoints means the race is over")
}

func TestRaceBounceDampingSetting(t *testing.T) {
	r := newTestRace(t, map[string]float64{config.CarBounceDamping: 0.5, config.RaceLaps: 1})
	require.NoError(t, r.SpawnCar(mgl64.Vec3{}, mgl64.QuatIdent()))
	require.NoError(t, r.AddSceneObject("wall", mgl64.Vec3{0, 3, 0}, mgl64.QuatIdent(), 1))
	require.NoError(t, r.AddCheckPoint(mgl64.Vec3{0, -50, 0}, mgl64.QuatIdent(), 0))
	r.Car().SetVelocity(mgl64.Vec3{0, 6, 0})

	snap, err := r.Tick(250 * time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, StatusRunning, snap.Status)
	require.InDelta(t, -3, r.Car().Velocity().Y(), 1e-9)
}

func TestRaceTimeBonusPickup(t *testing.T) {
	r := newTestRace(t, map[string]float64{config.RaceTime: 10})
	require.NoError(t, r.SpawnCar(mgl64.Vec3{}, mgl64.QuatIdent()))
	require.NoError(t, r.AddTimeBonus(mgl64.Vec3{2.5, 0, 0}, mgl64.QuatIdent(), 1, 5))
	require.NoError(t, r.AddCheckPoint(mgl64.Vec3{0, 50, 0}, mgl64.QuatIdent(), 0))
	r.Car().SetVelocity(mgl64.Vec3{10, 0, 0})

	snap, err := r.Tick(100 * time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, 1, snap.Pickups)
	require.Equal(t, 14900*time.Millisecond, snap.Remaining)
	require.Len(t, r.Manager().Objects(), 2, "picked bonus leaves the collision manager")

	snap, err = r.Tick(100 * time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, 1, snap.Pickups)
	require.Equal(t, StatusRunning, snap.Status)
}

func TestRaceCheckPointLaps(t *testing.T) {
	r := newTestRace(t, map[string]float64{config.RaceLaps: 2})
	require.NoError(t, r.SpawnCar(mgl64.Vec3{0, 50, 0}, mgl64.QuatIdent()))
	// Added out of order: checkpoints are crossed by number.
	require.NoError(t, r.AddCheckPoint(mgl64.Vec3{10, 0, 0}, mgl64.QuatIdent(), 1))
	require.NoError(t, r.AddCheckPoint(mgl64.Vec3{0, 0, 0}, mgl64.QuatIdent(), 0))

	tick := func(pos mgl64.Vec3) Snapshot {
		placeCar(r, pos)
		snap, err := r.Tick(time.Second)
		require.NoError(t, err)
		return snap
	}

	snap := tick(mgl64.Vec3{0, 50, 0})
	require.Equal(t, 0, snap.NextCheckPoint)
	require.Equal(t, 1, snap.Lap)

	snap = tick(mgl64.Vec3{10, 0, 0})
	require.Equal(t, 0, snap.NextCheckPoint, "wrong checkpoint is ignored")

	snap = tick(mgl64.Vec3{0, 0, 0})
	require.Equal(t, 1, snap.NextCheckPoint)

	snap = tick(mgl64.Vec3{10, 0, 0})
	require.Equal(t, 0, snap.NextCheckPoint)
	require.Equal(t, 2, snap.Lap)
	require.Equal(t, 2, snap.CheckPointsLeft)

	snap = tick(mgl64.Vec3{0, 0, 0})
	require.Equal(t, 1, snap.CheckPointsLeft, "checkpoint done after its last lap")
	require.Equal(t, 1, snap.NextCheckPoint)
	require.Equal(t, StatusRunning, snap.Status)

	snap = tick(mgl64.Vec3{10, 0, 0})
	require.Equal(t, 0, snap.CheckPointsLeft)
	require.Equal(t, -1, snap.NextCheckPoint)
	require.Equal(t, StatusVictory, snap.Status)
	require.Equal(t, 6*time.Second, snap.Elapsed)
	require.Zero(t, snap.Remaining)
}

func TestRaceDefeat(t *testing.T) {
	r := newTestRace(t, map[string]float64{config.RaceTime: 1})
	require.NoError(t, r.SpawnCar(mgl64.Vec3{}, mgl64.QuatIdent()))
	require.NoError(t, r.AddCheckPoint(mgl64.Vec3{100, 0, 0}, mgl64.QuatIdent(), 0))

	snap, err := r.Tick(600 * time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, StatusRunning, snap.Status)

	snap, err = r.Tick(600 * time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, StatusDefeat, snap.Status)
	require.Zero(t, snap.Remaining)

	// A finished race no longer advances.
	snap, err = r.Tick(600 * time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, 1200*time.Millisecond, snap.Elapsed)
}

func TestRaceAutopilot(t *testing.T) {
	r := newTestRace(t, map[string]float64{config.CarMaxSpeed: 10}, WithAutopilot(true))
	require.NoError(t, r.SpawnCar(mgl64.Vec3{}, mgl64.QuatIdent()))
	require.NoError(t, r.AddCheckPoint(mgl64.Vec3{5, 0, 0}, mgl64.QuatIdent(), 0))

	var snap Snapshot
	for i := 0; i < 10 && snap.Status == StatusRunning; i++ {
		var err error
		snap, err = r.Tick(100 * time.Millisecond)
		require.NoError(t, err)
	}
	require.Equal(t, StatusVictory, snap.Status)
	require.InDelta(t, 10, r.Car().Velocity().Len(), 1e-9)
}

func TestRaceErrors(t *testing.T) {
	r := newTestRace(t, nil)

	_, err := r.Tick(time.Second)
	require.ErrorIs(t, err, ErrNoCar)

	err = r.AddSceneObject("tree", mgl64.Vec3{}, mgl64.QuatIdent(), 1)
	require.ErrorIs(t, err, ErrUnknownModel)

	empty := NewRace(config.New(nil), catalog.New(), WithLogger(log.NewNop()))
	require.ErrorIs(t, empty.SpawnCar(mgl64.Vec3{}, mgl64.QuatIdent()), ErrUnknownModel)
}

func TestRaceRespawnAndClose(t *testing.T) {
	r := newTestRace(t, nil)
	require.NoError(t, r.SpawnCar(mgl64.Vec3{}, mgl64.QuatIdent()))
	first := r.Car()
	require.NoError(t, r.SpawnCar(mgl64.Vec3{1, 0, 0}, mgl64.QuatIdent()))
	require.NotSame(t, first, r.Car())
	require.Len(t, r.Manager().Objects(), 1)

	r.Close()
	require.Empty(t, r.Manager().Objects())
	require.Nil(t, r.Car())
}

func TestLevelBuild(t *testing.T) {
	level, err := LoadLevelYAML(strings.NewReader(`
name: downtown
nodes:
  - name: car
    position: {x: 0, y: -10, z: 0}
  - name: scene.wall
    position: {x: 5, y: 0, z: 0}
    quaternion: {x: 0, y: 0, z: 0.7071068, w: 0.7071068}
    scale: 2
  - name: time.5
    position: {x: 0, y: 5, z: 1}
  - name: checkpoint.1
    position: {x: 0, y: 20, z: 0}
  - name: checkpoint.0
    position: {x: 0, y: 10, z: 0}
  - name: skybox
    position: {x: 0, y: 0, z: 0}
  - name: lamp.post
    position: {x: 0, y: 0, z: 0}
`))
	require.NoError(t, err)

	r := newTestRace(t, nil)
	require.NoError(t, level.Build(r))
	require.NotNil(t, r.Car())
	require.Equal(t, mgl64.Vec3{0, -10, 0}, r.Car().Position())
	require.Len(t, r.Manager().Objects(), 5)

	snap := r.Snapshot()
	require.Equal(t, 2, snap.CheckPointsLeft)
	require.Equal(t, 0, snap.NextCheckPoint)
}

func TestLevelInvalidNodes(t *testing.T) {
	for _, name := range []string{"time.soon", "checkpoint.", "scene"} {
		level := &Level{Name: "broken", Nodes: []LevelNode{{Name: name}}}
		err := level.Build(newTestRace(t, nil))
		require.ErrorIs(t, err, ErrInvalidNode, name)
	}

	level := &Level{Name: "broken", Nodes: []LevelNode{{Name: "scene.tree"}}}
	require.ErrorIs(t, level.Build(newTestRace(t, nil)), ErrUnknownModel)
}

func TestRacePublishesEvents(t *testing.T) {
	events := bus.New()
	var got []string
	_, err := events.Subscribe(bus.Wildcard, func(e bus.Event) error {
		got = append(got, e.Type())
		return nil
	})
	require.NoError(t, err)

	var lap LapEvent
	_, err = events.Subscribe(EventLap, func(e bus.Event) error {
		lap = e.Data().(LapEvent)
		return nil
	})
	require.NoError(t, err)

	r := newTestRace(t, map[string]float64{config.RaceTime: 10, config.RaceLaps: 2}, WithEventBus(events))
	require.NoError(t, r.SpawnCar(mgl64.Vec3{}, mgl64.QuatIdent()))
	require.NoError(t, r.AddTimeBonus(mgl64.Vec3{2.5, 0, 0}, mgl64.QuatIdent(), 1, 5))
	require.NoError(t, r.AddCheckPoint(mgl64.Vec3{0, 50, 0}, mgl64.QuatIdent(), 0))
	r.Car().SetVelocity(mgl64.Vec3{10, 0, 0})

	_, err = r.Tick(100 * time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, []string{EventBonusPicked}, got)

	r.Car().SetVelocity(mgl64.Vec3{})
	tick := func(pos mgl64.Vec3) Snapshot {
		placeCar(r, pos)
		snap, err := r.Tick(100 * time.Millisecond)
		require.NoError(t, err)
		return snap
	}

	tick(mgl64.Vec3{0, 50, 0})
	require.Equal(t, []string{EventBonusPicked, EventCheckPoint, EventLap}, got)
	require.Equal(t, LapEvent{Lap: 2, Laps: 2}, lap)

	tick(mgl64.Vec3{0, 0, 0})
	snap := tick(mgl64.Vec3{0, 50, 0})
	require.Equal(t, StatusVictory, snap.Status)
	require.Equal(t, []string{EventBonusPicked, EventCheckPoint, EventLap, EventCheckPoint, EventFinished}, got)

	// Handler errors are logged, never returned from Tick.
	_, err = events.Subscribe(EventCrash, func(bus.Event) error { return errors.New("boom") })
	require.NoError(t, err)
	r.publish(EventCrash, CrashEvent{})
	require.Equal(t, EventCrash, got[len(got)-1])
	require.EqualValues(t, 1, events.GetMetrics().Errors)
}
