// Package sim runs a headless race: a car, the track's scenery, time bonuses and
// checkpoints, all driven through the collision manager once per tick.
package sim

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/racecollide/internal/config"
	"github.com/zeusync/racecollide/internal/core/catalog"
	"github.com/zeusync/racecollide/internal/core/events/bus"
	"github.com/zeusync/racecollide/internal/core/models"
	"github.com/zeusync/racecollide/internal/core/observability/log"
	"github.com/zeusync/racecollide/internal/core/systems/collision"
	"github.com/zeusync/racecollide/internal/core/systems/intersect"
	"github.com/zeusync/racecollide/internal/core/systems/physics"
	"github.com/zeusync/racecollide/internal/core/systems/shape"
)

// Shape catalog names of the built-in entities.
const (
	ModelCar        = "car"
	ModelTimeBonus  = "timebonus"
	ModelCheckPoint = "checkpoint"
)

const defaultBounceDamping = 0.85

var (
	ErrUnknownModel = errors.New("unknown model")
	ErrNoCar        = errors.New("race has no car")
	ErrInvalidNode  = errors.New("invalid level node")
)

type Status uint8

const (
	StatusRunning Status = iota
	StatusVictory
	StatusDefeat
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusVictory:
		return "victory"
	case StatusDefeat:
		return "defeat"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// Snapshot is the race state after a tick.
type Snapshot struct {
	Status          Status
	Elapsed         time.Duration
	Remaining       time.Duration // zero when the race has no time limit
	Lap             int
	Laps            int
	CheckPointsLeft int
	NextCheckPoint  int // number of the checkpoint to cross next, -1 when none is left
	Pickups         int
	Bounces         int
	CarPosition     mgl64.Vec3
}

type Option func(*Race)

func WithLogger(logger log.Log) Option {
	return func(r *Race) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithAutopilot steers the car towards the next checkpoint every tick.
func WithAutopilot(enabled bool) Option {
	return func(r *Race) {
		r.autopilot = enabled
	}
}

// WithCollisionOptions passes extra options to the collision manager.
func WithCollisionOptions(opts ...collision.Option) Option {
	return func(r *Race) {
		r.collisionOpts = append(r.collisionOpts, opts...)
	}
}

// Race is not safe for concurrent use.
type Race struct {
	settings *config.Settings
	shapes   *catalog.Catalog
	manager  *collision.Manager
	logger   log.Log
	events   bus.EventBus

	autopilot     bool
	collisionOpts []collision.Option

	car         *Car
	scenery     []*models.GameObject
	bonuses     []*TimeBonus
	checkpoints []*CheckPoint

	laps      int
	damping   float64
	timeLimit bool

	status         Status
	elapsed        time.Duration
	remaining      time.Duration
	nextCheckPoint int
	lapsDone       int
	pickups        int
	bounces        int
}

// NewRace creates an empty race. Entities are added with the Spawn/Add methods or
// by building a Level.
func NewRace(settings *config.Settings, shapes *catalog.Catalog, opts ...Option) *Race {
	r := &Race{
		settings: settings,
		shapes:   shapes,
		logger:   log.Provide(),
		lapsDone: 1,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.laps = int(settings.Get(config.RaceLaps))
	if r.laps <= 0 {
		r.laps = 1
	}
	r.damping = settings.Get(config.CarBounceDamping)
	if r.damping <= 0 {
		r.damping = defaultBounceDamping
	}
	if limit := settings.Get(config.RaceTime); limit > 0 {
		r.timeLimit = true
		r.remaining = time.Duration(limit * float64(time.Second))
	}

	managerOpts := append([]collision.Option{
		collision.WithCheckRadius(settings.Get(config.CollisionCheckRadius)),
		collision.WithLogger(r.logger),
	}, r.collisionOpts...)
	r.manager = collision.NewManager(managerOpts...)

	r.manager.AddCallback(models.KindCar, models.KindSceneObject, r.onCarScene, collision.PhaseDuring)
	r.manager.AddCallback(models.KindCar, models.KindTimeBonus, r.onCarBonus, collision.PhaseBegin)
	r.manager.AddCallback(models.KindCar, models.KindCheckPoint, r.onCarCheckPoint, collision.PhaseBegin)

	return r
}

func (r *Race) Manager() *collision.Manager { return r.manager }

func (r *Race) Car() *Car { return r.car }

func (r *Race) Status() Status { return r.status }

func (r *Race) shape(model string) (shape.Shape, error) {
	s, ok := r.shapes.Get(model)
	if !ok {
		return nil, fmt.Errorf("%s: %w", model, ErrUnknownModel)
	}
	return s, nil
}

// SpawnCar places the car, replacing any previous one.
func (r *Race) SpawnCar(position mgl64.Vec3, orientation mgl64.Quat) error {
	s, err := r.shape(ModelCar)
	if err != nil {
		return err
	}
	if r.car != nil {
		r.manager.RemoveObject(r.car)
	}
	r.car = NewCar(s, position, orientation, r.settings.Get(config.CarMaxSpeed))
	r.manager.AddObject(r.car)
	return nil
}

// AddSceneObject places a static obstacle built from the named shape.
func (r *Race) AddSceneObject(model string, position mgl64.Vec3, orientation mgl64.Quat, scale float64) error {
	s, err := r.shape(model)
	if err != nil {
		return err
	}
	obj := models.NewGameObject(models.KindSceneObject, model, s, position, orientation, scale)
	r.scenery = append(r.scenery, obj)
	r.manager.AddObject(obj)
	return nil
}

func (r *Race) AddTimeBonus(position mgl64.Vec3, orientation mgl64.Quat, scale float64, seconds int) error {
	s, err := r.shape(ModelTimeBonus)
	if err != nil {
		return err
	}
	bonus := NewTimeBonus(s, position, orientation, scale, time.Duration(seconds)*time.Second)
	r.bonuses = append(r.bonuses, bonus)
	r.manager.AddObject(bonus)
	return nil
}

func (r *Race) AddCheckPoint(position mgl64.Vec3, orientation mgl64.Quat, number int) error {
	s, err := r.shape(ModelCheckPoint)
	if err != nil {
		return err
	}
	cp := NewCheckPoint(s, position, orientation, number, r.laps)
	r.checkpoints = append(r.checkpoints, cp)
	slices.SortStableFunc(r.checkpoints, func(a, b *CheckPoint) int {
		return cmp.Compare(a.Number(), b.Number())
	})
	r.manager.AddObject(cp)
	return nil
}

// Tick advances the race by dt: the car moves, collisions are resolved, picked
// bonuses and finished checkpoints are removed and the clock runs.
func (r *Race) Tick(dt time.Duration) (Snapshot, error) {
	if r.status != StatusRunning {
		return r.Snapshot(), nil
	}
	if r.car == nil {
		return r.Snapshot(), ErrNoCar
	}

	if r.autopilot {
		if cp := r.nextTarget(); cp != nil {
			r.car.SteerTowards(cp.Position())
		}
	}
	r.car.Step(dt)
	for _, b := range r.bonuses {
		b.Update()
	}
	for _, cp := range r.checkpoints {
		cp.Update()
	}

	if err := r.manager.CheckCollisions(); err != nil {
		return r.Snapshot(), fmt.Errorf("tick: %w", err)
	}

	r.removeErased()

	r.elapsed += dt
	if r.timeLimit {
		r.remaining -= dt
	}

	switch {
	case r.timeLimit && r.remaining <= 0:
		r.remaining = 0
		r.status = StatusDefeat
		r.logger.Info("Race lost", log.Duration("elapsed", r.elapsed))
	case len(r.checkpoints) == 0:
		r.status = StatusVictory
		r.logger.Info("Race won", log.Duration("elapsed", r.elapsed))
	}
	if r.status != StatusRunning {
		r.publish(EventFinished, FinishedEvent{Status: r.status, Elapsed: r.elapsed})
	}

	return r.Snapshot(), nil
}

func (r *Race) Snapshot() Snapshot {
	s := Snapshot{
		Status:          r.status,
		Elapsed:         r.elapsed,
		Remaining:       r.remaining,
		Lap:             r.lapsDone,
		Laps:            r.laps,
		CheckPointsLeft: len(r.checkpoints),
		NextCheckPoint:  -1,
		Pickups:         r.pickups,
		Bounces:         r.bounces,
	}
	if cp := r.nextTarget(); cp != nil {
		s.NextCheckPoint = cp.Number()
	}
	if r.car != nil {
		s.CarPosition = r.car.Position()
	}
	return s
}

// Close drops every entity from the collision manager.
func (r *Race) Close() {
	r.manager.RemoveAllObjects()
	r.car = nil
	r.scenery = nil
	r.bonuses = nil
	r.checkpoints = nil
}

func (r *Race) nextTarget() *CheckPoint {
	if r.nextCheckPoint < len(r.checkpoints) {
		return r.checkpoints[r.nextCheckPoint]
	}
	return nil
}

func (r *Race) removeErased() {
	r.bonuses = slices.DeleteFunc(r.bonuses, func(b *TimeBonus) bool {
		if b.Erased() {
			r.manager.RemoveObject(b)
			return true
		}
		return false
	})
	r.checkpoints = slices.DeleteFunc(r.checkpoints, func(cp *CheckPoint) bool {
		if cp.Erased() {
			r.manager.RemoveObject(cp)
			return true
		}
		return false
	})
	if r.nextCheckPoint >= len(r.checkpoints) {
		r.nextCheckPoint = 0
	}
}

// onCarScene puts the car back where it was and bounces it off the obstacle.
func (r *Race) onCarScene(a, b collision.Object) {
	car, ok := a.(*Car)
	if !ok {
		return
	}

	center := worldCenter(car)
	q, err := closestPoint(center, b.Shape())
	if err != nil {
		r.logger.Warn("Cannot bounce car", log.String("obstacle", b.ID()), log.Error(err))
		car.RestorePosition()
		return
	}

	car.RestorePosition()

	normal := center.Sub(q)
	if normal.Len() < 1e-9 {
		normal = car.Velocity().Mul(-1)
	}
	v := car.Velocity()
	if normal.Len() > 0 {
		normal = normal.Normalize()
		if d := v.Dot(normal); d < 0 {
			v = v.Sub(normal.Mul(2 * d))
		}
	}
	car.SetVelocity(v.Mul(r.damping))
	r.bounces++

	r.logger.Debug("Car crashed",
		log.String("obstacle", b.ID()),
		log.Vec3("contact", q),
		log.Vec3("velocity", car.Velocity()),
	)
	r.publish(EventCrash, CrashEvent{Obstacle: b.ID(), Contact: q, Velocity: car.Velocity()})
}

func (r *Race) onCarBonus(_, b collision.Object) {
	bonus, ok := b.(*TimeBonus)
	if !ok || bonus.Erased() {
		return
	}
	if r.timeLimit {
		r.remaining += bonus.Bonus()
	}
	bonus.Erase()
	r.pickups++

	r.logger.Info("Time bonus picked", log.Duration("bonus", bonus.Bonus()), log.Duration("remaining", r.remaining))
	r.publish(EventBonusPicked, BonusEvent{Bonus: bonus.Bonus(), Remaining: r.remaining})
}

func (r *Race) onCarCheckPoint(_, b collision.Object) {
	cp, ok := b.(*CheckPoint)
	if !ok || len(r.checkpoints) == 0 || cp != r.checkpoints[r.nextCheckPoint] {
		return
	}

	cp.PassThrough()
	if !cp.Erased() {
		r.nextCheckPoint++
	}
	lap := false
	if r.nextCheckPoint == len(r.checkpoints) {
		r.nextCheckPoint = 0
		r.lapsDone++
		lap = true
	}

	r.logger.Info("Checkpoint reached",
		log.Int("number", cp.Number()),
		log.Int("laps_to_go", cp.LapsLeft()),
	)
	r.publish(EventCheckPoint, CheckPointEvent{Number: cp.Number(), LapsLeft: cp.LapsLeft()})
	if lap {
		r.publish(EventLap, LapEvent{Lap: r.lapsDone, Laps: r.laps})
	}
}

// worldCenter is the centre of the object's shape in world space.
func worldCenter(o collision.Object) mgl64.Vec3 {
	switch s := o.Shape().(type) {
	case *shape.OrientedBox:
		return physics.TransformPoint(s.Center(), s.Transform())
	case *shape.Sphere:
		return physics.TransformPoint(s.Center(), s.Transform())
	case *shape.AxisAlignedBox:
		lo, hi := intersect.WorldBounds(s)
		return lo.Add(hi).Mul(0.5)
	default:
		return o.Position()
	}
}

// closestPoint returns the point of s nearest to p in world space.
func closestPoint(p mgl64.Vec3, s shape.Shape) (mgl64.Vec3, error) {
	switch s := s.(type) {
	case *shape.OrientedBox:
		return collision.ClosestPointOnOBB(p, s)
	case *shape.AxisAlignedBox:
		return collision.ClosestPointOnOBB(p, intersect.AsOrientedBox(s))
	case *shape.Sphere:
		c := physics.TransformPoint(s.Center(), s.Transform())
		radius := s.Radius() * physics.MaxScale(s.Transform())
		d := p.Sub(c)
		if d.Len() <= radius {
			return p, nil
		}
		return c.Add(d.Normalize().Mul(radius)), nil
	default:
		return p, nil
	}
}
