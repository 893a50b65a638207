package sim

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/racecollide/internal/core/models"
	"github.com/zeusync/racecollide/internal/core/systems/shape"
)

// Car is the player vehicle. It remembers where it was before the last step so a
// crash can put it back.
type Car struct {
	*models.GameObject

	velocity mgl64.Vec3
	oldPos   mgl64.Vec3
	maxSpeed float64
}

func NewCar(s shape.Shape, position mgl64.Vec3, orientation mgl64.Quat, maxSpeed float64) *Car {
	return &Car{
		GameObject: models.NewGameObject(models.KindCar, ModelCar, s, position, orientation, 1),
		oldPos:     position,
		maxSpeed:   maxSpeed,
	}
}

func (c *Car) Velocity() mgl64.Vec3 { return c.velocity }

// SetVelocity sets the velocity, limited to the car's top speed when it has one.
func (c *Car) SetVelocity(v mgl64.Vec3) {
	if c.maxSpeed > 0 && v.Len() > c.maxSpeed {
		v = v.Normalize().Mul(c.maxSpeed)
	}
	c.velocity = v
}

func (c *Car) OldPosition() mgl64.Vec3 { return c.oldPos }

// SteerTowards points the velocity at target, keeping the current speed or using
// the top speed when the car is at rest.
func (c *Car) SteerTowards(target mgl64.Vec3) {
	dir := target.Sub(c.Position())
	dir[2] = 0
	if dir.Len() == 0 {
		return
	}
	speed := c.velocity.Len()
	if speed == 0 {
		speed = c.maxSpeed
	}
	c.SetVelocity(dir.Normalize().Mul(speed))
}

// Step integrates the position over dt and refreshes the collision shape.
func (c *Car) Step(dt time.Duration) {
	c.oldPos = c.Position()
	c.SetPosition(c.Position().Add(c.velocity.Mul(dt.Seconds())))
	c.Update()
}

// RestorePosition moves the car back to where it was before the last step.
func (c *Car) RestorePosition() {
	c.SetPosition(c.oldPos)
	c.Update()
}

// TimeBonus adds time to the clock when the car picks it up.
type TimeBonus struct {
	*models.GameObject

	bonus time.Duration
}

func NewTimeBonus(s shape.Shape, position mgl64.Vec3, orientation mgl64.Quat, scale float64, bonus time.Duration) *TimeBonus {
	return &TimeBonus{
		GameObject: models.NewGameObject(models.KindTimeBonus, ModelTimeBonus, s, position, orientation, scale),
		bonus:      bonus,
	}
}

func (b *TimeBonus) Bonus() time.Duration { return b.bonus }

// CheckPoint must be crossed in number order; it disappears once it has been
// crossed on every lap.
type CheckPoint struct {
	*models.GameObject

	number     int
	lapCounter int
}

func NewCheckPoint(s shape.Shape, position mgl64.Vec3, orientation mgl64.Quat, number, laps int) *CheckPoint {
	return &CheckPoint{
		GameObject: models.NewGameObject(models.KindCheckPoint, ModelCheckPoint, s, position, orientation, 1),
		number:     number,
		lapCounter: laps,
	}
}

func (c *CheckPoint) Number() int { return c.number }

// LapsLeft is the number of times the checkpoint still has to be crossed.
func (c *CheckPoint) LapsLeft() int { return c.lapCounter }

// PassThrough records a crossing and erases the checkpoint after the last one.
func (c *CheckPoint) PassThrough() {
	c.lapCounter--
	if c.lapCounter <= 0 {
		c.Erase()
	}
}
