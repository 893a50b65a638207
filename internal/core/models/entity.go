package models

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/zeusync/racecollide/internal/core/systems/physics"
	"github.com/zeusync/racecollide/internal/core/systems/shape"
)

// Kind tags what an entity is for gameplay; collision callbacks are keyed by kind pairs.
type Kind uint8

const (
	KindBasic Kind = iota
	KindCar
	KindSceneObject
	KindCheckPoint
	KindTimeBonus
)

func (k Kind) String() string {
	switch k {
	case KindBasic:
		return "basic"
	case KindCar:
		return "car"
	case KindSceneObject:
		return "scene_object"
	case KindCheckPoint:
		return "checkpoint"
	case KindTimeBonus:
		return "time_bonus"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// State marks entities the game loop should drop at the end of the tick.
type State uint8

const (
	StateNormal State = iota
	StateErase
)

// GameObject is a placed entity with an optional collision shape.
type GameObject struct {
	id          string
	kind        Kind
	model       string
	position    mgl64.Vec3
	orientation mgl64.Quat
	scale       float64
	state       State
	shape       shape.Shape
}

// NewGameObject places an entity in the world. s may be nil for purely visual entities;
// it is owned by the object from now on (pass a catalog copy, not a prototype).
func NewGameObject(kind Kind, model string, s shape.Shape, position mgl64.Vec3, orientation mgl64.Quat, scale float64) *GameObject {
	g := &GameObject{
		id:          uuid.NewString(),
		kind:        kind,
		model:       model,
		position:    position,
		orientation: orientation,
		scale:       scale,
		shape:       s,
	}
	g.Update()
	return g
}

func (g *GameObject) ID() string { return g.id }

func (g *GameObject) Kind() Kind { return g.kind }

// Model is the name of the shape/model prototype the object was built from.
func (g *GameObject) Model() string { return g.model }

func (g *GameObject) Position() mgl64.Vec3 { return g.position }

func (g *GameObject) SetPosition(p mgl64.Vec3) { g.position = p }

func (g *GameObject) Orientation() mgl64.Quat { return g.orientation }

func (g *GameObject) SetOrientation(q mgl64.Quat) { g.orientation = q }

func (g *GameObject) Scale() float64 { return g.scale }

func (g *GameObject) SetScale(scale float64) { g.scale = scale }

func (g *GameObject) State() State { return g.state }

// Erase flags the object for removal once the current tick is over.
func (g *GameObject) Erase() { g.state = StateErase }

func (g *GameObject) Erased() bool { return g.state == StateErase }

// Shape returns the collision shape, or nil when the object has none.
func (g *GameObject) Shape() shape.Shape { return g.shape }

// Update refreshes the shape's world transform from the current placement.
// It must run every tick before collisions are checked.
func (g *GameObject) Update() {
	if g.shape == nil {
		return
	}
	g.shape.SetTransform(physics.TRS(g.position, g.orientation, g.scale))
}

// Clone returns a copy with a fresh identity and its own shape.
func (g *GameObject) Clone() *GameObject {
	c := *g
	c.id = uuid.NewString()
	if g.shape != nil {
		c.shape = g.shape.Copy()
	}
	return &c
}
