package sim

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/racecollide/internal/core/observability/log"
	"gopkg.in/yaml.v3"
)

// Level describes a track: where the car starts and every placed entity.
//
// Node names follow the scene exporter convention: "car", "scene.<model>",
// "time.<seconds>" and "checkpoint.<number>". Render-only nodes (geometry,
// skybox, terrain, camera) are accepted and ignored.
type Level struct {
	Name  string      `json:"name" yaml:"name"`
	Nodes []LevelNode `json:"nodes" yaml:"nodes"`
}

type LevelNode struct {
	Name       string     `json:"name" yaml:"name"`
	Position   LevelVec3  `json:"position" yaml:"position"`
	Quaternion *LevelQuat `json:"quaternion,omitempty" yaml:"quaternion,omitempty"`
	Scale      float64    `json:"scale,omitempty" yaml:"scale,omitempty"`
}

type LevelVec3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

type LevelQuat struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
	W float64 `json:"w" yaml:"w"`
}

func (n LevelNode) position() mgl64.Vec3 {
	return mgl64.Vec3{n.Position.X, n.Position.Y, n.Position.Z}
}

func (n LevelNode) orientation() mgl64.Quat {
	if n.Quaternion == nil {
		return mgl64.QuatIdent()
	}
	q := n.Quaternion
	return mgl64.Quat{W: q.W, V: mgl64.Vec3{q.X, q.Y, q.Z}}
}

func (n LevelNode) scale() float64 {
	if n.Scale == 0 {
		return 1
	}
	return n.Scale
}

// LoadLevelYAML loads a level from YAML reader.
func LoadLevelYAML(r io.Reader) (*Level, error) {
	var l Level
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&l); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &l, nil
}

// LoadLevelJSON loads a level from JSON reader.
func LoadLevelJSON(r io.Reader) (*Level, error) {
	var l Level
	dec := json.NewDecoder(r)
	if err := dec.Decode(&l); err != nil {
		return nil, err
	}
	return &l, nil
}

// LoadLevelFile loads a level from path, as JSON for a .json extension and YAML otherwise.
func LoadLevelFile(path string) (*Level, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open level: %w", err)
	}
	defer func() { _ = f.Close() }()

	var l *Level
	if strings.EqualFold(filepath.Ext(path), ".json") {
		l, err = LoadLevelJSON(f)
	} else {
		l, err = LoadLevelYAML(f)
	}
	if err != nil {
		return nil, fmt.Errorf("decode level %s: %w", path, err)
	}
	if l.Name == "" {
		l.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return l, nil
}

// Build places every node of the level into race.
func (l *Level) Build(race *Race) error {
	for _, node := range l.Nodes {
		if err := l.buildNode(race, node); err != nil {
			return fmt.Errorf("level %s: node %q: %w", l.Name, node.Name, err)
		}
	}
	return nil
}

func (l *Level) buildNode(race *Race, node LevelNode) error {
	prefix, arg, _ := strings.Cut(node.Name, ".")

	switch prefix {
	case "car":
		return race.SpawnCar(node.position(), node.orientation())
	case "scene":
		if arg == "" {
			return ErrInvalidNode
		}
		return race.AddSceneObject(arg, node.position(), node.orientation(), node.scale())
	case "time":
		seconds, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidNode, err)
		}
		return race.AddTimeBonus(node.position(), node.orientation(), node.scale(), seconds)
	case "checkpoint":
		number, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidNode, err)
		}
		return race.AddCheckPoint(node.position(), node.orientation(), number)
	case "geometry", "skybox", "terrain", "Camera", "camera":
		return nil
	default:
		race.logger.Debug("Ignoring unknown level node", log.String("node", node.Name))
		return nil
	}
}
