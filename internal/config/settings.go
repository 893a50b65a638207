// Package config loads the numeric game options the simulation is tuned with.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrInvalidSetting = errors.New("invalid setting")

// Well-known option names.
const (
	CollisionCheckRadius = "colCheckRadius"
	CarMaxSpeed          = "carMaxSpeed"
	CarBounceDamping     = "carBounceDamping"
	RaceTime             = "raceTime"
	RaceLaps             = "raceLaps"
)

// Settings is a flat table of named numeric options. Unknown names read as 0.
type Settings struct {
	values map[string]float64
}

type document struct {
	Options map[string]any `json:"options" yaml:"options"`
}

// New returns settings holding a copy of values.
func New(values map[string]float64) *Settings {
	s := &Settings{values: make(map[string]float64, len(values))}
	for name, value := range values {
		s.values[name] = value
	}
	return s
}

// Get returns the named option, or 0 when it is not set.
func (s *Settings) Get(name string) float64 {
	return s.values[name]
}

// Lookup returns the named option and whether it is set.
func (s *Settings) Lookup(name string) (float64, bool) {
	v, ok := s.values[name]
	return v, ok
}

func (s *Settings) Set(name string, value float64) {
	s.values[name] = value
}

// Names returns the set option names, sorted.
func (s *Settings) Names() []string {
	names := make([]string, 0, len(s.values))
	for name := range s.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadYAML loads settings from YAML reader.
//
//	options:
//	  colCheckRadius: 40
//	  carMaxSpeed: 55.5
func LoadYAML(r io.Reader) (*Settings, error) {
	var d document
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&d); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return fromDocument(d)
}

// LoadJSON loads settings from JSON reader.
func LoadJSON(r io.Reader) (*Settings, error) {
	var d document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&d); err != nil {
		return nil, err
	}
	return fromDocument(d)
}

// LoadFile loads settings from path, as JSON for a .json extension and YAML otherwise.
func LoadFile(path string) (*Settings, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open settings: %w", err)
	}
	defer func() { _ = f.Close() }()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return LoadJSON(f)
	}
	return LoadYAML(f)
}

func fromDocument(d document) (*Settings, error) {
	s := New(nil)
	for name, raw := range d.Options {
		switch v := raw.(type) {
		case int:
			s.values[name] = float64(v)
		case int64:
			s.values[name] = float64(v)
		case uint64:
			s.values[name] = float64(v)
		case float64:
			s.values[name] = v
		default:
			return nil, fmt.Errorf("%w: %s = %v", ErrInvalidSetting, name, raw)
		}
	}
	return s, nil
}
