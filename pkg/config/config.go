// pkg/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// SimulationConfig describes a scene to build and how long to run it
type SimulationConfig struct {
	Name     string        `json:"name" yaml:"name"`
	TimeStep float64       `json:"timeStep" yaml:"timeStep"`
	Steps    int           `json:"steps" yaml:"steps"`
	Bodies   []BodyConfig  `json:"bodies" yaml:"bodies"`
	Forces   []ForceConfig `json:"forces" yaml:"forces"`
}

// Vec is a 2D vector in configuration files
type Vec struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// BodyConfig contains configuration for a body. Name is how forces refer to
// the body and must be unique within a scenario.
type BodyConfig struct {
	Name            string      `json:"name" yaml:"name"`
	Kind            string      `json:"kind,omitempty" yaml:"kind,omitempty"`
	Shape           ShapeConfig `json:"shape" yaml:"shape"`
	Mass            float64     `json:"mass,omitempty" yaml:"mass,omitempty"`
	Immovable       bool        `json:"immovable,omitempty" yaml:"immovable,omitempty"`
	Position        Vec         `json:"position" yaml:"position"`
	Velocity        Vec         `json:"velocity" yaml:"velocity"`
	Rotation        float64     `json:"rotation,omitempty" yaml:"rotation,omitempty"`
	RotationSpeed   float64     `json:"rotationSpeed,omitempty" yaml:"rotationSpeed,omitempty"`
	Magnitude       float64     `json:"magnitude,omitempty" yaml:"magnitude,omitempty"`
	AlignToVelocity bool        `json:"alignToVelocity,omitempty" yaml:"alignToVelocity,omitempty"`
	Color           string      `json:"color,omitempty" yaml:"color,omitempty"`
	Image           string      `json:"image,omitempty" yaml:"image,omitempty"`
	Health          float64     `json:"health,omitempty" yaml:"health,omitempty"`
}

// Shape types
const (
	ShapeRectangle = "rectangle"
	ShapeRegular   = "regular"
	ShapeTriangle  = "triangle"
	ShapeStar      = "star"
	ShapeVertices  = "vertices"
)

// ShapeConfig selects a shape builder. Only the fields the type uses are
// read; Vertices are relative to the body position.
type ShapeConfig struct {
	Type     string  `json:"type" yaml:"type"`
	Width    float64 `json:"width,omitempty" yaml:"width,omitempty"`
	Height   float64 `json:"height,omitempty" yaml:"height,omitempty"`
	Radius   float64 `json:"radius,omitempty" yaml:"radius,omitempty"`
	Sides    int     `json:"sides,omitempty" yaml:"sides,omitempty"`
	Side     float64 `json:"side,omitempty" yaml:"side,omitempty"`
	Points   int     `json:"points,omitempty" yaml:"points,omitempty"`
	Vertices []Vec   `json:"vertices,omitempty" yaml:"vertices,omitempty"`
}

// Force types
const (
	ForceGravity   = "gravity"
	ForceSpring    = "spring"
	ForceDrag      = "drag"
	ForceCollision = "collision"
)

// Collision responses
const (
	ResponseElastic            = "elastic"
	ResponseDestructive        = "destructive"
	ResponsePartialDestructive = "partial"
	ResponseNone               = "none"
)

// ForceConfig contains configuration for a generator. Constant is G for
// gravity, K for springs and gamma for drag.
//
// With AllPairs set, a gravity or collision generator is created for every
// pair of the listed bodies, or of all bodies when Bodies is empty.
type ForceConfig struct {
	Type        string             `json:"type" yaml:"type"`
	Bodies      []string           `json:"bodies,omitempty" yaml:"bodies,omitempty"`
	AllPairs    bool               `json:"allPairs,omitempty" yaml:"allPairs,omitempty"`
	Constant    float64            `json:"constant,omitempty" yaml:"constant,omitempty"`
	Response    string             `json:"response,omitempty" yaml:"response,omitempty"`
	Restitution float64            `json:"restitution,omitempty" yaml:"restitution,omitempty"`
	Damage      map[string]float64 `json:"damage,omitempty" yaml:"damage,omitempty"`
}

// isYAML reports whether path should be read and written as YAML
func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// LoadConfig loads a configuration from a JSON or, for .yaml and .yml
// files, YAML file.
func LoadConfig(path string) (*SimulationConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config SimulationConfig
	if isYAML(path) {
		err = yaml.Unmarshal(data, &config)
	} else {
		err = json.Unmarshal(data, &config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveConfig saves a configuration to a file, choosing the format from the
// extension as LoadConfig does.
func SaveConfig(config *SimulationConfig, path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(config)
	} else {
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns a default simulation configuration: two squares on
// a spring, one of them pinned.
func DefaultConfig() *SimulationConfig {
	return &SimulationConfig{
		Name:     "default",
		TimeStep: 1.0 / 60.0,
		Steps:    600,
		Bodies: []BodyConfig{
			{
				Name:      "anchor",
				Kind:      "anchor",
				Shape:     ShapeConfig{Type: ShapeRectangle, Width: 10, Height: 10},
				Immovable: true,
				Position:  Vec{X: 0, Y: 0},
				Color:     "#FFFFFF",
			},
			{
				Name:     "bob",
				Kind:     "bob",
				Shape:    ShapeConfig{Type: ShapeRectangle, Width: 20, Height: 20},
				Mass:     10,
				Position: Vec{X: 100, Y: 0},
				Color:    "#3366FF",
			},
		},
		Forces: []ForceConfig{
			{Type: ForceSpring, Bodies: []string{"bob", "anchor"}, Constant: 5},
			{Type: ForceDrag, Bodies: []string{"bob"}, Constant: 0.5},
		},
	}
}
