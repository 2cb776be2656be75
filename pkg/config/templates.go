// pkg/config/templates.go
package config

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"sort"
)

// ScenarioTemplate is a named, ready to run configuration
type ScenarioTemplate struct {
	Name        string
	Description string
	build       func() *SimulationConfig
}

var scenarioTemplates = map[string]ScenarioTemplate{
	"default": {
		Name:        "Default",
		Description: "A damped square on a spring tied to a pinned anchor",
		build:       DefaultConfig,
	},
	"bounce": {
		Name:        "Bounce",
		Description: "A spinning star bouncing elastically inside four immovable walls",
		build:       bounceScenario,
	},
	"damping": {
		Name:        "Damping",
		Description: "A row of pellets on springs with drag, settling onto a line",
		build:       dampingScenario,
	},
	"nbodies": {
		Name:        "N-Bodies",
		Description: "Stars of random mass attracting each other pairwise",
		build:       nbodiesScenario,
	},
	"gallery": {
		Name:        "Shooting Gallery",
		Description: "Bullets fired at targets that lose health and consume them",
		build:       galleryScenario,
	},
}

// GetScenarioTemplate returns a fresh copy of the named template, or nil.
func GetScenarioTemplate(name string) *SimulationConfig {
	tmpl, ok := scenarioTemplates[name]
	if !ok {
		return nil
	}
	return tmpl.build()
}

// ListScenarioTemplates returns template keys mapped to their descriptions
func ListScenarioTemplates() map[string]string {
	out := make(map[string]string, len(scenarioTemplates))
	for key, tmpl := range scenarioTemplates {
		out[key] = tmpl.Description
	}
	return out
}

// ApplyScenarioTemplate replaces the bodies and forces of config with those
// of the named template. TimeStep and Steps are only filled in when unset.
func ApplyScenarioTemplate(config *SimulationConfig, name string) error {
	tmpl := GetScenarioTemplate(name)
	if tmpl == nil {
		return fmt.Errorf("unknown scenario template: %s", name)
	}

	config.Name = tmpl.Name
	config.Bodies = tmpl.Bodies
	config.Forces = tmpl.Forces
	if config.TimeStep == 0 {
		config.TimeStep = tmpl.TimeStep
	}
	if config.Steps == 0 {
		config.Steps = tmpl.Steps
	}
	return nil
}

// LoadConfigWithTemplate loads path and applies the named template on top.
// An empty path or a missing file is not an error; the template is applied
// to an empty configuration instead.
func LoadConfigWithTemplate(path, template string) (*SimulationConfig, error) {
	config := &SimulationConfig{}
	if path != "" {
		loaded, err := LoadConfig(path)
		switch {
		case err == nil:
			config = loaded
		case !errors.Is(err, os.ErrNotExist):
			return nil, err
		}
	}

	if template != "" {
		if err := ApplyScenarioTemplate(config, template); err != nil {
			return nil, err
		}
	}
	return config, nil
}

// ScenarioTemplateNames returns the template keys in sorted order
func ScenarioTemplateNames() []string {
	names := make([]string, 0, len(scenarioTemplates))
	for key := range scenarioTemplates {
		names = append(names, key)
	}
	sort.Strings(names)
	return names
}

func bounceScenario() *SimulationConfig {
	const (
		width, height = 1000.0, 500.0
		wall          = 20.0
	)
	walls := []BodyConfig{
		{Name: "floor", Position: Vec{X: width / 2, Y: -wall / 2}, Shape: ShapeConfig{Type: ShapeRectangle, Width: width + 2*wall, Height: wall}},
		{Name: "ceiling", Position: Vec{X: width / 2, Y: height + wall/2}, Shape: ShapeConfig{Type: ShapeRectangle, Width: width + 2*wall, Height: wall}},
		{Name: "left", Position: Vec{X: -wall / 2, Y: height / 2}, Shape: ShapeConfig{Type: ShapeRectangle, Width: wall, Height: height}},
		{Name: "right", Position: Vec{X: width + wall/2, Y: height / 2}, Shape: ShapeConfig{Type: ShapeRectangle, Width: wall, Height: height}},
	}

	cfg := &SimulationConfig{
		Name:     "bounce",
		TimeStep: 1.0 / 60.0,
		Steps:    1200,
	}
	star := BodyConfig{
		Name:          "star",
		Kind:          "star",
		Shape:         ShapeConfig{Type: ShapeStar, Radius: 40, Points: 5},
		Mass:          1,
		Position:      Vec{X: width / 2, Y: height / 2},
		Velocity:      Vec{X: 180, Y: 120},
		RotationSpeed: math.Pi / 2,
		Color:         "#FFCC00",
	}
	cfg.Bodies = append(cfg.Bodies, star)
	for _, w := range walls {
		w.Kind = "wall"
		w.Immovable = true
		w.Color = "#808080"
		cfg.Bodies = append(cfg.Bodies, w)
		cfg.Forces = append(cfg.Forces, ForceConfig{
			Type:        ForceCollision,
			Bodies:      []string{star.Name, w.Name},
			Response:    ResponseElastic,
			Restitution: 1,
		})
	}
	return cfg
}

func dampingScenario() *SimulationConfig {
	const (
		count  = 20
		width  = 1000.0
		height = 500.0
	)
	cfg := &SimulationConfig{
		Name:     "damping",
		TimeStep: 1.0 / 60.0,
		Steps:    1800,
	}
	for i := 0; i < count; i++ {
		x := float64(i) * width / count
		pellet := fmt.Sprintf("pellet-%d", i)
		anchor := fmt.Sprintf("anchor-%d", i)
		shade := uint8(255 * i / count)
		cfg.Bodies = append(cfg.Bodies,
			BodyConfig{
				Name:     pellet,
				Kind:     "pellet",
				Shape:    ShapeConfig{Type: ShapeRegular, Radius: 10, Sides: 18},
				Mass:     15,
				Position: Vec{X: x, Y: height/2 + height/2*math.Cos(float64(i)*2*math.Pi/20)},
				Color:    fmt.Sprintf("#%02X00%02X", 128+shade/2, 255-shade),
			},
			BodyConfig{
				Name:      anchor,
				Kind:      "anchor",
				Shape:     ShapeConfig{Type: ShapeRegular, Radius: 0.1, Sides: 18},
				Immovable: true,
				Position:  Vec{X: x, Y: height / 2},
				Color:     "#FFFFFF",
			},
		)
		cfg.Forces = append(cfg.Forces,
			ForceConfig{Type: ForceSpring, Bodies: []string{pellet, anchor}, Constant: 100},
			ForceConfig{Type: ForceDrag, Bodies: []string{pellet}, Constant: 2.5},
		)
	}
	return cfg
}

func nbodiesScenario() *SimulationConfig {
	const (
		count  = 30
		width  = 1000.0
		height = 500.0
	)
	rng := rand.New(rand.NewPCG(1, 2))
	between := func(lo, hi float64) float64 { return lo + rng.Float64()*(hi-lo) }

	cfg := &SimulationConfig{
		Name:     "nbodies",
		TimeStep: 1.0 / 60.0,
		Steps:    1200,
	}
	for i := 0; i < count; i++ {
		cfg.Bodies = append(cfg.Bodies, BodyConfig{
			Name:     fmt.Sprintf("star-%d", i),
			Kind:     "star",
			Shape:    ShapeConfig{Type: ShapeStar, Radius: between(10, 30), Points: 4},
			Mass:     between(5, 20),
			Position: Vec{X: between(0, width), Y: between(0, height)},
			Color:    fmt.Sprintf("#%02X%02X%02X", rng.IntN(256), rng.IntN(256), rng.IntN(256)),
		})
	}
	cfg.Forces = []ForceConfig{{Type: ForceGravity, AllPairs: true, Constant: 500}}
	return cfg
}

func galleryScenario() *SimulationConfig {
	damage := map[string]float64{"bullet": 10, "sniper": 25, "gatling": 5}
	cfg := &SimulationConfig{
		Name:     "gallery",
		TimeStep: 1.0 / 60.0,
		Steps:    600,
	}

	targets := []string{"target-0", "target-1", "target-2"}
	for i, name := range targets {
		cfg.Bodies = append(cfg.Bodies, BodyConfig{
			Name:     name,
			Kind:     "target",
			Shape:    ShapeConfig{Type: ShapeTriangle, Side: 40},
			Mass:     50,
			Position: Vec{X: 800, Y: 100 + float64(i)*150},
			Color:    "#CC3333",
			Health:   30,
		})
	}

	shots := []struct{ kind, color string }{{"bullet", "#FFFFFF"}, {"sniper", "#33CCFF"}, {"gatling", "#FFCC33"}}
	for i, shot := range shots {
		name := fmt.Sprintf("%s-%d", shot.kind, i)
		cfg.Bodies = append(cfg.Bodies, BodyConfig{
			Name:            name,
			Kind:            shot.kind,
			Shape:           ShapeConfig{Type: ShapeRectangle, Width: 8, Height: 3},
			Mass:            0.1,
			Position:        Vec{X: 100, Y: 100 + float64(i)*150},
			Velocity:        Vec{X: 400},
			AlignToVelocity: true,
			Color:           shot.color,
		})
		cfg.Forces = append(cfg.Forces, ForceConfig{
			Type:     ForceCollision,
			Bodies:   []string{targets[i], name},
			Response: ResponsePartialDestructive,
			Damage:   damage,
		})
	}
	return cfg
}
