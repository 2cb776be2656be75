// pkg/scenario/scenario.go
package scenario

import (
	"context"
	"fmt"
	"image/color"
	"math"

	"github.com/opd-ai/go-physics2d/pkg/config"
	"github.com/opd-ai/go-physics2d/pkg/entity"
	"github.com/opd-ai/go-physics2d/pkg/physics"
	"github.com/opd-ai/go-physics2d/pkg/scene"
)

// DefaultColor is used for bodies configured without a color
var DefaultColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// Scenario is a scene built from a configuration, with its bodies still
// reachable by their configured names.
type Scenario struct {
	Name     string
	TimeStep float64
	Steps    int

	scene  *scene.Scene
	bodies map[string]*entity.Body
	names  map[entity.ID]string
}

// Build validates cfg and creates a scene holding its bodies and forces.
// Options are passed through to scene.New.
func Build(cfg *config.SimulationConfig, opts ...scene.Option) (*Scenario, error) {
	if cfg == nil {
		return nil, fmt.Errorf("scenario config is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario %q: %w", cfg.Name, err)
	}

	sc := &Scenario{
		Name:     cfg.Name,
		TimeStep: cfg.TimeStep,
		Steps:    cfg.Steps,
		scene:    scene.New(opts...),
		bodies:   make(map[string]*entity.Body, len(cfg.Bodies)),
		names:    make(map[entity.ID]string, len(cfg.Bodies)),
	}

	for _, bc := range cfg.Bodies {
		body, err := NewBody(bc)
		if err != nil {
			return nil, fmt.Errorf("failed to build body %q: %w", bc.Name, err)
		}
		sc.scene.AddBody(body)
		sc.bodies[bc.Name] = body
		sc.names[body.ID()] = bc.Name
	}

	for i, fc := range cfg.Forces {
		if err := sc.addForce(fc); err != nil {
			return nil, fmt.Errorf("failed to build force %d (%s): %w", i, fc.Type, err)
		}
	}

	return sc, nil
}

// NewBody creates a body from its configuration. Builder shapes are centred
// on Position; explicit vertices are offset by it.
func NewBody(bc config.BodyConfig) (*entity.Body, error) {
	at := physics.Vector2D{X: bc.Position.X, Y: bc.Position.Y}
	shape, err := NewShape(bc.Shape, at)
	if err != nil {
		return nil, err
	}

	mass := bc.Mass
	if bc.Immovable {
		mass = entity.InfiniteMass
	}
	if !(mass > 0) {
		return nil, fmt.Errorf("mass must be positive, got %v", bc.Mass)
	}

	c := DefaultColor
	if bc.Color != "" {
		if c, err = config.ParseColor(bc.Color); err != nil {
			return nil, err
		}
	}

	var tag entity.Tag
	if bc.Kind != "" {
		tag = entity.Kind(bc.Kind)
	}

	body := entity.NewBodyWithTag(shape, mass, c, tag)
	body.SetVelocity(physics.Vector2D{X: bc.Velocity.X, Y: bc.Velocity.Y})
	body.SetRotation(bc.Rotation)
	body.SetRotationSpeed(bc.RotationSpeed)
	body.SetMagnitude(bc.Magnitude)
	body.SetAlignToVelocity(bc.AlignToVelocity)
	body.SetImagePath(bc.Image)
	if bc.Health > 0 {
		body.SetHealth(bc.Health)
	}
	return body, nil
}

// NewShape builds the polygon described by sc around at.
func NewShape(sc config.ShapeConfig, at physics.Vector2D) (physics.Polygon, error) {
	var poly physics.Polygon
	switch sc.Type {
	case config.ShapeRectangle:
		poly = physics.Rectangle(at, sc.Width, sc.Height)
	case config.ShapeRegular:
		if sc.Sides < physics.MinVertices {
			return nil, fmt.Errorf("regular polygon needs at least %d sides, got %d", physics.MinVertices, sc.Sides)
		}
		poly = physics.RegularPolygon(at, sc.Radius, sc.Sides)
	case config.ShapeTriangle:
		poly = physics.Triangle(at, sc.Side)
	case config.ShapeStar:
		if sc.Points < 2 {
			return nil, fmt.Errorf("star needs at least 2 points, got %d", sc.Points)
		}
		poly = physics.Star(at, sc.Radius, sc.Points)
	case config.ShapeVertices:
		poly = make(physics.Polygon, len(sc.Vertices))
		for i, v := range sc.Vertices {
			poly[i] = at.Add(physics.Vector2D{X: v.X, Y: v.Y})
		}
	default:
		return nil, fmt.Errorf("unknown shape type %q", sc.Type)
	}

	if err := poly.Validate(); err != nil {
		return nil, err
	}
	for i, v := range poly {
		if math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsInf(v.X, 0) || math.IsInf(v.Y, 0) {
			return nil, fmt.Errorf("vertex %d is not finite: %v", i, v)
		}
	}
	return poly, nil
}

func (sc *Scenario) addForce(fc config.ForceConfig) error {
	bodies, err := sc.lookup(fc)
	if err != nil {
		return err
	}

	if fc.Type == config.ForceDrag {
		if len(bodies) != 1 {
			return fmt.Errorf("drag needs exactly 1 body, got %d", len(bodies))
		}
		sc.scene.AddDrag(fc.Constant, bodies[0])
		return nil
	}

	var pairs [][2]*entity.Body
	if fc.AllPairs {
		pairs = allPairs(bodies)
	} else {
		if len(bodies) != 2 {
			return fmt.Errorf("%s needs exactly 2 bodies, got %d", fc.Type, len(bodies))
		}
		pairs = [][2]*entity.Body{{bodies[0], bodies[1]}}
	}

	for _, p := range pairs {
		switch fc.Type {
		case config.ForceGravity:
			sc.scene.AddGravity(fc.Constant, p[0], p[1])
		case config.ForceSpring:
			sc.scene.AddSpring(fc.Constant, p[0], p[1])
		case config.ForceCollision:
			response, err := NewResponse(fc)
			if err != nil {
				return err
			}
			sc.scene.AddCollision(p[0], p[1], response)
		default:
			return fmt.Errorf("unknown force type %q", fc.Type)
		}
	}
	return nil
}

// lookup resolves the named bodies of fc, or every body when an all-pairs
// force names none.
func (sc *Scenario) lookup(fc config.ForceConfig) ([]*entity.Body, error) {
	if fc.AllPairs && len(fc.Bodies) == 0 {
		return sc.scene.Bodies(), nil
	}
	bodies := make([]*entity.Body, 0, len(fc.Bodies))
	for _, name := range fc.Bodies {
		b, ok := sc.bodies[name]
		if !ok {
			return nil, fmt.Errorf("unknown body %q", name)
		}
		bodies = append(bodies, b)
	}
	return bodies, nil
}

func allPairs(bodies []*entity.Body) [][2]*entity.Body {
	var pairs [][2]*entity.Body
	for i := range bodies {
		for j := i + 1; j < len(bodies); j++ {
			pairs = append(pairs, [2]*entity.Body{bodies[i], bodies[j]})
		}
	}
	return pairs
}

// NewResponse returns the collision response fc selects. An empty response
// means elastic; "none" returns nil, which only flags the bodies.
func NewResponse(fc config.ForceConfig) (scene.Response, error) {
	switch fc.Response {
	case config.ResponseElastic, "":
		return &scene.Elastic{Restitution: fc.Restitution, ContactDamage: kinds(fc.Damage)}, nil
	case config.ResponseDestructive:
		return scene.Destructive{}, nil
	case config.ResponsePartialDestructive:
		return &scene.PartialDestructive{Damage: kinds(fc.Damage)}, nil
	case config.ResponseNone:
		return nil, nil
	}
	return nil, fmt.Errorf("unknown collision response %q", fc.Response)
}

func kinds(damage map[string]float64) map[entity.Kind]float64 {
	if len(damage) == 0 {
		return nil
	}
	out := make(map[entity.Kind]float64, len(damage))
	for k, v := range damage {
		out[entity.Kind(k)] = v
	}
	return out
}

// Scene returns the scene the scenario drives
func (sc *Scenario) Scene() *scene.Scene {
	return sc.scene
}

// Body returns the body configured under name. Bodies removed from the scene
// are still returned.
func (sc *Scenario) Body(name string) (*entity.Body, bool) {
	b, ok := sc.bodies[name]
	return b, ok
}

// NameOf returns the configured name of the body with id, or "" for bodies
// added after Build.
func (sc *Scenario) NameOf(id entity.ID) string {
	return sc.names[id]
}

// Run ticks the scene Steps times by TimeStep. It stops early with the
// context's error when ctx is cancelled. observe, when not nil, is called
// after every tick with the number of ticks run so far.
func (sc *Scenario) Run(ctx context.Context, observe func(step int)) error {
	for step := 1; step <= sc.Steps; step++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("scenario %q stopped after %d steps: %w", sc.Name, step-1, err)
		}
		sc.scene.Tick(sc.TimeStep)
		if observe != nil {
			observe(step)
		}
	}
	return nil
}
