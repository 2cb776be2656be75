// pkg/config/validate.go
package config

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// MaxNameLen bounds body names
const MaxNameLen = 64

var validNameChars = regexp.MustCompile(`^[a-zA-Z0-9\-_.]+$`)

// Validate checks the configuration for values the scene builder would
// reject. All problems are reported together.
func (c *SimulationConfig) Validate() error {
	var errs []error

	if !(c.TimeStep > 0) || math.IsInf(c.TimeStep, 1) {
		errs = append(errs, fmt.Errorf("timeStep must be positive, got %v", c.TimeStep))
	}
	if c.Steps < 0 {
		errs = append(errs, fmt.Errorf("steps cannot be negative: %d", c.Steps))
	}

	names := make(map[string]bool, len(c.Bodies))
	for i, b := range c.Bodies {
		if err := b.validate(); err != nil {
			errs = append(errs, fmt.Errorf("body %d: %w", i, err))
		}
		if names[b.Name] {
			errs = append(errs, fmt.Errorf("body %d: duplicate name %q", i, b.Name))
		}
		names[b.Name] = true
	}

	for i, f := range c.Forces {
		if err := f.validate(names); err != nil {
			errs = append(errs, fmt.Errorf("force %d: %w", i, err))
		}
	}

	return errors.Join(errs...)
}

// ValidateBodyName checks that name can be referenced from a force
func ValidateBodyName(name string) error {
	if name == "" {
		return fmt.Errorf("body name cannot be empty")
	}
	if len(name) > MaxNameLen {
		return fmt.Errorf("body name too long: %d characters (max %d)", len(name), MaxNameLen)
	}
	if !validNameChars.MatchString(name) {
		return fmt.Errorf("body name %q contains invalid characters (only alphanumeric, hyphens, underscores and dots allowed)", name)
	}
	return nil
}

func (b BodyConfig) validate() error {
	if err := ValidateBodyName(b.Name); err != nil {
		return err
	}
	if !b.Immovable && !(b.Mass > 0) {
		return fmt.Errorf("%s: mass must be positive unless immovable, got %v", b.Name, b.Mass)
	}
	if b.Health < 0 {
		return fmt.Errorf("%s: health cannot be negative", b.Name)
	}
	if b.Color != "" {
		if _, err := ParseColor(b.Color); err != nil {
			return fmt.Errorf("%s: %w", b.Name, err)
		}
	}
	if err := b.Shape.validate(); err != nil {
		return fmt.Errorf("%s: %w", b.Name, err)
	}
	return nil
}

func (s ShapeConfig) validate() error {
	switch s.Type {
	case ShapeRectangle:
		if !(s.Width > 0) || !(s.Height > 0) {
			return fmt.Errorf("rectangle needs positive width and height")
		}
	case ShapeRegular:
		if !(s.Radius > 0) {
			return fmt.Errorf("regular polygon needs a positive radius")
		}
		if s.Sides < 3 {
			return fmt.Errorf("regular polygon needs at least 3 sides, got %d", s.Sides)
		}
	case ShapeTriangle:
		if !(s.Side > 0) {
			return fmt.Errorf("triangle needs a positive side")
		}
	case ShapeStar:
		if !(s.Radius > 0) {
			return fmt.Errorf("star needs a positive radius")
		}
		if s.Points < 2 {
			return fmt.Errorf("star needs at least 2 points, got %d", s.Points)
		}
	case ShapeVertices:
		if len(s.Vertices) < 3 {
			return fmt.Errorf("polygon needs at least 3 vertices, got %d", len(s.Vertices))
		}
	case "":
		return fmt.Errorf("shape type is required")
	default:
		return fmt.Errorf("unknown shape type %q", s.Type)
	}
	return nil
}

func (f ForceConfig) validate(bodies map[string]bool) error {
	for _, name := range f.Bodies {
		if !bodies[name] {
			return fmt.Errorf("%s references unknown body %q", f.Type, name)
		}
	}

	switch f.Type {
	case ForceGravity, ForceCollision:
		if f.AllPairs {
			break
		}
		if len(f.Bodies) != 2 {
			return fmt.Errorf("%s needs exactly 2 bodies, got %d", f.Type, len(f.Bodies))
		}
	case ForceSpring:
		if f.AllPairs {
			return fmt.Errorf("spring does not support allPairs")
		}
		if len(f.Bodies) != 2 {
			return fmt.Errorf("spring needs exactly 2 bodies, got %d", len(f.Bodies))
		}
	case ForceDrag:
		if len(f.Bodies) != 1 {
			return fmt.Errorf("drag needs exactly 1 body, got %d", len(f.Bodies))
		}
		if f.Constant < 0 {
			return fmt.Errorf("drag coefficient cannot be negative: %v", f.Constant)
		}
	case "":
		return fmt.Errorf("force type is required")
	default:
		return fmt.Errorf("unknown force type %q", f.Type)
	}

	if f.Type == ForceCollision {
		switch f.Response {
		case ResponseElastic, ResponseDestructive, ResponsePartialDestructive, ResponseNone, "":
		default:
			return fmt.Errorf("unknown collision response %q", f.Response)
		}
		if f.Restitution < 0 {
			return fmt.Errorf("restitution cannot be negative: %v", f.Restitution)
		}
	}
	return nil
}

// ParseColor parses "#RRGGBB" or "#RRGGBBAA". Alpha defaults to opaque.
func ParseColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid color %q: want #RRGGBB or #RRGGBBAA", s)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}
