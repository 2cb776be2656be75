// pkg/scene/generator.go
package scene

import (
	"math"

	"github.com/opd-ai/go-physics2d/pkg/entity"
	"github.com/opd-ai/go-physics2d/pkg/event"
)

// MinGravityDistance is the centroid separation below which gravity is not
// applied, keeping the force finite when two bodies coincide.
const MinGravityDistance = 5.0

// Generator is bound to one or two bodies and adds forces or impulses to
// them once per tick. The set of generators is closed: Gravity, Spring, Drag
// and Collision. Custom contact behavior plugs in through a Response.
type Generator interface {
	// Name identifies the generator kind in logs and events.
	Name() string
	// Bodies returns the IDs of the bound bodies, in binding order.
	Bodies() []entity.ID

	// apply runs one invocation. bodies matches Bodies() and every body
	// in it is live.
	apply(s *Scene, bodies []*entity.Body)
}

// Gravity is Newtonian attraction between A and B with constant G. When one
// body has infinite mass it acts as a fixed attractor and the pull uses only
// the finite mass; two infinite masses exert nothing on each other.
type Gravity struct {
	G    float64
	A, B entity.ID
}

func (g *Gravity) Name() string        { return "gravity" }
func (g *Gravity) Bodies() []entity.ID { return []entity.ID{g.A, g.B} }

func (g *Gravity) apply(_ *Scene, bodies []*entity.Body) {
	a, b := bodies[0], bodies[1]
	between := b.Centroid().Sub(a.Centroid())
	distance := between.Length()
	if distance < MinGravityDistance {
		return
	}

	magnitude := g.G * gravitatingMass(a.Mass(), b.Mass()) / (distance * distance)
	if magnitude == 0 {
		return
	}
	force := between.Scale(magnitude / distance)
	a.AddForce(force)
	b.AddForce(force.Negate())
}

// gravitatingMass returns the mass product for gravity, dropping an
// infinite factor. It is 0 when both masses are infinite.
func gravitatingMass(ma, mb float64) float64 {
	infA, infB := math.IsInf(ma, 1), math.IsInf(mb, 1)
	switch {
	case infA && infB:
		return 0
	case infA:
		return mb
	case infB:
		return ma
	}
	return ma * mb
}

// Spring is a Hooke's law spring of rest length zero between A and B.
type Spring struct {
	K    float64
	A, B entity.ID
}

func (sp *Spring) Name() string        { return "spring" }
func (sp *Spring) Bodies() []entity.ID { return []entity.ID{sp.A, sp.B} }

func (sp *Spring) apply(_ *Scene, bodies []*entity.Body) {
	a, b := bodies[0], bodies[1]
	// K*distance along the unit vector reduces to K*between, which is also
	// well defined when the centroids coincide.
	force := b.Centroid().Sub(a.Centroid()).Scale(sp.K)
	a.AddForce(force)
	b.AddForce(force.Negate())
}

// Drag is linear drag on a single body, F = -Gamma*v.
type Drag struct {
	Gamma float64
	Body  entity.ID
}

func (d *Drag) Name() string        { return "drag" }
func (d *Drag) Bodies() []entity.ID { return []entity.ID{d.Body} }

func (d *Drag) apply(_ *Scene, bodies []*entity.Body) {
	b := bodies[0]
	b.AddForce(b.Velocity().Scale(-d.Gamma))
}

// Collision tests A and B for overlap every tick. While they overlap both
// bodies are flagged as just collided, and Response runs once per contact:
// on the tick the overlap begins. It runs again only after the bodies have
// separated and touched anew.
type Collision struct {
	A, B     entity.ID
	Response Response

	touching bool
}

func (c *Collision) Name() string        { return "collision" }
func (c *Collision) Bodies() []entity.ID { return []entity.ID{c.A, c.B} }

// Touching reports whether the bodies overlapped at the last invocation.
func (c *Collision) Touching() bool {
	return c.touching
}

func (c *Collision) apply(s *Scene, bodies []*entity.Body) {
	a, b := bodies[0], bodies[1]
	result := a.Overlaps(b)
	if !result.Collided {
		c.touching = false
		return
	}

	a.SetJustCollided(true)
	b.SetJustCollided(true)
	if c.touching {
		return
	}
	c.touching = true

	s.queue(event.NewContactEvent(s, a.ID(), b.ID(), result.Axis))
	if c.Response != nil {
		c.Response.Respond(a, b, result.Axis)
	}
}

// AddGravity binds a gravity generator to a and b.
func (s *Scene) AddGravity(g float64, a, b *entity.Body) *Gravity {
	gen := &Gravity{G: g, A: a.ID(), B: b.ID()}
	s.AddGenerator(gen)
	return gen
}

// AddSpring binds a spring generator to a and b.
func (s *Scene) AddSpring(k float64, a, b *entity.Body) *Spring {
	gen := &Spring{K: k, A: a.ID(), B: b.ID()}
	s.AddGenerator(gen)
	return gen
}

// AddDrag binds a drag generator to body.
func (s *Scene) AddDrag(gamma float64, body *entity.Body) *Drag {
	gen := &Drag{Gamma: gamma, Body: body.ID()}
	s.AddGenerator(gen)
	return gen
}

// AddCollision binds a collision generator running response to a and b.
func (s *Scene) AddCollision(a, b *entity.Body, response Response) *Collision {
	gen := &Collision{A: a.ID(), B: b.ID(), Response: response}
	s.AddGenerator(gen)
	return gen
}

// AddPhysicsCollision makes a and b bounce off each other with the given
// coefficient of restitution.
func (s *Scene) AddPhysicsCollision(restitution float64, a, b *entity.Body) *Collision {
	return s.AddCollision(a, b, &Elastic{Restitution: restitution})
}

// AddDestructiveCollision removes both a and b when they touch.
func (s *Scene) AddDestructiveCollision(a, b *entity.Body) *Collision {
	return s.AddCollision(a, b, Destructive{})
}

// AddPartialDestructiveCollision lets b damage a and be consumed, if b's kind
// has an entry in damage.
func (s *Scene) AddPartialDestructiveCollision(a, b *entity.Body, damage map[entity.Kind]float64) *Collision {
	return s.AddCollision(a, b, &PartialDestructive{Damage: damage})
}
