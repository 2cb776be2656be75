// pkg/scene/response.go
package scene

import (
	"math"

	"github.com/opd-ai/go-physics2d/pkg/entity"
	"github.com/opd-ai/go-physics2d/pkg/physics"
)

// Response handles the start of a contact between a and b. axis is the unit
// contact normal pointing from a toward b. Responses may add impulses, change
// health or mark bodies for removal, but must not add bodies or generators.
type Response interface {
	Respond(a, b *entity.Body, axis physics.Vector2D)
}

// ResponseFunc adapts a function to a Response
type ResponseFunc func(a, b *entity.Body, axis physics.Vector2D)

// Respond calls f(a, b, axis)
func (f ResponseFunc) Respond(a, b *entity.Body, axis physics.Vector2D) {
	f(a, b, axis)
}

// Elastic applies equal and opposite impulses along the contact axis.
// Restitution 1 is perfectly elastic and 0 perfectly inelastic.
type Elastic struct {
	Restitution float64

	// ContactDamage is subtracted from the other body's health when a body
	// of the keyed kind takes part in the contact. Nil disables it.
	ContactDamage map[entity.Kind]float64
}

// Respond implements Response
func (e *Elastic) Respond(a, b *entity.Body, axis physics.Vector2D) {
	if mu, ok := reducedMass(a.Mass(), b.Mass()); ok {
		ua := a.Velocity().Dot(axis)
		ub := b.Velocity().Dot(axis)
		j := axis.Scale(mu * (1 + e.Restitution) * (ub - ua))
		a.AddImpulse(j)
		b.AddImpulse(j.Negate())
	}

	if dmg, ok := e.ContactDamage[a.Kind()]; ok {
		b.SetHealth(b.Health() - dmg)
	}
	if dmg, ok := e.ContactDamage[b.Kind()]; ok {
		a.SetHealth(a.Health() - dmg)
	}
}

// reducedMass returns m1*m2/(m1+m2). Against an immovable body it is the
// finite mass. Two immovable bodies exchange no impulse, so ok is false.
func reducedMass(m1, m2 float64) (mu float64, ok bool) {
	inf1, inf2 := math.IsInf(m1, 1), math.IsInf(m2, 1)
	switch {
	case inf1 && inf2:
		return 0, false
	case inf1:
		return m2, true
	case inf2:
		return m1, true
	}
	return m1 * m2 / (m1 + m2), true
}

// Destructive removes both bodies.
type Destructive struct{}

// Respond implements Response
func (Destructive) Respond(a, b *entity.Body, _ physics.Vector2D) {
	a.Remove()
	b.Remove()
}

// PartialDestructive treats b as a projectile. If b's kind has an entry in
// Damage, a loses that much health and b is removed. Other kinds pass
// through untouched. Removing a when its health runs out is left to the
// application.
type PartialDestructive struct {
	Damage map[entity.Kind]float64
}

// Respond implements Response
func (p *PartialDestructive) Respond(a, b *entity.Body, _ physics.Vector2D) {
	dmg, ok := p.Damage[b.Kind()]
	if !ok {
		return
	}
	a.SetHealth(a.Health() - dmg)
	b.Remove()
}
