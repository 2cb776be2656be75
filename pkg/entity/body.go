// pkg/entity/body.go
package entity

import (
	"fmt"
	"image/color"
	"math"

	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-physics2d/pkg/physics"
)

// InfiniteMass marks an immovable body. Forces and impulses have no effect on
// it, though an explicit velocity or magnitude still moves it.
var InfiniteMass = math.Inf(1)

// DefaultHealth is the health a new body starts with.
const DefaultHealth = 10.0

// Body is a rigid polygon constrained to the plane, with uniform density.
// Bodies accumulate forces and impulses during a tick and integrate them in
// Tick. Angular dynamics (torque) are not modelled; rotation is kinematic.
type Body struct {
	basic ecs.BasicEntity

	shape    physics.Polygon
	mass     float64
	centroid physics.Vector2D
	velocity physics.Vector2D
	force    physics.Vector2D
	impulse  physics.Vector2D

	rotation      float64
	rotationSpeed float64
	magnitude     float64
	alignToVel    bool

	color     color.RGBA
	imagePath string
	tag       Tag

	removed  bool
	released bool

	// Application state stored on the body but not interpreted by the core.
	health       float64
	lifetime     float64
	aiMode       int
	aiTime       float64
	justCollided bool
}

// NewBody creates a body at rest from shape. The body takes ownership of the
// shape slice. It panics when shape has fewer than three vertices or mass is
// not positive.
func NewBody(shape physics.Polygon, mass float64, c color.RGBA) *Body {
	return NewBodyWithTag(shape, mass, c, nil)
}

// NewBodyWithTag creates a body at rest carrying tag.
func NewBodyWithTag(shape physics.Polygon, mass float64, c color.RGBA, tag Tag) *Body {
	shape.MustValidate()
	if !(mass > 0) {
		panic(fmt.Sprintf("entity: body mass must be positive, got %v", mass))
	}

	return &Body{
		basic:    nextBasic(),
		shape:    shape,
		mass:     mass,
		centroid: shape.Centroid(),
		color:    c,
		tag:      tag,
		health:   DefaultHealth,
		lifetime: math.Inf(1),
	}
}

// ID returns the body's unique identifier
func (b *Body) ID() ID {
	return ID(b.basic.ID())
}

// GetBasicEntity lets a body join EngoEngine ECS systems.
func (b *Body) GetBasicEntity() *ecs.BasicEntity {
	return &b.basic
}

// Shape returns a copy of the body's current polygon.
func (b *Body) Shape() physics.Polygon {
	return b.shape.Clone()
}

// SetShape replaces the body's polygon, taking ownership of it. The centroid
// is recomputed; the stored rotation is assumed to already match the shape.
func (b *Body) SetShape(shape physics.Polygon) {
	shape.MustValidate()
	b.shape = shape
	b.centroid = shape.Centroid()
}

// Centroid returns the cached center of mass
func (b *Body) Centroid() physics.Vector2D {
	return b.centroid
}

// SetCentroid translates the body so its center of mass lies at x.
func (b *Body) SetCentroid(x physics.Vector2D) {
	b.shape.Translate(x.Sub(b.centroid))
	b.centroid = x
}

// Overlaps runs the separating axis test between b and other without copying
// either shape. The axis points from b toward other.
func (b *Body) Overlaps(other *Body) physics.CollisionResult {
	return physics.CheckCollision(b.shape, other.shape)
}

// Velocity returns the body's velocity
func (b *Body) Velocity() physics.Vector2D {
	return b.velocity
}

// SetVelocity changes the body's velocity
func (b *Body) SetVelocity(v physics.Vector2D) {
	b.velocity = v
}

// Rotation returns the body's absolute orientation in radians
func (b *Body) Rotation() float64 {
	return b.rotation
}

// SetRotation turns the body about its centroid to the absolute angle.
// Positive is counter-clockwise. Setting the current angle again is a no-op.
func (b *Body) SetRotation(angle float64) {
	if delta := angle - b.rotation; delta != 0 {
		b.shape.Rotate(delta, b.centroid)
	}
	b.rotation = angle
}

// RotationSpeed returns the angular rate applied each tick
func (b *Body) RotationSpeed() float64 {
	return b.rotationSpeed
}

// SetRotationSpeed sets the angular rate in radians per second
func (b *Body) SetRotationSpeed(w float64) {
	b.rotationSpeed = w
}

// Magnitude returns the heading speed override, zero when disabled
func (b *Body) Magnitude() float64 {
	return b.magnitude
}

// SetMagnitude forces the body's velocity to magnitude along its heading at
// the end of every tick. Zero disables the override.
func (b *Body) SetMagnitude(magnitude float64) {
	b.magnitude = magnitude
}

// AlignToVelocity reports whether the body turns to face its velocity
func (b *Body) AlignToVelocity() bool {
	return b.alignToVel
}

// SetAlignToVelocity makes the body turn to face its velocity after every
// tick, e.g. for projectiles.
func (b *Body) SetAlignToVelocity(align bool) {
	b.alignToVel = align
}

// Mass returns the body's mass, possibly InfiniteMass
func (b *Body) Mass() float64 {
	return b.mass
}

// InverseMass returns 1/mass, which is zero for an infinite-mass body.
func (b *Body) InverseMass() float64 {
	if math.IsInf(b.mass, 1) {
		return 0
	}
	return 1 / b.mass
}

// CombineMass adds other's mass to b, e.g. when two bodies merge.
func (b *Body) CombineMass(other *Body) {
	b.mass += other.mass
}

// Force returns the force accumulated so far this tick
func (b *Body) Force() physics.Vector2D {
	return b.force
}

// Impulse returns the impulse accumulated so far this tick
func (b *Body) Impulse() physics.Vector2D {
	return b.impulse
}

// AddForce applies a force over the current tick. Forces added during the
// same tick are summed. Position and velocity change only in Tick.
func (b *Body) AddForce(f physics.Vector2D) {
	b.force = b.force.Add(f)
}

// AddImpulse applies an instantaneous change in momentum. Impulses added
// during the same tick are summed.
func (b *Body) AddImpulse(j physics.Vector2D) {
	b.impulse = b.impulse.Add(j)
}

// Color returns the display color
func (b *Body) Color() color.RGBA {
	return b.color
}

// ImagePath returns the sprite hint for renderers, empty if none
func (b *Body) ImagePath() string {
	return b.imagePath
}

// SetImagePath sets the sprite hint for renderers
func (b *Body) SetImagePath(path string) {
	b.imagePath = path
}

// Tag returns the application tag, nil if none
func (b *Body) Tag() Tag {
	return b.tag
}

// SetTag replaces the application tag
func (b *Body) SetTag(tag Tag) {
	b.tag = tag
}

// Kind returns the kind of the body's tag, or NoKind.
func (b *Body) Kind() Kind {
	if b.tag == nil {
		return NoKind
	}
	return b.tag.Kind()
}

// Health returns the body's remaining health. Damage responses lower it.
func (b *Body) Health() float64 { return b.health }

// SetHealth sets the body's health
func (b *Body) SetHealth(health float64) { b.health = health }

// Lifetime returns the seconds the body has left to live; +Inf by default.
func (b *Body) Lifetime() float64 { return b.lifetime }

// SetLifetime sets the body's remaining lifetime in seconds
func (b *Body) SetLifetime(t float64) { b.lifetime = t }

// AIMode returns a caller-defined behaviour mode. The scene never reads it.
func (b *Body) AIMode() int { return b.aiMode }

// SetAIMode sets the caller-defined behaviour mode
func (b *Body) SetAIMode(mode int) { b.aiMode = mode }

// AITime returns a caller-defined behaviour timer.
func (b *Body) AITime() float64 { return b.aiTime }

// SetAITime sets the caller-defined behaviour timer
func (b *Body) SetAITime(t float64) { b.aiTime = t }

// JustCollided reports whether a collision generator saw this body touching
// another during the last tick.
func (b *Body) JustCollided() bool { return b.justCollided }

// SetJustCollided sets or clears the contact flag
func (b *Body) SetJustCollided(c bool) { b.justCollided = c }

// Remove marks the body for removal. The owning scene drops it at the next
// tick. Calling Remove again does nothing.
func (b *Body) Remove() {
	b.removed = true
}

// Removed reports whether Remove has been called
func (b *Body) Removed() bool {
	return b.removed
}

// Release frees the body's tag resources once. The scene calls it when the
// body is purged.
func (b *Body) Release() {
	if b.released {
		return
	}
	b.released = true
	if r, ok := b.tag.(Releaser); ok {
		r.Release()
	}
}

// Tick advances the body by dt seconds using the forces and impulses
// accumulated since the last tick, then clears them.
//
// The shape moves by the average of the velocities before and after the
// update, which keeps oscillators such as springs from gaining energy.
func (b *Body) Tick(dt float64) {
	old := b.velocity

	// Infinite mass ignores force and impulse entirely, even unbounded ones.
	v := old
	if inv := b.InverseMass(); inv != 0 {
		v = v.Add(b.force.Scale(inv * dt))
		v = v.Add(b.impulse.Scale(inv))
	}
	b.velocity = v

	avg := old.Add(v).Scale(0.5)
	b.shape.Translate(avg.Scale(dt))
	b.centroid = b.shape.Centroid()

	b.SetRotation(b.rotation + b.rotationSpeed*dt)

	// Takes effect from the next tick; this tick's translation is done.
	if b.magnitude != 0 {
		b.velocity = physics.FromAngle(b.rotation, b.magnitude)
	}

	if b.alignToVel && b.velocity.LengthSquared() > 0 {
		b.SetRotation(b.velocity.Angle())
	}

	b.force = physics.Zero
	b.impulse = physics.Zero
}
