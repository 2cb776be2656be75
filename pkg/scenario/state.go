// pkg/scenario/state.go
package scenario

import (
	"math"

	"github.com/opd-ai/go-physics2d/pkg/entity"
	"github.com/opd-ai/go-physics2d/pkg/physics"
)

// BodyState is a point-in-time view of one body
type BodyState struct {
	ID       entity.ID        `json:"id"`
	Name     string           `json:"name,omitempty"`
	Kind     entity.Kind      `json:"kind,omitempty"`
	Position physics.Vector2D `json:"position"`
	Velocity physics.Vector2D `json:"velocity"`
	Rotation float64          `json:"rotation"`
	Health   float64          `json:"health"`
	Collided bool             `json:"collided"`
}

// Stats summarises the scene. Energy and momentum only count finite-mass
// bodies.
type Stats struct {
	Ticks      uint64           `json:"ticks"`
	Elapsed    float64          `json:"elapsed"`
	Bodies     int              `json:"bodies"`
	Generators int              `json:"generators"`
	Kinetic    float64          `json:"kinetic"`
	Momentum   physics.Vector2D `json:"momentum"`
	Contacts   int              `json:"contacts"`
}

// Snapshot returns the state of every body in scene order.
func (sc *Scenario) Snapshot() []BodyState {
	bodies := sc.scene.Bodies()
	states := make([]BodyState, len(bodies))
	for i, b := range bodies {
		states[i] = BodyState{
			ID:       b.ID(),
			Name:     sc.names[b.ID()],
			Kind:     b.Kind(),
			Position: b.Centroid(),
			Velocity: b.Velocity(),
			Rotation: b.Rotation(),
			Health:   b.Health(),
			Collided: b.JustCollided(),
		}
	}
	return states
}

// Stats computes the scene summary.
func (sc *Scenario) Stats() Stats {
	st := Stats{
		Ticks:      sc.scene.Ticks(),
		Elapsed:    sc.scene.Elapsed(),
		Bodies:     sc.scene.BodyCount(),
		Generators: sc.scene.GeneratorCount(),
	}
	for _, b := range sc.scene.Bodies() {
		if b.JustCollided() {
			st.Contacts++
		}
		m := b.Mass()
		if math.IsInf(m, 1) {
			continue
		}
		v := b.Velocity()
		st.Kinetic += 0.5 * m * v.LengthSquared()
		st.Momentum = st.Momentum.Add(v.Scale(m))
	}
	return st
}

// ResetContacts clears the just-collided flag on every body. The scene never
// clears it, so callers that report contacts per interval reset it here.
func (sc *Scenario) ResetContacts() {
	for _, b := range sc.scene.Bodies() {
		b.SetJustCollided(false)
	}
}
