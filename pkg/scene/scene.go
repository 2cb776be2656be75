// pkg/scene/scene.go
package scene

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/opd-ai/go-physics2d/pkg/entity"
	"github.com/opd-ai/go-physics2d/pkg/event"
	"github.com/opd-ai/go-physics2d/pkg/logging"
)

// Scene owns a set of bodies and the generators acting on them. Bodies are
// traversed in insertion order and generators run in registration order.
//
// A Scene is not safe for concurrent use. Callers drive it from one goroutine,
// calling Tick once per frame and mutating bodies only between ticks.
type Scene struct {
	bodies     []*entity.Body
	byID       map[entity.ID]*entity.Body
	generators []Generator

	ctx     context.Context
	logger  *logging.Logger
	bus     *event.Bus
	pending []event.Event

	locked  bool
	ticks   uint64
	elapsed float64
}

// Option configures a Scene
type Option func(*Scene)

// WithLogger sets the logger used for purge and tick diagnostics.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Scene) {
		s.logger = logger
	}
}

// WithEventBus publishes body, generator and contact events on bus.
func WithEventBus(bus *event.Bus) Option {
	return func(s *Scene) {
		s.bus = bus
	}
}

// WithContext sets the context passed to the logger, typically one carrying
// a run ID.
func WithContext(ctx context.Context) Option {
	return func(s *Scene) {
		s.ctx = ctx
	}
}

// New creates an empty scene
func New(opts ...Option) *Scene {
	s := &Scene{
		byID:   make(map[entity.ID]*entity.Body),
		ctx:    context.Background(),
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EventBus returns the bus events are published on, or nil.
func (s *Scene) EventBus() *event.Bus {
	return s.bus
}

// AddBody hands ownership of b to the scene and returns its ID.
func (s *Scene) AddBody(b *entity.Body) entity.ID {
	s.mustBeUnlocked("AddBody")
	if b == nil {
		panic("scene: AddBody called with nil body")
	}
	id := b.ID()
	if _, exists := s.byID[id]; exists {
		panic(fmt.Sprintf("scene: body %d added twice", id))
	}

	s.bodies = append(s.bodies, b)
	s.byID[id] = b

	if s.bus != nil {
		s.bus.Publish(event.NewBodyEvent(event.BodyAdded, s, b))
	}
	return id
}

// BodyCount returns the number of bodies, including ones marked for removal
// that have not been purged yet.
func (s *Scene) BodyCount() int {
	return len(s.bodies)
}

// Body returns the body at index i. It panics if i is out of range.
func (s *Scene) Body(i int) *entity.Body {
	if i < 0 || i >= len(s.bodies) {
		panic(fmt.Sprintf("scene: body index %d out of range [0, %d)", i, len(s.bodies)))
	}
	return s.bodies[i]
}

// BodyByID looks up a body by ID
func (s *Scene) BodyByID(id entity.ID) (*entity.Body, bool) {
	b, ok := s.byID[id]
	return b, ok
}

// Bodies returns a snapshot of the body list in traversal order.
func (s *Scene) Bodies() []*entity.Body {
	out := make([]*entity.Body, len(s.bodies))
	copy(out, s.bodies)
	return out
}

// RemoveBody marks the body at index i for removal at the next tick.
func (s *Scene) RemoveBody(i int) {
	s.Body(i).Remove()
}

// AddGenerator registers g. Every body g is bound to must already belong to
// the scene.
func (s *Scene) AddGenerator(g Generator) {
	s.mustBeUnlocked("AddGenerator")
	ids := g.Bodies()
	if len(ids) == 0 {
		panic(fmt.Sprintf("scene: %s generator is not bound to any body", g.Name()))
	}
	for _, id := range ids {
		if _, ok := s.byID[id]; !ok {
			panic(fmt.Sprintf("scene: %s generator bound to unknown body %d", g.Name(), id))
		}
	}
	s.generators = append(s.generators, g)
}

// GeneratorCount returns the number of registered generators
func (s *Scene) GeneratorCount() int {
	return len(s.generators)
}

// Ticks returns how many times Tick has run
func (s *Scene) Ticks() uint64 {
	return s.ticks
}

// Elapsed returns the simulated time in seconds
func (s *Scene) Elapsed() float64 {
	return s.elapsed
}

// Tick advances the simulation by dt seconds. Generators run first, then
// generators bound to removed bodies are dropped, then removed bodies are
// released while the rest are integrated. Events raised during the tick are
// published once it has finished, so handlers may add bodies or generators.
func (s *Scene) Tick(dt float64) {
	s.step(dt)
	s.flushEvents()
}

func (s *Scene) step(dt float64) {
	s.locked = true
	defer func() { s.locked = false }()

	s.invokeGenerators()
	droppedGenerators := s.purgeGenerators()
	droppedBodies := s.advanceBodies(dt)

	s.ticks++
	s.elapsed += dt

	if !s.logger.Enabled(s.ctx, slog.LevelDebug) {
		return
	}
	s.logger.Debug(s.ctx, "scene ticked",
		"tick", s.ticks,
		"dt", dt,
		"bodies", len(s.bodies),
		"generators", len(s.generators),
		"bodies_removed", droppedBodies,
		"generators_removed", droppedGenerators,
	)
}

// invokeGenerators runs every generator once. Generators touching a body
// already marked for removal are skipped; they are purged next.
func (s *Scene) invokeGenerators() {
	for _, g := range s.generators {
		bodies, live := s.resolve(g)
		if !live {
			continue
		}
		g.apply(s, bodies)
	}
}

func (s *Scene) purgeGenerators() int {
	kept := s.generators[:0]
	dropped := 0
	for _, g := range s.generators {
		if _, live := s.resolve(g); live {
			kept = append(kept, g)
			continue
		}
		dropped++
		s.logger.Debug(s.ctx, "generator purged", "generator", g.Name(), "bodies", fmt.Sprint(g.Bodies()))
		s.queue(event.NewGeneratorEvent(s, g.Name(), g.Bodies()))
	}
	clear(s.generators[len(kept):])
	s.generators = kept
	return dropped
}

func (s *Scene) advanceBodies(dt float64) int {
	kept := s.bodies[:0]
	dropped := 0
	for _, b := range s.bodies {
		if b.Removed() {
			dropped++
			s.queue(event.NewBodyEvent(event.BodyRemoved, s, b))
			delete(s.byID, b.ID())
			b.Release()
			s.logger.Debug(s.ctx, "body purged", "body", uint64(b.ID()), "kind", string(b.Kind()))
			continue
		}
		b.Tick(dt)
		kept = append(kept, b)
	}
	clear(s.bodies[len(kept):])
	s.bodies = kept
	return dropped
}

// resolve maps a generator's body IDs to bodies. live is false when any of
// them is gone or marked for removal.
func (s *Scene) resolve(g Generator) (bodies []*entity.Body, live bool) {
	ids := g.Bodies()
	bodies = make([]*entity.Body, len(ids))
	for i, id := range ids {
		b, ok := s.byID[id]
		if !ok || b.Removed() {
			return nil, false
		}
		bodies[i] = b
	}
	return bodies, true
}

// Clear releases every body and drops every generator.
func (s *Scene) Clear() {
	s.mustBeUnlocked("Clear")
	for _, b := range s.bodies {
		b.Release()
	}
	clear(s.bodies)
	s.bodies = s.bodies[:0]
	clear(s.generators)
	s.generators = s.generators[:0]
	s.byID = make(map[entity.ID]*entity.Body)
	s.pending = nil
}

func (s *Scene) queue(e event.Event) {
	if s.bus != nil {
		s.pending = append(s.pending, e)
	}
}

func (s *Scene) flushEvents() {
	if len(s.pending) == 0 {
		return
	}
	pending := s.pending
	s.pending = nil
	for _, e := range pending {
		s.bus.Publish(e)
	}
}

func (s *Scene) mustBeUnlocked(op string) {
	if s.locked {
		panic(fmt.Sprintf("scene: %s called during Tick", op))
	}
}
