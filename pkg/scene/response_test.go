// pkg/scene/response_test.go
package scene

import (
	"image/color"
	"math"
	"testing"

	"github.com/opd-ai/go-physics2d/pkg/entity"
	"github.com/opd-ai/go-physics2d/pkg/physics"
)

func kinded(x, y, mass float64, kind entity.Kind) *entity.Body {
	return entity.NewBodyWithTag(physics.Rectangle(physics.Vector2D{X: x, Y: y}, 2, 2), mass, color.RGBA{}, kind)
}

func TestReducedMass(t *testing.T) {
	inf := entity.InfiniteMass
	tests := []struct {
		name   string
		m1, m2 float64
		want   float64
		ok     bool
	}{
		{"equal", 2, 2, 1, true},
		{"unequal", 1, 3, 0.75, true},
		{"first infinite", inf, 4, 4, true},
		{"second infinite", 5, inf, 5, true},
		{"both infinite", inf, inf, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := reducedMass(tt.m1, tt.m2)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if math.Abs(got-tt.want) > epsilon {
				t.Errorf("reducedMass(%v, %v) = %v, want %v", tt.m1, tt.m2, got, tt.want)
			}
		})
	}
}

func TestElastic_Impulse(t *testing.T) {
	inf := entity.InfiniteMass
	axis := physics.Vector2D{X: 1, Y: 0}
	tests := []struct {
		name        string
		ma, mb      float64
		va, vb      float64
		restitution float64
		wantA       float64
	}{
		// J = mu(1+e)(ub-ua); a receives +J along the axis.
		{"equal masses head on", 1, 1, 1, -1, 1, -2},
		{"perfectly inelastic", 1, 1, 1, -1, 0, -1},
		{"ball into wall", 2, inf, 3, 0, 1, -12},
		{"wall into ball", inf, 2, 0, -3, 1, -12},
		{"both immovable", inf, inf, 1, -1, 1, 0},
		{"separating still gets impulse", 1, 1, -1, 1, 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := square(0, 0, 2, tt.ma)
			b := square(1, 0, 2, tt.mb)
			a.SetVelocity(physics.Vector2D{X: tt.va})
			b.SetVelocity(physics.Vector2D{X: tt.vb})

			(&Elastic{Restitution: tt.restitution}).Respond(a, b, axis)

			if math.Abs(a.Impulse().X-tt.wantA) > epsilon || a.Impulse().Y != 0 {
				t.Errorf("impulse on a = %v, want (%v, 0)", a.Impulse(), tt.wantA)
			}
			if a.Impulse() != b.Impulse().Negate() {
				t.Errorf("impulses not opposite: a=%v b=%v", a.Impulse(), b.Impulse())
			}
		})
	}
}

func TestElastic_EqualMassesSwapVelocities(t *testing.T) {
	s := New()
	a := square(0, 0, 2, 1)
	b := square(1.5, 0, 2, 1)
	a.SetVelocity(physics.Vector2D{X: 1})
	b.SetVelocity(physics.Vector2D{X: -1})
	s.AddBody(a)
	s.AddBody(b)
	s.AddPhysicsCollision(1, a, b)

	s.Tick(0.01)

	if !vecClose(a.Velocity(), physics.Vector2D{X: -1}) {
		t.Errorf("a velocity = %v, want (-1, 0)", a.Velocity())
	}
	if !vecClose(b.Velocity(), physics.Vector2D{X: 1}) {
		t.Errorf("b velocity = %v, want (1, 0)", b.Velocity())
	}
}

func TestElastic_BounceOffImmovableWall(t *testing.T) {
	s := New()
	ball := square(0, 0, 2, 3)
	wall := square(1.8, 0, 2, entity.InfiniteMass)
	ball.SetVelocity(physics.Vector2D{X: 4})
	s.AddBody(ball)
	s.AddBody(wall)
	s.AddPhysicsCollision(0.5, ball, wall)

	s.Tick(0.01)

	if !vecClose(ball.Velocity(), physics.Vector2D{X: -2}) {
		t.Errorf("ball velocity = %v, want (-2, 0)", ball.Velocity())
	}
	if wall.Velocity() != physics.Zero {
		t.Errorf("wall moved with velocity %v", wall.Velocity())
	}
}

func TestElastic_ContactDamage(t *testing.T) {
	tests := []struct {
		name         string
		kindA, kindB entity.Kind
		healthA, hpB float64
	}{
		{"spike hurts the other body", "spike", "ship", entity.DefaultHealth, entity.DefaultHealth - 3},
		{"other body hurts a", "ship", "spike", entity.DefaultHealth - 3, entity.DefaultHealth},
		{"no damaging kinds", "ship", "ship", entity.DefaultHealth, entity.DefaultHealth},
		{"both damaging", "spike", "spike", entity.DefaultHealth - 3, entity.DefaultHealth - 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := kinded(0, 0, 1, tt.kindA)
			b := kinded(1, 0, 1, tt.kindB)
			e := &Elastic{Restitution: 1, ContactDamage: map[entity.Kind]float64{"spike": 3}}

			e.Respond(a, b, physics.Vector2D{X: 1})

			if a.Health() != tt.healthA {
				t.Errorf("a health = %v, want %v", a.Health(), tt.healthA)
			}
			if b.Health() != tt.hpB {
				t.Errorf("b health = %v, want %v", b.Health(), tt.hpB)
			}
		})
	}
}

func TestDestructive_RemovesBoth(t *testing.T) {
	a := square(0, 0, 2, 1)
	b := square(1, 0, 2, 1)

	Destructive{}.Respond(a, b, physics.Vector2D{X: 1})

	if !a.Removed() || !b.Removed() {
		t.Errorf("Removed = %v, %v; want both true", a.Removed(), b.Removed())
	}
}

func TestPartialDestructive(t *testing.T) {
	damage := map[entity.Kind]float64{"bullet": 10, "sniper": 25, "gatling": 5}
	tests := []struct {
		name        string
		kind        entity.Kind
		wantHealth  float64
		wantRemoved bool
	}{
		{"bullet", "bullet", entity.DefaultHealth - 10, true},
		{"sniper bullet", "sniper", entity.DefaultHealth - 25, true},
		{"gatling bullet", "gatling", entity.DefaultHealth - 5, true},
		{"not a projectile", "asteroid", entity.DefaultHealth, false},
		{"untagged", entity.NoKind, entity.DefaultHealth, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := kinded(0, 0, 1, "ship")
			projectile := kinded(1, 0, 1, tt.kind)

			(&PartialDestructive{Damage: damage}).Respond(target, projectile, physics.Vector2D{X: 1})

			if target.Health() != tt.wantHealth {
				t.Errorf("target health = %v, want %v", target.Health(), tt.wantHealth)
			}
			if projectile.Removed() != tt.wantRemoved {
				t.Errorf("projectile removed = %v, want %v", projectile.Removed(), tt.wantRemoved)
			}
			if target.Removed() {
				t.Error("target should never be removed by the response")
			}
		})
	}
}

func TestPartialDestructive_ThroughScene(t *testing.T) {
	s := New()
	target := kinded(0, 0, 1, "ship")
	bullet := kinded(1, 0, 0.1, "bullet")
	s.AddBody(target)
	s.AddBody(bullet)
	s.AddPartialDestructiveCollision(target, bullet, map[entity.Kind]float64{"bullet": 4})

	s.Tick(0.01)

	if s.BodyCount() != 1 || s.Body(0) != target {
		t.Fatalf("expected only the target to remain, have %d bodies", s.BodyCount())
	}
	if target.Health() != entity.DefaultHealth-4 {
		t.Errorf("target health = %v", target.Health())
	}
	if s.GeneratorCount() != 0 {
		t.Errorf("collision generator should be purged with the bullet")
	}
}
