// pkg/entity/entity_test.go
package entity

import (
	"testing"

	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-physics2d/pkg/physics"
)

func TestKind_IsItsOwnTag(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
	}{
		{name: "no_kind", kind: NoKind},
		{name: "wall", kind: "wall"},
		{name: "bullet", kind: "bullet"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tag Tag = tt.kind
			if got := tag.Kind(); got != tt.kind {
				t.Errorf("Kind() = %q, want %q", got, tt.kind)
			}
		})
	}
}

func TestNextBasic_MonotonicIDs(t *testing.T) {
	prev := nextBasic().ID()
	for i := 0; i < 100; i++ {
		id := nextBasic().ID()
		if id <= prev {
			t.Fatalf("ID %d not greater than previous %d", id, prev)
		}
		prev = id
	}
}

func TestBody_BasicEntityMatchesID(t *testing.T) {
	b := NewBody(square(physics.Zero), 1, black)

	var basic *ecs.BasicEntity = b.GetBasicEntity()
	if ID(basic.ID()) != b.ID() {
		t.Errorf("BasicEntity ID %d differs from body ID %d", basic.ID(), b.ID())
	}
	if b.GetBasicEntity() != basic {
		t.Error("GetBasicEntity should return the body's own identity")
	}
}

func TestNoKind_ForUntaggedBody(t *testing.T) {
	b := NewBody(square(physics.Zero), 1, black)
	if b.Kind() != NoKind {
		t.Errorf("Kind() = %q, want NoKind", b.Kind())
	}
	if b.Tag() != nil {
		t.Errorf("Tag() = %v, want nil", b.Tag())
	}
}
