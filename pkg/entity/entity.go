// pkg/entity/entity.go
package entity

import "github.com/EngoEngine/ecs"

// ID is a unique identifier for a body. IDs are never reused within a process.
type ID uint64

// nextBasic hands out a fresh ECS identity for a new body.
func nextBasic() ecs.BasicEntity {
	return ecs.NewBasic()
}

// Kind names a category of body, e.g. "wall" or "bullet". The set of kinds
// belongs to the application; the physics core only compares them.
type Kind string

// Kind implements Tag, so a bare Kind can be used as a body tag.
func (k Kind) Kind() Kind {
	return k
}

// NoKind is reported by bodies without a tag.
const NoKind Kind = ""

// Tag is application data attached to a body. Collision responses use its
// Kind to tell bodies apart.
type Tag interface {
	Kind() Kind
}

// Releaser is implemented by tags that hold resources. Release is called
// exactly once, when the owning scene purges the body.
type Releaser interface {
	Release()
}
