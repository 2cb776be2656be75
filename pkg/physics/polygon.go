// pkg/physics/polygon.go
package physics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r2"
)

// MinVertices is the fewest vertices a closed polygon can have.
const MinVertices = 3

// Polygon is an ordered, closed loop of vertices. The last vertex connects
// back to the first.
type Polygon []Vector2D

// Clone returns an independent copy of the polygon.
func (p Polygon) Clone() Polygon {
	out := make(Polygon, len(p))
	copy(out, p)
	return out
}

// edge returns the i-th vertex and its successor on the closed loop.
func (p Polygon) edge(i int) (Vector2D, Vector2D) {
	return p[i], p[(i+1)%len(p)]
}

// SignedArea returns the shoelace area, positive for counter-clockwise winding.
func (p Polygon) SignedArea() float64 {
	sum := 0.0
	for i := range p {
		cur, nxt := p.edge(i)
		sum += cur.Cross(nxt)
	}
	return sum / 2
}

// Area returns the enclosed area regardless of winding.
func (p Polygon) Area() float64 {
	a := p.SignedArea()
	if a < 0 {
		return -a
	}
	return a
}

// Mean returns the arithmetic mean of the vertices.
func (p Polygon) Mean() Vector2D {
	if len(p) == 0 {
		return Zero
	}
	var sum Vector2D
	for _, v := range p {
		sum = sum.Add(v)
	}
	return sum.Scale(1 / float64(len(p)))
}

// Centroid returns the area centroid of the polygon. Both windings give the
// same answer; a polygon with zero area falls back to its vertex mean.
func (p Polygon) Centroid() Vector2D {
	area := p.SignedArea()
	if area == 0 {
		return p.Mean()
	}

	var cx, cy float64
	for i := range p {
		cur, nxt := p.edge(i)
		cross := cur.Cross(nxt)
		cx += (cur.X + nxt.X) * cross
		cy += (cur.Y + nxt.Y) * cross
	}
	return Vector2D{X: cx / (6 * area), Y: cy / (6 * area)}
}

// Translate moves every vertex by v in place.
func (p Polygon) Translate(v Vector2D) {
	for i := range p {
		p[i] = p[i].Add(v)
	}
}

// Rotate turns every vertex by angle radians about pivot in place.
func (p Polygon) Rotate(angle float64, pivot Vector2D) {
	m := mgl64.Rotate2D(angle)
	for i := range p {
		p[i] = rotateWith(m, p[i].Sub(pivot)).Add(pivot)
	}
}

// Bounds returns the axis-aligned bounding rectangle of the polygon.
func (p Polygon) Bounds() r2.Rect {
	pts := make([]r2.Point, len(p))
	for i, v := range p {
		pts[i] = r2.Point{X: v.X, Y: v.Y}
	}
	return r2.RectFromPoints(pts...)
}

// Validate reports whether p is usable as a body or collision shape.
func (p Polygon) Validate() error {
	if len(p) < MinVertices {
		return fmt.Errorf("polygon has %d vertices, need at least %d", len(p), MinVertices)
	}
	return nil
}

// MustValidate panics when p is not a usable shape.
func (p Polygon) MustValidate() {
	if err := p.Validate(); err != nil {
		panic("physics: " + err.Error())
	}
}
