// pkg/physics/collision.go
package physics

import "math"

// CollisionResult contains information about a collision
type CollisionResult struct {
	Collided bool
	// Axis is the unit separating axis with the least penetration, oriented
	// from the first shape toward the second. Zero when Collided is false.
	Axis    Vector2D
	Overlap float64
}

// Project returns the interval covered by p when projected onto axis.
func (p Polygon) Project(axis Vector2D) (min, max float64) {
	min = math.Inf(1)
	max = math.Inf(-1)
	for _, v := range p {
		d := axis.Dot(v)
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}
	return min, max
}

// edgeNormal returns the unit normal of edge i, or false for a zero-length edge.
func (p Polygon) edgeNormal(i int) (Vector2D, bool) {
	cur, nxt := p.edge(i)
	edge := nxt.Sub(cur)
	if edge.LengthSquared() == 0 {
		return Zero, false
	}
	return edge.Perpendicular().Normalize(), true
}

// intervalsOverlap treats both projections as closed intervals, so touching
// shapes count as overlapping.
func intervalsOverlap(minA, maxA, minB, maxB float64) bool {
	return minA <= maxB && minB <= maxA
}

func overlapAmount(minA, maxA, minB, maxB float64) float64 {
	if minA < minB {
		return math.Abs(minB - maxA)
	}
	return math.Abs(minA - maxB)
}

// CheckCollision runs the separating axis test over the edge normals of both
// polygons. Both must have at least three vertices. The shapes are assumed
// convex; concave shapes are tested as if they were their convex hulls on the
// available axes.
func CheckCollision(a, b Polygon) CollisionResult {
	a.MustValidate()
	b.MustValidate()

	// Disjoint bounds are a separating axis of their own.
	if !a.Bounds().Intersects(b.Bounds()) {
		return CollisionResult{Collided: false}
	}

	result := CollisionResult{Collided: true, Overlap: math.Inf(1)}
	found := false
	for _, shape := range [2]Polygon{a, b} {
		for i := range shape {
			axis, ok := shape.edgeNormal(i)
			if !ok {
				continue
			}
			minA, maxA := a.Project(axis)
			minB, maxB := b.Project(axis)
			if !intervalsOverlap(minA, maxA, minB, maxB) {
				return CollisionResult{Collided: false}
			}
			if overlap := overlapAmount(minA, maxA, minB, maxB); overlap < result.Overlap {
				result.Overlap = overlap
				result.Axis = axis
				found = true
			}
		}
	}

	between := b.Mean().Sub(a.Mean())
	if !found {
		// Every edge was degenerate; only the bounds test applied.
		result.Overlap = 0
		result.Axis = between.Normalize()
		return result
	}
	if between.Dot(result.Axis) < 0 {
		result.Axis = result.Axis.Negate()
	}
	return result
}
