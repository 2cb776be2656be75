// pkg/physics/shapes.go
package physics

import (
	"fmt"
	"math"
)

// Rectangle returns a counter-clockwise axis-aligned rectangle centred on center.
func Rectangle(center Vector2D, width, height float64) Polygon {
	hw, hh := width/2, height/2
	return Polygon{
		{X: center.X - hw, Y: center.Y - hh},
		{X: center.X + hw, Y: center.Y - hh},
		{X: center.X + hw, Y: center.Y + hh},
		{X: center.X - hw, Y: center.Y + hh},
	}
}

// RegularPolygon returns a counter-clockwise polygon with the given number of
// sides inscribed in a circle of radius around center. The first vertex sits
// on the positive x axis.
func RegularPolygon(center Vector2D, radius float64, sides int) Polygon {
	if sides < MinVertices {
		panic(fmt.Sprintf("physics: regular polygon needs at least %d sides, got %d", MinVertices, sides))
	}
	poly := make(Polygon, sides)
	step := 2 * math.Pi / float64(sides)
	for i := range poly {
		poly[i] = center.Add(FromAngle(step*float64(i), radius))
	}
	return poly
}

// Triangle returns an equilateral triangle with the given side length centred
// on center, pointing up.
func Triangle(center Vector2D, side float64) Polygon {
	radius := side / math.Sqrt(3)
	tri := RegularPolygon(center, radius, 3)
	tri.Rotate(math.Pi/2, center)
	return tri
}

// Star returns a star with the given number of points. Outer vertices lie on
// outerRadius and inner vertices on half of it, alternating counter-clockwise
// from straight up. Stars are concave; CheckCollision on them is approximate
// and may report contact inside a notch.
func Star(center Vector2D, outerRadius float64, points int) Polygon {
	if points < 2 {
		panic(fmt.Sprintf("physics: star needs at least 2 points, got %d", points))
	}
	innerRadius := outerRadius / 2
	poly := make(Polygon, 0, points*2)
	step := math.Pi / float64(points)
	for i := 0; i < points*2; i++ {
		r := outerRadius
		if i%2 == 1 {
			r = innerRadius
		}
		poly = append(poly, center.Add(FromAngle(math.Pi/2+step*float64(i), r)))
	}
	return poly
}
