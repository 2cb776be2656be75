package render

import (
	"bufio"
	"io"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/opd-ai/go-physics2d/pkg/entity"
	"github.com/opd-ai/go-physics2d/pkg/physics"
)

// DefaultGlyph marks bodies without a kind
const DefaultGlyph = '#'

// TerminalRenderer provides a simple ASCII rendering of body shapes. World
// y points up; row 0 is the top of the frame.
type TerminalRenderer struct {
	width     int
	height    int
	buffer    [][]rune
	scale     float64
	centerPos physics.Vector2D
	out       io.Writer
}

// NewTerminalRenderer creates a renderer of width x height cells, each
// covering scale world units, writing frames to out.
func NewTerminalRenderer(out io.Writer, width, height int, scale float64) *TerminalRenderer {
	buffer := make([][]rune, height)
	for i := range buffer {
		buffer[i] = make([]rune, width)
	}

	r := &TerminalRenderer{
		width:  width,
		height: height,
		buffer: buffer,
		scale:  scale,
		out:    out,
	}
	r.Clear()
	return r
}

// SetCenter sets the world position shown in the middle of the frame
func (r *TerminalRenderer) SetCenter(pos physics.Vector2D) {
	r.centerPos = pos
}

// worldToScreen converts world coordinates to a fractional cell position
func (r *TerminalRenderer) worldToScreen(pos physics.Vector2D) (float64, float64) {
	screenX := (pos.X-r.centerPos.X)/r.scale + float64(r.width)/2
	screenY := float64(r.height)/2 - (pos.Y-r.centerPos.Y)/r.scale
	return screenX, screenY
}

// screenToWorld returns the world position of the centre of cell (x, y)
func (r *TerminalRenderer) screenToWorld(x, y int) physics.Vector2D {
	return physics.Vector2D{
		X: (float64(x)+0.5-float64(r.width)/2)*r.scale + r.centerPos.X,
		Y: (float64(r.height)/2-float64(y)-0.5)*r.scale + r.centerPos.Y,
	}
}

// Clear implements Renderer
func (r *TerminalRenderer) Clear() {
	for y := range r.buffer {
		for x := range r.buffer[y] {
			r.buffer[y][x] = ' '
		}
	}
}

// RenderBody implements Renderer. Every cell whose centre lies inside the
// body's polygon gets the body's glyph. Bodies smaller than a cell still
// mark the cell holding their centroid.
func (r *TerminalRenderer) RenderBody(body *entity.Body) {
	shape := body.Shape()
	glyph := glyphFor(body.Kind())

	bounds := shape.Bounds()
	x0, y0 := r.worldToScreen(physics.Vector2D{X: bounds.X.Lo, Y: bounds.Y.Hi})
	x1, y1 := r.worldToScreen(physics.Vector2D{X: bounds.X.Hi, Y: bounds.Y.Lo})

	drawn := false
	for y := clampCell(y0, r.height); y <= clampCell(y1, r.height); y++ {
		for x := clampCell(x0, r.width); x <= clampCell(x1, r.width); x++ {
			if contains(shape, r.screenToWorld(x, y)) {
				r.buffer[y][x] = glyph
				drawn = true
			}
		}
	}

	if !drawn {
		cx, cy := r.worldToScreen(body.Centroid())
		x, y := int(math.Floor(cx)), int(math.Floor(cy))
		if x >= 0 && x < r.width && y >= 0 && y < r.height {
			r.buffer[y][x] = glyph
		}
	}
}

// Present implements Renderer
func (r *TerminalRenderer) Present() error {
	w := bufio.NewWriter(r.out)
	border := "+" + strings.Repeat("-", r.width) + "+\n"

	w.WriteString(border)
	for y := range r.buffer {
		w.WriteByte('|')
		w.WriteString(string(r.buffer[y]))
		w.WriteString("|\n")
	}
	w.WriteString(border)
	return w.Flush()
}

// String returns the current frame without borders
func (r *TerminalRenderer) String() string {
	var sb strings.Builder
	for _, row := range r.buffer {
		sb.WriteString(string(row))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func glyphFor(kind entity.Kind) rune {
	if kind == entity.NoKind {
		return DefaultGlyph
	}
	g, _ := utf8.DecodeRuneInString(string(kind))
	return unicode.ToUpper(g)
}

func clampCell(v float64, n int) int {
	c := int(math.Floor(v))
	if c < 0 {
		return 0
	}
	if c >= n {
		return n - 1
	}
	return c
}

// contains is an even-odd point in polygon test. It handles concave shapes
// such as stars.
func contains(p physics.Polygon, pt physics.Vector2D) bool {
	inside := false
	for i, j := 0, len(p)-1; i < len(p); j, i = i, i+1 {
		a, b := p[i], p[j]
		if (a.Y > pt.Y) != (b.Y > pt.Y) &&
			pt.X < (b.X-a.X)*(pt.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}
