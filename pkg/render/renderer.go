// pkg/render/renderer.go
package render

import (
	"context"

	"github.com/opd-ai/go-physics2d/pkg/entity"
	"github.com/opd-ai/go-physics2d/pkg/logging"
)

// Renderer draws bodies into a frame. Clear starts a frame and Present
// emits it.
type Renderer interface {
	Clear()
	RenderBody(body *entity.Body)
	Present() error
}

// Frame draws every live body of bodies as one frame.
func Frame(r Renderer, bodies []*entity.Body) error {
	r.Clear()
	for _, b := range bodies {
		if b.Removed() {
			continue
		}
		r.RenderBody(b)
	}
	return r.Present()
}

// NullRenderer logs what would be drawn at debug level.
type NullRenderer struct {
	ctx    context.Context
	logger *logging.Logger
}

// NewNullRenderer creates a NullRenderer logging to logger.
func NewNullRenderer(ctx context.Context, logger *logging.Logger) *NullRenderer {
	return &NullRenderer{ctx: ctx, logger: logger}
}

// Clear implements Renderer.
func (d *NullRenderer) Clear() {
	d.logger.Debug(d.ctx, "Clear called")
}

// Present implements Renderer.
func (d *NullRenderer) Present() error {
	d.logger.Debug(d.ctx, "Present called")
	return nil
}

// RenderBody implements Renderer.
func (d *NullRenderer) RenderBody(body *entity.Body) {
	if body == nil {
		d.logger.Debug(d.ctx, "RenderBody called with nil body")
		return
	}
	c := body.Centroid()
	d.logger.Debug(d.ctx, "RenderBody called",
		"body_id", body.ID(),
		"kind", string(body.Kind()),
		"x", c.X,
		"y", c.Y,
		"rotation", body.Rotation(),
	)
}
