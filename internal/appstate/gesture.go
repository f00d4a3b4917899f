package appstate

import (
	"github.com/example/segpaint/internal/geometry"
	"github.com/example/segpaint/internal/paint"
)

// gesture is the tool state machine's current state. Each variant carries
// only the data that state needs.
type gesture interface {
	state() Gesture
	// on returns the frame the gesture edits.
	on() int
}

type idle struct{}

type brushStroke struct {
	frame  int
	stroke *paint.Stroke
	value  uint8
}

type lassoPath struct {
	frame    int
	vertices []geometry.Vertex
	value    uint8
}

func (idle) state() Gesture        { return Idle }
func (brushStroke) state() Gesture { return BrushDragging }
func (*lassoPath) state() Gesture  { return LassoDragging }

func (idle) on() int          { return -1 }
func (g brushStroke) on() int { return g.frame }
func (g *lassoPath) on() int  { return g.frame }

// add appends p unless it repeats the last vertex.
func (g *lassoPath) add(p geometry.Vertex) {
	if n := len(g.vertices); n > 0 && g.vertices[n-1] == p {
		return
	}
	g.vertices = append(g.vertices, p)
}
