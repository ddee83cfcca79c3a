// Package settings holds the static values every ribbon component reads:
// viewport dimensions, the anchor point enumeration and the draw surface.
package settings

import "github.com/lucasb-eyer/go-colorful"

// AnchorPoint selects which part of a segment a force is resolved against.
type AnchorPoint uint8

const (
	Start AnchorPoint = iota
	Center
	End
)

// String returns the name of the anchor point.
func (a AnchorPoint) String() string {
	switch a {
	case Start:
		return "start"
	case Center:
		return "center"
	case End:
		return "end"
	default:
		return "unknown"
	}
}

// Point is a position in screen units. X grows to the right, Y grows down.
type Point struct {
	X float64
	Y float64
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p minus q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Scale returns p multiplied by k.
func (p Point) Scale(k float64) Point { return Point{X: p.X * k, Y: p.Y * k} }

// Lerp interpolates between p and q.
func (p Point) Lerp(q Point, t float64) Point {
	return Point{X: p.X + (q.X-p.X)*t, Y: p.Y + (q.Y-p.Y)*t}
}

// Dimensions is the viewport size in screen units.
type Dimensions struct {
	Width  float64
	Height float64
}

// Drawable is a handle a Surface keeps as one of its children.
type Drawable interface {
	Visible() bool
}

// Surface receives drawables and the filled polygons they produce each frame.
type Surface interface {
	AddChild(d Drawable)
	RemoveChild(d Drawable)
	FillPolygon(points []Point, c colorful.Color)
}

// Settings groups the viewport and the surface segments draw onto.
type Settings struct {
	Dimensions Dimensions
	Stage      Surface
}

// NopSurface discards everything drawn onto it.
type NopSurface struct{}

func (NopSurface) AddChild(Drawable)                   {}
func (NopSurface) RemoveChild(Drawable)                {}
func (NopSurface) FillPolygon([]Point, colorful.Color) {}
