// Package segment implements one rigid link of the ribbon: its geometry, a
// spring driven angle, force resolution against a neighbour joint and the
// quad it draws.
package segment

import (
	"math"
	"math/rand"

	"github.com/charmbracelet/harmonica"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/olivier-w/ribbon/internal/settings"
)

// Params shapes every segment a Factory builds.
type Params struct {
	Origin       settings.Point // start of the seed segment
	Length       float64        // nominal length in screen units
	LengthJitter float64        // +/- fraction applied to Length
	Width        float64        // ribbon width at zero twist
	Amplitude    float64        // peak wave angle in radians
	MaxAngle     float64        // resolved angle is clamped to +/- MaxAngle
	PhaseStep    float64        // wave phase offset between neighbours
	PhaseSpeed   float64        // wave phase advance per Advance
	TwistStep    float64        // twist offset between neighbours
	FPS          int
	Frequency    float64
	Damping      float64
}

// DefaultParams returns the parameters the ribbon program ships with.
func DefaultParams() Params {
	return Params{
		Origin:       settings.Point{X: 0, Y: 200},
		Length:       30,
		LengthJitter: 0.2,
		Width:        60,
		Amplitude:    0.9,
		MaxAngle:     1.2,
		PhaseStep:    0.18,
		PhaseSpeed:   0.05,
		TwistStep:    0.07,
		FPS:          30,
		Frequency:    6.0,
		Damping:      0.5,
	}
}

// Factory builds segments from a shared parameter set and a seeded source,
// so two factories with the same seed produce identical chains.
type Factory struct {
	params Params
	spring harmonica.Spring
	rng    *rand.Rand
}

// NewFactory creates a Factory. MaxAngle is kept below a right angle so a
// segment always spans a positive horizontal extent.
func NewFactory(p Params, seed int64) *Factory {
	if p.MaxAngle <= 0 || p.MaxAngle >= math.Pi/2 {
		p.MaxAngle = 1.2
	}
	if p.Length <= 0 {
		p.Length = DefaultParams().Length
	}
	if p.FPS <= 0 {
		p.FPS = 30
	}
	return &Factory{
		params: p,
		spring: harmonica.NewSpring(harmonica.FPS(p.FPS), p.Frequency, p.Damping),
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Params returns the factory parameters.
func (f *Factory) Params() Params { return f.params }

// New builds a segment joined to prev. Appended segments start where prev
// ends; prepended segments end where prev starts. A nil prev seeds the
// chain at Params.Origin.
func (f *Factory) New(prev *Segment, primary, secondary colorful.Color, prepend bool) *Segment {
	p := &f.params
	s := &Segment{
		params:    p,
		spring:    f.spring,
		length:    p.Length * (1 + p.LengthJitter*(2*f.rng.Float64()-1)),
		primary:   primary,
		secondary: secondary,
	}
	s.graphic = &Graphic{}

	switch {
	case prev == nil:
		s.angle = p.Amplitude * math.Sin(s.phase)
		s.heading = s.clampAngle(s.angle)
		s.start = p.Origin
		s.end = s.start.Add(s.direction().Scale(s.length))
	case prepend:
		s.phase = prev.phase - p.PhaseStep
		s.twist = prev.twist - p.TwistStep
		s.angle = prev.angle
		s.StraightenStrength = prev.StraightenStrength
		s.heading = s.clampAngle(s.angle * (1 - s.StraightenStrength))
		s.end = prev.start
		s.start = s.end.Sub(s.direction().Scale(s.length))
	default:
		s.phase = prev.phase + p.PhaseStep
		s.twist = prev.twist + p.TwistStep
		s.angle = prev.angle
		s.StraightenStrength = prev.StraightenStrength
		s.heading = s.clampAngle(s.angle * (1 - s.StraightenStrength))
		s.start = prev.end
		s.end = s.start.Add(s.direction().Scale(s.length))
	}
	s.backface = math.Cos(s.twist) < 0
	s.ResetPolygon()
	return s
}

// Segment is one link of the ribbon. Links to neighbours are owned by the
// chain, not the segment.
type Segment struct {
	// StraightenStrength in [0,1] flattens the resolved angle.
	StraightenStrength float64

	params *Params
	spring harmonica.Spring

	start    settings.Point
	end      settings.Point
	length   float64
	phase    float64
	angle    float64
	velocity float64
	heading  float64 // angle resolved by the last ApplyForces
	twist    float64
	backface bool

	primary   colorful.Color
	secondary colorful.Color
	polygon   [4]settings.Point
	graphic   *Graphic
}

func (s *Segment) StartPoint() settings.Point { return s.start }
func (s *Segment) EndPoint() settings.Point   { return s.end }
func (s *Segment) SegmentLength() float64     { return s.length }
func (s *Segment) Backface() bool             { return s.backface }
func (s *Segment) Angle() float64             { return s.heading }
func (s *Segment) Graphic() *Graphic          { return s.graphic }

// Center returns the midpoint of the segment.
func (s *Segment) Center() settings.Point { return s.start.Lerp(s.end, 0.5) }

// Polygon returns the quad built by the last ResetPolygon.
func (s *Segment) Polygon() [4]settings.Point { return s.polygon }

// Advance integrates one physics step: the wave phase moves on and the
// angle springs toward the wave target.
func (s *Segment) Advance() {
	s.phase += s.params.PhaseSpeed
	target := s.params.Amplitude * math.Sin(s.phase)
	s.angle, s.velocity = s.spring.Update(s.angle, s.velocity, target)
}

// ApplyForces resolves the segment geometry against pin. For Start the
// start point is pinned, for End the end point, for Center the midpoint.
func (s *Segment) ApplyForces(anchor settings.AnchorPoint, pin settings.Point) {
	s.heading = s.clampAngle(s.angle * (1 - clamp01(s.StraightenStrength)))
	span := s.direction().Scale(s.length)
	switch anchor {
	case settings.Start:
		s.start = pin
		s.end = pin.Add(span)
	case settings.End:
		s.end = pin
		s.start = pin.Sub(span)
	default:
		half := span.Scale(0.5)
		s.start = pin.Sub(half)
		s.end = pin.Add(half)
	}
}

// Move shifts the segment horizontally.
func (s *Segment) Move(amount float64) {
	s.start.X += amount
	s.end.X += amount
}

// ResetPolygon rebuilds the drawable quad from the current geometry. The
// quad narrows as the twist turns the ribbon edge-on.
func (s *Segment) ResetPolygon() {
	half := s.params.Width / 2 * (0.2 + 0.8*math.Abs(math.Cos(s.twist)))
	n := settings.Point{X: -math.Sin(s.heading), Y: math.Cos(s.heading)}.Scale(half)
	s.polygon = [4]settings.Point{
		s.start.Add(n),
		s.end.Add(n),
		s.end.Sub(n),
		s.start.Sub(n),
	}
	s.graphic.polygon = s.polygon
	s.graphic.built = true
}

// Draw fills the quad onto surface using the face colour shaded by twist.
func (s *Segment) Draw(surface settings.Surface) {
	base := s.primary
	if s.backface {
		base = s.secondary
	}
	shade := 0.45 + 0.55*math.Abs(math.Cos(s.twist))
	c := colorful.Color{}.BlendLab(base, shade).Clamped()
	s.graphic.color = c
	surface.FillPolygon(s.polygon[:], c)
}

func (s *Segment) direction() settings.Point {
	return settings.Point{X: math.Cos(s.heading), Y: math.Sin(s.heading)}
}

func (s *Segment) clampAngle(a float64) float64 {
	limit := s.params.MaxAngle
	if a > limit {
		return limit
	}
	if a < -limit {
		return -limit
	}
	return a
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Graphic is the drawable handle a surface holds for a segment.
type Graphic struct {
	polygon [4]settings.Point
	color   colorful.Color
	built   bool
}

// Visible reports whether the segment has built its quad.
func (g *Graphic) Visible() bool { return g.built }

// Polygon returns the last quad the segment built.
func (g *Graphic) Polygon() [4]settings.Point { return g.polygon }

// Color returns the colour used by the last draw.
func (g *Graphic) Color() colorful.Color { return g.color }
