// Package ribbon animates a strip built from a chain of segments. The chain
// always covers the viewport plus Margin on both sides, advances once per
// render frame and can be straightened outward from a pivot segment.
//
// A Ribbon is not safe for concurrent use. Frames and animation ticks are
// expected to arrive on one goroutine, such as a Bubbletea Update loop.
package ribbon

import (
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/olivier-w/ribbon/internal/frame"
	"github.com/olivier-w/ribbon/internal/segment"
	"github.com/olivier-w/ribbon/internal/settings"
	"github.com/olivier-w/ribbon/internal/tween"
)

// Margin is how far past each viewport edge the chain extends, in screen units.
const Margin = 600

// Options seeds the tunables of a new Ribbon.
type Options struct {
	DrivePoint         float64
	IdleSpeed          float64
	PullStrength       float64
	PullSpread         float64
	VerticalPosition   float64
	PositionDamping    float64
	CanDestruct        bool
	PrimaryColor       colorful.Color
	SecondaryColor     colorful.Color
	Decay              DecayMode
	TransitionDuration time.Duration
	TransitionEase     tween.Func
}

// DefaultOptions returns the tunables the ribbon starts with when nothing
// is configured.
func DefaultOptions() Options {
	primary, _ := colorful.Hex("#ff8c00")
	secondary, _ := colorful.Hex("#5f1fff")
	ease, _ := tween.Lookup("easeInSine")
	return Options{
		DrivePoint:         0.5,
		IdleSpeed:          0.2,
		VerticalPosition:   0.5,
		CanDestruct:        true,
		PrimaryColor:       primary,
		SecondaryColor:     secondary,
		Decay:              DecayFlat,
		TransitionDuration: 1200 * time.Millisecond,
		TransitionEase:     ease,
	}
}

// Ribbon owns the segment chain and its draw buckets.
type Ribbon struct {
	DrivePoint         float64
	IdleSpeed          float64
	Speed              float64
	StraightenStrength float64
	PullStrength       float64
	PullSpread         float64
	VerticalPosition   float64
	PositionDamping    float64
	CanDestruct        bool
	PrimaryColor       colorful.Color
	SecondaryColor     colorful.Color
	Decay              DecayMode

	settings settings.Settings
	factory  *segment.Factory
	frames   *frame.Broadcaster
	driver   *tween.Driver

	chain   chain
	buckets buckets

	totalSegmentLength           float64
	totalSegmentLengthAtLastPull float64
	pulled                       int
	customDecay                  DecayLaw

	listener frame.ListenerID
	attached bool

	transition         *tween.Task
	transitionDuration time.Duration
	transitionEase     tween.Func
}

// New seeds the chain with one segment, extends it to cover the viewport
// and attaches to frames.
func New(s settings.Settings, factory *segment.Factory, frames *frame.Broadcaster, driver *tween.Driver, opts Options) *Ribbon {
	if s.Stage == nil {
		s.Stage = settings.NopSurface{}
	}
	r := &Ribbon{
		DrivePoint:         opts.DrivePoint,
		IdleSpeed:          opts.IdleSpeed,
		Speed:              opts.IdleSpeed,
		PullStrength:       opts.PullStrength,
		PullSpread:         opts.PullSpread,
		VerticalPosition:   opts.VerticalPosition,
		PositionDamping:    opts.PositionDamping,
		CanDestruct:        opts.CanDestruct,
		PrimaryColor:       opts.PrimaryColor,
		SecondaryColor:     opts.SecondaryColor,
		Decay:              opts.Decay,
		settings:           s,
		factory:            factory,
		frames:             frames,
		driver:             driver,
		chain:              newChain(),
		pulled:             nilIndex,
		transitionDuration: opts.TransitionDuration,
		transitionEase:     opts.TransitionEase,
	}
	r.appendSegment(factory.New(nil, r.PrimaryColor, r.SecondaryColor, false))
	r.CreateSegments()
	r.AttachToRenderFrame()
	return r
}

// Advance runs one frame: move, resolve forces outward from the driven
// segment, rebuild every polygon, then draw.
func (r *Ribbon) Advance() {
	r.Move(r.Speed)

	c := &r.chain
	driven := r.indexFromPullPoint(r.DrivePoint)
	seg := c.seg(driven)
	seg.Advance()
	seg.ApplyForces(settings.Center, r.drivenCenter(seg))

	for i := c.prev(driven); i != nilIndex; i = c.prev(i) {
		s := c.seg(i)
		s.Advance()
		s.ApplyForces(settings.End, c.seg(c.next(i)).StartPoint())
	}
	for i := c.next(driven); i != nilIndex; i = c.next(i) {
		s := c.seg(i)
		s.Advance()
		s.ApplyForces(settings.Start, c.seg(c.prev(i)).EndPoint())
	}

	// Force resolution can pull the ends inward.
	r.CreateSegments()

	for i := c.first; i != nilIndex; i = c.next(i) {
		c.seg(i).ResetPolygon()
	}
	r.Draw()
}

func (r *Ribbon) drivenCenter(seg *segment.Segment) settings.Point {
	center := seg.Center()
	if r.PositionDamping > 0 {
		target := r.VerticalPosition * r.settings.Dimensions.Height
		center.Y += (target - center.Y) * r.PositionDamping
	}
	return center
}

// Draw draws the back bucket beneath the front bucket.
func (r *Ribbon) Draw() {
	for _, i := range r.buckets.back {
		r.chain.seg(i).Draw(r.settings.Stage)
	}
	for _, i := range r.buckets.front {
		r.chain.seg(i).Draw(r.settings.Stage)
	}
}

// AttachToRenderFrame registers Advance with the frame broadcaster.
func (r *Ribbon) AttachToRenderFrame() {
	if r.attached || r.frames == nil {
		return
	}
	r.listener = r.frames.Add(r.Advance)
	r.attached = true
}

// DetachFromRenderFrame stops future frames and cancels any running
// straighten transition.
func (r *Ribbon) DetachFromRenderFrame() {
	r.cancelTransition()
	if !r.attached {
		return
	}
	r.frames.Remove(r.listener)
	r.attached = false
}

// Attached reports whether Advance is registered for render frames.
func (r *Ribbon) Attached() bool { return r.attached }

// AnimateToTop eases StraightenStrength from 0 to 1, re-propagating on
// every tick.
func (r *Ribbon) AnimateToTop() *tween.Task { return r.animate(0, 1) }

// AnimateToBottom eases StraightenStrength from 1 to 0.
func (r *Ribbon) AnimateToBottom() *tween.Task { return r.animate(1, 0) }

func (r *Ribbon) animate(from, to float64) *tween.Task {
	r.cancelTransition()
	var task *tween.Task
	task = r.driver.Start(from, to, r.transitionDuration, tween.Options{
		Ease: r.transitionEase,
		OnUpdate: func(v float64) {
			r.StraightenStrength = v
			r.Straighten()
		},
		OnComplete: func() {
			if r.transition == task {
				r.transition = nil
			}
		},
	})
	r.transition = task
	return task
}

func (r *Ribbon) cancelTransition() {
	if r.transition != nil {
		r.transition.Cancel()
		r.transition = nil
	}
}

// Animating reports whether a straighten transition is in flight.
func (r *Ribbon) Animating() bool {
	return r.transition != nil && !r.transition.Done()
}

// First returns the leftmost segment.
func (r *Ribbon) First() *segment.Segment { return r.chain.seg(r.chain.first) }

// Last returns the rightmost segment.
func (r *Ribbon) Last() *segment.Segment { return r.chain.seg(r.chain.last) }

// Len returns the number of segments in the chain.
func (r *Ribbon) Len() int { return r.chain.count }

// TotalSegmentLength returns the running sum of segment lengths.
func (r *Ribbon) TotalSegmentLength() float64 { return r.totalSegmentLength }

// Segments returns the chain from left to right.
func (r *Ribbon) Segments() []*segment.Segment {
	out := make([]*segment.Segment, 0, r.chain.count)
	for i := r.chain.first; i != nilIndex; i = r.chain.next(i) {
		out = append(out, r.chain.seg(i))
	}
	return out
}

// DrawOrder returns the segments in the order Draw visits them.
func (r *Ribbon) DrawOrder() (back, front []*segment.Segment) {
	for _, i := range r.buckets.back {
		back = append(back, r.chain.seg(i))
	}
	for _, i := range r.buckets.front {
		front = append(front, r.chain.seg(i))
	}
	return back, front
}

// Settings returns the viewport settings the ribbon was built with.
func (r *Ribbon) Settings() settings.Settings { return r.settings }
