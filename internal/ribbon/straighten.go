package ribbon

import (
	"fmt"

	"github.com/olivier-w/ribbon/internal/segment"
	"github.com/olivier-w/ribbon/internal/settings"
)

// DecayLaw maps a segment's chain distance from the pivot, normalized by
// the chain length at the last pull, to a pull strength multiplier.
type DecayLaw func(distance float64) float64

// FlatDecay gives every segment the full pull strength.
func FlatDecay(float64) float64 { return 1 }

// SpreadDecay keeps full strength up to 2*spread, fades linearly to zero at
// 4*spread and stays at zero beyond. A non-positive spread is flat.
func SpreadDecay(spread float64) DecayLaw {
	if spread <= 0 {
		return FlatDecay
	}
	near := 2 * spread
	far := 2 * near
	return func(d float64) float64 {
		switch {
		case d < near:
			return 1
		case d > far:
			return 0
		default:
			return 1 - (d-near)/(far-near)
		}
	}
}

// DecayMode selects the decay law used by Straighten.
type DecayMode uint8

const (
	DecayFlat DecayMode = iota
	DecaySpread
)

// String returns the name of the mode.
func (m DecayMode) String() string {
	switch m {
	case DecaySpread:
		return "spread"
	default:
		return "flat"
	}
}

// Next cycles to the next mode.
func (m DecayMode) Next() DecayMode {
	switch m {
	case DecayFlat:
		return DecaySpread
	default:
		return DecayFlat
	}
}

// ParseDecayMode parses "flat" or "spread".
func ParseDecayMode(s string) (DecayMode, error) {
	switch s {
	case "", "flat":
		return DecayFlat, nil
	case "spread":
		return DecaySpread, nil
	}
	return DecayFlat, fmt.Errorf("unknown decay mode %q", s)
}

// SetDecayLaw overrides the law chosen by Decay. Pass nil to go back to it.
func (r *Ribbon) SetDecayLaw(law DecayLaw) { r.customDecay = law }

// DecayLaw returns the law Straighten currently applies.
func (r *Ribbon) DecayLaw() DecayLaw {
	if r.customDecay != nil {
		return r.customDecay
	}
	if r.Decay == DecaySpread {
		return SpreadDecay(r.PullSpread)
	}
	return FlatDecay
}

// SegmentFromPullPoint resolves a normalized screen position to the last
// segment ending left of it, or the first segment if none does.
func (r *Ribbon) SegmentFromPullPoint(pullPoint float64) *segment.Segment {
	return r.chain.seg(r.indexFromPullPoint(pullPoint))
}

func (r *Ribbon) indexFromPullPoint(pullPoint float64) int {
	width := r.settings.Dimensions.Width
	i := r.chain.last
	for {
		prev := r.chain.prev(i)
		if r.chain.seg(i).EndPoint().X/width < pullPoint || prev == nilIndex {
			return i
		}
		i = prev
	}
}

// SetPullPoint makes the segment at pullPoint the straighten pivot.
func (r *Ribbon) SetPullPoint(pullPoint float64) {
	r.pulled = r.indexFromPullPoint(pullPoint)
	r.totalSegmentLengthAtLastPull = r.totalSegmentLength
}

// ClearPullPoint drops the pivot; Straighten falls back to the viewport centre.
func (r *Ribbon) ClearPullPoint() { r.pulled = nilIndex }

// Pulled returns the pivot segment, or nil. A pivot trimmed off the chain
// is cleared.
func (r *Ribbon) Pulled() *segment.Segment {
	if r.pulled == nilIndex {
		return nil
	}
	return r.chain.seg(r.pulled)
}

// Straighten writes StraightenStrength plus the decayed PullStrength into
// every segment, resolving forces outward from the pivot.
func (r *Ribbon) Straighten() {
	c := &r.chain
	if c.first == nilIndex {
		return
	}
	pivot := r.pulled
	if pivot == nilIndex {
		pivot = r.indexFromPullPoint(0.5)
	}

	seg := c.seg(pivot)
	seg.StraightenStrength = clamp01(r.StraightenStrength + r.PullStrength)
	seg.ApplyForces(settings.Center, seg.Center())

	norm := r.totalSegmentLengthAtLastPull
	if norm <= 0 {
		norm = r.totalSegmentLength
	}
	law := r.DecayLaw()

	var walked float64
	for i := c.next(pivot); i != nilIndex; i = c.next(i) {
		s := c.seg(i)
		walked += s.SegmentLength()
		pull := law(walked/norm) * r.PullStrength
		s.StraightenStrength = clamp01(r.StraightenStrength + pull)
		s.ApplyForces(settings.Start, c.seg(c.prev(i)).EndPoint())
	}

	walked = 0
	for i := c.prev(pivot); i != nilIndex; i = c.prev(i) {
		s := c.seg(i)
		walked += s.SegmentLength()
		pull := law(walked/norm) * r.PullStrength
		s.StraightenStrength = clamp01(r.StraightenStrength + pull)
		s.ApplyForces(settings.End, c.seg(c.next(i)).StartPoint())
	}
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
