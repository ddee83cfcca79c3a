package ribbon

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/olivier-w/ribbon/internal/frame"
	"github.com/olivier-w/ribbon/internal/segment"
	"github.com/olivier-w/ribbon/internal/settings"
	"github.com/olivier-w/ribbon/internal/stage"
	"github.com/olivier-w/ribbon/internal/tween"
)

const testWidth = 1000

type harness struct {
	ribbon *Ribbon
	frames *frame.Broadcaster
	driver *tween.Driver
	stage  *stage.Stage
}

func newHarness(t *testing.T, seed int64) harness {
	t.Helper()
	dims := settings.Dimensions{Width: testWidth, Height: 400}
	p := segment.DefaultParams()
	p.Origin = settings.Point{X: 0, Y: 200}
	st := stage.New(dims, 40, 10)
	frames := frame.New()
	driver := tween.NewDriver()
	r := New(settings.Settings{Dimensions: dims, Stage: st}, segment.NewFactory(p, seed), frames, driver, DefaultOptions())
	return harness{ribbon: r, frames: frames, driver: driver, stage: st}
}

func checkInvariants(t *testing.T, r *Ribbon) {
	t.Helper()
	segs := r.Segments()
	if len(segs) != r.Len() {
		t.Fatalf("traversal found %d segments, Len() = %d", len(segs), r.Len())
	}
	if segs[0] != r.First() || segs[len(segs)-1] != r.Last() {
		t.Fatal("traversal does not start at First and end at Last")
	}

	if got := r.First().StartPoint().X; got > -Margin {
		t.Fatalf("first segment starts at %g, want <= %d", got, -Margin)
	}
	if got := r.Last().EndPoint().X; got < testWidth+Margin {
		t.Fatalf("last segment ends at %g, want >= %d", got, testWidth+Margin)
	}

	var sum float64
	for i, s := range segs {
		sum += s.SegmentLength()
		if s.StartPoint().X >= s.EndPoint().X {
			t.Fatalf("segment %d has start.x %g >= end.x %g", i, s.StartPoint().X, s.EndPoint().X)
		}
		if i+1 < len(segs) && s.EndPoint() != segs[i+1].StartPoint() {
			t.Fatalf("gap between segment %d end %v and segment %d start %v", i, s.EndPoint(), i+1, segs[i+1].StartPoint())
		}
	}
	if math.Abs(sum-r.TotalSegmentLength()) > 1e-6 {
		t.Fatalf("TotalSegmentLength() = %g, traversal sum = %g", r.TotalSegmentLength(), sum)
	}

	back, front := r.DrawOrder()
	if len(back)+len(front) != len(segs) {
		t.Fatalf("draw buckets hold %d segments, chain has %d", len(back)+len(front), len(segs))
	}
	seen := make(map[*segment.Segment]bool, len(segs))
	for _, s := range back {
		if !s.Backface() {
			t.Fatal("front facing segment in back bucket")
		}
		seen[s] = true
	}
	for _, s := range front {
		if s.Backface() {
			t.Fatal("back facing segment in front bucket")
		}
		seen[s] = true
	}
	for i, s := range segs {
		if !seen[s] {
			t.Fatalf("segment %d missing from draw buckets", i)
		}
	}
}

func TestNewCoversViewportFromSingleSeed(t *testing.T) {
	h := newHarness(t, 1)
	r := h.ribbon
	checkInvariants(t, r)

	if r.Len() < 2 {
		t.Fatalf("expected chain to grow from the seed, got %d segments", r.Len())
	}
	maxLen := segment.DefaultParams().Length * (1 + segment.DefaultParams().LengthJitter)
	if got := r.First().StartPoint().X; got < -Margin-maxLen {
		t.Fatalf("chain over-extended left: first start %g", got)
	}
	if got := r.Last().EndPoint().X; got > testWidth+Margin+maxLen {
		t.Fatalf("chain over-extended right: last end %g", got)
	}
	if !r.Attached() || h.frames.Len() != 1 {
		t.Fatal("expected ribbon attached to render frames after construction")
	}
	if got := h.stage.Children(); got != r.Len() {
		t.Fatalf("stage has %d children, want %d", got, r.Len())
	}
}

func TestCreateSegmentsIsIdempotent(t *testing.T) {
	r := newHarness(t, 2).ribbon
	before := r.Snapshot()
	r.CreateSegments()
	r.CreateSegments()
	if after := r.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Fatalf("CreateSegments changed a covering chain: %d -> %d segments", len(before.Segments), len(after.Segments))
	}
}

func TestMoveKeepsInvariants(t *testing.T) {
	for _, amount := range []float64{50, -50, 7.5, -123} {
		r := newHarness(t, 3).ribbon
		for range 40 {
			r.Move(amount)
			checkInvariants(t, r)
		}
	}
}

func TestMoveWithDestructBoundsChain(t *testing.T) {
	r := newHarness(t, 4).ribbon
	initial := r.Len()
	for range 200 {
		r.Move(25)
	}
	checkInvariants(t, r)
	if r.Len() > initial*2 {
		t.Fatalf("chain grew from %d to %d segments with trimming enabled", initial, r.Len())
	}
}

func TestMoveWithoutDestructOnlyGrows(t *testing.T) {
	r := newHarness(t, 5).ribbon
	r.CanDestruct = false
	prev := r.TotalSegmentLength()
	for i := range 30 {
		r.Move(50)
		got := r.TotalSegmentLength()
		if got <= prev {
			t.Fatalf("move %d: total length %g did not increase from %g", i, got, prev)
		}
		prev = got
		checkInvariants(t, r)
	}
	if got := r.Last().StartPoint().X; got <= testWidth+Margin {
		t.Fatalf("expected untrimmed tail beyond the margin, last start %g", got)
	}
}

func TestLargeJumpNeverEmptiesChain(t *testing.T) {
	r := newHarness(t, 6).ribbon
	r.Move(-5000)
	checkInvariants(t, r)
	r.Move(8000)
	checkInvariants(t, r)
}

func TestAdvanceKeepsInvariants(t *testing.T) {
	h := newHarness(t, 7)
	h.ribbon.Speed = 3
	for range 120 {
		h.frames.Emit()
		checkInvariants(t, h.ribbon)
	}
	h.ribbon.Speed = -4
	for range 120 {
		h.frames.Emit()
		checkInvariants(t, h.ribbon)
	}
}

func TestAdvanceDrawsOntoStage(t *testing.T) {
	h := newHarness(t, 8)
	h.frames.Emit()
	lit := 0
	cols, rows := h.stage.Size()
	for row := range rows {
		for col := range cols {
			if h.stage.Lit(col, row) != 0 {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Fatal("expected advance to draw the ribbon onto the stage")
	}
}

func TestSegmentFromPullPoint(t *testing.T) {
	r := newHarness(t, 9).ribbon
	segs := r.Segments()
	index := make(map[*segment.Segment]int, len(segs))
	for i, s := range segs {
		index[s] = i
	}

	for p := 0.0; p <= 1.0; p += 0.05 {
		s := r.SegmentFromPullPoint(p)
		if s.EndPoint().X/testWidth >= p && s != r.First() {
			t.Fatalf("pull %g resolved to segment ending at %g", p, s.EndPoint().X)
		}
		if i := index[s]; i+1 < len(segs) && segs[i+1].EndPoint().X/testWidth < p {
			t.Fatalf("pull %g skipped segment %d which also ends left of it", p, i+1)
		}
	}

	if got := r.SegmentFromPullPoint(-1); got != r.First() {
		t.Fatal("expected a pull point left of every segment to resolve to the head")
	}
}

func TestSetAndClearPullPoint(t *testing.T) {
	r := newHarness(t, 10).ribbon
	if r.Pulled() != nil {
		t.Fatal("expected no pull point after construction")
	}
	r.SetPullPoint(0.25)
	if got, want := r.Pulled(), r.SegmentFromPullPoint(0.25); got != want {
		t.Fatal("expected pivot to be the segment at the pull point")
	}
	if r.totalSegmentLengthAtLastPull != r.TotalSegmentLength() {
		t.Fatal("expected total length snapshot at pull time")
	}
	r.ClearPullPoint()
	if r.Pulled() != nil {
		t.Fatal("expected pull point to be cleared")
	}
}

func TestTrimmedPivotIsCleared(t *testing.T) {
	r := newHarness(t, 11).ribbon
	r.SetPullPoint(0)
	r.Move(-2000)
	if r.Pulled() != nil {
		t.Fatal("expected pivot trimmed off the chain to be cleared")
	}
	r.Straighten()
	checkInvariants(t, r)
}

func TestStraightenFlatLaw(t *testing.T) {
	r := newHarness(t, 12).ribbon
	r.PullStrength = 0.3
	r.StraightenStrength = 0.2
	r.SetPullPoint(0.5)
	r.Straighten()

	if got := r.Pulled().StraightenStrength; math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("pivot strength = %g, want 0.5", got)
	}
	for i, s := range r.Segments() {
		if math.Abs(s.StraightenStrength-0.5) > 1e-12 {
			t.Fatalf("segment %d strength = %g, want 0.5", i, s.StraightenStrength)
		}
	}
	checkInvariants(t, r)
}

func TestStraightenWithoutPullUsesMidpoint(t *testing.T) {
	r := newHarness(t, 13).ribbon
	r.StraightenStrength = 0.4
	r.Straighten()
	for i, s := range r.Segments() {
		if math.Abs(s.StraightenStrength-0.4) > 1e-12 {
			t.Fatalf("segment %d strength = %g, want 0.4", i, s.StraightenStrength)
		}
	}
}

func TestStraightenClampsCombinedStrength(t *testing.T) {
	r := newHarness(t, 14).ribbon
	r.StraightenStrength = 0.9
	r.PullStrength = 0.8
	r.Straighten()
	for i, s := range r.Segments() {
		if s.StraightenStrength < 0 || s.StraightenStrength > 1 {
			t.Fatalf("segment %d strength %g outside [0,1]", i, s.StraightenStrength)
		}
	}
	if r.StraightenStrength != 0.9 {
		t.Fatalf("expected controller strength untouched, got %g", r.StraightenStrength)
	}
}

func TestStraightenSpreadLawAttenuatesWithDistance(t *testing.T) {
	r := newHarness(t, 15).ribbon
	r.Decay = DecaySpread
	r.PullSpread = 0.05
	r.PullStrength = 0.3
	r.StraightenStrength = 0.2
	r.SetPullPoint(0.5)
	r.Straighten()

	segs := r.Segments()
	pivot := -1
	for i, s := range segs {
		if s == r.Pulled() {
			pivot = i
		}
	}
	if pivot <= 0 || pivot >= len(segs)-1 {
		t.Fatalf("expected an interior pivot, got %d of %d", pivot, len(segs))
	}
	if got := segs[pivot].StraightenStrength; math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("pivot strength = %g, want 0.5", got)
	}
	for _, i := range []int{pivot - 1, pivot + 1} {
		if got := segs[i].StraightenStrength; math.Abs(got-0.5) > 1e-12 {
			t.Fatalf("neighbour %d strength = %g, want full pull 0.5", i, got)
		}
	}
	for _, i := range []int{0, len(segs) - 1} {
		if got := segs[i].StraightenStrength; math.Abs(got-0.2) > 1e-12 {
			t.Fatalf("far segment %d strength = %g, want base 0.2", i, got)
		}
	}
	for i := pivot + 1; i < len(segs); i++ {
		if segs[i].StraightenStrength > segs[i-1].StraightenStrength+1e-12 {
			t.Fatalf("strength rose moving away from the pivot at %d", i)
		}
	}
}

func TestSetDecayLawOverridesMode(t *testing.T) {
	r := newHarness(t, 16).ribbon
	r.PullStrength = 0.5
	r.SetDecayLaw(func(float64) float64 { return 0 })
	r.Straighten()
	for i, s := range r.Segments() {
		if s == r.SegmentFromPullPoint(0.5) {
			continue
		}
		if s.StraightenStrength != 0 {
			t.Fatalf("segment %d strength = %g under zero law", i, s.StraightenStrength)
		}
	}
	r.SetDecayLaw(nil)
	if got := r.DecayLaw()(10); got != 1 {
		t.Fatalf("expected flat law after clearing override, got %g", got)
	}
}

func TestAnimateToTopReachesFullStrength(t *testing.T) {
	h := newHarness(t, 17)
	r := h.ribbon
	r.AnimateToTop()
	if !r.Animating() {
		t.Fatal("expected transition in flight")
	}

	h.driver.Step(600 * time.Millisecond)
	want := 1 - math.Cos(math.Pi/4)
	if math.Abs(r.StraightenStrength-want) > 1e-9 {
		t.Fatalf("midway strength = %g, want %g", r.StraightenStrength, want)
	}
	if got := r.SegmentFromPullPoint(0.5).StraightenStrength; math.Abs(got-want) > 1e-9 {
		t.Fatalf("straighten was not re-run on tick: pivot strength %g", got)
	}

	h.driver.Step(600 * time.Millisecond)
	if r.StraightenStrength != 1 {
		t.Fatalf("final strength = %g, want 1", r.StraightenStrength)
	}
	if r.Animating() {
		t.Fatal("expected transition to finish")
	}
	for i, s := range r.Segments() {
		if s.StraightenStrength != 1 {
			t.Fatalf("segment %d strength = %g, want 1", i, s.StraightenStrength)
		}
	}
}

func TestAnimateToBottomReplacesRunningTransition(t *testing.T) {
	h := newHarness(t, 18)
	r := h.ribbon
	top := r.AnimateToTop()
	h.driver.Step(300 * time.Millisecond)
	r.AnimateToBottom()
	if !top.Done() {
		t.Fatal("expected earlier transition to be cancelled")
	}
	h.driver.Step(1200 * time.Millisecond)
	if r.StraightenStrength != 0 {
		t.Fatalf("final strength = %g, want 0", r.StraightenStrength)
	}
	if h.driver.Active() != 0 {
		t.Fatalf("expected no running tasks, got %d", h.driver.Active())
	}
}

func TestDetachStopsFramesAndTransitions(t *testing.T) {
	h := newHarness(t, 19)
	r := h.ribbon
	r.AnimateToTop()
	h.driver.Step(200 * time.Millisecond)
	r.DetachFromRenderFrame()

	strength := r.StraightenStrength
	before := r.Snapshot()
	h.driver.Step(2 * time.Second)
	h.frames.Emit()

	if r.StraightenStrength != strength {
		t.Fatalf("transition kept running after detach: %g -> %g", strength, r.StraightenStrength)
	}
	if after := r.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Fatal("chain changed after detach")
	}
	if r.Attached() || h.frames.Len() != 0 {
		t.Fatal("expected listener removed")
	}

	r.AttachToRenderFrame()
	r.AttachToRenderFrame()
	if h.frames.Len() != 1 {
		t.Fatalf("expected one listener after re-attach, got %d", h.frames.Len())
	}
}

func TestSnapshotFingerprintIsDeterministic(t *testing.T) {
	a := newHarness(t, 20)
	b := newHarness(t, 20)
	c := newHarness(t, 21)
	for range 30 {
		a.frames.Emit()
		b.frames.Emit()
		c.frames.Emit()
	}

	fa, err := a.ribbon.Snapshot().Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint() error = %v", err)
	}
	fb, _ := b.ribbon.Snapshot().Fingerprint()
	fc, _ := c.ribbon.Snapshot().Fingerprint()
	if fa != fb {
		t.Fatalf("same seed produced different chains: %s vs %s", fa, fb)
	}
	if fa == fc {
		t.Fatal("different seeds produced identical chains")
	}
	if len(fa) != 32 {
		t.Fatalf("expected 32 hex chars, got %q", fa)
	}
}

func TestSnapshotRecordsPivotPosition(t *testing.T) {
	r := newHarness(t, 22).ribbon
	if got := r.Snapshot().Pulled; got != -1 {
		t.Fatalf("expected no pivot, got %d", got)
	}
	r.SetPullPoint(0.5)
	snap := r.Snapshot()
	if snap.Pulled < 0 || r.Segments()[snap.Pulled] != r.Pulled() {
		t.Fatalf("snapshot pivot position %d does not match pivot", snap.Pulled)
	}
}
