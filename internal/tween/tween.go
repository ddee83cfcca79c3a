// Package tween drives time boxed interpolations. Tasks advance only when the
// owner calls Driver.Step, so every callback runs on the caller's goroutine.
package tween

import (
	"time"

	"github.com/fogleman/ease"
)

// Func maps linear progress in [0,1] to eased progress.
type Func func(t float64) float64

var curves = map[string]Func{
	"linear":         ease.Linear,
	"easeInSine":     ease.InSine,
	"easeOutSine":    ease.OutSine,
	"easeInOutSine":  ease.InOutSine,
	"easeInQuad":     ease.InQuad,
	"easeOutQuad":    ease.OutQuad,
	"easeInOutCubic": ease.InOutCubic,
}

// Lookup resolves a named easing curve.
func Lookup(name string) (Func, bool) {
	f, ok := curves[name]
	return f, ok
}

// Names returns the known curve names.
func Names() []string {
	return []string{"linear", "easeInSine", "easeOutSine", "easeInOutSine", "easeInQuad", "easeOutQuad", "easeInOutCubic"}
}

// Options configures a task.
type Options struct {
	Ease       Func
	OnUpdate   func(v float64)
	OnComplete func()
}

// Task is one running interpolation.
type Task struct {
	from     float64
	to       float64
	duration time.Duration
	elapsed  time.Duration
	value    float64
	opts     Options
	done     bool
}

// Value returns the last interpolated value.
func (t *Task) Value() float64 { return t.value }

// Done reports whether the task completed or was cancelled.
func (t *Task) Done() bool { return t.done }

// Cancel stops the task without calling OnComplete. Safe to call more than once.
func (t *Task) Cancel() { t.done = true }

func (t *Task) step(dt time.Duration) {
	t.elapsed += dt
	progress := 1.0
	if t.duration > 0 && t.elapsed < t.duration {
		progress = float64(t.elapsed) / float64(t.duration)
	}
	if progress >= 1 {
		t.value = t.to
	} else {
		t.value = t.from + (t.to-t.from)*t.opts.Ease(progress)
	}
	if t.opts.OnUpdate != nil {
		t.opts.OnUpdate(t.value)
	}
	if progress >= 1 && !t.done {
		t.done = true
		if t.opts.OnComplete != nil {
			t.opts.OnComplete()
		}
	}
}

// Driver owns the set of running tasks.
type Driver struct {
	tasks []*Task
}

// NewDriver creates an idle Driver.
func NewDriver() *Driver {
	return &Driver{}
}

// Start begins interpolating from one value to another over d.
// A nil Ease is linear.
func (d *Driver) Start(from, to float64, duration time.Duration, opts Options) *Task {
	if opts.Ease == nil {
		opts.Ease = ease.Linear
	}
	t := &Task{from: from, to: to, duration: duration, value: from, opts: opts}
	d.tasks = append(d.tasks, t)
	return t
}

// Step advances every live task by dt. Tasks started from a callback first
// tick on the next Step.
func (d *Driver) Step(dt time.Duration) {
	live := d.tasks
	for _, t := range live {
		if t.done {
			continue
		}
		t.step(dt)
	}
	kept := d.tasks[:0:0]
	for _, t := range d.tasks {
		if !t.done {
			kept = append(kept, t)
		}
	}
	d.tasks = kept
}

// Active returns the number of tasks still running.
func (d *Driver) Active() int {
	n := 0
	for _, t := range d.tasks {
		if !t.done {
			n++
		}
	}
	return n
}
