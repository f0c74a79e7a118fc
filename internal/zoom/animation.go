package zoom

import "math"

const (
	// EaseFactor divides the remaining distance closed on each frame.
	EaseFactor = 3.0
	// Epsilon ends an animation once it is this close to its target.
	Epsilon = 0.001
)

// Scheduler defers a callback to the next frame. The returned func cancels
// the callback if it has not yet run.
type Scheduler interface {
	Schedule(fn func()) (cancel func())
}

// Animation eases a value toward a target, one step per scheduled frame.
// Each step moves current by (target-current)/EaseFactor and reports it.
type Animation struct {
	sched   Scheduler
	onStep  func(float64)
	current float64
	target  float64
	running bool
	gen     int
	cancel  func()
}

// NewAnimation returns an idle animation reporting each step to onStep.
func NewAnimation(s Scheduler, onStep func(float64)) *Animation {
	return &Animation{sched: s, onStep: onStep}
}

// Start cancels any pending frame and eases from -> target. The first step
// runs synchronously.
func (a *Animation) Start(from, target float64) {
	a.Cancel()
	a.current, a.target = from, target
	a.running = true
	a.step()
}

// Cancel drops the pending frame. Safe to call at any time.
func (a *Animation) Cancel() {
	a.gen++
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.running = false
}

func (a *Animation) Running() bool    { return a.running }
func (a *Animation) Current() float64 { return a.current }
func (a *Animation) Target() float64  { return a.target }

func (a *Animation) step() {
	a.cancel = nil
	gen := a.gen
	a.current += (a.target - a.current) / EaseFactor
	a.onStep(a.current)
	if gen != a.gen {
		// onStep restarted or cancelled us.
		return
	}
	if math.Abs(a.target-a.current) > Epsilon {
		a.cancel = a.sched.Schedule(a.step)
		return
	}
	a.running = false
}

// FrameQueue is a manual Scheduler. The host drains it once per frame with
// RunFrame; callbacks scheduled during a frame wait for the next one.
type FrameQueue struct {
	queue  []*frame
	nextID int
}

type frame struct {
	id int
	fn func()
}

func NewFrameQueue() *FrameQueue { return &FrameQueue{} }

func (q *FrameQueue) Schedule(fn func()) func() {
	q.nextID++
	id := q.nextID
	q.queue = append(q.queue, &frame{id: id, fn: fn})
	return func() {
		for i, f := range q.queue {
			if f.id == id {
				q.queue = append(q.queue[:i:i], q.queue[i+1:]...)
				return
			}
		}
	}
}

// Pending reports whether any callback is waiting.
func (q *FrameQueue) Pending() bool { return len(q.queue) > 0 }

// RunFrame runs the callbacks queued before the call and returns how many ran.
func (q *FrameQueue) RunFrame() int {
	batch := q.queue
	q.queue = nil
	for _, f := range batch {
		f.fn()
	}
	return len(batch)
}
