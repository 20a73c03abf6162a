package carousel

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/muurk/midnightbrew/internal/clock"
	"github.com/muurk/midnightbrew/internal/logging"
)

// Default timings, matching the storefront's slide animation.
const (
	DefaultTransition     = 500 * time.Millisecond
	DefaultSettle         = 50 * time.Millisecond
	DefaultInterval       = 3 * time.Second
	DefaultSwipeThreshold = 50.0
	DefaultBlocks         = 3
)

// Result reports whether a navigation request changed the position.
type Result int

const (
	// Moved means the request was applied.
	Moved Result = iota
	// Ignored means the request was dropped (transition in flight, paused,
	// swipe too short, empty carousel). State is unchanged.
	Ignored
)

// String returns the result name
func (r Result) String() string {
	switch r {
	case Moved:
		return "moved"
	case Ignored:
		return "ignored"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

// Options configures a Carousel. Zero values select the defaults.
type Options struct {
	Name           string        // Used in logs
	Clock          clock.Clock   // Scheduler (default clock.Real())
	Blocks         int           // Copies of the base sequence, at least 3
	Transition     time.Duration // Slide animation length
	Settle         time.Duration // Delay before animation is re-enabled after a snap
	Interval       time.Duration // Autoplay period
	SwipeThreshold float64       // Minimum |deltaX| for a swipe to count

	// JumpToIndicator makes GoTo move forward to the requested item
	// instead of advancing by one slide.
	JumpToIndicator bool

	// OnChange, if set, is called after every state change with the new
	// frame. It runs without the carousel lock held.
	OnChange func(Frame)
}

// Frame is a read-only view of the carousel for rendering.
type Frame struct {
	Position          int  // Index into the display sequence
	Logical           int  // Position mod N
	Count             int  // N, number of logical items
	Blocks            int  // k, number of copies in the display sequence
	TransitionEnabled bool // Whether the last position change animates
	InFlight          bool // A transition is running
	Paused            bool // Autoplay suspended by hover/touch
	Autoplay          bool // Autoplay running
}

// Carousel presents a finite list as an endless cycle.
//
// The display sequence is the base sequence repeated Blocks times. Forward
// navigation walks through it; once a transition lands at or past 2N the
// position snaps back by 2N with animation disabled, so the visible item is
// unchanged. Backward navigation from 0 snaps to 2N-1 the same way.
//
// Only one transition may be in flight; requests arriving meanwhile are
// dropped, not queued. All timing goes through the injected clock and every
// scheduled callback is tied to a generation that Reset and Close bump.
type Carousel[T any] struct {
	opts  Options
	clock clock.Clock
	items []T

	mu                sync.Mutex
	position          int
	transitionEnabled bool
	inFlight          bool
	paused            bool
	autoplay          bool
	autoplayTimer     clock.Timer
	generation        uint64
}

// New creates a carousel over items positioned at 0.
func New[T any](items []T, opts Options) *Carousel[T] {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Blocks < DefaultBlocks {
		opts.Blocks = DefaultBlocks
	}
	if opts.Transition <= 0 {
		opts.Transition = DefaultTransition
	}
	if opts.Settle <= 0 {
		opts.Settle = DefaultSettle
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.SwipeThreshold <= 0 {
		opts.SwipeThreshold = DefaultSwipeThreshold
	}
	if opts.Name == "" {
		opts.Name = "carousel"
	}

	return &Carousel[T]{
		opts:              opts,
		clock:             opts.Clock,
		items:             append([]T(nil), items...),
		transitionEnabled: true,
	}
}

// Len returns N, the number of logical items.
func (c *Carousel[T]) Len() int {
	return len(c.items)
}

// Items returns the base sequence.
func (c *Carousel[T]) Items() []T {
	return c.items
}

// Display returns the display sequence (the base sequence repeated Blocks
// times).
func (c *Carousel[T]) Display() []T {
	out := make([]T, 0, len(c.items)*c.opts.Blocks)
	for i := 0; i < c.opts.Blocks; i++ {
		out = append(out, c.items...)
	}
	return out
}

// Current returns the logical item at the current position.
func (c *Carousel[T]) Current() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	if len(c.items) == 0 {
		return zero, false
	}
	return c.items[c.position%len(c.items)], true
}

// Snapshot returns the current frame.
func (c *Carousel[T]) Snapshot() Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frameLocked()
}

func (c *Carousel[T]) frameLocked() Frame {
	f := Frame{
		Position:          c.position,
		Count:             len(c.items),
		Blocks:            c.opts.Blocks,
		TransitionEnabled: c.transitionEnabled,
		InFlight:          c.inFlight,
		Paused:            c.paused,
		Autoplay:          c.autoplay,
	}
	if len(c.items) > 0 {
		f.Logical = c.position % len(c.items)
	}
	return f
}

// unlockAndNotify releases the lock and reports the frame captured while
// it was held.
func (c *Carousel[T]) unlockAndNotify() {
	f := c.frameLocked()
	c.mu.Unlock()

	logging.LogCarouselFrame(c.opts.Name, f.Position, f.Logical, f.TransitionEnabled)
	if c.opts.OnChange != nil {
		c.opts.OnChange(f)
	}
}

// Next advances one slide.
func (c *Carousel[T]) Next() Result {
	return c.forward(1)
}

// forward starts an animated transition of steps slides. The boundary is
// checked when the transition finishes.
func (c *Carousel[T]) forward(steps int) Result {
	c.mu.Lock()
	if c.inFlight || len(c.items) == 0 || steps <= 0 {
		c.mu.Unlock()
		return Ignored
	}

	c.inFlight = true
	c.transitionEnabled = true
	c.position += steps
	gen := c.generation
	c.clock.AfterFunc(c.opts.Transition, func() { c.finishForward(gen) })
	c.unlockAndNotify()
	return Moved
}

// finishForward runs when a forward transition ends.
func (c *Carousel[T]) finishForward(gen uint64) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}

	n := len(c.items)
	c.inFlight = false
	if c.position < 2*n {
		c.unlockAndNotify()
		return
	}

	c.transitionEnabled = false
	c.position -= 2 * n
	c.clock.AfterFunc(c.opts.Settle, func() { c.settle(gen) })
	c.unlockAndNotify()
}

// settle re-enables animation after a snap.
func (c *Carousel[T]) settle(gen uint64) {
	c.mu.Lock()
	if gen != c.generation || c.transitionEnabled {
		c.mu.Unlock()
		return
	}
	c.transitionEnabled = true
	c.unlockAndNotify()
}

// Prev goes back one slide. From position 0 it snaps to 2N-1 without
// animation.
func (c *Carousel[T]) Prev() Result {
	c.mu.Lock()
	if c.inFlight || len(c.items) == 0 {
		c.mu.Unlock()
		return Ignored
	}

	c.inFlight = true
	gen := c.generation

	if c.position == 0 {
		c.transitionEnabled = false
		c.position = 2*len(c.items) - 1
		c.clock.AfterFunc(c.opts.Settle, func() { c.finishSnapBack(gen) })
	} else {
		c.transitionEnabled = true
		c.position--
		c.clock.AfterFunc(c.opts.Transition, func() { c.finishBack(gen) })
	}
	c.unlockAndNotify()
	return Moved
}

func (c *Carousel[T]) finishBack(gen uint64) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	c.inFlight = false
	c.unlockAndNotify()
}

func (c *Carousel[T]) finishSnapBack(gen uint64) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	c.inFlight = false
	c.transitionEnabled = true
	c.unlockAndNotify()
}

// GoTo handles an indicator click for logical item i.
//
// By default it advances one slide whatever i is, which is how the
// storefront has always behaved. With Options.JumpToIndicator it moves
// forward to the nearest position showing item i.
func (c *Carousel[T]) GoTo(i int) Result {
	n := len(c.items)
	if n == 0 || i < 0 || i >= n {
		return Ignored
	}
	if !c.opts.JumpToIndicator {
		return c.Next()
	}

	c.mu.Lock()
	steps := ((i-c.position%n)%n + n) % n
	c.mu.Unlock()
	return c.forward(steps)
}

// OnSwipe handles a horizontal swipe. Any swipe longer than the threshold
// advances, whatever its direction.
func (c *Carousel[T]) OnSwipe(deltaX float64) Result {
	if math.Abs(deltaX) <= c.opts.SwipeThreshold {
		return Ignored
	}
	return c.Next()
}

// Tick is the autoplay step. It advances unless paused.
func (c *Carousel[T]) Tick() Result {
	c.mu.Lock()
	paused := c.paused
	c.mu.Unlock()
	if paused {
		return Ignored
	}
	return c.Next()
}

// Start begins autoplay: Tick is called every Interval while not paused.
func (c *Carousel[T]) Start() {
	c.mu.Lock()
	if c.autoplay {
		c.mu.Unlock()
		return
	}
	c.autoplay = true
	c.armLocked()
	c.unlockAndNotify()
}

// Stop ends autoplay.
func (c *Carousel[T]) Stop() {
	c.mu.Lock()
	if !c.autoplay {
		c.mu.Unlock()
		return
	}
	c.autoplay = false
	c.disarmLocked()
	c.unlockAndNotify()
}

// SetPaused suspends or resumes autoplay, as while the pointer hovers the
// carousel. Resuming restarts the autoplay period from zero.
func (c *Carousel[T]) SetPaused(paused bool) {
	c.mu.Lock()
	if c.paused == paused {
		c.mu.Unlock()
		return
	}
	c.paused = paused
	if c.autoplay {
		if paused {
			c.disarmLocked()
		} else {
			c.armLocked()
		}
	}
	c.unlockAndNotify()
}

func (c *Carousel[T]) armLocked() {
	c.disarmLocked()
	if c.paused {
		return
	}
	gen := c.generation
	c.autoplayTimer = c.clock.AfterFunc(c.opts.Interval, func() { c.onAutoplay(gen) })
}

func (c *Carousel[T]) disarmLocked() {
	if c.autoplayTimer != nil {
		c.autoplayTimer.Stop()
		c.autoplayTimer = nil
	}
}

func (c *Carousel[T]) onAutoplay(gen uint64) {
	c.mu.Lock()
	if gen != c.generation || !c.autoplay || c.paused {
		c.mu.Unlock()
		return
	}
	c.autoplayTimer = nil
	c.mu.Unlock()

	c.Tick()

	c.mu.Lock()
	if gen == c.generation && c.autoplay && c.autoplayTimer == nil {
		c.armLocked()
	}
	c.mu.Unlock()
}

// Reset returns to position 0 and drops any pending transition. Autoplay
// keeps running if it was started.
func (c *Carousel[T]) Reset() {
	c.mu.Lock()
	c.generation++
	c.position = 0
	c.transitionEnabled = true
	c.inFlight = false
	if c.autoplay {
		c.armLocked()
	}
	c.unlockAndNotify()
}

// Close stops autoplay and cancels every pending callback.
func (c *Carousel[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.autoplay = false
	c.inFlight = false
	c.disarmLocked()
}
