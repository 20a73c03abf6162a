// Package carousel implements an endlessly cycling slide deck over a finite
// list of items.
//
// The carousel keeps an index into a display sequence made of the base
// items repeated Blocks times (three by default). Rendering code shows the
// display sequence and translates it by Position; the boundary snaps happen
// with TransitionEnabled false so the viewer never sees the jump.
//
//	items:   A B C
//	display: A B C | A B C | A B C
//	                       ^ 2N: snap back to 0 after the transition ends
//
// Navigation requests (Next, Prev, GoTo, OnSwipe, Tick) return Moved or
// Ignored. A request that arrives while a transition is in flight is
// Ignored; nothing is queued.
//
// Timers come from an injected clock.Clock, so tests can use a
// clock.Manual and step through animations deterministically:
//
//	m := clock.NewManual(time.Unix(0, 0))
//	c := carousel.New(items, carousel.Options{Clock: m})
//	c.Next()
//	m.Advance(carousel.DefaultTransition)
package carousel
