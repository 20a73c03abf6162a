package stream

import (
	"github.com/muurk/midnightbrew/internal/carousel"
	"github.com/muurk/midnightbrew/internal/catalog"
)

// TestimonialsPath is the WebSocket endpoint streaming the testimonial
// carousel.
const TestimonialsPath = "/ws/testimonials"

// Message types sent by the server.
const (
	TypeItems = "items" // First message: the base sequence
	TypeFrame = "frame" // Carousel state after every change
	TypeError = "error" // A command could not be parsed
)

// Commands accepted from the client.
const (
	CommandNext   = "next"
	CommandPrev   = "prev"
	CommandGoTo   = "goto"
	CommandSwipe  = "swipe"
	CommandPause  = "pause"
	CommandResume = "resume"
	CommandReset  = "reset"
)

// Message is a server-to-client message.
type Message struct {
	Type  string                `json:"type"`
	Items []catalog.Testimonial `json:"items,omitempty"`
	Frame *Frame                `json:"frame,omitempty"`
	Error string                `json:"error,omitempty"`
}

// Frame mirrors carousel.Frame on the wire.
type Frame struct {
	Position          int  `json:"position"`
	Logical           int  `json:"logical"`
	Count             int  `json:"count"`
	Blocks            int  `json:"blocks"`
	TransitionEnabled bool `json:"transitionEnabled"`
	InFlight          bool `json:"inFlight"`
	Paused            bool `json:"paused"`
	Autoplay          bool `json:"autoplay"`
}

// FrameFrom converts a carousel frame.
func FrameFrom(f carousel.Frame) *Frame {
	return &Frame{
		Position:          f.Position,
		Logical:           f.Logical,
		Count:             f.Count,
		Blocks:            f.Blocks,
		TransitionEnabled: f.TransitionEnabled,
		InFlight:          f.InFlight,
		Paused:            f.Paused,
		Autoplay:          f.Autoplay,
	}
}

// Command is a client-to-server message.
type Command struct {
	Command string  `json:"command"`
	Index   int     `json:"index,omitempty"`  // goto
	DeltaX  float64 `json:"deltaX,omitempty"` // swipe
}

// Carousel converts the frame back.
func (f *Frame) Carousel() carousel.Frame {
	return carousel.Frame{
		Position:          f.Position,
		Logical:           f.Logical,
		Count:             f.Count,
		Blocks:            f.Blocks,
		TransitionEnabled: f.TransitionEnabled,
		InFlight:          f.InFlight,
		Paused:            f.Paused,
		Autoplay:          f.Autoplay,
	}
}
