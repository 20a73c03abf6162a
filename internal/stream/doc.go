// Package stream defines the testimonial carousel WebSocket protocol and a
// client for it.
//
// The server owns one carousel per connection. After the upgrade it sends
// an "items" message with the testimonials, then a "frame" message after
// every state change (including autoplay ticks and snap-backs). The client
// drives the carousel with small JSON commands:
//
//	{"command":"next"}
//	{"command":"goto","index":2}
//	{"command":"swipe","deltaX":-80}
//	{"command":"pause"}
//
// Connecting with ?jump=true makes indicator clicks jump to the requested
// item instead of advancing by one slide.
package stream
