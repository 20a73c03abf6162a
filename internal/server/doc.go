// Package server implements the Midnight Brew storefront API.
//
// The server exposes the catalog, accepts signup applications and contact
// messages, and streams the testimonial carousel over a WebSocket. It is
// the backend the terminal storefront talks to when started with
// --server; without one, the storefront uses simulated submitters.
//
// # Routes
//
//	GET  /api/v1/catalog       full catalog (plans, coffee, testimonials, FAQ)
//	GET  /api/v1/plans/{id}    one plan, 404 if unknown
//	POST /api/v1/signups       201 Confirmation, 422 field errors, 409 duplicate email
//	POST /api/v1/contact       202 Ack, 422 field errors
//	GET  /ws/testimonials      WebSocket carousel stream (?jump=true for indicator jumps)
//	GET  /healthz              liveness
//	GET  /metrics              Prometheus metrics
//
// Signup applications are validated with the same rules as the client
// form. Retries carrying the same Idempotency-Key header get the original
// confirmation back instead of a duplicate-email error. Accepted
// applications live in memory only.
//
// # Testimonial Stream
//
// Each WebSocket connection owns its own carousel on the server clock, so
// one client pausing or navigating never affects another. Messages are
// described in package stream.
//
// # Usage Example
//
//	srv, err := server.New(&server.Config{
//	    Port:        8080,
//	    SignupDelay: server.DefaultSignupDelay,
//	    Advertise:   true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// Run blocks until SIGINT or SIGTERM, then shuts down gracefully: the HTTP
// listener stops, WebSocket clients receive a going-away close frame and
// the mDNS advertisement is withdrawn.
package server
