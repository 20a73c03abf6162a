// Package tui implements the interactive Midnight Brew storefront.
//
// Built on Bubble Tea, it follows the Elm architecture: every screen is a
// value model with Init, Update and View, and AppModel routes messages to
// the active screen and handles transitions between them.
//
// # Screens
//
//   - Menu: entry point listing every section
//   - Plans: plan cards; enter starts the signup for the selected plan
//   - Coffee: the coffee of the month with its flavour profile and story
//   - Testimonials: the endless testimonial carousel
//   - FAQ: an accordion where any number of answers can be open
//   - Diagnostic: three questions leading to a plan recommendation
//   - Signup: the four-step signup wizard
//   - Contact: the contact form
//
// All screens use RenderApplicationContainer for a consistent layout with
// the application header and a context-sensitive help footer.
//
// # Testimonial Feed
//
// When a server URL is configured the carousel is streamed over WebSocket
// from the server, and key presses are sent back as commands. Otherwise (or
// when the server cannot be reached) a carousel runs in process. Either way
// frame updates arrive as messages through a command that blocks on the
// feed, so carousel timers never touch the model directly.
//
// # Submissions
//
// Signup and contact submissions run in a command off the update loop. The
// wizard engine rejects duplicate submissions while one is in flight, and
// a spinner is shown until the result message arrives.
//
// # Usage
//
//	err := tui.Run(tui.Options{
//	    Catalog:   catalog.Default(),
//	    ServerURL: "http://localhost:8080",
//	    Signup:    signup.NewHTTPSubmitter("http://localhost:8080"),
//	})
package tui
