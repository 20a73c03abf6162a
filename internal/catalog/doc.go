// Package catalog holds the storefront content shown by the terminal
// client and served by the API: subscription plans, the coffee of the
// month, testimonials, FAQ, brand commitments and contact details.
//
// The content ships inside the binary as catalog.yaml. A replacement
// document can be supplied with Load (the --catalog flag), in which case it
// is validated the same way as the embedded one.
package catalog
