// Package urls provides centralized constants for the storefront web pages
// referenced from the command line tools.
//
// Usage:
//
//	import "github.com/muurk/midnightbrew/internal/urls"
//
//	fmt.Printf("Questions? See: %s\n", urls.HelpCenter)
package urls
