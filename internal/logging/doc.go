// Package logging provides structured logging for Midnight Brew.
//
// This package wraps a global zap logger with convenience functions for the
// logging patterns used across the storefront and the signup server. It is
// silent until initialized with a level, so the terminal UI never prints log
// lines over the screen by accident.
//
// # Log Levels
//
//   - Debug: Carousel frames, ignored field updates, validation details
//   - Info: Step transitions, submissions, HTTP requests, connections
//   - Warn: Rejected submissions, dropped WebSocket clients
//   - Error: Startup failures, listener errors
//
// # Structured Logging
//
//	logging.Info("Signup accepted",
//	    zap.String("plan", "enthusiast"),
//	    zap.String("email", logging.MaskEmail(email)),
//	)
//
// Customer data is never logged in clear: use MaskEmail and MaskCardNumber,
// and log field names rather than values on validation failures.
//
// # Configuration
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// When no level is given, MIDNIGHTBREW_LOG_LEVEL is consulted. The terminal
// storefront uses InitializeWithOptions to write to a file instead of stdout.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use once initialized.
package logging
