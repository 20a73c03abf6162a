// Package config provides user configuration management for the midnightbrew
// terminal client.
//
// This package manages a YAML-based settings file with the server to talk
// to, carousel and form preferences, and the last viewed plan. Command line
// flags override what is stored here. The file follows OS-specific
// conventions for its location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/midnightbrew/config.yaml or $HOME/.config/midnightbrew/config.yaml
//   - macOS: $HOME/.config/midnightbrew/config.yaml
//   - Windows: %LOCALAPPDATA%\midnightbrew\config.yaml
//
// # Security
//
// IMPORTANT: This package NEVER stores email addresses, passwords or card
// details entered in the signup and contact forms.
//
// # Usage Example
//
//	settings, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := settings.SetServerURL("http://localhost:8080"); err != nil {
//	    log.Fatal(err)
//	}
//	settings.RecordPlan("enthusiast")
//
//	// Save changes atomically
//	if err := settings.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The global settings use sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config
