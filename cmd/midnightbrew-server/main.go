// Midnightbrew-server is the backend for the Midnight Brew terminal
// storefront.
//
// It serves the catalog, accepts signups and contact messages over a JSON
// API, streams the testimonial carousel over WebSocket and can advertise
// itself on the local network via mDNS so storefronts find it with
// --server auto.
//
// Usage:
//
//	midnightbrew-server [flags]
//
// See 'midnightbrew-server --help' for available options.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/midnightbrew/internal/catalog"
	"github.com/muurk/midnightbrew/internal/logging"
	"github.com/muurk/midnightbrew/internal/server"
	"github.com/muurk/midnightbrew/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Server flags
var (
	certPath     string
	keyPath      string
	host         string
	port         int
	logLevel     string
	logFormat    string
	catalogPath  string
	signupDelay  time.Duration
	autoplay     time.Duration
	advertise    bool
	instanceName string
)

var rootCmd = &cobra.Command{
	Use:   "midnightbrew-server",
	Short: "Midnight Brew Storefront Server",
	Long: `Backend for the Midnight Brew terminal storefront.

Serves the catalog and accepts signups and contact messages over a JSON API,
streams the testimonial carousel over WebSocket and exposes Prometheus
metrics on /metrics.

HTTPS is enabled when both --cert and --key are given. With --advertise the
server registers itself via mDNS so 'midnightbrew --server auto' finds it.`,
	Example: `  # Plain HTTP on the default port
  midnightbrew-server

  # Advertise on the local network with debug logging
  midnightbrew-server --advertise --log-level debug

  # HTTPS with your own certificate
  midnightbrew-server --cert fullchain.pem --key privkey.pem --port 8443

  # Faster signups and carousel for demos
  midnightbrew-server --signup-delay 0 --autoplay 1s`,
	Version: version.Version,
	Args:    cobra.NoArgs,
	RunE:    runServer,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.Flags().StringVar(&certPath, "cert", "", "Path to TLS certificate file (enables HTTPS with --key)")
	rootCmd.Flags().StringVar(&keyPath, "key", "", "Path to TLS private key file")
	rootCmd.Flags().StringVar(&host, "host", "", "Listen address (empty = all interfaces)")
	rootCmd.Flags().IntVar(&port, "port", server.DefaultPort, "Server port")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.Flags().StringVar(&logFormat, "log-format", "console", "Log encoding (console, json)")
	rootCmd.Flags().StringVar(&catalogPath, "catalog", "", "Catalog YAML file (default: embedded catalog)")
	rootCmd.Flags().DurationVar(&signupDelay, "signup-delay", server.DefaultSignupDelay, "Simulated processing time per signup")
	rootCmd.Flags().DurationVar(&autoplay, "autoplay", 0, "Testimonial carousel period (0 = 3s)")
	rootCmd.Flags().BoolVar(&advertise, "advertise", false, "Advertise the server via mDNS")
	rootCmd.Flags().StringVar(&instanceName, "instance", "", "mDNS instance name (default: Midnight Brew on <hostname>)")

	rootCmd.AddCommand(versionCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	// Validate: Either both cert and key are provided, or neither
	if (certPath != "") != (keyPath != "") {
		return fmt.Errorf("both --cert and --key must be provided together, or neither")
	}
	if certPath != "" {
		if _, err := os.Stat(certPath); os.IsNotExist(err) {
			return fmt.Errorf("certificate file not found: %s", certPath)
		}
		if _, err := os.Stat(keyPath); os.IsNotExist(err) {
			return fmt.Errorf("private key file not found: %s", keyPath)
		}
	}
	if signupDelay < 0 || autoplay < 0 {
		return fmt.Errorf("--signup-delay and --autoplay must not be negative")
	}

	if err := logging.InitializeWithOptions(logging.Options{Level: logLevel, Encoding: logFormat}); err != nil {
		return err
	}
	defer logging.Sync()

	c := catalog.Default()
	if catalogPath != "" {
		var err error
		if c, err = catalog.Load(catalogPath); err != nil {
			return fmt.Errorf("failed to load catalog: %w", err)
		}
	}

	srv, err := server.New(&server.Config{
		Host:             host,
		Port:             port,
		CertPath:         certPath,
		KeyPath:          keyPath,
		Catalog:          c,
		SignupDelay:      signupDelay,
		AutoplayInterval: autoplay,
		Advertise:        advertise,
		InstanceName:     instanceName,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logging.Info("midnightbrew-server starting",
		zap.String("version", version.Full()),
		zap.Int("plans", len(c.Plans)),
		zap.Int("testimonials", len(c.Testimonials)),
	)
	return srv.Run()
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Line(version.Server))
	},
}
