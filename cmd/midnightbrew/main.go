// Midnightbrew is the terminal storefront for the Midnight Brew coffee
// subscription.
//
// It shows the subscription plans, the coffee of the month and customer
// testimonials, runs the taste diagnostic and takes signups and contact
// messages. Signups and messages go to a midnightbrew-server when one is
// configured and are simulated locally otherwise.
//
// Usage:
//
//	midnightbrew [command] [flags]
//
// Running without arguments launches the interactive storefront.
// See 'midnightbrew --help' for available commands.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/midnightbrew/internal/catalog"
	"github.com/muurk/midnightbrew/internal/config"
	"github.com/muurk/midnightbrew/internal/contact"
	"github.com/muurk/midnightbrew/internal/discovery"
	"github.com/muurk/midnightbrew/internal/logging"
	"github.com/muurk/midnightbrew/internal/signup"
	"github.com/muurk/midnightbrew/internal/tui"
	"github.com/muurk/midnightbrew/internal/version"
)

// serverAuto asks for mDNS discovery instead of a fixed URL.
const serverAuto = "auto"

// Global flags
var (
	serverURL   string
	catalogPath string
	logLevel    string
	logFile     string
	jump        bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "midnightbrew",
	Short: "Midnight Brew Terminal Storefront",
	Long: `Browse and subscribe to Midnight Brew specialty coffee from the terminal.

Shows the subscription plans, the coffee of the month and customer
testimonials, runs the taste diagnostic and takes signups and contact
messages.

Signups and contact messages are sent to a midnightbrew-server when one is
configured (--server, or server.url in the config file). Use --server auto
to find one on the local network. Without a server, submissions are
simulated.

If no command is specified, the interactive storefront will launch.`,
	Version: version.Version,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
	RunE: runStorefront,
}

func init() {
	// Set here rather than in the literal: initLogging refers to rootCmd.
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return initLogging(cmd)
	}

	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Storefront server URL, or 'auto' to discover one via mDNS")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "Catalog YAML file (default: embedded catalog)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log file for the interactive storefront (default: midnightbrew.log in the config directory)")
	rootCmd.Flags().BoolVar(&jump, "jump", false, "Number keys jump straight to a testimonial")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Line(version.Storefront))
	},
}

// initLogging sets up zap. The interactive storefront owns the terminal,
// so its log goes to a file.
func initLogging(cmd *cobra.Command) error {
	opts := logging.Options{Level: logLevel}
	if cmd == rootCmd {
		opts.Output = logFile
		if opts.Output == "" {
			dir, err := config.GetConfigDir()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return fmt.Errorf("failed to create config directory: %w", err)
			}
			opts.Output = filepath.Join(dir, "midnightbrew.log")
		}
	}
	return logging.InitializeWithOptions(opts)
}

func runStorefront(cmd *cobra.Command, args []string) error {
	settings, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	c, err := loadCatalog(settings)
	if err != nil {
		return err
	}

	base, err := resolveServer(cmd.Context(), settings)
	if err != nil {
		return err
	}

	opts := tui.Options{
		Catalog:          c,
		ServerURL:        base,
		AutoplayInterval: settings.Storefront.AutoplayInterval,
		JumpToIndicator:  jump || settings.Storefront.JumpToIndicator,
		SubmitTimeout:    settings.Storefront.SubmitTimeout,
		OnPlanChosen: func(planID string) {
			settings.RecordPlan(planID)
			saveSettings(settings)
		},
		OnDiagnosis: func(planID string) {
			settings.RecordDiagnosis(planID)
			saveSettings(settings)
		},
	}
	if base != "" {
		opts.Signup = signup.NewHTTPSubmitter(base)
		opts.Contact = contact.NewHTTPSender(base)
	}

	logging.Info("Starting storefront",
		zap.String("version", version.Full()),
		zap.String("server", base),
	)

	if err := tui.Run(opts); err != nil {
		return fmt.Errorf("storefront error: %w", err)
	}
	return nil
}

// loadCatalog reads --catalog, then the configured catalog path, and falls
// back to the embedded catalog.
func loadCatalog(settings *config.Settings) (*catalog.Catalog, error) {
	path := catalogPath
	if path == "" && settings != nil && settings.Storefront != nil {
		path = settings.Storefront.CatalogPath
	}
	if path == "" {
		return catalog.Default(), nil
	}

	c, err := catalog.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return c, nil
}

// resolveServer returns the server base URL from --server or the settings.
// An empty result means no server: submissions are simulated.
func resolveServer(ctx context.Context, settings *config.Settings) (string, error) {
	raw := serverURL
	if raw == "" && settings != nil && settings.Server != nil {
		raw = settings.Server.URL
	}

	switch raw {
	case "":
		return "", nil
	case serverAuto:
		if ctx == nil {
			ctx = context.Background()
		}
		scanner := discovery.NewScanner()
		if settings != nil && settings.Server != nil && settings.Server.DiscoverTimeout > 0 {
			scanner.Timeout = settings.Server.DiscoverTimeout
		}

		svc, err := scanner.FindFirst(ctx)
		if err != nil {
			return "", fmt.Errorf("no storefront server found on the network: %w", err)
		}
		logging.Info("Discovered server", zap.String("instance", svc.Instance), zap.String("url", svc.BaseURL()))
		return svc.BaseURL(), nil
	default:
		if err := config.ValidateServerURL(raw); err != nil {
			return "", err
		}
		return raw, nil
	}
}

func saveSettings(settings *config.Settings) {
	if err := settings.Save(); err != nil {
		logging.Warn("Failed to save settings", zap.Error(err))
	}
}
