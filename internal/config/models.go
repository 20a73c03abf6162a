package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// CurrentVersion is the settings file format version.
const CurrentVersion = 1

// ServerAuto selects mDNS discovery instead of a fixed server URL.
const ServerAuto = "auto"

// Settings represents the entire user configuration file.
// It stores client preferences and a little viewing history.
type Settings struct {
	Version    int          `yaml:"version"`
	Server     *ServerPrefs `yaml:"server,omitempty"`
	Storefront *Storefront  `yaml:"storefront,omitempty"`
	History    *History     `yaml:"history,omitempty"`
}

// ServerPrefs selects the backend the storefront talks to.
type ServerPrefs struct {
	// URL is the server base URL, ServerAuto for mDNS discovery, or empty
	// to run offline with simulated submissions.
	URL             string        `yaml:"url,omitempty"`
	DiscoverTimeout time.Duration `yaml:"discover_timeout"` // mDNS discovery timeout
}

// Storefront holds display and form preferences.
type Storefront struct {
	AutoplayInterval time.Duration `yaml:"autoplay_interval"`      // Testimonial carousel period
	JumpToIndicator  bool          `yaml:"jump_to_indicator"`      // Indicator keys jump instead of advancing one slide
	SubmitTimeout    time.Duration `yaml:"submit_timeout"`         // Bound on a single form submission
	CatalogPath      string        `yaml:"catalog_path,omitempty"` // Alternative catalog file
}

// History records what the user last looked at.
// Note: Emails, passwords and card details are NEVER stored.
type History struct {
	LastPlan      string    `yaml:"last_plan,omitempty"`      // Plan ID last chosen in the signup wizard
	LastDiagnosis string    `yaml:"last_diagnosis,omitempty"` // Plan ID last recommended by the diagnostic
	LastVisit     time.Time `yaml:"last_visit,omitempty"`
}

// NewSettings creates Settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version:    CurrentVersion,
		Server:     defaultServerPrefs(),
		Storefront: defaultStorefront(),
		History:    &History{},
	}
}

func defaultServerPrefs() *ServerPrefs {
	return &ServerPrefs{
		DiscoverTimeout: 5 * time.Second,
	}
}

func defaultStorefront() *Storefront {
	return &Storefront{
		AutoplayInterval: 3 * time.Second,
		SubmitTimeout:    30 * time.Second,
	}
}

// fillDefaults initialises sections missing from a loaded file.
func (s *Settings) fillDefaults() {
	if s.Server == nil {
		s.Server = defaultServerPrefs()
	}
	if s.Storefront == nil {
		s.Storefront = defaultStorefront()
	}
	if s.History == nil {
		s.History = &History{}
	}
}

// Validate checks values that would otherwise fail later at runtime.
func (s *Settings) Validate() error {
	if s.Version != CurrentVersion {
		return fmt.Errorf("unsupported config version: %d (expected %d)", s.Version, CurrentVersion)
	}
	if s.Server != nil {
		if err := ValidateServerURL(s.Server.URL); err != nil {
			return err
		}
		if s.Server.DiscoverTimeout < 0 {
			return fmt.Errorf("server.discover_timeout must not be negative")
		}
	}
	if s.Storefront != nil {
		if s.Storefront.AutoplayInterval < 0 {
			return fmt.Errorf("storefront.autoplay_interval must not be negative")
		}
		if s.Storefront.SubmitTimeout < 0 {
			return fmt.Errorf("storefront.submit_timeout must not be negative")
		}
	}
	return nil
}

// ValidateServerURL accepts "", ServerAuto or an http(s) URL with a host.
func ValidateServerURL(raw string) error {
	if raw == "" || raw == ServerAuto {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid server URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid server URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid server URL %q: missing host", raw)
	}
	return nil
}

// SetServerURL validates and stores the server URL. Trailing slashes are
// removed.
func (s *Settings) SetServerURL(raw string) error {
	raw = strings.TrimRight(strings.TrimSpace(raw), "/")
	if err := ValidateServerURL(raw); err != nil {
		return err
	}
	s.fillDefaults()
	s.Server.URL = raw
	return nil
}

// RecordPlan remembers the plan chosen in the signup wizard.
func (s *Settings) RecordPlan(planID string) {
	s.fillDefaults()
	s.History.LastPlan = planID
	s.History.LastVisit = time.Now()
}

// RecordDiagnosis remembers the plan recommended by the diagnostic.
func (s *Settings) RecordDiagnosis(planID string) {
	s.fillDefaults()
	s.History.LastDiagnosis = planID
	s.History.LastVisit = time.Now()
}
