package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFull(t *testing.T) {
	full := Full()
	if !strings.Contains(full, Version) || !strings.Contains(full, Commit) {
		t.Errorf("Full() = %q, want version %q and commit %q", full, Version, Commit)
	}
}

func TestLine(t *testing.T) {
	got := Line(Server)
	want := "midnightbrew-server " + Version + " (commit: " + Commit + ")"
	if got != want {
		t.Errorf("Line() = %q, want %q", got, want)
	}
}

func TestUserAgent(t *testing.T) {
	if got, want := UserAgent(Storefront), "midnightbrew/"+Version; got != want {
		t.Errorf("UserAgent() = %q, want %q", got, want)
	}
}

func TestFromBuildSettings(t *testing.T) {
	tests := []struct {
		name        string
		settings    []debug.BuildSetting
		wantVersion string
		wantCommit  string
	}{
		{
			name:        "no vcs stamp",
			settings:    []debug.BuildSetting{{Key: "GOOS", Value: "linux"}},
			wantVersion: "",
			wantCommit:  "",
		},
		{
			name: "clean tree",
			settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "0123456789abcdef"},
				{Key: "vcs.modified", Value: "false"},
				{Key: "vcs.time", Value: "2026-03-14T09:30:00Z"},
			},
			wantVersion: "dev-20260314",
			wantCommit:  "0123456",
		},
		{
			name: "dirty tree with short revision",
			settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "abc"},
				{Key: "vcs.modified", Value: "true"},
			},
			wantVersion: "",
			wantCommit:  "abc-dirty",
		},
		{
			name:        "unparseable time",
			settings:    []debug.BuildSetting{{Key: "vcs.time", Value: "yesterday"}},
			wantVersion: "",
			wantCommit:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, c := fromBuildSettings(tt.settings)
			if v != tt.wantVersion || c != tt.wantCommit {
				t.Errorf("fromBuildSettings() = (%q, %q), want (%q, %q)", v, c, tt.wantVersion, tt.wantCommit)
			}
		})
	}
}
