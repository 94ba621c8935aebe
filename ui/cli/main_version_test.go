// Copyright (c) 2026 Keymaster Team
// Activation Console - license activation lifecycle client
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"runtime/debug"
	"strings"
	"testing"

	"github.com/toeirei/activation-console/buildvars"
)

// resetBuildVars puts every version source back to its unlinked default for
// the duration of a test.
func resetBuildVars(t *testing.T) {
	t.Helper()
	origVersion, origCommit, origDate := version, gitCommit, buildDate
	origBV, origBC := buildvars.Version, buildvars.Commit
	t.Cleanup(func() {
		version, gitCommit, buildDate = origVersion, origCommit, origDate
		buildvars.Version, buildvars.Commit = origBV, origBC
	})
	version, gitCommit, buildDate = "dev", "dev", ""
	buildvars.Version, buildvars.Commit = "", ""
}

func TestResolveBuildVersion(t *testing.T) {
	tests := []struct {
		name       string
		linked     [2]string // buildvars.Version, buildvars.Commit
		info       *debug.BuildInfo
		wantVer    string
		wantCommit string
		wantDate   string
	}{
		{
			name:       "module version wins",
			info:       &debug.BuildInfo{Main: debug.Module{Path: modulePath, Version: "v1.2.3"}},
			wantVer:    "v1.2.3",
			wantCommit: "dev",
		},
		{
			name:       "linked build vars",
			linked:     [2]string{"v0.9.0", "abc123"},
			info:       &debug.BuildInfo{Main: debug.Module{Path: modulePath, Version: "(devel)"}},
			wantVer:    "v0.9.0",
			wantCommit: "abc123",
		},
		{
			name: "console built as a dependency",
			info: &debug.BuildInfo{
				Main: debug.Module{Path: "example.com/launcher", Version: "(devel)"},
				Deps: []*debug.Module{{Path: modulePath, Version: "v1.5.1-0.20260930101010-d1692e4643ee"}},
			},
			wantVer:    "v1.5.1-0.20260930101010-d1692e4643ee",
			wantCommit: "dev",
		},
		{
			name: "vcs stamp gives commit and date",
			info: &debug.BuildInfo{
				Main: debug.Module{Path: modulePath, Version: "(devel)"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "f00d"},
					{Key: "vcs.time", Value: "2026-10-01T10:00:00Z"},
				},
			},
			wantVer:    "f00d",
			wantCommit: "f00d",
			wantDate:   "2026-10-01T10:00:00Z",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetBuildVars(t)
			buildvars.Version, buildvars.Commit = tt.linked[0], tt.linked[1]
			v, c, d := resolveBuildVersion(tt.info)
			if v != tt.wantVer || c != tt.wantCommit || d != tt.wantDate {
				t.Fatalf("got (%q, %q, %q), want (%q, %q, %q)", v, c, d, tt.wantVer, tt.wantCommit, tt.wantDate)
			}
		})
	}
}

func TestFormatVersion(t *testing.T) {
	if got := formatVersion("v1.0.0", "abc123", "2026-10-01T10:00:00Z"); got != "v1.0.0 (abc123) built: 2026-10-01T10:00:00Z" {
		t.Fatalf("unexpected full version %q", got)
	}
	if got := formatVersion("v1.0.0", "dev", ""); got != "v1.0.0" {
		t.Fatalf("dev commit and empty date should be omitted, got %q", got)
	}
}

func TestVersionCommandSkipsConfig(t *testing.T) {
	resetBuildVars(t)
	buildvars.Version = "v3.1.0"
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	out, errOut, err := runCmd(t, "", "version")
	if err != nil {
		t.Fatalf("version: %v\n%s", err, errOut)
	}
	if !strings.Contains(out, "version: v3.1.0") || !strings.Contains(out, "commit: ") {
		t.Fatalf("unexpected version output:\n%s", out)
	}
	if strings.Contains(out, "Licensing") {
		t.Fatalf("version must not touch the configuration:\n%s", out)
	}
}

func TestRootCommandCarriesCompositeVersion(t *testing.T) {
	resetBuildVars(t)
	buildvars.Version = "v3.1.0"
	cmd := NewRootCmd()
	if cmd.Version != compositeVersion() || !strings.HasPrefix(cmd.Version, "v3.1.0") {
		t.Fatalf("root version %q does not match %q", cmd.Version, compositeVersion())
	}
}
