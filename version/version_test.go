package version

import (
	"runtime"
	"runtime/debug"
	"strings"
	"testing"
)

func saveAndRestore() func() {
	v, c, b, bt := Version, GitCommit, GitBranch, BuildTime
	return func() {
		Version, GitCommit, GitBranch, BuildTime = v, c, b, bt
	}
}

func TestGetVersionInfoLdflags(t *testing.T) {
	defer saveAndRestore()()
	Version = "0.3.0"
	GitCommit = "a1b2c3d"
	BuildTime = "2026-03-01T10:00:00Z"

	info := GetVersionInfo()
	if info.Version != "0.3.0" {
		t.Errorf("expected version 0.3.0, got %q", info.Version)
	}
	if info.GitCommit != "a1b2c3d" {
		t.Errorf("expected injected commit to win, got %q", info.GitCommit)
	}
	if !info.IsRelease {
		t.Error("expected a release build")
	}
	if info.BuildDate.Year() != 2026 {
		t.Errorf("expected parsed build date, got %v", info.BuildDate)
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("expected %s, got %s", runtime.Version(), info.GoVersion)
	}
}

func TestDevIsNotRelease(t *testing.T) {
	defer saveAndRestore()()
	Version = "dev"
	if GetVersionInfo().IsRelease {
		t.Error("expected dev build not to be a release")
	}
}

func TestApplyBuildSettings(t *testing.T) {
	info := &Info{}
	applyBuildSettings(info, []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef"},
		{Key: "vcs.modified", Value: "true"},
		{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
	})
	if info.GitCommit != "0123456" {
		t.Errorf("expected short commit, got %q", info.GitCommit)
	}
	if !info.IsDirty {
		t.Error("expected dirty build")
	}
	if info.BuildTime != "2026-01-02T03:04:05Z" {
		t.Errorf("expected vcs time, got %q", info.BuildTime)
	}
}

func TestShort(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{"no commit", Info{Version: "dev"}, "dev"},
		{"commit", Info{Version: "0.3.0", GitCommit: "a1b2c3d"}, "0.3.0-a1b2c3d"},
		{"dirty", Info{Version: "0.3.0", GitCommit: "a1b2c3d", IsDirty: true}, "0.3.0-a1b2c3d-dirty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.Short(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestString(t *testing.T) {
	info := Info{Version: "0.3.0", GitBranch: "feature/gate", GoVersion: "go1.23", Platform: "linux/amd64"}
	s := info.String()
	for _, want := range []string{"voiceshift 0.3.0", "feature/gate", "linux/amd64"} {
		if !strings.Contains(s, want) {
			t.Errorf("expected %q in %q", want, s)
		}
	}
	info.GitBranch = "main"
	if strings.Contains(info.String(), "branch") {
		t.Error("expected main branch to be omitted")
	}
}
