package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestApplyBuildSettings(t *testing.T) {
	settings := []debug.BuildSetting{
		{Key: "vcs.revision", Value: "3f2a9c1d8e7b6a5"},
		{Key: "vcs.time", Value: "2026-10-14T09:30:00Z"},
		{Key: "vcs.modified", Value: "true"},
	}

	var info Info
	applyBuildSettings(&info, settings)
	if info.Commit != "3f2a9c1d8e7b6a5" || info.BuildDate != "2026-10-14T09:30:00Z" || !info.Modified {
		t.Errorf("unexpected info: %+v", info)
	}

	// ldflags values win.
	info = Info{Commit: "release", BuildDate: "2026-10-01"}
	applyBuildSettings(&info, settings)
	if info.Commit != "release" || info.BuildDate != "2026-10-01" {
		t.Errorf("ldflags values overwritten: %+v", info)
	}
}

func TestShort(t *testing.T) {
	tests := []struct {
		info Info
		want string
	}{
		{Info{Version: "1.2.0", Commit: "3f2a9c1d8e7b6a5"}, "1.2.0 (3f2a9c1)"},
		{Info{Version: "dev", Commit: "abc", Modified: true}, "dev (abc-dirty)"},
	}
	for _, tt := range tests {
		if got := tt.info.Short(); got != tt.want {
			t.Errorf("Short() = %q, want %q", got, tt.want)
		}
	}
}

func TestGet(t *testing.T) {
	info := Get()
	if info.Version == "" || info.Commit == "" || info.BuildDate == "" {
		t.Errorf("Get() left fields empty: %+v", info)
	}
	if !strings.HasPrefix(info.String(), "dropwatch ") {
		t.Errorf("String() = %q", info.String())
	}
}
