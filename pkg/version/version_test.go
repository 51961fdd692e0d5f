package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_LinkTimeValuesWin(t *testing.T) {
	origV, origB, origC := Version, BuildTime, Commit
	defer func() { Version, BuildTime, Commit = origV, origB, origC }()

	Version = "1.2.3"
	BuildTime = "2025-12-22T00:00:00Z"
	Commit = "deadbeef"

	info := Get()
	require.Equal(t, "1.2.3", info.Version)
	require.Equal(t, "deadbeef", info.Commit)
	require.NotEmpty(t, info.GoVersion)
	require.NotEmpty(t, info.OS)
	require.NotEmpty(t, info.Arch)

	assert.Equal(t, "1.2.3", Short())
	assert.Contains(t, Full(), "folio 1.2.3 (commit: deadbeef, built: 2025-12-22T00:00:00Z")
}

func TestFillFromBuildInfo(t *testing.T) {
	bi := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.4.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	}

	tests := []struct {
		name string
		in   Info
		want Info
	}{
		{
			name: "unset values come from build info",
			in:   Info{Version: "dev", Commit: "unknown", BuildTime: "unknown"},
			want: Info{Version: "v0.4.0", Commit: "abc123", BuildTime: "2026-01-02T03:04:05Z"},
		},
		{
			name: "link time values are kept",
			in:   Info{Version: "1.0.0", Commit: "f00", BuildTime: "yesterday"},
			want: Info{Version: "1.0.0", Commit: "f00", BuildTime: "yesterday"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := tt.in
			fillFromBuildInfo(&info, bi)
			assert.Equal(t, tt.want, info)
		})
	}

	info := Info{Version: "dev"}
	fillFromBuildInfo(&info, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
	assert.Equal(t, "dev", info.Version)
}
