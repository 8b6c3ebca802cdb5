package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInfo(t *testing.T) {
	v, c, d := Info()
	require.NotEmpty(t, v)
	require.NotEmpty(t, c)
	require.NotEmpty(t, d)
	require.Equal(t, GetVersion(), v)
}

func TestLdflagsOverride(t *testing.T) {
	prevVersion, prevCommit, prevDate := version, commit, date
	t.Cleanup(func() { version, commit, date = prevVersion, prevCommit, prevDate })

	version, commit, date = "v1.2.3", "abc123", "2026-01-01T00:00:00Z"
	require.Equal(t, "version=v1.2.3 commit=abc123 date=2026-01-01T00:00:00Z", String())

	fields := Fields()
	require.Equal(t, "v1.2.3", fields["version"])
	require.Equal(t, "abc123", fields["commit"])
	require.Equal(t, "2026-01-01T00:00:00Z", fields["build_date"])
}

func TestString(t *testing.T) {
	s := String()
	for _, part := range []string{"version=", "commit=", "date="} {
		require.True(t, strings.Contains(s, part), "missing %q in %q", part, s)
	}
}
