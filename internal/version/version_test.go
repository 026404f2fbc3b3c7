package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInfo(t *testing.T) {
	require.Equal(t, Version, Short())

	info := Info()
	require.Contains(t, info, "Version: "+Version)
	require.Contains(t, info, "Commit SHA: "+CommitSHA)
	require.Contains(t, info, runtime.Version())
}
