package streaming

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRange_OpenEnded(t *testing.T) {
	t.Parallel()

	r, ok := ParseRange("bytes=0-", 1000)
	require.True(t, ok)
	require.Equal(t, int64(0), r.Start)
	require.Equal(t, int64(999), r.End)
	require.Equal(t, int64(1000), r.Length())
}

func TestParseRange_ClampsEndToSize(t *testing.T) {
	t.Parallel()

	r, ok := ParseRange("bytes=900-2000", 1000)
	require.True(t, ok)
	require.Equal(t, int64(900), r.Start)
	require.Equal(t, int64(999), r.End)
	require.Equal(t, int64(100), r.Length())
}

func TestParseRange_MidFile(t *testing.T) {
	t.Parallel()

	r, ok := ParseRange("bytes=100-199", 1000)
	require.True(t, ok)
	require.Equal(t, int64(100), r.Start)
	require.Equal(t, int64(199), r.End)
	require.Equal(t, int64(100), r.Length())
}

func TestParseRange_Malformed(t *testing.T) {
	t.Parallel()

	cases := []string{
		"",
		"bytes",
		"bytes=",
		"bytes=abc-",
		"bytes=-",
		"bytes=10",
		"bytes=-5-10",
		"items=0-10",
	}
	for _, header := range cases {
		_, ok := ParseRange(header, 1000)
		require.False(t, ok, "header %q should be rejected", header)
	}
}

func TestParseRange_StartBeyondSize(t *testing.T) {
	t.Parallel()

	// start is clamped to the last byte rather than rejected
	r, ok := ParseRange("bytes=5000-", 1000)
	require.True(t, ok)
	require.Equal(t, int64(999), r.Start)
	require.Equal(t, int64(999), r.End)
	require.Equal(t, int64(1), r.Length())
}

func TestParseRange_EmptyFile(t *testing.T) {
	t.Parallel()

	_, ok := ParseRange("bytes=0-", 0)
	require.False(t, ok)
}

func TestParseRange_SuffixFormUnsupported(t *testing.T) {
	t.Parallel()

	// "bytes=-500" has no explicit start, treated as whole-file
	_, ok := ParseRange("bytes=-500", 1000)
	require.False(t, ok)
}
