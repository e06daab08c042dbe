package transcoder

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLadder_SortsAscending(t *testing.T) {
	t.Parallel()

	ladder, err := NewLadder([]string{"1080p", "480p", "720p"})
	require.NoError(t, err)
	require.Equal(t, []string{"480p", "720p", "1080p"}, ladder.Labels())
}

func TestNewLadder_RejectsUnknownLabel(t *testing.T) {
	t.Parallel()

	_, err := NewLadder([]string{"480p", "999p"})
	require.Error(t, err)
}

func TestNewLadder_RejectsEmpty(t *testing.T) {
	t.Parallel()

	_, err := NewLadder(nil)
	require.Error(t, err)
}

func TestApplicable_FiltersBySourceHeight(t *testing.T) {
	t.Parallel()

	ladder, err := NewLadder([]string{"480p", "720p", "1080p"})
	require.NoError(t, err)

	labels := func(profiles []QualityProfile) []string {
		out := make([]string, 0, len(profiles))
		for _, p := range profiles {
			out = append(out, p.Label)
		}
		return out
	}

	require.Equal(t, []string{"480p", "720p", "1080p"}, labels(ladder.Applicable(1080)))
	require.Equal(t, []string{"480p", "720p"}, labels(ladder.Applicable(720)))
	require.Equal(t, []string{"480p"}, labels(ladder.Applicable(480)))
	require.Empty(t, ladder.Applicable(360))
}

func TestApplicable_BaselineForcedWhenNotConfigured(t *testing.T) {
	t.Parallel()

	ladder, err := NewLadder([]string{"720p", "1080p"})
	require.NoError(t, err)

	// source too short for any configured tier but tall enough for 480p
	profiles := ladder.Applicable(480)
	require.Len(t, profiles, 1)
	require.Equal(t, "480p", profiles[0].Label)

	// baseline is prepended, keeping ascending order
	profiles = ladder.Applicable(720)
	require.Equal(t, "480p", profiles[0].Label)
	require.Equal(t, "720p", profiles[1].Label)
}

func TestProfileLookup(t *testing.T) {
	t.Parallel()

	ladder, err := NewLadder([]string{"480p", "2160p"})
	require.NoError(t, err)

	p, ok := ladder.Profile("2160p")
	require.True(t, ok)
	require.Equal(t, 3840, p.Width)
	require.Equal(t, 2160, p.Height)
	require.Equal(t, 15000, p.Bitrate)
	require.Equal(t, 15, p.CRF)

	_, ok = ladder.Profile("720p")
	require.False(t, ok)
}
