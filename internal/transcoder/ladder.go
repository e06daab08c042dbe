package transcoder

import (
	"fmt"
	"sort"
)

// QualityProfile holds the encode parameters for one quality tier. New
// tiers are added to the table, not to renderer branches.
type QualityProfile struct {
	Label   string
	Width   int
	Height  int
	Bitrate int
	CRF     int
}

// baselineQuality is produced whenever the source can carry it, whether or
// not it is configured.
const baselineQuality = "480p"

var qualityTable = map[string]QualityProfile{
	"480p":  {Label: "480p", Width: 854, Height: 480, Bitrate: 1000, CRF: 23},
	"720p":  {Label: "720p", Width: 1280, Height: 720, Bitrate: 2500, CRF: 21},
	"1080p": {Label: "1080p", Width: 1920, Height: 1080, Bitrate: 5000, CRF: 19},
	"1440p": {Label: "1440p", Width: 2560, Height: 1440, Bitrate: 8000, CRF: 17},
	"2160p": {Label: "2160p", Width: 3840, Height: 2160, Bitrate: 15000, CRF: 15},
}

// Ladder is the ordered set of renditions an ingested file may produce,
// sorted by ascending target height.
type Ladder struct {
	profiles []QualityProfile
}

func NewLadder(labels []string) (Ladder, error) {
	if len(labels) == 0 {
		return Ladder{}, fmt.Errorf("quality ladder cannot be empty")
	}
	profiles := make([]QualityProfile, 0, len(labels))
	for _, label := range labels {
		p, ok := qualityTable[label]
		if !ok {
			return Ladder{}, fmt.Errorf("unknown quality label %q", label)
		}
		profiles = append(profiles, p)
	}
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].Height < profiles[j].Height
	})
	return Ladder{profiles: profiles}, nil
}

// Applicable returns the configured qualities whose target height does not
// exceed the probed source height, ascending. The 480p baseline is included
// even when it is not configured, as long as the source height permits it,
// so every processed file has a compatibility rendition.
func (l Ladder) Applicable(sourceHeight int) []QualityProfile {
	var out []QualityProfile
	hasBaseline := false
	for _, p := range l.profiles {
		if p.Height <= sourceHeight {
			out = append(out, p)
			if p.Label == baselineQuality {
				hasBaseline = true
			}
		}
	}
	if baseline := qualityTable[baselineQuality]; !hasBaseline && sourceHeight >= baseline.Height {
		out = append([]QualityProfile{baseline}, out...)
	}
	return out
}

func (l Ladder) Labels() []string {
	labels := make([]string, 0, len(l.profiles))
	for _, p := range l.profiles {
		labels = append(labels, p.Label)
	}
	return labels
}

// Profile looks up a configured quality by label.
func (l Ladder) Profile(label string) (QualityProfile, bool) {
	for _, p := range l.profiles {
		if p.Label == label {
			return p, true
		}
	}
	return QualityProfile{}, false
}
