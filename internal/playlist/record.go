package playlist

import "strings"

// Record holds the fields collected for one playlist entry. Empty strings mean the field was absent.
type Record struct {
	StreamIcon   string
	Name         string
	GroupTitle   string
	EPGChannelID string
	URL          string
}

// Phase is the accumulation state of the current entry.
type Phase int

const (
	// Accumulating collects fields; the entry has no URL yet.
	Accumulating Phase = iota
	// Complete means the URL line was seen and Record is ready to persist.
	Complete
	// Skipping discards lines up to and including the URL of a malformed entry.
	Skipping
)

func (p Phase) String() string {
	switch p {
	case Accumulating:
		return "accumulating"
	case Complete:
		return "complete"
	case Skipping:
		return "skipping"
	default:
		return "unknown"
	}
}

// State is the tagged accumulator state passed between Classify calls.
type State struct {
	Phase  Phase
	Record Record
}

// NormalizeName removes apostrophes so names compare and store consistently.
func NormalizeName(name string) string {
	return strings.TrimSpace(strings.ReplaceAll(name, "'", ""))
}
