package processor

// Outcome is what happened to a single file.
type Outcome int

const (
	Skipped   Outcome = iota // not processable, excluded, too large, or not a regular file
	Cached                   // unchanged since last found valid; content not read
	Valid                    // validated and conforming
	Invalid                  // validated and not conforming
	Fixed                    // rewritten
	Unchanged                // fix requested but the content already conformed
	Failed                   // I/O or decoding error
)

func (o Outcome) String() string {
	switch o {
	case Skipped:
		return "skipped"
	case Cached:
		return "cached"
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	case Fixed:
		return "fixed"
	case Unchanged:
		return "unchanged"
	default:
		return "failed"
	}
}

// Stats counts outcomes over a run.
type Stats struct {
	Skipped   int
	Cached    int
	Valid     int
	Invalid   int
	Fixed     int
	Unchanged int
	Failed    int
}

// Checked returns the number of files that were not skipped.
func (s Stats) Checked() int {
	return s.Cached + s.Valid + s.Invalid + s.Fixed + s.Unchanged + s.Failed
}

// Add returns the sum of two Stats.
func (s Stats) Add(other Stats) Stats {
	return Stats{
		Skipped:   s.Skipped + other.Skipped,
		Cached:    s.Cached + other.Cached,
		Valid:     s.Valid + other.Valid,
		Invalid:   s.Invalid + other.Invalid,
		Fixed:     s.Fixed + other.Fixed,
		Unchanged: s.Unchanged + other.Unchanged,
		Failed:    s.Failed + other.Failed,
	}
}

func (s *Stats) record(outcome Outcome) {
	switch outcome {
	case Skipped:
		s.Skipped++
	case Cached:
		s.Cached++
	case Valid:
		s.Valid++
	case Invalid:
		s.Invalid++
	case Fixed:
		s.Fixed++
	case Unchanged:
		s.Unchanged++
	case Failed:
		s.Failed++
	}
}
