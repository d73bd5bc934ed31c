package types

// Record is one authorization identifier found in a MedicinalDocumentsBundle,
// dated with the bundle's most recent Date (YYYY-MM-DD, or empty).
type Record struct {
	Identifier string
	Date       string
}

type Mode int

const (
	ModeDefault Mode = iota
	ModeThreshold
	ModeToday
)

func (m Mode) String() string {
	switch m {
	case ModeToday:
		return "today"
	case ModeThreshold:
		return "threshold"
	default:
		return "default"
	}
}

// FilterRequest is the validated form of the --since, --larger and --today flags.
type FilterRequest struct {
	// Since is the cutoff as YYYY-MM-DD. Empty means no cutoff.
	Since string
	// SinceDisplay is the cutoff as the user typed it (DD.MM.YYYY).
	SinceDisplay string
	Larger       *uint32
	Today        bool
}

// Mode reports the output shape. Today mode wins over a threshold.
func (r FilterRequest) Mode() Mode {
	if r.Today {
		return ModeToday
	}
	if r.Larger != nil {
		return ModeThreshold
	}
	return ModeDefault
}
