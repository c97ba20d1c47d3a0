package pipeline

// Status classifies a provider callback. Only StatusSucceeded has side
// effects; every other class is acknowledged and dropped.
type Status int

const (
	StatusStarting Status = iota
	StatusInProgress
	StatusFailed
	StatusSucceeded
)

// ParseStatus maps the provider's raw status string onto the callback state
// machine. Unknown values are treated as in-progress, which keeps them on the
// acknowledge-only path.
func ParseStatus(raw string) Status {
	switch raw {
	case "starting":
		return StatusStarting
	case "succeeded":
		return StatusSucceeded
	case "failed", "canceled":
		return StatusFailed
	default:
		return StatusInProgress
	}
}

func (s Status) String() string {
	switch s {
	case StatusStarting:
		return "starting"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "processing"
	}
}
