package model

// RebootStatus models the setup program's reboot signal as an explicit
// tri-state rather than a free-text match carried through the run. Unknown is
// treated conservatively as RebootRequired by the pipeline.
type RebootStatus int

const (
	// NoReboot means setup completed without requesting a restart.
	NoReboot RebootStatus = iota
	// RebootRequired means setup asked for a restart before the engine is usable.
	RebootRequired
	// RebootUnknown means the setup output could not be interpreted.
	RebootUnknown
)

func (s RebootStatus) String() string {
	switch s {
	case NoReboot:
		return "no-reboot"
	case RebootRequired:
		return "reboot-required"
	case RebootUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}

// NeedsReboot reports whether the pipeline must stop for a restart decision.
// Unknown counts as needing one.
func (s RebootStatus) NeedsReboot() bool {
	return s != NoReboot
}
