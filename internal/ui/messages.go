package ui

// Section represents which task list the cursor lives in
type Section int

const (
	SectionActive Section = iota
	SectionCompleted
)

// String returns the display name for a section
func (s Section) String() string {
	switch s {
	case SectionActive:
		return "Tasks"
	case SectionCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

// Messages for inter-component communication

// SyncErrorMsg reports a failed remote write; local state is unaffected
type SyncErrorMsg struct {
	Err error
}

// RefreshMsg requests a re-read of the session state, sent after the
// deferred completion timer may have migrated a task
type RefreshMsg struct{}
