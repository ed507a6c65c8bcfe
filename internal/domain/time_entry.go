package domain

import "time"

// TimeEntry represents a Toggl time entry in the domain.
//
// Stop is nil exactly when DurationSec is negative: the Toggl API encodes a
// running entry as duration == -start.Unix(). Normalization keeps the pair
// consistent even when the wire response disagrees with itself.
type TimeEntry struct {
	ID              int64
	WorkspaceID     int64
	ProjectID       *int64
	Description     string
	TagIDs          []int64
	Tags            []string
	Start           time.Time
	Stop            *time.Time
	DurationSec     int64
	Billable        bool
	At              time.Time
	UserID          int64
	ServerDeletedAt *time.Time
}

// Running reports whether the entry encodes a currently running timer.
func (e TimeEntry) Running() bool { return e.DurationSec < 0 }
