package domain

import "time"

// GroupedEntry folds raw time entries that share (user, project, description)
// into one "recent timer" aggregate. It is a client-side synthetic shape; the
// Toggl API has no corresponding resource.
type GroupedEntry struct {
	Position    int // 1-based, in fold (first-seen) order
	UserID      int64
	ProjectID   *int64
	Description string
	TagIDs      []int64
	Tags        []string
	Billable    bool
	Occurrences []Occurrence // never empty
}

// Occurrence is one constituent raw entry of a GroupedEntry.
type Occurrence struct {
	ID      int64
	Start   time.Time
	Stop    *time.Time
	Seconds int64 // non-negative; a still-running occurrence reports 0
}
