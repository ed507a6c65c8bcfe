package domain

import "time"

// Project represents a Toggl project in the domain layer. Listings only
// ever surface active projects; inactive ones are filtered at the boundary.
type Project struct {
	ID          int64
	WorkspaceID int64
	ClientID    *int64
	Name        string
	Active      bool
	Color       string
	ActualHours int64
	Rate        *float64 // hourly rate, nil when the workspace has none
	At          time.Time
}
