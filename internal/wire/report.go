package wire

import "time"

// ReportQuery is the shared body of the reports v3 summary and detailed
// endpoints. Dates are calendar days in YYYY-MM-DD form.
type ReportQuery struct {
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	ProjectIDs []int64 `json:"project_ids,omitempty"`
	ClientIDs  []int64 `json:"client_ids,omitempty"`
	TagIDs     []int64 `json:"tag_ids,omitempty"`
}

// SummaryReport mirrors POST .../reports/summary.
type SummaryReport struct {
	Groups []SummaryGroup `json:"groups"`
}

// SummaryGroup is one grouping bucket of the summary response.
type SummaryGroup struct {
	ID        *int64            `json:"id"`
	SubGroups []SummarySubGroup `json:"sub_groups"`
}

// SummarySubGroup is a nested summary bucket. Title is nullable on the wire.
type SummarySubGroup struct {
	ID      *int64  `json:"id"`
	Title   *string `json:"title"`
	Seconds int64   `json:"seconds"`
}

// DetailedItem is one row of POST .../reports/detailed, regardless of which
// envelope the response arrived in.
type DetailedItem struct {
	UserID      int64           `json:"user_id"`
	Username    string          `json:"username"`
	ProjectID   *int64          `json:"project_id"`
	Description string          `json:"description"`
	Billable    bool            `json:"billable"`
	TagIDs      []int64         `json:"tag_ids"`
	TimeEntries []DetailedEntry `json:"time_entries"`
}

// DetailedEntry is one tracked interval inside a DetailedItem.
type DetailedEntry struct {
	ID      int64      `json:"id"`
	Seconds int64      `json:"seconds"`
	Start   time.Time  `json:"start"`
	Stop    *time.Time `json:"stop"`
	At      time.Time  `json:"at"`
}
