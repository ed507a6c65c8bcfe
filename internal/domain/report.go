package domain

import "time"

// SummaryReport mirrors the reports v3 summary grouping.
type SummaryReport struct {
	Groups []SummaryGroup
}

// SummaryGroup is one top-level grouping bucket (project by default).
type SummaryGroup struct {
	ID        *int64
	SubGroups []SummarySubGroup
}

// SummarySubGroup is a nested bucket (time entry description by default).
type SummarySubGroup struct {
	ID      *int64
	Title   string
	Seconds int64
}

// Seconds returns the total tracked seconds across all groups.
func (r SummaryReport) Seconds() int64 {
	var total int64
	for _, g := range r.Groups {
		for _, s := range g.SubGroups {
			total += s.Seconds
		}
	}
	return total
}

// TimeChart is a summary report annotated with the bucket resolution a chart
// should render at. Resolution is derived from the requested date span, not
// from anything the API returns.
type TimeChart struct {
	SummaryReport
	Resolution ChartResolution
}

// ChartResolution is the bucket width of a rendered time chart.
type ChartResolution string

const (
	ResolutionHour  ChartResolution = "hour"
	ResolutionDay   ChartResolution = "day"
	ResolutionMonth ChartResolution = "month"
)

// DetailedReportItem is one row of the paginated detailed report.
type DetailedReportItem struct {
	UserID      int64
	Username    string
	ProjectID   *int64
	Description string
	Billable    bool
	TagIDs      []int64
	TimeEntries []DetailedReportEntry
}

// DetailedReportEntry is one concrete tracked interval within a report row.
type DetailedReportEntry struct {
	ID      int64
	Start   time.Time
	Stop    *time.Time
	Seconds int64
	At      time.Time
}
