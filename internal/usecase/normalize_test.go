package usecase

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toggl-sync/internal/domain"
	"toggl-sync/internal/wire"
)

func i64(v int64) *int64 { return &v }

func TestNormalizeClient_AliasBackfill(t *testing.T) {
	tests := []struct {
		name string
		in   wire.Client
		want int64
	}{
		{"workspace_id wins", wire.Client{ID: 1, WorkspaceID: 10, Wid: 20}, 10},
		{"wid fallback", wire.Client{ID: 1, Wid: 20}, 20},
		{"config fallback", wire.Client{ID: 1}, 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeClient(tt.in, 42)
			assert.Equal(t, tt.want, got.WorkspaceID)
		})
	}
}

func TestNormalizeProject_AliasAndDefaults(t *testing.T) {
	p := normalizeProject(wire.Project{ID: 5, Cid: i64(9), Active: true}, 42)
	assert.Equal(t, int64(42), p.WorkspaceID)
	require.NotNil(t, p.ClientID)
	assert.Equal(t, int64(9), *p.ClientID)
	assert.Equal(t, int64(0), p.ActualHours)
	assert.Nil(t, p.Rate)

	hours := int64(12)
	p = normalizeProject(wire.Project{ID: 5, ClientID: i64(3), Cid: i64(9), ActualHours: &hours, Active: true}, 42)
	assert.Equal(t, int64(3), *p.ClientID, "client_id outranks cid")
	assert.Equal(t, int64(12), p.ActualHours)
}

func TestNormalizeTimeEntry_StopDurationPairing(t *testing.T) {
	start := time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC)
	stop := start.Add(time.Hour)

	t.Run("running entry forces nil stop", func(t *testing.T) {
		e := normalizeTimeEntry(wire.TimeEntry{ID: 1, Start: start, Stop: &stop, Duration: -start.Unix()}, 42)
		assert.Nil(t, e.Stop)
		assert.True(t, e.Running())
	})

	t.Run("finished entry backfills missing stop", func(t *testing.T) {
		e := normalizeTimeEntry(wire.TimeEntry{ID: 1, Start: start, Duration: 3600}, 42)
		require.NotNil(t, e.Stop)
		assert.Equal(t, stop, *e.Stop)
		assert.False(t, e.Running())
	})

	t.Run("consistent entry passes through", func(t *testing.T) {
		e := normalizeTimeEntry(wire.TimeEntry{ID: 1, Start: start, Stop: &stop, Duration: 3600}, 42)
		require.NotNil(t, e.Stop)
		assert.Equal(t, stop, *e.Stop)
	})
}

func TestDecodeDetailed_EnvelopeShapes(t *testing.T) {
	const items = `[{"user_id": 1, "description": "Dev"}, {"user_id": 2, "description": "Ops"}]`

	bare := decodeDetailed(json.RawMessage(items))
	data := decodeDetailed(json.RawMessage(`{"data": ` + items + `}`))
	results := decodeDetailed(json.RawMessage(`{"results": ` + items + `}`))

	require.Len(t, bare, 2)
	assert.Equal(t, bare, data, "data envelope must normalize identically")
	assert.Equal(t, bare, results, "results envelope must normalize identically")

	assert.Empty(t, decodeDetailed(json.RawMessage(`{"rows": `+items+`}`)))
	assert.Empty(t, decodeDetailed(json.RawMessage(`"nonsense"`)))
	assert.Empty(t, decodeDetailed(json.RawMessage(`123`)))
	assert.Empty(t, decodeDetailed(nil))
}

func TestChartResolution_Boundaries(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d)
	}
	tests := []struct {
		days int
		want domain.ChartResolution
	}{
		{0, domain.ResolutionHour},
		{1, domain.ResolutionHour},
		{2, domain.ResolutionDay},
		{7, domain.ResolutionDay},
		{8, domain.ResolutionDay},
		{31, domain.ResolutionDay},
		{32, domain.ResolutionMonth},
		{365, domain.ResolutionMonth},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, chartResolution(day(0), day(tt.days)), "span of %d days", tt.days)
	}
}

func TestGroupEntries_FoldProperties(t *testing.T) {
	start := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	deleted := start.Add(time.Hour)
	raw := []wire.TimeEntry{
		{ID: 1, UserID: 7, ProjectID: i64(100), Description: "Dev", Duration: 3600, Start: start},
		{ID: 2, UserID: 7, ProjectID: i64(100), Description: "Ops", Duration: 1800, Start: start},
		{ID: 3, UserID: 7, Pid: i64(100), Description: "Dev", Duration: 900, Start: start},
		{ID: 4, UserID: 7, Description: "", Duration: 600, Start: start},
		{ID: 5, UserID: 7, ProjectID: i64(100), Description: "Dev", Duration: 300, Start: start, ServerDeletedAt: &deleted},
		{ID: 6, UID: 8, ProjectID: i64(100), Description: "Dev", Duration: -start.Unix(), Start: start},
	}

	groups := groupEntries(raw)

	// 5 surviving entries fold into 4 groups; the deleted one vanishes.
	require.Len(t, groups, 4)
	var occurrences int
	for _, g := range groups {
		require.NotEmpty(t, g.Occurrences, "no group may be empty")
		occurrences += len(g.Occurrences)
	}
	assert.Equal(t, 5, occurrences, "occurrence counts must sum to surviving entries")

	// First-seen order, 1-based positions.
	for i, g := range groups {
		assert.Equal(t, i+1, g.Position)
	}
	assert.Equal(t, "Dev", groups[0].Description)
	assert.Equal(t, "Ops", groups[1].Description)

	// Entries 1 and 3 share (user, project, description) despite the pid
	// alias; occurrence order follows input order.
	require.Len(t, groups[0].Occurrences, 2)
	assert.Equal(t, int64(1), groups[0].Occurrences[0].ID)
	assert.Equal(t, int64(3), groups[0].Occurrences[1].ID)

	// Different user means a different group even with matching metadata.
	assert.Equal(t, int64(8), groups[3].UserID)

	// Running occurrence reports zero seconds, never the negative sentinel.
	for _, g := range groups {
		for _, o := range g.Occurrences {
			assert.GreaterOrEqual(t, o.Seconds, int64(0))
		}
	}
}

func TestNormalizeSummary_NullableTitles(t *testing.T) {
	title := "Writing"
	rep := normalizeSummary(wire.SummaryReport{Groups: []wire.SummaryGroup{
		{ID: i64(100), SubGroups: []wire.SummarySubGroup{
			{ID: i64(1), Title: &title, Seconds: 120},
			{ID: nil, Title: nil, Seconds: 60},
		}},
	}})
	require.Len(t, rep.Groups, 1)
	require.Len(t, rep.Groups[0].SubGroups, 2)
	assert.Equal(t, "Writing", rep.Groups[0].SubGroups[0].Title)
	assert.Equal(t, "", rep.Groups[0].SubGroups[1].Title)
	assert.Equal(t, int64(180), rep.Seconds())
}
