package usecase

import (
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"toggl-sync/internal/domain"
	"toggl-sync/internal/wire"
)

// This file is the boundary where raw wire shapes become domain values.
// Alias fields (wid, pid, uid, cid) are resolved here exactly once; nothing
// past this point sees a raw field name.

func normalizeClient(c wire.Client, workspaceID int64) domain.Client {
	return domain.Client{
		ID:          c.ID,
		WorkspaceID: c.Workspace(workspaceID),
		Name:        c.Name,
		Archived:    c.Archived,
	}
}

func normalizeProject(p wire.Project, workspaceID int64) domain.Project {
	var hours int64
	if p.ActualHours != nil {
		hours = *p.ActualHours
	}
	return domain.Project{
		ID:          p.ID,
		WorkspaceID: p.Workspace(workspaceID),
		ClientID:    p.Client(),
		Name:        p.Name,
		Active:      p.Active,
		Color:       p.Color,
		ActualHours: hours,
		Rate:        p.Rate,
		At:          p.At,
	}
}

func normalizeTag(t wire.Tag, workspaceID int64) domain.Tag {
	return domain.Tag{
		ID:          t.ID,
		WorkspaceID: t.Workspace(workspaceID),
		Name:        t.Name,
	}
}

// normalizeTimeEntry maps a wire entry and repairs the stop/duration pairing
// when the response disagrees with itself: a negative duration means running
// (stop forced nil), a finished entry with a missing stop gets one derived
// from start+duration. The duration sign is authoritative.
func normalizeTimeEntry(e wire.TimeEntry, workspaceID int64) domain.TimeEntry {
	stop := e.Stop
	if e.Duration < 0 {
		stop = nil
	} else if stop == nil && !e.Start.IsZero() {
		s := e.Start.Add(time.Duration(e.Duration) * time.Second)
		stop = &s
	}
	return domain.TimeEntry{
		ID:              e.ID,
		WorkspaceID:     e.Workspace(workspaceID),
		ProjectID:       e.Project(),
		Description:     e.Description,
		TagIDs:          e.TagIDs,
		Tags:            e.Tags,
		Start:           e.Start,
		Stop:            stop,
		DurationSec:     e.Duration,
		Billable:        e.Billable,
		At:              e.At,
		UserID:          e.User(),
		ServerDeletedAt: e.ServerDeletedAt,
	}
}

func normalizeEntries(raw []wire.TimeEntry, workspaceID int64) []domain.TimeEntry {
	out := make([]domain.TimeEntry, 0, len(raw))
	for _, e := range raw {
		out = append(out, normalizeTimeEntry(e, workspaceID))
	}
	return out
}

func normalizeProjects(raw []wire.Project, workspaceID int64) []domain.Project {
	out := make([]domain.Project, 0, len(raw))
	for _, p := range raw {
		if !p.Active {
			continue
		}
		out = append(out, normalizeProject(p, workspaceID))
	}
	return out
}

func normalizeSummary(r wire.SummaryReport) domain.SummaryReport {
	out := domain.SummaryReport{Groups: make([]domain.SummaryGroup, 0, len(r.Groups))}
	for _, g := range r.Groups {
		dg := domain.SummaryGroup{ID: g.ID, SubGroups: make([]domain.SummarySubGroup, 0, len(g.SubGroups))}
		for _, s := range g.SubGroups {
			title := ""
			if s.Title != nil {
				title = *s.Title
			}
			dg.SubGroups = append(dg.SubGroups, domain.SummarySubGroup{
				ID:      s.ID,
				Title:   title,
				Seconds: s.Seconds,
			})
		}
		out.Groups = append(out.Groups, dg)
	}
	return out
}

// decodeDetailed accepts the three envelope shapes the detailed endpoint has
// shipped (bare array, {"data": [...]}, {"results": [...]}) and flattens them
// to one list. Anything else decodes to an empty list.
func decodeDetailed(raw json.RawMessage) []wire.DetailedItem {
	if len(raw) == 0 {
		return nil
	}
	var items []wire.DetailedItem
	if err := json.Unmarshal(raw, &items); err == nil {
		return items
	}
	var env struct {
		Data    []wire.DetailedItem `json:"data"`
		Results []wire.DetailedItem `json:"results"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil
	}
	if env.Data != nil {
		return env.Data
	}
	return env.Results
}

func normalizeDetailed(items []wire.DetailedItem) []domain.DetailedReportItem {
	out := make([]domain.DetailedReportItem, 0, len(items))
	for _, it := range items {
		di := domain.DetailedReportItem{
			UserID:      it.UserID,
			Username:    it.Username,
			ProjectID:   it.ProjectID,
			Description: it.Description,
			Billable:    it.Billable,
			TagIDs:      it.TagIDs,
			TimeEntries: make([]domain.DetailedReportEntry, 0, len(it.TimeEntries)),
		}
		for _, te := range it.TimeEntries {
			di.TimeEntries = append(di.TimeEntries, domain.DetailedReportEntry{
				ID:      te.ID,
				Start:   te.Start,
				Stop:    te.Stop,
				Seconds: te.Seconds,
				At:      te.At,
			})
		}
		out = append(out, di)
	}
	return out
}

// chartResolution derives the bucket width for a time chart purely from the
// requested span. Chart consumers depend on these exact cut-offs.
func chartResolution(start, end time.Time) domain.ChartResolution {
	days := int(end.Sub(start).Hours() / 24)
	switch {
	case days <= 1:
		return domain.ResolutionHour
	case days <= 31:
		return domain.ResolutionDay
	default:
		return domain.ResolutionMonth
	}
}

// groupEntries folds raw entries into "recent timer" aggregates keyed by
// (user, project, description). Soft-deleted entries are dropped before the
// fold. Group order is first-seen order; occurrence order is input order.
func groupEntries(entries []wire.TimeEntry) []domain.GroupedEntry {
	type key struct {
		user    int64
		project string
		desc    string
	}
	index := make(map[key]int)
	var groups []domain.GroupedEntry
	for _, e := range entries {
		if e.ServerDeletedAt != nil {
			continue
		}
		k := key{user: e.User(), project: "no_project", desc: "no_desc"}
		if p := e.Project(); p != nil {
			k.project = strconv.FormatInt(*p, 10)
		}
		if e.Description != "" {
			k.desc = e.Description
		}
		seconds := e.Duration
		if seconds < 0 {
			// Running entry: the negative sentinel is not elapsed time.
			seconds = 0
		}
		occ := domain.Occurrence{ID: e.ID, Start: e.Start, Stop: e.Stop, Seconds: seconds}
		if i, ok := index[k]; ok {
			groups[i].Occurrences = append(groups[i].Occurrences, occ)
			continue
		}
		index[k] = len(groups)
		groups = append(groups, domain.GroupedEntry{
			Position:    len(groups) + 1,
			UserID:      e.User(),
			ProjectID:   e.Project(),
			Description: e.Description,
			TagIDs:      e.TagIDs,
			Tags:        e.Tags,
			Billable:    e.Billable,
			Occurrences: []domain.Occurrence{occ},
		})
	}
	return groups
}
