// Package wire holds the raw JSON shapes of the Toggl entity API (v9) and
// reports API (v3), including the legacy alias field names (wid, pid, uid,
// cid) that still appear in some responses. Alias resolution happens exactly
// once, when the use-case layer maps these shapes into the domain model.
package wire

import "time"

// Workspace mirrors GET /api/v9/workspaces elements.
type Workspace struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// User mirrors GET /api/v9/me.
type User struct {
	ID                 int64  `json:"id"`
	Email              string `json:"email"`
	Fullname           string `json:"fullname"`
	DefaultWorkspaceID int64  `json:"default_workspace_id"`
}

// Client mirrors GET .../clients elements. Older payloads carry "wid"
// instead of "workspace_id".
type Client struct {
	ID          int64  `json:"id"`
	WorkspaceID int64  `json:"workspace_id"`
	Wid         int64  `json:"wid"`
	Name        string `json:"name"`
	Archived    bool   `json:"archived"`
}

// Workspace resolves the workspace id, preferring workspace_id, then wid,
// then the fallback.
func (c Client) Workspace(fallback int64) int64 {
	return firstID(c.WorkspaceID, c.Wid, fallback)
}

// Project mirrors GET .../projects elements.
type Project struct {
	ID              int64      `json:"id"`
	WorkspaceID     int64      `json:"workspace_id"`
	Wid             int64      `json:"wid"`
	ClientID        *int64     `json:"client_id"`
	Cid             *int64     `json:"cid"`
	Name            string     `json:"name"`
	Active          bool       `json:"active"`
	Color           string     `json:"color"`
	ActualHours     *int64     `json:"actual_hours"`
	Rate            *float64   `json:"rate"`
	At              time.Time  `json:"at"`
	ServerDeletedAt *time.Time `json:"server_deleted_at"`
}

// Workspace resolves the workspace id, preferring workspace_id over wid.
func (p Project) Workspace(fallback int64) int64 {
	return firstID(p.WorkspaceID, p.Wid, fallback)
}

// Client resolves the client id, preferring client_id over cid.
func (p Project) Client() *int64 {
	if p.ClientID != nil {
		return p.ClientID
	}
	return p.Cid
}

// Tag mirrors GET .../tags elements.
type Tag struct {
	ID          int64  `json:"id"`
	WorkspaceID int64  `json:"workspace_id"`
	Wid         int64  `json:"wid"`
	Name        string `json:"name"`
}

// Workspace resolves the workspace id, preferring workspace_id over wid.
func (t Tag) Workspace(fallback int64) int64 {
	return firstID(t.WorkspaceID, t.Wid, fallback)
}

// TimeEntry mirrors the v9 time entry shape. Duration is negative for a
// running entry (-start.Unix() by Toggl convention).
type TimeEntry struct {
	ID              int64      `json:"id"`
	WorkspaceID     int64      `json:"workspace_id"`
	Wid             int64      `json:"wid"`
	ProjectID       *int64     `json:"project_id"`
	Pid             *int64     `json:"pid"`
	UserID          int64      `json:"user_id"`
	UID             int64      `json:"uid"`
	Description     string     `json:"description"`
	TagIDs          []int64    `json:"tag_ids"`
	Tags            []string   `json:"tags"`
	Start           time.Time  `json:"start"`
	Stop            *time.Time `json:"stop"`
	Duration        int64      `json:"duration"`
	Billable        bool       `json:"billable"`
	At              time.Time  `json:"at"`
	ServerDeletedAt *time.Time `json:"server_deleted_at"`
}

// Workspace resolves the workspace id, preferring workspace_id over wid.
func (e TimeEntry) Workspace(fallback int64) int64 {
	return firstID(e.WorkspaceID, e.Wid, fallback)
}

// Project resolves the project id, preferring project_id over pid.
func (e TimeEntry) Project() *int64 {
	if e.ProjectID != nil {
		return e.ProjectID
	}
	return e.Pid
}

// User resolves the user id, preferring user_id over uid.
func (e TimeEntry) User() int64 {
	return firstID(e.UserID, e.UID, 0)
}

// TimeEntryRequest is the body of POST/PUT time entry calls. The v9 API
// wants the workspace id repeated inside the body, and a running entry is
// created with an explicit null stop, so Stop has no omitempty.
type TimeEntryRequest struct {
	WorkspaceID int64    `json:"workspace_id"`
	Description string   `json:"description"`
	ProjectID   *int64   `json:"project_id,omitempty"`
	TagIDs      []int64  `json:"tag_ids,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Start       string   `json:"start,omitempty"`
	Stop        *string  `json:"stop"`
	Duration    int64    `json:"duration"`
	Billable    bool     `json:"billable,omitempty"`
	CreatedWith string   `json:"created_with,omitempty"`
}

// ProjectRequest is the body of POST project calls.
type ProjectRequest struct {
	Name     string `json:"name"`
	Active   bool   `json:"active"`
	Color    string `json:"color,omitempty"`
	ClientID *int64 `json:"client_id,omitempty"`
}

func firstID(ids ...int64) int64 {
	for _, id := range ids {
		if id != 0 {
			return id
		}
	}
	return 0
}
