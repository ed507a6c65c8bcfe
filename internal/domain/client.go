package domain

// Client represents a Toggl client in the domain layer.
type Client struct {
	ID          int64
	WorkspaceID int64
	Name        string
	Archived    bool
}
