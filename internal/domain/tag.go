package domain

// Tag represents a Toggl tag in the domain layer.
type Tag struct {
	ID          int64
	WorkspaceID int64
	Name        string
}
