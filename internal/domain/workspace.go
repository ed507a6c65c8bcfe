package domain

// Workspace is a Toggl workspace. The ID is kept in string form because
// consumers treat it as an opaque selection key, not a number.
type Workspace struct {
	ID   string
	Name string
}
