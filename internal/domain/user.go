package domain

// User is the authenticated Toggl account.
type User struct {
	ID                 int64
	Email              string
	Fullname           string
	DefaultWorkspaceID int64
}
