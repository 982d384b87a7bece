package models

import "time"

// Folder is a named grouping of projects, scoped to one user.
type Folder struct {
	ID        string
	UserID    string
	Name      string
	CreatedAt time.Time
}
