package entity

import "time"

// Project mirrors the `projects` PostgreSQL table. It is owned by the platform;
// the skill pipeline only reads it to check ownership.
type Project struct {
	ID          string
	UserID      string
	Name        string
	Description string
	CreatedAt   time.Time
}
