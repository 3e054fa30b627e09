package model

import "time"

// Notification is a broadcast message row in the `notifications` table.
type Notification struct {
	ID        uint64
	Text      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
