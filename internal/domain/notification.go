package domain

import "time"

// Notification is a message addressed to one user or, with no target, to everyone.
type Notification struct {
	ID           string
	Title        string
	Message      string
	TargetUserID *string
	CreatedAt    time.Time
}

// IsGlobal reports whether the notification is a broadcast.
func (n *Notification) IsGlobal() bool {
	return n.TargetUserID == nil
}

// OwnerID returns the addressee, or "" for broadcasts.
func (n *Notification) OwnerID() string {
	if n.TargetUserID == nil {
		return ""
	}
	return *n.TargetUserID
}

// NotificationWithTarget is a notification joined with its addressee.
type NotificationWithTarget struct {
	Notification
	Target *UserSummary
}
