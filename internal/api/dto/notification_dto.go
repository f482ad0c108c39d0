package dto

import "time"

// SendNotificationRequest payload. A missing target broadcasts.
type SendNotificationRequest struct {
	Title        string  `json:"title" validate:"required"`
	Message      string  `json:"message" validate:"required"`
	TargetUserID *string `json:"target_user_id"`
}

// NotificationResponse is the citizen-facing projection.
type NotificationResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsGlobal  bool      `json:"is_global"`
	CreatedAt time.Time `json:"created_at"`
}

// AdminNotificationResponse adds the addressee, null for broadcasts.
type AdminNotificationResponse struct {
	NotificationResponse
	TargetUser *UserSummary `json:"target_user"`
}
