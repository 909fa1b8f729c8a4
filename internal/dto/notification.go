package dto

import "time"

// NotificationResponse is a notification annotated for one viewer. IsRead is
// derived per request and never stored.
type NotificationResponse struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	IsRead    bool      `json:"is_read"`
}
