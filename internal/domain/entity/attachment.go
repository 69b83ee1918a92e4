package entity

import "time"

// AttachmentReference points at a stored file by its unique on-disk name.
type AttachmentReference struct {
	UniqueName   string `json:"unique_name"`
	OriginalName string `json:"original_name"`
}

// Attachment is a file attached to a notification at intake.
type Attachment struct {
	ID             int64     `json:"id"`
	NotificationID int64     `json:"notification_id"`
	UniqueName     string    `json:"unique_name"`
	OriginalName   string    `json:"original_name"`
	CreatedAt      time.Time `json:"created_at"`
}
