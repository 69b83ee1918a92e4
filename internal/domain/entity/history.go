package entity

import "time"

// HistoryEntry is an append-only audit trail record. The state machine never
// reads history; it exists for display and audit only.
type HistoryEntry struct {
	ID             int64     `json:"id"`
	NotificationID int64     `json:"notification_id"`
	Action         string    `json:"action"`
	PerformedBy    string    `json:"performed_by"`
	Timestamp      time.Time `json:"timestamp"`
	Details        string    `json:"details,omitempty"`
}
