package entity

import "time"

// ActionEntry is a free-form log entry authored by an assigned executor.
// At most one entry with FinalActionByExecutor=true may exist per executor
// per notification.
type ActionEntry struct {
	ID                    int64                 `json:"id"`
	NotificationID        int64                 `json:"notification_id"`
	ExecutorID            int64                 `json:"executor_id"`
	ExecutorName          string                `json:"executor_name"`
	Description           string                `json:"description"`
	Timestamp             time.Time             `json:"timestamp"`
	FinalActionByExecutor bool                  `json:"final_action_by_executor"`
	EvidenceDescription   string                `json:"evidence_description,omitempty"`
	EvidenceAttachments   []AttachmentReference `json:"evidence_attachments,omitempty"`
}
