package entity

import "time"

// Classification is the triage decision produced by a classifier. DeadlineDate
// is derived from NNC (and damage level when applicable) at classification time
// and never edited directly.
type Classification struct {
	NNC                     string    `json:"nnc"`
	DamageLevel             string    `json:"nivel_dano,omitempty"`
	Priority                string    `json:"prioridade"`
	NeverEvent              string    `json:"never_event"`
	IsSentinelEvent         bool      `json:"is_sentinel_event"`
	OMS                     []string  `json:"oms"`
	EventTypeMain           string    `json:"event_type_main"`
	EventTypeSub            []string  `json:"event_type_sub,omitempty"`
	Notes                   string    `json:"notes,omitempty"`
	ClassifiedBy            string    `json:"classificador"`
	ClassificationTimestamp time.Time `json:"classification_timestamp"`
	RequiresApproval        bool      `json:"requires_approval"`
	DeadlineDate            string    `json:"deadline_date"`
}

// RejectionClassification records a rejection during initial triage.
type RejectionClassification struct {
	Reason       string    `json:"reason"`
	ClassifiedBy string    `json:"classified_by"`
	Timestamp    time.Time `json:"timestamp"`
}

// ReviewExecution records the classifier's decision on the completed execution.
type ReviewExecution struct {
	Decision   string    `json:"decision"`
	ReviewedBy string    `json:"reviewed_by"`
	Timestamp  time.Time `json:"timestamp"`
	Notes      string    `json:"notes,omitempty"`
}

// Approval records the approver's final acceptance.
type Approval struct {
	Decision   string    `json:"decision"`
	ApprovedBy string    `json:"approved_by"`
	Notes      string    `json:"notes,omitempty"`
	ApprovedAt time.Time `json:"approved_at"`
}

// RejectionApproval records the approver's refusal, returning the notification
// to classifier attention.
type RejectionApproval struct {
	Decision   string    `json:"decision"`
	RejectedBy string    `json:"rejected_by"`
	Reason     string    `json:"reason"`
	RejectedAt time.Time `json:"rejected_at"`
}

// RejectionExecutionReview records the classifier discarding the executed work
// and sending the notification back to triage.
type RejectionExecutionReview struct {
	Reason     string    `json:"reason"`
	ReviewedBy string    `json:"reviewed_by"`
	Timestamp  time.Time `json:"timestamp"`
}

// Conclusion marks the end of the management cycle.
type Conclusion struct {
	ConcludedBy string    `json:"concluded_by"`
	Notes       string    `json:"notes"`
	Timestamp   time.Time `json:"timestamp"`
	StatusFinal string    `json:"status_final"`
}

// Decision labels stored in the sub-records.
const (
	ReviewDecisionAccepted   = "Aceita"
	ApprovalDecisionApproved = "Aprovada"
	ApprovalDecisionReproved = "Reprovada"
)
