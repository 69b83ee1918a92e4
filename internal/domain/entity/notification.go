package entity

import (
	"time"

	"github.com/hsvida/incident-workflow/internal/domain/workflow"
)

// Notification is the central record of a reported adverse event. Intake fields
// are written once at creation; the lifecycle fields mutate only through the
// workflow operations.
type Notification struct {
	ID int64 `json:"id"`

	// Intake (immutable after creation)
	Title                         string     `json:"title"`
	Description                   string     `json:"description"`
	Location                      string     `json:"location"`
	OccurrenceDate                string     `json:"occurrence_date"`
	OccurrenceTime                string     `json:"occurrence_time,omitempty"`
	ReportingDepartment           string     `json:"reporting_department"`
	ReportingDepartmentComplement string     `json:"reporting_department_complement,omitempty"`
	EventShift                    string     `json:"event_shift"`
	ImmediateActionsTaken         bool       `json:"immediate_actions_taken"`
	ImmediateActionDescription    string     `json:"immediate_action_description,omitempty"`
	PatientInvolved               bool       `json:"patient_involved"`
	PatientID                     string     `json:"patient_id,omitempty"`
	PatientOutcomeDeath           *bool      `json:"patient_outcome_obito,omitempty"`
	AdditionalNotes               string     `json:"additional_notes,omitempty"`
	CreatedAt                     time.Time  `json:"created_at"`

	// Lifecycle
	Status                       workflow.State `json:"status"`
	NotifiedDepartment           string         `json:"notified_department"`
	NotifiedDepartmentComplement string         `json:"notified_department_complement,omitempty"`
	Executors                    []int64        `json:"executors"`
	Approver                     *int64         `json:"approver,omitempty"`

	// Workflow sub-records, each written at most once per lifecycle pass
	Classification           *Classification           `json:"classification,omitempty"`
	RejectionClassification  *RejectionClassification  `json:"rejection_classification,omitempty"`
	ReviewExecution          *ReviewExecution          `json:"review_execution,omitempty"`
	Approval                 *Approval                 `json:"approval,omitempty"`
	RejectionApproval        *RejectionApproval        `json:"rejection_approval,omitempty"`
	RejectionExecutionReview *RejectionExecutionReview `json:"rejection_execution_review,omitempty"`
	Conclusion               *Conclusion               `json:"conclusion,omitempty"`
}

// HasExecutor reports whether the given user is assigned to the notification.
func (n *Notification) HasExecutor(userID int64) bool {
	for _, id := range n.Executors {
		if id == userID {
			return true
		}
	}
	return false
}

// RequiresApproval reports the classification's superior-approval flag,
// false when the notification is unclassified.
func (n *Notification) RequiresApproval() bool {
	return n.Classification != nil && n.Classification.RequiresApproval
}
