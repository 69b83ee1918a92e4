package workflow

// Trigger represents an operation that can cause a lifecycle transition
type Trigger string

const (
	TriggerClassify          Trigger = "CLASSIFY"
	TriggerReject            Trigger = "REJECT"
	TriggerStartExecution    Trigger = "START_EXECUTION"
	TriggerCompleteExecution Trigger = "COMPLETE_EXECUTION"
	TriggerAcceptExecution   Trigger = "ACCEPT_EXECUTION"
	TriggerRejectExecution   Trigger = "REJECT_EXECUTION"
	TriggerApprove           Trigger = "APPROVE"
	TriggerReprove           Trigger = "REPROVE"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
