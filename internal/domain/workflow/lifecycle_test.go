package workflow

import (
	"context"
	"testing"
)

// lifecycleEdge names a transition the notification process permits. The
// approval flag only matters for accepting an execution review.
type lifecycleEdge struct {
	from             State
	trigger          Trigger
	requiresApproval bool
	to               State
}

var lifecycleEdges = []lifecycleEdge{
	{StatePendingClassification, TriggerClassify, false, StateClassified},
	{StatePendingClassification, TriggerReject, false, StateRejected},
	{StateClassified, TriggerStartExecution, false, StateInExecution},
	{StateClassified, TriggerCompleteExecution, false, StateExecutionReview},
	{StateInExecution, TriggerCompleteExecution, false, StateExecutionReview},
	{StateExecutionReview, TriggerAcceptExecution, true, StateAwaitingApproval},
	{StateExecutionReview, TriggerAcceptExecution, false, StateApproved},
	{StateExecutionReview, TriggerRejectExecution, false, StatePendingClassification},
	{StateAwaitingApproval, TriggerApprove, false, StateApproved},
	{StateAwaitingApproval, TriggerReprove, false, StateAwaitingClassifier},
}

func TestLifecycle_PermittedTransitions(t *testing.T) {
	for _, edge := range lifecycleEdges {
		name := string(edge.from) + "/" + string(edge.trigger)
		if edge.requiresApproval {
			name += "/approval"
		}
		t.Run(name, func(t *testing.T) {
			machine := NewLifecycleMachine(edge.from)
			ctx := WithRequiresApproval(context.Background(), edge.requiresApproval)
			if err := machine.Fire(ctx, edge.trigger); err != nil {
				t.Fatalf("Fire(%s) from %s: %v", edge.trigger, edge.from, err)
			}
			if machine.State() != edge.to {
				t.Errorf("State() = %s, want %s", machine.State(), edge.to)
			}
		})
	}
}

// Every (state, trigger) pair outside the transition table must be refused and
// leave the machine where it was.
func TestLifecycle_RefusesEverythingElse(t *testing.T) {
	permitted := make(map[State]map[Trigger]bool)
	for _, edge := range lifecycleEdges {
		if permitted[edge.from] == nil {
			permitted[edge.from] = make(map[Trigger]bool)
		}
		permitted[edge.from][edge.trigger] = true
	}

	triggers := []Trigger{
		TriggerClassify, TriggerReject, TriggerStartExecution,
		TriggerCompleteExecution, TriggerAcceptExecution, TriggerRejectExecution,
		TriggerApprove, TriggerReprove,
	}

	for _, state := range AllStates() {
		for _, trigger := range triggers {
			if permitted[state][trigger] {
				continue
			}
			t.Run(string(state)+"/"+string(trigger), func(t *testing.T) {
				machine := NewLifecycleMachine(state)
				if machine.CanFire(trigger) {
					t.Errorf("CanFire(%s) from %s should be false", trigger, state)
				}
				if err := machine.Fire(context.Background(), trigger); err == nil {
					t.Errorf("Fire(%s) from %s should fail", trigger, state)
				}
				if machine.State() != state {
					t.Errorf("refused trigger moved state to %s", machine.State())
				}
			})
		}
	}
}

// Terminal states and the awaiting-classifier dead end permit nothing.
func TestLifecycle_DeadEnds(t *testing.T) {
	deadEnds := []State{
		StateAwaitingClassifier, StateApproved, StateRejected,
		StateReproved, StateConcluded,
	}
	for _, state := range deadEnds {
		t.Run(string(state), func(t *testing.T) {
			machine := NewLifecycleMachine(state)
			if got := machine.PermittedTriggers(); len(got) != 0 {
				t.Errorf("PermittedTriggers() = %v, want none", got)
			}
		})
	}
}
