package workflow

import "context"

type contextKey string

const requiresApprovalKey contextKey = "requires_approval"

// WithRequiresApproval marks the context with the classification's superior-approval
// flag so the execution-review acceptance can resolve its target state.
func WithRequiresApproval(ctx context.Context, required bool) context.Context {
	return context.WithValue(ctx, requiresApprovalKey, required)
}

func requiresApproval(ctx context.Context) bool {
	v, ok := ctx.Value(requiresApprovalKey).(bool)
	return ok && v
}

// NewLifecycleMachine builds the notification lifecycle state machine positioned
// at the given state. The transition table is fixed: it is the hospital incident
// process, not user configuration.
//
//	pendente_classificacao → classificada | rejeitada
//	classificada           → em_execucao | revisao_classificador_execucao
//	em_execucao            → revisao_classificador_execucao
//	revisao_classificador_execucao → aguardando_aprovacao | aprovada | pendente_classificacao
//	aguardando_aprovacao   → aprovada | aguardando_classificador
func NewLifecycleMachine(current State) StateMachine {
	b := NewBuilder()

	b.Configure(StatePendingClassification).
		Permit(TriggerClassify, StateClassified).
		Permit(TriggerReject, StateRejected)

	b.Configure(StateClassified).
		Permit(TriggerStartExecution, StateInExecution).
		Permit(TriggerCompleteExecution, StateExecutionReview)

	b.Configure(StateInExecution).
		Permit(TriggerCompleteExecution, StateExecutionReview)

	b.Configure(StateExecutionReview).
		PermitIf(TriggerAcceptExecution, StateAwaitingApproval, requiresApproval).
		PermitIf(TriggerAcceptExecution, StateApproved, func(ctx context.Context) bool {
			return !requiresApproval(ctx)
		}).
		Permit(TriggerRejectExecution, StatePendingClassification)

	b.Configure(StateAwaitingApproval).
		Permit(TriggerApprove, StateApproved).
		Permit(TriggerReprove, StateAwaitingClassifier)

	return b.Build(current)
}
