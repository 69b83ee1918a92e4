package workflow

// State represents a notification status in the incident lifecycle.
type State string

const (
	StatePendingClassification State = "pendente_classificacao"
	StateClassified            State = "classificada"
	StateInExecution           State = "em_execucao"
	StateExecutionReview       State = "revisao_classificador_execucao"
	StateAwaitingApproval      State = "aguardando_aprovacao"
	StateAwaitingClassifier    State = "aguardando_classificador"
	StateApproved              State = "aprovada"
	StateRejected              State = "rejeitada"
	StateReproved              State = "reprovada"
	StateConcluded             State = "concluida"
)

var validStates = map[State]bool{
	StatePendingClassification: true,
	StateClassified:            true,
	StateInExecution:           true,
	StateExecutionReview:       true,
	StateAwaitingApproval:      true,
	StateAwaitingClassifier:    true,
	StateApproved:              true,
	StateRejected:              true,
	StateReproved:              true,
	StateConcluded:             true,
}

// reprovada and concluida exist on legacy rows and in reporting views only;
// no trigger produces them.
var terminalStates = map[State]bool{
	StateApproved:  true,
	StateRejected:  true,
	StateReproved:  true,
	StateConcluded: true,
}

// IsTerminal returns true if the state is a terminal state (no further transitions allowed)
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// IsValid returns true if the state is a valid lifecycle state
func (s State) IsValid() bool {
	return validStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// AllStates returns every valid lifecycle state in canonical display order.
func AllStates() []State {
	return []State{
		StatePendingClassification,
		StateClassified,
		StateInExecution,
		StateExecutionReview,
		StateAwaitingClassifier,
		StateAwaitingApproval,
		StateApproved,
		StateRejected,
		StateReproved,
		StateConcluded,
	}
}
