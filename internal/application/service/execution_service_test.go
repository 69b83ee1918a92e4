package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsvida/incident-workflow/internal/domain/entity"
	"github.com/hsvida/incident-workflow/internal/domain/workflow"
)

func newExecutionFixture(n *entity.Notification, finalized []int64) (ExecutionService, *mockNotifRepo, *mockActionRepo, *mockHistoryRepo) {
	notifRepo := &mockNotifRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Notification, error) {
			if n != nil && n.ID == id {
				return n, nil
			}
			return nil, nil
		},
	}
	actionRepo := &mockActionRepo{
		getFinalizedExecutorsFunc: func(ctx context.Context, notificationID int64) ([]int64, error) {
			return finalized, nil
		},
	}
	historyRepo := &mockHistoryRepo{}
	userRepo := &mockUserRepo{users: map[int64]*entity.User{
		20: testExecutor(20, "bruno"),
		21: testExecutor(21, "carla"),
		22: testExecutor(22, "diego"),
	}}
	svc := NewExecutionService(notifRepo, actionRepo, historyRepo, userRepo, &mockStorage{}, &mockTxManager{}, &mockLogger{})
	return svc, notifRepo, actionRepo, historyRepo
}

func classifiedNotification(id int64, executors ...int64) *entity.Notification {
	n := pendingNotification(id)
	n.Status = workflow.StateClassified
	n.Executors = executors
	n.Classification = &entity.Classification{
		NNC:          entity.NNCEventNoHarm,
		Priority:     "Média",
		DeadlineDate: "2025-03-11",
	}
	return n
}

func TestExecutionService_RecordAction_NonFinalStartsExecution(t *testing.T) {
	n := classifiedNotification(1, 20, 21)
	svc, _, _, historyRepo := newExecutionFixture(n, nil)

	got, err := svc.RecordAction(context.Background(), 1, RecordActionInput{Description: "Sinalizado o piso"}, testExecutor(20, "bruno"))
	require.NoError(t, err)
	assert.Equal(t, workflow.StateInExecution, got.Status)

	require.Len(t, historyRepo.entries, 1)
	assert.Equal(t, "Ação registrada (Execução)", historyRepo.entries[0].Action)
}

func TestExecutionService_RecordAction_NonFinalInExecutionKeepsStatus(t *testing.T) {
	n := classifiedNotification(1, 20)
	n.Status = workflow.StateInExecution
	svc, _, _, _ := newExecutionFixture(n, nil)

	got, err := svc.RecordAction(context.Background(), 1, RecordActionInput{Description: "Acompanhamento"}, testExecutor(20, "bruno"))
	require.NoError(t, err)
	assert.Equal(t, workflow.StateInExecution, got.Status)
}

func TestExecutionService_RecordAction_FinalPartialCompletion(t *testing.T) {
	n := classifiedNotification(1, 20, 21)
	n.Status = workflow.StateInExecution
	svc, _, _, historyRepo := newExecutionFixture(n, nil)

	got, err := svc.RecordAction(context.Background(), 1, RecordActionInput{Description: "Minha parte concluída", Final: true}, testExecutor(20, "bruno"))
	require.NoError(t, err)
	// One of two executors finalized: no transition yet.
	assert.Equal(t, workflow.StateInExecution, got.Status)

	require.Len(t, historyRepo.entries, 1)
	assert.Equal(t, "Execução concluída (por executor)", historyRepo.entries[0].Action)
	assert.Contains(t, historyRepo.entries[0].Details, "Executor carla")
}

func TestExecutionService_RecordAction_LastFinalTriggersReview(t *testing.T) {
	n := classifiedNotification(1, 20, 21)
	n.Status = workflow.StateInExecution
	svc, _, _, _ := newExecutionFixture(n, []int64{21})

	got, err := svc.RecordAction(context.Background(), 1, RecordActionInput{
		Description:         "Parte final",
		Final:               true,
		EvidenceDescription: "Relatório anexado",
		EvidenceUploads:     []AttachmentUpload{{OriginalName: "laudo.pdf", Content: []byte("pdf")}},
	}, testExecutor(20, "bruno"))
	require.NoError(t, err)
	assert.Equal(t, workflow.StateExecutionReview, got.Status)
}

func TestExecutionService_RecordAction_FinalDirectlyFromClassified(t *testing.T) {
	// Single executor concluding straight from classificada skips em_execucao.
	n := classifiedNotification(1, 20)
	svc, _, _, _ := newExecutionFixture(n, nil)

	got, err := svc.RecordAction(context.Background(), 1, RecordActionInput{Description: "Resolvido", Final: true}, testExecutor(20, "bruno"))
	require.NoError(t, err)
	assert.Equal(t, workflow.StateExecutionReview, got.Status)
}

func TestExecutionService_RecordAction_SecondFinalConflicts(t *testing.T) {
	n := classifiedNotification(1, 20, 21)
	n.Status = workflow.StateInExecution
	notifRepo := &mockNotifRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Notification, error) { return n, nil },
	}
	created := false
	actionRepo := &mockActionRepo{
		getFinalizedExecutorsFunc: func(ctx context.Context, notificationID int64) ([]int64, error) {
			return []int64{20}, nil
		},
		createFunc: func(ctx context.Context, action *entity.ActionEntry) error {
			created = true
			return nil
		},
	}
	storage := &mockStorage{}
	svc := NewExecutionService(notifRepo, actionRepo, &mockHistoryRepo{}, &mockUserRepo{}, storage, &mockTxManager{}, &mockLogger{})

	input := RecordActionInput{
		Description:     "De novo",
		Final:           true,
		EvidenceUploads: []AttachmentUpload{{OriginalName: "foto.jpg", Content: []byte("jpg")}},
	}
	_, err := svc.RecordAction(context.Background(), 1, input, testExecutor(20, "bruno"))
	assert.ErrorIs(t, err, ErrConflict)
	assert.False(t, created, "no duplicate action entry may be created")
	assert.Empty(t, storage.files, "refused duplicate must not write evidence files")
}

func TestExecutionService_RecordAction_RequiresAssignment(t *testing.T) {
	n := classifiedNotification(1, 21)
	svc, _, _, _ := newExecutionFixture(n, nil)

	_, err := svc.RecordAction(context.Background(), 1, RecordActionInput{Description: "Tentativa"}, testExecutor(20, "bruno"))
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestExecutionService_RecordAction_RequiresDescription(t *testing.T) {
	n := classifiedNotification(1, 20)
	svc, _, _, _ := newExecutionFixture(n, nil)

	_, err := svc.RecordAction(context.Background(), 1, RecordActionInput{Description: "   "}, testExecutor(20, "bruno"))
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestExecutionService_RecordAction_WrongStatus(t *testing.T) {
	n := classifiedNotification(1, 20)
	n.Status = workflow.StateExecutionReview
	svc, _, _, _ := newExecutionFixture(n, nil)

	_, err := svc.RecordAction(context.Background(), 1, RecordActionInput{Description: "Tarde demais"}, testExecutor(20, "bruno"))
	assert.ErrorIs(t, err, ErrPrecondition)
}

func TestExecutionService_AddExecutor(t *testing.T) {
	n := classifiedNotification(1, 20)
	n.Status = workflow.StateInExecution
	svc, _, _, historyRepo := newExecutionFixture(n, nil)

	got, err := svc.AddExecutor(context.Background(), 1, 22, testExecutor(20, "bruno"))
	require.NoError(t, err)
	assert.Equal(t, []int64{20, 22}, got.Executors)
	assert.Equal(t, workflow.StateInExecution, got.Status)

	require.Len(t, historyRepo.entries, 1)
	assert.Equal(t, "Executor adicionado (durante execução)", historyRepo.entries[0].Action)
}

func TestExecutionService_AddExecutor_AlreadyAssigned(t *testing.T) {
	n := classifiedNotification(1, 20, 22)
	svc, _, _, historyRepo := newExecutionFixture(n, nil)

	got, err := svc.AddExecutor(context.Background(), 1, 22, testExecutor(20, "bruno"))
	require.NoError(t, err)
	assert.Equal(t, []int64{20, 22}, got.Executors)
	assert.Empty(t, historyRepo.entries)
}

func TestExecutionService_AddExecutor_ActorWithoutExecutorRole(t *testing.T) {
	n := classifiedNotification(1, 20)
	svc, _, _, historyRepo := newExecutionFixture(n, nil)

	outsider := &entity.User{ID: 50, Username: "visita", Name: "Visita", Active: false}
	_, err := svc.AddExecutor(context.Background(), 1, 21, outsider)
	require.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, []int64{20}, n.Executors)
	assert.Empty(t, historyRepo.entries)
}

func TestExecutionService_AddExecutor_ActorNotAssigned(t *testing.T) {
	n := classifiedNotification(1, 20)
	svc, _, _, historyRepo := newExecutionFixture(n, nil)

	// Holds the executor role but is not bound to this notification.
	_, err := svc.AddExecutor(context.Background(), 1, 21, testExecutor(22, "diego"))
	require.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, []int64{20}, n.Executors)
	assert.Empty(t, historyRepo.entries)
}

func TestExecutionService_AddExecutor_RejectsNonExecutor(t *testing.T) {
	n := classifiedNotification(1, 20)
	notifRepo := &mockNotifRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Notification, error) { return n, nil },
	}
	userRepo := &mockUserRepo{users: map[int64]*entity.User{
		20: testExecutor(20, "bruno"),
		30: testApprover(),
	}}
	svc := NewExecutionService(notifRepo, &mockActionRepo{}, &mockHistoryRepo{}, userRepo, &mockStorage{}, &mockTxManager{}, &mockLogger{})

	_, err := svc.AddExecutor(context.Background(), 1, 30, testExecutor(20, "bruno"))
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
}
