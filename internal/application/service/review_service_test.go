package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsvida/incident-workflow/internal/domain/entity"
	"github.com/hsvida/incident-workflow/internal/domain/workflow"
)

func reviewNotification(id int64, requiresApproval bool) *entity.Notification {
	n := classifiedNotification(id, 20, 21)
	n.Status = workflow.StateExecutionReview
	n.Classification.RequiresApproval = requiresApproval
	if requiresApproval {
		n.Approver = int64Ptr(30)
	}
	return n
}

func newReviewFixture(n *entity.Notification) (ReviewService, *mockHistoryRepo) {
	notifRepo := &mockNotifRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Notification, error) {
			if n != nil && n.ID == id {
				return n, nil
			}
			return nil, nil
		},
	}
	historyRepo := &mockHistoryRepo{}
	svc := NewReviewService(notifRepo, historyRepo, &mockTxManager{}, &mockLogger{})
	return svc, historyRepo
}

func TestReviewService_AcceptExecution_RoutesToApproval(t *testing.T) {
	n := reviewNotification(1, true)
	svc, historyRepo := newReviewFixture(n)

	got, err := svc.AcceptExecution(context.Background(), 1, "Tudo certo", testClassifier())
	require.NoError(t, err)

	assert.Equal(t, workflow.StateAwaitingApproval, got.Status)
	require.NotNil(t, got.ReviewExecution)
	assert.Equal(t, entity.ReviewDecisionAccepted, got.ReviewExecution.Decision)
	assert.Equal(t, "clara", got.ReviewExecution.ReviewedBy)
	assert.Nil(t, got.Conclusion)
	require.NotNil(t, got.Approver, "approver binding survives until the approval decision")

	require.Len(t, historyRepo.entries, 1)
	assert.Equal(t, "Revisão de Execução: Conclusão Aceita", historyRepo.entries[0].Action)
	assert.Contains(t, historyRepo.entries[0].Details, "Obs: Tudo certo")
}

func TestReviewService_AcceptExecution_DirectClosure(t *testing.T) {
	n := reviewNotification(1, false)
	svc, historyRepo := newReviewFixture(n)

	got, err := svc.AcceptExecution(context.Background(), 1, "", testClassifier())
	require.NoError(t, err)

	assert.Equal(t, workflow.StateApproved, got.Status)
	require.NotNil(t, got.Conclusion)
	assert.Equal(t, "Execução revisada e aceita pelo classificador.", got.Conclusion.Notes)
	assert.Equal(t, "aprovada", got.Conclusion.StatusFinal)
	assert.Nil(t, got.Approver)

	require.Len(t, historyRepo.entries, 1)
	assert.Equal(t, "Revisão de Execução: Conclusão Aceita e Finalizada", historyRepo.entries[0].Action)
}

func TestReviewService_AcceptExecution_CustomNotesOnConclusion(t *testing.T) {
	n := reviewNotification(1, false)
	svc, _ := newReviewFixture(n)

	got, err := svc.AcceptExecution(context.Background(), 1, "Ação eficaz", testClassifier())
	require.NoError(t, err)
	assert.Equal(t, "Ação eficaz", got.Conclusion.Notes)
}

func TestReviewService_RejectExecution_FullReset(t *testing.T) {
	n := reviewNotification(1, true)
	n.ReviewExecution = &entity.ReviewExecution{Decision: entity.ReviewDecisionAccepted}
	n.Approval = &entity.Approval{Decision: entity.ApprovalDecisionApproved}
	n.Conclusion = &entity.Conclusion{ConcludedBy: "alguém"}
	svc, historyRepo := newReviewFixture(n)

	got, err := svc.RejectExecution(context.Background(), 1, "Evidência incompleta", "", testClassifier())
	require.NoError(t, err)

	assert.Equal(t, workflow.StatePendingClassification, got.Status)
	assert.Nil(t, got.Classification)
	assert.Empty(t, got.Executors)
	assert.Nil(t, got.Approver)
	assert.Nil(t, got.ReviewExecution)
	assert.Nil(t, got.Approval)
	assert.Nil(t, got.Conclusion)
	require.NotNil(t, got.RejectionExecutionReview)
	assert.Equal(t, "Evidência incompleta", got.RejectionExecutionReview.Reason)

	require.Len(t, historyRepo.entries, 1)
	assert.Equal(t, "Revisão de Execução: Conclusão Rejeitada e Reclassificação Necessária", historyRepo.entries[0].Action)
}

func TestReviewService_RejectExecution_RequiresReason(t *testing.T) {
	svc, _ := newReviewFixture(reviewNotification(1, false))

	_, err := svc.RejectExecution(context.Background(), 1, "", "", testClassifier())
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestReviewService_WrongStatus(t *testing.T) {
	n := reviewNotification(1, false)
	n.Status = workflow.StateClassified
	svc, _ := newReviewFixture(n)

	_, err := svc.AcceptExecution(context.Background(), 1, "", testClassifier())
	assert.ErrorIs(t, err, ErrPrecondition)

	_, err = svc.RejectExecution(context.Background(), 1, "motivo", "", testClassifier())
	assert.ErrorIs(t, err, ErrPrecondition)
}

func TestReviewService_RequiresClassifierRole(t *testing.T) {
	svc, _ := newReviewFixture(reviewNotification(1, false))

	_, err := svc.AcceptExecution(context.Background(), 1, "", testExecutor(20, "bruno"))
	assert.ErrorIs(t, err, ErrForbidden)
}
