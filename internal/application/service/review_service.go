package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hsvida/incident-workflow/internal/application/port"
	"github.com/hsvida/incident-workflow/internal/domain/authz"
	"github.com/hsvida/incident-workflow/internal/domain/entity"
	"github.com/hsvida/incident-workflow/internal/domain/workflow"
)

// ReviewService is the classifier's pass over completed execution
type ReviewService interface {
	// AcceptExecution accepts the executed work. When the classification
	// requires superior approval the notification moves to aguardando_aprovacao;
	// otherwise it closes directly as aprovada.
	AcceptExecution(ctx context.Context, notificationID int64, notes string, actor *entity.User) (*entity.Notification, error)

	// RejectExecution discards all classification work and returns the
	// notification to triage.
	RejectExecution(ctx context.Context, notificationID int64, reason, notes string, actor *entity.User) (*entity.Notification, error)
}

type reviewServiceImpl struct {
	notifRepo   port.NotificationRepository
	historyRepo port.HistoryRepository
	txManager   port.TransactionManager
	logger      Logger
	now         func() time.Time
}

// NewReviewService creates a new ReviewService
func NewReviewService(
	notifRepo port.NotificationRepository,
	historyRepo port.HistoryRepository,
	txManager port.TransactionManager,
	logger Logger,
) ReviewService {
	return &reviewServiceImpl{
		notifRepo:   notifRepo,
		historyRepo: historyRepo,
		txManager:   txManager,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *reviewServiceImpl) AcceptExecution(ctx context.Context, notificationID int64, notes string, actor *entity.User) (*entity.Notification, error) {
	if !authz.HasRole(actor, entity.RoleClassifier) {
		return nil, fmt.Errorf("user %s lacks role %s: %w", actor.Username, entity.RoleClassifier, ErrForbidden)
	}

	n, err := s.notifRepo.GetByID(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, fmt.Errorf("notification %d: %w", notificationID, ErrNotFound)
	}

	requiresApproval := n.RequiresApproval()
	machine := workflow.NewLifecycleMachine(n.Status)
	fireCtx := workflow.WithRequiresApproval(ctx, requiresApproval)
	if err := machine.Fire(fireCtx, workflow.TriggerAcceptExecution); err != nil {
		return nil, fmt.Errorf("accept execution of notification %d in status %s: %w", notificationID, n.Status, ErrPrecondition)
	}

	now := s.now()
	n.Status = machine.State()
	n.ReviewExecution = &entity.ReviewExecution{
		Decision:   entity.ReviewDecisionAccepted,
		ReviewedBy: actor.Username,
		Timestamp:  now,
		Notes:      notes,
	}

	action := "Revisão de Execução: Conclusão Aceita"
	details := "Execução aceita pelo classificador. Encaminhada para aprovação superior."
	if !requiresApproval {
		conclusionNotes := notes
		if conclusionNotes == "" {
			conclusionNotes = "Execução revisada e aceita pelo classificador."
		}
		n.Conclusion = &entity.Conclusion{
			ConcludedBy: actor.Username,
			Notes:       conclusionNotes,
			Timestamp:   now,
			StatusFinal: string(workflow.StateApproved),
		}
		n.Approver = nil
		action = "Revisão de Execução: Conclusão Aceita e Finalizada"
		details = "Execução revisada e aceita pelo classificador. Ciclo de gestão do evento concluído (não requeria aprovação superior)."
	}
	if notes != "" {
		details += " Obs: " + notes
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.notifRepo.Update(txCtx, n); err != nil {
			return fmt.Errorf("update notification: %w", err)
		}
		history := &entity.HistoryEntry{
			NotificationID: notificationID,
			Action:         action,
			PerformedBy:    actor.Name,
			Timestamp:      now,
			Details:        details,
		}
		if err := s.historyRepo.Create(txCtx, history); err != nil {
			return fmt.Errorf("create history: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to accept execution", "error", err, "id", notificationID)
		return nil, err
	}

	s.logger.Info("Execution accepted", "id", notificationID, "status", n.Status, "requires_approval", requiresApproval)
	return n, nil
}

func (s *reviewServiceImpl) RejectExecution(ctx context.Context, notificationID int64, reason, notes string, actor *entity.User) (*entity.Notification, error) {
	if !authz.HasRole(actor, entity.RoleClassifier) {
		return nil, fmt.Errorf("user %s lacks role %s: %w", actor.Username, entity.RoleClassifier, ErrForbidden)
	}

	check := &fieldCheck{}
	check.require(strings.TrimSpace(reason) != "", "Justificativa para Rejeição da Conclusão é obrigatória.")
	if err := check.err(); err != nil {
		return nil, err
	}

	n, err := s.notifRepo.GetByID(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, fmt.Errorf("notification %d: %w", notificationID, ErrNotFound)
	}

	machine := workflow.NewLifecycleMachine(n.Status)
	if err := machine.Fire(ctx, workflow.TriggerRejectExecution); err != nil {
		return nil, fmt.Errorf("reject execution of notification %d in status %s: %w", notificationID, n.Status, ErrPrecondition)
	}

	now := s.now()
	n.Status = machine.State()
	n.Approver = nil
	n.Executors = []int64{}
	n.Classification = nil
	n.ReviewExecution = nil
	n.Approval = nil
	n.Conclusion = nil
	n.RejectionExecutionReview = &entity.RejectionExecutionReview{
		Reason:     reason,
		ReviewedBy: actor.Username,
		Timestamp:  now,
	}

	details := "Execução rejeitada. Notificação movida para classificação inicial para reanálise e reatribuição. Motivo: " + reason
	if notes != "" {
		details += " Obs: " + notes
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.notifRepo.Update(txCtx, n); err != nil {
			return fmt.Errorf("update notification: %w", err)
		}
		history := &entity.HistoryEntry{
			NotificationID: notificationID,
			Action:         "Revisão de Execução: Conclusão Rejeitada e Reclassificação Necessária",
			PerformedBy:    actor.Name,
			Timestamp:      now,
			Details:        details,
		}
		if err := s.historyRepo.Create(txCtx, history); err != nil {
			return fmt.Errorf("create history: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to reject execution", "error", err, "id", notificationID)
		return nil, err
	}

	s.logger.Info("Execution rejected, notification back to triage", "id", notificationID)
	return n, nil
}
