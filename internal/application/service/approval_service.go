package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hsvida/incident-workflow/internal/application/port"
	"github.com/hsvida/incident-workflow/internal/domain/entity"
	"github.com/hsvida/incident-workflow/internal/domain/workflow"
)

// ApprovalService is the final sign-off by the bound approver
type ApprovalService interface {
	// Approve closes the notification as aprovada. Terminal.
	Approve(ctx context.Context, notificationID int64, notes string, actor *entity.User) (*entity.Notification, error)

	// Reprove refuses the sign-off and returns the notification to classifier
	// attention (aguardando_classificador).
	Reprove(ctx context.Context, notificationID int64, reason string, actor *entity.User) (*entity.Notification, error)
}

type approvalServiceImpl struct {
	notifRepo   port.NotificationRepository
	historyRepo port.HistoryRepository
	txManager   port.TransactionManager
	logger      Logger
	now         func() time.Time
}

// NewApprovalService creates a new ApprovalService
func NewApprovalService(
	notifRepo port.NotificationRepository,
	historyRepo port.HistoryRepository,
	txManager port.TransactionManager,
	logger Logger,
) ApprovalService {
	return &approvalServiceImpl{
		notifRepo:   notifRepo,
		historyRepo: historyRepo,
		txManager:   txManager,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *approvalServiceImpl) Approve(ctx context.Context, notificationID int64, notes string, actor *entity.User) (*entity.Notification, error) {
	n, err := s.loadForApproval(ctx, notificationID, actor)
	if err != nil {
		return nil, err
	}

	machine := workflow.NewLifecycleMachine(n.Status)
	if err := machine.Fire(ctx, workflow.TriggerApprove); err != nil {
		return nil, fmt.Errorf("approve notification %d in status %s: %w", notificationID, n.Status, ErrPrecondition)
	}

	now := s.now()
	conclusionNotes := notes
	if conclusionNotes == "" {
		conclusionNotes = "Notificação aprovada superiormente."
	}

	n.Status = machine.State()
	n.Approval = &entity.Approval{
		Decision:   entity.ApprovalDecisionApproved,
		ApprovedBy: actor.Username,
		Notes:      notes,
		ApprovedAt: now,
	}
	n.Conclusion = &entity.Conclusion{
		ConcludedBy: actor.Username,
		Notes:       conclusionNotes,
		Timestamp:   now,
		StatusFinal: string(workflow.StateApproved),
	}
	n.Approver = nil

	details := "Aprovada superiormente."
	if notes != "" {
		details += " Obs: " + notes
	}

	err = s.persist(ctx, n, "Notificação aprovada e finalizada", actor.Name, now, details)
	if err != nil {
		s.logger.Error("Failed to approve notification", "error", err, "id", notificationID)
		return nil, err
	}

	s.logger.Info("Notification approved", "id", notificationID, "approved_by", actor.Username)
	return n, nil
}

func (s *approvalServiceImpl) Reprove(ctx context.Context, notificationID int64, reason string, actor *entity.User) (*entity.Notification, error) {
	check := &fieldCheck{}
	check.require(strings.TrimSpace(reason) != "", "Justificativa da reprovação é obrigatória.")
	if err := check.err(); err != nil {
		return nil, err
	}

	n, err := s.loadForApproval(ctx, notificationID, actor)
	if err != nil {
		return nil, err
	}

	machine := workflow.NewLifecycleMachine(n.Status)
	if err := machine.Fire(ctx, workflow.TriggerReprove); err != nil {
		return nil, fmt.Errorf("reprove notification %d in status %s: %w", notificationID, n.Status, ErrPrecondition)
	}

	now := s.now()
	n.Status = machine.State()
	n.RejectionApproval = &entity.RejectionApproval{
		Decision:   entity.ApprovalDecisionReproved,
		RejectedBy: actor.Username,
		Reason:     reason,
		RejectedAt: now,
	}
	n.Approver = nil

	err = s.persist(ctx, n, "Notificação reprovada (Aprovação)", actor.Name, now,
		"Reprovada superiormente. Motivo: "+reason)
	if err != nil {
		s.logger.Error("Failed to reprove notification", "error", err, "id", notificationID)
		return nil, err
	}

	s.logger.Info("Notification reproved", "id", notificationID, "rejected_by", actor.Username)
	return n, nil
}

// loadForApproval enforces the approver binding: only the user bound at
// classification time may decide, admin included only when bound.
func (s *approvalServiceImpl) loadForApproval(ctx context.Context, notificationID int64, actor *entity.User) (*entity.Notification, error) {
	n, err := s.notifRepo.GetByID(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, fmt.Errorf("notification %d: %w", notificationID, ErrNotFound)
	}
	if n.Status != workflow.StateAwaitingApproval {
		return nil, fmt.Errorf("approval of notification %d in status %s: %w", notificationID, n.Status, ErrPrecondition)
	}
	if n.Approver == nil || *n.Approver != actor.ID {
		return nil, fmt.Errorf("user %s is not the bound approver of notification %d: %w", actor.Username, notificationID, ErrForbidden)
	}
	return n, nil
}

func (s *approvalServiceImpl) persist(ctx context.Context, n *entity.Notification, action, actorName string, ts time.Time, details string) error {
	return s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.notifRepo.Update(txCtx, n); err != nil {
			return fmt.Errorf("update notification: %w", err)
		}
		history := &entity.HistoryEntry{
			NotificationID: n.ID,
			Action:         action,
			PerformedBy:    actorName,
			Timestamp:      ts,
			Details:        details,
		}
		if err := s.historyRepo.Create(txCtx, history); err != nil {
			return fmt.Errorf("create history: %w", err)
		}
		return nil
	})
}
