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

// RecordActionInput is one executor action log entry. Evidence is only
// accepted on final actions.
type RecordActionInput struct {
	Description         string
	Final               bool
	EvidenceDescription string
	EvidenceUploads     []AttachmentUpload
}

// ExecutionService records executor work on classified notifications
type ExecutionService interface {
	RecordAction(ctx context.Context, notificationID int64, input RecordActionInput, actor *entity.User) (*entity.Notification, error)
	AddExecutor(ctx context.Context, notificationID int64, newExecutorID int64, actor *entity.User) (*entity.Notification, error)
	GetActions(ctx context.Context, notificationID int64) ([]*entity.ActionEntry, error)
}

type executionServiceImpl struct {
	notifRepo   port.NotificationRepository
	actionRepo  port.ActionRepository
	historyRepo port.HistoryRepository
	userRepo    port.UserRepository
	storage     port.FileStorage
	txManager   port.TransactionManager
	logger      Logger
	now         func() time.Time
}

// NewExecutionService creates a new ExecutionService
func NewExecutionService(
	notifRepo port.NotificationRepository,
	actionRepo port.ActionRepository,
	historyRepo port.HistoryRepository,
	userRepo port.UserRepository,
	storage port.FileStorage,
	txManager port.TransactionManager,
	logger Logger,
) ExecutionService {
	return &executionServiceImpl{
		notifRepo:   notifRepo,
		actionRepo:  actionRepo,
		historyRepo: historyRepo,
		userRepo:    userRepo,
		storage:     storage,
		txManager:   txManager,
		logger:      logger,
		now:         time.Now,
	}
}

// RecordAction appends an action entry by an assigned executor. A non-final
// action on classificada starts execution; a final action by the last pending
// executor sends the notification to classifier review.
func (s *executionServiceImpl) RecordAction(ctx context.Context, notificationID int64, input RecordActionInput, actor *entity.User) (*entity.Notification, error) {
	if !authz.HasRole(actor, entity.RoleExecutor) {
		return nil, fmt.Errorf("user %s lacks role %s: %w", actor.Username, entity.RoleExecutor, ErrForbidden)
	}

	check := &fieldCheck{}
	check.require(strings.TrimSpace(input.Description) != "", "Descrição da ação é obrigatória.")
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
	if n.Status != workflow.StateClassified && n.Status != workflow.StateInExecution {
		return nil, fmt.Errorf("record action on notification %d in status %s: %w", notificationID, n.Status, ErrPrecondition)
	}
	if !n.HasExecutor(actor.ID) {
		return nil, fmt.Errorf("user %s is not assigned to notification %d: %w", actor.Username, notificationID, ErrForbidden)
	}

	now := s.now()
	action := &entity.ActionEntry{
		NotificationID:        notificationID,
		ExecutorID:            actor.ID,
		ExecutorName:          actor.Username,
		Description:           input.Description,
		Timestamp:             now,
		FinalActionByExecutor: input.Final,
	}
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		// Re-check the already-finalized guard right before the write to
		// narrow the race window between two submissions by the same executor.
		finalized, err := s.actionRepo.GetFinalizedExecutors(txCtx, notificationID)
		if err != nil {
			return fmt.Errorf("load finalized executors: %w", err)
		}
		for _, id := range finalized {
			if id == actor.ID {
				return fmt.Errorf("executor %s already finalized notification %d: %w", actor.Username, notificationID, ErrConflict)
			}
		}

		// Evidence hits disk only after the conflict check passes, keeping
		// a refused duplicate from leaving orphaned files behind.
		if input.Final {
			action.EvidenceDescription = input.EvidenceDescription
			for _, upload := range input.EvidenceUploads {
				uniqueName, err := s.storage.Save(txCtx, notificationID, upload.OriginalName, upload.Content)
				if err != nil {
					return fmt.Errorf("store evidence %s: %w", upload.OriginalName, err)
				}
				action.EvidenceAttachments = append(action.EvidenceAttachments, entity.AttachmentReference{
					UniqueName:   uniqueName,
					OriginalName: upload.OriginalName,
				})
			}
		}

		if err := s.actionRepo.Create(txCtx, action); err != nil {
			return fmt.Errorf("create action: %w", err)
		}

		if !input.Final {
			if n.Status == workflow.StateClassified {
				machine := workflow.NewLifecycleMachine(n.Status)
				if err := machine.Fire(txCtx, workflow.TriggerStartExecution); err != nil {
					return fmt.Errorf("start execution: %w", err)
				}
				moved, err := s.notifRepo.UpdateStatusFrom(txCtx, notificationID, n.Status, machine.State())
				if err != nil {
					return fmt.Errorf("update status: %w", err)
				}
				if moved {
					n.Status = machine.State()
				}
			}
			history := &entity.HistoryEntry{
				NotificationID: notificationID,
				Action:         "Ação registrada (Execução)",
				PerformedBy:    actor.Username,
				Timestamp:      now,
				Details:        "Registrou ação: " + input.Description,
			}
			if err := s.historyRepo.Create(txCtx, history); err != nil {
				return fmt.Errorf("create history: %w", err)
			}
			return nil
		}

		// Final action: recompute the distinct finalizers including this write
		// and transition only when every assigned executor concluded.
		concluded := make(map[int64]bool, len(finalized)+1)
		for _, id := range finalized {
			concluded[id] = true
		}
		concluded[actor.ID] = true

		allConcluded := len(n.Executors) > 0
		var pending []int64
		for _, id := range n.Executors {
			if !concluded[id] {
				allConcluded = false
				pending = append(pending, id)
			}
		}

		details := fmt.Sprintf("Executor %s concluiu sua parte das ações.", actor.Username)
		if allConcluded {
			machine := workflow.NewLifecycleMachine(n.Status)
			if err := machine.Fire(txCtx, workflow.TriggerCompleteExecution); err != nil {
				return fmt.Errorf("complete execution: %w", err)
			}
			moved, err := s.notifRepo.UpdateStatusFrom(txCtx, notificationID, n.Status, machine.State())
			if err != nil {
				return fmt.Errorf("update status: %w", err)
			}
			if moved {
				n.Status = machine.State()
			}
			details += " Todos os executores concluíram; notificação encaminhada para revisão."
		} else if len(pending) > 0 {
			names, err := s.userNames(txCtx, pending)
			if err != nil {
				return err
			}
			details += " Aguardando conclusão dos seguintes executores: " + strings.Join(names, ", ") + "."
		}

		history := &entity.HistoryEntry{
			NotificationID: notificationID,
			Action:         "Execução concluída (por executor)",
			PerformedBy:    actor.Username,
			Timestamp:      now,
			Details:        details,
		}
		if err := s.historyRepo.Create(txCtx, history); err != nil {
			return fmt.Errorf("create history: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to record action", "error", err, "id", notificationID, "executor", actor.Username)
		return nil, err
	}

	s.logger.Info("Action recorded", "id", notificationID, "executor", actor.Username, "final", input.Final, "status", n.Status)
	return n, nil
}

// AddExecutor assigns one more executor mid-execution. Only an executor
// already assigned to the notification may bring in another. No status change.
func (s *executionServiceImpl) AddExecutor(ctx context.Context, notificationID int64, newExecutorID int64, actor *entity.User) (*entity.Notification, error) {
	if !authz.HasRole(actor, entity.RoleExecutor) {
		return nil, fmt.Errorf("user %s lacks role %s: %w", actor.Username, entity.RoleExecutor, ErrForbidden)
	}

	n, err := s.notifRepo.GetByID(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, fmt.Errorf("notification %d: %w", notificationID, ErrNotFound)
	}
	if n.Status != workflow.StateClassified && n.Status != workflow.StateInExecution {
		return nil, fmt.Errorf("add executor to notification %d in status %s: %w", notificationID, n.Status, ErrPrecondition)
	}
	if !n.HasExecutor(actor.ID) {
		return nil, fmt.Errorf("user %s is not assigned to notification %d: %w", actor.Username, notificationID, ErrForbidden)
	}
	if n.HasExecutor(newExecutorID) {
		return n, nil
	}

	newExecutor, err := s.userRepo.GetByID(ctx, newExecutorID)
	if err != nil {
		return nil, err
	}
	if newExecutor == nil {
		return nil, fmt.Errorf("user %d: %w", newExecutorID, ErrNotFound)
	}
	if !newExecutor.Active || !hasExplicitRole(newExecutor, entity.RoleExecutor) {
		return nil, &ValidationError{Violations: []string{
			fmt.Sprintf("Usuário %s não pode ser atribuído como executor.", newExecutor.Username),
		}}
	}

	n.Executors = append(n.Executors, newExecutorID)
	now := s.now()

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.notifRepo.Update(txCtx, n); err != nil {
			return fmt.Errorf("update notification: %w", err)
		}
		history := &entity.HistoryEntry{
			NotificationID: notificationID,
			Action:         "Executor adicionado (durante execução)",
			PerformedBy:    actor.Username,
			Timestamp:      now,
			Details:        fmt.Sprintf("Adicionado o executor: %s (%s)", newExecutor.Name, newExecutor.Username),
		}
		if err := s.historyRepo.Create(txCtx, history); err != nil {
			return fmt.Errorf("create history: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to add executor", "error", err, "id", notificationID, "executor", newExecutorID)
		return nil, err
	}

	s.logger.Info("Executor added", "id", notificationID, "executor", newExecutor.Username)
	return n, nil
}

func (s *executionServiceImpl) GetActions(ctx context.Context, notificationID int64) ([]*entity.ActionEntry, error) {
	return s.actionRepo.GetByNotificationID(ctx, notificationID)
}

func (s *executionServiceImpl) userNames(ctx context.Context, ids []int64) ([]string, error) {
	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Name)
	}
	return names, nil
}
