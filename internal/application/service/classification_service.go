package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hsvida/incident-workflow/internal/application/port"
	"github.com/hsvida/incident-workflow/internal/domain/authz"
	"github.com/hsvida/incident-workflow/internal/domain/deadline"
	"github.com/hsvida/incident-workflow/internal/domain/entity"
	"github.com/hsvida/incident-workflow/internal/domain/workflow"
)

// ClassifyInput is the complete triage decision. The multi-step form is the
// adapter's concern; the engine receives one finished structure per call.
type ClassifyInput struct {
	NNC                          string
	DamageLevel                  string
	Priority                     string
	NeverEvent                   string
	IsSentinelEvent              *bool
	OMS                          []string
	EventTypeMain                string
	EventTypeSub                 []string
	EventTypeFreeText            string
	Notes                        string
	RequiresApproval             *bool
	ApproverID                   *int64
	ExecutorIDs                  []int64
	NotifiedDepartment           string
	NotifiedDepartmentComplement string
}

// ClassificationService triages pending notifications
type ClassificationService interface {
	Classify(ctx context.Context, notificationID int64, input ClassifyInput, actor *entity.User) (*entity.Notification, error)
	Reject(ctx context.Context, notificationID int64, reason string, actor *entity.User) (*entity.Notification, error)
}

type classificationServiceImpl struct {
	notifRepo   port.NotificationRepository
	historyRepo port.HistoryRepository
	userRepo    port.UserRepository
	txManager   port.TransactionManager
	logger      Logger
	now         func() time.Time
}

// NewClassificationService creates a new ClassificationService
func NewClassificationService(
	notifRepo port.NotificationRepository,
	historyRepo port.HistoryRepository,
	userRepo port.UserRepository,
	txManager port.TransactionManager,
	logger Logger,
) ClassificationService {
	return &classificationServiceImpl{
		notifRepo:   notifRepo,
		historyRepo: historyRepo,
		userRepo:    userRepo,
		txManager:   txManager,
		logger:      logger,
		now:         time.Now,
	}
}

// Classify validates the full triage decision, computes the resolution
// deadline, binds executors and approver and moves the notification to
// classificada. All side effects commit atomically.
func (s *classificationServiceImpl) Classify(ctx context.Context, notificationID int64, input ClassifyInput, actor *entity.User) (*entity.Notification, error) {
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

	if err := s.validateClassifyInput(ctx, input); err != nil {
		return nil, err
	}

	machine := workflow.NewLifecycleMachine(n.Status)
	if err := machine.Fire(ctx, workflow.TriggerClassify); err != nil {
		return nil, fmt.Errorf("classify notification %d in status %s: %w", notificationID, n.Status, ErrPrecondition)
	}

	requiresApproval := *input.RequiresApproval
	subTypes := input.EventTypeSub
	if entity.RequiresFreeTextSubType(input.EventTypeMain) {
		subTypes = []string{input.EventTypeFreeText}
	}

	damageLevel := ""
	if input.NNC == entity.NNCEventWithHarm {
		damageLevel = input.DamageLevel
	}
	now := s.now()
	deadlineDate := deadline.DateFrom(input.NNC, damageLevel, now).Format(deadline.DateLayout)

	n.Status = machine.State()
	n.Classification = &entity.Classification{
		NNC:                     input.NNC,
		DamageLevel:             damageLevel,
		Priority:                input.Priority,
		NeverEvent:              input.NeverEvent,
		IsSentinelEvent:         *input.IsSentinelEvent,
		OMS:                     input.OMS,
		EventTypeMain:           input.EventTypeMain,
		EventTypeSub:            subTypes,
		Notes:                   input.Notes,
		ClassifiedBy:            actor.Username,
		ClassificationTimestamp: now,
		RequiresApproval:        requiresApproval,
		DeadlineDate:            deadlineDate,
	}
	n.RejectionClassification = nil
	n.Executors = input.ExecutorIDs
	if requiresApproval {
		n.Approver = input.ApproverID
	} else {
		n.Approver = nil
	}
	n.NotifiedDepartment = input.NotifiedDepartment
	n.NotifiedDepartmentComplement = input.NotifiedDepartmentComplement

	details, err := s.classificationHistoryDetails(ctx, n)
	if err != nil {
		return nil, err
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.notifRepo.Update(txCtx, n); err != nil {
			return fmt.Errorf("update notification: %w", err)
		}
		history := &entity.HistoryEntry{
			NotificationID: n.ID,
			Action:         "Notificação classificada e atribuída",
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
		s.logger.Error("Failed to classify notification", "error", err, "id", notificationID)
		return nil, err
	}

	s.logger.Info("Notification classified", "id", n.ID, "nnc", input.NNC, "deadline", deadlineDate, "requires_approval", requiresApproval)
	return n, nil
}

// Reject discards the notification at triage. The terminal rejeitada status
// keeps the record for reporting but removes it from every working queue.
func (s *classificationServiceImpl) Reject(ctx context.Context, notificationID int64, reason string, actor *entity.User) (*entity.Notification, error) {
	if !authz.HasRole(actor, entity.RoleClassifier) {
		return nil, fmt.Errorf("user %s lacks role %s: %w", actor.Username, entity.RoleClassifier, ErrForbidden)
	}

	check := &fieldCheck{}
	check.require(strings.TrimSpace(reason) != "", "Justificativa de rejeição é obrigatória.")
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
	if err := machine.Fire(ctx, workflow.TriggerReject); err != nil {
		return nil, fmt.Errorf("reject notification %d in status %s: %w", notificationID, n.Status, ErrPrecondition)
	}

	now := s.now()
	n.Status = machine.State()
	n.Classification = nil
	n.Executors = []int64{}
	n.Approver = nil
	n.RejectionClassification = &entity.RejectionClassification{
		Reason:       reason,
		ClassifiedBy: actor.Username,
		Timestamp:    now,
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.notifRepo.Update(txCtx, n); err != nil {
			return fmt.Errorf("update notification: %w", err)
		}
		history := &entity.HistoryEntry{
			NotificationID: n.ID,
			Action:         "Notificação rejeitada na Classificação Inicial",
			PerformedBy:    actor.Name,
			Timestamp:      now,
			Details:        "Motivo da rejeição: " + reason,
		}
		if err := s.historyRepo.Create(txCtx, history); err != nil {
			return fmt.Errorf("create history: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to reject notification", "error", err, "id", notificationID)
		return nil, err
	}

	s.logger.Info("Notification rejected at triage", "id", n.ID)
	return n, nil
}

func (s *classificationServiceImpl) validateClassifyInput(ctx context.Context, input ClassifyInput) error {
	check := &fieldCheck{}
	check.require(entity.ValidNNCCategory(input.NNC), "Classificação NNC é obrigatória.")
	if input.NNC == entity.NNCEventWithHarm {
		check.require(input.DamageLevel != "", "Nível de dano é obrigatório para evento com dano.")
	}
	check.require(input.Priority != "", "Prioridade de Resolução é obrigatória.")
	check.require(input.NeverEvent != "", "Never Event é obrigatório (selecione 'N/A' se não se aplica).")
	check.require(input.IsSentinelEvent != nil, "Evento Sentinela é obrigatório (Sim/Não).")
	if !entity.ValidMainEventType(input.EventTypeMain) {
		check.require(false, "Tipo Principal de Evento é obrigatório.")
	} else if entity.RequiresSubTypeList(input.EventTypeMain) {
		check.require(len(input.EventTypeSub) > 0, "É obrigatório selecionar ao menos uma Especificação do Evento.")
	} else if entity.RequiresFreeTextSubType(input.EventTypeMain) {
		check.require(strings.TrimSpace(input.EventTypeFreeText) != "",
			fmt.Sprintf("A especificação do tipo '%s' é obrigatória.", input.EventTypeMain))
	}
	check.require(len(input.OMS) > 0, "Classificação OMS é obrigatória (selecione ao menos um item).")
	check.require(input.NotifiedDepartment != "", "É obrigatório definir o Setor Notificado.")
	check.require(len(input.ExecutorIDs) > 0, "É obrigatório atribuir ao menos um Executor Responsável.")
	check.require(input.RequiresApproval != nil, "É obrigatório indicar se requer Aprovação Superior (Sim/Não).")
	if input.RequiresApproval != nil && *input.RequiresApproval {
		check.require(input.ApproverID != nil, "É obrigatório selecionar o Aprovador Responsável quando requer aprovação.")
	}
	if err := check.err(); err != nil {
		return err
	}

	// Assignment targets must exist, be active and hold the matching role.
	if len(input.ExecutorIDs) > 0 {
		executors, err := s.userRepo.GetByIDs(ctx, input.ExecutorIDs)
		if err != nil {
			return fmt.Errorf("load executors: %w", err)
		}
		byID := make(map[int64]*entity.User, len(executors))
		for _, u := range executors {
			byID[u.ID] = u
		}
		for _, id := range input.ExecutorIDs {
			u, ok := byID[id]
			if !ok {
				return fmt.Errorf("executor %d: %w", id, ErrNotFound)
			}
			if !u.Active || !hasExplicitRole(u, entity.RoleExecutor) {
				check.require(false, fmt.Sprintf("Usuário %s não pode ser atribuído como executor.", u.Username))
			}
		}
	}
	if input.RequiresApproval != nil && *input.RequiresApproval && input.ApproverID != nil {
		approver, err := s.userRepo.GetByID(ctx, *input.ApproverID)
		if err != nil {
			return fmt.Errorf("load approver: %w", err)
		}
		if approver == nil {
			return fmt.Errorf("approver %d: %w", *input.ApproverID, ErrNotFound)
		}
		if !approver.Active || !hasExplicitRole(approver, entity.RoleApprover) {
			check.require(false, fmt.Sprintf("Usuário %s não pode ser atribuído como aprovador.", approver.Username))
		}
	}
	return check.err()
}

// classificationHistoryDetails reproduces the register's audit summary: every
// classification field plus the resolved executor and approver names.
func (s *classificationServiceImpl) classificationHistoryDetails(ctx context.Context, n *entity.Notification) (string, error) {
	c := n.Classification
	var b strings.Builder
	fmt.Fprintf(&b, "Classificação NNC: %s, Prioridade: %s", c.NNC, c.Priority)
	if c.NNC == entity.NNCEventWithHarm && c.DamageLevel != "" {
		fmt.Fprintf(&b, ", Nível Dano: %s", c.DamageLevel)
	}
	fmt.Fprintf(&b, ", Never Event: %s", c.NeverEvent)
	fmt.Fprintf(&b, ", Evento Sentinela: %s", simNao(c.IsSentinelEvent))
	fmt.Fprintf(&b, ", Tipo Principal: %s", c.EventTypeMain)
	if len(c.EventTypeSub) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(c.EventTypeSub, ", "))
	}
	fmt.Fprintf(&b, ", Requer Aprovação: %s", simNao(c.RequiresApproval))

	executors, err := s.userRepo.GetByIDs(ctx, n.Executors)
	if err != nil {
		return "", fmt.Errorf("load executors for history: %w", err)
	}
	names := make([]string, 0, len(executors))
	for _, u := range executors {
		names = append(names, u.Name)
	}
	executorList := strings.Join(names, ", ")
	if executorList == "" {
		executorList = "Nenhum"
	}
	fmt.Fprintf(&b, ", Executores: %s", executorList)

	if n.Approver != nil {
		approver, err := s.userRepo.GetByID(ctx, *n.Approver)
		if err != nil {
			return "", fmt.Errorf("load approver for history: %w", err)
		}
		if approver != nil {
			fmt.Fprintf(&b, ", Aprovador: %s", approver.Name)
		}
	}

	fmt.Fprintf(&b, ", Setor Notificado: %s", n.NotifiedDepartment)
	if n.NotifiedDepartmentComplement != "" {
		fmt.Fprintf(&b, " (%s)", n.NotifiedDepartmentComplement)
	}
	return b.String(), nil
}

// hasExplicitRole checks role membership without the admin shortcut; admins
// are not implicitly assignable as executors or approvers.
func hasExplicitRole(u *entity.User, role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func simNao(v bool) string {
	if v {
		return "Sim"
	}
	return "Não"
}
