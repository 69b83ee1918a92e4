package service

import (
	"context"
	"fmt"
	"time"

	"github.com/hsvida/incident-workflow/internal/application/port"
	"github.com/hsvida/incident-workflow/internal/domain/entity"
	"github.com/hsvida/incident-workflow/internal/domain/workflow"
)

// AttachmentUpload carries one uploaded file through intake or action evidence.
type AttachmentUpload struct {
	OriginalName string
	Content      []byte
}

// CreateNotificationInput is the complete intake form. Yes/no selections arrive
// already resolved to booleans; the adapter owns form mechanics.
type CreateNotificationInput struct {
	Title                         string
	Description                   string
	Location                      string
	OccurrenceDate                string
	OccurrenceTime                string
	ReportingDepartment           string
	ReportingDepartmentComplement string
	NotifiedDepartment            string
	NotifiedDepartmentComplement  string
	EventShift                    string
	ImmediateActionsTaken         bool
	ImmediateActionDescription    string
	PatientInvolved               bool
	PatientID                     string
	PatientOutcomeDeath           *bool
	AdditionalNotes               string
	Attachments                   []AttachmentUpload
}

// IntakeService creates notifications from staff reports
type IntakeService interface {
	Create(ctx context.Context, input CreateNotificationInput, actorName string) (*entity.Notification, error)
	Get(ctx context.Context, id int64) (*entity.Notification, error)
	List(ctx context.Context, filter port.NotificationFilter) ([]*entity.Notification, error)
	GetHistory(ctx context.Context, id int64) ([]*entity.HistoryEntry, error)
	GetAttachments(ctx context.Context, id int64) ([]*entity.Attachment, error)
	ReadAttachment(ctx context.Context, uniqueName string) ([]byte, *entity.Attachment, error)
}

type intakeServiceImpl struct {
	notifRepo      port.NotificationRepository
	historyRepo    port.HistoryRepository
	attachmentRepo port.AttachmentRepository
	storage        port.FileStorage
	txManager      port.TransactionManager
	logger         Logger
	now            func() time.Time
}

// NewIntakeService creates a new IntakeService
func NewIntakeService(
	notifRepo port.NotificationRepository,
	historyRepo port.HistoryRepository,
	attachmentRepo port.AttachmentRepository,
	storage port.FileStorage,
	txManager port.TransactionManager,
	logger Logger,
) IntakeService {
	return &intakeServiceImpl{
		notifRepo:      notifRepo,
		historyRepo:    historyRepo,
		attachmentRepo: attachmentRepo,
		storage:        storage,
		txManager:      txManager,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *intakeServiceImpl) Create(ctx context.Context, input CreateNotificationInput, actorName string) (*entity.Notification, error) {
	check := &fieldCheck{}
	check.require(input.Title != "", "Título da notificação é obrigatório.")
	check.require(input.Description != "", "Descrição do evento é obrigatória.")
	check.require(input.Location != "", "Local do evento é obrigatório.")
	check.require(validDate(input.OccurrenceDate), "Data da ocorrência é obrigatória.")
	check.require(input.ReportingDepartment != "", "Setor Notificante é obrigatório.")
	check.require(input.EventShift != "", "Turno do evento é obrigatório.")
	if input.ImmediateActionsTaken {
		check.require(input.ImmediateActionDescription != "", "Descrição das ações imediatas é obrigatória.")
	}
	if input.PatientInvolved {
		check.require(input.PatientID != "", "Identificação do paciente é obrigatória quando há paciente envolvido.")
		check.require(input.PatientOutcomeDeath != nil, "Desfecho óbito (Sim/Não) é obrigatório quando há paciente envolvido.")
	}
	check.require(input.NotifiedDepartment != "", "Setor Notificado é obrigatório.")
	if err := check.err(); err != nil {
		return nil, err
	}

	n := &entity.Notification{
		Title:                         input.Title,
		Description:                   input.Description,
		Location:                      input.Location,
		OccurrenceDate:                input.OccurrenceDate,
		OccurrenceTime:                input.OccurrenceTime,
		ReportingDepartment:           input.ReportingDepartment,
		ReportingDepartmentComplement: input.ReportingDepartmentComplement,
		NotifiedDepartment:            input.NotifiedDepartment,
		NotifiedDepartmentComplement:  input.NotifiedDepartmentComplement,
		EventShift:                    input.EventShift,
		ImmediateActionsTaken:         input.ImmediateActionsTaken,
		ImmediateActionDescription:    input.ImmediateActionDescription,
		PatientInvolved:               input.PatientInvolved,
		PatientID:                     input.PatientID,
		PatientOutcomeDeath:           input.PatientOutcomeDeath,
		AdditionalNotes:               input.AdditionalNotes,
		CreatedAt:                     s.now(),
		Status:                        workflow.StatePendingClassification,
		Executors:                     []int64{},
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.notifRepo.Create(txCtx, n); err != nil {
			return fmt.Errorf("create notification: %w", err)
		}

		for _, upload := range input.Attachments {
			uniqueName, err := s.storage.Save(txCtx, n.ID, upload.OriginalName, upload.Content)
			if err != nil {
				return fmt.Errorf("store attachment %s: %w", upload.OriginalName, err)
			}
			att := &entity.Attachment{
				NotificationID: n.ID,
				UniqueName:     uniqueName,
				OriginalName:   upload.OriginalName,
				CreatedAt:      s.now(),
			}
			if err := s.attachmentRepo.Create(txCtx, att); err != nil {
				return fmt.Errorf("create attachment record: %w", err)
			}
		}

		history := &entity.HistoryEntry{
			NotificationID: n.ID,
			Action:         "Notificação criada",
			PerformedBy:    actorName,
			Timestamp:      s.now(),
			Details:        fmt.Sprintf("Notificação registrada pelo setor %s.", input.ReportingDepartment),
		}
		if err := s.historyRepo.Create(txCtx, history); err != nil {
			return fmt.Errorf("create history: %w", err)
		}

		return nil
	})
	if err != nil {
		s.logger.Error("Failed to create notification", "error", err)
		return nil, err
	}

	s.logger.Info("Notification created", "id", n.ID, "reporting_department", input.ReportingDepartment)
	return n, nil
}

func (s *intakeServiceImpl) Get(ctx context.Context, id int64) (*entity.Notification, error) {
	n, err := s.notifRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, fmt.Errorf("notification %d: %w", id, ErrNotFound)
	}
	return n, nil
}

func (s *intakeServiceImpl) List(ctx context.Context, filter port.NotificationFilter) ([]*entity.Notification, error) {
	return s.notifRepo.List(ctx, filter)
}

func (s *intakeServiceImpl) GetHistory(ctx context.Context, id int64) ([]*entity.HistoryEntry, error) {
	return s.historyRepo.GetByNotificationID(ctx, id)
}

func (s *intakeServiceImpl) GetAttachments(ctx context.Context, id int64) ([]*entity.Attachment, error) {
	return s.attachmentRepo.GetByNotificationID(ctx, id)
}

func (s *intakeServiceImpl) ReadAttachment(ctx context.Context, uniqueName string) ([]byte, *entity.Attachment, error) {
	att, err := s.attachmentRepo.GetByUniqueName(ctx, uniqueName)
	if err != nil {
		return nil, nil, err
	}
	if att == nil {
		return nil, nil, fmt.Errorf("attachment %s: %w", uniqueName, ErrNotFound)
	}
	content, err := s.storage.Read(ctx, uniqueName)
	if err != nil {
		return nil, nil, fmt.Errorf("read attachment %s: %w", uniqueName, err)
	}
	return content, att, nil
}

func validDate(s string) bool {
	if s == "" {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
