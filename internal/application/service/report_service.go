package service

import (
	"context"
	"fmt"
	"time"

	"github.com/hsvida/incident-workflow/internal/application/port"
	"github.com/hsvida/incident-workflow/internal/domain/deadline"
	"github.com/hsvida/incident-workflow/internal/domain/entity"
	"github.com/hsvida/incident-workflow/internal/domain/workflow"
)

// Dashboard aggregates the register for the management overview.
type Dashboard struct {
	Total                 int                    `json:"total"`
	PendingClassification int                    `json:"pending_classification"`
	InProgress            int                    `json:"in_progress"`
	Completed             int                    `json:"completed"`
	Rejected              int                    `json:"rejected"`
	ByStatus              map[workflow.State]int `json:"by_status"`
	ByMonth               map[string]int         `json:"by_month"`
	DeadlineSummary       map[deadline.Label]int `json:"deadline_summary"`
}

var inProgressStates = map[workflow.State]bool{
	workflow.StateClassified:         true,
	workflow.StateInExecution:        true,
	workflow.StateAwaitingClassifier: true,
	workflow.StateAwaitingApproval:   true,
	workflow.StateExecutionReview:    true,
}

var completedStates = map[workflow.State]bool{
	workflow.StateApproved:  true,
	workflow.StateConcluded: true,
}

var rejectedStates = map[workflow.State]bool{
	workflow.StateRejected: true,
	workflow.StateReproved: true,
}

// ReportService produces the management dashboard and register extracts
type ReportService interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
	Register(ctx context.Context) ([]*entity.Notification, error)
}

type reportServiceImpl struct {
	notifRepo port.NotificationRepository
	logger    Logger
	now       func() time.Time
}

// NewReportService creates a new ReportService
func NewReportService(notifRepo port.NotificationRepository, logger Logger) ReportService {
	return &reportServiceImpl{
		notifRepo: notifRepo,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *reportServiceImpl) Dashboard(ctx context.Context) (*Dashboard, error) {
	notifications, err := s.notifRepo.List(ctx, port.NotificationFilter{})
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	d := &Dashboard{
		ByStatus:        make(map[workflow.State]int),
		ByMonth:         make(map[string]int),
		DeadlineSummary: make(map[deadline.Label]int),
	}
	today := s.now()

	for _, n := range notifications {
		d.Total++
		d.ByStatus[n.Status]++
		d.ByMonth[n.CreatedAt.Format("2006-01")]++

		switch {
		case n.Status == workflow.StatePendingClassification:
			d.PendingClassification++
		case inProgressStates[n.Status]:
			d.InProgress++
		case completedStates[n.Status]:
			d.Completed++
		case rejectedStates[n.Status]:
			d.Rejected++
		}

		// Deadline position only matters while the notification is open.
		if n.Classification != nil && !n.Status.IsTerminal() {
			status := deadline.Evaluate(n.Classification.DeadlineDate, nil, today)
			d.DeadlineSummary[status.Label]++
		}
	}

	return d, nil
}

func (s *reportServiceImpl) Register(ctx context.Context) ([]*entity.Notification, error) {
	return s.notifRepo.List(ctx, port.NotificationFilter{})
}
