package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsvida/incident-workflow/internal/application/port"
	"github.com/hsvida/incident-workflow/internal/domain/deadline"
	"github.com/hsvida/incident-workflow/internal/domain/entity"
	"github.com/hsvida/incident-workflow/internal/domain/workflow"
)

func reportNotification(id int64, status workflow.State, createdAt time.Time, deadlineDate string) *entity.Notification {
	n := pendingNotification(id)
	n.Status = status
	n.CreatedAt = createdAt
	if deadlineDate != "" {
		n.Classification = &entity.Classification{NNC: entity.NNCEventNoHarm, DeadlineDate: deadlineDate}
	}
	return n
}

func TestReportService_Dashboard(t *testing.T) {
	jan := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC)

	notifications := []*entity.Notification{
		reportNotification(1, workflow.StatePendingClassification, jan, ""),
		reportNotification(2, workflow.StateClassified, jan, "2025-02-20"),
		reportNotification(3, workflow.StateInExecution, feb, "2025-02-05"),
		reportNotification(4, workflow.StateAwaitingApproval, feb, "2025-03-20"),
		reportNotification(5, workflow.StateApproved, feb, "2025-02-10"),
		reportNotification(6, workflow.StateConcluded, jan, ""),
		reportNotification(7, workflow.StateRejected, jan, ""),
		reportNotification(8, workflow.StateReproved, feb, ""),
	}

	notifRepo := &mockNotifRepo{
		listFunc: func(ctx context.Context, filter port.NotificationFilter) ([]*entity.Notification, error) {
			return notifications, nil
		},
	}
	svc := NewReportService(notifRepo, &mockLogger{})
	svc.(*reportServiceImpl).now = func() time.Time {
		return time.Date(2025, 2, 10, 12, 0, 0, 0, time.UTC)
	}

	d, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 8, d.Total)
	assert.Equal(t, 1, d.PendingClassification)
	assert.Equal(t, 3, d.InProgress)
	assert.Equal(t, 2, d.Completed)
	assert.Equal(t, 2, d.Rejected)

	assert.Equal(t, 4, d.ByMonth["2025-01"])
	assert.Equal(t, 4, d.ByMonth["2025-02"])
	assert.Equal(t, 1, d.ByStatus[workflow.StateClassified])

	// Open classified notifications: #2 due in 10 days (on track), #3 five
	// days past due, #4 well ahead. Terminal ones are excluded.
	assert.Equal(t, 2, d.DeadlineSummary[deadline.LabelOnTrack])
	assert.Equal(t, 1, d.DeadlineSummary[deadline.LabelOverdue])
}
