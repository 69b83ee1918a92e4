package port

import (
	"context"

	"github.com/hsvida/incident-workflow/internal/domain/entity"
	"github.com/hsvida/incident-workflow/internal/domain/workflow"
)

// NotificationFilter narrows List queries. Zero values mean "no filter".
type NotificationFilter struct {
	Status     workflow.State
	ExecutorID int64
	ApproverID int64
	Limit      int
	Offset     int
}

// NotificationRepository defines persistence operations for Notification
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	GetByID(ctx context.Context, id int64) (*entity.Notification, error)
	List(ctx context.Context, filter NotificationFilter) ([]*entity.Notification, error)

	// Update persists the full lifecycle portion of the notification: status,
	// assignments and every sub-record. Intake fields are never rewritten.
	Update(ctx context.Context, n *entity.Notification) error

	// UpdateStatusFrom moves the status only when the stored row still holds
	// fromStatus, reporting false when another writer got there first.
	UpdateStatusFrom(ctx context.Context, id int64, from, to workflow.State) (bool, error)

	CountByStatus(ctx context.Context) (map[workflow.State]int, error)
}

// ActionRepository defines persistence operations for ActionEntry
type ActionRepository interface {
	Create(ctx context.Context, action *entity.ActionEntry) error
	GetByNotificationID(ctx context.Context, notificationID int64) ([]*entity.ActionEntry, error)

	// GetFinalizedExecutors returns the executor IDs that have logged a final
	// action on the notification.
	GetFinalizedExecutors(ctx context.Context, notificationID int64) ([]int64, error)
}

// HistoryRepository defines persistence operations for HistoryEntry
type HistoryRepository interface {
	Create(ctx context.Context, h *entity.HistoryEntry) error
	GetByNotificationID(ctx context.Context, notificationID int64) ([]*entity.HistoryEntry, error)
}

// AttachmentRepository defines persistence operations for Attachment
type AttachmentRepository interface {
	Create(ctx context.Context, att *entity.Attachment) error
	GetByNotificationID(ctx context.Context, notificationID int64) ([]*entity.Attachment, error)
	GetByUniqueName(ctx context.Context, uniqueName string) (*entity.Attachment, error)
}

// UserRepository defines persistence operations for User
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*entity.User, error)
	ListActive(ctx context.Context) ([]*entity.User, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
