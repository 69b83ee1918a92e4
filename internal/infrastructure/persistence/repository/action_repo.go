package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/hsvida/incident-workflow/internal/application/port"
	"github.com/hsvida/incident-workflow/internal/domain/entity"
	"github.com/hsvida/incident-workflow/internal/infrastructure/persistence/sqlite"
)

// ActionRepository implements port.ActionRepository
type ActionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewActionRepository creates a new action repository
func NewActionRepository(db *sql.DB, logger *zap.Logger) port.ActionRepository {
	return &ActionRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends an action entry
func (r *ActionRepository) Create(ctx context.Context, action *entity.ActionEntry) error {
	var evidenceAttachments sql.NullString
	if len(action.EvidenceAttachments) > 0 {
		raw, err := json.Marshal(action.EvidenceAttachments)
		if err != nil {
			return fmt.Errorf("failed to marshal evidence attachments: %w", err)
		}
		evidenceAttachments = sql.NullString{String: string(raw), Valid: true}
	}

	query := `
		INSERT INTO notification_actions (
			notification_id, executor_id, executor_name, description,
			timestamp, final_action_by_executor, evidence_description, evidence_attachments
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		action.NotificationID,
		action.ExecutorID,
		action.ExecutorName,
		action.Description,
		action.Timestamp,
		action.FinalActionByExecutor,
		action.EvidenceDescription,
		evidenceAttachments,
	)
	if err != nil {
		r.logger.Error("Failed to create action", zap.Error(err))
		return fmt.Errorf("failed to create action: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	action.ID = id
	return nil
}

// GetByNotificationID retrieves all actions for a notification in log order
func (r *ActionRepository) GetByNotificationID(ctx context.Context, notificationID int64) ([]*entity.ActionEntry, error) {
	query := `
		SELECT id, notification_id, executor_id, executor_name, description,
			timestamp, final_action_by_executor, evidence_description, evidence_attachments
		FROM notification_actions
		WHERE notification_id = ?
		ORDER BY id
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, notificationID)
	if err != nil {
		r.logger.Error("Failed to get actions", zap.Int64("notification_id", notificationID), zap.Error(err))
		return nil, fmt.Errorf("failed to get actions: %w", err)
	}
	defer rows.Close()

	var actions []*entity.ActionEntry
	for rows.Next() {
		var action entity.ActionEntry
		var evidenceDescription, evidenceAttachments sql.NullString

		err := rows.Scan(
			&action.ID,
			&action.NotificationID,
			&action.ExecutorID,
			&action.ExecutorName,
			&action.Description,
			&action.Timestamp,
			&action.FinalActionByExecutor,
			&evidenceDescription,
			&evidenceAttachments,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan action: %w", err)
		}

		action.EvidenceDescription = evidenceDescription.String
		if evidenceAttachments.Valid {
			if err := json.Unmarshal([]byte(evidenceAttachments.String), &action.EvidenceAttachments); err != nil {
				return nil, fmt.Errorf("failed to unmarshal evidence attachments: %w", err)
			}
		}

		actions = append(actions, &action)
	}

	return actions, rows.Err()
}

// GetFinalizedExecutors returns the distinct executor ids that logged a final
// action on the notification.
func (r *ActionRepository) GetFinalizedExecutors(ctx context.Context, notificationID int64) ([]int64, error) {
	query := `
		SELECT DISTINCT executor_id
		FROM notification_actions
		WHERE notification_id = ? AND final_action_by_executor = 1
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, notificationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get finalized executors: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan executor id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// getExecutor returns appropriate executor based on context
func (r *ActionRepository) getExecutor(ctx context.Context) executor {
	if tx := sqlite.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// Verify interface compliance
var _ port.ActionRepository = (*ActionRepository)(nil)
