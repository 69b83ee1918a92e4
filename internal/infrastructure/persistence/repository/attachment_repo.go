package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/hsvida/incident-workflow/internal/application/port"
	"github.com/hsvida/incident-workflow/internal/domain/entity"
	"github.com/hsvida/incident-workflow/internal/infrastructure/persistence/sqlite"
)

// AttachmentRepository implements port.AttachmentRepository
type AttachmentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAttachmentRepository creates a new attachment repository
func NewAttachmentRepository(db *sql.DB, logger *zap.Logger) port.AttachmentRepository {
	return &AttachmentRepository{
		db:     db,
		logger: logger,
	}
}

// Create records an attachment reference
func (r *AttachmentRepository) Create(ctx context.Context, att *entity.Attachment) error {
	query := `
		INSERT INTO notification_attachments (
			notification_id, unique_name, original_name, created_at
		) VALUES (?, ?, ?, ?)
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		att.NotificationID,
		att.UniqueName,
		att.OriginalName,
		att.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create attachment", zap.Error(err))
		return fmt.Errorf("failed to create attachment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	att.ID = id
	return nil
}

// GetByNotificationID retrieves all attachments for a notification
func (r *AttachmentRepository) GetByNotificationID(ctx context.Context, notificationID int64) ([]*entity.Attachment, error) {
	query := `
		SELECT id, notification_id, unique_name, original_name, created_at
		FROM notification_attachments
		WHERE notification_id = ?
		ORDER BY id
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, notificationID)
	if err != nil {
		r.logger.Error("Failed to get attachments", zap.Int64("notification_id", notificationID), zap.Error(err))
		return nil, fmt.Errorf("failed to get attachments: %w", err)
	}
	defer rows.Close()

	var attachments []*entity.Attachment
	for rows.Next() {
		var att entity.Attachment
		err := rows.Scan(&att.ID, &att.NotificationID, &att.UniqueName, &att.OriginalName, &att.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		attachments = append(attachments, &att)
	}

	return attachments, rows.Err()
}

// GetByUniqueName retrieves an attachment by its on-disk name
func (r *AttachmentRepository) GetByUniqueName(ctx context.Context, uniqueName string) (*entity.Attachment, error) {
	query := `
		SELECT id, notification_id, unique_name, original_name, created_at
		FROM notification_attachments
		WHERE unique_name = ?
	`

	var att entity.Attachment
	err := r.getExecutor(ctx).QueryRowContext(ctx, query, uniqueName).Scan(
		&att.ID, &att.NotificationID, &att.UniqueName, &att.OriginalName, &att.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get attachment", zap.String("unique_name", uniqueName), zap.Error(err))
		return nil, fmt.Errorf("failed to get attachment: %w", err)
	}

	return &att, nil
}

// getExecutor returns appropriate executor based on context
func (r *AttachmentRepository) getExecutor(ctx context.Context) executor {
	if tx := sqlite.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// Verify interface compliance
var _ port.AttachmentRepository = (*AttachmentRepository)(nil)
