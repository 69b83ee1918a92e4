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

// HistoryRepository implements port.HistoryRepository
type HistoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *sql.DB, logger *zap.Logger) port.HistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends an audit-trail entry. History is append-only; there is no
// update or delete path.
func (r *HistoryRepository) Create(ctx context.Context, h *entity.HistoryEntry) error {
	query := `
		INSERT INTO notification_history (
			notification_id, action, performed_by, timestamp, details
		) VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		h.NotificationID,
		h.Action,
		h.PerformedBy,
		h.Timestamp,
		h.Details,
	)
	if err != nil {
		r.logger.Error("Failed to create history entry", zap.Error(err))
		return fmt.Errorf("failed to create history entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	h.ID = id
	return nil
}

// GetByNotificationID retrieves the audit trail in chronological order
func (r *HistoryRepository) GetByNotificationID(ctx context.Context, notificationID int64) ([]*entity.HistoryEntry, error) {
	query := `
		SELECT id, notification_id, action, performed_by, timestamp, details
		FROM notification_history
		WHERE notification_id = ?
		ORDER BY id
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, notificationID)
	if err != nil {
		r.logger.Error("Failed to get history", zap.Int64("notification_id", notificationID), zap.Error(err))
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var entries []*entity.HistoryEntry
	for rows.Next() {
		var entry entity.HistoryEntry
		var details sql.NullString

		err := rows.Scan(
			&entry.ID,
			&entry.NotificationID,
			&entry.Action,
			&entry.PerformedBy,
			&entry.Timestamp,
			&details,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}

		entry.Details = details.String
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

// getExecutor returns appropriate executor based on context
func (r *HistoryRepository) getExecutor(ctx context.Context) executor {
	if tx := sqlite.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// Verify interface compliance
var _ port.HistoryRepository = (*HistoryRepository)(nil)
