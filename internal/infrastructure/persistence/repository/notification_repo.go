package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hsvida/incident-workflow/internal/application/port"
	"github.com/hsvida/incident-workflow/internal/domain/entity"
	"github.com/hsvida/incident-workflow/internal/domain/workflow"
	"github.com/hsvida/incident-workflow/internal/infrastructure/persistence/sqlite"
)

// NotificationRepository implements port.NotificationRepository
type NotificationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *sql.DB, logger *zap.Logger) port.NotificationRepository {
	return &NotificationRepository{
		db:     db,
		logger: logger,
	}
}

const notificationColumns = `
	id, title, description, location, occurrence_date, occurrence_time,
	reporting_department, reporting_department_complement,
	notified_department, notified_department_complement,
	event_shift, immediate_actions_taken, immediate_action_description,
	patient_involved, patient_id, patient_outcome_death, additional_notes,
	created_at, status, executors, approver,
	classification, rejection_classification, review_execution,
	approval, rejection_approval, rejection_execution_review, conclusion`

// Create inserts a new notification row. Sub-records are stored as JSON so
// one row always carries the full lifecycle snapshot.
func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	cols, err := marshalLifecycle(n)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO notifications (
			title, description, location, occurrence_date, occurrence_time,
			reporting_department, reporting_department_complement,
			notified_department, notified_department_complement,
			event_shift, immediate_actions_taken, immediate_action_description,
			patient_involved, patient_id, patient_outcome_death, additional_notes,
			created_at, status, executors, approver,
			classification, rejection_classification, review_execution,
			approval, rejection_approval, rejection_execution_review, conclusion
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		n.Title, n.Description, n.Location, n.OccurrenceDate, n.OccurrenceTime,
		n.ReportingDepartment, n.ReportingDepartmentComplement,
		n.NotifiedDepartment, n.NotifiedDepartmentComplement,
		n.EventShift, n.ImmediateActionsTaken, n.ImmediateActionDescription,
		n.PatientInvolved, n.PatientID, nullableBool(n.PatientOutcomeDeath), n.AdditionalNotes,
		n.CreatedAt, string(n.Status), cols.executors, nullableInt64(n.Approver),
		cols.classification, cols.rejectionClassification, cols.reviewExecution,
		cols.approval, cols.rejectionApproval, cols.rejectionExecutionReview, cols.conclusion,
	)
	if err != nil {
		r.logger.Error("Failed to create notification", zap.Error(err))
		return fmt.Errorf("failed to create notification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	n.ID = id
	return nil
}

// GetByID retrieves a notification by ID
func (r *NotificationRepository) GetByID(ctx context.Context, id int64) (*entity.Notification, error) {
	query := `SELECT` + notificationColumns + ` FROM notifications WHERE id = ?`

	n, err := r.scanNotification(r.getExecutor(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get notification by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return n, nil
}

// List retrieves notifications matching the filter, newest first.
func (r *NotificationRepository) List(ctx context.Context, filter port.NotificationFilter) ([]*entity.Notification, error) {
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.ExecutorID != 0 {
		// executors is a JSON array of user ids
		conditions = append(conditions, "EXISTS (SELECT 1 FROM json_each(notifications.executors) WHERE json_each.value = ?)")
		args = append(args, filter.ExecutorID)
	}
	if filter.ApproverID != 0 {
		conditions = append(conditions, "approver = ?")
		args = append(args, filter.ApproverID)
	}

	query := `SELECT` + notificationColumns + ` FROM notifications`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list notifications", zap.Error(err))
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*entity.Notification
	for rows.Next() {
		n, err := r.scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

// Update rewrites the lifecycle portion of the row. Intake columns are never
// touched after creation.
func (r *NotificationRepository) Update(ctx context.Context, n *entity.Notification) error {
	cols, err := marshalLifecycle(n)
	if err != nil {
		return err
	}

	query := `
		UPDATE notifications SET
			status = ?,
			notified_department = ?,
			notified_department_complement = ?,
			executors = ?,
			approver = ?,
			classification = ?,
			rejection_classification = ?,
			review_execution = ?,
			approval = ?,
			rejection_approval = ?,
			rejection_execution_review = ?,
			conclusion = ?
		WHERE id = ?
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		string(n.Status),
		n.NotifiedDepartment, n.NotifiedDepartmentComplement,
		cols.executors, nullableInt64(n.Approver),
		cols.classification, cols.rejectionClassification, cols.reviewExecution,
		cols.approval, cols.rejectionApproval, cols.rejectionExecutionReview, cols.conclusion,
		n.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update notification", zap.Int64("id", n.ID), zap.Error(err))
		return fmt.Errorf("failed to update notification: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("notification %d not found", n.ID)
	}
	return nil
}

// UpdateStatusFrom moves the status only when the row still holds fromStatus.
// The single-statement guard narrows the window between two racing writers.
func (r *NotificationRepository) UpdateStatusFrom(ctx context.Context, id int64, from, to workflow.State) (bool, error) {
	query := `UPDATE notifications SET status = ? WHERE id = ? AND status = ?`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query, string(to), id, string(from))
	if err != nil {
		r.logger.Error("Failed to update notification status", zap.Int64("id", id), zap.Error(err))
		return false, fmt.Errorf("failed to update status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected > 0, nil
}

// CountByStatus returns the number of notifications per status.
func (r *NotificationRepository) CountByStatus(ctx context.Context) (map[workflow.State]int, error) {
	query := `SELECT status, COUNT(*) FROM notifications GROUP BY status`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}
	defer rows.Close()

	counts := make(map[workflow.State]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[workflow.State(status)] = count
	}

	return counts, rows.Err()
}

// lifecycleColumns holds the JSON-serialized mutable portion of a row.
type lifecycleColumns struct {
	executors                string
	classification           sql.NullString
	rejectionClassification  sql.NullString
	reviewExecution          sql.NullString
	approval                 sql.NullString
	rejectionApproval        sql.NullString
	rejectionExecutionReview sql.NullString
	conclusion               sql.NullString
}

func marshalLifecycle(n *entity.Notification) (*lifecycleColumns, error) {
	executors := n.Executors
	if executors == nil {
		executors = []int64{}
	}
	executorsJSON, err := json.Marshal(executors)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal executors: %w", err)
	}

	cols := &lifecycleColumns{executors: string(executorsJSON)}
	for _, field := range []struct {
		dst   *sql.NullString
		value interface{}
		isNil bool
	}{
		{&cols.classification, n.Classification, n.Classification == nil},
		{&cols.rejectionClassification, n.RejectionClassification, n.RejectionClassification == nil},
		{&cols.reviewExecution, n.ReviewExecution, n.ReviewExecution == nil},
		{&cols.approval, n.Approval, n.Approval == nil},
		{&cols.rejectionApproval, n.RejectionApproval, n.RejectionApproval == nil},
		{&cols.rejectionExecutionReview, n.RejectionExecutionReview, n.RejectionExecutionReview == nil},
		{&cols.conclusion, n.Conclusion, n.Conclusion == nil},
	} {
		if field.isNil {
			continue
		}
		raw, err := json.Marshal(field.value)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal sub-record: %w", err)
		}
		*field.dst = sql.NullString{String: string(raw), Valid: true}
	}
	return cols, nil
}

// rowScanner covers *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *NotificationRepository) scanNotification(row rowScanner) (*entity.Notification, error) {
	var n entity.Notification
	var occurrenceTime, reportingComplement, notifiedComplement sql.NullString
	var immediateDescription, patientID, additionalNotes sql.NullString
	var patientOutcomeDeath sql.NullBool
	var approver sql.NullInt64
	var status, executorsJSON string
	var cols lifecycleColumns

	err := row.Scan(
		&n.ID, &n.Title, &n.Description, &n.Location, &n.OccurrenceDate, &occurrenceTime,
		&n.ReportingDepartment, &reportingComplement,
		&n.NotifiedDepartment, &notifiedComplement,
		&n.EventShift, &n.ImmediateActionsTaken, &immediateDescription,
		&n.PatientInvolved, &patientID, &patientOutcomeDeath, &additionalNotes,
		&n.CreatedAt, &status, &executorsJSON, &approver,
		&cols.classification, &cols.rejectionClassification, &cols.reviewExecution,
		&cols.approval, &cols.rejectionApproval, &cols.rejectionExecutionReview, &cols.conclusion,
	)
	if err != nil {
		return nil, err
	}

	n.OccurrenceTime = occurrenceTime.String
	n.ReportingDepartmentComplement = reportingComplement.String
	n.NotifiedDepartmentComplement = notifiedComplement.String
	n.ImmediateActionDescription = immediateDescription.String
	n.PatientID = patientID.String
	n.AdditionalNotes = additionalNotes.String
	if patientOutcomeDeath.Valid {
		n.PatientOutcomeDeath = &patientOutcomeDeath.Bool
	}
	n.Status = workflow.State(status)
	if approver.Valid {
		n.Approver = &approver.Int64
	}

	if err := json.Unmarshal([]byte(executorsJSON), &n.Executors); err != nil {
		return nil, fmt.Errorf("failed to unmarshal executors: %w", err)
	}

	for _, field := range []struct {
		src sql.NullString
		dst interface{}
	}{
		{cols.classification, &n.Classification},
		{cols.rejectionClassification, &n.RejectionClassification},
		{cols.reviewExecution, &n.ReviewExecution},
		{cols.approval, &n.Approval},
		{cols.rejectionApproval, &n.RejectionApproval},
		{cols.rejectionExecutionReview, &n.RejectionExecutionReview},
		{cols.conclusion, &n.Conclusion},
	} {
		if !field.src.Valid {
			continue
		}
		if err := json.Unmarshal([]byte(field.src.String), field.dst); err != nil {
			return nil, fmt.Errorf("failed to unmarshal sub-record: %w", err)
		}
	}

	return &n, nil
}

func nullableInt64(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullableBool(v *bool) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// getExecutor returns appropriate executor based on context
func (r *NotificationRepository) getExecutor(ctx context.Context) executor {
	if tx := sqlite.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// executor interface covers both *sql.DB and *sql.Tx
type executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Verify interface compliance
var _ port.NotificationRepository = (*NotificationRepository)(nil)
