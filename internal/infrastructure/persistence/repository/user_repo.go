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
	"github.com/hsvida/incident-workflow/internal/infrastructure/persistence/sqlite"
)

// UserRepository implements port.UserRepository
type UserRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, logger *zap.Logger) port.UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new user. Roles are stored as a JSON array.
func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	rolesJSON, err := json.Marshal(u.Roles)
	if err != nil {
		return fmt.Errorf("failed to marshal roles: %w", err)
	}

	query := `
		INSERT INTO users (username, name, email, roles, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		u.Username, u.Name, u.Email, string(rolesJSON), u.Active, u.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create user", zap.String("username", u.Username), zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	u.ID = id
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	return r.getOne(ctx, `WHERE id = ?`, id)
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.getOne(ctx, `WHERE username = ?`, username)
}

// GetByIDs retrieves the users matching the given ids
func (r *UserRepository) GetByIDs(ctx context.Context, ids []int64) ([]*entity.User, error) {
	if len(ids) == 0 {
		return []*entity.User{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := `
		SELECT id, username, name, email, roles, active, created_at
		FROM users
		WHERE id IN (` + placeholders + `)
		ORDER BY id
	`
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	return r.queryUsers(ctx, query, args...)
}

// ListActive retrieves all active users
func (r *UserRepository) ListActive(ctx context.Context) ([]*entity.User, error) {
	query := `
		SELECT id, username, name, email, roles, active, created_at
		FROM users
		WHERE active = 1
		ORDER BY name
	`
	return r.queryUsers(ctx, query)
}

func (r *UserRepository) getOne(ctx context.Context, where string, arg interface{}) (*entity.User, error) {
	query := `
		SELECT id, username, name, email, roles, active, created_at
		FROM users ` + where

	var u entity.User
	var email sql.NullString
	var rolesJSON string

	err := r.getExecutor(ctx).QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Username, &u.Name, &email, &rolesJSON, &u.Active, &u.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get user", zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	u.Email = email.String
	if err := json.Unmarshal([]byte(rolesJSON), &u.Roles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal roles: %w", err)
	}

	return &u, nil
}

func (r *UserRepository) queryUsers(ctx context.Context, query string, args ...interface{}) ([]*entity.User, error) {
	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query users", zap.Error(err))
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*entity.User
	for rows.Next() {
		var u entity.User
		var email sql.NullString
		var rolesJSON string

		err := rows.Scan(&u.ID, &u.Username, &u.Name, &email, &rolesJSON, &u.Active, &u.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}

		u.Email = email.String
		if err := json.Unmarshal([]byte(rolesJSON), &u.Roles); err != nil {
			return nil, fmt.Errorf("failed to unmarshal roles: %w", err)
		}

		users = append(users, &u)
	}

	return users, rows.Err()
}

// getExecutor returns appropriate executor based on context
func (r *UserRepository) getExecutor(ctx context.Context) executor {
	if tx := sqlite.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// Verify interface compliance
var _ port.UserRepository = (*UserRepository)(nil)
