package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/yury-opolev/safeexchange-sub000/internal/database"
	apperrors "github.com/yury-opolev/safeexchange-sub000/internal/errors"
	secretDomain "github.com/yury-opolev/safeexchange-sub000/internal/secret/domain"
)

// isMySQLUniqueViolation checks if the error is a MySQL unique constraint violation.
func isMySQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "duplicate entry") || strings.Contains(message, "1062")
}

// MySQLMetadataRepository implements secret object persistence for MySQL databases.
type MySQLMetadataRepository struct {
	db *sql.DB
}

// NewMySQLMetadataRepository creates a new MySQL metadata repository.
func NewMySQLMetadataRepository(db *sql.DB) *MySQLMetadataRepository {
	return &MySQLMetadataRepository{db: db}
}

// Create inserts a new secret object into the MySQL database.
func (m *MySQLMetadataRepository) Create(ctx context.Context, obj *secretDomain.ObjectMetadata) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO secret_objects
			  (name, description, created_by_type, created_by_id, created_by_name,
			   updated_by_type, updated_by_id, updated_by_name,
			   main_content_name, keep_in_storage,
			   schedule_expiration, expire_at, expire_on_idle, idle_expire_seconds,
			   created_at, updated_at, last_accessed_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		obj.ObjectName,
		obj.Description,
		obj.CreatedBy.Type,
		obj.CreatedBy.ID,
		obj.CreatedBy.DisplayName,
		obj.UpdatedBy.Type,
		obj.UpdatedBy.ID,
		obj.UpdatedBy.DisplayName,
		obj.MainContentName,
		obj.KeepInStorage,
		obj.Expiration.ScheduleExpiration,
		nullableTime(obj.Expiration.ExpireAt),
		obj.Expiration.ExpireOnIdleTime,
		int64(obj.Expiration.IdleTimeToExpire/time.Second),
		obj.CreatedAt,
		obj.UpdatedAt,
		obj.LastAccessedAt,
	)
	if err != nil {
		if isMySQLUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "secret already exists")
		}
		return apperrors.Wrap(err, "failed to create secret object")
	}
	return nil
}

// Get retrieves a secret object by name.
func (m *MySQLMetadataRepository) Get(ctx context.Context, name string) (*secretDomain.ObjectMetadata, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT name, description, created_by_type, created_by_id, created_by_name,
					 updated_by_type, updated_by_id, updated_by_name,
					 main_content_name, keep_in_storage,
					 schedule_expiration, expire_at, expire_on_idle, idle_expire_seconds,
					 created_at, updated_at, last_accessed_at
			  FROM secret_objects
			  WHERE name = ?`

	return scanObjectMetadata(querier.QueryRowContext(ctx, query, name))
}

// Update persists description, updater identity and expiration settings.
func (m *MySQLMetadataRepository) Update(ctx context.Context, obj *secretDomain.ObjectMetadata) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE secret_objects
			  SET description = ?,
				  updated_by_type = ?, updated_by_id = ?, updated_by_name = ?,
				  schedule_expiration = ?, expire_at = ?, expire_on_idle = ?, idle_expire_seconds = ?,
				  updated_at = ?
			  WHERE name = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		obj.Description,
		obj.UpdatedBy.Type,
		obj.UpdatedBy.ID,
		obj.UpdatedBy.DisplayName,
		obj.Expiration.ScheduleExpiration,
		nullableTime(obj.Expiration.ExpireAt),
		obj.Expiration.ExpireOnIdleTime,
		int64(obj.Expiration.IdleTimeToExpire/time.Second),
		obj.UpdatedAt,
		obj.ObjectName,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update secret object")
	}
	return requireRowAffected(result, apperrors.ErrNotFound, "secret not found")
}

// Touch stamps the last access time of a secret object.
func (m *MySQLMetadataRepository) Touch(ctx context.Context, name string, at time.Time) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE secret_objects SET last_accessed_at = ? WHERE name = ?`

	result, err := querier.ExecContext(ctx, query, at, name)
	if err != nil {
		return apperrors.Wrap(err, "failed to touch secret object")
	}
	return requireRowAffected(result, apperrors.ErrNotFound, "secret not found")
}

// Delete removes a secret object row.
func (m *MySQLMetadataRepository) Delete(ctx context.Context, name string) error {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM secret_objects WHERE name = ?`

	result, err := querier.ExecContext(ctx, query, name)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete secret object")
	}
	return requireRowAffected(result, apperrors.ErrNotFound, "secret not found")
}

// ListExpired returns names of secrets whose expiration condition holds at
// the given moment, oldest first.
func (m *MySQLMetadataRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]string, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT name
			  FROM secret_objects
			  WHERE (schedule_expiration AND expire_at <= ?)
				 OR (expire_on_idle AND DATE_ADD(last_accessed_at, INTERVAL idle_expire_seconds SECOND) <= ?)
			  ORDER BY last_accessed_at
			  LIMIT ?`

	rows, err := querier.QueryContext(ctx, query, now, now, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list expired secrets")
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan expired secret name")
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate expired secrets")
	}
	return names, nil
}
