// Package repository implements data persistence for secret objects, their
// content items and chunk records. Repositories support both PostgreSQL and
// MySQL; ticket and status transitions are single guarded statements checked
// via RowsAffected.
package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/yury-opolev/safeexchange-sub000/internal/database"
	apperrors "github.com/yury-opolev/safeexchange-sub000/internal/errors"
	identityDomain "github.com/yury-opolev/safeexchange-sub000/internal/identity/domain"
	secretDomain "github.com/yury-opolev/safeexchange-sub000/internal/secret/domain"
)

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isPostgreSQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	message := err.Error()
	return strings.Contains(message, "duplicate key") || strings.Contains(message, "23505")
}

// PostgreSQLMetadataRepository implements secret object persistence for PostgreSQL databases.
type PostgreSQLMetadataRepository struct {
	db *sql.DB
}

// NewPostgreSQLMetadataRepository creates a new PostgreSQL metadata repository.
func NewPostgreSQLMetadataRepository(db *sql.DB) *PostgreSQLMetadataRepository {
	return &PostgreSQLMetadataRepository{db: db}
}

// Create inserts a new secret object into the PostgreSQL database.
func (p *PostgreSQLMetadataRepository) Create(ctx context.Context, obj *secretDomain.ObjectMetadata) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO secret_objects
			  (name, description, created_by_type, created_by_id, created_by_name,
			   updated_by_type, updated_by_id, updated_by_name,
			   main_content_name, keep_in_storage,
			   schedule_expiration, expire_at, expire_on_idle, idle_expire_seconds,
			   created_at, updated_at, last_accessed_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

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
		if isPostgreSQLUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "secret already exists")
		}
		return apperrors.Wrap(err, "failed to create secret object")
	}
	return nil
}

// Get retrieves a secret object by name.
func (p *PostgreSQLMetadataRepository) Get(ctx context.Context, name string) (*secretDomain.ObjectMetadata, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT name, description, created_by_type, created_by_id, created_by_name,
					 updated_by_type, updated_by_id, updated_by_name,
					 main_content_name, keep_in_storage,
					 schedule_expiration, expire_at, expire_on_idle, idle_expire_seconds,
					 created_at, updated_at, last_accessed_at
			  FROM secret_objects
			  WHERE name = $1`

	return scanObjectMetadata(querier.QueryRowContext(ctx, query, name))
}

// Update persists description, updater identity and expiration settings.
func (p *PostgreSQLMetadataRepository) Update(ctx context.Context, obj *secretDomain.ObjectMetadata) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE secret_objects
			  SET description = $2,
				  updated_by_type = $3, updated_by_id = $4, updated_by_name = $5,
				  schedule_expiration = $6, expire_at = $7, expire_on_idle = $8, idle_expire_seconds = $9,
				  updated_at = $10
			  WHERE name = $1`

	result, err := querier.ExecContext(
		ctx,
		query,
		obj.ObjectName,
		obj.Description,
		obj.UpdatedBy.Type,
		obj.UpdatedBy.ID,
		obj.UpdatedBy.DisplayName,
		obj.Expiration.ScheduleExpiration,
		nullableTime(obj.Expiration.ExpireAt),
		obj.Expiration.ExpireOnIdleTime,
		int64(obj.Expiration.IdleTimeToExpire/time.Second),
		obj.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update secret object")
	}
	return requireRowAffected(result, apperrors.ErrNotFound, "secret not found")
}

// Touch stamps the last access time of a secret object.
func (p *PostgreSQLMetadataRepository) Touch(ctx context.Context, name string, at time.Time) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE secret_objects SET last_accessed_at = $2 WHERE name = $1`

	result, err := querier.ExecContext(ctx, query, name, at)
	if err != nil {
		return apperrors.Wrap(err, "failed to touch secret object")
	}
	return requireRowAffected(result, apperrors.ErrNotFound, "secret not found")
}

// Delete removes a secret object row.
func (p *PostgreSQLMetadataRepository) Delete(ctx context.Context, name string) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM secret_objects WHERE name = $1`

	result, err := querier.ExecContext(ctx, query, name)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete secret object")
	}
	return requireRowAffected(result, apperrors.ErrNotFound, "secret not found")
}

// ListExpired returns names of secrets whose expiration condition holds at
// the given moment, oldest first.
func (p *PostgreSQLMetadataRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]string, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT name
			  FROM secret_objects
			  WHERE (schedule_expiration AND expire_at <= $1)
				 OR (expire_on_idle AND last_accessed_at + make_interval(secs => idle_expire_seconds) <= $1)
			  ORDER BY last_accessed_at
			  LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, now, limit)
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

// rowScanner abstracts sql.Row and sql.Rows for shared scan helpers.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanObjectMetadata scans one secret object row.
func scanObjectMetadata(row rowScanner) (*secretDomain.ObjectMetadata, error) {
	var (
		obj         secretDomain.ObjectMetadata
		createdBy   identityDomain.Subject
		updatedBy   identityDomain.Subject
		expireAt    sql.NullTime
		idleSeconds int64
	)
	err := row.Scan(
		&obj.ObjectName,
		&obj.Description,
		&createdBy.Type,
		&createdBy.ID,
		&createdBy.DisplayName,
		&updatedBy.Type,
		&updatedBy.ID,
		&updatedBy.DisplayName,
		&obj.MainContentName,
		&obj.KeepInStorage,
		&obj.Expiration.ScheduleExpiration,
		&expireAt,
		&obj.Expiration.ExpireOnIdleTime,
		&idleSeconds,
		&obj.CreatedAt,
		&obj.UpdatedAt,
		&obj.LastAccessedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "secret not found")
		}
		return nil, apperrors.Wrap(err, "failed to scan secret object")
	}

	obj.CreatedBy = createdBy
	obj.UpdatedBy = updatedBy
	if expireAt.Valid {
		obj.Expiration.ExpireAt = expireAt.Time
	}
	obj.Expiration.IdleTimeToExpire = time.Duration(idleSeconds) * time.Second
	return &obj, nil
}

// nullableTime maps the zero time to NULL.
func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

// requireRowAffected maps a zero-row result to the given sentinel.
func requireRowAffected(result sql.Result, sentinel error, message string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to check rows affected")
	}
	if affected == 0 {
		return apperrors.Wrap(sentinel, message)
	}
	return nil
}
