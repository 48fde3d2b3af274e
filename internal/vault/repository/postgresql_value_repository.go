// Package repository implements persistence for legacy vault values.
// Repositories support both PostgreSQL and MySQL with automatic versioning
// and soft deletion.
package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/yury-opolev/safeexchange-sub000/internal/database"
	apperrors "github.com/yury-opolev/safeexchange-sub000/internal/errors"
	vaultDomain "github.com/yury-opolev/safeexchange-sub000/internal/vault/domain"
)

func isPostgreSQLUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate key")
}

// PostgreSQLValueRepository implements VaultValue persistence for PostgreSQL databases.
type PostgreSQLValueRepository struct {
	db *sql.DB
}

// NewPostgreSQLValueRepository creates a new PostgreSQL value repository.
func NewPostgreSQLValueRepository(db *sql.DB) *PostgreSQLValueRepository {
	return &PostgreSQLValueRepository{db: db}
}

// Create inserts a new value version. A concurrent writer landing on the same
// version surfaces as ErrConflict.
func (p *PostgreSQLValueRepository) Create(ctx context.Context, value *vaultDomain.VaultValue) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO vault_values (id, secret_name, version, ciphertext, created_at, deleted_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := querier.ExecContext(
		ctx,
		query,
		value.ID,
		value.SecretName,
		value.Version,
		value.Ciphertext,
		value.CreatedAt,
		value.DeletedAt,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "value version already exists")
		}
		return apperrors.Wrap(err, "failed to create vault value")
	}
	return nil
}

// GetLatest retrieves the latest non-deleted version of a secret's value.
func (p *PostgreSQLValueRepository) GetLatest(
	ctx context.Context,
	secretName string,
) (*vaultDomain.VaultValue, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, secret_name, version, ciphertext, created_at, deleted_at
			  FROM vault_values
			  WHERE secret_name = $1 AND deleted_at IS NULL
			  ORDER BY version DESC
			  LIMIT 1`

	var value vaultDomain.VaultValue
	err := querier.QueryRowContext(ctx, query, secretName).Scan(
		&value.ID,
		&value.SecretName,
		&value.Version,
		&value.Ciphertext,
		&value.CreatedAt,
		&value.DeletedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get latest vault value")
	}

	return &value, nil
}

// GetByVersion retrieves a specific non-deleted version of a secret's value.
func (p *PostgreSQLValueRepository) GetByVersion(
	ctx context.Context,
	secretName string,
	version uint,
) (*vaultDomain.VaultValue, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, secret_name, version, ciphertext, created_at, deleted_at
			  FROM vault_values
			  WHERE secret_name = $1 AND version = $2 AND deleted_at IS NULL
			  LIMIT 1`

	var value vaultDomain.VaultValue
	err := querier.QueryRowContext(ctx, query, secretName, version).Scan(
		&value.ID,
		&value.SecretName,
		&value.Version,
		&value.Ciphertext,
		&value.CreatedAt,
		&value.DeletedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get vault value by version")
	}

	return &value, nil
}

// SoftDelete marks every active version of a secret's value as deleted.
func (p *PostgreSQLValueRepository) SoftDelete(ctx context.Context, secretName string, at time.Time) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE vault_values SET deleted_at = $2 WHERE secret_name = $1 AND deleted_at IS NULL`

	if _, err := querier.ExecContext(ctx, query, secretName, at); err != nil {
		return apperrors.Wrap(err, "failed to soft delete vault values")
	}
	return nil
}

// Purge physically removes every version of a secret's value.
func (p *PostgreSQLValueRepository) Purge(ctx context.Context, secretName string) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM vault_values WHERE secret_name = $1`

	if _, err := querier.ExecContext(ctx, query, secretName); err != nil {
		return apperrors.Wrap(err, "failed to purge vault values")
	}
	return nil
}

// ListSoftDeletedBefore returns names of secrets whose values were soft-deleted
// at or before the threshold.
func (p *PostgreSQLValueRepository) ListSoftDeletedBefore(
	ctx context.Context,
	threshold time.Time,
	limit int,
) ([]string, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT DISTINCT secret_name
			  FROM vault_values
			  WHERE deleted_at IS NOT NULL AND deleted_at <= $1
			  LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, threshold, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list soft deleted vault values")
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan vault value row")
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate vault value rows")
	}

	return names, nil
}
