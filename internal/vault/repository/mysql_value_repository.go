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

func isMySQLUniqueViolation(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "duplicate entry")
}

// MySQLValueRepository implements VaultValue persistence for MySQL databases.
type MySQLValueRepository struct {
	db *sql.DB
}

// NewMySQLValueRepository creates a new MySQL value repository.
func NewMySQLValueRepository(db *sql.DB) *MySQLValueRepository {
	return &MySQLValueRepository{db: db}
}

// Create inserts a new value version. A concurrent writer landing on the same
// version surfaces as ErrConflict.
func (m *MySQLValueRepository) Create(ctx context.Context, value *vaultDomain.VaultValue) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO vault_values (id, secret_name, version, ciphertext, created_at, deleted_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

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
		if isMySQLUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "value version already exists")
		}
		return apperrors.Wrap(err, "failed to create vault value")
	}
	return nil
}

// GetLatest retrieves the latest non-deleted version of a secret's value.
func (m *MySQLValueRepository) GetLatest(
	ctx context.Context,
	secretName string,
) (*vaultDomain.VaultValue, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, secret_name, version, ciphertext, created_at, deleted_at
			  FROM vault_values
			  WHERE secret_name = ? AND deleted_at IS NULL
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
func (m *MySQLValueRepository) GetByVersion(
	ctx context.Context,
	secretName string,
	version uint,
) (*vaultDomain.VaultValue, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, secret_name, version, ciphertext, created_at, deleted_at
			  FROM vault_values
			  WHERE secret_name = ? AND version = ? AND deleted_at IS NULL
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
func (m *MySQLValueRepository) SoftDelete(ctx context.Context, secretName string, at time.Time) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE vault_values SET deleted_at = ? WHERE secret_name = ? AND deleted_at IS NULL`

	if _, err := querier.ExecContext(ctx, query, at, secretName); err != nil {
		return apperrors.Wrap(err, "failed to soft delete vault values")
	}
	return nil
}

// Purge physically removes every version of a secret's value.
func (m *MySQLValueRepository) Purge(ctx context.Context, secretName string) error {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM vault_values WHERE secret_name = ?`

	if _, err := querier.ExecContext(ctx, query, secretName); err != nil {
		return apperrors.Wrap(err, "failed to purge vault values")
	}
	return nil
}

// ListSoftDeletedBefore returns names of secrets whose values were soft-deleted
// at or before the threshold.
func (m *MySQLValueRepository) ListSoftDeletedBefore(
	ctx context.Context,
	threshold time.Time,
	limit int,
) ([]string, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT DISTINCT secret_name
			  FROM vault_values
			  WHERE deleted_at IS NOT NULL AND deleted_at <= ?
			  LIMIT ?`

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
