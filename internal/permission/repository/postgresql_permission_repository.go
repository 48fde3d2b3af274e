// Package repository provides data persistence implementations for subject permissions.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/yury-opolev/safeexchange-sub000/internal/database"
	apperrors "github.com/yury-opolev/safeexchange-sub000/internal/errors"
	identityDomain "github.com/yury-opolev/safeexchange-sub000/internal/identity/domain"
	permissionDomain "github.com/yury-opolev/safeexchange-sub000/internal/permission/domain"
)

// PostgreSQLPermissionRepository handles permission persistence for PostgreSQL.
type PostgreSQLPermissionRepository struct {
	db *sql.DB
}

// NewPostgreSQLPermissionRepository creates a new PostgreSQLPermissionRepository.
func NewPostgreSQLPermissionRepository(db *sql.DB) *PostgreSQLPermissionRepository {
	return &PostgreSQLPermissionRepository{db: db}
}

// Get retrieves the permission row for one subject on one secret.
func (r *PostgreSQLPermissionRepository) Get(
	ctx context.Context,
	secretName string,
	subjectType identityDomain.SubjectType,
	subjectID string,
) (*permissionDomain.SubjectPermissions, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT secret_name, subject_type, subject_id, subject_name, mask
			  FROM subject_permissions
			  WHERE secret_name = $1 AND subject_type = $2 AND subject_id = $3`

	var perm permissionDomain.SubjectPermissions
	err := querier.QueryRowContext(ctx, query, secretName, subjectType, subjectID).Scan(
		&perm.SecretName,
		&perm.SubjectType,
		&perm.SubjectID,
		&perm.SubjectName,
		&perm.Mask,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get permission")
	}

	return &perm, nil
}

// Grant ORs the given bits into the subject's mask, creating the row when the
// subject has no permissions on the secret yet. The merge happens inside a
// single statement so concurrent grants on the same row never lose bits.
func (r *PostgreSQLPermissionRepository) Grant(
	ctx context.Context,
	perm *permissionDomain.SubjectPermissions,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO subject_permissions (secret_name, subject_type, subject_id, subject_name, mask)
			  VALUES ($1, $2, $3, $4, $5)
			  ON CONFLICT (secret_name, subject_type, subject_id)
			  DO UPDATE SET mask = subject_permissions.mask | EXCLUDED.mask,
							subject_name = EXCLUDED.subject_name`

	_, err := querier.ExecContext(
		ctx,
		query,
		perm.SecretName,
		perm.SubjectType,
		perm.SubjectID,
		perm.SubjectName,
		perm.Mask,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to grant permission")
	}
	return nil
}

// Revoke clears the given bits from the subject's mask and removes the row
// when nothing remains. A subject with no row is a no-op.
func (r *PostgreSQLPermissionRepository) Revoke(
	ctx context.Context,
	secretName string,
	subjectType identityDomain.SubjectType,
	subjectID string,
	bits permissionDomain.Mask,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE subject_permissions SET mask = mask & ~$4
			  WHERE secret_name = $1 AND subject_type = $2 AND subject_id = $3`

	if _, err := querier.ExecContext(ctx, query, secretName, subjectType, subjectID, bits); err != nil {
		return apperrors.Wrap(err, "failed to revoke permission")
	}

	cleanup := `DELETE FROM subject_permissions
				WHERE secret_name = $1 AND subject_type = $2 AND subject_id = $3 AND mask = 0`

	if _, err := querier.ExecContext(ctx, cleanup, secretName, subjectType, subjectID); err != nil {
		return apperrors.Wrap(err, "failed to remove empty permission")
	}
	return nil
}

// ListBySecret retrieves every permission row on one secret.
func (r *PostgreSQLPermissionRepository) ListBySecret(
	ctx context.Context,
	secretName string,
) ([]*permissionDomain.SubjectPermissions, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT secret_name, subject_type, subject_id, subject_name, mask
			  FROM subject_permissions
			  WHERE secret_name = $1
			  ORDER BY subject_type, subject_id`

	rows, err := querier.QueryContext(ctx, query, secretName)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list permissions")
	}
	defer rows.Close()

	return scanPermissions(rows)
}

// ListBySubject retrieves every permission row held by one subject.
func (r *PostgreSQLPermissionRepository) ListBySubject(
	ctx context.Context,
	subjectType identityDomain.SubjectType,
	subjectID string,
) ([]*permissionDomain.SubjectPermissions, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT secret_name, subject_type, subject_id, subject_name, mask
			  FROM subject_permissions
			  WHERE subject_type = $1 AND subject_id = $2
			  ORDER BY secret_name`

	rows, err := querier.QueryContext(ctx, query, subjectType, subjectID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list permissions")
	}
	defer rows.Close()

	return scanPermissions(rows)
}

// DeleteBySecret removes every permission row on one secret.
func (r *PostgreSQLPermissionRepository) DeleteBySecret(ctx context.Context, secretName string) error {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM subject_permissions WHERE secret_name = $1`

	if _, err := querier.ExecContext(ctx, query, secretName); err != nil {
		return apperrors.Wrap(err, "failed to delete permissions")
	}
	return nil
}

func scanPermissions(rows *sql.Rows) ([]*permissionDomain.SubjectPermissions, error) {
	var perms []*permissionDomain.SubjectPermissions
	for rows.Next() {
		var perm permissionDomain.SubjectPermissions
		err := rows.Scan(
			&perm.SecretName,
			&perm.SubjectType,
			&perm.SubjectID,
			&perm.SubjectName,
			&perm.Mask,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan permission")
		}
		perms = append(perms, &perm)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate permissions")
	}
	return perms, nil
}
