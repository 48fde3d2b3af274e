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

// MySQLPermissionRepository handles permission persistence for MySQL.
type MySQLPermissionRepository struct {
	db *sql.DB
}

// NewMySQLPermissionRepository creates a new MySQLPermissionRepository.
func NewMySQLPermissionRepository(db *sql.DB) *MySQLPermissionRepository {
	return &MySQLPermissionRepository{db: db}
}

// Get retrieves the permission row for one subject on one secret.
func (r *MySQLPermissionRepository) Get(
	ctx context.Context,
	secretName string,
	subjectType identityDomain.SubjectType,
	subjectID string,
) (*permissionDomain.SubjectPermissions, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT secret_name, subject_type, subject_id, subject_name, mask
			  FROM subject_permissions
			  WHERE secret_name = ? AND subject_type = ? AND subject_id = ?`

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
// subject has no permissions on the secret yet.
func (r *MySQLPermissionRepository) Grant(
	ctx context.Context,
	perm *permissionDomain.SubjectPermissions,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO subject_permissions (secret_name, subject_type, subject_id, subject_name, mask)
			  VALUES (?, ?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE mask = mask | VALUES(mask),
									  subject_name = VALUES(subject_name)`

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
func (r *MySQLPermissionRepository) Revoke(
	ctx context.Context,
	secretName string,
	subjectType identityDomain.SubjectType,
	subjectID string,
	bits permissionDomain.Mask,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE subject_permissions SET mask = mask & ~?
			  WHERE secret_name = ? AND subject_type = ? AND subject_id = ?`

	if _, err := querier.ExecContext(ctx, query, bits, secretName, subjectType, subjectID); err != nil {
		return apperrors.Wrap(err, "failed to revoke permission")
	}

	cleanup := `DELETE FROM subject_permissions
				WHERE secret_name = ? AND subject_type = ? AND subject_id = ? AND mask = 0`

	if _, err := querier.ExecContext(ctx, cleanup, secretName, subjectType, subjectID); err != nil {
		return apperrors.Wrap(err, "failed to remove empty permission")
	}
	return nil
}

// ListBySecret retrieves every permission row on one secret.
func (r *MySQLPermissionRepository) ListBySecret(
	ctx context.Context,
	secretName string,
) ([]*permissionDomain.SubjectPermissions, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT secret_name, subject_type, subject_id, subject_name, mask
			  FROM subject_permissions
			  WHERE secret_name = ?
			  ORDER BY subject_type, subject_id`

	rows, err := querier.QueryContext(ctx, query, secretName)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list permissions")
	}
	defer rows.Close()

	return scanPermissions(rows)
}

// ListBySubject retrieves every permission row held by one subject.
func (r *MySQLPermissionRepository) ListBySubject(
	ctx context.Context,
	subjectType identityDomain.SubjectType,
	subjectID string,
) ([]*permissionDomain.SubjectPermissions, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT secret_name, subject_type, subject_id, subject_name, mask
			  FROM subject_permissions
			  WHERE subject_type = ? AND subject_id = ?
			  ORDER BY secret_name`

	rows, err := querier.QueryContext(ctx, query, subjectType, subjectID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list permissions")
	}
	defer rows.Close()

	return scanPermissions(rows)
}

// DeleteBySecret removes every permission row on one secret.
func (r *MySQLPermissionRepository) DeleteBySecret(ctx context.Context, secretName string) error {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM subject_permissions WHERE secret_name = ?`

	if _, err := querier.ExecContext(ctx, query, secretName); err != nil {
		return apperrors.Wrap(err, "failed to delete permissions")
	}
	return nil
}
