// Package repository provides data persistence implementations for access requests.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	accessrequestDomain "github.com/yury-opolev/safeexchange-sub000/internal/accessrequest/domain"
	"github.com/yury-opolev/safeexchange-sub000/internal/database"
	apperrors "github.com/yury-opolev/safeexchange-sub000/internal/errors"
	identityDomain "github.com/yury-opolev/safeexchange-sub000/internal/identity/domain"
)

// PostgreSQLAccessRequestRepository handles access request persistence for PostgreSQL.
type PostgreSQLAccessRequestRepository struct {
	db *sql.DB
}

// NewPostgreSQLAccessRequestRepository creates a new PostgreSQLAccessRequestRepository.
func NewPostgreSQLAccessRequestRepository(db *sql.DB) *PostgreSQLAccessRequestRepository {
	return &PostgreSQLAccessRequestRepository{db: db}
}

// Create inserts an access request together with its frozen recipient
// snapshot. Callers wrap this in a transaction so the rows land atomically.
func (r *PostgreSQLAccessRequestRepository) Create(
	ctx context.Context,
	req *accessrequestDomain.AccessRequest,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO access_requests
			  (id, secret_name, subject_type, subject_id, subject_name, permission, status, requested_at, finished_by, finished_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, '', NULL)`

	_, err := querier.ExecContext(
		ctx,
		query,
		req.ID,
		req.SecretName,
		req.SubjectType,
		req.SubjectID,
		req.SubjectName,
		req.Permission,
		req.Status,
		req.RequestedAt,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "identical request already in flight")
		}
		return apperrors.Wrap(err, "failed to create access request")
	}

	recipientQuery := `INSERT INTO access_request_recipients
					   (request_id, subject_type, subject_id, subject_name)
					   VALUES ($1, $2, $3, $4)`
	for _, recipient := range req.Recipients {
		_, err := querier.ExecContext(
			ctx,
			recipientQuery,
			req.ID,
			recipient.SubjectType,
			recipient.SubjectID,
			recipient.SubjectName,
		)
		if err != nil {
			return apperrors.Wrap(err, "failed to create access request recipient")
		}
	}

	return nil
}

// GetByID retrieves an access request with its recipient snapshot.
func (r *PostgreSQLAccessRequestRepository) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*accessrequestDomain.AccessRequest, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, secret_name, subject_type, subject_id, subject_name, permission, status, requested_at, finished_by, finished_at
			  FROM access_requests WHERE id = $1`

	req, err := scanAccessRequest(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}

	recipients, err := r.loadRecipients(ctx, querier, id)
	if err != nil {
		return nil, err
	}
	req.Recipients = recipients

	return req, nil
}

// FindInFlight retrieves the in-progress request from one subject on one
// secret, if any. The in-flight unique index admits at most one such row
// whatever its permission bits, so no permission filter is applied here.
func (r *PostgreSQLAccessRequestRepository) FindInFlight(
	ctx context.Context,
	secretName string,
	subjectType identityDomain.SubjectType,
	subjectID string,
) (*accessrequestDomain.AccessRequest, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, secret_name, subject_type, subject_id, subject_name, permission, status, requested_at, finished_by, finished_at
			  FROM access_requests
			  WHERE secret_name = $1 AND subject_type = $2 AND subject_id = $3
				AND status = $4`

	req, err := scanAccessRequest(querier.QueryRowContext(
		ctx, query, secretName, subjectType, subjectID, accessrequestDomain.StatusInProgress,
	))
	if err != nil {
		return nil, err
	}

	recipients, err := r.loadRecipients(ctx, querier, req.ID)
	if err != nil {
		return nil, err
	}
	req.Recipients = recipients

	return req, nil
}

// Finish moves an in-progress request to a terminal status, stamping who
// resolved it and when. Returns ErrConflict when the request was already
// resolved by a concurrent call.
func (r *PostgreSQLAccessRequestRepository) Finish(
	ctx context.Context,
	id uuid.UUID,
	status accessrequestDomain.Status,
	finishedBy string,
	finishedAt time.Time,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE access_requests SET status = $2, finished_by = $3, finished_at = $4
			  WHERE id = $1 AND status = $5`

	result, err := querier.ExecContext(ctx, query, id, status, finishedBy, finishedAt, accessrequestDomain.StatusInProgress)
	if err != nil {
		return apperrors.Wrap(err, "failed to finish access request")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to finish access request")
	}
	if rows == 0 {
		return apperrors.Wrap(apperrors.ErrConflict, "access request already resolved")
	}
	return nil
}

// DeleteInProgress removes an in-progress request entirely (requester
// cancellation). Returns ErrConflict when the request has been resolved.
func (r *PostgreSQLAccessRequestRepository) DeleteInProgress(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM access_requests WHERE id = $1 AND status = $2`

	result, err := querier.ExecContext(ctx, query, id, accessrequestDomain.StatusInProgress)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete access request")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to delete access request")
	}
	if rows == 0 {
		return apperrors.Wrap(apperrors.ErrConflict, "access request already resolved")
	}
	return nil
}

// ListBySubject retrieves the subject's outgoing requests (any status) and
// the in-progress requests where the subject appears in the frozen recipient
// snapshot.
func (r *PostgreSQLAccessRequestRepository) ListBySubject(
	ctx context.Context,
	subjectType identityDomain.SubjectType,
	subjectID string,
) (outgoing, incoming []*accessrequestDomain.AccessRequest, err error) {
	querier := database.GetTx(ctx, r.db)

	outgoingQuery := `SELECT id, secret_name, subject_type, subject_id, subject_name, permission, status, requested_at, finished_by, finished_at
					  FROM access_requests
					  WHERE subject_type = $1 AND subject_id = $2
					  ORDER BY requested_at DESC`

	outgoing, err = r.queryRequests(ctx, querier, outgoingQuery, subjectType, subjectID)
	if err != nil {
		return nil, nil, err
	}

	incomingQuery := `SELECT ar.id, ar.secret_name, ar.subject_type, ar.subject_id, ar.subject_name, ar.permission, ar.status, ar.requested_at, ar.finished_by, ar.finished_at
					  FROM access_requests ar
					  JOIN access_request_recipients arr ON arr.request_id = ar.id
					  WHERE arr.subject_type = $1 AND arr.subject_id = $2 AND ar.status = $3
					  ORDER BY ar.requested_at DESC`

	incoming, err = r.queryRequests(ctx, querier, incomingQuery, subjectType, subjectID, accessrequestDomain.StatusInProgress)
	if err != nil {
		return nil, nil, err
	}

	return outgoing, incoming, nil
}

// DeleteBySecret removes every access request (and, via cascade, recipient
// rows) on one secret.
func (r *PostgreSQLAccessRequestRepository) DeleteBySecret(ctx context.Context, secretName string) error {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM access_requests WHERE secret_name = $1`

	if _, err := querier.ExecContext(ctx, query, secretName); err != nil {
		return apperrors.Wrap(err, "failed to delete access requests")
	}
	return nil
}

func (r *PostgreSQLAccessRequestRepository) loadRecipients(
	ctx context.Context,
	querier database.Querier,
	requestID uuid.UUID,
) ([]accessrequestDomain.Recipient, error) {
	query := `SELECT request_id, subject_type, subject_id, subject_name
			  FROM access_request_recipients
			  WHERE request_id = $1
			  ORDER BY subject_type, subject_id`

	rows, err := querier.QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list access request recipients")
	}
	defer rows.Close()

	var recipients []accessrequestDomain.Recipient
	for rows.Next() {
		var recipient accessrequestDomain.Recipient
		err := rows.Scan(
			&recipient.RequestID,
			&recipient.SubjectType,
			&recipient.SubjectID,
			&recipient.SubjectName,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan access request recipient")
		}
		recipients = append(recipients, recipient)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate access request recipients")
	}
	return recipients, nil
}

func (r *PostgreSQLAccessRequestRepository) queryRequests(
	ctx context.Context,
	querier database.Querier,
	query string,
	args ...any,
) ([]*accessrequestDomain.AccessRequest, error) {
	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list access requests")
	}
	defer rows.Close()

	var requests []*accessrequestDomain.AccessRequest
	for rows.Next() {
		req, err := scanAccessRequestRow(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate access requests")
	}

	for _, req := range requests {
		recipients, err := r.loadRecipients(ctx, querier, req.ID)
		if err != nil {
			return nil, err
		}
		req.Recipients = recipients
	}

	return requests, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isPostgreSQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// PostgreSQL: "duplicate key value violates unique constraint" (SQLSTATE 23505)
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "23505")
}

func scanAccessRequestInto(scanner rowScanner) (*accessrequestDomain.AccessRequest, error) {
	var req accessrequestDomain.AccessRequest
	err := scanner.Scan(
		&req.ID,
		&req.SecretName,
		&req.SubjectType,
		&req.SubjectID,
		&req.SubjectName,
		&req.Permission,
		&req.Status,
		&req.RequestedAt,
		&req.FinishedBy,
		&req.FinishedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func scanAccessRequest(row *sql.Row) (*accessrequestDomain.AccessRequest, error) {
	req, err := scanAccessRequestInto(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get access request")
	}
	return req, nil
}

func scanAccessRequestRow(rows *sql.Rows) (*accessrequestDomain.AccessRequest, error) {
	req, err := scanAccessRequestInto(rows)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to scan access request")
	}
	return req, nil
}
