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

// MySQLAccessRequestRepository handles access request persistence for MySQL.
type MySQLAccessRequestRepository struct {
	db *sql.DB
}

// NewMySQLAccessRequestRepository creates a new MySQLAccessRequestRepository.
func NewMySQLAccessRequestRepository(db *sql.DB) *MySQLAccessRequestRepository {
	return &MySQLAccessRequestRepository{db: db}
}

// Create inserts an access request together with its frozen recipient
// snapshot. Callers wrap this in a transaction so the rows land atomically.
func (r *MySQLAccessRequestRepository) Create(
	ctx context.Context,
	req *accessrequestDomain.AccessRequest,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO access_requests
			  (id, secret_name, subject_type, subject_id, subject_name, permission, status, requested_at, finished_by, finished_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, '', NULL)`

	_, err := querier.ExecContext(
		ctx,
		query,
		req.ID.String(),
		req.SecretName,
		req.SubjectType,
		req.SubjectID,
		req.SubjectName,
		req.Permission,
		req.Status,
		req.RequestedAt,
	)
	if err != nil {
		if isMySQLUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "identical request already in flight")
		}
		return apperrors.Wrap(err, "failed to create access request")
	}

	recipientQuery := `INSERT INTO access_request_recipients
					   (request_id, subject_type, subject_id, subject_name)
					   VALUES (?, ?, ?, ?)`
	for _, recipient := range req.Recipients {
		_, err := querier.ExecContext(
			ctx,
			recipientQuery,
			req.ID.String(),
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
func (r *MySQLAccessRequestRepository) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*accessrequestDomain.AccessRequest, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, secret_name, subject_type, subject_id, subject_name, permission, status, requested_at, finished_by, finished_at
			  FROM access_requests WHERE id = ?`

	req, err := scanMySQLAccessRequest(querier.QueryRowContext(ctx, query, id.String()))
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

// FindInFlight retrieves the in-progress request from one subject on one
// secret, if any. The in-flight unique key admits at most one such row
// whatever its permission bits, so no permission filter is applied here.
func (r *MySQLAccessRequestRepository) FindInFlight(
	ctx context.Context,
	secretName string,
	subjectType identityDomain.SubjectType,
	subjectID string,
) (*accessrequestDomain.AccessRequest, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, secret_name, subject_type, subject_id, subject_name, permission, status, requested_at, finished_by, finished_at
			  FROM access_requests
			  WHERE secret_name = ? AND subject_type = ? AND subject_id = ?
				AND status = ?`

	req, err := scanMySQLAccessRequest(querier.QueryRowContext(
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
func (r *MySQLAccessRequestRepository) Finish(
	ctx context.Context,
	id uuid.UUID,
	status accessrequestDomain.Status,
	finishedBy string,
	finishedAt time.Time,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE access_requests SET status = ?, finished_by = ?, finished_at = ?
			  WHERE id = ? AND status = ?`

	result, err := querier.ExecContext(ctx, query, status, finishedBy, finishedAt, id.String(), accessrequestDomain.StatusInProgress)
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
func (r *MySQLAccessRequestRepository) DeleteInProgress(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM access_requests WHERE id = ? AND status = ?`

	result, err := querier.ExecContext(ctx, query, id.String(), accessrequestDomain.StatusInProgress)
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
func (r *MySQLAccessRequestRepository) ListBySubject(
	ctx context.Context,
	subjectType identityDomain.SubjectType,
	subjectID string,
) (outgoing, incoming []*accessrequestDomain.AccessRequest, err error) {
	querier := database.GetTx(ctx, r.db)

	outgoingQuery := `SELECT id, secret_name, subject_type, subject_id, subject_name, permission, status, requested_at, finished_by, finished_at
					  FROM access_requests
					  WHERE subject_type = ? AND subject_id = ?
					  ORDER BY requested_at DESC`

	outgoing, err = r.queryRequests(ctx, querier, outgoingQuery, subjectType, subjectID)
	if err != nil {
		return nil, nil, err
	}

	incomingQuery := `SELECT ar.id, ar.secret_name, ar.subject_type, ar.subject_id, ar.subject_name, ar.permission, ar.status, ar.requested_at, ar.finished_by, ar.finished_at
					  FROM access_requests ar
					  JOIN access_request_recipients arr ON arr.request_id = ar.id
					  WHERE arr.subject_type = ? AND arr.subject_id = ? AND ar.status = ?
					  ORDER BY ar.requested_at DESC`

	incoming, err = r.queryRequests(ctx, querier, incomingQuery, subjectType, subjectID, accessrequestDomain.StatusInProgress)
	if err != nil {
		return nil, nil, err
	}

	return outgoing, incoming, nil
}

// DeleteBySecret removes every access request (and, via cascade, recipient
// rows) on one secret.
func (r *MySQLAccessRequestRepository) DeleteBySecret(ctx context.Context, secretName string) error {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM access_requests WHERE secret_name = ?`

	if _, err := querier.ExecContext(ctx, query, secretName); err != nil {
		return apperrors.Wrap(err, "failed to delete access requests")
	}
	return nil
}

func (r *MySQLAccessRequestRepository) loadRecipients(
	ctx context.Context,
	querier database.Querier,
	requestID uuid.UUID,
) ([]accessrequestDomain.Recipient, error) {
	query := `SELECT request_id, subject_type, subject_id, subject_name
			  FROM access_request_recipients
			  WHERE request_id = ?
			  ORDER BY subject_type, subject_id`

	rows, err := querier.QueryContext(ctx, query, requestID.String())
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list access request recipients")
	}
	defer rows.Close()

	var recipients []accessrequestDomain.Recipient
	for rows.Next() {
		var recipient accessrequestDomain.Recipient
		var idStr string
		err := rows.Scan(
			&idStr,
			&recipient.SubjectType,
			&recipient.SubjectID,
			&recipient.SubjectName,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan access request recipient")
		}
		parsed, err := uuid.Parse(idStr)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to parse access request id")
		}
		recipient.RequestID = parsed
		recipients = append(recipients, recipient)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate access request recipients")
	}
	return recipients, nil
}

func (r *MySQLAccessRequestRepository) queryRequests(
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
		req, err := scanMySQLAccessRequestInto(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan access request")
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

// isMySQLUniqueViolation checks if the error is a MySQL unique constraint violation.
func isMySQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// MySQL: "Error 1062: Duplicate entry"
	return strings.Contains(errMsg, "duplicate entry") || strings.Contains(errMsg, "1062")
}

func scanMySQLAccessRequestInto(scanner rowScanner) (*accessrequestDomain.AccessRequest, error) {
	var req accessrequestDomain.AccessRequest
	var idStr string
	err := scanner.Scan(
		&idStr,
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

	parsed, err := uuid.Parse(idStr)
	if err != nil {
		return nil, err
	}
	req.ID = parsed

	return &req, nil
}

func scanMySQLAccessRequest(row *sql.Row) (*accessrequestDomain.AccessRequest, error) {
	req, err := scanMySQLAccessRequestInto(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get access request")
	}
	return req, nil
}
