package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/yury-opolev/safeexchange-sub000/internal/database"
	apperrors "github.com/yury-opolev/safeexchange-sub000/internal/errors"
	identityDomain "github.com/yury-opolev/safeexchange-sub000/internal/identity/domain"
)

// MySQLApplicationRepository handles application persistence for MySQL.
type MySQLApplicationRepository struct {
	db *sql.DB
}

// NewMySQLApplicationRepository creates a new MySQLApplicationRepository.
func NewMySQLApplicationRepository(db *sql.DB) *MySQLApplicationRepository {
	return &MySQLApplicationRepository{db: db}
}

// Create inserts a new application registration.
func (r *MySQLApplicationRepository) Create(
	ctx context.Context,
	app *identityDomain.Application,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO applications (id, name, secret_hash, is_active, created_at)
			  VALUES (?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		app.ID.String(),
		app.Name,
		app.SecretHash,
		app.IsActive,
		app.CreatedAt,
	)
	if err != nil {
		if isMySQLUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "application already exists")
		}
		return apperrors.Wrap(err, "failed to create application")
	}
	return nil
}

// GetByID retrieves an application by its identifier.
func (r *MySQLApplicationRepository) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*identityDomain.Application, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, secret_hash, is_active, created_at
			  FROM applications WHERE id = ?`

	var app identityDomain.Application
	var idStr string
	err := querier.QueryRowContext(ctx, query, id.String()).Scan(
		&idStr,
		&app.Name,
		&app.SecretHash,
		&app.IsActive,
		&app.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get application")
	}

	parsed, err := uuid.Parse(idStr)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to parse application id")
	}
	app.ID = parsed

	return &app, nil
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
