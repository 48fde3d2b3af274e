// Package repository provides data persistence implementations for identity entities.
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

// PostgreSQLApplicationRepository handles application persistence for PostgreSQL.
type PostgreSQLApplicationRepository struct {
	db *sql.DB
}

// NewPostgreSQLApplicationRepository creates a new PostgreSQLApplicationRepository.
func NewPostgreSQLApplicationRepository(db *sql.DB) *PostgreSQLApplicationRepository {
	return &PostgreSQLApplicationRepository{db: db}
}

// Create inserts a new application registration.
func (r *PostgreSQLApplicationRepository) Create(
	ctx context.Context,
	app *identityDomain.Application,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO applications (id, name, secret_hash, is_active, created_at)
			  VALUES ($1, $2, $3, $4, $5)`

	_, err := querier.ExecContext(
		ctx,
		query,
		app.ID,
		app.Name,
		app.SecretHash,
		app.IsActive,
		app.CreatedAt,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "application already exists")
		}
		return apperrors.Wrap(err, "failed to create application")
	}
	return nil
}

// GetByID retrieves an application by its identifier.
func (r *PostgreSQLApplicationRepository) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*identityDomain.Application, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, secret_hash, is_active, created_at
			  FROM applications WHERE id = $1`

	var app identityDomain.Application
	err := querier.QueryRowContext(ctx, query, id).Scan(
		&app.ID,
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

	return &app, nil
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
