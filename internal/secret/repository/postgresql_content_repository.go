package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/yury-opolev/safeexchange-sub000/internal/database"
	apperrors "github.com/yury-opolev/safeexchange-sub000/internal/errors"
	secretDomain "github.com/yury-opolev/safeexchange-sub000/internal/secret/domain"
)

// PostgreSQLContentRepository implements content and chunk persistence for
// PostgreSQL databases. Ticket transitions are compare-and-swap updates
// guarded on the stored ticket value.
type PostgreSQLContentRepository struct {
	db *sql.DB
}

// NewPostgreSQLContentRepository creates a new PostgreSQL content repository.
func NewPostgreSQLContentRepository(db *sql.DB) *PostgreSQLContentRepository {
	return &PostgreSQLContentRepository{db: db}
}

const postgresContentColumns = `content_name, secret_name, content_type, file_name, is_main,
		status, access_ticket, ticket_acquired_at, chunk_count, total_size, updated_at`

// Create inserts a new content item.
func (p *PostgreSQLContentRepository) Create(ctx context.Context, content *secretDomain.ContentMetadata) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO secret_contents
			  (` + postgresContentColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := querier.ExecContext(
		ctx,
		query,
		content.ContentName,
		content.SecretName,
		content.ContentType,
		content.FileName,
		content.IsMain,
		content.Status,
		content.AccessTicket,
		content.TicketSetAt,
		content.ChunkCount,
		content.TotalSize,
		content.UpdatedAt,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "content already exists")
		}
		return apperrors.Wrap(err, "failed to create content")
	}
	return nil
}

// Get retrieves one content item of a secret.
func (p *PostgreSQLContentRepository) Get(ctx context.Context, secretName, contentName string) (*secretDomain.ContentMetadata, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresContentColumns + `
			  FROM secret_contents
			  WHERE secret_name = $1 AND content_name = $2`

	return scanContentMetadata(querier.QueryRowContext(ctx, query, secretName, contentName))
}

// ListBySecret returns every content item of a secret, main content first.
func (p *PostgreSQLContentRepository) ListBySecret(ctx context.Context, secretName string) ([]*secretDomain.ContentMetadata, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresContentColumns + `
			  FROM secret_contents
			  WHERE secret_name = $1
			  ORDER BY is_main DESC, content_name`

	rows, err := querier.QueryContext(ctx, query, secretName)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list contents")
	}
	defer func() { _ = rows.Close() }()

	var contents []*secretDomain.ContentMetadata
	for rows.Next() {
		content, err := scanContentMetadata(rows)
		if err != nil {
			return nil, err
		}
		contents = append(contents, content)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate contents")
	}
	return contents, nil
}

// UpdateInfo persists content type and file name.
func (p *PostgreSQLContentRepository) UpdateInfo(ctx context.Context, secretName, contentName, contentType, fileName string, at time.Time) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE secret_contents
			  SET content_type = $3, file_name = $4, updated_at = $5
			  WHERE secret_name = $1 AND content_name = $2`

	result, err := querier.ExecContext(ctx, query, secretName, contentName, contentType, fileName, at)
	if err != nil {
		return apperrors.Wrap(err, "failed to update content info")
	}
	return requireRowAffected(result, apperrors.ErrNotFound, "content not found")
}

// AcquireTicket installs a ticket on an unlocked content item and moves it to
// updating. Losing the race against a held ticket yields ErrConflict.
func (p *PostgreSQLContentRepository) AcquireTicket(ctx context.Context, contentName, ticket string, at time.Time) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE secret_contents
			  SET access_ticket = $2, ticket_acquired_at = $3, status = $4, updated_at = $3
			  WHERE content_name = $1 AND access_ticket = ''`

	result, err := querier.ExecContext(ctx, query, contentName, ticket, at, secretDomain.ContentStatusUpdating)
	if err != nil {
		return apperrors.Wrap(err, "failed to acquire access ticket")
	}
	return requireRowAffected(result, apperrors.ErrConflict, "content is being updated by another operation")
}

// SwapTicket replaces a known stale ticket with a fresh one. Only the caller
// that wins the swap may reclaim the abandoned transfer.
func (p *PostgreSQLContentRepository) SwapTicket(ctx context.Context, contentName, oldTicket, newTicket string, at time.Time) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE secret_contents
			  SET access_ticket = $3, ticket_acquired_at = $4, updated_at = $4
			  WHERE content_name = $1 AND access_ticket = $2`

	result, err := querier.ExecContext(ctx, query, contentName, oldTicket, newTicket, at)
	if err != nil {
		return apperrors.Wrap(err, "failed to swap access ticket")
	}
	return requireRowAffected(result, apperrors.ErrConflict, "content is being updated by another operation")
}

// ReleaseTicket clears the held ticket and moves the content to the given
// status. The update only applies while the presented ticket is still held.
func (p *PostgreSQLContentRepository) ReleaseTicket(ctx context.Context, contentName, ticket string, status secretDomain.ContentStatus, at time.Time) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE secret_contents
			  SET access_ticket = '', ticket_acquired_at = NULL, status = $3, updated_at = $4
			  WHERE content_name = $1 AND access_ticket = $2`

	result, err := querier.ExecContext(ctx, query, contentName, ticket, status, at)
	if err != nil {
		return apperrors.Wrap(err, "failed to release access ticket")
	}
	return requireRowAffected(result, apperrors.ErrConflict, "content is being updated by another operation")
}

// Clear resets a content item to blank with no chunks, guarded on the
// presented ticket.
func (p *PostgreSQLContentRepository) Clear(ctx context.Context, contentName, ticket string, at time.Time) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE secret_contents
			  SET status = $3, access_ticket = '', ticket_acquired_at = NULL,
				  chunk_count = 0, total_size = 0, updated_at = $4
			  WHERE content_name = $1 AND access_ticket = $2`

	result, err := querier.ExecContext(ctx, query, contentName, ticket, secretDomain.ContentStatusBlank, at)
	if err != nil {
		return apperrors.Wrap(err, "failed to clear content")
	}
	return requireRowAffected(result, apperrors.ErrConflict, "content is being updated by another operation")
}

// Delete removes a content item, guarded on the presented ticket.
func (p *PostgreSQLContentRepository) Delete(ctx context.Context, contentName, ticket string) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM secret_contents WHERE content_name = $1 AND access_ticket = $2`

	result, err := querier.ExecContext(ctx, query, contentName, ticket)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete content")
	}
	return requireRowAffected(result, apperrors.ErrConflict, "content is being updated by another operation")
}

// AppendChunk records one uploaded chunk and bumps the content's chunk count
// and total size. The append only applies while the presented ticket is held
// and the chunk index matches the current count, so concurrent appends and
// releases cannot interleave.
func (p *PostgreSQLContentRepository) AppendChunk(ctx context.Context, chunk *secretDomain.ChunkMetadata, ticket string) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE secret_contents
			  SET chunk_count = chunk_count + 1, total_size = total_size + $3, updated_at = $4
			  WHERE content_name = $1 AND access_ticket = $2 AND chunk_count = $5`

	result, err := querier.ExecContext(ctx, query, chunk.ContentName, ticket, chunk.Length, chunk.CreatedAt, chunk.Index)
	if err != nil {
		return apperrors.Wrap(err, "failed to append chunk")
	}
	if err := requireRowAffected(result, apperrors.ErrConflict, "content is being updated by another operation"); err != nil {
		return err
	}

	insert := `INSERT INTO secret_chunks
			   (chunk_name, content_name, secret_name, chunk_index, length, hash, created_at)
			   VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = querier.ExecContext(
		ctx,
		insert,
		chunk.ChunkName,
		chunk.ContentName,
		chunk.SecretName,
		chunk.Index,
		chunk.Length,
		chunk.Hash,
		chunk.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to insert chunk record")
	}
	return nil
}

// GetChunk retrieves one chunk record of a content item.
func (p *PostgreSQLContentRepository) GetChunk(ctx context.Context, contentName, chunkName string) (*secretDomain.ChunkMetadata, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT chunk_name, content_name, secret_name, chunk_index, length, hash, created_at
			  FROM secret_chunks
			  WHERE content_name = $1 AND chunk_name = $2`

	return scanChunkMetadata(querier.QueryRowContext(ctx, query, contentName, chunkName))
}

// ListChunks returns the chunk records of a content item in sequence order.
func (p *PostgreSQLContentRepository) ListChunks(ctx context.Context, contentName string) ([]*secretDomain.ChunkMetadata, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT chunk_name, content_name, secret_name, chunk_index, length, hash, created_at
			  FROM secret_chunks
			  WHERE content_name = $1
			  ORDER BY chunk_index`

	rows, err := querier.QueryContext(ctx, query, contentName)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list chunks")
	}
	defer func() { _ = rows.Close() }()

	var chunks []*secretDomain.ChunkMetadata
	for rows.Next() {
		chunk, err := scanChunkMetadata(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate chunks")
	}
	return chunks, nil
}

// DeleteChunks removes every chunk record of a content item.
func (p *PostgreSQLContentRepository) DeleteChunks(ctx context.Context, contentName string) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM secret_chunks WHERE content_name = $1`

	if _, err := querier.ExecContext(ctx, query, contentName); err != nil {
		return apperrors.Wrap(err, "failed to delete chunks")
	}
	return nil
}

// DeleteBySecret removes every content item and chunk record of a secret.
func (p *PostgreSQLContentRepository) DeleteBySecret(ctx context.Context, secretName string) error {
	querier := database.GetTx(ctx, p.db)

	if _, err := querier.ExecContext(ctx, `DELETE FROM secret_chunks WHERE secret_name = $1`, secretName); err != nil {
		return apperrors.Wrap(err, "failed to delete chunks by secret")
	}
	if _, err := querier.ExecContext(ctx, `DELETE FROM secret_contents WHERE secret_name = $1`, secretName); err != nil {
		return apperrors.Wrap(err, "failed to delete contents by secret")
	}
	return nil
}

// scanContentMetadata scans one content row.
func scanContentMetadata(row rowScanner) (*secretDomain.ContentMetadata, error) {
	var content secretDomain.ContentMetadata
	err := row.Scan(
		&content.ContentName,
		&content.SecretName,
		&content.ContentType,
		&content.FileName,
		&content.IsMain,
		&content.Status,
		&content.AccessTicket,
		&content.TicketSetAt,
		&content.ChunkCount,
		&content.TotalSize,
		&content.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "content not found")
		}
		return nil, apperrors.Wrap(err, "failed to scan content")
	}
	return &content, nil
}

// scanChunkMetadata scans one chunk row.
func scanChunkMetadata(row rowScanner) (*secretDomain.ChunkMetadata, error) {
	var chunk secretDomain.ChunkMetadata
	err := row.Scan(
		&chunk.ChunkName,
		&chunk.ContentName,
		&chunk.SecretName,
		&chunk.Index,
		&chunk.Length,
		&chunk.Hash,
		&chunk.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "chunk not found")
		}
		return nil, apperrors.Wrap(err, "failed to scan chunk")
	}
	return &chunk, nil
}
