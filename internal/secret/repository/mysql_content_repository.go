package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/yury-opolev/safeexchange-sub000/internal/database"
	apperrors "github.com/yury-opolev/safeexchange-sub000/internal/errors"
	secretDomain "github.com/yury-opolev/safeexchange-sub000/internal/secret/domain"
)

// MySQLContentRepository implements content and chunk persistence for MySQL
// databases.
type MySQLContentRepository struct {
	db *sql.DB
}

// NewMySQLContentRepository creates a new MySQL content repository.
func NewMySQLContentRepository(db *sql.DB) *MySQLContentRepository {
	return &MySQLContentRepository{db: db}
}

const mysqlContentColumns = `content_name, secret_name, content_type, file_name, is_main,
		status, access_ticket, ticket_acquired_at, chunk_count, total_size, updated_at`

// Create inserts a new content item.
func (m *MySQLContentRepository) Create(ctx context.Context, content *secretDomain.ContentMetadata) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO secret_contents
			  (` + mysqlContentColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

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
		if isMySQLUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "content already exists")
		}
		return apperrors.Wrap(err, "failed to create content")
	}
	return nil
}

// Get retrieves one content item of a secret.
func (m *MySQLContentRepository) Get(ctx context.Context, secretName, contentName string) (*secretDomain.ContentMetadata, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlContentColumns + `
			  FROM secret_contents
			  WHERE secret_name = ? AND content_name = ?`

	return scanContentMetadata(querier.QueryRowContext(ctx, query, secretName, contentName))
}

// ListBySecret returns every content item of a secret, main content first.
func (m *MySQLContentRepository) ListBySecret(ctx context.Context, secretName string) ([]*secretDomain.ContentMetadata, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlContentColumns + `
			  FROM secret_contents
			  WHERE secret_name = ?
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
func (m *MySQLContentRepository) UpdateInfo(ctx context.Context, secretName, contentName, contentType, fileName string, at time.Time) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE secret_contents
			  SET content_type = ?, file_name = ?, updated_at = ?
			  WHERE secret_name = ? AND content_name = ?`

	result, err := querier.ExecContext(ctx, query, contentType, fileName, at, secretName, contentName)
	if err != nil {
		return apperrors.Wrap(err, "failed to update content info")
	}
	return requireRowAffected(result, apperrors.ErrNotFound, "content not found")
}

// AcquireTicket installs a ticket on an unlocked content item and moves it to
// updating. Losing the race against a held ticket yields ErrConflict.
func (m *MySQLContentRepository) AcquireTicket(ctx context.Context, contentName, ticket string, at time.Time) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE secret_contents
			  SET access_ticket = ?, ticket_acquired_at = ?, status = ?, updated_at = ?
			  WHERE content_name = ? AND access_ticket = ''`

	result, err := querier.ExecContext(ctx, query, ticket, at, secretDomain.ContentStatusUpdating, at, contentName)
	if err != nil {
		return apperrors.Wrap(err, "failed to acquire access ticket")
	}
	return requireRowAffected(result, apperrors.ErrConflict, "content is being updated by another operation")
}

// SwapTicket replaces a known stale ticket with a fresh one.
func (m *MySQLContentRepository) SwapTicket(ctx context.Context, contentName, oldTicket, newTicket string, at time.Time) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE secret_contents
			  SET access_ticket = ?, ticket_acquired_at = ?, updated_at = ?
			  WHERE content_name = ? AND access_ticket = ?`

	result, err := querier.ExecContext(ctx, query, newTicket, at, at, contentName, oldTicket)
	if err != nil {
		return apperrors.Wrap(err, "failed to swap access ticket")
	}
	return requireRowAffected(result, apperrors.ErrConflict, "content is being updated by another operation")
}

// ReleaseTicket clears the held ticket and moves the content to the given status.
func (m *MySQLContentRepository) ReleaseTicket(ctx context.Context, contentName, ticket string, status secretDomain.ContentStatus, at time.Time) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE secret_contents
			  SET access_ticket = '', ticket_acquired_at = NULL, status = ?, updated_at = ?
			  WHERE content_name = ? AND access_ticket = ?`

	result, err := querier.ExecContext(ctx, query, status, at, contentName, ticket)
	if err != nil {
		return apperrors.Wrap(err, "failed to release access ticket")
	}
	return requireRowAffected(result, apperrors.ErrConflict, "content is being updated by another operation")
}

// Clear resets a content item to blank with no chunks, guarded on the
// presented ticket.
func (m *MySQLContentRepository) Clear(ctx context.Context, contentName, ticket string, at time.Time) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE secret_contents
			  SET status = ?, access_ticket = '', ticket_acquired_at = NULL,
				  chunk_count = 0, total_size = 0, updated_at = ?
			  WHERE content_name = ? AND access_ticket = ?`

	result, err := querier.ExecContext(ctx, query, secretDomain.ContentStatusBlank, at, contentName, ticket)
	if err != nil {
		return apperrors.Wrap(err, "failed to clear content")
	}
	return requireRowAffected(result, apperrors.ErrConflict, "content is being updated by another operation")
}

// Delete removes a content item, guarded on the presented ticket.
func (m *MySQLContentRepository) Delete(ctx context.Context, contentName, ticket string) error {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM secret_contents WHERE content_name = ? AND access_ticket = ?`

	result, err := querier.ExecContext(ctx, query, contentName, ticket)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete content")
	}
	return requireRowAffected(result, apperrors.ErrConflict, "content is being updated by another operation")
}

// AppendChunk records one uploaded chunk and bumps the content's chunk count
// and total size, guarded on the presented ticket and the current count.
func (m *MySQLContentRepository) AppendChunk(ctx context.Context, chunk *secretDomain.ChunkMetadata, ticket string) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE secret_contents
			  SET chunk_count = chunk_count + 1, total_size = total_size + ?, updated_at = ?
			  WHERE content_name = ? AND access_ticket = ? AND chunk_count = ?`

	result, err := querier.ExecContext(ctx, query, chunk.Length, chunk.CreatedAt, chunk.ContentName, ticket, chunk.Index)
	if err != nil {
		return apperrors.Wrap(err, "failed to append chunk")
	}
	if err := requireRowAffected(result, apperrors.ErrConflict, "content is being updated by another operation"); err != nil {
		return err
	}

	insert := `INSERT INTO secret_chunks
			   (chunk_name, content_name, secret_name, chunk_index, length, hash, created_at)
			   VALUES (?, ?, ?, ?, ?, ?, ?)`

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
func (m *MySQLContentRepository) GetChunk(ctx context.Context, contentName, chunkName string) (*secretDomain.ChunkMetadata, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT chunk_name, content_name, secret_name, chunk_index, length, hash, created_at
			  FROM secret_chunks
			  WHERE content_name = ? AND chunk_name = ?`

	return scanChunkMetadata(querier.QueryRowContext(ctx, query, contentName, chunkName))
}

// ListChunks returns the chunk records of a content item in sequence order.
func (m *MySQLContentRepository) ListChunks(ctx context.Context, contentName string) ([]*secretDomain.ChunkMetadata, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT chunk_name, content_name, secret_name, chunk_index, length, hash, created_at
			  FROM secret_chunks
			  WHERE content_name = ?
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
func (m *MySQLContentRepository) DeleteChunks(ctx context.Context, contentName string) error {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM secret_chunks WHERE content_name = ?`

	if _, err := querier.ExecContext(ctx, query, contentName); err != nil {
		return apperrors.Wrap(err, "failed to delete chunks")
	}
	return nil
}

// DeleteBySecret removes every content item and chunk record of a secret.
func (m *MySQLContentRepository) DeleteBySecret(ctx context.Context, secretName string) error {
	querier := database.GetTx(ctx, m.db)

	if _, err := querier.ExecContext(ctx, `DELETE FROM secret_chunks WHERE secret_name = ?`, secretName); err != nil {
		return apperrors.Wrap(err, "failed to delete chunks by secret")
	}
	if _, err := querier.ExecContext(ctx, `DELETE FROM secret_contents WHERE secret_name = ?`, secretName); err != nil {
		return apperrors.Wrap(err, "failed to delete contents by secret")
	}
	return nil
}
