package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/yury-opolev/safeexchange-sub000/internal/database"
	apperrors "github.com/yury-opolev/safeexchange-sub000/internal/errors"
	identityDomain "github.com/yury-opolev/safeexchange-sub000/internal/identity/domain"
)

// MySQLGroupSnapshotRepository handles group membership snapshot persistence for MySQL.
type MySQLGroupSnapshotRepository struct {
	db *sql.DB
}

// NewMySQLGroupSnapshotRepository creates a new MySQLGroupSnapshotRepository.
func NewMySQLGroupSnapshotRepository(db *sql.DB) *MySQLGroupSnapshotRepository {
	return &MySQLGroupSnapshotRepository{db: db}
}

// Get retrieves the cached group snapshot for a user.
func (r *MySQLGroupSnapshotRepository) Get(
	ctx context.Context,
	userID string,
) (*identityDomain.GroupSnapshot, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT user_id, group_ids, synced_at FROM group_snapshots WHERE user_id = ?`

	var snap identityDomain.GroupSnapshot
	var groupsJSON []byte
	err := querier.QueryRowContext(ctx, query, userID).Scan(
		&snap.UserID,
		&groupsJSON,
		&snap.SyncedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get group snapshot")
	}

	if err := json.Unmarshal(groupsJSON, &snap.Groups); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal group list")
	}

	return &snap, nil
}

// Upsert stores or replaces the cached group snapshot for a user.
func (r *MySQLGroupSnapshotRepository) Upsert(
	ctx context.Context,
	snap *identityDomain.GroupSnapshot,
) error {
	querier := database.GetTx(ctx, r.db)

	groupsJSON, err := json.Marshal(snap.Groups)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal group list")
	}

	query := `INSERT INTO group_snapshots (user_id, group_ids, synced_at)
			  VALUES (?, ?, ?)
			  ON DUPLICATE KEY UPDATE group_ids = VALUES(group_ids), synced_at = VALUES(synced_at)`

	_, err = querier.ExecContext(ctx, query, snap.UserID, groupsJSON, snap.SyncedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert group snapshot")
	}
	return nil
}
