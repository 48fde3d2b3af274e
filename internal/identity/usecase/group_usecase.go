package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/yury-opolev/safeexchange-sub000/internal/clock"
	apperrors "github.com/yury-opolev/safeexchange-sub000/internal/errors"
	identityDomain "github.com/yury-opolev/safeexchange-sub000/internal/identity/domain"
)

// groupUseCase implements GroupUseCase with a bounded-staleness cache in front
// of the external group directory.
type groupUseCase struct {
	snapRepo     GroupSnapshotRepository
	directory    GroupDirectory
	clock        clock.Clock
	refreshDelay time.Duration
	logger       *slog.Logger
}

// GroupsOf returns the user's group identifiers. A cached snapshot younger
// than the refresh delay is served as-is; otherwise the external directory is
// consulted and the snapshot replaced. A directory failure falls back to the
// stale snapshot when one exists.
func (u *groupUseCase) GroupsOf(ctx context.Context, userID string) ([]string, error) {
	snap, err := u.snapRepo.Get(ctx, userID)
	if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	now := u.clock.Now()
	if snap != nil && !snap.IsStale(now, u.refreshDelay) {
		return snap.Groups, nil
	}

	groups, err := u.directory.GetGroupsOf(ctx, userID)
	if err != nil {
		if snap != nil {
			if u.logger != nil {
				u.logger.Warn("group directory unavailable, serving stale snapshot",
					slog.String("user_id", userID),
					slog.Time("synced_at", snap.SyncedAt),
					slog.Any("error", err),
				)
			}
			return snap.Groups, nil
		}
		return nil, apperrors.Wrap(err, "failed to resolve groups")
	}

	if err := u.snapRepo.Upsert(ctx, &identityDomain.GroupSnapshot{
		UserID:   userID,
		Groups:   groups,
		SyncedAt: now,
	}); err != nil {
		// The fresh list is still correct even if the cache write failed.
		if u.logger != nil {
			u.logger.Warn("failed to store group snapshot",
				slog.String("user_id", userID),
				slog.Any("error", err),
			)
		}
	}

	return groups, nil
}

// NewGroupUseCase creates a new group use case instance.
func NewGroupUseCase(
	snapRepo GroupSnapshotRepository,
	directory GroupDirectory,
	clk clock.Clock,
	refreshDelay time.Duration,
	logger *slog.Logger,
) GroupUseCase {
	return &groupUseCase{
		snapRepo:     snapRepo,
		directory:    directory,
		clock:        clk,
		refreshDelay: refreshDelay,
		logger:       logger,
	}
}
