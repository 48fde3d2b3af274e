package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSubjectType_Valid(t *testing.T) {
	assert.True(t, SubjectTypeUser.Valid())
	assert.True(t, SubjectTypeApplication.Valid())
	assert.True(t, SubjectTypeGroup.Valid())
	assert.False(t, SubjectType("robot").Valid())
	assert.False(t, SubjectType("").Valid())
}

func TestSubject_IsApplication(t *testing.T) {
	assert.True(t, Subject{Type: SubjectTypeApplication, ID: "backup-agent"}.IsApplication())
	assert.False(t, Subject{Type: SubjectTypeUser, ID: "alice"}.IsApplication())
}

func TestGroupSnapshot_IsStale(t *testing.T) {
	syncedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	snap := &GroupSnapshot{UserID: "alice", Groups: []string{"admins"}, SyncedAt: syncedAt}

	refresh := 2 * time.Minute

	assert.False(t, snap.IsStale(syncedAt.Add(time.Minute), refresh))
	assert.True(t, snap.IsStale(syncedAt.Add(2*time.Minute), refresh))
	assert.True(t, snap.IsStale(syncedAt.Add(time.Hour), refresh))
}
