// Package domain defines identity domain models: the subjects that own and
// access secrets (users, applications, groups), registered applications, and
// cached group membership snapshots.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// SubjectType classifies the principal a permission or request belongs to.
type SubjectType string

const (
	// SubjectTypeUser is a human principal resolved by the identity gateway.
	SubjectTypeUser SubjectType = "user"
	// SubjectTypeApplication is a registered machine principal. Applications
	// carry no group membership.
	SubjectTypeApplication SubjectType = "application"
	// SubjectTypeGroup is a directory group; permissions granted to a group
	// apply to every user the directory places in it.
	SubjectTypeGroup SubjectType = "group"
)

// Valid reports whether the subject type is one of the known values.
func (t SubjectType) Valid() bool {
	switch t {
	case SubjectTypeUser, SubjectTypeApplication, SubjectTypeGroup:
		return true
	}
	return false
}

// Subject identifies a resolved caller or grant target.
type Subject struct {
	// Type is the subject classification.
	Type SubjectType
	// ID is the stable identifier within the type (user id, application name, group id).
	ID string
	// DisplayName is a human-readable name, used for notification payloads.
	DisplayName string
}

// IsApplication reports whether the subject is a registered application.
func (s Subject) IsApplication() bool {
	return s.Type == SubjectTypeApplication
}

// Application represents a registered machine principal that authenticates
// with a bearer token.
type Application struct {
	ID         uuid.UUID
	Name       string
	SecretHash string //nolint:gosec // hashed client secret (not plaintext)
	IsActive   bool
	CreatedAt  time.Time
}

// GroupSnapshot is a per-user cached list of externally-resolved group
// identifiers. It is not authoritative; it is refreshed lazily with bounded
// staleness to limit calls to the external directory.
type GroupSnapshot struct {
	UserID   string
	Groups   []string
	SyncedAt time.Time
}

// IsStale reports whether the snapshot is due for a refresh given the
// configured refresh delay.
func (g *GroupSnapshot) IsStale(now time.Time, refreshDelay time.Duration) bool {
	return now.Sub(g.SyncedAt) >= refreshDelay
}
