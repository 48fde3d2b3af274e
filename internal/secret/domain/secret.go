// Package domain defines the entities for chunked secret storage: object
// metadata with expiration settings, per-content state with an exclusive
// access ticket, and the ordered chunk list behind each content item.
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	identityDomain "github.com/yury-opolev/safeexchange-sub000/internal/identity/domain"
)

// ContentStatus is the lifecycle state of a content item.
type ContentStatus string

const (
	// ContentStatusBlank means no chunks and no ticket.
	ContentStatusBlank ContentStatus = "blank"
	// ContentStatusUpdating means a ticket is held and chunks are accumulating.
	ContentStatusUpdating ContentStatus = "updating"
	// ContentStatusReady means the ticket is cleared and the content is complete.
	ContentStatusReady ContentStatus = "ready"
)

// Valid checks if the content status is one of the known states.
func (s ContentStatus) Valid() bool {
	switch s {
	case ContentStatusBlank, ContentStatusUpdating, ContentStatusReady:
		return true
	}
	return false
}

// ExpirationMetadata holds a secret's expiry settings. Schedule-based and
// idle-based expiry are independent; either condition triggers a purge.
type ExpirationMetadata struct {
	ScheduleExpiration bool
	ExpireAt           time.Time
	ExpireOnIdleTime   bool
	IdleTimeToExpire   time.Duration
}

// IsExpired reports whether the secret is purge-eligible at the given moment.
func (e ExpirationMetadata) IsExpired(now, lastAccessedAt time.Time) bool {
	if e.ScheduleExpiration && !now.Before(e.ExpireAt) {
		return true
	}
	if e.ExpireOnIdleTime && !now.Before(lastAccessedAt.Add(e.IdleTimeToExpire)) {
		return true
	}
	return false
}

// ObjectMetadata describes one secret: ownership, access timestamps,
// expiration settings and the name of its main content item.
type ObjectMetadata struct {
	ObjectName      string
	Description     string
	CreatedBy       identityDomain.Subject
	CreatedAt       time.Time
	UpdatedBy       identityDomain.Subject
	UpdatedAt       time.Time
	LastAccessedAt  time.Time
	Expiration      ExpirationMetadata
	KeepInStorage   bool
	MainContentName string
}

// ContentMetadata describes one content item under a secret. A non-empty
// AccessTicket implies StatusUpdating.
type ContentMetadata struct {
	ContentName  string
	SecretName   string
	ContentType  string
	FileName     string
	IsMain       bool
	Status       ContentStatus
	AccessTicket string
	TicketSetAt  *time.Time
	ChunkCount   int
	TotalSize    int64
	UpdatedAt    time.Time
}

// IsLocked reports whether a ticket is currently held on the content.
func (c *ContentMetadata) IsLocked() bool {
	return c.AccessTicket != ""
}

// TicketExpired reports whether the held ticket has outlived the timeout.
// A zero timeout disables expiry.
func (c *ContentMetadata) TicketExpired(now time.Time, timeout time.Duration) bool {
	if c.AccessTicket == "" || timeout <= 0 || c.TicketSetAt == nil {
		return false
	}
	return now.After(c.TicketSetAt.Add(timeout))
}

// ChunkMetadata describes one immutable chunk of a content item. The ordered
// sequence of chunks reconstructs the full content by concatenation.
type ChunkMetadata struct {
	ChunkName   string
	ContentName string
	SecretName  string
	Index       int
	Length      int64
	Hash        string
	CreatedAt   time.Time
}

// NewContentName generates a unique name for a new content item.
func NewContentName() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return "content-" + id.String(), nil
}

// NewAccessTicket mints a fresh opaque access ticket.
func NewAccessTicket() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// ChunkName derives the stable name of the chunk at the given sequence index.
func ChunkName(contentName string, index int) string {
	return fmt.Sprintf("%s-%08d", contentName, index)
}
