// Package domain defines the access request model: one subject's ask for a
// permission on a secret, routed to the subjects able to grant it.
package domain

import (
	"time"

	"github.com/google/uuid"

	identityDomain "github.com/yury-opolev/safeexchange-sub000/internal/identity/domain"
	permissionDomain "github.com/yury-opolev/safeexchange-sub000/internal/permission/domain"
)

// Status represents the lifecycle state of an access request.
type Status string

const (
	// StatusInProgress is the initial state, awaiting approval or rejection.
	StatusInProgress Status = "in_progress"
	// StatusApproved is terminal; the requested permission has been granted.
	StatusApproved Status = "approved"
	// StatusRejected is terminal; no permission change happened.
	StatusRejected Status = "rejected"
)

// Valid reports whether the status is a known value.
func (s Status) Valid() bool {
	switch s {
	case StatusInProgress, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Recipient is one subject that held GrantAccess on the secret when the
// request was created. The list is frozen at creation and never updated.
type Recipient struct {
	RequestID   uuid.UUID
	SubjectType identityDomain.SubjectType
	SubjectID   string
	SubjectName string
}

// Matches reports whether the subject is this recipient.
func (r Recipient) Matches(subject identityDomain.Subject) bool {
	return r.SubjectType == subject.Type && r.SubjectID == subject.ID
}

// AccessRequest represents one subject's pending or resolved ask for
// permission bits on a secret.
type AccessRequest struct {
	ID          uuid.UUID
	SecretName  string
	SubjectType identityDomain.SubjectType
	SubjectID   string
	SubjectName string
	Permission  permissionDomain.Mask
	Status      Status
	RequestedAt time.Time
	FinishedBy  string
	FinishedAt  *time.Time
	Recipients  []Recipient
}

// Requester returns the requesting subject.
func (r *AccessRequest) Requester() identityDomain.Subject {
	return identityDomain.Subject{
		Type:        r.SubjectType,
		ID:          r.SubjectID,
		DisplayName: r.SubjectName,
	}
}

// IsInProgress reports whether the request is still awaiting resolution.
func (r *AccessRequest) IsInProgress() bool {
	return r.Status == StatusInProgress
}

// IsRequestedBy reports whether the subject created this request.
func (r *AccessRequest) IsRequestedBy(subject identityDomain.Subject) bool {
	return r.SubjectType == subject.Type && r.SubjectID == subject.ID
}

// HasRecipient reports whether the subject appears in the frozen recipient
// snapshot.
func (r *AccessRequest) HasRecipient(subject identityDomain.Subject) bool {
	for _, recipient := range r.Recipients {
		if recipient.Matches(subject) {
			return true
		}
	}
	return false
}
