// Package domain defines the outbox event entities used for reliable
// notification delivery.
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	accessrequestDomain "github.com/yury-opolev/safeexchange-sub000/internal/accessrequest/domain"
)

// OutboxEventStatus represents the status of an outbox event
type OutboxEventStatus string

const (
	OutboxEventStatusPending   OutboxEventStatus = "pending"
	OutboxEventStatusProcessed OutboxEventStatus = "processed"
	OutboxEventStatusFailed    OutboxEventStatus = "failed"
)

// EventTypeAccessRequestCreated is emitted when a new access request is
// recorded, addressed to the recipients who can approve it.
const EventTypeAccessRequestCreated = "access_request.created"

// OutboxEvent represents an event in the transactional outbox pattern
type OutboxEvent struct {
	ID          uuid.UUID
	EventType   string
	Payload     string
	Status      OutboxEventStatus
	Retries     int
	LastError   *string
	ProcessedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AccessRequestCreatedPayload is the wire payload of an
// access_request.created event.
type AccessRequestCreatedPayload struct {
	RequestID     string      `json:"request_id"`
	SecretName    string      `json:"secret_name"`
	RequesterType string      `json:"requester_type"`
	RequesterID   string      `json:"requester_id"`
	Permissions   []string    `json:"permissions"`
	Recipients    []Recipient `json:"recipients"`
	RequestedAt   time.Time   `json:"requested_at"`
}

// Recipient identifies one subject who can act on the request.
type Recipient struct {
	SubjectType string `json:"subject_type"`
	SubjectID   string `json:"subject_id"`
}

// NewAccessRequestCreatedEvent builds a pending outbox event for a freshly
// created access request.
func NewAccessRequestCreatedEvent(req *accessrequestDomain.AccessRequest) (*OutboxEvent, error) {
	recipients := make([]Recipient, 0, len(req.Recipients))
	for _, recipient := range req.Recipients {
		recipients = append(recipients, Recipient{
			SubjectType: string(recipient.SubjectType),
			SubjectID:   recipient.SubjectID,
		})
	}

	payload, err := json.Marshal(AccessRequestCreatedPayload{
		RequestID:     req.ID.String(),
		SecretName:    req.SecretName,
		RequesterType: string(req.SubjectType),
		RequesterID:   req.SubjectID,
		Permissions:   req.Permission.Facets(),
		Recipients:    recipients,
		RequestedAt:   req.RequestedAt,
	})
	if err != nil {
		return nil, err
	}

	return &OutboxEvent{
		ID:        uuid.Must(uuid.NewV7()),
		EventType: EventTypeAccessRequestCreated,
		Payload:   string(payload),
		Status:    OutboxEventStatusPending,
	}, nil
}
