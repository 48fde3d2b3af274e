package usecase

import (
	"context"

	accessrequestDomain "github.com/yury-opolev/safeexchange-sub000/internal/accessrequest/domain"
	"github.com/yury-opolev/safeexchange-sub000/internal/outbox/domain"
)

// OutboxNotifier records access request notifications as pending outbox
// events; the processing loop delivers them asynchronously.
type OutboxNotifier struct {
	outboxRepo OutboxEventRepository
}

// NewOutboxNotifier creates a new OutboxNotifier.
func NewOutboxNotifier(outboxRepo OutboxEventRepository) *OutboxNotifier {
	return &OutboxNotifier{outboxRepo: outboxRepo}
}

// RequestCreated records an access_request.created event for later delivery.
func (n *OutboxNotifier) RequestCreated(ctx context.Context, req *accessrequestDomain.AccessRequest) error {
	event, err := domain.NewAccessRequestCreatedEvent(req)
	if err != nil {
		return err
	}
	return n.outboxRepo.Create(ctx, event)
}
