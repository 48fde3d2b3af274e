// Package usecase implements identity resolution business logic: application
// bearer-token authentication and bounded-staleness group membership lookup.
package usecase

import (
	"context"

	"github.com/google/uuid"

	identityDomain "github.com/yury-opolev/safeexchange-sub000/internal/identity/domain"
)

// ApplicationRepository defines the interface for application persistence operations.
type ApplicationRepository interface {
	Create(ctx context.Context, app *identityDomain.Application) error
	GetByID(ctx context.Context, id uuid.UUID) (*identityDomain.Application, error)
}

// GroupSnapshotRepository defines the interface for cached group membership persistence.
type GroupSnapshotRepository interface {
	Get(ctx context.Context, userID string) (*identityDomain.GroupSnapshot, error)
	Upsert(ctx context.Context, snap *identityDomain.GroupSnapshot) error
}

// GroupDirectory resolves the groups a user belongs to from the external directory.
type GroupDirectory interface {
	GetGroupsOf(ctx context.Context, userID string) ([]string, error)
}

// ResolverUseCase authenticates application bearer tokens and manages registrations.
type ResolverUseCase interface {
	// ResolveApplication authenticates an application bearer token of the form
	// "<application-id>.<secret>" and returns the application subject.
	ResolveApplication(ctx context.Context, token string) (*identityDomain.Subject, error)
	// CreateApplication registers a new application and returns its one-time
	// plaintext bearer token alongside the stored registration.
	CreateApplication(ctx context.Context, name string) (string, *identityDomain.Application, error)
}

// GroupUseCase resolves a user's group list through the bounded-staleness cache.
type GroupUseCase interface {
	GroupsOf(ctx context.Context, userID string) ([]string, error)
}
