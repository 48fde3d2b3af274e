// Package http provides HTTP middleware and utilities for identity resolution.
package http

import (
	"context"

	identityDomain "github.com/yury-opolev/safeexchange-sub000/internal/identity/domain"
)

// subjectKey is a context key type for storing resolved subjects.
type subjectKey struct{}

// WithSubject stores a resolved subject in the context.
// This is typically called by the subject middleware after successful resolution.
func WithSubject(ctx context.Context, subject *identityDomain.Subject) context.Context {
	return context.WithValue(ctx, subjectKey{}, subject)
}

// GetSubject retrieves the resolved subject from the context.
// Returns (subject, true) if a subject is present, or (nil, false) otherwise.
func GetSubject(ctx context.Context) (*identityDomain.Subject, bool) {
	subject, ok := ctx.Value(subjectKey{}).(*identityDomain.Subject)
	return subject, ok
}
