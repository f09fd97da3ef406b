package repository

import (
	"context"

	"nexus-ai-chat/internal/domain/model"
)

// IdentityRepository stores account records. Password hashes never leave
// the auth layer; the repository treats them as opaque strings.
type IdentityRepository interface {
	// Create fails with domain.ErrEmailTaken when the email exists.
	Create(ctx context.Context, id *model.Identity, passwordHash string) error
	// FindByEmail returns the identity and its stored password hash.
	FindByEmail(ctx context.Context, email string) (*model.Identity, string, error)
	FindByID(ctx context.Context, id string) (*model.Identity, error)
}
