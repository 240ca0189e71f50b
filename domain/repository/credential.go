package repository

import (
	"context"

	"social-scheduler/domain/model"
)

// ICredential persists SocialCredential rows. Implementations enforce the
// single-credential-per-(platform, owner) invariant at the upsert boundary
// and encrypt access tokens before they reach storage.
type ICredential interface {
	// Upsert inserts or replaces the credential for (cred.Platform, cred.OwnerID).
	Upsert(ctx context.Context, cred *model.SocialCredential) error
	// Get returns (nil, nil) when the pair is not connected.
	Get(ctx context.Context, platform model.Platform, ownerID string) (*model.SocialCredential, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*model.SocialCredential, error)
	// Delete removes a credential by id, verifying ownership. Returns
	// model.ErrNotOwner on an ownership mismatch and model.ErrNotFound when
	// the id does not exist.
	Delete(ctx context.Context, id int64, ownerID string) error
}
