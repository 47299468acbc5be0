package request

import (
	"context"

	"hrforms/internal/domain/profile"
)

// Store is the record store port. Create assigns ID and CreatedAt when the
// caller leaves them empty. List calls return newest first. Get, Update and
// Delete report ErrNotFound for an unknown id.
type Store interface {
	Create(ctx context.Context, req Request) (Request, error)
	Get(ctx context.Context, id string) (Request, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Request, error)
	ListAll(ctx context.Context) ([]Request, error)
	Update(ctx context.Context, id string, patch Patch) (Request, error)
	Delete(ctx context.Context, id string) error
}

// ProfileReader is the read side of the employee profile collaborator.
type ProfileReader interface {
	Get(ctx context.Context, userID string) (profile.Profile, error)
	List(ctx context.Context, userIDs []string) ([]profile.Profile, error)
}
