// Package access resolves the calling identity and enforces record ownership.
package access

import (
	"context"
	"fmt"

	"github.com/tutor-radar/internal/domain"
)

// IdentityProvider resolves the currently authenticated identity.
// It returns (nil, nil) when the caller is anonymous.
type IdentityProvider interface {
	CurrentIdentity(ctx context.Context) (*domain.Identity, error)
}

// Current returns the caller's identity or domain.ErrUnauthorized.
func Current(ctx context.Context, ids IdentityProvider) (*domain.Identity, error) {
	id, err := ids.CurrentIdentity(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve identity: %w: %w", domain.ErrUnauthorized, err)
	}
	if id == nil || id.UserID == "" {
		return nil, fmt.Errorf("not signed in: %w", domain.ErrUnauthorized)
	}
	return id, nil
}

// RequireOwner succeeds only when the caller is ownerID.
func RequireOwner(ctx context.Context, ids IdentityProvider, ownerID string) (*domain.Identity, error) {
	id, err := Current(ctx, ids)
	if err != nil {
		return nil, err
	}
	if id.UserID != ownerID {
		return nil, fmt.Errorf("signed in as a different user: %w", domain.ErrForbidden)
	}
	return id, nil
}

// Static is an IdentityProvider that always returns the same identity.
type Static struct {
	Identity *domain.Identity
}

func (s Static) CurrentIdentity(context.Context) (*domain.Identity, error) {
	return s.Identity, nil
}
