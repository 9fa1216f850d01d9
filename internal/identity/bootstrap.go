package identity

import (
	"context"

	"privatechef/internal/models"
	"privatechef/internal/outcome"
)

// SignInProvider is the subset of Provider the bootstrapper needs.
type SignInProvider interface {
	SignInAnonymously(ctx context.Context) (*models.SessionIdentity, error)
	SignInWithCustomToken(ctx context.Context, token string) (*models.SessionIdentity, error)
}

// Bootstrapper establishes the identity of a new page session.
type Bootstrapper struct {
	provider     SignInProvider
	initialToken string
}

// NewBootstrapper returns a bootstrapper. provider may be nil when the
// identity provider is not configured; Bootstrap then reports NotReady.
func NewBootstrapper(provider SignInProvider, initialToken string) *Bootstrapper {
	return &Bootstrapper{provider: provider, initialToken: initialToken}
}

// Bootstrap signs in with the configured token if any, anonymously otherwise.
// There is no retry: a failed bootstrap leaves the page without identity.
func (b *Bootstrapper) Bootstrap(ctx context.Context) (*models.SessionIdentity, error) {
	if b == nil || b.provider == nil {
		return nil, outcome.NewNotReady("identity provider is not configured")
	}
	if b.initialToken != "" {
		return b.provider.SignInWithCustomToken(ctx, b.initialToken)
	}
	return b.provider.SignInAnonymously(ctx)
}
