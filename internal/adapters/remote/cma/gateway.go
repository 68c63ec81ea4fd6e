package cma

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/satishbabariya/ctf-migrate/internal/core/migration/domain"
)

// Gateway resolves credentials into HTTP sessions.
type Gateway struct {
	opts []ClientOption
}

// NewGateway creates a gateway; opts apply to every client it creates.
func NewGateway(opts ...ClientOption) *Gateway {
	return &Gateway{opts: opts}
}

// Resolve checks that the environment is reachable with creds.
func (g *Gateway) Resolve(ctx context.Context, creds domain.Credentials) (domain.Session, error) {
	client := NewClient(creds.AccessToken, g.opts...)
	path := domain.EnvironmentPath(creds.SpaceID, creds.EnvironmentID)

	if err := client.do(ctx, http.MethodGet, path, nil, nil, nil); err != nil {
		if errors.Is(err, domain.ErrAccessDenied) {
			return nil, fmt.Errorf("%w: %v", domain.ErrAccessDenied, err)
		}
		return nil, fmt.Errorf("failed to resolve environment %s/%s: %w", creds.SpaceID, creds.EnvironmentID, err)
	}
	return &Session{
		client:        client,
		spaceID:       creds.SpaceID,
		environmentID: creds.EnvironmentID,
	}, nil
}

// Ensure Gateway implements Gateway interface.
var _ domain.Gateway = (*Gateway)(nil)
