package memory

import (
	"context"
	"net/http"
	"sync"

	"github.com/satishbabariya/ctf-migrate/internal/core/migration/domain"
)

// Gateway resolves credentials into in-memory environments.
type Gateway struct {
	mu     sync.Mutex
	token  string
	spaces map[string]map[string]*Environment
}

// NewGateway creates a gateway that accepts only token. An empty token
// accepts any credential.
func NewGateway(token string) *Gateway {
	return &Gateway{
		token:  token,
		spaces: make(map[string]map[string]*Environment),
	}
}

// Environment returns the environment for a space, creating it on first use.
func (g *Gateway) Environment(spaceID, environmentID string) *Environment {
	g.mu.Lock()
	defer g.mu.Unlock()

	envs, ok := g.spaces[spaceID]
	if !ok {
		envs = make(map[string]*Environment)
		g.spaces[spaceID] = envs
	}
	env, ok := envs[environmentID]
	if !ok {
		env = NewEnvironment(spaceID, environmentID)
		envs[environmentID] = env
	}
	return env
}

// Resolve returns the session for creds.
func (g *Gateway) Resolve(ctx context.Context, creds domain.Credentials) (domain.Session, error) {
	url := domain.EnvironmentPath(creds.SpaceID, creds.EnvironmentID)
	if g.token != "" && creds.AccessToken != g.token {
		return nil, &domain.RequestError{
			StatusCode: http.StatusUnauthorized,
			Status:     http.StatusText(http.StatusUnauthorized),
			Message:    "The access token you sent could not be found or is invalid.",
			URL:        url,
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	env, ok := g.spaces[creds.SpaceID][creds.EnvironmentID]
	if !ok {
		return nil, &domain.RequestError{
			StatusCode: http.StatusNotFound,
			Status:     http.StatusText(http.StatusNotFound),
			Message:    "The resource could not be found.",
			URL:        url,
		}
	}
	return env, nil
}

// Ensure Gateway implements Gateway interface.
var _ domain.Gateway = (*Gateway)(nil)
