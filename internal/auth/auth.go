// Package auth resolves bearer tokens to actors. The commerce core never sees
// tokens; it receives the resolved actor on every call.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/safar/toy-market/internal/commerce"
	"github.com/safar/toy-market/internal/database"
	"github.com/safar/toy-market/internal/models"
	"github.com/safar/toy-market/internal/store"
)

// Authenticator turns a bearer token into an actor.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Actor, error)
}

// StoreAuthenticator resolves tokens against the user store.
type StoreAuthenticator struct {
	users *store.UserStore
}

func NewStoreAuthenticator(users *store.UserStore) *StoreAuthenticator {
	return &StoreAuthenticator{users: users}
}

func (a *StoreAuthenticator) Authenticate(ctx context.Context, token string) (*models.Actor, error) {
	if token == "" {
		return nil, commerce.ErrUnauthenticated
	}
	user, err := a.users.GetUserByToken(ctx, token)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: unknown token", commerce.ErrUnauthenticated)
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	return &models.Actor{
		ID:    user.ID,
		Name:  user.Name,
		Role:  user.Role,
		Token: user.Token,
	}, nil
}

type contextKey struct{}

// WithActor stashes the actor in the request context.
func WithActor(ctx context.Context, actor *models.Actor) context.Context {
	return context.WithValue(ctx, contextKey{}, actor)
}

// ActorFrom returns the actor attached to ctx, or nil for anonymous calls.
func ActorFrom(ctx context.Context) *models.Actor {
	actor, _ := ctx.Value(contextKey{}).(*models.Actor)
	return actor
}
