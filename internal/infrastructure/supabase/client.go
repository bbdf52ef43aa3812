// Package supabase implements the repositories and the session authenticator
// on top of a Supabase project (PostgREST for rows, GoTrue for identity).
package supabase

import (
	"context"
	"errors"

	"ideas-backend/internal/auth"
	"ideas-backend/internal/config"

	supa "github.com/supabase-community/supabase-go"
)

// ClientProvider hands out a Supabase client for the caller in ctx.
type ClientProvider interface {
	Client(ctx context.Context) (*supa.Client, error)
}

// ClientFactory builds per-request clients. When the context carries an
// authenticated user, the client forwards that user's access token so
// row-level security runs as the caller.
type ClientFactory struct {
	url            string
	anonKey        string
	serviceRoleKey string
	schema         string
}

// NewClientFactory validates the connection settings and returns a factory.
func NewClientFactory(cfg config.Supabase) (*ClientFactory, error) {
	if cfg.URL == "" || cfg.AnonKey == "" {
		return nil, errors.New("supabase url and anon key are required")
	}
	return &ClientFactory{
		url:            cfg.URL,
		anonKey:        cfg.AnonKey,
		serviceRoleKey: cfg.ServiceRoleKey,
		schema:         cfg.Schema,
	}, nil
}

// Client implements ClientProvider.
func (f *ClientFactory) Client(ctx context.Context) (*supa.Client, error) {
	opts := &supa.ClientOptions{Schema: f.schema}

	if user, err := auth.GetUserFromContext(ctx); err == nil && user.AccessToken != "" {
		opts.Headers = map[string]string{"Authorization": "Bearer " + user.AccessToken}
		return supa.NewClient(f.url, f.anonKey, opts)
	}
	if f.serviceRoleKey != "" {
		return supa.NewClient(f.url, f.serviceRoleKey, opts)
	}
	return supa.NewClient(f.url, f.anonKey, opts)
}

// Anonymous returns a client keyed with the anon key, for auth endpoints.
func (f *ClientFactory) Anonymous() (*supa.Client, error) {
	return supa.NewClient(f.url, f.anonKey, &supa.ClientOptions{Schema: f.schema})
}

// run executes a blocking call that has no context support and gives up
// when ctx is done. The abandoned call is not cancelled: the PostgREST client
// has no HTTP timeout, so against a hung backend its goroutine lingers until
// the connection fails. The circuit breaker bounds how many pile up.
func run[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type result struct {
		value T
		err   error
	}

	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}

	ch := make(chan result, 1)
	go func() {
		v, err := fn()
		ch <- result{value: v, err: err}
	}()

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case r := <-ch:
		return r.value, r.err
	}
}
