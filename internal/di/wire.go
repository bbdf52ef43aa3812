//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"ideas-backend/internal/config"

	"github.com/google/wire"
)

// InfrastructureSet provides logging, telemetry, AWS and Supabase clients.
var InfrastructureSet = wire.NewSet(
	provideLogging,
	wire.FieldsOf(new(Logging), "Logger", "Level"),
	provideMetrics,
	provideTracing,
	provideTracer,
	provideAWSConfig,
	provideClientFactory,
	provideAuthService,
	provideAuthenticator,
	provideCircuitBreaker,
)

// RepositorySet provides the decorated repositories and stores.
var RepositorySet = wire.NewSet(
	provideTopicRepository,
	provideIdeaRepository,
	provideEventPublisher,
	provideIdempotencyStore,
)

// HTTPSet provides services, handlers and the router.
var HTTPSet = wire.NewSet(
	provideTopicService,
	provideIdeaService,
	provideGate,
	provideHandlers,
	provideRouter,
)

// InitializeContainer builds the application from cfg. The returned cleanup
// flushes telemetry and stops background work.
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(
		InfrastructureSet,
		RepositorySet,
		HTTPSet,
		wire.Struct(new(Container), "Config", "Logger", "LogLevel", "Router"),
	)
	return nil, nil, nil
}
