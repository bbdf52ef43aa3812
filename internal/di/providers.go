// Package di wires the application's dependencies with Wire.
package di

import (
	"context"
	"fmt"
	"time"

	"ideas-backend/internal/auth"
	"ideas-backend/internal/config"
	"ideas-backend/internal/infrastructure/dynamodb"
	"ideas-backend/internal/infrastructure/messaging"
	"ideas-backend/internal/infrastructure/observability"
	"ideas-backend/internal/infrastructure/persistence"
	"ideas-backend/internal/infrastructure/supabase"
	"ideas-backend/internal/interfaces/http/handlers"
	"ideas-backend/internal/interfaces/http/middleware"
	"ideas-backend/internal/interfaces/http/router"
	"ideas-backend/internal/repository"
	"ideas-backend/internal/service/ideas"
	"ideas-backend/internal/service/topics"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	awsDynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/go-chi/chi/v5"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Version is reported by the health endpoints. Set with -ldflags at build time.
var Version = "dev"

// Container holds the assembled application.
type Container struct {
	Config   *config.Config
	Logger   *zap.Logger
	LogLevel zap.AtomicLevel
	Router   *chi.Mux
}

// Logging pairs the logger with the level that controls it at runtime.
type Logging struct {
	Logger *zap.Logger
	Level  zap.AtomicLevel
}

func provideLogging(cfg *config.Config) (Logging, func(), error) {
	logger, level, err := observability.NewLogger(cfg)
	if err != nil {
		return Logging{}, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	cleanup := func() { _ = logger.Sync() }
	return Logging{Logger: logger, Level: level}, cleanup, nil
}

// provideMetrics returns nil when metrics are disabled; every consumer accepts nil.
func provideMetrics(cfg *config.Config) *observability.Collector {
	if !cfg.Observability.EnableMetrics {
		return nil
	}
	return observability.NewCollector("ideas")
}

func provideTracing(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*observability.TracerProvider, func(), error) {
	if !cfg.Observability.EnableTracing {
		return nil, func() {}, nil
	}
	tp, err := observability.InitTracing(ctx, cfg.Observability.ServiceName, string(cfg.Environment), cfg.Observability.OTLPEndpoint)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Failed to flush traces", zap.Error(err))
		}
	}
	return tp, cleanup, nil
}

func provideTracer(tp *observability.TracerProvider) trace.Tracer {
	return tp.Tracer()
}

func provideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	awsCfg, err := awsConfig.LoadDefaultConfig(loadCtx, awsConfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return awsCfg, nil
}

func provideClientFactory(cfg *config.Config) (*supabase.ClientFactory, error) {
	return supabase.NewClientFactory(cfg.Supabase)
}

func provideAuthService(factory *supabase.ClientFactory, cfg *config.Config) *supabase.AuthService {
	return supabase.NewAuthService(factory, cfg.Supabase.Timeout)
}

// provideAuthenticator verifies tokens locally when the project's JWT secret
// is configured and asks GoTrue otherwise.
func provideAuthenticator(cfg *config.Config, service *supabase.AuthService) (auth.Authenticator, error) {
	if cfg.Supabase.JWTSecret == "" {
		return service, nil
	}
	verifier, err := auth.NewJWTVerifier(cfg.Supabase.JWTSecret, "")
	if err != nil {
		return nil, err
	}
	return verifier, nil
}

// provideCircuitBreaker returns nil when the breaker is disabled.
func provideCircuitBreaker(cfg *config.Config, logger *zap.Logger) *gobreaker.CircuitBreaker {
	if !cfg.CircuitBreaker.Enabled {
		return nil
	}
	return persistence.NewCircuitBreaker("supabase", cfg.CircuitBreaker, logger)
}

func provideTopicRepository(
	factory *supabase.ClientFactory,
	metrics *observability.Collector,
	tracer trace.Tracer,
	cb *gobreaker.CircuitBreaker,
) repository.TopicRepository {
	repo := persistence.InstrumentTopics(supabase.NewTopicRepository(factory), metrics, tracer)
	if cb == nil {
		return repo
	}
	return persistence.WithTopicCircuitBreaker(repo, cb)
}

func provideIdeaRepository(
	factory *supabase.ClientFactory,
	metrics *observability.Collector,
	tracer trace.Tracer,
	cb *gobreaker.CircuitBreaker,
) repository.IdeaRepository {
	repo := persistence.InstrumentIdeas(supabase.NewIdeaRepository(factory), metrics, tracer)
	if cb == nil {
		return repo
	}
	return persistence.WithIdeaCircuitBreaker(repo, cb)
}

// provideEventPublisher sends lifecycle events to EventBridge when a bus is
// configured and logs them otherwise.
func provideEventPublisher(awsCfg aws.Config, cfg *config.Config, logger *zap.Logger) repository.EventPublisher {
	if cfg.Events.BusName == "" {
		return messaging.NewLogPublisher(logger)
	}
	client := eventbridge.NewFromConfig(awsCfg)
	return messaging.NewEventBridgePublisher(client, cfg.Events.BusName, cfg.Events.Source, logger)
}

// provideIdempotencyStore keeps keys in DynamoDB when a table is configured,
// otherwise in memory with a periodic sweep.
func provideIdempotencyStore(awsCfg aws.Config, cfg *config.Config) (repository.IdempotencyStore, func()) {
	if cfg.Idempotency.Table != "" {
		client := awsDynamodb.NewFromConfig(awsCfg)
		return dynamodb.NewIdempotencyStore(client, cfg.Idempotency.Table, cfg.Idempotency.TTL), func() {}
	}

	store := repository.NewInMemoryIdempotencyStore(cfg.Idempotency.TTL)
	ticker := time.NewTicker(10 * time.Minute)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				store.Cleanup()
			case <-done:
				return
			}
		}
	}()
	return store, func() {
		ticker.Stop()
		close(done)
	}
}

func provideTopicService(repo repository.TopicRepository, publisher repository.EventPublisher, metrics *observability.Collector, logger *zap.Logger) topics.Service {
	return topics.NewService(repo, publisher, metrics, logger)
}

func provideIdeaService(repo repository.IdeaRepository, publisher repository.EventPublisher, metrics *observability.Collector, logger *zap.Logger) ideas.Service {
	return ideas.NewService(repo, publisher, metrics, logger)
}

func provideGate(authenticator auth.Authenticator, cfg *config.Config, logger *zap.Logger) *middleware.Gate {
	return middleware.NewGate(authenticator, cfg.Auth, logger)
}

func provideHandlers(
	topicService topics.Service,
	ideaService ideas.Service,
	authService *supabase.AuthService,
	cfg *config.Config,
	logger *zap.Logger,
) *router.Handlers {
	return &router.Handlers{
		Topics: handlers.NewTopicHandler(topicService, ideaService, logger),
		Ideas:  handlers.NewIdeaHandler(ideaService, logger),
		Auth:   handlers.NewAuthHandler(authService, cfg.Auth, logger),
		Health: handlers.NewHealthHandler(Version, authService),
	}
}

func provideRouter(
	cfg *config.Config,
	logger *zap.Logger,
	metrics *observability.Collector,
	gate *middleware.Gate,
	store repository.IdempotencyStore,
	h *router.Handlers,
) *chi.Mux {
	return router.New(cfg, logger, metrics, gate, store, h)
}
