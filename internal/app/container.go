package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/IBM/sarama"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	"commute-route-service/internal/cache"
	"commute-route-service/internal/config"
	"commute-route-service/internal/http/pprofserver"
	"commute-route-service/internal/http/router"
	"commute-route-service/internal/logx"
	"commute-route-service/internal/transport/kafka"
)

// ConsumerFactory builds the request consumer.
type ConsumerFactory func(logx.Logger, kafka.ConsumerConfig, kafka.HandleFunc, *kafka.DeadLetterPublisher, *prometheus.CounterVec) (*kafka.Consumer, error)

// ContainerBuilder is a dig container builder.
type ContainerBuilder struct {
	loadConfig  func() (*config.Config, error)
	dbConnect   func(context.Context, logx.Logger, string, int, time.Duration) (*pgxpool.Pool, error)
	newProducer func([]string) (sarama.SyncProducer, error)
	newRedis    func(context.Context, cache.RedisConfig) (*redis.Client, error)
	newConsumer ConsumerFactory
	logFatalf   func(string, ...interface{})
}

// NewContainerBuilder returns a new dig container builder
func NewContainerBuilder() *ContainerBuilder {
	return &ContainerBuilder{
		loadConfig:  config.Load,
		dbConnect:   connectDbWithRetry,
		newProducer: kafka.NewSyncProducer,
		newRedis:    cache.NewRedisClient,
		newConsumer: func(l logx.Logger, cfg kafka.ConsumerConfig, h kafka.HandleFunc, dlq *kafka.DeadLetterPublisher, dead *prometheus.CounterVec) (*kafka.Consumer, error) {
			return kafka.NewConsumer(l, cfg, h, dlq, dead)
		},
		logFatalf: log.Fatalf,
	}
}

// WithConfig sets the configuration loader
func (b *ContainerBuilder) WithConfig(fn func() (*config.Config, error)) *ContainerBuilder {
	if fn != nil {
		b.loadConfig = fn
	}
	return b
}

// WithDBConnect sets the database connection function
func (b *ContainerBuilder) WithDBConnect(
	fn func(context.Context, logx.Logger, string, int, time.Duration) (*pgxpool.Pool, error),
) *ContainerBuilder {
	if fn != nil {
		b.dbConnect = fn
	}
	return b
}

// WithProducer sets the kafka producer factory
func (b *ContainerBuilder) WithProducer(fn func([]string) (sarama.SyncProducer, error)) *ContainerBuilder {
	if fn != nil {
		b.newProducer = fn
	}
	return b
}

// WithRedis sets the redis client factory
func (b *ContainerBuilder) WithRedis(fn func(context.Context, cache.RedisConfig) (*redis.Client, error)) *ContainerBuilder {
	if fn != nil {
		b.newRedis = fn
	}
	return b
}

// WithConsumer sets the kafka consumer factory
func (b *ContainerBuilder) WithConsumer(fn ConsumerFactory) *ContainerBuilder {
	if fn != nil {
		b.newConsumer = fn
	}
	return b
}

// WithLogFatalf sets the log.Fatalf function
func (b *ContainerBuilder) WithLogFatalf(fn func(string, ...interface{})) *ContainerBuilder {
	if fn != nil {
		b.logFatalf = fn
	}
	return b
}

// MustBuildScheduler builds the scheduler container or exits
func (b *ContainerBuilder) MustBuildScheduler(ctx context.Context) *dig.Container {
	container, err := b.buildScheduler(ctx)
	if err != nil {
		b.logFatalf("failed to build scheduler container: %v", err)
	}
	return container
}

// MustBuildWorker builds the worker container or exits
func (b *ContainerBuilder) MustBuildWorker(ctx context.Context) *dig.Container {
	container, err := b.buildWorker(ctx)
	if err != nil {
		b.logFatalf("failed to build worker container: %v", err)
	}
	return container
}

// MustBuildSchedulerContainer builds the scheduler container with production wiring
func MustBuildSchedulerContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuildScheduler(ctx)
}

// MustBuildWorkerContainer builds the worker container with production wiring
func MustBuildWorkerContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuildWorker(ctx)
}

func (b *ContainerBuilder) buildScheduler(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx, b.loadConfig, (*config.Config).ValidateScheduler); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerDb(container, b.dbConnect); err != nil {
		return nil, fmt.Errorf("DB: %w", err)
	}
	if err := registerScheduler(container, b.newProducer); err != nil {
		return nil, fmt.Errorf("scheduler: %w", err)
	}
	if err := registerOps(container); err != nil {
		return nil, fmt.Errorf("ops: %w", err)
	}
	return container, nil
}

func (b *ContainerBuilder) buildWorker(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx, b.loadConfig, (*config.Config).ValidateWorker); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerWorker(container, b.newProducer, b.newRedis, b.newConsumer); err != nil {
		return nil, fmt.Errorf("worker: %w", err)
	}
	if err := registerOps(container); err != nil {
		return nil, fmt.Errorf("ops: %w", err)
	}
	return container, nil
}

func provideAll(container *dig.Container, providers ...any) error {
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return fmt.Errorf("provide %T: %w", provider, err)
		}
	}
	return nil
}

func registerCore(
	container *dig.Container,
	ctx context.Context,
	load func() (*config.Config, error),
	validate func(*config.Config) error,
) error {
	configProvider := func() (*config.Config, error) {
		cfg, err := load()
		if err != nil {
			return nil, err
		}
		if err := validate(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	registryProvider := func() *prometheus.Registry {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		return reg
	}
	return provideAll(container,
		func() context.Context { return ctx },
		configProvider,
		NewLogger,
		registryProvider,
	)
}

func registerDb(
	container *dig.Container,
	dbConnect func(context.Context, logx.Logger, string, int, time.Duration) (*pgxpool.Pool, error),
) error {
	providerDB := func(ctx context.Context, cfg *config.Config, logger logx.Logger) (*pgxpool.Pool, error) {
		return dbConnect(ctx, logger, cfg.DB.DSN(), 10, time.Second)
	}
	return provideAll(container, providerDB)
}

func registerOps(container *dig.Container) error {
	serverProvider := func(cfg *config.Config, reg *prometheus.Registry, ready router.ReadyFunc, logger logx.Logger) *http.Server {
		mux := router.New(router.Deps{
			Gatherer: reg,
			Ready:    ready,
			Pprof:    pprofserver.Config{User: cfg.Ops.PprofUser, Pass: cfg.Ops.PprofPass},
			Logger:   logger,
		})
		return &http.Server{
			Addr:              cfg.Ops.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
	}
	return provideAll(container, serverProvider)
}
