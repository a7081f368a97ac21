package app

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	"commute-route-service/internal/cache"
	"commute-route-service/internal/config"
	"commute-route-service/internal/gateway/directions"
	"commute-route-service/internal/http/router"
	"commute-route-service/internal/logx"
	"commute-route-service/internal/metrics"
	"commute-route-service/internal/service/route"
	"commute-route-service/internal/transport/kafka"
)

func registerWorker(
	container *dig.Container,
	newProducer func([]string) (sarama.SyncProducer, error),
	newRedis func(context.Context, cache.RedisConfig) (*redis.Client, error),
	newConsumer ConsumerFactory,
) error {
	cacheProvider := func(ctx context.Context, cfg *config.Config, logger logx.Logger) (cache.RouteCache, error) {
		switch cfg.CacheBackend {
		case config.CacheMemory:
			logger.Warn("using in-memory route cache, routes are not shared between processes")
			return cache.NewMemoryRouteCache(cache.TTL), nil
		case config.CacheRedis:
			client, err := newRedis(ctx, cache.RedisConfig{
				Addr:     cfg.Redis.Addr(),
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			if err != nil {
				return nil, err
			}
			return cache.NewRedisRouteCache(client, cfg.Scheduler.Location), nil
		default:
			return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
		}
	}

	return provideAll(container,
		cacheProvider,
		func(cfg *config.Config) (*directions.GoogleClient, error) {
			return directions.NewGoogleClient(directions.GoogleConfig{
				APIKey:  cfg.Directions.APIKey,
				BaseURL: cfg.Directions.BaseURL,
				Timeout: cfg.Directions.Timeout,
				RPS:     cfg.Directions.RPS,
				Burst:   cfg.Directions.Burst,
			})
		},
		func(g *directions.GoogleClient) *route.Resolver { return route.NewResolver(g) },
		func(reg *prometheus.Registry) (*metrics.Worker, error) {
			m := metrics.NewWorker()
			return m, metrics.Register(reg, m.Collectors()...)
		},
		func(r *route.Resolver, c cache.RouteCache, logger logx.Logger, cfg *config.Config, m *metrics.Worker) *route.Processor {
			return route.NewProcessor(r, c, logger, route.RetryConfig{
				MaxAttempts: cfg.Resolve.MaxAttempts,
				BaseDelay:   cfg.Resolve.BaseDelay,
				MaxDelay:    cfg.Resolve.MaxDelay,
			}, m.ResolveRetries, m.Resolved)
		},
		func(cfg *config.Config) (*kafka.DeadLetterPublisher, error) {
			p, err := newProducer(cfg.Kafka.Brokers)
			if err != nil {
				return nil, err
			}
			return kafka.NewDeadLetterPublisher(p, cfg.Kafka.DLQTopic), nil
		},
		func(p *route.Processor) kafka.HandleFunc { return makeRouteHandler(p) },
		func(logger logx.Logger, cfg *config.Config, h kafka.HandleFunc, dlq *kafka.DeadLetterPublisher, m *metrics.Worker) (*kafka.Consumer, error) {
			return newConsumer(logger, kafka.ConsumerConfig{
				Brokers:  cfg.Kafka.Brokers,
				GroupID:  cfg.Kafka.GroupID,
				Topic:    cfg.Kafka.Topic,
				Location: cfg.Scheduler.Location,
			}, h, dlq, m.DeadLettered)
		},
		func(c cache.RouteCache) router.ReadyFunc { return c.Ping },
	)
}
