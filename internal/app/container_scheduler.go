package app

import (
	"context"
	"time"

	"github.com/IBM/sarama"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"commute-route-service/internal/config"
	"commute-route-service/internal/http/router"
	"commute-route-service/internal/logx"
	"commute-route-service/internal/metrics"
	"commute-route-service/internal/repository"
	"commute-route-service/internal/service/candidate"
	"commute-route-service/internal/service/scheduler"
	"commute-route-service/internal/transport/kafka"
)

const selectTimeout = 10 * time.Second

func registerScheduler(container *dig.Container, newProducer func([]string) (sarama.SyncProducer, error)) error {
	return provideAll(container,
		repository.NewCandidateRepo,
		func(repo *repository.CandidateRepo, cfg *config.Config, logger logx.Logger) *candidate.Service {
			return candidate.NewService(repo, cfg.Scheduler.Location, selectTimeout, logger)
		},
		func(cfg *config.Config, logger logx.Logger) (*kafka.Publisher, error) {
			p, err := newProducer(cfg.Kafka.Brokers)
			if err != nil {
				return nil, err
			}
			return kafka.NewPublisher(p, cfg.Kafka.Topic, logger), nil
		},
		func(reg *prometheus.Registry) (*metrics.Scheduler, error) {
			m := metrics.NewScheduler()
			return m, metrics.Register(reg, m.Collectors()...)
		},
		func(sel *candidate.Service, pub *kafka.Publisher, logger logx.Logger, m *metrics.Scheduler, cfg *config.Config) (*scheduler.Scheduler, error) {
			return scheduler.New(sel, pub, logger, m, scheduler.Config{
				Interval:     cfg.Scheduler.TickInterval,
				LookaheadMin: cfg.Scheduler.LookaheadMin,
			})
		},
		func(pool *pgxpool.Pool) router.ReadyFunc {
			return func(ctx context.Context) error { return pool.Ping(ctx) }
		},
	)
}
