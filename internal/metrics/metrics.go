package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Scheduler groups the counters the scheduler loop updates.
type Scheduler struct {
	CandidatesSelected prometheus.Counter
	CandidatesSkipped  prometheus.Counter
	RequestsPublished  prometheus.Counter
	TickFailures       prometheus.Counter
}

// Worker groups the counters the request consumer updates.
type Worker struct {
	ResolveRetries *prometheus.CounterVec
	Resolved       prometheus.Counter
	DeadLettered   *prometheus.CounterVec
}

// NewScheduler returns unregistered scheduler counters.
func NewScheduler() *Scheduler {
	return &Scheduler{
		CandidatesSelected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "route_candidates_selected_total",
			Help: "Total number of commute candidates returned by the selector",
		}),
		CandidatesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "route_candidates_skipped_total",
			Help: "Total number of candidates skipped because of invalid data",
		}),
		RequestsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "route_requests_published_total",
			Help: "Total number of route requests acknowledged by the broker",
		}),
		TickFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scheduler_tick_failures_total",
			Help: "Total number of scheduler ticks aborted by an error",
		}),
	}
}

// NewWorker returns unregistered worker counters.
func NewWorker() *Worker {
	return &Worker{
		ResolveRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "route_resolve_retries_total",
			Help: "Total number of retry attempts performed while resolving a route",
		}, []string{"kind"}),
		Resolved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "route_resolved_total",
			Help: "Total number of routes resolved and written to the cache",
		}),
		DeadLettered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "route_dead_lettered_total",
			Help: "Total number of route requests moved to the dead letter topic",
		}, []string{"reason"}),
	}
}

// Collectors lists the scheduler collectors.
func (s *Scheduler) Collectors() []prometheus.Collector {
	return []prometheus.Collector{s.CandidatesSelected, s.CandidatesSkipped, s.RequestsPublished, s.TickFailures}
}

// Collectors lists the worker collectors.
func (w *Worker) Collectors() []prometheus.Collector {
	return []prometheus.Collector{w.ResolveRetries, w.Resolved, w.DeadLettered}
}

// Register registers every collector with reg. Already registered collectors are tolerated.
func Register(reg prometheus.Registerer, cs ...prometheus.Collector) error {
	for _, c := range cs {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}
