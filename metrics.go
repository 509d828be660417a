package auth

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusActivitySink counts activity events by type.
type PrometheusActivitySink struct {
	events *prometheus.CounterVec
}

// NewPrometheusActivitySink registers auth_activity_events_total with reg.
// A nil reg uses the default registerer.
func NewPrometheusActivitySink(reg prometheus.Registerer) (*PrometheusActivitySink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	events := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_activity_events_total",
			Help: "Total number of identity lifecycle events by type",
		},
		[]string{"event"},
	)
	if err := reg.Register(events); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, unexpected(err, "register activity metrics")
		}
		events = already.ExistingCollector.(*prometheus.CounterVec)
	}

	return &PrometheusActivitySink{events: events}, nil
}

// Record implements ActivitySink.
func (s *PrometheusActivitySink) Record(_ context.Context, event ActivityEvent) error {
	s.events.WithLabelValues(string(event.EventType)).Inc()
	return nil
}

// MultiActivitySink fans an event out to every sink. The first error is
// returned after all sinks ran.
func MultiActivitySink(sinks ...ActivitySink) ActivitySink {
	return ActivitySinkFunc(func(ctx context.Context, event ActivityEvent) error {
		var first error
		for _, s := range sinks {
			if s == nil {
				continue
			}
			if err := s.Record(ctx, event); err != nil && first == nil {
				first = err
			}
		}
		return first
	})
}
