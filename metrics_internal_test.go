package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusActivitySink(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPrometheusActivitySink(reg)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, sink.Record(ctx, ActivityEvent{EventType: ActivityEventCookieLoginFailure}))
	require.NoError(t, sink.Record(ctx, ActivityEvent{EventType: ActivityEventCookieLoginFailure}))
	require.NoError(t, sink.Record(ctx, ActivityEvent{EventType: ActivityEventUserInvited}))

	assert.Equal(t, 2.0, testutil.ToFloat64(sink.events.WithLabelValues(string(ActivityEventCookieLoginFailure))))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.events.WithLabelValues(string(ActivityEventUserInvited))))

	again, err := NewPrometheusActivitySink(reg)
	require.NoError(t, err)
	assert.Same(t, sink.events, again.events)
}

func TestMultiActivitySink(t *testing.T) {
	var got []ActivityEventType
	ok := ActivitySinkFunc(func(_ context.Context, e ActivityEvent) error {
		got = append(got, e.EventType)
		return nil
	})
	failing := ActivitySinkFunc(func(context.Context, ActivityEvent) error {
		return errors.New("sink down")
	})

	err := MultiActivitySink(failing, nil, ok).Record(context.Background(), ActivityEvent{EventType: ActivityEventUserInvited})

	assert.EqualError(t, err, "sink down")
	assert.Equal(t, []ActivityEventType{ActivityEventUserInvited}, got)
}

type warnCounter struct {
	defLogger
	warns int
}

func (w *warnCounter) Warn(string, ...any) { w.warns++ }

func TestRecordActivityIsBestEffort(t *testing.T) {
	logger := &warnCounter{}
	var seen ActivityEvent
	sink := ActivitySinkFunc(func(_ context.Context, e ActivityEvent) error {
		seen = e
		return errors.New("rejected")
	})

	recordActivity(context.Background(), sink, logger, ActivityEvent{EventType: ActivityEventPasswordResetSuccess})

	assert.Equal(t, 1, logger.warns)
	assert.False(t, seen.OccurredAt.IsZero())
}
